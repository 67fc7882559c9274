package post

import (
	"strings"
	"time"
)

// BucketRange maps a date-filter label to the half-open time range
// [start, end) it covers, anchored at now. Unknown labels, "all" and the
// empty string report no range.
func BucketRange(now time.Time, label string) (start, end time.Time, ok bool) {
	label = strings.TrimSpace(label)
	if label == "" || strings.EqualFold(label, "all") {
		return time.Time{}, time.Time{}, false
	}

	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := day.AddDate(0, 0, 1)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	switch label {
	case "Today":
		return day, tomorrow, true
	case "Yesterday":
		return day.AddDate(0, 0, -1), day, true
	case "Last 7 Days":
		return day.AddDate(0, 0, -6), tomorrow, true
	case "Last 30 Days":
		return day.AddDate(0, 0, -29), tomorrow, true
	case "This Month":
		return monthStart, monthStart.AddDate(0, 1, 0), true
	case "Last Month":
		return monthStart.AddDate(0, -1, 0), monthStart, true
	case "Last 3 Months":
		return day.AddDate(0, -3, 0), tomorrow, true
	case "Last Year":
		return day.AddDate(-1, 0, 0), tomorrow, true
	}
	return time.Time{}, time.Time{}, false
}

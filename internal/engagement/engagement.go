// Package engagement reduces heterogeneous per-platform analytics into a
// single normalized totals record.
package engagement

import "github.com/orgball2608/social-gallery-engine/internal/domain"

// Aggregate sums a post's per-platform analytics into one totals record.
// Likes take total_reactions when the platform reports it, else
// like_count, never both; views take video_views, else impressions, never
// both. Missing fields count as zero. The sum is independent of map
// iteration order.
func Aggregate(analytics map[string]domain.PlatformAnalytics) domain.EngagementTotals {
	var totals domain.EngagementTotals
	for _, a := range analytics {
		switch {
		case a.TotalReactions != nil:
			totals.Likes += *a.TotalReactions
		case a.LikeCount != nil:
			totals.Likes += *a.LikeCount
		}
		if a.CommentsCount != nil {
			totals.Comments += *a.CommentsCount
		}
		if a.SharesCount != nil {
			totals.Shares += *a.SharesCount
		}
		switch {
		case a.VideoViews != nil:
			totals.Views += *a.VideoViews
		case a.Impressions != nil:
			totals.Views += *a.Impressions
		}
	}
	return totals
}

package domain

// StatusSuccess is the status value of a successful page response.
const StatusSuccess = "success"

// Page is one batch of posts returned by the aggregation API together
// with its reported counts.
type Page struct {
	Status          string `json:"status"`
	Data            []Post `json:"data"`
	RecordsTotal    int    `json:"recordsTotal"`
	RecordsFiltered int    `json:"recordsFiltered"`
	Message         string `json:"message,omitempty"`
}

func (p *Page) Succeeded() bool {
	return p != nil && p.Status == StatusSuccess
}

// Total is the server-reported count pagination runs against:
// recordsTotal, falling back to recordsFiltered when the former is
// missing or zero.
func (p *Page) Total() int {
	if p == nil {
		return 0
	}
	if p.RecordsTotal > 0 {
		return p.RecordsTotal
	}
	return p.RecordsFiltered
}

package model

// ViewSummary is the dashboard rollup over stored page views.
type ViewSummary struct {
	Last24Hours int         `json:"last24Hours"`
	Last7Days   int         `json:"last7Days"`
	Last30Days  int         `json:"last30Days"`
	Total       int         `json:"total"`
	HourlyViews map[int]int `json:"hourlyViews"`
	RecentViews []ViewEvent `json:"recentViews"`
}

// TopLink is one row of a click ranking.
type TopLink struct {
	LinkID int64  `json:"linkId"`
	Name   string `json:"name"`
	Count  int    `json:"count"`
}

// LinkClickSummary is the dashboard rollup over stored link clicks.
type LinkClickSummary struct {
	Last24Hours int       `json:"last24Hours"`
	Last7Days   int       `json:"last7Days"`
	Last30Days  int       `json:"last30Days"`
	Total       int       `json:"total"`
	TopLinks    []TopLink `json:"topLinks"`
	TopLinks24h []TopLink `json:"topLinks24h"`
}

// TrackResult is the admission outcome reported back to the client.
// Skips are not errors.
type TrackResult struct {
	Tracked            bool   `json:"tracked"`
	Skipped            bool   `json:"skipped"`
	Reason             string `json:"reason,omitempty"`
	LastView           int64  `json:"lastView,omitempty"`
	LastClick          int64  `json:"lastClick,omitempty"`
	ClicksInLastMinute int    `json:"clicksInLastMinute,omitempty"`
}

package model

import "time"

// ViewEvent records a single admitted page view.
type ViewEvent struct {
	Timestamp     int64  `json:"timestamp"`
	SourceAddress string `json:"ip,omitempty"`
	UserAgent     string `json:"userAgent,omitempty"`
}

// LinkClickEvent records a single admitted social-link click.
// LinkName is captured at click time and never re-fetched.
type LinkClickEvent struct {
	LinkID        int64  `json:"linkId"`
	LinkName      string `json:"linkName"`
	Timestamp     int64  `json:"timestamp"`
	SourceAddress string `json:"ip,omitempty"`
}

// AnalyticsData is the whole persisted analytics document.
type AnalyticsData struct {
	Views      []ViewEvent      `json:"views"`
	LinkClicks []LinkClickEvent `json:"linkClicks"`
}

// NewAnalyticsData returns an empty document with non-nil sequences.
func NewAnalyticsData() *AnalyticsData {
	return &AnalyticsData{
		Views:      []ViewEvent{},
		LinkClicks: []LinkClickEvent{},
	}
}

// Normalize replaces nil sequences so the document always encodes as arrays.
func (d *AnalyticsData) Normalize() {
	if d.Views == nil {
		d.Views = []ViewEvent{}
	}
	if d.LinkClicks == nil {
		d.LinkClicks = []LinkClickEvent{}
	}
}

// UnknownSource is recorded when no forwarding header identifies the client.
const UnknownSource = "unknown"

// Skip reasons reported by the ingestion filter.
const (
	SkipReasonBot            = "bot"
	SkipReasonDuplicate      = "duplicate"
	SkipReasonSpamProtection = "spam_protection"
	SkipReasonRateLimit      = "rate_limit_exceeded"
)

// Aggregation windows.
const (
	Window24Hours = 24 * time.Hour
	Window7Days   = 7 * 24 * time.Hour
	Window30Days  = 30 * 24 * time.Hour

	TopLinksLimit    = 10
	RecentViewsLimit = 100
)

// Millis converts t to milliseconds since epoch.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

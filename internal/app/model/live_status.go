package model

import "time"

// Live-status platforms.
const (
	PlatformKick    = "kick"
	PlatformYouTube = "youtube"
)

// LiveStatus is the result of a live-status probe.
type LiveStatus struct {
	Platform    string    `json:"platform"`
	Identifier  string    `json:"identifier"`
	IsLive      bool      `json:"isLive"`
	Title       string    `json:"title,omitempty"`
	ViewerCount int       `json:"viewerCount,omitempty"`
	VideoID     string    `json:"videoId,omitempty"`
	CheckedAt   time.Time `json:"checkedAt"`
}

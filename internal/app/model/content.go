package model

// Profile holds the header block of the public page.
type Profile struct {
	Name      string `json:"name"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar,omitempty"`
	// Channel identifiers used by the live-status badges.
	YouTubeChannelID string `json:"youtubeChannelId,omitempty"`
	KickUsername     string `json:"kickUsername,omitempty"`
}

// SocialLink is a button on the public page. ID is what click events reference.
type SocialLink struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Icon     string `json:"icon,omitempty"`
	Color    string `json:"color,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Video is an entry in the recent videos list.
type Video struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Date      string `json:"date,omitempty"`
}

// Content is the whole links.json document.
type Content struct {
	Profile       *Profile     `json:"profile"`
	SocialLinks   []SocialLink `json:"socialLinks"`
	Videos        []Video      `json:"videos"`
	AdminPassword string       `json:"adminPassword,omitempty"`
}

// Public returns a copy safe to serve to anonymous callers.
func (c *Content) Public() *Content {
	out := *c
	out.AdminPassword = ""
	return &out
}

// ActiveLinks returns links that are not disabled.
func (c *Content) ActiveLinks() []SocialLink {
	links := make([]SocialLink, 0, len(c.SocialLinks))
	for _, l := range c.SocialLinks {
		if !l.Disabled {
			links = append(links, l)
		}
	}
	return links
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sifan077/BioLink/internal/app/model"
	"github.com/sifan077/BioLink/internal/infra/prometheus"
	"go.uber.org/zap"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxLivePageBytes = 4 << 20
)

var (
	// ErrChannelNotFound signals that the platform does not know the channel.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrUnknownPlatform signals a platform with no probe configured.
	ErrUnknownPlatform = errors.New("unknown live platform")
)

// UpstreamError reports a non-success response from a platform.
type UpstreamError struct {
	Platform   string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream returned status %d", e.Platform, e.StatusCode)
}

// LiveProbe answers whether a channel is currently live.
type LiveProbe interface {
	Check(ctx context.Context, identifier string) (*model.LiveStatus, error)
}

// LiveStatusService dispatches to per-platform probes with a caller-imposed timeout.
type LiveStatusService struct {
	logger  *zap.Logger
	probes  map[string]LiveProbe
	timeout time.Duration
}

// NewLiveStatusService returns a service using probes keyed by platform name.
func NewLiveStatusService(logger *zap.Logger, timeout time.Duration, probes map[string]LiveProbe) *LiveStatusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveStatusService{logger: logger, probes: probes, timeout: timeout}
}

// Check runs the platform probe for identifier.
func (s *LiveStatusService) Check(ctx context.Context, platform, identifier string) (*model.LiveStatus, error) {
	probe, ok := s.probes[platform]
	if !ok {
		return nil, ErrUnknownPlatform
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	status, err := probe.Check(ctx, identifier)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		s.logger.Warn("live status probe failed",
			zap.String("platform", platform),
			zap.String("identifier", identifier),
			zap.Error(err))
	}
	prometheus.LiveProbeDuration.WithLabelValues(platform, outcome).Observe(time.Since(start).Seconds())
	return status, err
}

// KickProbe queries the Kick channel API.
type KickProbe struct {
	client  *http.Client
	baseURL string
	now     func() time.Time
}

// NewKickProbe returns a probe against baseURL (https://kick.com in production).
func NewKickProbe(client *http.Client, baseURL string) *KickProbe {
	if client == nil {
		client = http.DefaultClient
	}
	return &KickProbe{client: client, baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

type kickChannel struct {
	IsLive     bool `json:"is_live"`
	Livestream *struct {
		ID           int64  `json:"id"`
		IsLive       bool   `json:"is_live"`
		SessionTitle string `json:"session_title"`
		ViewerCount  int    `json:"viewer_count"`
	} `json:"livestream"`
	Livestreams []struct {
		IsLive bool `json:"is_live"`
	} `json:"livestreams"`
}

func (p *KickProbe) Check(ctx context.Context, username string) (*model.LiveStatus, error) {
	resp, err := p.get(ctx, "v2", username)
	if err != nil {
		return nil, err
	}
	// v1 is tried when v2 fails for any reason other than an unknown channel.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		resp.Body.Close()
		if resp, err = p.get(ctx, "v1", username); err != nil {
			return nil, err
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrChannelNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, &UpstreamError{Platform: model.PlatformKick, StatusCode: resp.StatusCode}
	}

	var ch kickChannel
	if err := json.NewDecoder(resp.Body).Decode(&ch); err != nil {
		return nil, fmt.Errorf("kick: decode channel: %w", err)
	}

	status := &model.LiveStatus{
		Platform:   model.PlatformKick,
		Identifier: username,
		IsLive:     ch.IsLive,
		CheckedAt:  p.now().UTC(),
	}
	if ls := ch.Livestream; ls != nil {
		if ls.ID != 0 || ls.IsLive {
			status.IsLive = true
		}
		status.Title = ls.SessionTitle
		status.ViewerCount = ls.ViewerCount
	}
	for _, s := range ch.Livestreams {
		if s.IsLive {
			status.IsLive = true
		}
	}
	return status, nil
}

func (p *KickProbe) get(ctx context.Context, version, username string) (*http.Response, error) {
	endpoint := fmt.Sprintf("%s/api/%s/channels/%s", p.baseURL, version, url.PathEscape(username))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("kick: build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kick: %s request: %w", version, err)
	}
	return resp, nil
}

// DefaultYouTubeLiveIndicators are page markers that only appear while a channel is live.
var DefaultYouTubeLiveIndicators = []string{
	`(?i)LIVE NOW`,
	`BADGE_STYLE_TYPE_LIVE_NOW`,
	`"liveBroadcastContent"\s*:\s*"live"`,
	`"isLiveNow"\s*:\s*true`,
	`"concurrentViewers"`,
	`"liveChatRenderer"`,
}

var (
	youtubeIsLive    = regexp.MustCompile(`"isLive"\s*:\s*true`)
	youtubeCanonical = regexp.MustCompile(`(?i)<link[^>]*rel=["']canonical["'][^>]*href=["']([^"']+)["']`)
	youtubeWatchID   = regexp.MustCompile(`watch\?v=([a-zA-Z0-9_-]{11})`)
	youtubeVideoID   = regexp.MustCompile(`"videoId"\s*:\s*"([^"]{11})"`)
)

// YouTubeProbe scrapes a channel's /live page.
type YouTubeProbe struct {
	client     *http.Client
	baseURL    string
	indicators []*regexp.Regexp
	now        func() time.Time
}

// NewYouTubeProbe returns a probe against baseURL (https://www.youtube.com in production).
func NewYouTubeProbe(client *http.Client, baseURL string, indicators []string) (*YouTubeProbe, error) {
	if client == nil {
		client = http.DefaultClient
	}
	p := &YouTubeProbe{client: client, baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
	for _, expr := range indicators {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("youtube: live indicator %q: %w", expr, err)
		}
		p.indicators = append(p.indicators, re)
	}
	return p, nil
}

func (p *YouTubeProbe) Check(ctx context.Context, channelID string) (*model.LiveStatus, error) {
	endpoint := fmt.Sprintf("%s/channel/%s/live", p.baseURL, url.PathEscape(channelID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("youtube: build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrChannelNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Platform: model.PlatformYouTube, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLivePageBytes))
	if err != nil {
		return nil, fmt.Errorf("youtube: read page: %w", err)
	}
	html := string(body)

	finalURL := ""
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	status := &model.LiveStatus{
		Platform:   model.PlatformYouTube,
		Identifier: channelID,
		IsLive:     p.isLive(html, finalURL),
		CheckedAt:  p.now().UTC(),
	}
	if status.IsLive {
		if m := youtubeWatchID.FindStringSubmatch(html); m != nil {
			status.VideoID = m[1]
		} else if m := youtubeVideoID.FindStringSubmatch(html); m != nil {
			status.VideoID = m[1]
		}
	}
	return status, nil
}

func (p *YouTubeProbe) isLive(html, finalURL string) bool {
	if youtubeIsLive.MatchString(html) {
		return true
	}
	if m := youtubeCanonical.FindStringSubmatch(html); m != nil && strings.Contains(m[1], "/watch?v=") {
		return true
	}
	if strings.Contains(finalURL, "/watch?v=") {
		return true
	}
	for _, re := range p.indicators {
		if re.MatchString(html) {
			return true
		}
	}
	return false
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sifan077/BioLink/internal/app/model"
	"github.com/sifan077/BioLink/internal/app/repository"
	"github.com/sifan077/BioLink/internal/infra/prometheus"
	"go.uber.org/zap"
)

var (
	// ErrInvalidClick signals a click request without linkId or linkName.
	ErrInvalidClick = errors.New("linkId and linkName are required")
)

// AnalyticsService admits page views and link clicks, serves rollups and resets counters.
type AnalyticsService interface {
	TrackView(ctx context.Context, input TrackViewInput) *model.TrackResult
	TrackClick(ctx context.Context, input TrackClickInput) (*model.TrackResult, error)
	ViewSummary(ctx context.Context) (*model.ViewSummary, error)
	LinkClickSummary(ctx context.Context) (*model.LinkClickSummary, error)
	ResetViews(ctx context.Context) error
	ResetClicks(ctx context.Context) error
}

// AdmissionPolicy holds the dedup and rate-limit windows applied before an event is stored.
type AdmissionPolicy struct {
	ViewDedupWindow  time.Duration
	ClickDedupWindow time.Duration
	ClickRateWindow  time.Duration
	ClickRateLimit   int
}

// DefaultAdmissionPolicy returns the stock windows: one view per source per 5 minutes,
// one click per source and link per 10 seconds, at most 10 clicks per source per minute.
func DefaultAdmissionPolicy() AdmissionPolicy {
	return AdmissionPolicy{
		ViewDedupWindow:  5 * time.Minute,
		ClickDedupWindow: 10 * time.Second,
		ClickRateWindow:  time.Minute,
		ClickRateLimit:   10,
	}
}

// TrackViewInput captures the request attributes of a page view.
type TrackViewInput struct {
	SourceAddress string
	UserAgent     string
}

// TrackClickInput captures a link click.
type TrackClickInput struct {
	LinkID        int64
	LinkName      string
	SourceAddress string
	UserAgent     string
}

// AnalyticsDeps groups dependencies required by the analytics service.
type AnalyticsDeps struct {
	Logger   *zap.Logger
	Repo     repository.AnalyticsRepository
	Bots     *BotDetector
	Policy   AdmissionPolicy
	Location *time.Location
	Now      func() time.Time
}

type analyticsService struct {
	logger   *zap.Logger
	repo     repository.AnalyticsRepository
	bots     *BotDetector
	policy   AdmissionPolicy
	location *time.Location
	now      func() time.Time
}

// NewAnalyticsService returns an AnalyticsService backed by the given repository.
func NewAnalyticsService(deps AnalyticsDeps) AnalyticsService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	policy := deps.Policy
	if policy == (AdmissionPolicy{}) {
		policy = DefaultAdmissionPolicy()
	}
	return &analyticsService{
		logger:   logger,
		repo:     deps.Repo,
		bots:     deps.Bots,
		policy:   policy,
		location: loc,
		now:      now,
	}
}

func (s *analyticsService) TrackView(ctx context.Context, input TrackViewInput) *model.TrackResult {
	if s.bots.IsBot(input.UserAgent) {
		return s.skip(prometheus.KindView, &model.TrackResult{Skipped: true, Reason: model.SkipReasonBot})
	}

	data := s.load(ctx)
	now := s.now()
	since := model.Millis(now.Add(-s.policy.ViewDedupWindow))

	for i := len(data.Views) - 1; i >= 0; i-- {
		v := data.Views[i]
		if v.SourceAddress == input.SourceAddress && v.Timestamp > since {
			return s.skip(prometheus.KindView, &model.TrackResult{
				Skipped:  true,
				Reason:   model.SkipReasonDuplicate,
				LastView: v.Timestamp,
			})
		}
	}

	data.Views = append(data.Views, model.ViewEvent{
		Timestamp:     model.Millis(now),
		SourceAddress: input.SourceAddress,
		UserAgent:     input.UserAgent,
	})

	if err := s.repo.SaveViews(ctx, data); err != nil {
		prometheus.AnalyticsStoreErrors.WithLabelValues("save_views").Inc()
		s.logger.Error("failed to save analytics views", zap.Error(err))
	}

	prometheus.AnalyticsEvents.WithLabelValues(prometheus.KindView, "tracked").Inc()
	return &model.TrackResult{Tracked: true}
}

func (s *analyticsService) TrackClick(ctx context.Context, input TrackClickInput) (*model.TrackResult, error) {
	if input.LinkID == 0 || input.LinkName == "" {
		return nil, ErrInvalidClick
	}

	if s.bots.IsBot(input.UserAgent) {
		return s.skip(prometheus.KindClick, &model.TrackResult{Skipped: true, Reason: model.SkipReasonBot}), nil
	}

	data := s.load(ctx)
	now := s.now()
	dedupSince := model.Millis(now.Add(-s.policy.ClickDedupWindow))
	rateSince := model.Millis(now.Add(-s.policy.ClickRateWindow))

	for i := len(data.LinkClicks) - 1; i >= 0; i-- {
		c := data.LinkClicks[i]
		if c.SourceAddress == input.SourceAddress && c.LinkID == input.LinkID && c.Timestamp > dedupSince {
			return s.skip(prometheus.KindClick, &model.TrackResult{
				Skipped:   true,
				Reason:    model.SkipReasonSpamProtection,
				LastClick: c.Timestamp,
			}), nil
		}
	}

	recent := 0
	for _, c := range data.LinkClicks {
		if c.SourceAddress == input.SourceAddress && c.Timestamp > rateSince {
			recent++
		}
	}
	if recent >= s.policy.ClickRateLimit {
		return s.skip(prometheus.KindClick, &model.TrackResult{
			Skipped:            true,
			Reason:             model.SkipReasonRateLimit,
			ClicksInLastMinute: recent,
		}), nil
	}

	data.LinkClicks = append(data.LinkClicks, model.LinkClickEvent{
		LinkID:        input.LinkID,
		LinkName:      input.LinkName,
		Timestamp:     model.Millis(now),
		SourceAddress: input.SourceAddress,
	})

	if err := s.repo.SaveClicks(ctx, data); err != nil {
		prometheus.AnalyticsStoreErrors.WithLabelValues("save_clicks").Inc()
		s.logger.Error("failed to save analytics link clicks",
			zap.Int64("link_id", input.LinkID),
			zap.Error(err))
	}

	prometheus.AnalyticsEvents.WithLabelValues(prometheus.KindClick, "tracked").Inc()
	return &model.TrackResult{Tracked: true}, nil
}

func (s *analyticsService) ResetViews(ctx context.Context) error {
	data := s.load(ctx)
	data.Views = []model.ViewEvent{}
	if err := s.repo.Replace(ctx, data); err != nil {
		prometheus.AnalyticsStoreErrors.WithLabelValues("reset_views").Inc()
		return fmt.Errorf("reset views: %w", err)
	}
	s.logger.Info("analytics views reset")
	return nil
}

func (s *analyticsService) ResetClicks(ctx context.Context) error {
	data := s.load(ctx)
	data.LinkClicks = []model.LinkClickEvent{}
	if err := s.repo.Replace(ctx, data); err != nil {
		prometheus.AnalyticsStoreErrors.WithLabelValues("reset_clicks").Inc()
		return fmt.Errorf("reset link clicks: %w", err)
	}
	s.logger.Info("analytics link clicks reset")
	return nil
}

// load never fails: an unreadable store is logged and treated as empty.
func (s *analyticsService) load(ctx context.Context) *model.AnalyticsData {
	data, err := s.repo.Load(ctx)
	if err != nil {
		prometheus.AnalyticsStoreErrors.WithLabelValues("load").Inc()
		s.logger.Warn("analytics store unreadable, using empty store", zap.Error(err))
	}
	if data == nil {
		data = model.NewAnalyticsData()
	}
	return data
}

func (s *analyticsService) skip(kind string, result *model.TrackResult) *model.TrackResult {
	prometheus.AnalyticsEvents.WithLabelValues(kind, result.Reason).Inc()
	s.logger.Debug("analytics event skipped",
		zap.String("kind", kind),
		zap.String("reason", result.Reason))
	return result
}

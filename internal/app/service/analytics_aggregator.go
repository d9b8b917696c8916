package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sifan077/BioLink/internal/app/model"
)

func (s *analyticsService) ViewSummary(ctx context.Context) (*model.ViewSummary, error) {
	data, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load analytics: %w", err)
	}
	return SummarizeViews(data.Views, s.now(), s.location), nil
}

func (s *analyticsService) LinkClickSummary(ctx context.Context) (*model.LinkClickSummary, error) {
	data, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load analytics: %w", err)
	}
	return SummarizeClicks(data.LinkClicks, s.now()), nil
}

// SummarizeViews computes the view rollup as of now. Hours are bucketed in loc.
func SummarizeViews(views []model.ViewEvent, now time.Time, loc *time.Location) *model.ViewSummary {
	since24h := model.Millis(now.Add(-model.Window24Hours))
	since7d := model.Millis(now.Add(-model.Window7Days))
	since30d := model.Millis(now.Add(-model.Window30Days))

	summary := &model.ViewSummary{
		Total:       len(views),
		HourlyViews: make(map[int]int),
	}

	last24h := make([]model.ViewEvent, 0)
	for _, v := range views {
		if v.Timestamp > since30d {
			summary.Last30Days++
		}
		if v.Timestamp > since7d {
			summary.Last7Days++
		}
		if v.Timestamp > since24h {
			last24h = append(last24h, v)
			summary.HourlyViews[time.UnixMilli(v.Timestamp).In(loc).Hour()]++
		}
	}
	summary.Last24Hours = len(last24h)

	if len(last24h) > model.RecentViewsLimit {
		last24h = last24h[len(last24h)-model.RecentViewsLimit:]
	}
	summary.RecentViews = last24h

	return summary
}

// SummarizeClicks computes the click rollup and top-link rankings as of now.
func SummarizeClicks(clicks []model.LinkClickEvent, now time.Time) *model.LinkClickSummary {
	since24h := model.Millis(now.Add(-model.Window24Hours))
	since7d := model.Millis(now.Add(-model.Window7Days))
	since30d := model.Millis(now.Add(-model.Window30Days))

	summary := &model.LinkClickSummary{Total: len(clicks)}

	last24h := make([]model.LinkClickEvent, 0)
	for _, c := range clicks {
		if c.Timestamp > since30d {
			summary.Last30Days++
		}
		if c.Timestamp > since7d {
			summary.Last7Days++
		}
		if c.Timestamp > since24h {
			last24h = append(last24h, c)
		}
	}
	summary.Last24Hours = len(last24h)
	summary.TopLinks = rankLinks(clicks, model.TopLinksLimit)
	summary.TopLinks24h = rankLinks(last24h, model.TopLinksLimit)

	return summary
}

// rankLinks groups clicks by link id, keeping the first name seen for each id,
// and returns at most limit rows by descending count. Ties keep first-seen order.
func rankLinks(clicks []model.LinkClickEvent, limit int) []model.TopLink {
	index := make(map[int64]int)
	ranked := make([]model.TopLink, 0)
	for _, c := range clicks {
		i, ok := index[c.LinkID]
		if !ok {
			i = len(ranked)
			index[c.LinkID] = i
			ranked = append(ranked, model.TopLink{LinkID: c.LinkID, Name: c.LinkName})
		}
		ranked[i].Count++
	}

	slices.SortStableFunc(ranked, func(a, b model.TopLink) int {
		return b.Count - a.Count
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

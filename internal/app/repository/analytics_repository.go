package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sifan077/BioLink/internal/app/model"
)

var (
	// ErrCorruptStore signals that the analytics document exists but could not be read.
	// Load still returns an empty document alongside it.
	ErrCorruptStore = errors.New("analytics store unreadable")
)

// AnalyticsRepository persists the analytics document as one unit.
//
// Every call reads or writes the whole document. There is no locking:
// two concurrent read-modify-write cycles may lose one of the updates.
type AnalyticsRepository interface {
	// Load returns the stored document, or an empty one when nothing usable is stored.
	Load(ctx context.Context) (*model.AnalyticsData, error)
	// SaveViews prunes expired views and writes the document. Clicks are carried through as-is.
	SaveViews(ctx context.Context, data *model.AnalyticsData) error
	// SaveClicks prunes expired clicks and writes the document. Views are carried through as-is.
	SaveClicks(ctx context.Context, data *model.AnalyticsData) error
	// Replace writes the document without pruning.
	Replace(ctx context.Context, data *model.AnalyticsData) error
}

// AnalyticsFileOptions configures the JSON file repository.
type AnalyticsFileOptions struct {
	Path      string
	Retention time.Duration
	Now       func() time.Time
}

type analyticsFileRepository struct {
	path      string
	retention time.Duration
	now       func() time.Time
}

// NewAnalyticsFileRepository returns a JSON-file-backed AnalyticsRepository.
func NewAnalyticsFileRepository(opts AnalyticsFileOptions) AnalyticsRepository {
	if opts.Retention <= 0 {
		opts.Retention = model.Window30Days
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &analyticsFileRepository{
		path:      opts.Path,
		retention: opts.Retention,
		now:       opts.Now,
	}
}

func (r *analyticsFileRepository) Load(ctx context.Context) (*model.AnalyticsData, error) {
	if err := ctx.Err(); err != nil {
		return model.NewAnalyticsData(), err
	}

	var data model.AnalyticsData
	if _, err := readJSONFile(r.path, &data); err != nil {
		return model.NewAnalyticsData(), errors.Join(ErrCorruptStore, err)
	}
	data.Normalize()
	return &data, nil
}

func (r *analyticsFileRepository) SaveViews(ctx context.Context, data *model.AnalyticsData) error {
	cutoff := r.cutoff()
	out := &model.AnalyticsData{
		Views:      make([]model.ViewEvent, 0, len(data.Views)),
		LinkClicks: data.LinkClicks,
	}
	for _, v := range data.Views {
		if v.Timestamp > cutoff {
			out.Views = append(out.Views, v)
		}
	}
	return r.Replace(ctx, out)
}

func (r *analyticsFileRepository) SaveClicks(ctx context.Context, data *model.AnalyticsData) error {
	cutoff := r.cutoff()
	out := &model.AnalyticsData{
		Views:      data.Views,
		LinkClicks: make([]model.LinkClickEvent, 0, len(data.LinkClicks)),
	}
	for _, c := range data.LinkClicks {
		if c.Timestamp > cutoff {
			out.LinkClicks = append(out.LinkClicks, c)
		}
	}
	return r.Replace(ctx, out)
}

func (r *analyticsFileRepository) Replace(ctx context.Context, data *model.AnalyticsData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data.Normalize()
	return writeJSONFile(r.path, data)
}

func (r *analyticsFileRepository) cutoff() int64 {
	return model.Millis(r.now().Add(-r.retention))
}

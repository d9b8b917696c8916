package repository

import (
	"context"
	"fmt"

	"github.com/sifan077/BioLink/internal/app/model"
)

// ContentRepository defines the data access contract for the page content document.
type ContentRepository interface {
	Get(ctx context.Context) (*model.Content, error)
	Replace(ctx context.Context, content *model.Content) error
}

type contentFileRepository struct {
	path string
}

// NewContentFileRepository returns a JSON-file-backed ContentRepository.
func NewContentFileRepository(path string) ContentRepository {
	return &contentFileRepository{path: path}
}

// Get returns the stored content, or an empty document when the file does not exist yet.
func (r *contentFileRepository) Get(ctx context.Context) (*model.Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var content model.Content
	found, err := readJSONFile(r.path, &content)
	if err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	if !found || content.Profile == nil {
		content.Profile = &model.Profile{}
	}
	if content.SocialLinks == nil {
		content.SocialLinks = []model.SocialLink{}
	}
	if content.Videos == nil {
		content.Videos = []model.Video{}
	}
	return &content, nil
}

func (r *contentFileRepository) Replace(ctx context.Context, content *model.Content) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeJSONFile(r.path, content); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sifan077/BioLink/internal/app/model"
	"github.com/sifan077/BioLink/internal/app/repository"
)

var (
	// ErrInvalidContent signals a replace request missing profile, socialLinks or videos.
	ErrInvalidContent = errors.New("invalid data structure")
)

// ContentService defines operations on the page content document.
type ContentService interface {
	// Get returns the content with the admin password stripped.
	Get(ctx context.Context) (*model.Content, error)
	// Replace stores content wholesale, keeping the stored admin password.
	Replace(ctx context.Context, content *model.Content) (*model.Content, error)
}

type contentService struct {
	repo repository.ContentRepository
}

// NewContentService returns a service implementation backed by the given repository.
func NewContentService(repo repository.ContentRepository) ContentService {
	return &contentService{repo: repo}
}

func (s *contentService) Get(ctx context.Context) (*model.Content, error) {
	content, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get content: %w", err)
	}
	return content.Public(), nil
}

func (s *contentService) Replace(ctx context.Context, content *model.Content) (*model.Content, error) {
	if content == nil || content.Profile == nil || content.SocialLinks == nil || content.Videos == nil {
		return nil, ErrInvalidContent
	}

	current, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}

	next := *content
	next.AdminPassword = current.AdminPassword
	if err := s.repo.Replace(ctx, &next); err != nil {
		return nil, fmt.Errorf("replace content: %w", err)
	}
	return next.Public(), nil
}

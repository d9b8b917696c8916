package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/sifan077/BioLink/internal/app/repository"
)

const minPasswordLength = 3

var (
	// ErrWrongPassword signals that the submitted password does not match.
	ErrWrongPassword = errors.New("wrong password")
	// ErrWeakPassword signals a new password shorter than the minimum.
	ErrWeakPassword = fmt.Errorf("new password must be at least %d characters", minPasswordLength)
)

// PasswordGate compares submitted values against the single admin secret.
//
// The secret is the password stored in the content document; when none is
// stored the configured fallback is used. An empty secret never matches.
type PasswordGate interface {
	Check(ctx context.Context, submitted string) (bool, error)
	HasPassword(ctx context.Context) (bool, error)
	Change(ctx context.Context, current, next string) error
}

type passwordGate struct {
	repo     repository.ContentRepository
	fallback string
}

// NewPasswordGate returns a gate reading the stored password from repo.
func NewPasswordGate(repo repository.ContentRepository, fallback string) PasswordGate {
	return &passwordGate{repo: repo, fallback: fallback}
}

func (g *passwordGate) Check(ctx context.Context, submitted string) (bool, error) {
	content, err := g.repo.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("load admin password: %w", err)
	}
	secret := content.AdminPassword
	if secret == "" {
		secret = g.fallback
	}
	return secretEqual(submitted, secret), nil
}

func (g *passwordGate) HasPassword(ctx context.Context) (bool, error) {
	content, err := g.repo.Get(ctx)
	if err != nil {
		return false, fmt.Errorf("load admin password: %w", err)
	}
	return content.AdminPassword != "", nil
}

// Change replaces the stored password. The current value may match either
// the stored password or the configured fallback.
func (g *passwordGate) Change(ctx context.Context, current, next string) error {
	if len(next) < minPasswordLength {
		return ErrWeakPassword
	}

	content, err := g.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("load admin password: %w", err)
	}

	saved := content.AdminPassword
	if saved == "" {
		saved = g.fallback
	}
	if !secretEqual(current, saved) && !secretEqual(current, g.fallback) {
		return ErrWrongPassword
	}

	content.AdminPassword = next
	if err := g.repo.Replace(ctx, content); err != nil {
		return fmt.Errorf("save admin password: %w", err)
	}
	return nil
}

func secretEqual(submitted, secret string) bool {
	if secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(secret)) == 1
}

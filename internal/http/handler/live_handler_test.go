package handler_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/BioLink/internal/app/model"
	"github.com/sifan077/BioLink/internal/app/service"
	"github.com/sifan077/BioLink/internal/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLiveChecker struct {
	CheckFn      func(ctx context.Context, platform, identifier string) (*model.LiveStatus, error)
	lastPlatform string
	lastID       string
}

func (f *fakeLiveChecker) Check(ctx context.Context, platform, identifier string) (*model.LiveStatus, error) {
	f.lastPlatform, f.lastID = platform, identifier
	return f.CheckFn(ctx, platform, identifier)
}

func setupLiveApp(t *testing.T, checker handler.LiveStatusChecker) *fiber.App {
	t.Helper()
	app := fiber.New()
	handler.NewLiveHandler(handler.LiveDeps{Live: checker}).Register(app)
	return app
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestLive_RoutesToPlatform(t *testing.T) {
	checker := &fakeLiveChecker{
		CheckFn: func(ctx context.Context, platform, identifier string) (*model.LiveStatus, error) {
			return &model.LiveStatus{
				Platform:   platform,
				Identifier: identifier,
				IsLive:     true,
				CheckedAt:  time.Now(),
			}, nil
		},
	}
	app := setupLiveApp(t, checker)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/kick/live?username=ada", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp)["isLive"])
	assert.Equal(t, model.PlatformKick, checker.lastPlatform)
	assert.Equal(t, "ada", checker.lastID)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/youtube/live-status?channelId=UC123", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, model.PlatformYouTube, checker.lastPlatform)
	assert.Equal(t, "UC123", checker.lastID)
}

func TestLive_MissingParameter(t *testing.T) {
	app := setupLiveApp(t, &fakeLiveChecker{})

	for _, path := range []string{"/api/kick/live", "/api/youtube/live-status"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}

func TestLive_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", service.ErrChannelNotFound, http.StatusNotFound},
		{"upstream", fmt.Errorf("kick v1: %w", &service.UpstreamError{Platform: "kick", StatusCode: 500}), http.StatusBadGateway},
		{"timeout", fmt.Errorf("fetch: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"not configured", service.ErrUnknownPlatform, http.StatusServiceUnavailable},
		{"other", errors.New("connection reset"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupLiveApp(t, &fakeLiveChecker{
				CheckFn: func(ctx context.Context, platform, identifier string) (*model.LiveStatus, error) {
					return nil, tt.err
				},
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/kick/live?username=ada", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
			assert.Equal(t, false, decodeBody(t, resp)["isLive"])
		})
	}
}

package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/BioLink/internal/app/model"
	"github.com/sifan077/BioLink/internal/app/service"
	"github.com/sifan077/BioLink/internal/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fake analytics service implementing the interface the handler depends on.
type fakeAnalyticsService struct {
	TrackViewFn  func(ctx context.Context, in service.TrackViewInput) *model.TrackResult
	TrackClickFn func(ctx context.Context, in service.TrackClickInput) (*model.TrackResult, error)
	ViewSumErr   error
	ClickSumErr  error
	ResetErr     error
	lastView     service.TrackViewInput
	lastClick    service.TrackClickInput
	resetViews   int
	resetClicks  int
}

func (f *fakeAnalyticsService) TrackView(ctx context.Context, in service.TrackViewInput) *model.TrackResult {
	f.lastView = in
	if f.TrackViewFn != nil {
		return f.TrackViewFn(ctx, in)
	}
	return &model.TrackResult{Tracked: true}
}

func (f *fakeAnalyticsService) TrackClick(ctx context.Context, in service.TrackClickInput) (*model.TrackResult, error) {
	f.lastClick = in
	if f.TrackClickFn != nil {
		return f.TrackClickFn(ctx, in)
	}
	return &model.TrackResult{Tracked: true}, nil
}

func (f *fakeAnalyticsService) ViewSummary(ctx context.Context) (*model.ViewSummary, error) {
	if f.ViewSumErr != nil {
		return nil, f.ViewSumErr
	}
	return &model.ViewSummary{Last24Hours: 3, Total: 5, HourlyViews: map[int]int{14: 3}, RecentViews: []model.ViewEvent{}}, nil
}

func (f *fakeAnalyticsService) LinkClickSummary(ctx context.Context) (*model.LinkClickSummary, error) {
	if f.ClickSumErr != nil {
		return nil, f.ClickSumErr
	}
	return &model.LinkClickSummary{
		Total:    2,
		TopLinks: []model.TopLink{{LinkID: 1, Name: "GitHub", Count: 2}},
	}, nil
}

func (f *fakeAnalyticsService) ResetViews(ctx context.Context) error {
	f.resetViews++
	return f.ResetErr
}

func (f *fakeAnalyticsService) ResetClicks(ctx context.Context) error {
	f.resetClicks++
	return f.ResetErr
}

func setupAnalyticsApp(t *testing.T, svc service.AnalyticsService, guards handler.Guards) *fiber.App {
	t.Helper()
	app := fiber.New()
	handler.NewAnalyticsHandler(handler.AnalyticsDeps{Analytics: svc}).Register(app, guards)
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func TestTrackView_PassesSourceAndUserAgent(t *testing.T) {
	svc := &fakeAnalyticsService{}
	app := setupAnalyticsApp(t, svc, handler.Guards{})

	req := httptest.NewRequest(http.MethodPost, "/api/analytics/track", nil)
	req.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["tracked"])
	assert.Equal(t, false, body["skipped"])
	assert.Equal(t, "203.0.113.9", svc.lastView.SourceAddress)
	assert.Equal(t, "Mozilla/5.0", svc.lastView.UserAgent)
}

func TestTrackView_SkipIsSuccess(t *testing.T) {
	svc := &fakeAnalyticsService{
		TrackViewFn: func(ctx context.Context, in service.TrackViewInput) *model.TrackResult {
			return &model.TrackResult{Skipped: true, Reason: model.SkipReasonDuplicate, LastView: 1000}
		},
	}
	app := setupAnalyticsApp(t, svc, handler.Guards{})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/analytics/track", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, true, body["skipped"])
	assert.Equal(t, "duplicate", body["reason"])
	assert.EqualValues(t, 1000, body["lastView"])
	assert.Equal(t, "unknown", svc.lastView.SourceAddress)
}

func TestTrackClick(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{"valid", `{"linkId":3,"linkName":"GitHub"}`, nil, http.StatusOK},
		{"malformed json", `{"linkId":`, nil, http.StatusBadRequest},
		{"invalid click", `{"linkId":0,"linkName":""}`, service.ErrInvalidClick, http.StatusBadRequest},
		{"unexpected error", `{"linkId":3,"linkName":"GitHub"}`, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAnalyticsService{
				TrackClickFn: func(ctx context.Context, in service.TrackClickInput) (*model.TrackResult, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &model.TrackResult{Tracked: true}, nil
				},
			}
			app := setupAnalyticsApp(t, svc, handler.Guards{})

			req := jsonRequest(http.MethodPost, "/api/analytics/link-click", tt.body)
			req.Header.Set("X-Real-IP", "198.51.100.2")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, int64(3), svc.lastClick.LinkID)
				assert.Equal(t, "GitHub", svc.lastClick.LinkName)
				assert.Equal(t, "198.51.100.2", svc.lastClick.SourceAddress)
			}
		})
	}
}

func TestSummaries(t *testing.T) {
	svc := &fakeAnalyticsService{}
	app := setupAnalyticsApp(t, svc, handler.Guards{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/analytics/track", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	views := decodeBody(t, resp)
	assert.EqualValues(t, 3, views["last24Hours"])
	assert.EqualValues(t, 3, views["hourlyViews"].(map[string]any)["14"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/analytics/link-click", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	clicks := decodeBody(t, resp)
	top := clicks["topLinks"].([]any)
	require.Len(t, top, 1)
	assert.Equal(t, "GitHub", top[0].(map[string]any)["name"])
}

func TestSummaries_UnavailableOnStoreFailure(t *testing.T) {
	svc := &fakeAnalyticsService{
		ViewSumErr:  errors.New("disk gone"),
		ClickSumErr: errors.New("disk gone"),
	}
	app := setupAnalyticsApp(t, svc, handler.Guards{})

	for _, path := range []string{"/api/analytics/track", "/api/analytics/link-click"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, true, body["unavailable"])
		assert.Equal(t, "analytics data unavailable", body["error"])
	}
}

func TestReset(t *testing.T) {
	svc := &fakeAnalyticsService{}
	app := setupAnalyticsApp(t, svc, handler.Guards{})

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/analytics/track", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp)["success"])

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/api/analytics/link-click", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 1, svc.resetViews)
	assert.Equal(t, 1, svc.resetClicks)
}

func TestReset_FailureReportsSuccessFalse(t *testing.T) {
	svc := &fakeAnalyticsService{ResetErr: errors.New("read-only filesystem")}
	app := setupAnalyticsApp(t, svc, handler.Guards{})

	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/analytics/track", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, decodeBody(t, resp)["success"])
}

func TestAdminGuardProtectsDashboardRoutes(t *testing.T) {
	deny := func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusUnauthorized)
	}
	svc := &fakeAnalyticsService{}
	app := setupAnalyticsApp(t, svc, handler.Guards{Admin: deny})

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		resp, err := app.Test(httptest.NewRequest(method, "/api/analytics/track", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
	assert.Zero(t, svc.resetViews)

	// Ingestion stays public.
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/analytics/track", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sifan077/BioLink/config"
	"github.com/sifan077/BioLink/internal/app/repository"
	"github.com/sifan077/BioLink/internal/app/service"
	"github.com/sifan077/BioLink/internal/http/middleware"
	httpUtil "github.com/sifan077/BioLink/internal/http/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, rdb *redis.Client, limit int) *Server {
	t.Helper()
	dir := t.TempDir()

	bots, err := service.NewBotDetector(config.DefaultBotPatterns)
	require.NoError(t, err)

	contentRepo := repository.NewContentFileRepository(filepath.Join(dir, "links.json"))
	analyticsRepo := repository.NewAnalyticsFileRepository(repository.AnalyticsFileOptions{
		Path:      filepath.Join(dir, "analytics.json"),
		Retention: 30 * 24 * time.Hour,
	})

	return New(Dependencies{
		Redis:     rdb,
		RateLimit: middleware.RateLimitConfig{MaxRequests: limit, Window: time.Minute},
		Analytics: service.NewAnalyticsService(service.AnalyticsDeps{
			Repo:     analyticsRepo,
			Bots:     bots,
			Location: time.UTC,
		}),
		Content: service.NewContentService(contentRepo),
		Gate:    service.NewPasswordGate(contentRepo, "letmein"),
		Tokens:  httpUtil.NewTokenSigner([]byte("server-test-secret"), time.Hour),
	})
}

func do(t *testing.T, s *Server, method, path, body string, headers map[string]string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := s.App().Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestServer_AnalyticsRoundTrip(t *testing.T) {
	s := newTestServer(t, nil, 0)
	visitor := map[string]string{"X-Forwarded-For": "203.0.113.7", "User-Agent": "Mozilla/5.0"}

	status, body := do(t, s, http.MethodPost, "/api/analytics/track", "", visitor)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["tracked"])

	status, body = do(t, s, http.MethodPost, "/api/analytics/track", "", visitor)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "duplicate", body["reason"])

	status, body = do(t, s, http.MethodPost, "/api/analytics/track", "",
		map[string]string{"User-Agent": "Googlebot/2.1"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "bot", body["reason"])

	status, body = do(t, s, http.MethodPost, "/api/analytics/link-click", `{"linkId":4,"linkName":"GitHub"}`, visitor)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["tracked"])

	status, _ = do(t, s, http.MethodPost, "/api/analytics/link-click", `{"linkName":"GitHub"}`, visitor)
	assert.Equal(t, http.StatusBadRequest, status)

	// Dashboard needs a session.
	status, _ = do(t, s, http.MethodGet, "/api/analytics/track", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = do(t, s, http.MethodPost, "/api/admin/login", `{"password":"letmein"}`, nil)
	require.Equal(t, http.StatusOK, status)
	auth := map[string]string{"Authorization": "Bearer " + body["token"].(string)}

	status, body = do(t, s, http.MethodGet, "/api/analytics/track", "", auth)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 1, body["last24Hours"])

	status, body = do(t, s, http.MethodGet, "/api/analytics/link-click", "", auth)
	assert.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total"])

	status, body = do(t, s, http.MethodDelete, "/api/analytics/track", "", auth)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	_, body = do(t, s, http.MethodGet, "/api/analytics/track", "", auth)
	assert.EqualValues(t, 0, body["total"])
	_, body = do(t, s, http.MethodGet, "/api/analytics/link-click", "", auth)
	assert.EqualValues(t, 1, body["total"])
}

func TestServer_RateLimitsPublicIngestion(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s := newTestServer(t, rdb, 2)
	visitor := map[string]string{"X-Real-IP": "198.51.100.4"}

	for range 2 {
		status, _ := do(t, s, http.MethodPost, "/api/analytics/track", "", visitor)
		assert.Equal(t, http.StatusOK, status)
	}
	status, body := do(t, s, http.MethodPost, "/api/analytics/track", "", visitor)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "rate limit exceeded", body["error"])

	// Reads are not limited.
	status, _ = do(t, s, http.MethodGet, "/health", "", visitor)
	assert.Equal(t, http.StatusOK, status)
}

func TestServer_RequestIDAndCORS(t *testing.T) {
	s := newTestServer(t, nil, 0)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodOptions, "/api/links", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
}

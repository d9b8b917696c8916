package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sifan077/BioLink/internal/app/service"
	inthttp "github.com/sifan077/BioLink/internal/http/handler"
	"github.com/sifan077/BioLink/internal/http/middleware"
	httpUtil "github.com/sifan077/BioLink/internal/http/util"
	"go.uber.org/zap"
)

const readTimeout = 15 * time.Second

// Dependencies bundles the services and infrastructure required by the HTTP server.
type Dependencies struct {
	Logger *zap.Logger
	// Redis backs the per-client rate limit. Nil disables limiting.
	Redis      *redis.Client
	RateLimit  middleware.RateLimitConfig
	CORSOrigin string

	Analytics service.AnalyticsService
	Content   service.ContentService
	Gate      service.PasswordGate
	Live      inthttp.LiveStatusChecker
	Tokens    *httpUtil.TokenSigner
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with all routes registered.
func New(deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "BioLink",
		DisableStartupMessage: true,
		ReadTimeout:           readTimeout,
	})

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerMiddleware()
	s.registerRoutes()
	return s
}

// App exposes the underlying Fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerMiddleware() {
	s.app.Use(
		middleware.RequestID(),
		middleware.Logger(s.deps.Logger.Named("http")),
		middleware.Recovery(s.deps.Logger),
		middleware.CORS(s.deps.CORSOrigin),
	)
}

func (s *Server) guards() inthttp.Guards {
	guards := inthttp.Guards{
		Admin: middleware.AdminAuth(s.deps.Tokens, s.deps.Logger),
	}
	if s.deps.Redis != nil {
		guards.RateLimit = middleware.RateLimit(s.deps.Redis, s.deps.RateLimit, s.deps.Logger)
	}
	return guards
}

func (s *Server) registerRoutes() {
	guards := s.guards()

	inthttp.NewPageHandler(inthttp.PageDeps{
		Logger:  s.deps.Logger,
		Content: s.deps.Content,
	}).Register(s.app)

	inthttp.NewAnalyticsHandler(inthttp.AnalyticsDeps{
		Logger:    s.deps.Logger,
		Analytics: s.deps.Analytics,
	}).Register(s.app, guards)

	inthttp.NewContentHandler(inthttp.ContentDeps{
		Logger:  s.deps.Logger,
		Content: s.deps.Content,
	}).Register(s.app, guards)

	inthttp.NewAdminHandler(inthttp.AdminDeps{
		Logger: s.deps.Logger,
		Gate:   s.deps.Gate,
		Tokens: s.deps.Tokens,
	}).Register(s.app, guards)

	if s.deps.Live != nil {
		inthttp.NewLiveHandler(inthttp.LiveDeps{
			Logger: s.deps.Logger,
			Live:   s.deps.Live,
		}).Register(s.app)
	}
}

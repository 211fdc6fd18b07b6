package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Server is the JSON API server.
type Server struct {
	ports *Ports
	app   *fiber.App
}

// NewServer creates a server and registers its routes.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		app: fiber.New(fiber.Config{
			AppName:               "sercha-rag",
			ErrorHandler:          ErrorHandler,
			DisableStartupMessage: true,
		}),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.app.Get("/health", s.handleHealth)

	v1 := s.app.Group("/api/v1")
	v1.Post("/retrieve", s.handleRetrieve)
	v1.Post("/context", s.handleContext)
	v1.Post("/ask", s.handleAsk)
	v1.Post("/ingest", s.handleIngest)
	v1.Get("/index", s.handleIndexInfo)
	v1.Delete("/index", s.handleIndexClear)
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until ctx is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	go func() {
		<-ctx.Done()
		if err := s.app.Shutdown(); err != nil {
			logger.Warn("http shutdown: %v", err)
		}
	}()

	logger.Info("HTTP API listening on %s", addr)
	if err := s.app.Listen(addr); err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return nil
}

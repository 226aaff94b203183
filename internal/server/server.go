// Package server exposes the study service over HTTP: JSON endpoints for
// modules, references and searches, and a websocket that streams search
// results page by page.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/FocuswithJustin/JuniperStudy/internal/config"
	"github.com/FocuswithJustin/JuniperStudy/internal/logging"
	"github.com/FocuswithJustin/JuniperStudy/internal/services"
)

// APIPrefix is the path prefix of every route.
const APIPrefix = "/api"

const shutdownTimeout = 10 * time.Second

// Server is the HTTP front end.
type Server struct {
	cfg  *config.Config
	svc  *services.StudyService
	hub  *Hub
	echo *echo.Echo
}

// New builds the echo instance and registers every route.
func New(cfg *config.Config, svc *services.StudyService) *Server {
	s := &Server{cfg: cfg, svc: svc, hub: NewHub()}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.Recover())
	e.Use(logging.RequestID())
	e.Use(logging.RequestLogger())
	e.Use(SecurityHeaders(APICSPConfig()))
	e.Use(CORS(cfg.AllowedOrigins))

	// The websocket stays open while loading: clients get the status now
	// and again when loading ends.
	e.GET(APIPrefix+"/ws/search", NewSearchStream(svc, s.hub, cfg.AllowedOrigins).Handle)
	api := e.Group(APIPrefix, RequireLibrary(svc))
	NewStudyHandler(svc).RegisterRoutes(api)

	s.echo = e
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Run starts the hub and listens on cfg.ListenAddr until ctx ends, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)
	go s.announceReady(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		logging.ServerStartup("api", "http", s.cfg.ListenAddr)
		errCh <- s.echo.Start(s.cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// announceReady broadcasts the final library status once loading ends.
func (s *Server) announceReady(ctx context.Context) {
	select {
	case <-s.svc.Ready():
		status := s.svc.Status()
		s.hub.Broadcast(Message{Type: MessageStatus, Status: &status})
	case <-ctx.Done():
	}
}

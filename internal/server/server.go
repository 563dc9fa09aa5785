// Package server wires the local places API together: database, services,
// handlers, middleware and routes.
//
// The client never imports this package. It exists so the CLI has something
// to talk to during development and so client tests can run against a real
// HTTP server (see Router).
//
// DEPENDENCY FLOW:
//
//	sqlite.DB → UserDB / CardDB → AuthService, UserService, CardService
//	         → AuthHandler, UserHandler, CardHandler → chi routes
//
// This is the composition root: every dependency is built in New.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/mesto/internal/auth"
	"github.com/sakif/mesto/internal/handler"
	"github.com/sakif/mesto/internal/middleware"
	sqliteRepo "github.com/sakif/mesto/internal/repository/sqlite"
	"github.com/sakif/mesto/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
	TokenTTL  time.Duration

	// PasswordCost is the bcrypt cost. Zero means the production default.
	PasswordCost int
}

// Server represents the HTTP server and all its dependencies. It owns the
// database connection and closes it on shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and builds the router.
//
// We import repository/sqlite as `sqliteRepo` so it does not read like the
// driver package.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	passwords := auth.NewPasswordService()
	if cfg.PasswordCost != 0 {
		passwords = auth.NewPasswordServiceWithCost(cfg.PasswordCost)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(tokens, passwords)

	return s, nil
}

// setupRoutes configures middleware and handlers.
//
// ROUTES:
//
//	POST   /signup             → register                  (public)
//	POST   /signin             → exchange creds for token  (public)
//	GET    /users/me           → current user
//	PATCH  /users/me           → edit name and about
//	PATCH  /users/me/avatar    → edit avatar
//	GET    /cards              → feed, newest first
//	POST   /cards              → add card
//	DELETE /cards/{id}         → delete own card
//	PUT    /cards/{id}/likes   → like
//	DELETE /cards/{id}/likes   → unlike
//
// Middleware runs in the order it is added. RequestID comes before Logger so
// every log line carries the id.
func (s *Server) setupRoutes(tokens *auth.TokenService, passwords *auth.PasswordService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	users := s.db.Users()
	cards := s.db.Cards()

	authService := service.NewAuthService(users, tokens, passwords, s.logger)
	userService := service.NewUserService(users, s.logger)
	cardService := service.NewCardService(cards, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	userHandler := handler.NewUserHandler(authService, userService, s.logger)
	cardHandler := handler.NewCardHandler(cardService, s.logger)

	s.router.Post("/signup", authHandler.HandleSignup)
	s.router.Post("/signin", authHandler.HandleSignin)

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/users/me", userHandler.HandleMe)
		r.Patch("/users/me", userHandler.HandleUpdateProfile)
		r.Patch("/users/me/avatar", userHandler.HandleUpdateAvatar)

		r.Get("/cards", cardHandler.HandleList)
		r.Post("/cards", cardHandler.HandleCreate)
		r.Delete("/cards/{id}", cardHandler.HandleDelete)
		r.Put("/cards/{id}/likes", cardHandler.HandleLike)
		r.Delete("/cards/{id}/likes", cardHandler.HandleUnlike)
	})
}

// Router returns the fully wired handler. Tests mount it on httptest.Server.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the database. Start calls it on shutdown; tests that never
// call Start must call it themselves.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for up
// to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

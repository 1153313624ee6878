package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crucial707/replydesk/internal/auth"
	"github.com/crucial707/replydesk/internal/completion"
	"github.com/crucial707/replydesk/internal/config"
	"github.com/crucial707/replydesk/internal/handlers"
	"github.com/crucial707/replydesk/internal/middleware"
	"github.com/crucial707/replydesk/internal/store"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg.LogFormat)
	slog.SetDefault(logger)

	st, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open credential store: %v", err)
	}
	if err := st.Load(context.Background()); err != nil {
		log.Fatalf("Failed to load credential store: %v", err)
	}

	authenticator := auth.NewAuthenticator(st, []byte(cfg.JWTSecret),
		time.Duration(cfg.JWTExpireMinutes)*time.Minute)

	janitor := authenticator.StartJanitor(logger)
	defer janitor.Stop()

	client := completion.NewClient(completion.Config{
		BaseURL:     cfg.OpenAIBaseURL,
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     time.Duration(cfg.CompletionTimeout) * time.Second,
	}, logger)

	r := newRouter(st, authenticator, client, cfg)

	addr := ":" + cfg.Port
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		logger.Info("starting server with TLS", "addr", addr)
		err = http.ListenAndServeTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile, r)
	} else {
		logger.Info("starting server", "addr", addr)
		err = http.ListenAndServe(addr, r)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// newStore picks the configured credential store backend.
func newStore(cfg config.Config) (store.Store, error) {
	if cfg.StoreBackend == "postgres" {
		return store.Connect(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass, cfg.AdminPassword)
	}
	return store.NewFileStore(cfg.StoreFile, cfg.AdminPassword), nil
}

func newLogger(format string) *slog.Logger {
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// newRouter builds the full handler chain. Extracted from main so the
// integration tests can mount it on httptest servers.
func newRouter(st store.Store, authenticator *auth.Authenticator, client *completion.Client, cfg config.Config) http.Handler {
	logger := slog.Default()

	authHandler := &handlers.AuthHandler{Auth: authenticator, Logger: logger}
	userHandler := &handlers.UserHandler{Store: st, Logger: logger}
	genHandler := &handlers.GenerateHandler{Client: client, Logger: logger}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	loginLimiter := middleware.AuthRateLimiter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
		r.With(loginLimiter.Middleware).Post("/auth/login", authHandler.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(authenticator))
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/me", authHandler.Me)
	})

	r.Get("/v1/options", handlers.Options)

	// Generation; the auth gate is optional so the pre-login version of the
	// tool stays runnable locally.
	r.Group(func(r chi.Router) {
		if cfg.AuthRequired {
			r.Use(middleware.RequireAuth(authenticator))
		}
		r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
		r.Post("/v1/generate", genHandler.Generate)
	})

	// User management is admin only.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(authenticator))
		r.Use(middleware.RequireAdmin)
		r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))
		r.Get("/v1/users", userHandler.ListUsers)
		r.Post("/v1/users", userHandler.CreateUser)
	})

	return r
}

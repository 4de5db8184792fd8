// Package server exposes the prompt builder as a small local JSON API, the
// stand-in for the original browser form.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/valpere/promptg/internal"
	"github.com/valpere/promptg/internal/generator"
	"github.com/valpere/promptg/internal/logger"
	"github.com/valpere/promptg/internal/prompt"
	"github.com/valpere/promptg/internal/session"
)

// History is the read side of the generation history.
type History interface {
	ListGenerations(ctx context.Context, limit int) ([]internal.GenerationRecord, error)
}

type App struct {
	Session   *session.Session
	Generator *generator.Generator
	// History is optional; the history route is not mounted without it.
	History     History
	Catalog     prompt.Catalog
	CORSOrigins []string
	Logger      *slog.Logger
}

const maxBodyBytes = 64 << 10

func NewRouter(app *App) http.Handler {
	if app.Logger == nil {
		app.Logger = logger.Discard()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, app.requestLogger)

	r.Get("/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/options", app.Options)

		r.Route("/session", func(r chi.Router) {
			r.Get("/", app.SessionStatus)
			r.Post("/", app.Login)
			r.Delete("/", app.Logout)
		})

		r.Route("/prompts", func(r chi.Router) {
			r.Post("/", app.Generate)
			r.Post("/assemble", app.Assemble)
		})

		if app.History != nil {
			r.Get("/history", app.ListHistory)
		}
	})

	c := cors.New(cors.Options{
		AllowedOrigins: app.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(r)
}

// NewHTTPServer wraps the router with conservative timeouts. WriteTimeout
// covers the slowest enhancement call.
func NewHTTPServer(addr string, handler http.Handler, enhanceTimeout time.Duration) *http.Server {
	write := enhanceTimeout + 15*time.Second
	if enhanceTimeout <= 0 {
		write = 2 * time.Minute
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       60 * time.Second,
	}
}

func (a *App) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-menu-auth/internal/application/auth"
	"github.com/go-menu-auth/internal/application/session"
	"github.com/go-menu-auth/internal/application/verification"
	"github.com/go-menu-auth/internal/config"
	"github.com/go-menu-auth/internal/transport/http/handler"
	appmiddleware "github.com/go-menu-auth/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	codeSvc := verification.NewService(verification.ServiceDeps{
		CodeRepo:      deps.VerificationRepo,
		Notifier:      deps.Notifier,
		CodeTTL:       cfg.VerificationCodeTTL,
		NotifyTimeout: cfg.NotifyTimeout,
	})
	sessionSvc := session.NewService(session.ServiceDeps{
		SessionRepo: deps.SessionRepo,
		UserRepo:    deps.UserRepo,
		SessionTTL:  cfg.SessionTTL,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo: deps.UserRepo,
		Codes:    codeSvc,
		Sessions: sessionSvc,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Use(appmiddleware.Session(authSvc))

		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.Post("/auth/register", authH.Register)
		r.Post("/auth/send-code", authH.SendCode)
		r.Post("/auth/verify", authH.Verify)
		r.Post("/auth/logout", authH.Logout)
		r.Get("/auth/me", authH.Me)
	})

	return r
}

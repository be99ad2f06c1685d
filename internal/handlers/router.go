package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	mW "github.com/cashwise/backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type RouterConfig struct {
	Auth     *AuthHandler
	Accounts *AccountHandler
	Expenses *ExpenseHandler
	Limits   *LimitHandler
	Verifier mW.TokenVerifier
	// UploadsDir is served under /uploads/
	UploadsDir string
	// Ping reports storage health for /health; nil means always healthy.
	Ping func() error
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders(mW.DefaultHeadersConfig()))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Access-Control-Allow-Origin"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Ping != nil {
			if err := cfg.Ping(); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	if cfg.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", mW.StaticFileServer(cfg.UploadsDir)))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", cfg.Auth.Login)
		r.Post("/auth/logout", cfg.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(mW.AuthMiddleware(cfg.Verifier))

			r.Post("/account", cfg.Accounts.CreateAccount)
			r.Get("/account", cfg.Accounts.ListAccounts)
			r.Put("/account", cfg.Accounts.Transfer)
			r.Get("/account/balance", cfg.Accounts.Balance)
			r.Get("/account/transaction", cfg.Accounts.History)

			r.Get("/admin/account", cfg.Accounts.Rollup)

			r.Post("/form/{userId}/{family}/{category}", cfg.Expenses.SubmitExpense)
			r.Put("/users/expenses", cfg.Expenses.ReviewExpense)
			r.Patch("/users/expenses", cfg.Expenses.AttachFiles)

			r.Get("/limits/{userId}", cfg.Limits.GetLimit)
			r.Put("/limits/{userId}", cfg.Limits.UpdateLimit)
		})
	})

	return r
}

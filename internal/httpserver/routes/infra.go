package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
	"github.com/MrSnakeDoc/newtab/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/newtab/internal/httpserver/mw"
)

func init() { Register(registerInfra) }

func registerInfra(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))

	cidrs := mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)
	r.With(cidrs).Get("/readyz", handlers.Readyz(d))
	r.With(cidrs).Get("/infra", handlers.Infra(d))
	r.With(private(d)...).Post("/reload", handlers.Reload(d))
}

package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
	"github.com/MrSnakeDoc/newtab/internal/httpserver/handlers"
)

func init() { Register(registerAPI) }

func registerAPI(r chi.Router, d deps.Deps) {
	r.Route("/api", func(r chi.Router) {
		r.Use(private(d)...)

		r.Get("/shortcuts", handlers.ListShortcuts(d))
		r.Get("/categories", handlers.Categories(d))
		r.Get("/validate", handlers.ValidateURL(d))
		r.Get("/clock", handlers.Clock(d))
		r.Get("/weather", handlers.Weather(d))

		r.Get("/mode", handlers.GetMode(d))
		r.Put("/mode", handlers.PutMode(d))
		r.Put("/category", handlers.PutCategory(d))
		r.Put("/sort", handlers.PutSort(d))

		r.Group(func(r chi.Router) {
			r.Use(limited(d))
			r.Post("/shortcuts", handlers.AddShortcut(d))
			r.Put("/shortcuts/{index}", handlers.EditShortcut(d))
			r.Delete("/shortcuts/{index}", handlers.RemoveShortcut(d))
			r.Post("/shortcuts/{index}/activate", handlers.Activate(d))
		})
	})
}

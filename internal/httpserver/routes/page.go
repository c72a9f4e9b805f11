package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
	"github.com/MrSnakeDoc/newtab/internal/httpserver/handlers"
)

func init() { Register(registerPage) }

func registerPage(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(private(d)...)

		r.Get("/", handlers.Page(d))
		r.Get("/search", handlers.Search(d))

		r.Group(func(r chi.Router) {
			r.Use(limited(d))
			r.Get("/open/{index}", handlers.Open(d))
			r.Post("/shortcuts", handlers.CreateShortcut(d))
			r.Post("/shortcuts/{index}", handlers.UpdateShortcut(d))
			r.Post("/shortcuts/{index}/delete", handlers.DeleteShortcut(d))
		})

		r.Post("/mode/{event}", handlers.ModeEvent(d))
		r.Post("/category", handlers.SelectCategory(d))
		r.Post("/sort", handlers.SelectSort(d))
	})
}

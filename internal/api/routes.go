package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountAccountRoutes registers the /users endpoints on r. Registration and
// login are public; every other route runs behind authenticate.
func MountAccountRoutes(r chi.Router, h *AccountHandler, authenticate func(http.Handler) http.Handler) {
	r.Route("/users", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", h.List)
			r.Get("/{id}", h.Get)
			r.Delete("/{id}", h.Delete)
			r.Put("/{id}/username", h.UpdateUsername)
			r.Put("/{id}/password", h.UpdatePassword)
			r.Put("/{id}/profile", h.UpdateProfile)
		})
	})
}

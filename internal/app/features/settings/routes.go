// internal/app/features/settings/routes.go
package settings

import "github.com/go-chi/chi/v5"

// AdminRoutes serves the settings form behind the admin gate.
func AdminRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeForm)
	r.Post("/", h.HandleSave)
	return r
}

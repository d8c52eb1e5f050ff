// internal/app/features/groups/routes.go
package groups

import "github.com/go-chi/chi/v5"

// AdminRoutes serves the group management pages behind the admin gate.
func AdminRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/new", h.ServeNew)
	r.Post("/new", h.HandleCreate)
	r.Route("/{id}", func(pr chi.Router) {
		pr.Get("/edit", h.ServeEdit)
		pr.Post("/edit", h.HandleEdit)
		pr.Post("/delete", h.HandleDelete)
	})
	return r
}

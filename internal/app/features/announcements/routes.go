// internal/app/features/announcements/routes.go
package announcements

import "github.com/go-chi/chi/v5"

// Routes serves the public pages.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeDetail)
	return r
}

// AdminRoutes serves the CRUD pages behind the admin gate.
func AdminRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeAdminList)
	r.Get("/new", h.ServeNew)
	r.Post("/new", h.HandleCreate)
	r.Route("/{id}", func(pr chi.Router) {
		pr.Get("/edit", h.ServeEdit)
		pr.Post("/edit", h.HandleEdit)
		pr.Post("/delete", h.HandleDelete)
	})
	return r
}

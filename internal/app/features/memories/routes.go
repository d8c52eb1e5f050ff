// internal/app/features/memories/routes.go
package memories

import "github.com/go-chi/chi/v5"

// Routes serves the member-facing wall. The parent router requires sign-in;
// contribution rights are checked per handler.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/new", h.ServeNew)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeDetail)
	return r
}

// AdminRoutes serves the moderation pages behind the admin gate.
func AdminRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeAdminList)
	r.Get("/pending", h.ServePendingQueue)
	r.Route("/{id}", func(pr chi.Router) {
		pr.Get("/approve", h.ServeApprove)
		pr.Post("/approve", h.HandleApprove)
		pr.Post("/reject", h.HandleReject)
		pr.Get("/edit", h.ServeEdit)
		pr.Post("/edit", h.HandleEdit)
		pr.Post("/unpublish", h.HandleUnpublish)
		pr.Post("/delete", h.HandleDelete)
	})
	return r
}

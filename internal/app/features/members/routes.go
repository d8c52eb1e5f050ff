// internal/app/features/members/routes.go
package members

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/pending", h.ServePending)

	r.Route("/{id}", func(pr chi.Router) {
		pr.Post("/approve", h.HandleApprove)
		pr.Post("/reject", h.HandleReject)
		pr.Get("/edit", h.ServeEdit)
		pr.Post("/edit", h.HandleEdit)
		pr.Post("/role", h.HandleChangeRole)
		pr.Post("/delete", h.HandleDelete)
	})

	return r
}

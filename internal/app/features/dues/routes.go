// internal/app/features/dues/routes.go
package dues

import "github.com/go-chi/chi/v5"

// Routes serves the member-facing ledger. Sign-in is enforced by the parent
// router.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeMyDues)
	return r
}

// AdminRoutes serves the ledger management pages behind the admin gate.
func AdminRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeAdminList)
	r.Post("/add", h.HandleAdd)
	r.Route("/{id}", func(pr chi.Router) {
		pr.Post("/pay", h.HandlePay)
		pr.Post("/delete", h.HandleDelete)
	})
	return r
}

// internal/app/features/metaverse/routes.go
package metaverse

import "github.com/go-chi/chi/v5"

// Routes serves the portal behind the signed-in gate; the role and module
// checks happen in the handlers so the responses stay page-shaped.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(h.SessionMgr.RequireSignedIn)
	r.Get("/", h.ServePortal)
	r.Get("/login", h.ServeLogin)
	r.Post("/login", h.HandleLogin)
	r.Post("/exit", h.HandleExit)
	return r
}

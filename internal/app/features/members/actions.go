// internal/app/features/members/actions.go
package members

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	userpolicy "github.com/dalemusser/villagehub/internal/app/policy/userpolicy"
	userstore "github.com/dalemusser/villagehub/internal/app/store/users"
	"github.com/dalemusser/villagehub/internal/app/system/timeouts"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// memberID extracts and parses the {id} route parameter.
func memberID(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	return id, err == nil
}

// HandleApprove moves a pending application into a membership role. The
// chosen role comes from the form ("active_member" or "passive_member").
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	id, ok := memberID(r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Member not found.", "/admin/members/pending")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin/members/pending")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	role := r.FormValue("role")
	if err := h.Policy.Approve(ctx, id, role); err != nil {
		switch {
		case errors.Is(err, userstore.ErrNotFound):
			uierrors.RenderNotFound(w, r, "Member not found.", "/admin/members/pending")
		case errors.Is(err, userpolicy.ErrInvalidRole):
			h.SessionMgr.AddFlash(w, r, "Choose either active or passive membership.")
			http.Redirect(w, r, "/admin/members/pending", http.StatusSeeOther)
		default:
			h.ErrLog.LogServerError(w, r, "approve member failed", err, "Failed to approve the application.", "/admin/members/pending")
		}
		return
	}

	h.Log.Info("membership approved", zap.String("user_id", id.Hex()), zap.String("role", role))
	h.SessionMgr.AddFlash(w, r, "Application approved.")
	http.Redirect(w, r, "/admin/members/pending", http.StatusSeeOther)
}

// HandleReject deletes a pending application. Only pending records may be
// rejected; approved members go through HandleDelete instead.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	id, ok := memberID(r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Member not found.", "/admin/members/pending")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		uierrors.RenderNotFound(w, r, "Member not found.", "/admin/members/pending")
		return
	}
	if u.Role != models.RolePending {
		h.SessionMgr.AddFlash(w, r, "Only pending applications can be rejected.")
		http.Redirect(w, r, "/admin/members/pending", http.StatusSeeOther)
		return
	}

	if _, err := h.Users.Delete(ctx, id); err != nil {
		h.ErrLog.LogServerError(w, r, "reject member failed", err, "Failed to reject the application.", "/admin/members/pending")
		return
	}

	h.Log.Info("membership application rejected", zap.String("user_id", id.Hex()))
	h.SessionMgr.AddFlash(w, r, "Application rejected.")
	http.Redirect(w, r, "/admin/members/pending", http.StatusSeeOther)
}

// HandleChangeRole changes an approved member's role. Admin records are
// protected; promotion to admin is allowed.
func (h *Handler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := memberID(r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Member not found.", "/admin/members")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin/members")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	role := r.FormValue("role")
	if err := h.Policy.ChangeRole(ctx, id, role); err != nil {
		switch {
		case errors.Is(err, userstore.ErrNotFound):
			uierrors.RenderNotFound(w, r, "Member not found.", "/admin/members")
		case errors.Is(err, userpolicy.ErrAdminProtected):
			h.SessionMgr.AddFlash(w, r, "Administrator accounts cannot be modified here.")
			http.Redirect(w, r, "/admin/members", http.StatusSeeOther)
		case errors.Is(err, userpolicy.ErrInvalidRole):
			h.SessionMgr.AddFlash(w, r, "Unknown role.")
			http.Redirect(w, r, "/admin/members", http.StatusSeeOther)
		case errors.Is(err, userpolicy.ErrSameRole):
			http.Redirect(w, r, "/admin/members", http.StatusSeeOther)
		default:
			h.ErrLog.LogServerError(w, r, "change role failed", err, "Failed to change the member's role.", "/admin/members")
		}
		return
	}

	h.Log.Info("member role changed", zap.String("user_id", id.Hex()), zap.String("role", role))
	h.SessionMgr.AddFlash(w, r, "Role updated.")
	http.Redirect(w, r, "/admin/members", http.StatusSeeOther)
}

// HandleDelete removes a member record. The user is also pulled out of every
// group so visibility allow-lists never match a deleted account.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := memberID(r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Member not found.", "/admin/members")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Policy.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, userstore.ErrNotFound):
			uierrors.RenderNotFound(w, r, "Member not found.", "/admin/members")
		case errors.Is(err, userpolicy.ErrAdminProtected):
			h.SessionMgr.AddFlash(w, r, "Administrator accounts cannot be deleted.")
			http.Redirect(w, r, "/admin/members", http.StatusSeeOther)
		default:
			h.ErrLog.LogServerError(w, r, "delete member failed", err, "Failed to delete the member.", "/admin/members")
		}
		return
	}

	// Group membership cleanup is best effort; a failure leaves a dangling
	// id in member_ids, which never resolves to a user again.
	if _, err := h.Groups.RemoveUserEverywhere(ctx, id); err != nil {
		h.Log.Warn("remove deleted user from groups", zap.String("user_id", id.Hex()), zap.Error(err))
	}

	h.Log.Info("member deleted", zap.String("user_id", id.Hex()))
	h.SessionMgr.AddFlash(w, r, "Member deleted.")
	http.Redirect(w, r, "/admin/members", http.StatusSeeOther)
}

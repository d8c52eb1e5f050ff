// internal/app/features/members/edit.go
package members

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	userstore "github.com/dalemusser/villagehub/internal/app/store/users"
	"github.com/dalemusser/villagehub/internal/app/system/inputval"
	"github.com/dalemusser/villagehub/internal/app/system/timeouts"
	"github.com/dalemusser/villagehub/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

type editData struct {
	viewdata.BaseVM

	MemberID   string
	FirstName  string
	LastName   string
	Email      string
	NationalID string
	FamilyNick string
	RoleLabel  string

	Error template.HTML
}

// ServeEdit renders the identity edit form for a member.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := memberID(r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Member not found.", "/admin/members")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		uierrors.RenderNotFound(w, r, "Member not found.", "/admin/members")
		return
	}

	templates.Render(w, r, "member_edit", editData{
		BaseVM:     viewdata.NewBaseVM(r, h.DB, "Edit member", "/admin/members"),
		MemberID:   u.ID.Hex(),
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		NationalID: u.NationalID,
		FamilyNick: u.FamilyNick,
		RoleLabel:  roleLabel(u.Role),
	})
}

// HandleEdit saves identity field changes for a member. The national ID is
// immutable after registration, same as on the self-service profile page.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
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

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		uierrors.RenderNotFound(w, r, "Member not found.", "/admin/members")
		return
	}

	upd := userstore.ProfileUpdate{
		FirstName:  r.FormValue("first_name"),
		LastName:   r.FormValue("last_name"),
		Email:      r.FormValue("email"),
		FamilyNick: r.FormValue("family_nick"),
	}

	renderError := func(msg string) {
		templates.Render(w, r, "member_edit", editData{
			BaseVM:     viewdata.NewBaseVM(r, h.DB, "Edit member", "/admin/members"),
			MemberID:   u.ID.Hex(),
			FirstName:  strings.TrimSpace(upd.FirstName),
			LastName:   strings.TrimSpace(upd.LastName),
			Email:      strings.TrimSpace(upd.Email),
			NationalID: u.NationalID,
			FamilyNick: strings.TrimSpace(upd.FamilyNick),
			RoleLabel:  roleLabel(u.Role),
			Error:      template.HTML(msg),
		})
	}

	if strings.TrimSpace(upd.FirstName) == "" || strings.TrimSpace(upd.LastName) == "" {
		renderError("First and last name are required.")
		return
	}
	if !inputval.IsValidEmail(upd.Email) {
		renderError("Please enter a valid email address.")
		return
	}

	if err := h.Users.UpdateProfile(ctx, id, upd); err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			renderError("That email address is already in use.")
			return
		}
		h.ErrLog.LogServerError(w, r, "update member failed", err, "Failed to update the member.", "/admin/members")
		return
	}

	h.SessionMgr.AddFlash(w, r, "Member updated.")
	http.Redirect(w, r, "/admin/members", http.StatusSeeOther)
}

// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	userstore "github.com/dalemusser/villagehub/internal/app/store/users"
	"github.com/dalemusser/villagehub/internal/app/system/authz"
	"github.com/dalemusser/villagehub/internal/app/system/inputval"
	"github.com/dalemusser/villagehub/internal/app/system/timeouts"
	"github.com/dalemusser/villagehub/internal/app/system/viewdata"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// profileData is the view model for the profile page.
type profileData struct {
	viewdata.BaseVM

	FirstName  string
	LastName   string
	Email      string
	NationalID string
	FamilyNick string
	RoleLabel  string

	Error   template.HTML
	Success template.HTML
}

func (h *Handler) buildData(r *http.Request, user *models.User) profileData {
	return profileData{
		BaseVM:     viewdata.NewBaseVM(r, h.DB, "Profile", "/profile"),
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Email:      user.Email,
		NationalID: user.NationalID,
		FamilyNick: user.FamilyNick,
		RoleLabel:  formatRole(user.Role),
	}
}

// ServeProfile renders the signed-in member's profile page.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "User not found.", "/")
		return
	}

	data := h.buildData(r, user)

	switch r.URL.Query().Get("success") {
	case "profile":
		data.Success = "Profile updated."
	case "password":
		data.Success = "Password changed successfully."
	}

	templates.Render(w, r, "profile", data)
}

// HandleUpdateProfile processes the identity form. The national ID is fixed
// at registration and cannot be edited here.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "User not found.", "/")
		return
	}

	upd := userstore.ProfileUpdate{
		FirstName:  r.FormValue("first_name"),
		LastName:   r.FormValue("last_name"),
		Email:      r.FormValue("email"),
		FamilyNick: r.FormValue("family_nick"),
	}

	renderError := func(msg string) {
		data := h.buildData(r, user)
		data.FirstName = strings.TrimSpace(upd.FirstName)
		data.LastName = strings.TrimSpace(upd.LastName)
		data.Email = strings.TrimSpace(upd.Email)
		data.FamilyNick = strings.TrimSpace(upd.FamilyNick)
		data.Error = template.HTML(msg)
		templates.Render(w, r, "profile", data)
	}

	if strings.TrimSpace(upd.FirstName) == "" || strings.TrimSpace(upd.LastName) == "" {
		renderError("First and last name are required.")
		return
	}
	if !inputval.IsValidEmail(upd.Email) {
		renderError("Please enter a valid email address.")
		return
	}

	if err := h.Users.UpdateProfile(ctx, uid, upd); err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			renderError("That email address is already in use.")
			return
		}
		h.ErrLog.LogServerError(w, r, "update profile failed", err, "Failed to update profile.", "/profile")
		return
	}

	http.Redirect(w, r, "/profile?success=profile", http.StatusSeeOther)
}

// HandleChangePassword processes the password change form.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		uierrors.RenderNotFound(w, r, "User not found.", "/")
		return
	}

	currentPassword := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")
	confirmPassword := r.FormValue("confirm_password")

	renderError := func(msg string) {
		data := h.buildData(r, user)
		data.Error = template.HTML(msg)
		templates.Render(w, r, "profile", data)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		renderError("Current password is incorrect.")
		return
	}
	if !inputval.IsValidPassword(newPassword) {
		renderError("New password must be at least 6 characters.")
		return
	}
	if newPassword != confirmPassword {
		renderError("New passwords do not match.")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(newPassword)) == nil {
		renderError("New password cannot be the same as your current password.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password failed", err, "Failed to update password.", "/profile")
		return
	}

	if err := h.Users.UpdatePasswordHash(ctx, uid, string(hash)); err != nil {
		h.ErrLog.LogServerError(w, r, "update password failed", err, "Failed to update password.", "/profile")
		return
	}

	http.Redirect(w, r, "/profile?success=password", http.StatusSeeOther)
}

// formatRole returns a human-readable label for a membership role.
func formatRole(role string) string {
	switch role {
	case models.RolePending:
		return "Pending approval"
	case models.RoleActiveMember:
		return "Active member"
	case models.RolePassiveMember:
		return "Passive member"
	case models.RoleAdmin:
		return "Administrator"
	default:
		return role
	}
}

// internal/app/features/settings/admin.go
package settings

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	"github.com/dalemusser/villagehub/internal/app/system/authz"
	"github.com/dalemusser/villagehub/internal/app/system/inputval"
	"github.com/dalemusser/villagehub/internal/app/system/timeouts"
	"github.com/dalemusser/villagehub/internal/app/system/uploads"
	"github.com/dalemusser/villagehub/internal/app/system/viewdata"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type formData struct {
	viewdata.BaseVM

	Settings models.SiteSettings

	Error   template.HTML
	Updated string
}

// ServeForm renders the settings form, inserting the default document on
// first visit so the save always has a row to update.
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	settings, err := h.Store.GetOrCreate(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load site settings failed", err, "A database error occurred.", "/")
		return
	}

	data := formData{
		BaseVM:   viewdata.NewBaseVM(r, h.DB, "Site settings", "/"),
		Settings: settings,
	}
	if settings.UpdatedAt != nil {
		data.Updated = settings.UpdatedAt.Format("2006-01-02 15:04")
	}

	templates.Render(w, r, "settings_form", data)
}

// socialURLs maps the posted social fields to a label for validation
// messages.
var socialFields = []struct {
	name  string
	label string
}{
	{"facebook", "Facebook"},
	{"twitter", "Twitter"},
	{"instagram", "Instagram"},
	{"youtube", "YouTube"},
}

// HandleSave validates and persists the whole settings document. Module
// flags are checkboxes, so an unchecked box simply posts nothing.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	_, _, adminID, okUser := authz.UserCtx(r)
	if !okUser {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseMultipartForm(uploads.MaxImageSize); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse multipart form failed", err, "Invalid form data.", "/admin/settings")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	current, err := h.Store.GetOrCreate(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load site settings failed", err, "A database error occurred.", "/")
		return
	}

	next := current
	next.SiteName = strings.TrimSpace(r.FormValue("site_name"))
	next.SiteDescription = strings.TrimSpace(r.FormValue("site_description"))
	next.ContactEmail = strings.TrimSpace(r.FormValue("contact_email"))
	next.ContactPhone = strings.TrimSpace(r.FormValue("contact_phone"))
	next.Address = strings.TrimSpace(r.FormValue("address"))
	next.Facebook = strings.TrimSpace(r.FormValue("facebook"))
	next.Twitter = strings.TrimSpace(r.FormValue("twitter"))
	next.Instagram = strings.TrimSpace(r.FormValue("instagram"))
	next.YouTube = strings.TrimSpace(r.FormValue("youtube"))
	next.RegistrationEnabled = r.FormValue("registration_enabled") == "on"
	next.AnnouncementsEnabled = r.FormValue("announcements_enabled") == "on"
	next.EventsEnabled = r.FormValue("events_enabled") == "on"
	next.MemoriesEnabled = r.FormValue("memories_enabled") == "on"
	next.MetaverseEnabled = r.FormValue("metaverse_enabled") == "on"
	next.UpdatedByID = &adminID

	renderError := func(msg string) {
		templates.Render(w, r, "settings_form", formData{
			BaseVM:   viewdata.NewBaseVM(r, h.DB, "Site settings", "/"),
			Settings: next,
			Error:    template.HTML(msg),
		})
	}

	if next.SiteName == "" {
		renderError("The site name is required.")
		return
	}
	if next.ContactEmail != "" && !inputval.IsValidEmail(next.ContactEmail) {
		renderError("The contact email address is not valid.")
		return
	}
	socials := []string{next.Facebook, next.Twitter, next.Instagram, next.YouTube}
	for i, f := range socialFields {
		if socials[i] != "" && !inputval.IsValidHTTPURL(socials[i]) {
			renderError("The " + f.label + " link must be a full http(s) URL.")
			return
		}
	}

	newLogo, err := h.saveLogo(r)
	if err != nil {
		switch {
		case errors.Is(err, uploads.ErrUnsupportedType):
			renderError("The logo must be a JPEG, PNG or ICO file.")
		case errors.Is(err, uploads.ErrTooLarge):
			renderError("The logo file is too large (5 MB limit).")
		default:
			h.ErrLog.LogServerError(w, r, "save logo failed", err, "Failed to store the logo.", "/admin/settings")
		}
		return
	}
	if newLogo != "" {
		next.LogoPath = newLogo
	}

	if err := h.Store.Save(ctx, next); err != nil {
		if newLogo != "" {
			if rmErr := h.Logos.Remove(newLogo); rmErr != nil {
				h.Log.Warn("cleanup orphaned logo", zap.String("path", newLogo), zap.Error(rmErr))
			}
		}
		h.ErrLog.LogServerError(w, r, "save site settings failed", err, "Failed to save the settings.", "/admin/settings")
		return
	}

	if newLogo != "" && current.LogoPath != "" && current.LogoPath != newLogo {
		if err := h.Logos.Remove(current.LogoPath); err != nil {
			h.Log.Warn("remove replaced logo", zap.String("path", current.LogoPath), zap.Error(err))
		}
	}

	h.Log.Info("site settings saved", zap.String("updated_by", adminID.Hex()))
	h.SessionMgr.AddFlash(w, r, "Settings saved.")
	http.Redirect(w, r, "/admin/settings", http.StatusSeeOther)
}

// saveLogo stores an optional uploaded logo. A missing file field is not
// an error.
func (h *Handler) saveLogo(r *http.Request) (string, error) {
	file, header, err := r.FormFile("logo")
	if err != nil {
		return "", nil
	}
	defer file.Close()
	return h.Logos.Save(file, header)
}

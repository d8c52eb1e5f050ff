// internal/app/features/announcements/admin.go
package announcements

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	announcementstore "github.com/dalemusser/villagehub/internal/app/store/announcements"
	"github.com/dalemusser/villagehub/internal/app/system/authz"
	"github.com/dalemusser/villagehub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/villagehub/internal/app/system/timeouts"
	"github.com/dalemusser/villagehub/internal/app/system/uploads"
	"github.com/dalemusser/villagehub/internal/app/system/viewdata"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type adminListData struct {
	viewdata.BaseVM

	Rows []announcementRow
}

type adminFormData struct {
	viewdata.BaseVM

	IsNew      bool
	ItemID     string
	FormTitle  string
	Body       string
	Importance string
	Status     string
	ImagePath  string

	Error template.HTML
}

// ServeAdminList shows every announcement including passive ones.
func (h *Handler) ServeAdminList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Store.ListAll(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list announcements failed", err, "A database error occurred.", "/")
		return
	}

	data := adminListData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Announcements", "/admin/announcements"),
	}
	for _, a := range list {
		data.Rows = append(data.Rows, toRow(a))
	}

	templates.Render(w, r, "announcements_admin", data)
}

// ServeNew renders the create form.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "announcement_form", adminFormData{
		BaseVM:     viewdata.NewBaseVM(r, h.DB, "New announcement", "/admin/announcements"),
		IsNew:      true,
		Importance: models.ImportanceNormal,
		Status:     models.StatusActive,
	})
}

// parseForm pulls the shared announcement fields out of a multipart post.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request, backURL string) (title, body, importance, status string, ok bool) {
	if err := r.ParseMultipartForm(uploads.MaxImageSize); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse multipart form failed", err, "Invalid form data.", backURL)
		return "", "", "", "", false
	}
	title = strings.TrimSpace(r.FormValue("title"))
	body = htmlsanitize.Sanitize(strings.TrimSpace(r.FormValue("body")))
	importance = r.FormValue("importance")
	status = r.FormValue("status")
	return title, body, importance, status, true
}

// saveImage stores an optional uploaded image and reports its public path.
// A missing file field is not an error.
func (h *Handler) saveImage(r *http.Request) (string, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		return "", nil
	}
	defer file.Close()
	return h.Uploads.Save(file, header)
}

func uploadErrorMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, uploads.ErrUnsupportedType):
		return "Only JPEG and PNG images are accepted.", true
	case errors.Is(err, uploads.ErrTooLarge):
		return "The image is too large (5 MB limit).", true
	}
	return "", false
}

// HandleCreate creates an announcement, optionally with an image.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, adminID, okUser := authz.UserCtx(r)
	if !okUser {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	title, body, importance, status, ok := h.parseForm(w, r, "/admin/announcements/new")
	if !ok {
		return
	}

	renderError := func(msg string) {
		templates.Render(w, r, "announcement_form", adminFormData{
			BaseVM:     viewdata.NewBaseVM(r, h.DB, "New announcement", "/admin/announcements"),
			IsNew:      true,
			FormTitle:  title,
			Body:       body,
			Importance: importance,
			Status:     status,
			Error:      template.HTML(msg),
		})
	}

	if title == "" || body == "" {
		renderError("Title and body are required.")
		return
	}

	imagePath, err := h.saveImage(r)
	if err != nil {
		if msg, known := uploadErrorMessage(err); known {
			renderError(msg)
			return
		}
		h.ErrLog.LogServerError(w, r, "save announcement image failed", err, "Failed to store the image.", "/admin/announcements/new")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, err := h.Store.Create(ctx, models.Announcement{
		Title:       title,
		Body:        body,
		ImagePath:   imagePath,
		Importance:  importance,
		Status:      status,
		CreatedByID: adminID,
	})
	if err != nil {
		// The document never landed, so the fresh upload is an orphan.
		if imagePath != "" {
			if rmErr := h.Uploads.Remove(imagePath); rmErr != nil {
				h.Log.Warn("cleanup orphaned announcement image", zap.String("path", imagePath), zap.Error(rmErr))
			}
		}
		if errors.Is(err, announcementstore.ErrInvalidImportance) {
			renderError("Choose a valid importance level.")
			return
		}
		h.ErrLog.LogServerError(w, r, "create announcement failed", err, "Failed to create the announcement.", "/admin/announcements")
		return
	}

	h.Log.Info("announcement created", zap.String("announcement_id", a.ID.Hex()))
	h.SessionMgr.AddFlash(w, r, "Announcement created.")
	http.Redirect(w, r, "/admin/announcements", http.StatusSeeOther)
}

// itemFromRoute loads the announcement named by the {id} route parameter.
func (h *Handler) itemFromRoute(ctx context.Context, r *http.Request) (models.Announcement, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return models.Announcement{}, false
	}
	a, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return models.Announcement{}, false
	}
	return a, true
}

// ServeEdit renders the edit form.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, ok := h.itemFromRoute(ctx, r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Announcement not found.", "/admin/announcements")
		return
	}

	templates.Render(w, r, "announcement_form", adminFormData{
		BaseVM:     viewdata.NewBaseVM(r, h.DB, "Edit announcement", "/admin/announcements"),
		ItemID:     a.ID.Hex(),
		FormTitle:  a.Title,
		Body:       a.Body,
		Importance: a.Importance,
		Status:     a.Status,
		ImagePath:  a.ImagePath,
	})
}

// HandleEdit updates fields and optionally replaces the image. The prior
// image file is deleted only after the document update succeeds.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	a, found := h.itemFromRoute(ctx, r)
	if !found {
		uierrors.RenderNotFound(w, r, "Announcement not found.", "/admin/announcements")
		return
	}
	editURL := "/admin/announcements/" + a.ID.Hex() + "/edit"

	title, body, importance, status, ok := h.parseForm(w, r, editURL)
	if !ok {
		return
	}

	renderError := func(msg string) {
		templates.Render(w, r, "announcement_form", adminFormData{
			BaseVM:     viewdata.NewBaseVM(r, h.DB, "Edit announcement", "/admin/announcements"),
			ItemID:     a.ID.Hex(),
			FormTitle:  title,
			Body:       body,
			Importance: importance,
			Status:     status,
			ImagePath:  a.ImagePath,
			Error:      template.HTML(msg),
		})
	}

	if title == "" || body == "" {
		renderError("Title and body are required.")
		return
	}

	newImage, err := h.saveImage(r)
	if err != nil {
		if msg, known := uploadErrorMessage(err); known {
			renderError(msg)
			return
		}
		h.ErrLog.LogServerError(w, r, "save announcement image failed", err, "Failed to store the image.", editURL)
		return
	}

	if err := h.Store.Update(ctx, a.ID, announcementstore.Update{
		Title:      title,
		Body:       body,
		Importance: importance,
		Status:     status,
	}); err != nil {
		if newImage != "" {
			if rmErr := h.Uploads.Remove(newImage); rmErr != nil {
				h.Log.Warn("cleanup orphaned announcement image", zap.String("path", newImage), zap.Error(rmErr))
			}
		}
		if errors.Is(err, announcementstore.ErrInvalidImportance) {
			renderError("Choose a valid importance level.")
			return
		}
		h.ErrLog.LogServerError(w, r, "update announcement failed", err, "Failed to update the announcement.", "/admin/announcements")
		return
	}

	if newImage != "" {
		if err := h.Store.SetImagePath(ctx, a.ID, newImage); err != nil {
			h.Log.Warn("set announcement image path", zap.Error(err))
			if rmErr := h.Uploads.Remove(newImage); rmErr != nil {
				h.Log.Warn("cleanup orphaned announcement image", zap.String("path", newImage), zap.Error(rmErr))
			}
		} else if a.ImagePath != "" {
			if err := h.Uploads.Remove(a.ImagePath); err != nil {
				h.Log.Warn("remove replaced announcement image", zap.String("path", a.ImagePath), zap.Error(err))
			}
		}
	}

	h.SessionMgr.AddFlash(w, r, "Announcement updated.")
	http.Redirect(w, r, "/admin/announcements", http.StatusSeeOther)
}

// HandleDelete removes the announcement and its image file.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, ok := h.itemFromRoute(ctx, r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Announcement not found.", "/admin/announcements")
		return
	}

	if _, err := h.Store.Delete(ctx, a.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "delete announcement failed", err, "Failed to delete the announcement.", "/admin/announcements")
		return
	}

	if a.ImagePath != "" {
		if err := h.Uploads.Remove(a.ImagePath); err != nil {
			h.Log.Warn("remove announcement image", zap.String("path", a.ImagePath), zap.Error(err))
		}
	}

	h.Log.Info("announcement deleted", zap.String("announcement_id", a.ID.Hex()))
	h.SessionMgr.AddFlash(w, r, "Announcement deleted.")
	http.Redirect(w, r, "/admin/announcements", http.StatusSeeOther)
}

// internal/app/features/events/admin.go
package events

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	eventstore "github.com/dalemusser/villagehub/internal/app/store/events"
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

	Rows []eventRow
}

type adminFormData struct {
	viewdata.BaseVM

	IsNew       bool
	ItemID      string
	FormTitle   string
	Description string
	Date        string
	StartTime   string
	Location    string
	Status      string
	ImagePath   string

	Error template.HTML
}

// eventForm carries the parsed fields of a create or edit post.
type eventForm struct {
	Title       string
	Description string
	DateRaw     string
	Date        time.Time
	Time        string
	Location    string
	Status      string
}

// ServeAdminList shows every event including passive ones.
func (h *Handler) ServeAdminList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Store.ListAll(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list events failed", err, "A database error occurred.", "/")
		return
	}

	data := adminListData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Events", "/admin/events"),
	}
	for _, e := range list {
		data.Rows = append(data.Rows, toRow(e))
	}

	templates.Render(w, r, "events_admin", data)
}

// ServeNew renders the create form.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "event_form", adminFormData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "New event", "/admin/events"),
		IsNew:  true,
		Status: models.StatusActive,
	})
}

// parseForm pulls the shared event fields out of a multipart post. The
// date is validated here; the time format is left to the store.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request, backURL string) (eventForm, bool) {
	if err := r.ParseMultipartForm(uploads.MaxImageSize); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse multipart form failed", err, "Invalid form data.", backURL)
		return eventForm{}, false
	}
	f := eventForm{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: htmlsanitize.Sanitize(strings.TrimSpace(r.FormValue("description"))),
		DateRaw:     strings.TrimSpace(r.FormValue("date")),
		Time:        strings.TrimSpace(r.FormValue("time")),
		Location:    strings.TrimSpace(r.FormValue("location")),
		Status:      r.FormValue("status"),
	}
	if f.DateRaw != "" {
		if d, err := time.Parse("2006-01-02", f.DateRaw); err == nil {
			f.Date = d
		}
	}
	return f, true
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

// HandleCreate creates an event, optionally with an image. A past date is
// accepted but stored passive.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, adminID, okUser := authz.UserCtx(r)
	if !okUser {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	f, ok := h.parseForm(w, r, "/admin/events/new")
	if !ok {
		return
	}

	renderError := func(msg string) {
		templates.Render(w, r, "event_form", adminFormData{
			BaseVM:      viewdata.NewBaseVM(r, h.DB, "New event", "/admin/events"),
			IsNew:       true,
			FormTitle:   f.Title,
			Description: f.Description,
			Date:        f.DateRaw,
			StartTime:   f.Time,
			Location:    f.Location,
			Status:      f.Status,
			Error:       template.HTML(msg),
		})
	}

	if f.Title == "" || f.Description == "" {
		renderError("Title and description are required.")
		return
	}
	if f.Date.IsZero() {
		renderError("A valid date (YYYY-MM-DD) is required.")
		return
	}

	imagePath, err := h.saveImage(r)
	if err != nil {
		if msg, known := uploadErrorMessage(err); known {
			renderError(msg)
			return
		}
		h.ErrLog.LogServerError(w, r, "save event image failed", err, "Failed to store the image.", "/admin/events/new")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	e, err := h.Store.Create(ctx, models.Event{
		Title:       f.Title,
		Description: f.Description,
		Date:        f.Date,
		Time:        f.Time,
		Location:    f.Location,
		ImagePath:   imagePath,
		Status:      f.Status,
		CreatedByID: adminID,
	})
	if err != nil {
		// The document never landed, so the fresh upload is an orphan.
		if imagePath != "" {
			if rmErr := h.Uploads.Remove(imagePath); rmErr != nil {
				h.Log.Warn("cleanup orphaned event image", zap.String("path", imagePath), zap.Error(rmErr))
			}
		}
		if errors.Is(err, eventstore.ErrInvalidTime) {
			renderError("The start time must be in HH:MM format.")
			return
		}
		h.ErrLog.LogServerError(w, r, "create event failed", err, "Failed to create the event.", "/admin/events")
		return
	}

	h.Log.Info("event created", zap.String("event_id", e.ID.Hex()))
	h.SessionMgr.AddFlash(w, r, "Event created.")
	http.Redirect(w, r, "/admin/events", http.StatusSeeOther)
}

// itemFromRoute loads the event named by the {id} route parameter.
func (h *Handler) itemFromRoute(ctx context.Context, r *http.Request) (models.Event, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return models.Event{}, false
	}
	e, err := h.Store.GetByID(ctx, id)
	if err != nil {
		return models.Event{}, false
	}
	return e, true
}

// ServeEdit renders the edit form.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, ok := h.itemFromRoute(ctx, r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Event not found.", "/admin/events")
		return
	}

	templates.Render(w, r, "event_form", adminFormData{
		BaseVM:      viewdata.NewBaseVM(r, h.DB, "Edit event", "/admin/events"),
		ItemID:      e.ID.Hex(),
		FormTitle:   e.Title,
		Description: e.Description,
		Date:        e.Date.Format("2006-01-02"),
		StartTime:   e.Time,
		Location:    e.Location,
		Status:      e.Status,
		ImagePath:   e.ImagePath,
	})
}

// HandleEdit updates fields and optionally replaces the image. The prior
// image file is deleted only after the document update succeeds.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	e, found := h.itemFromRoute(ctx, r)
	if !found {
		uierrors.RenderNotFound(w, r, "Event not found.", "/admin/events")
		return
	}
	editURL := "/admin/events/" + e.ID.Hex() + "/edit"

	f, ok := h.parseForm(w, r, editURL)
	if !ok {
		return
	}

	renderError := func(msg string) {
		templates.Render(w, r, "event_form", adminFormData{
			BaseVM:      viewdata.NewBaseVM(r, h.DB, "Edit event", "/admin/events"),
			ItemID:      e.ID.Hex(),
			FormTitle:   f.Title,
			Description: f.Description,
			Date:        f.DateRaw,
			StartTime:   f.Time,
			Location:    f.Location,
			Status:      f.Status,
			ImagePath:   e.ImagePath,
			Error:       template.HTML(msg),
		})
	}

	if f.Title == "" || f.Description == "" {
		renderError("Title and description are required.")
		return
	}
	if f.Date.IsZero() {
		renderError("A valid date (YYYY-MM-DD) is required.")
		return
	}

	newImage, err := h.saveImage(r)
	if err != nil {
		if msg, known := uploadErrorMessage(err); known {
			renderError(msg)
			return
		}
		h.ErrLog.LogServerError(w, r, "save event image failed", err, "Failed to store the image.", editURL)
		return
	}

	if err := h.Store.Update(ctx, e.ID, eventstore.Update{
		Title:       f.Title,
		Description: f.Description,
		Date:        f.Date,
		Time:        f.Time,
		Location:    f.Location,
		Status:      f.Status,
	}); err != nil {
		if newImage != "" {
			if rmErr := h.Uploads.Remove(newImage); rmErr != nil {
				h.Log.Warn("cleanup orphaned event image", zap.String("path", newImage), zap.Error(rmErr))
			}
		}
		if errors.Is(err, eventstore.ErrInvalidTime) {
			renderError("The start time must be in HH:MM format.")
			return
		}
		h.ErrLog.LogServerError(w, r, "update event failed", err, "Failed to update the event.", "/admin/events")
		return
	}

	if newImage != "" {
		if err := h.Store.SetImagePath(ctx, e.ID, newImage); err != nil {
			h.Log.Warn("set event image path", zap.Error(err))
			if rmErr := h.Uploads.Remove(newImage); rmErr != nil {
				h.Log.Warn("cleanup orphaned event image", zap.String("path", newImage), zap.Error(rmErr))
			}
		} else if e.ImagePath != "" {
			if err := h.Uploads.Remove(e.ImagePath); err != nil {
				h.Log.Warn("remove replaced event image", zap.String("path", e.ImagePath), zap.Error(err))
			}
		}
	}

	h.SessionMgr.AddFlash(w, r, "Event updated.")
	http.Redirect(w, r, "/admin/events", http.StatusSeeOther)
}

// HandleDelete removes the event and its image file.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, ok := h.itemFromRoute(ctx, r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Event not found.", "/admin/events")
		return
	}

	if _, err := h.Store.Delete(ctx, e.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "delete event failed", err, "Failed to delete the event.", "/admin/events")
		return
	}

	if e.ImagePath != "" {
		if err := h.Uploads.Remove(e.ImagePath); err != nil {
			h.Log.Warn("remove event image", zap.String("path", e.ImagePath), zap.Error(err))
		}
	}

	h.Log.Info("event deleted", zap.String("event_id", e.ID.Hex()))
	h.SessionMgr.AddFlash(w, r, "Event deleted.")
	http.Redirect(w, r, "/admin/events", http.StatusSeeOther)
}

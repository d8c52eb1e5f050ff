// internal/app/features/memories/submit.go
package memories

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	"github.com/dalemusser/villagehub/internal/app/system/authz"
	"github.com/dalemusser/villagehub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/villagehub/internal/app/system/timeouts"
	"github.com/dalemusser/villagehub/internal/app/system/uploads"
	"github.com/dalemusser/villagehub/internal/app/system/viewdata"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type submitFormData struct {
	viewdata.BaseVM

	FormTitle string
	Body      string
	Error     template.HTML
}

// ServeNew renders the submission form. Passive members can browse the wall
// but not post to it.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	if !authz.CanContribute(r) {
		uierrors.RenderForbidden(w, r, "Only active members can share memories.", "/memories")
		return
	}

	base := viewdata.NewBaseVM(r, h.DB, "Share a memory", "/memories")
	if !base.MemoriesEnabled {
		uierrors.RenderNotFound(w, r, "", "/")
		return
	}

	templates.Render(w, r, "memory_new", submitFormData{BaseVM: base})
}

// HandleCreate accepts the submission (optional image) and queues it for
// moderation.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if !authz.CanContribute(r) {
		uierrors.RenderForbidden(w, r, "Only active members can share memories.", "/memories")
		return
	}

	if err := r.ParseMultipartForm(uploads.MaxImageSize); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse multipart form failed", err, "Invalid form data.", "/memories/new")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	body := htmlsanitize.Sanitize(strings.TrimSpace(r.FormValue("body")))

	renderError := func(msg string) {
		data := submitFormData{
			BaseVM:    viewdata.NewBaseVM(r, h.DB, "Share a memory", "/memories"),
			FormTitle: title,
			Body:      body,
			Error:     template.HTML(msg),
		}
		templates.Render(w, r, "memory_new", data)
	}

	if title == "" {
		renderError("A title is required.")
		return
	}
	if body == "" {
		renderError("Tell the story; the body cannot be empty.")
		return
	}

	// Optional image. Written to disk first; removed again if the document
	// insert fails.
	imagePath := ""
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		imagePath, err = h.Uploads.Save(file, header)
		if err != nil {
			switch {
			case errors.Is(err, uploads.ErrUnsupportedType):
				renderError("Only JPEG and PNG images are accepted.")
			case errors.Is(err, uploads.ErrTooLarge):
				renderError("The image is too large (5 MB limit).")
			default:
				h.ErrLog.LogServerError(w, r, "save memory image failed", err, "Failed to store the image.", "/memories/new")
			}
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	m, err := h.Memories.Create(ctx, models.Memory{
		Title:     title,
		Body:      body,
		ImagePath: imagePath,
		AuthorID:  uid,
	})
	if err != nil {
		if imagePath != "" {
			if rmErr := h.Uploads.Remove(imagePath); rmErr != nil {
				h.Log.Warn("cleanup orphaned memory image", zap.String("path", imagePath), zap.Error(rmErr))
			}
		}
		h.ErrLog.LogServerError(w, r, "create memory failed", err, "Failed to save the memory.", "/memories/new")
		return
	}

	h.Log.Info("memory submitted", zap.String("memory_id", m.ID.Hex()), zap.String("author_id", uid.Hex()))
	h.SessionMgr.AddFlash(w, r, "Thank you. Your memory is waiting for review.")
	http.Redirect(w, r, "/memories", http.StatusSeeOther)
}

// internal/app/features/announcements/public.go
package announcements

import (
	"context"
	"html/template"
	"net/http"

	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	"github.com/dalemusser/villagehub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/villagehub/internal/app/system/timeouts"
	"github.com/dalemusser/villagehub/internal/app/system/viewdata"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// announcementRow is one announcement on the public or admin list.
type announcementRow struct {
	ID         string
	Title      string
	Body       template.HTML
	ImagePath  string
	Importance string
	Status     string
	CreatedAt  string
}

type publicListData struct {
	viewdata.BaseVM

	Rows []announcementRow
}

type publicDetailData struct {
	viewdata.BaseVM

	Row announcementRow
}

func toRow(a models.Announcement) announcementRow {
	return announcementRow{
		ID:         a.ID.Hex(),
		Title:      a.Title,
		Body:       htmlsanitize.PrepareForDisplay(a.Body),
		ImagePath:  a.ImagePath,
		Importance: a.Importance,
		Status:     a.Status,
		CreatedAt:  a.CreatedAt.Format("2006-01-02"),
	}
}

// ServeList renders active announcements, newest first. A disabled module
// flag hides the whole surface.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	base := viewdata.NewBaseVM(r, h.DB, "Announcements", "/")
	if !base.AnnouncementsEnabled {
		uierrors.RenderNotFound(w, r, "", "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Store.ListActive(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list announcements failed", err, "A database error occurred.", "/")
		return
	}

	data := publicListData{BaseVM: base}
	for _, a := range list {
		data.Rows = append(data.Rows, toRow(a))
	}

	templates.Render(w, r, "announcements_list", data)
}

// ServeDetail renders one active announcement. Passive ones 404 for the
// public.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	base := viewdata.NewBaseVM(r, h.DB, "Announcement", "/announcements")
	if !base.AnnouncementsEnabled {
		uierrors.RenderNotFound(w, r, "", "/")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "", "/announcements")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Store.GetByID(ctx, id)
	if err != nil || a.Status != models.StatusActive {
		uierrors.RenderNotFound(w, r, "", "/announcements")
		return
	}

	data := publicDetailData{BaseVM: base, Row: toRow(a)}
	data.Title = a.Title

	templates.Render(w, r, "announcement_detail", data)
}

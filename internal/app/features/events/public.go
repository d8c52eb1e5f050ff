// internal/app/features/events/public.go
package events

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
	"go.uber.org/zap"
)

// eventRow is one event on the public or admin list.
type eventRow struct {
	ID          string
	Title       string
	Description template.HTML
	Date        string
	Time        string
	Location    string
	ImagePath   string
	Status      string
}

type publicListData struct {
	viewdata.BaseVM

	Rows []eventRow
}

type publicDetailData struct {
	viewdata.BaseVM

	Row eventRow
}

func toRow(e models.Event) eventRow {
	return eventRow{
		ID:          e.ID.Hex(),
		Title:       e.Title,
		Description: htmlsanitize.PrepareForDisplay(e.Description),
		Date:        e.Date.Format("2006-01-02"),
		Time:        e.Time,
		Location:    e.Location,
		ImagePath:   e.ImagePath,
		Status:      e.Status,
	}
}

// ServeList renders upcoming active events, soonest first. A disabled
// module flag hides the whole surface.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	base := viewdata.NewBaseVM(r, h.DB, "Events", "/")
	if !base.EventsEnabled {
		uierrors.RenderNotFound(w, r, "", "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	// Retire anything whose date went by since the last edit, so the
	// public list never shows stale rows.
	if _, err := h.Store.RetirePast(ctx); err != nil {
		h.Log.Warn("retire past events", zap.Error(err))
	}

	list, err := h.Store.ListActive(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list events failed", err, "A database error occurred.", "/")
		return
	}

	data := publicListData{BaseVM: base}
	for _, e := range list {
		data.Rows = append(data.Rows, toRow(e))
	}

	templates.Render(w, r, "events_list", data)
}

// ServeDetail renders one active event. Passive ones 404 for the public.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	base := viewdata.NewBaseVM(r, h.DB, "Event", "/events")
	if !base.EventsEnabled {
		uierrors.RenderNotFound(w, r, "", "/")
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "", "/events")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, err := h.Store.GetByID(ctx, id)
	if err != nil || e.Status != models.StatusActive {
		uierrors.RenderNotFound(w, r, "", "/events")
		return
	}

	data := publicDetailData{BaseVM: base, Row: toRow(e)}
	data.Title = e.Title

	templates.Render(w, r, "event_detail", data)
}

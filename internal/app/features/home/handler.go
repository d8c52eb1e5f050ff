package home

import (
	"context"
	"net/http"

	announcementstore "github.com/dalemusser/villagehub/internal/app/store/announcements"
	eventstore "github.com/dalemusser/villagehub/internal/app/store/events"
	"github.com/dalemusser/villagehub/internal/app/system/timeouts"
	"github.com/dalemusser/villagehub/internal/app/system/viewdata"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const homeFeedLimit = 5

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	DB            *mongo.Database
	Log           *zap.Logger
	Announcements *announcementstore.Store
	Events        *eventstore.Store
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		DB:            db,
		Log:           logger,
		Announcements: announcementstore.New(db),
		Events:        eventstore.New(db),
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	base := viewdata.NewBaseVM(r, h.DB, "Welcome", "/")

	data := struct {
		viewdata.BaseVM
		Announcements []models.Announcement
		Events        []models.Event
	}{
		BaseVM: base,
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if base.AnnouncementsEnabled {
		items, err := h.Announcements.ListActive(ctx)
		if err != nil {
			h.Log.Warn("home: list announcements failed", zap.Error(err))
		} else {
			if len(items) > homeFeedLimit {
				items = items[:homeFeedLimit]
			}
			data.Announcements = items
		}
	}

	if base.EventsEnabled {
		items, err := h.Events.ListActive(ctx)
		if err != nil {
			h.Log.Warn("home: list events failed", zap.Error(err))
		} else {
			if len(items) > homeFeedLimit {
				items = items[:homeFeedLimit]
			}
			data.Events = items
		}
	}

	templates.Render(w, r, "home", data)
}

// internal/app/features/memories/list.go
package memories

import (
	"context"
	"html/template"
	"net/http"

	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	"github.com/dalemusser/villagehub/internal/app/policy/memorypolicy"
	"github.com/dalemusser/villagehub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/villagehub/internal/app/system/timeouts"
	"github.com/dalemusser/villagehub/internal/app/system/viewdata"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// memoryCard is one memory rendered on the wall or detail page.
type memoryCard struct {
	ID          string
	Title       string
	Body        template.HTML
	ImagePath   string
	AuthorName  string
	Status      string
	Visibility  string
	SubmittedAt string
	ApprovedAt  string
}

type wallData struct {
	viewdata.BaseVM

	Cards     []memoryCard
	CanSubmit bool
}

type detailData struct {
	viewdata.BaseVM

	Card memoryCard
}

func (h *Handler) toCard(ctx context.Context, m models.Memory) memoryCard {
	card := memoryCard{
		ID:          m.ID.Hex(),
		Title:       m.Title,
		Body:        htmlsanitize.PrepareForDisplay(m.Body),
		ImagePath:   m.ImagePath,
		Status:      m.Status,
		Visibility:  m.Visibility,
		SubmittedAt: m.SubmittedAt.Format("2006-01-02"),
	}
	if m.ApprovedAt != nil {
		card.ApprovedAt = m.ApprovedAt.Format("2006-01-02")
	}
	if author, err := h.Users.GetByID(ctx, m.AuthorID); err == nil {
		card.AuthorName = author.FullName()
	}
	return card
}

// ServeList renders the memory wall filtered by the viewer's visibility.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	base := viewdata.NewBaseVM(r, h.DB, "Memories", "/")
	if !base.MemoriesEnabled {
		uierrors.RenderNotFound(w, r, "", "/")
		return
	}

	viewer, err := memorypolicy.LoadViewer(ctx, h.DB, r)
	if err != nil {
		h.Log.Warn("load viewer failed", zap.Error(err))
	}

	list, err := h.Memories.ListVisible(ctx, viewer)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list memories failed", err, "A database error occurred.", "/")
		return
	}

	data := wallData{
		BaseVM:    base,
		CanSubmit: viewer.IsAdmin() || viewer.Role == models.RoleActiveMember,
	}
	for _, m := range list {
		data.Cards = append(data.Cards, h.toCard(ctx, m))
	}

	templates.Render(w, r, "memories_list", data)
}

// ServeDetail renders a single memory after re-checking visibility. A hidden
// or unknown memory renders the same not-found page so URLs leak nothing.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "", "/memories")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	base := viewdata.NewBaseVM(r, h.DB, "Memory", "/memories")
	if !base.MemoriesEnabled {
		uierrors.RenderNotFound(w, r, "", "/")
		return
	}

	m, err := h.Memories.GetByID(ctx, id)
	if err != nil {
		uierrors.RenderNotFound(w, r, "", "/memories")
		return
	}

	viewer, err := memorypolicy.LoadViewer(ctx, h.DB, r)
	if err != nil {
		h.Log.Warn("load viewer failed", zap.Error(err))
	}
	if !memorypolicy.CanView(viewer, m) {
		uierrors.RenderNotFound(w, r, "", "/memories")
		return
	}

	data := detailData{
		BaseVM: base,
		Card:   h.toCard(ctx, m),
	}
	data.Title = m.Title

	templates.Render(w, r, "memory_detail", data)
}

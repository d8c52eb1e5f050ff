// internal/app/features/memories/admin.go
package memories

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	memorystore "github.com/dalemusser/villagehub/internal/app/store/memories"
	userstore "github.com/dalemusser/villagehub/internal/app/store/users"
	"github.com/dalemusser/villagehub/internal/app/system/authz"
	"github.com/dalemusser/villagehub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/villagehub/internal/app/system/timeouts"
	"github.com/dalemusser/villagehub/internal/app/system/viewdata"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type adminListData struct {
	viewdata.BaseVM

	Cards        []memoryCard
	PendingOnly  bool
	PendingCount int64
}

type pickOption struct {
	ID       string
	Name     string
	Selected bool
}

type adminEditData struct {
	viewdata.BaseVM

	MemoryID   string
	FormTitle  string
	Body       string
	ImagePath  string
	Status     string
	Visibility string
	UserPicks  []pickOption
	GroupPicks []pickOption
	Approving  bool

	Error template.HTML
}

// memoryFromRoute loads the memory named by the {id} route parameter.
func (h *Handler) memoryFromRoute(ctx context.Context, r *http.Request) (models.Memory, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return models.Memory{}, false
	}
	m, err := h.Memories.GetByID(ctx, id)
	if err != nil {
		return models.Memory{}, false
	}
	return m, true
}

// parseIDList converts posted hex ids into ObjectIDs, dropping garbage.
func parseIDList(values []string) []primitive.ObjectID {
	var out []primitive.ObjectID
	for _, v := range values {
		if id, err := primitive.ObjectIDFromHex(strings.TrimSpace(v)); err == nil {
			out = append(out, id)
		}
	}
	return out
}

// ServeAdminList renders all memories regardless of status.
func (h *Handler) ServeAdminList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Memories.ListAll(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list memories failed", err, "A database error occurred.", "/")
		return
	}
	pending, err := h.Memories.CountPending(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count pending memories failed", err, "A database error occurred.", "/")
		return
	}

	data := adminListData{
		BaseVM:       viewdata.NewBaseVM(r, h.DB, "Memories", "/admin/memories"),
		PendingCount: pending,
	}
	for _, m := range list {
		data.Cards = append(data.Cards, h.toCard(ctx, m))
	}

	templates.Render(w, r, "memories_admin", data)
}

// ServePendingQueue renders the moderation queue, oldest submission first.
func (h *Handler) ServePendingQueue(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Memories.ListPending(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list pending memories failed", err, "A database error occurred.", "/admin/memories")
		return
	}

	data := adminListData{
		BaseVM:       viewdata.NewBaseVM(r, h.DB, "Pending memories", "/admin/memories"),
		PendingOnly:  true,
		PendingCount: int64(len(list)),
	}
	for _, m := range list {
		data.Cards = append(data.Cards, h.toCard(ctx, m))
	}

	templates.Render(w, r, "memories_admin", data)
}

// buildEditData assembles the edit/approve form, marking current selections.
func (h *Handler) buildEditData(ctx context.Context, r *http.Request, m models.Memory, approving bool) (adminEditData, error) {
	title := "Edit memory"
	if approving {
		title = "Approve memory"
	}

	data := adminEditData{
		BaseVM:     viewdata.NewBaseVM(r, h.DB, title, "/admin/memories"),
		MemoryID:   m.ID.Hex(),
		FormTitle:  m.Title,
		Body:       m.Body,
		ImagePath:  m.ImagePath,
		Status:     m.Status,
		Visibility: m.Visibility,
		Approving:  approving,
	}

	selectedUsers := map[primitive.ObjectID]bool{}
	for _, id := range m.AllowedUserIDs {
		selectedUsers[id] = true
	}
	selectedGroups := map[primitive.ObjectID]bool{}
	for _, id := range m.AllowedGroupIDs {
		selectedGroups[id] = true
	}

	memberList, err := h.Users.List(ctx, userstore.ListFilter{})
	if err != nil {
		return data, err
	}
	for _, u := range memberList {
		if u.Role == models.RolePending {
			continue
		}
		data.UserPicks = append(data.UserPicks, pickOption{
			ID: u.ID.Hex(), Name: u.FullName(), Selected: selectedUsers[u.ID],
		})
	}

	groupList, err := h.Groups.List(ctx)
	if err != nil {
		return data, err
	}
	for _, g := range groupList {
		data.GroupPicks = append(data.GroupPicks, pickOption{
			ID: g.ID.Hex(), Name: g.Name, Selected: selectedGroups[g.ID],
		})
	}

	return data, nil
}

// ServeApprove renders the approval form (visibility mode + allow-lists).
func (h *Handler) ServeApprove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, ok := h.memoryFromRoute(ctx, r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Memory not found.", "/admin/memories/pending")
		return
	}

	data, err := h.buildEditData(ctx, r, m, true)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "build approve form failed", err, "A database error occurred.", "/admin/memories/pending")
		return
	}

	templates.Render(w, r, "memory_moderate", data)
}

/// HandleApprove publishes a memory: status, visibility and allow-lists land
// in one update, stamped with the approving admin.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	_, _, adminID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin/memories/pending")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, found := h.memoryFromRoute(ctx, r)
	if !found {
		uierrors.RenderNotFound(w, r, "Memory not found.", "/admin/memories/pending")
		return
	}

	visibility := r.FormValue("visibility")
	userIDs := parseIDList(r.Form["allowed_users"])
	groupIDs := parseIDList(r.Form["allowed_groups"])

	err := h.Memories.Approve(ctx, m.ID, visibility, userIDs, groupIDs, adminID)
	if err != nil {
		switch {
		case errors.Is(err, memorystore.ErrInvalidVisibility):
			h.SessionMgr.AddFlash(w, r, "Choose a visibility mode.")
			http.Redirect(w, r, "/admin/memories/"+m.ID.Hex()+"/approve", http.StatusSeeOther)
		case errors.Is(err, memorystore.ErrNotFound):
			uierrors.RenderNotFound(w, r, "Memory not found.", "/admin/memories/pending")
		default:
			h.ErrLog.LogServerError(w, r, "approve memory failed", err, "Failed to approve the memory.", "/admin/memories/pending")
		}
		return
	}

	h.Log.Info("memory approved",
		zap.String("memory_id", m.ID.Hex()),
		zap.String("visibility", visibility),
		zap.String("admin_id", adminID.Hex()))
	h.SessionMgr.AddFlash(w, r, "Memory published.")
	http.Redirect(w, r, "/admin/memories/pending", http.StatusSeeOther)
}

// HandleReject marks a pending memory rejected. No extra data needed.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, ok := h.memoryFromRoute(ctx, r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Memory not found.", "/admin/memories/pending")
		return
	}

	if err := h.Memories.Reject(ctx, m.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "reject memory failed", err, "Failed to reject the memory.", "/admin/memories/pending")
		return
	}

	h.SessionMgr.AddFlash(w, r, "Memory rejected.")
	http.Redirect(w, r, "/admin/memories/pending", http.StatusSeeOther)
}

// ServeEdit renders the content edit form for any memory.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, ok := h.memoryFromRoute(ctx, r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Memory not found.", "/admin/memories")
		return
	}

	data, err := h.buildEditData(ctx, r, m, false)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "build edit form failed", err, "A database error occurred.", "/admin/memories")
		return
	}

	templates.Render(w, r, "memory_moderate", data)
}

// HandleEdit saves title/body/visibility changes without touching the
// approval status.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin/memories")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, ok := h.memoryFromRoute(ctx, r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Memory not found.", "/admin/memories")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	body := htmlsanitize.Sanitize(strings.TrimSpace(r.FormValue("body")))
	if title == "" || body == "" {
		h.SessionMgr.AddFlash(w, r, "Title and body are required.")
		http.Redirect(w, r, "/admin/memories/"+m.ID.Hex()+"/edit", http.StatusSeeOther)
		return
	}

	err := h.Memories.UpdateContent(ctx, m.ID, memorystore.ContentUpdate{
		Title:      title,
		Body:       body,
		Visibility: r.FormValue("visibility"),
		UserIDs:    parseIDList(r.Form["allowed_users"]),
		GroupIDs:   parseIDList(r.Form["allowed_groups"]),
	})
	if err != nil {
		if errors.Is(err, memorystore.ErrInvalidVisibility) {
			h.SessionMgr.AddFlash(w, r, "Choose a visibility mode.")
			http.Redirect(w, r, "/admin/memories/"+m.ID.Hex()+"/edit", http.StatusSeeOther)
			return
		}
		h.ErrLog.LogServerError(w, r, "update memory failed", err, "Failed to update the memory.", "/admin/memories")
		return
	}

	h.SessionMgr.AddFlash(w, r, "Memory updated.")
	http.Redirect(w, r, "/admin/memories", http.StatusSeeOther)
}

// HandleUnpublish returns an approved memory to the moderation queue.
func (h *Handler) HandleUnpublish(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, ok := h.memoryFromRoute(ctx, r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Memory not found.", "/admin/memories")
		return
	}

	if err := h.Memories.ReturnToPending(ctx, m.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "unpublish memory failed", err, "Failed to unpublish the memory.", "/admin/memories")
		return
	}

	h.SessionMgr.AddFlash(w, r, "Memory returned to the queue.")
	http.Redirect(w, r, "/admin/memories", http.StatusSeeOther)
}

// HandleDelete removes the memory and its stored image.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, ok := h.memoryFromRoute(ctx, r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Memory not found.", "/admin/memories")
		return
	}

	if _, err := h.Memories.Delete(ctx, m.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "delete memory failed", err, "Failed to delete the memory.", "/admin/memories")
		return
	}

	if m.ImagePath != "" {
		if err := h.Uploads.Remove(m.ImagePath); err != nil {
			h.Log.Warn("remove memory image", zap.String("path", m.ImagePath), zap.Error(err))
		}
	}

	h.Log.Info("memory deleted", zap.String("memory_id", m.ID.Hex()))
	h.SessionMgr.AddFlash(w, r, "Memory deleted.")
	http.Redirect(w, r, "/admin/memories", http.StatusSeeOther)
}

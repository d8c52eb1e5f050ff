// internal/app/features/groups/admin.go
package groups

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	groupstore "github.com/dalemusser/villagehub/internal/app/store/groups"
	userstore "github.com/dalemusser/villagehub/internal/app/store/users"
	"github.com/dalemusser/villagehub/internal/app/system/authz"
	"github.com/dalemusser/villagehub/internal/app/system/timeouts"
	"github.com/dalemusser/villagehub/internal/app/system/viewdata"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type groupRow struct {
	ID          string
	Name        string
	Description string
	MemberCount int
}

type listData struct {
	viewdata.BaseVM

	Rows []groupRow
}

type memberPick struct {
	ID       string
	Name     string
	Selected bool
}

type formData struct {
	viewdata.BaseVM

	IsNew       bool
	GroupID     string
	Name        string
	Description string
	Members     []memberPick

	Error template.HTML
}

// ServeList shows every group with its member count.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Groups.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list groups failed", err, "A database error occurred.", "/")
		return
	}

	data := listData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Groups", "/admin/groups"),
	}
	for _, g := range list {
		data.Rows = append(data.Rows, groupRow{
			ID:          g.ID.Hex(),
			Name:        g.Name,
			Description: g.Description,
			MemberCount: len(g.MemberIDs),
		})
	}

	templates.Render(w, r, "groups_list", data)
}

// memberPicks lists approved members for the membership multi-select,
// marking those already in the group.
func (h *Handler) memberPicks(ctx context.Context, selected []primitive.ObjectID) ([]memberPick, error) {
	chosen := map[primitive.ObjectID]bool{}
	for _, id := range selected {
		chosen[id] = true
	}

	list, err := h.Users.List(ctx, userstore.ListFilter{})
	if err != nil {
		return nil, err
	}

	var picks []memberPick
	for _, u := range list {
		if u.Role == models.RolePending {
			continue
		}
		picks = append(picks, memberPick{
			ID: u.ID.Hex(), Name: u.FullName(), Selected: chosen[u.ID],
		})
	}
	return picks, nil
}

// ServeNew renders the create form.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	picks, err := h.memberPicks(ctx, nil)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list members failed", err, "A database error occurred.", "/admin/groups")
		return
	}

	templates.Render(w, r, "group_form", formData{
		BaseVM:  viewdata.NewBaseVM(r, h.DB, "New group", "/admin/groups"),
		IsNew:   true,
		Members: picks,
	})
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

// HandleCreate creates a group and sets its initial member list.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, adminID, okUser := authz.UserCtx(r)
	if !okUser {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin/groups/new")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	desc := strings.TrimSpace(r.FormValue("description"))
	memberIDs := parseIDList(r.Form["members"])

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	renderError := func(msg string) {
		picks, pickErr := h.memberPicks(ctx, memberIDs)
		if pickErr != nil {
			h.ErrLog.LogServerError(w, r, "list members failed", pickErr, "A database error occurred.", "/admin/groups")
			return
		}
		templates.Render(w, r, "group_form", formData{
			BaseVM:      viewdata.NewBaseVM(r, h.DB, "New group", "/admin/groups"),
			IsNew:       true,
			Name:        name,
			Description: desc,
			Members:     picks,
			Error:       template.HTML(msg),
		})
	}

	if name == "" {
		renderError("Group name is required.")
		return
	}

	g, err := h.Groups.Create(ctx, models.Group{
		Name:        name,
		Description: desc,
		MemberIDs:   memberIDs,
		CreatedByID: adminID,
	})
	if err != nil {
		if errors.Is(err, groupstore.ErrDuplicateName) {
			renderError("A group with this name already exists.")
			return
		}
		h.ErrLog.LogServerError(w, r, "create group failed", err, "Failed to create the group.", "/admin/groups")
		return
	}

	h.Log.Info("group created", zap.String("group_id", g.ID.Hex()), zap.String("name", g.Name))
	h.SessionMgr.AddFlash(w, r, "Group created.")
	http.Redirect(w, r, "/admin/groups", http.StatusSeeOther)
}

// groupFromRoute loads the group named by the {id} route parameter.
func (h *Handler) groupFromRoute(ctx context.Context, r *http.Request) (models.Group, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return models.Group{}, false
	}
	g, err := h.Groups.GetByID(ctx, id)
	if err != nil {
		return models.Group{}, false
	}
	return g, true
}

// ServeEdit renders the edit form with current members selected.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, ok := h.groupFromRoute(ctx, r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Group not found.", "/admin/groups")
		return
	}

	picks, err := h.memberPicks(ctx, g.MemberIDs)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list members failed", err, "A database error occurred.", "/admin/groups")
		return
	}

	templates.Render(w, r, "group_form", formData{
		BaseVM:      viewdata.NewBaseVM(r, h.DB, "Edit group", "/admin/groups"),
		GroupID:     g.ID.Hex(),
		Name:        g.Name,
		Description: g.Description,
		Members:     picks,
	})
}

// HandleEdit saves name, description and the full member list.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin/groups")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, ok := h.groupFromRoute(ctx, r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Group not found.", "/admin/groups")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	desc := strings.TrimSpace(r.FormValue("description"))
	memberIDs := parseIDList(r.Form["members"])

	renderError := func(msg string) {
		picks, pickErr := h.memberPicks(ctx, memberIDs)
		if pickErr != nil {
			h.ErrLog.LogServerError(w, r, "list members failed", pickErr, "A database error occurred.", "/admin/groups")
			return
		}
		templates.Render(w, r, "group_form", formData{
			BaseVM:      viewdata.NewBaseVM(r, h.DB, "Edit group", "/admin/groups"),
			GroupID:     g.ID.Hex(),
			Name:        name,
			Description: desc,
			Members:     picks,
			Error:       template.HTML(msg),
		})
	}

	if name == "" {
		renderError("Group name is required.")
		return
	}

	if err := h.Groups.UpdateInfo(ctx, g.ID, name, desc); err != nil {
		if errors.Is(err, groupstore.ErrDuplicateName) {
			renderError("A group with this name already exists.")
			return
		}
		h.ErrLog.LogServerError(w, r, "update group failed", err, "Failed to update the group.", "/admin/groups")
		return
	}
	if err := h.Groups.SetMembers(ctx, g.ID, memberIDs); err != nil {
		h.ErrLog.LogServerError(w, r, "set group members failed", err, "Failed to update the member list.", "/admin/groups")
		return
	}

	h.SessionMgr.AddFlash(w, r, "Group updated.")
	http.Redirect(w, r, "/admin/groups", http.StatusSeeOther)
}

// HandleDelete removes a group. Memories restricted to it simply stop
// matching that group in their visibility filter.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, ok := h.groupFromRoute(ctx, r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Group not found.", "/admin/groups")
		return
	}

	if _, err := h.Groups.Delete(ctx, g.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "delete group failed", err, "Failed to delete the group.", "/admin/groups")
		return
	}

	h.Log.Info("group deleted", zap.String("group_id", g.ID.Hex()), zap.String("name", g.Name))
	h.SessionMgr.AddFlash(w, r, "Group deleted.")
	http.Redirect(w, r, "/admin/groups", http.StatusSeeOther)
}

// internal/app/features/members/list.go
package members

import (
	"context"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/villagehub/internal/app/store/users"
	"github.com/dalemusser/villagehub/internal/app/system/timeouts"
	"github.com/dalemusser/villagehub/internal/app/system/viewdata"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

// memberRow is one row of the admin members table.
type memberRow struct {
	ID         string
	FullName   string
	Email      string
	NationalID string
	FamilyNick string
	Role       string
	RoleLabel  string
}

type listData struct {
	viewdata.BaseVM

	Rows         []memberRow
	Search       string
	RoleFilter   string
	PendingCount int
}

type pendingData struct {
	viewdata.BaseVM

	Rows []memberRow
}

func toRow(u models.User) memberRow {
	return memberRow{
		ID:         u.ID.Hex(),
		FullName:   u.FullName(),
		Email:      u.Email,
		NationalID: u.NationalID,
		FamilyNick: u.FamilyNick,
		Role:       u.Role,
		RoleLabel:  roleLabel(u.Role),
	}
}

func roleLabel(role string) string {
	switch role {
	case models.RolePending:
		return "Pending"
	case models.RoleActiveMember:
		return "Active"
	case models.RolePassiveMember:
		return "Passive"
	case models.RoleAdmin:
		return "Admin"
	default:
		return role
	}
}

// ServeList renders the members table with optional role filter and name
// search.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	search := strings.TrimSpace(r.URL.Query().Get("search"))
	roleFilter := strings.TrimSpace(r.URL.Query().Get("role"))
	if !models.IsValidRole(roleFilter) {
		roleFilter = ""
	}

	list, err := h.Users.List(ctx, userstore.ListFilter{Role: roleFilter, Search: search})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list members failed", err, "A database error occurred.", "/")
		return
	}

	pending, err := h.Users.ListPending(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "count pending failed", err, "A database error occurred.", "/")
		return
	}

	data := listData{
		BaseVM:       viewdata.NewBaseVM(r, h.DB, "Members", "/admin/members"),
		Search:       search,
		RoleFilter:   roleFilter,
		PendingCount: len(pending),
	}
	for _, u := range list {
		data.Rows = append(data.Rows, toRow(u))
	}

	templates.Render(w, r, "members_list", data)
}

// ServePending renders the approval queue, oldest application first.
func (h *Handler) ServePending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	pending, err := h.Users.ListPending(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list pending failed", err, "A database error occurred.", "/admin/members")
		return
	}

	data := pendingData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Pending applications", "/admin/members"),
	}
	for _, u := range pending {
		data.Rows = append(data.Rows, toRow(u))
	}

	templates.Render(w, r, "members_pending", data)
}

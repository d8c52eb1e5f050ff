// internal/app/features/dues/admin.go
package dues

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	duesstore "github.com/dalemusser/villagehub/internal/app/store/dues"
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

type memberOption struct {
	ID       string
	FullName string
}

type adminDuesData struct {
	viewdata.BaseVM

	Members    []memberOption
	MemberID   string
	MemberName string
	Rows       []entryRow
	Year       int
	UnpaidStr  string
	PaidStr    string
	MonthlyStr string
}

// ServeAdminList renders the admin ledger page. Without a member selected it
// shows just the member picker.
func (h *Handler) ServeAdminList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	data := adminDuesData{
		BaseVM: viewdata.NewBaseVM(r, h.DB, "Dues", "/admin/dues"),
		Year:   yearParam(r),
	}

	list, err := h.Users.List(ctx, userstore.ListFilter{})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list members failed", err, "A database error occurred.", "/")
		return
	}
	for _, u := range list {
		if u.Role == models.RolePending {
			continue
		}
		data.Members = append(data.Members, memberOption{ID: u.ID.Hex(), FullName: u.FullName()})
	}

	memberHex := strings.TrimSpace(r.URL.Query().Get("member"))
	if memberHex != "" {
		memberID, err := primitive.ObjectIDFromHex(memberHex)
		if err != nil {
			uierrors.RenderNotFound(w, r, "Member not found.", "/admin/dues")
			return
		}
		member, err := h.Users.GetByID(ctx, memberID)
		if err != nil {
			uierrors.RenderNotFound(w, r, "Member not found.", "/admin/dues")
			return
		}
		data.MemberID = member.ID.Hex()
		data.MemberName = member.FullName()

		entries, err := h.Dues.ListForMember(ctx, memberID, data.Year)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "list dues failed", err, "A database error occurred.", "/admin/dues")
			return
		}
		for _, e := range entries {
			data.Rows = append(data.Rows, toEntryRow(e))
		}

		sum, err := h.Dues.Summarize(ctx, memberID, data.Year)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "summarize dues failed", err, "A database error occurred.", "/admin/dues")
			return
		}
		data.UnpaidStr = formatAmount(sum.UnpaidTotal)
		data.PaidStr = formatAmount(sum.PaidTotal)
		data.MonthlyStr = formatAmount(sum.CurrentMonthly)
	}

	templates.Render(w, r, "dues_admin", data)
}

// HandleAdd creates an unpaid ledger entry for a member.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	_, _, adminID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin/dues")
		return
	}

	memberID, err := primitive.ObjectIDFromHex(strings.TrimSpace(r.FormValue("member_id")))
	if err != nil {
		uierrors.RenderNotFound(w, r, "Member not found.", "/admin/dues")
		return
	}
	backURL := "/admin/dues?member=" + memberID.Hex()

	year, errY := strconv.Atoi(strings.TrimSpace(r.FormValue("year")))
	month, errM := strconv.Atoi(strings.TrimSpace(r.FormValue("month")))
	amount, errA := strconv.ParseFloat(strings.TrimSpace(r.FormValue("amount")), 64)
	if errY != nil || errM != nil || errA != nil || amount <= 0 {
		h.SessionMgr.AddFlash(w, r, "Year, month and a positive amount are required.")
		http.Redirect(w, r, backURL, http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	_, err = h.Dues.Create(ctx, models.DuesEntry{
		MemberID:    memberID,
		Year:        year,
		Month:       month,
		Amount:      amount,
		Note:        strings.TrimSpace(r.FormValue("note")),
		CreatedByID: adminID,
	})
	if err != nil {
		switch {
		case errors.Is(err, duesstore.ErrDuplicatePeriod):
			h.SessionMgr.AddFlash(w, r, "An entry for that month already exists.")
			http.Redirect(w, r, backURL, http.StatusSeeOther)
		case errors.Is(err, duesstore.ErrBadPeriod):
			h.SessionMgr.AddFlash(w, r, "Month must be between 1 and 12.")
			http.Redirect(w, r, backURL, http.StatusSeeOther)
		default:
			h.ErrLog.LogServerError(w, r, "create dues entry failed", err, "Failed to add the entry.", backURL)
		}
		return
	}

	h.Log.Info("dues entry added",
		zap.String("member_id", memberID.Hex()),
		zap.Int("year", year), zap.Int("month", month))
	h.SessionMgr.AddFlash(w, r, "Entry added.")
	http.Redirect(w, r, backURL, http.StatusSeeOther)
}

// entryFromRoute loads the dues entry named by the {id} route parameter.
func (h *Handler) entryFromRoute(ctx context.Context, r *http.Request) (models.DuesEntry, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return models.DuesEntry{}, false
	}
	e, err := h.Dues.GetByID(ctx, id)
	if err != nil {
		return models.DuesEntry{}, false
	}
	return e, true
}

// HandlePay marks an entry paid.
func (h *Handler) HandlePay(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, ok := h.entryFromRoute(ctx, r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Dues entry not found.", "/admin/dues")
		return
	}
	backURL := "/admin/dues?member=" + e.MemberID.Hex()

	if err := h.Dues.MarkPaid(ctx, e.ID); err != nil {
		if errors.Is(err, duesstore.ErrNotFound) {
			uierrors.RenderNotFound(w, r, "Dues entry not found.", "/admin/dues")
			return
		}
		h.ErrLog.LogServerError(w, r, "mark dues paid failed", err, "Failed to mark the entry paid.", backURL)
		return
	}

	h.SessionMgr.AddFlash(w, r, "Entry marked paid.")
	http.Redirect(w, r, backURL, http.StatusSeeOther)
}

// HandleDelete removes an entry from the ledger.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	e, ok := h.entryFromRoute(ctx, r)
	if !ok {
		uierrors.RenderNotFound(w, r, "Dues entry not found.", "/admin/dues")
		return
	}
	backURL := "/admin/dues?member=" + e.MemberID.Hex()

	if _, err := h.Dues.Delete(ctx, e.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "delete dues entry failed", err, "Failed to delete the entry.", backURL)
		return
	}

	h.SessionMgr.AddFlash(w, r, "Entry deleted.")
	http.Redirect(w, r, backURL, http.StatusSeeOther)
}

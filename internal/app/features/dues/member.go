// internal/app/features/dues/member.go
package dues

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	"github.com/dalemusser/villagehub/internal/app/system/authz"
	"github.com/dalemusser/villagehub/internal/app/system/timeouts"
	"github.com/dalemusser/villagehub/internal/app/system/viewdata"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

// entryRow is one ledger line rendered on the dues pages.
type entryRow struct {
	ID      string
	Period  string // "January 2024"
	Amount  string
	Status  string
	Paid    bool
	PaidAt  string
	Note    string
	RawYear int
}

type myDuesData struct {
	viewdata.BaseVM

	Rows       []entryRow
	Year       int // 0 = all years
	Years      []int
	UnpaidStr  string
	PaidStr    string
	MonthlyStr string
	LastPaid   string
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatPeriod(year, month int) string {
	return fmt.Sprintf("%s %d", time.Month(month).String(), year)
}

func toEntryRow(e models.DuesEntry) entryRow {
	row := entryRow{
		ID:      e.ID.Hex(),
		Period:  formatPeriod(e.Year, e.Month),
		Amount:  formatAmount(e.Amount),
		Status:  e.Status,
		Paid:    e.IsPaid(),
		Note:    e.Note,
		RawYear: e.Year,
	}
	if e.PaidAt != nil {
		row.PaidAt = e.PaidAt.Format("2006-01-02")
	}
	return row
}

// yearParam parses ?year=; zero means "all years".
func yearParam(r *http.Request) int {
	s := strings.TrimSpace(r.URL.Query().Get("year"))
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1900 || n > 2200 {
		return 0
	}
	return n
}

// distinctYears returns the years present in the rows, newest first.
func distinctYears(rows []entryRow) []int {
	seen := map[int]bool{}
	var out []int
	for _, row := range rows {
		if !seen[row.RawYear] {
			seen[row.RawYear] = true
			out = append(out, row.RawYear)
		}
	}
	return out
}

// ServeMyDues renders the signed-in member's own ledger and summary.
func (h *Handler) ServeMyDues(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	year := yearParam(r)

	entries, err := h.Dues.ListForMember(ctx, uid, year)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list dues failed", err, "A database error occurred.", "/")
		return
	}

	sum, err := h.Dues.Summarize(ctx, uid, year)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "summarize dues failed", err, "A database error occurred.", "/")
		return
	}

	data := myDuesData{
		BaseVM:     viewdata.NewBaseVM(r, h.DB, "My dues", "/dues"),
		Year:       year,
		UnpaidStr:  formatAmount(sum.UnpaidTotal),
		PaidStr:    formatAmount(sum.PaidTotal),
		MonthlyStr: formatAmount(sum.CurrentMonthly),
	}
	if sum.LastPaidAt != nil {
		data.LastPaid = sum.LastPaidAt.Format("2006-01-02")
	}
	for _, e := range entries {
		data.Rows = append(data.Rows, toEntryRow(e))
	}

	// Year links are built from the unfiltered ledger so a filtered view
	// still offers the other years.
	if year == 0 {
		data.Years = distinctYears(data.Rows)
	} else {
		all, err := h.Dues.ListForMember(ctx, uid, 0)
		if err == nil {
			var rows []entryRow
			for _, e := range all {
				rows = append(rows, toEntryRow(e))
			}
			data.Years = distinctYears(rows)
		}
	}

	templates.Render(w, r, "dues_my", data)
}

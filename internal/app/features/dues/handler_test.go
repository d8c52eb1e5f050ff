package dues_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/villagehub/internal/app/features/dues"
	"github.com/dalemusser/villagehub/internal/app/features/errors"
	"github.com/dalemusser/villagehub/internal/app/resources"
	duesstore "github.com/dalemusser/villagehub/internal/app/store/dues"
	"github.com/dalemusser/villagehub/internal/app/system/auth"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/villagehub/internal/testutil"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	resources.LoadSharedTemplates()

	eng := templates.New(false)
	logger := zap.NewNop()
	if err := eng.Boot(logger); err != nil {
		panic(err)
	}
	templates.UseEngine(eng, logger)
	m.Run()
}

func newTestHandler(t *testing.T) (*dues.Handler, *testutil.Fixtures, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sessionMgr, err := auth.NewSessionManager(
		"0123456789abcdef0123456789abcdef", "villagehub_test", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	h := dues.NewHandler(db, sessionMgr, errors.NewErrorLogger(logger), logger)
	return h, testutil.NewFixtures(t, db), db
}

func memberUser(u models.User) testutil.TestUser {
	return testutil.TestUser{ID: u.ID.Hex(), Name: u.FullName(), Email: u.Email, Role: u.Role}
}

func TestServeMyDues_ShowsLedgerAndSummary(t *testing.T) {
	h, f, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := f.CreateActiveMember(ctx, "Zeynep", "Kaya", "zeynep@example.com")
	f.CreateDuesEntry(ctx, u.ID, 2024, 1, 100, models.DuesPaid)
	f.CreateDuesEntry(ctx, u.ID, 2024, 2, 120, models.DuesUnpaid)

	req := testutil.NewAuthenticatedRequest("GET", "/dues", memberUser(u))
	rec := httptest.NewRecorder()
	h.ServeMyDues(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"January 2024", "February 2024", "120.00", "100.00"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %q", want)
		}
	}
}

func TestServeMyDues_YearFilter(t *testing.T) {
	h, f, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := f.CreateActiveMember(ctx, "Zeynep", "Kaya", "zeynep@example.com")
	f.CreateDuesEntry(ctx, u.ID, 2023, 12, 90, models.DuesPaid)
	f.CreateDuesEntry(ctx, u.ID, 2024, 1, 100, models.DuesUnpaid)

	req := testutil.NewAuthenticatedRequest("GET", "/dues?year=2023", memberUser(u))
	rec := httptest.NewRecorder()
	h.ServeMyDues(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "December 2023") {
		t.Error("expected the 2023 entry")
	}
	if strings.Contains(body, "January 2024") {
		t.Error("2024 entries should be filtered out")
	}
}

func TestServeMyDues_RequiresUser(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/dues", nil)
	rec := httptest.NewRecorder()
	h.ServeMyDues(rec, req)

	if !strings.Contains(rec.Body.String(), "Please sign in to continue") {
		t.Error("expected the sign-in-required page")
	}
}

func TestHandleAdd_CreatesUnpaidEntry(t *testing.T) {
	h, f, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := f.CreateActiveMember(ctx, "Zeynep", "Kaya", "zeynep@example.com")

	form := url.Values{
		"member_id": {member.ID.Hex()},
		"year":      {"2024"},
		"month":     {"3"},
		"amount":    {"150.50"},
		"note":      {"March fee"},
	}
	req := httptest.NewRequest("POST", "/admin/dues/add", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.HandleAdd(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}

	entries, err := duesstore.New(db).ListForMember(ctx, member.ID, 2024)
	if err != nil {
		t.Fatalf("ListForMember failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Status != models.DuesUnpaid || e.Amount != 150.50 || e.Note != "March fee" {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestHandleAdd_DuplicatePeriodFlashes(t *testing.T) {
	h, f, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := f.CreateActiveMember(ctx, "Zeynep", "Kaya", "zeynep@example.com")
	f.CreateDuesEntry(ctx, member.ID, 2024, 3, 150, models.DuesUnpaid)

	form := url.Values{
		"member_id": {member.ID.Hex()},
		"year":      {"2024"},
		"month":     {"3"},
		"amount":    {"150"},
	}
	req := httptest.NewRequest("POST", "/admin/dues/add", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = testutil.WithUser(req, testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.HandleAdd(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect with flash, got %d", rec.Code)
	}

	entries, err := duesstore.New(db).ListForMember(ctx, member.ID, 2024)
	if err != nil {
		t.Fatalf("ListForMember failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("duplicate period must not create a second entry, got %d", len(entries))
	}
}

func TestHandlePay_MarksPaid(t *testing.T) {
	h, f, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := f.CreateActiveMember(ctx, "Zeynep", "Kaya", "zeynep@example.com")
	e := f.CreateDuesEntry(ctx, member.ID, 2024, 3, 150, models.DuesUnpaid)

	req := httptest.NewRequest("POST", "/admin/dues/"+e.ID.Hex()+"/pay", nil)
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", e.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandlePay(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	got, err := duesstore.New(db).GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.IsPaid() || got.PaidAt == nil {
		t.Errorf("entry should be paid with a timestamp: %+v", got)
	}
}

func TestHandleDelete_RemovesEntry(t *testing.T) {
	h, f, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := f.CreateActiveMember(ctx, "Zeynep", "Kaya", "zeynep@example.com")
	e := f.CreateDuesEntry(ctx, member.ID, 2024, 3, 150, models.DuesUnpaid)

	req := httptest.NewRequest("POST", "/admin/dues/"+e.ID.Hex()+"/delete", nil)
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", e.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if _, err := duesstore.New(db).GetByID(ctx, e.ID); err != duesstore.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestServeAdminList_ShowsMemberLedger(t *testing.T) {
	h, f, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := f.CreateActiveMember(ctx, "Zeynep", "Kaya", "zeynep@example.com")
	f.CreateDuesEntry(ctx, member.ID, 2024, 1, 100, models.DuesUnpaid)

	req := testutil.NewAuthenticatedRequest("GET", "/admin/dues?member="+member.ID.Hex(), testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.ServeAdminList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Zeynep Kaya") || !strings.Contains(body, "January 2024") {
		t.Error("expected the selected member's ledger")
	}
}

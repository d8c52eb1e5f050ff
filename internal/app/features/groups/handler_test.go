package groups_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/villagehub/internal/app/features/errors"
	"github.com/dalemusser/villagehub/internal/app/features/groups"
	"github.com/dalemusser/villagehub/internal/app/resources"
	groupstore "github.com/dalemusser/villagehub/internal/app/store/groups"
	"github.com/dalemusser/villagehub/internal/app/system/auth"
	"github.com/dalemusser/villagehub/internal/app/system/indexes"
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

func newTestHandler(t *testing.T) (*groups.Handler, *testutil.Fixtures, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	logger := zap.NewNop()
	sessionMgr, err := auth.NewSessionManager(
		"0123456789abcdef0123456789abcdef", "villagehub_test", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	h := groups.NewHandler(db, sessionMgr, errors.NewErrorLogger(logger), logger)
	return h, testutil.NewFixtures(t, db), db
}

func adminForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.WithUser(req, testutil.AdminUser())
}

func TestServeList(t *testing.T) {
	h, f, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u1 := f.CreateActiveMember(ctx, "Ada", "Lovelace", "ada@example.com")
	f.CreateGroup(ctx, "Elders", u1.ID)
	f.CreateGroup(ctx, "Youth committee")

	req := testutil.NewAuthenticatedRequest("GET", "/admin/groups", testutil.AdminUser())
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Elders") || !strings.Contains(body, "Youth committee") {
		t.Error("expected both groups on the list")
	}
}

func TestHandleCreate(t *testing.T) {
	h, f, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := f.CreateActiveMember(ctx, "Ada", "Lovelace", "ada@example.com")

	req := adminForm("/admin/groups/new", url.Values{
		"name":        {"Founders"},
		"description": {"Charter members"},
		"members":     {member.ID.Hex()},
	})
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d (%s)", rec.Code, rec.Body.String())
	}

	list, err := groupstore.New(db).List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 group, got %d", len(list))
	}
	g := list[0]
	if g.Name != "Founders" || len(g.MemberIDs) != 1 || g.MemberIDs[0] != member.ID {
		t.Errorf("unexpected group: %+v", g)
	}
}

func TestHandleCreate_DuplicateName(t *testing.T) {
	h, f, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.CreateGroup(ctx, "Elders")

	req := adminForm("/admin/groups/new", url.Values{"name": {"Elders"}})
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected form re-render, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "already exists") {
		t.Error("expected the duplicate name message")
	}

	list, err := groupstore.New(db).List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 group, got %d", len(list))
	}
}

func TestHandleEdit_ReplacesMembers(t *testing.T) {
	h, f, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	old := f.CreateActiveMember(ctx, "Ada", "Lovelace", "ada@example.com")
	next := f.CreateActiveMember(ctx, "Grace", "Hopper", "grace@example.com")
	g := f.CreateGroup(ctx, "Elders", old.ID)

	req := adminForm("/admin/groups/"+g.ID.Hex()+"/edit", url.Values{
		"name":        {"Village elders"},
		"description": {"Renamed"},
		"members":     {next.ID.Hex()},
	})
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleEdit(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d (%s)", rec.Code, rec.Body.String())
	}

	got, err := groupstore.New(db).GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Village elders" {
		t.Errorf("name: got %q", got.Name)
	}
	if len(got.MemberIDs) != 1 || got.MemberIDs[0] != next.ID {
		t.Errorf("member list should be replaced, got %v", got.MemberIDs)
	}
}

func TestHandleEdit_ClearsMembers(t *testing.T) {
	h, f, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := f.CreateActiveMember(ctx, "Ada", "Lovelace", "ada@example.com")
	g := f.CreateGroup(ctx, "Elders", member.ID)

	req := adminForm("/admin/groups/"+g.ID.Hex()+"/edit", url.Values{
		"name": {"Elders"},
	})
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleEdit(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}

	got, err := groupstore.New(db).GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.MemberIDs) != 0 {
		t.Errorf("member list should be empty, got %v", got.MemberIDs)
	}
}

func TestHandleDelete(t *testing.T) {
	h, f, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := f.CreateGroup(ctx, "Doomed")

	req := httptest.NewRequest("POST", "/admin/groups/"+g.ID.Hex()+"/delete", nil)
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", g.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if _, err := groupstore.New(db).GetByID(ctx, g.ID); err != groupstore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestServeEdit_UnknownID(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("GET", "/admin/groups/ffffffffffffffffffffffff/edit", testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", "ffffffffffffffffffffffff")
	rec := httptest.NewRecorder()
	h.ServeEdit(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

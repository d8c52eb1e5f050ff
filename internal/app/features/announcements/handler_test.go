package announcements_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/villagehub/internal/app/features/announcements"
	"github.com/dalemusser/villagehub/internal/app/features/errors"
	"github.com/dalemusser/villagehub/internal/app/resources"
	announcementstore "github.com/dalemusser/villagehub/internal/app/store/announcements"
	"github.com/dalemusser/villagehub/internal/app/system/auth"
	"github.com/dalemusser/villagehub/internal/app/system/uploads"
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

func newTestHandler(t *testing.T) (*announcements.Handler, *testutil.Fixtures, *mongo.Database, string) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	sessionMgr, err := auth.NewSessionManager(
		"0123456789abcdef0123456789abcdef", "villagehub_test", "", time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	uploadDir := t.TempDir()
	uploadStore, err := uploads.NewStore(uploadDir, "/uploads/announcements", logger)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	h := announcements.NewHandler(db, sessionMgr, uploadStore, errors.NewErrorLogger(logger), logger)
	return h, testutil.NewFixtures(t, db), db, uploadDir
}

// createPost builds a multipart create/edit request. imageName may be empty.
func createPost(t *testing.T, target string, fields map[string]string, imageName string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if imageName != "" {
		fw, err := mw.CreateFormFile("image", imageName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte("fake image bytes")); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest("POST", target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return testutil.WithUser(req, testutil.AdminUser())
}

func TestServeList_ActiveOnly(t *testing.T) {
	h, f, _, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f.CreateAnnouncement(ctx, "Road repair schedule", models.StatusActive, models.ImportanceNormal)
	f.CreateAnnouncement(ctx, "Old notice", models.StatusPassive, models.ImportanceNormal)

	req := testutil.NewRequest("GET", "/announcements")
	rec := httptest.NewRecorder()
	h.ServeList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Road repair schedule") {
		t.Error("expected the active announcement")
	}
	if strings.Contains(body, "Old notice") {
		t.Error("passive announcements must be hidden from the public list")
	}
}

func TestServeDetail_PassiveHidden(t *testing.T) {
	h, f, _, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := f.CreateAnnouncement(ctx, "Old notice", models.StatusPassive, models.ImportanceNormal)

	req := testutil.NewRequest("GET", "/announcements/"+a.ID.Hex())
	req = testutil.WithChiURLParam(req, "id", a.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a passive announcement, got %d", rec.Code)
	}
}

func TestHandleCreate_WithImage(t *testing.T) {
	h, _, db, uploadDir := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := createPost(t, "/admin/announcements/new", map[string]string{
		"title":      "Water outage",
		"body":       "Maintenance on Tuesday.",
		"importance": models.ImportanceUrgent,
		"status":     models.StatusActive,
	}, "pipe.jpg")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d (%s)", rec.Code, rec.Body.String())
	}

	list, err := announcementstore.New(db).ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 announcement, got %d", len(list))
	}
	a := list[0]
	if a.Importance != models.ImportanceUrgent || a.ImagePath == "" {
		t.Errorf("unexpected announcement: %+v", a)
	}

	files, err := os.ReadDir(uploadDir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("expected 1 stored file, got %d", len(files))
	}
}

func TestHandleCreate_RejectsUnsupportedImage(t *testing.T) {
	h, _, db, uploadDir := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := createPost(t, "/admin/announcements/new", map[string]string{
		"title":      "Bad upload",
		"body":       "text",
		"importance": models.ImportanceNormal,
		"status":     models.StatusActive,
	}, "clip.gif")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected form re-render, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Only JPEG and PNG") {
		t.Error("expected the unsupported type message")
	}

	list, err := announcementstore.New(db).ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(list) != 0 {
		t.Error("no announcement should be created on a rejected upload")
	}
	if files, _ := os.ReadDir(uploadDir); len(files) != 0 {
		t.Error("nothing should be written to disk")
	}
}

func TestHandleEdit_ReplacesImage(t *testing.T) {
	h, _, db, uploadDir := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := createPost(t, "/admin/announcements/new", map[string]string{
		"title":      "Festival",
		"body":       "Saturday.",
		"importance": models.ImportanceNormal,
		"status":     models.StatusActive,
	}, "old.png")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("create failed: %d", rec.Code)
	}

	store := announcementstore.New(db)
	list, _ := store.ListAll(ctx)
	a := list[0]
	oldImage := a.ImagePath

	req = createPost(t, "/admin/announcements/"+a.ID.Hex()+"/edit", map[string]string{
		"title":      "Festival",
		"body":       "Moved to Sunday.",
		"importance": models.ImportanceImportant,
		"status":     models.StatusActive,
	}, "new.jpg")
	req = testutil.WithChiURLParam(req, "id", a.ID.Hex())
	rec = httptest.NewRecorder()
	h.HandleEdit(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d (%s)", rec.Code, rec.Body.String())
	}

	got, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ImagePath == oldImage || got.ImagePath == "" {
		t.Errorf("image path should change, got %q", got.ImagePath)
	}
	if got.Importance != models.ImportanceImportant {
		t.Errorf("importance: got %q", got.Importance)
	}

	// The replaced file is gone, the new one remains.
	if _, err := os.Stat(filepath.Join(uploadDir, filepath.Base(oldImage))); !os.IsNotExist(err) {
		t.Error("old image file should be deleted after replacement")
	}
	if _, err := os.Stat(filepath.Join(uploadDir, filepath.Base(got.ImagePath))); err != nil {
		t.Errorf("new image file missing: %v", err)
	}
}

func TestHandleDelete_RemovesDocumentAndImage(t *testing.T) {
	h, _, db, uploadDir := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := createPost(t, "/admin/announcements/new", map[string]string{
		"title":      "Temporary",
		"body":       "text",
		"importance": models.ImportanceNormal,
		"status":     models.StatusActive,
	}, "pic.jpg")
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	store := announcementstore.New(db)
	list, _ := store.ListAll(ctx)
	a := list[0]

	req = httptest.NewRequest("POST", "/admin/announcements/"+a.ID.Hex()+"/delete", nil)
	req = testutil.WithUser(req, testutil.AdminUser())
	req = testutil.WithChiURLParam(req, "id", a.ID.Hex())
	rec = httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if _, err := store.GetByID(ctx, a.ID); err != announcementstore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if files, _ := os.ReadDir(uploadDir); len(files) != 0 {
		t.Error("image file should be removed with the announcement")
	}
}

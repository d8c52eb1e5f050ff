package memorystore_test

import (
	"testing"

	"github.com/dalemusser/villagehub/internal/app/policy/memorypolicy"
	memorystore "github.com/dalemusser/villagehub/internal/app/store/memories"
	"github.com/dalemusser/villagehub/internal/app/system/indexes"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/villagehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setup(t *testing.T) *memorystore.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return memorystore.New(db)
}

func newMemory(authorID primitive.ObjectID, title string) models.Memory {
	return models.Memory{
		Title:    title,
		Body:     "What a day that was.",
		AuthorID: authorID,
	}
}

func TestCreate_StartsPending(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m, err := store.Create(ctx, newMemory(primitive.NewObjectID(), "Harvest festival"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if m.Status != models.MemoryPending {
		t.Errorf("status: got %q, want pending", m.Status)
	}
	if m.Visibility != models.VisibilityPublic {
		t.Errorf("default visibility: got %q, want public", m.Visibility)
	}
	if m.ApprovedAt != nil || m.ApprovedByID != nil {
		t.Error("new submission must carry no approval stamp")
	}
	if m.SubmittedAt.IsZero() {
		t.Error("expected submitted_at to be set")
	}
}

func TestCreate_InvalidVisibility(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m := newMemory(primitive.NewObjectID(), "Bad")
	m.Visibility = "everyone"
	if _, err := store.Create(ctx, m); err != memorystore.ErrInvalidVisibility {
		t.Errorf("expected ErrInvalidVisibility, got %v", err)
	}
}

func TestApprove_SetsVisibilityAndStamp(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m, err := store.Create(ctx, newMemory(primitive.NewObjectID(), "Village picnic"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	allowedUser := primitive.NewObjectID()
	adminID := primitive.NewObjectID()
	err = store.Approve(ctx, m.ID, models.VisibilitySelectedUsers,
		[]primitive.ObjectID{allowedUser}, nil, adminID)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	got, err := store.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.MemoryApproved {
		t.Errorf("status: got %q, want approved", got.Status)
	}
	if got.Visibility != models.VisibilitySelectedUsers {
		t.Errorf("visibility: got %q", got.Visibility)
	}
	if len(got.AllowedUserIDs) != 1 || got.AllowedUserIDs[0] != allowedUser {
		t.Errorf("allowed users: got %v", got.AllowedUserIDs)
	}
	if len(got.AllowedGroupIDs) != 0 {
		t.Errorf("group allow-list should be empty, got %v", got.AllowedGroupIDs)
	}
	if got.ApprovedAt == nil {
		t.Error("expected approved_at to be set")
	}
	if got.ApprovedByID == nil || *got.ApprovedByID != adminID {
		t.Errorf("approved_by: got %v, want %v", got.ApprovedByID, adminID)
	}
}

func TestApprove_NotFound(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.Approve(ctx, primitive.NewObjectID(), models.VisibilityPublic, nil, nil, primitive.NewObjectID())
	if err != memorystore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReturnToPending_DropsStamp(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m, err := store.Create(ctx, newMemory(primitive.NewObjectID(), "Old well"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Approve(ctx, m.ID, models.VisibilityPublic, nil, nil, primitive.NewObjectID()); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	if err := store.ReturnToPending(ctx, m.ID); err != nil {
		t.Fatalf("ReturnToPending failed: %v", err)
	}

	got, err := store.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.MemoryPending {
		t.Errorf("status: got %q, want pending", got.Status)
	}
	if got.ApprovedAt != nil || got.ApprovedByID != nil {
		t.Error("expected approval stamp to be dropped")
	}
}

func TestUpdateContent_SwitchingModeClearsOtherList(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m, err := store.Create(ctx, newMemory(primitive.NewObjectID(), "Wedding"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Approve(ctx, m.ID, models.VisibilitySelectedUsers,
		[]primitive.ObjectID{primitive.NewObjectID()}, nil, primitive.NewObjectID()); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	groupID := primitive.NewObjectID()
	err = store.UpdateContent(ctx, m.ID, memorystore.ContentUpdate{
		Title:      "Wedding day",
		Body:       "Updated body",
		Visibility: models.VisibilitySelectedGroups,
		GroupIDs:   []primitive.ObjectID{groupID},
	})
	if err != nil {
		t.Fatalf("UpdateContent failed: %v", err)
	}

	got, err := store.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Wedding day" || got.Body != "Updated body" {
		t.Errorf("content not updated: %q / %q", got.Title, got.Body)
	}
	if got.Visibility != models.VisibilitySelectedGroups {
		t.Errorf("visibility: got %q", got.Visibility)
	}
	if len(got.AllowedUserIDs) != 0 {
		t.Errorf("user allow-list should be cleared, got %v", got.AllowedUserIDs)
	}
	if len(got.AllowedGroupIDs) != 1 || got.AllowedGroupIDs[0] != groupID {
		t.Errorf("group allow-list: got %v", got.AllowedGroupIDs)
	}
	// Editing never changes moderation status.
	if got.Status != models.MemoryApproved {
		t.Errorf("status changed by edit: %q", got.Status)
	}
}

func TestListVisible(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := primitive.NewObjectID()
	viewer := primitive.NewObjectID()
	groupID := primitive.NewObjectID()
	admin := primitive.NewObjectID()

	// Approved public: visible to all.
	pub, err := store.Create(ctx, newMemory(author, "Public"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Approve(ctx, pub.ID, models.VisibilityPublic, nil, nil, admin); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	// Approved, restricted to viewer.
	forViewer, err := store.Create(ctx, newMemory(author, "For viewer"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Approve(ctx, forViewer.ID, models.VisibilitySelectedUsers,
		[]primitive.ObjectID{viewer}, nil, admin); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	// Approved, restricted to a group the viewer is in.
	forGroup, err := store.Create(ctx, newMemory(author, "For group"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Approve(ctx, forGroup.ID, models.VisibilitySelectedGroups,
		nil, []primitive.ObjectID{groupID}, admin); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	// Approved, restricted to someone else.
	other, err := store.Create(ctx, newMemory(author, "For someone else"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.Approve(ctx, other.ID, models.VisibilitySelectedUsers,
		[]primitive.ObjectID{primitive.NewObjectID()}, nil, admin); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	// Still pending: invisible outside the moderation queue.
	if _, err := store.Create(ctx, newMemory(author, "Pending")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	v := memorypolicy.Viewer{
		ID:       viewer,
		Role:     models.RoleActiveMember,
		GroupIDs: []primitive.ObjectID{groupID},
	}
	visible, err := store.ListVisible(ctx, v)
	if err != nil {
		t.Fatalf("ListVisible failed: %v", err)
	}
	if len(visible) != 3 {
		t.Fatalf("expected 3 visible memories, got %d", len(visible))
	}
	seen := map[string]bool{}
	for _, m := range visible {
		seen[m.Title] = true
	}
	for _, want := range []string{"Public", "For viewer", "For group"} {
		if !seen[want] {
			t.Errorf("expected %q to be visible", want)
		}
	}

	// Admin sees all approved, including the one restricted to someone else.
	adminVisible, err := store.ListVisible(ctx, memorypolicy.Viewer{ID: admin, Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("ListVisible for admin failed: %v", err)
	}
	if len(adminVisible) != 4 {
		t.Errorf("expected admin to see 4 approved memories, got %d", len(adminVisible))
	}
}

func TestListPending_OldestFirst(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := primitive.NewObjectID()
	first, err := store.Create(ctx, newMemory(author, "First"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := store.Create(ctx, newMemory(author, "Second"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	pending, err := store.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending failed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if pending[0].ID != first.ID || pending[1].ID != second.ID {
		t.Error("expected pending memories in submission order")
	}

	n, err := store.CountPending(ctx)
	if err != nil {
		t.Fatalf("CountPending failed: %v", err)
	}
	if n != 2 {
		t.Errorf("CountPending: got %d, want 2", n)
	}
}

func TestReject(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m, err := store.Create(ctx, newMemory(primitive.NewObjectID(), "Nope"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Reject(ctx, m.ID); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}

	got, err := store.GetByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.MemoryRejected {
		t.Errorf("status: got %q, want rejected", got.Status)
	}
}

func TestDelete(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m, err := store.Create(ctx, newMemory(primitive.NewObjectID(), "Gone"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err := store.Delete(ctx, m.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}
	if _, err := store.GetByID(ctx, m.ID); err != memorystore.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

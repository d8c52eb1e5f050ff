package groupstore_test

import (
	"testing"

	groupstore "github.com/dalemusser/villagehub/internal/app/store/groups"
	"github.com/dalemusser/villagehub/internal/app/system/indexes"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/villagehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setup(t *testing.T) *groupstore.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return groupstore.New(db)
}

func TestCreate(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g, err := store.Create(ctx, models.Group{
		Name:        "  Founders  ",
		Description: "Founding families",
		CreatedByID: primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if g.Name != "Founders" {
		t.Errorf("name not trimmed: %q", g.Name)
	}
	if g.NameCI != "founders" {
		t.Errorf("name_ci: got %q", g.NameCI)
	}
	if g.ID.IsZero() {
		t.Error("expected an ID to be assigned")
	}
}

func TestCreate_DuplicateName(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Group{Name: "Elders"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Uniqueness is on the folded name, so case differences still collide.
	_, err := store.Create(ctx, models.Group{Name: "ELDERS"})
	if err != groupstore.ErrDuplicateName {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
}

func TestUpdateInfo_DuplicateName(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Group{Name: "Taken"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	g, err := store.Create(ctx, models.Group{Name: "Mine"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.UpdateInfo(ctx, g.ID, "taken", "desc"); err != groupstore.ErrDuplicateName {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}
}

func TestUpdateInfo(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g, err := store.Create(ctx, models.Group{Name: "Choir", Description: "Singers"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.UpdateInfo(ctx, g.ID, "Village Choir", ""); err != nil {
		t.Fatalf("UpdateInfo failed: %v", err)
	}

	got, err := store.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Village Choir" {
		t.Errorf("name: got %q", got.Name)
	}
	if got.Description != "" {
		t.Errorf("description should be cleared, got %q", got.Description)
	}
}

func TestMembership(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g, err := store.Create(ctx, models.Group{Name: "Gardeners"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	userID := primitive.NewObjectID()
	if err := store.AddMember(ctx, g.ID, userID); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	// Adding the same user twice keeps the list a set.
	if err := store.AddMember(ctx, g.ID, userID); err != nil {
		t.Fatalf("second AddMember failed: %v", err)
	}

	got, err := store.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.MemberIDs) != 1 {
		t.Fatalf("expected 1 member, got %d", len(got.MemberIDs))
	}
	if !got.HasMember(userID) {
		t.Error("expected HasMember to be true")
	}

	groups, err := store.GroupsForUser(ctx, userID)
	if err != nil {
		t.Fatalf("GroupsForUser failed: %v", err)
	}
	if len(groups) != 1 || groups[0].ID != g.ID {
		t.Errorf("GroupsForUser: got %d groups", len(groups))
	}

	if err := store.RemoveMember(ctx, g.ID, userID); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	got, err = store.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.HasMember(userID) {
		t.Error("expected member to be removed")
	}
}

func TestSetMembers(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g, err := store.Create(ctx, models.Group{Name: "Committee"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	if err := store.SetMembers(ctx, g.ID, []primitive.ObjectID{a, b}); err != nil {
		t.Fatalf("SetMembers failed: %v", err)
	}

	got, err := store.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.MemberIDs) != 2 {
		t.Fatalf("expected 2 members, got %d", len(got.MemberIDs))
	}

	// Replacing with nil empties the list rather than erroring.
	if err := store.SetMembers(ctx, g.ID, nil); err != nil {
		t.Fatalf("SetMembers with nil failed: %v", err)
	}
	got, err = store.GetByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.MemberIDs) != 0 {
		t.Errorf("expected empty member list, got %d", len(got.MemberIDs))
	}
}

func TestRemoveUserEverywhere(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	for _, name := range []string{"One", "Two"} {
		g, err := store.Create(ctx, models.Group{Name: name})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if err := store.AddMember(ctx, g.ID, userID); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
	}

	n, err := store.RemoveUserEverywhere(ctx, userID)
	if err != nil {
		t.Fatalf("RemoveUserEverywhere failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 groups modified, got %d", n)
	}

	groups, err := store.GroupsForUser(ctx, userID)
	if err != nil {
		t.Fatalf("GroupsForUser failed: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("expected user in no groups, got %d", len(groups))
	}
}

func TestDelete(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g, err := store.Create(ctx, models.Group{Name: "Ephemeral"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err := store.Delete(ctx, g.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}
	if _, err := store.GetByID(ctx, g.ID); err != groupstore.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestList_SortedByFoldedName(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, name := range []string{"zebra", "Apple", "mango"} {
		if _, err := store.Create(ctx, models.Group{Name: name}); err != nil {
			t.Fatalf("Create %q failed: %v", name, err)
		}
	}

	groups, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	want := []string{"Apple", "mango", "zebra"}
	for i, w := range want {
		if groups[i].Name != w {
			t.Errorf("position %d: got %q, want %q", i, groups[i].Name, w)
		}
	}
}

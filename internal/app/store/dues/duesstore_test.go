package duesstore_test

import (
	"testing"
	"time"

	duesstore "github.com/dalemusser/villagehub/internal/app/store/dues"
	"github.com/dalemusser/villagehub/internal/app/system/indexes"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/villagehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setup(t *testing.T) *duesstore.Store {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return duesstore.New(db)
}

func newEntry(memberID primitive.ObjectID, year, month int, amount float64) models.DuesEntry {
	return models.DuesEntry{
		MemberID:    memberID,
		Year:        year,
		Month:       month,
		Amount:      amount,
		CreatedByID: primitive.NewObjectID(),
	}
}

func TestCreate_StartsUnpaid(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e, err := store.Create(ctx, newEntry(primitive.NewObjectID(), 2024, 1, 100))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if e.Status != models.DuesUnpaid {
		t.Errorf("status: got %q, want unpaid", e.Status)
	}
	if e.PaidAt != nil {
		t.Error("expected paid_at to be unset on a new entry")
	}
	if e.ID.IsZero() {
		t.Error("expected an ID to be assigned")
	}
}

func TestCreate_DuplicatePeriod(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	memberID := primitive.NewObjectID()
	if _, err := store.Create(ctx, newEntry(memberID, 2024, 3, 100)); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := store.Create(ctx, newEntry(memberID, 2024, 3, 150))
	if err != duesstore.ErrDuplicatePeriod {
		t.Errorf("expected ErrDuplicatePeriod, got %v", err)
	}

	// Same period for a different member is allowed.
	if _, err := store.Create(ctx, newEntry(primitive.NewObjectID(), 2024, 3, 100)); err != nil {
		t.Errorf("Create for another member failed: %v", err)
	}
}

func TestCreate_BadMonth(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, month := range []int{0, 13, -1} {
		if _, err := store.Create(ctx, newEntry(primitive.NewObjectID(), 2024, month, 100)); err == nil {
			t.Errorf("expected error for month %d", month)
		}
	}
}

func TestMarkPaid(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e, err := store.Create(ctx, newEntry(primitive.NewObjectID(), 2024, 5, 100))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.MarkPaid(ctx, e.ID); err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}

	got, err := store.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.DuesPaid {
		t.Errorf("status: got %q, want paid", got.Status)
	}
	if got.PaidAt == nil {
		t.Fatal("expected paid_at to be set")
	}

	// A second MarkPaid overwrites paid_at with the newer time.
	firstPaidAt := *got.PaidAt
	time.Sleep(10 * time.Millisecond)
	if err := store.MarkPaid(ctx, e.ID); err != nil {
		t.Fatalf("second MarkPaid failed: %v", err)
	}
	got, err = store.GetByID(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !got.PaidAt.After(firstPaidAt) {
		t.Error("expected paid_at to be overwritten by the second MarkPaid")
	}
}

func TestMarkPaid_NotFound(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.MarkPaid(ctx, primitive.NewObjectID()); err != duesstore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	e, err := store.Create(ctx, newEntry(primitive.NewObjectID(), 2024, 7, 100))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err := store.Delete(ctx, e.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}
	if _, err := store.GetByID(ctx, e.ID); err != duesstore.ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListForMember_NewestPeriodFirst(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	memberID := primitive.NewObjectID()
	for _, p := range []struct{ year, month int }{
		{2023, 12}, {2024, 2}, {2024, 1},
	} {
		if _, err := store.Create(ctx, newEntry(memberID, p.year, p.month, 100)); err != nil {
			t.Fatalf("Create %d-%d failed: %v", p.year, p.month, err)
		}
	}
	// Another member's entry must not leak in.
	if _, err := store.Create(ctx, newEntry(primitive.NewObjectID(), 2024, 1, 100)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	entries, err := store.ListForMember(ctx, memberID, 0)
	if err != nil {
		t.Fatalf("ListForMember failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	wantPeriods := []int{202402, 202401, 202312}
	for i, want := range wantPeriods {
		if got := entries[i].Period(); got != want {
			t.Errorf("entry %d: period %d, want %d", i, got, want)
		}
	}

	// Year filter
	entries, err = store.ListForMember(ctx, memberID, 2024)
	if err != nil {
		t.Fatalf("ListForMember with year failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries for 2024, got %d", len(entries))
	}
}

func TestSummarize(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	memberID := primitive.NewObjectID()

	jan, err := store.Create(ctx, newEntry(memberID, 2024, 1, 100))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, newEntry(memberID, 2024, 2, 100)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, newEntry(memberID, 2024, 3, 120)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.MarkPaid(ctx, jan.ID); err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}

	sum, err := store.Summarize(ctx, memberID, 0)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if sum.PaidTotal != 100 {
		t.Errorf("paid total: got %v, want 100", sum.PaidTotal)
	}
	if sum.UnpaidTotal != 220 {
		t.Errorf("unpaid total: got %v, want 220", sum.UnpaidTotal)
	}
	if sum.LastPaidAt == nil {
		t.Error("expected last paid date to be set")
	}
	// The March entry is the latest period, so its amount is the current due
	// even though it is unpaid.
	if sum.CurrentMonthly != 120 {
		t.Errorf("current monthly: got %v, want 120", sum.CurrentMonthly)
	}
}

func TestSummarize_NoEntries(t *testing.T) {
	store := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sum, err := store.Summarize(ctx, primitive.NewObjectID(), 0)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if sum.UnpaidTotal != 0 || sum.PaidTotal != 0 || sum.LastPaidAt != nil || sum.CurrentMonthly != 0 {
		t.Errorf("expected zero summary, got %+v", sum)
	}
}

package testutil

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// nationalIDSeq feeds CreateUser with distinct 11-digit national IDs so
// fixtures never trip the unique index.
var nationalIDSeq int64 = 10000000000

func nextNationalID() string {
	nationalIDSeq++
	return fmt.Sprintf("%011d", nationalIDSeq)
}

// CreateUser creates a test user with the given name, email and role.
// A unique national ID is generated automatically.
func (f *Fixtures) CreateUser(ctx context.Context, firstName, lastName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:         primitive.NewObjectID(),
		FirstName:  firstName,
		LastName:   lastName,
		FullNameCI: text.Fold(firstName + " " + lastName),
		NationalID: nextNationalID(),
		Email:      email,
		Role:       role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, firstName, lastName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, firstName, lastName, email, models.RoleAdmin)
}

// CreateActiveMember creates an approved, dues-paying test member.
func (f *Fixtures) CreateActiveMember(ctx context.Context, firstName, lastName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, firstName, lastName, email, models.RoleActiveMember)
}

// CreatePassiveMember creates an approved non-contributing test member.
func (f *Fixtures) CreatePassiveMember(ctx context.Context, firstName, lastName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, firstName, lastName, email, models.RolePassiveMember)
}

// CreatePendingUser creates a test user awaiting admin approval.
func (f *Fixtures) CreatePendingUser(ctx context.Context, firstName, lastName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, firstName, lastName, email, models.RolePending)
}

// CreateGroup creates a test group containing the given members.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, memberIDs ...primitive.ObjectID) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	group := models.Group{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: "Test group description",
		MemberIDs:   memberIDs,
		CreatedByID: primitive.NewObjectID(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("groups").InsertOne(ctx, group)
	if err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}

	return group
}

// CreateDuesEntry creates a dues record for the given member and period.
func (f *Fixtures) CreateDuesEntry(ctx context.Context, memberID primitive.ObjectID, year, month int, amount float64, status string) models.DuesEntry {
	f.t.Helper()

	now := time.Now().UTC()
	entry := models.DuesEntry{
		ID:          primitive.NewObjectID(),
		MemberID:    memberID,
		Year:        year,
		Month:       month,
		Amount:      amount,
		Status:      status,
		CreatedByID: primitive.NewObjectID(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status == models.DuesPaid {
		entry.PaidAt = &now
	}

	_, err := f.db.Collection("dues_entries").InsertOne(ctx, entry)
	if err != nil {
		f.t.Fatalf("failed to create test dues entry: %v", err)
	}

	return entry
}

// CreateMemory creates a memory with the given author, status and visibility.
func (f *Fixtures) CreateMemory(ctx context.Context, authorID primitive.ObjectID, title, status, visibility string) models.Memory {
	f.t.Helper()

	now := time.Now().UTC()
	mem := models.Memory{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Body:        "Test memory body",
		AuthorID:    authorID,
		Status:      status,
		Visibility:  visibility,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	if status == models.MemoryApproved {
		mem.ApprovedAt = &now
	}

	_, err := f.db.Collection("memories").InsertOne(ctx, mem)
	if err != nil {
		f.t.Fatalf("failed to create test memory: %v", err)
	}

	return mem
}

// CreateAnnouncement creates an announcement with the given status and importance.
func (f *Fixtures) CreateAnnouncement(ctx context.Context, title, status, importance string) models.Announcement {
	f.t.Helper()

	now := time.Now().UTC()
	ann := models.Announcement{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Body:        "Test announcement body",
		Status:      status,
		Importance:  importance,
		CreatedByID: primitive.NewObjectID(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("announcements").InsertOne(ctx, ann)
	if err != nil {
		f.t.Fatalf("failed to create test announcement: %v", err)
	}

	return ann
}

// CreateEvent creates an event on the given date.
func (f *Fixtures) CreateEvent(ctx context.Context, title string, date time.Time, status string) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	ev := models.Event{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: "Test event description",
		Date:        date,
		Status:      status,
		CreatedByID: primitive.NewObjectID(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("events").InsertOne(ctx, ev)
	if err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}

	return ev
}

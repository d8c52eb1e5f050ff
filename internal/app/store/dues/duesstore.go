// Package duesstore persists monthly membership fee entries.
package duesstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no dues entry matches the given id.
var ErrNotFound = errors.New("dues entry not found")

// ErrDuplicatePeriod is returned when an entry already exists for the same
// (member, year, month). The unique index on that triple is the arbiter, so
// two admins racing to add the same period cannot both win.
var ErrDuplicatePeriod = errors.New("dues entry already exists for this period")

// ErrBadPeriod is returned when the month is outside 1-12.
var ErrBadPeriod = errors.New("month must be between 1 and 12")

// Store wraps the dues_entries collection.
type Store struct {
	c *mongo.Collection
}

// New returns a Store bound to the dues_entries collection of db.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("dues_entries")}
}

// Create inserts an unpaid entry for the given member and period.
// The caller sets MemberID, Year, Month, Amount, Note and CreatedByID.
func (s *Store) Create(ctx context.Context, e models.DuesEntry) (models.DuesEntry, error) {
	if e.Month < 1 || e.Month > 12 {
		return models.DuesEntry{}, ErrBadPeriod
	}
	if e.MemberID.IsZero() {
		return models.DuesEntry{}, errors.New("member id is required")
	}

	now := time.Now()
	e.ID = primitive.NewObjectID()
	e.Status = models.DuesUnpaid
	e.PaidAt = nil
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		if wafflemongo.IsDup(err) {
			return models.DuesEntry{}, ErrDuplicatePeriod
		}
		return models.DuesEntry{}, err
	}
	return e, nil
}

// GetByID fetches one entry by id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.DuesEntry, error) {
	var e models.DuesEntry
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return models.DuesEntry{}, ErrNotFound
	}
	return e, err
}

// MarkPaid sets the entry's status to paid and stamps paid_at with the
// current time. Calling it on an already-paid entry overwrites paid_at;
// the ledger keeps only the most recent payment time.
func (s *Store) MarkPaid(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":     models.DuesPaid,
			"paid_at":    now,
			"updated_at": now,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an entry by id and returns the number deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListForMember returns a member's entries, newest period first. Pass
// year == 0 for all years.
func (s *Store) ListForMember(ctx context.Context, memberID primitive.ObjectID, year int) ([]models.DuesEntry, error) {
	filter := bson.M{"member_id": memberID}
	if year > 0 {
		filter["year"] = year
	}

	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []models.DuesEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListUnpaidForPeriod returns all unpaid entries for a given period,
// used by the admin collection view.
func (s *Store) ListUnpaidForPeriod(ctx context.Context, year, month int) ([]models.DuesEntry, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"year": year, "month": month, "status": models.DuesUnpaid},
		options.Find().SetSort(bson.D{{Key: "member_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []models.DuesEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Summary aggregates a member's ledger for display next to it.
type Summary struct {
	UnpaidTotal    float64    // sum of unpaid amounts
	PaidTotal      float64    // sum of paid amounts
	LastPaidAt     *time.Time // most recent paid_at, nil if never paid
	CurrentMonthly float64    // amount of the latest entry by period, any status
}

// Summarize computes the ledger summary for one member. Pass year == 0 for
// all years. A member with no entries gets a zero Summary, not an error.
func (s *Store) Summarize(ctx context.Context, memberID primitive.ObjectID, year int) (Summary, error) {
	match := bson.M{"member_id": memberID}
	if year > 0 {
		match["year"] = year
	}

	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": match},
		{"$group": bson.M{
			"_id":       "$status",
			"total":     bson.M{"$sum": "$amount"},
			"last_paid": bson.M{"$max": "$paid_at"},
		}},
	})
	if err != nil {
		return Summary{}, err
	}
	defer cur.Close(ctx)

	var sum Summary
	for cur.Next(ctx) {
		var row struct {
			Status   string     `bson:"_id"`
			Total    float64    `bson:"total"`
			LastPaid *time.Time `bson:"last_paid"`
		}
		if err := cur.Decode(&row); err != nil {
			return Summary{}, err
		}
		switch row.Status {
		case models.DuesUnpaid:
			sum.UnpaidTotal = row.Total
		case models.DuesPaid:
			sum.PaidTotal = row.Total
			sum.LastPaidAt = row.LastPaid
		}
	}
	if err := cur.Err(); err != nil {
		return Summary{}, err
	}

	// The latest entry's amount stands as the current monthly due even when
	// that entry is already paid.
	var latest models.DuesEntry
	err = s.c.FindOne(ctx, match,
		options.FindOne().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}})).
		Decode(&latest)
	switch err {
	case nil:
		sum.CurrentMonthly = latest.Amount
	case mongo.ErrNoDocuments:
		// no entries at all
	default:
		return Summary{}, err
	}

	return sum, nil
}

// Package eventstore persists association events.
package eventstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/villagehub/internal/app/system/inputval"
	"github.com/dalemusser/villagehub/internal/app/system/normalize"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no event matches the given id.
var ErrNotFound = errors.New("event not found")

// ErrInvalidTime is returned when the start time is not "HH:MM".
var ErrInvalidTime = errors.New("invalid event time")

// Store wraps the events collection.
type Store struct {
	c *mongo.Collection
}

// New returns a Store bound to the events collection of db.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

// effectiveStatus applies the save-time rule: a past-dated event is always
// passive, whatever the caller asked for.
func effectiveStatus(status string, date time.Time, now time.Time) string {
	if date.Before(now) {
		return models.StatusPassive
	}
	if status == "" {
		return models.StatusActive
	}
	return status
}

// Create inserts an event. Events dated in the past are stored passive.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	if e.Time != "" && !inputval.IsValidTimeHHMM(e.Time) {
		return models.Event{}, ErrInvalidTime
	}
	status := normalize.Status(e.Status)
	if status != "" && status != models.StatusActive && status != models.StatusPassive {
		return models.Event{}, errors.New("invalid status")
	}

	now := time.Now()
	e.ID = primitive.NewObjectID()
	e.Status = effectiveStatus(status, e.Date, now)
	e.CreatedAt = now
	e.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// GetByID fetches one event by id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	var e models.Event
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return models.Event{}, ErrNotFound
	}
	return e, err
}

// Update carries the editable fields of an event.
type Update struct {
	Title       string
	Description string
	Date        time.Time
	Time        string
	Location    string
	Status      string
}

// Update applies an admin edit, re-running the past-date rule against the
// new date.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	if upd.Time != "" && !inputval.IsValidTimeHHMM(upd.Time) {
		return ErrInvalidTime
	}
	status := normalize.Status(upd.Status)
	if status != "" && status != models.StatusActive && status != models.StatusPassive {
		return errors.New("invalid status")
	}

	now := time.Now()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"title":       upd.Title,
			"description": upd.Description,
			"date":        upd.Date,
			"time":        upd.Time,
			"location":    upd.Location,
			"status":      effectiveStatus(status, upd.Date, now),
			"updated_at":  now,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetImagePath replaces the stored image reference.
func (s *Store) SetImagePath(ctx context.Context, id primitive.ObjectID, imagePath string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"image_path": imagePath, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an event by id and returns the number deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListActive returns active events soonest-first for the public page.
func (s *Store) ListActive(ctx context.Context) ([]models.Event, error) {
	return s.list(ctx,
		bson.M{"status": models.StatusActive},
		bson.D{{Key: "date", Value: 1}})
}

// ListAll returns every event newest-first for the admin list.
func (s *Store) ListAll(ctx context.Context) ([]models.Event, error) {
	return s.list(ctx, bson.M{}, bson.D{{Key: "date", Value: -1}})
}

func (s *Store) list(ctx context.Context, filter bson.M, sort bson.D) ([]models.Event, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []models.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// RetirePast flips active events whose date has passed to passive. The
// public list filters on status, so this keeps stale rows from lingering
// active when nobody has edited them since the date went by.
func (s *Store) RetirePast(ctx context.Context) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"status": models.StatusActive, "date": bson.M{"$lt": time.Now()}},
		bson.M{"$set": bson.M{"status": models.StatusPassive, "updated_at": time.Now()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

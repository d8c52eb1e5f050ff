// Package announcementstore persists admin-authored announcements.
package announcementstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/villagehub/internal/app/system/normalize"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no announcement matches the given id.
var ErrNotFound = errors.New("announcement not found")

// ErrInvalidImportance is returned for importance strings outside the
// known set.
var ErrInvalidImportance = errors.New("invalid importance")

// Store wraps the announcements collection.
type Store struct {
	c *mongo.Collection
}

// New returns a Store bound to the announcements collection of db.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("announcements")}
}

// Create inserts an announcement. Empty importance defaults to normal,
// empty status to active.
func (s *Store) Create(ctx context.Context, a models.Announcement) (models.Announcement, error) {
	if a.Importance == "" {
		a.Importance = models.ImportanceNormal
	}
	if !models.IsValidImportance(a.Importance) {
		return models.Announcement{}, ErrInvalidImportance
	}
	a.Status = normalize.Status(a.Status)
	if a.Status == "" {
		a.Status = models.StatusActive
	}
	if a.Status != models.StatusActive && a.Status != models.StatusPassive {
		return models.Announcement{}, errors.New("invalid status")
	}

	now := time.Now()
	a.ID = primitive.NewObjectID()
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Announcement{}, err
	}
	return a, nil
}

// GetByID fetches one announcement by id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Announcement, error) {
	var a models.Announcement
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return models.Announcement{}, ErrNotFound
	}
	return a, err
}

// Update carries the editable fields of an announcement.
type Update struct {
	Title      string
	Body       string
	Importance string
	Status     string
}

// Update applies an admin edit.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	if !models.IsValidImportance(upd.Importance) {
		return ErrInvalidImportance
	}
	status := normalize.Status(upd.Status)
	if status != models.StatusActive && status != models.StatusPassive {
		return errors.New("invalid status")
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"title":      upd.Title,
			"body":       upd.Body,
			"importance": upd.Importance,
			"status":     status,
			"updated_at": time.Now(),
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

// Delete removes an announcement by id and returns the number deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListActive returns active announcements, newest first.
func (s *Store) ListActive(ctx context.Context) ([]models.Announcement, error) {
	return s.list(ctx, bson.M{"status": models.StatusActive})
}

// ListAll returns every announcement regardless of status, newest first.
// Admin only.
func (s *Store) ListAll(ctx context.Context) ([]models.Announcement, error) {
	return s.list(ctx, bson.M{})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Announcement, error) {
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []models.Announcement
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListBanners returns the active announcements flagged important or urgent,
// newest first, for the site-wide banner strip.
func (s *Store) ListBanners(ctx context.Context, limit int64) ([]models.Announcement, error) {
	cur, err := s.c.Find(ctx,
		bson.M{
			"status":     models.StatusActive,
			"importance": bson.M{"$in": []string{models.ImportanceImportant, models.ImportanceUrgent}},
		},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []models.Announcement
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

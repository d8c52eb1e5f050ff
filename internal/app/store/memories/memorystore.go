// Package memorystore persists member-submitted memories and their
// moderation state.
package memorystore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/villagehub/internal/app/policy/memorypolicy"
	"github.com/dalemusser/villagehub/internal/app/system/normalize"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no memory matches the given id.
var ErrNotFound = errors.New("memory not found")

// ErrInvalidVisibility is returned for visibility strings outside the
// known set.
var ErrInvalidVisibility = errors.New("invalid visibility")

// Store wraps the memories collection.
type Store struct {
	c *mongo.Collection
}

// New returns a Store bound to the memories collection of db.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("memories")}
}

// Create inserts a new submission in pending state. The author's requested
// visibility is recorded but only takes effect once an admin approves; the
// approval form is pre-filled with it.
func (s *Store) Create(ctx context.Context, m models.Memory) (models.Memory, error) {
	if m.AuthorID.IsZero() {
		return models.Memory{}, errors.New("author id is required")
	}
	vis := normalize.Visibility(m.Visibility)
	if vis == "" {
		vis = models.VisibilityPublic
	}
	if !models.IsValidVisibility(vis) {
		return models.Memory{}, ErrInvalidVisibility
	}

	now := time.Now()
	m.ID = primitive.NewObjectID()
	m.Status = models.MemoryPending
	m.Visibility = vis
	m.ApprovedAt = nil
	m.ApprovedByID = nil
	m.SubmittedAt = now
	m.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.Memory{}, err
	}
	return m, nil
}

// GetByID fetches one memory by id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Memory, error) {
	var m models.Memory
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return models.Memory{}, ErrNotFound
	}
	return m, err
}

// ListVisible returns the memories the viewer may see, newest first.
func (s *Store) ListVisible(ctx context.Context, v memorypolicy.Viewer) ([]models.Memory, error) {
	return s.list(ctx, memorypolicy.VisibleFilter(v),
		bson.D{{Key: "submitted_at", Value: -1}})
}

// ListPending returns the moderation queue, oldest submission first.
func (s *Store) ListPending(ctx context.Context) ([]models.Memory, error) {
	return s.list(ctx, bson.M{"status": models.MemoryPending},
		bson.D{{Key: "submitted_at", Value: 1}})
}

// ListAll returns every memory regardless of status, newest first. Admin
// only.
func (s *Store) ListAll(ctx context.Context) ([]models.Memory, error) {
	return s.list(ctx, bson.M{}, bson.D{{Key: "submitted_at", Value: -1}})
}

// ListByAuthor returns one author's memories regardless of status, newest
// first.
func (s *Store) ListByAuthor(ctx context.Context, authorID primitive.ObjectID) ([]models.Memory, error) {
	return s.list(ctx, bson.M{"author_id": authorID},
		bson.D{{Key: "submitted_at", Value: -1}})
}

func (s *Store) list(ctx context.Context, filter bson.M, sort bson.D) ([]models.Memory, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memories []models.Memory
	if err := cur.All(ctx, &memories); err != nil {
		return nil, err
	}
	return memories, nil
}

// visibilityFields builds the visibility portion of an update, clearing
// whichever allow-list does not apply to the chosen mode.
func visibilityFields(visibility string, userIDs, groupIDs []primitive.ObjectID) (bson.M, error) {
	visibility = normalize.Visibility(visibility)
	if !models.IsValidVisibility(visibility) {
		return nil, ErrInvalidVisibility
	}

	set := bson.M{"visibility": visibility}
	switch visibility {
	case models.VisibilitySelectedUsers:
		set["allowed_user_ids"] = userIDs
		set["allowed_group_ids"] = []primitive.ObjectID{}
	case models.VisibilitySelectedGroups:
		set["allowed_group_ids"] = groupIDs
		set["allowed_user_ids"] = []primitive.ObjectID{}
	default:
		set["allowed_user_ids"] = []primitive.ObjectID{}
		set["allowed_group_ids"] = []primitive.ObjectID{}
	}
	return set, nil
}

// Approve publishes a pending memory. Status, visibility mode, allow-lists
// and the approval stamp all land in a single update so a reader can never
// observe an approved memory without its final visibility.
func (s *Store) Approve(ctx context.Context, id primitive.ObjectID, visibility string, userIDs, groupIDs []primitive.ObjectID, adminID primitive.ObjectID) error {
	set, err := visibilityFields(visibility, userIDs, groupIDs)
	if err != nil {
		return err
	}

	now := time.Now()
	set["status"] = models.MemoryApproved
	set["approved_at"] = now
	set["approved_by_id"] = adminID
	set["updated_at"] = now

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Reject marks a memory rejected. No visibility data is needed; the record
// keeps whatever the author requested for reference.
func (s *Store) Reject(ctx context.Context, id primitive.ObjectID) error {
	return s.setStatus(ctx, id, models.MemoryRejected)
}

// ReturnToPending puts an approved or rejected memory back in the
// moderation queue, dropping the approval stamp.
func (s *Store) ReturnToPending(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set":   bson.M{"status": models.MemoryPending, "updated_at": time.Now()},
			"$unset": bson.M{"approved_at": "", "approved_by_id": ""},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) setStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ContentUpdate carries the fields an admin edit may change. The edit never
// touches the moderation status.
type ContentUpdate struct {
	Title      string
	Body       string
	Visibility string
	UserIDs    []primitive.ObjectID
	GroupIDs   []primitive.ObjectID
}

// UpdateContent applies an admin edit to title, body and visibility.
func (s *Store) UpdateContent(ctx context.Context, id primitive.ObjectID, upd ContentUpdate) error {
	set, err := visibilityFields(upd.Visibility, upd.UserIDs, upd.GroupIDs)
	if err != nil {
		return err
	}
	set["title"] = upd.Title
	set["body"] = upd.Body
	set["updated_at"] = time.Now()

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
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

// Delete removes a memory by id and returns the number deleted. Callers
// fetch the record first when they need the image path for cleanup.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountPending returns the size of the moderation queue for the admin
// navigation badge.
func (s *Store) CountPending(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"status": models.MemoryPending})
}

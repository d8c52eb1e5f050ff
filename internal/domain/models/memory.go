// internal/domain/models/memory.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory approval statuses.
const (
	MemoryPending  = "pending"
	MemoryApproved = "approved"
	MemoryRejected = "rejected"
)

// Memory visibility modes. The allow-lists only apply to the matching mode;
// approving or editing a memory with a different mode clears the other list.
const (
	VisibilityPublic         = "public"
	VisibilitySelectedUsers  = "selected_users"
	VisibilitySelectedGroups = "selected_groups"
)

// IsValidVisibility reports whether s is a recognized visibility mode.
func IsValidVisibility(s string) bool {
	switch s {
	case VisibilityPublic, VisibilitySelectedUsers, VisibilitySelectedGroups:
		return true
	}
	return false
}

// Memory is a member-submitted recollection/photo post. New submissions start
// pending; an admin approval fixes the visibility mode and allow-lists in the
// same update that flips the status.
type Memory struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Body      string             `bson:"body" json:"body"`
	ImagePath string             `bson:"image_path,omitempty" json:"image_path,omitempty"`
	AuthorID  primitive.ObjectID `bson:"author_id" json:"author_id"`

	Status     string `bson:"status" json:"status"`         // pending | approved | rejected
	Visibility string `bson:"visibility" json:"visibility"` // public | selected_users | selected_groups

	AllowedUserIDs  []primitive.ObjectID `bson:"allowed_user_ids,omitempty" json:"allowed_user_ids,omitempty"`
	AllowedGroupIDs []primitive.ObjectID `bson:"allowed_group_ids,omitempty" json:"allowed_group_ids,omitempty"`

	SubmittedAt  time.Time           `bson:"submitted_at" json:"submitted_at"`
	ApprovedAt   *time.Time          `bson:"approved_at,omitempty" json:"approved_at,omitempty"`
	ApprovedByID *primitive.ObjectID `bson:"approved_by_id,omitempty" json:"approved_by_id,omitempty"`

	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsApproved reports whether the memory has been approved for viewing.
func (m *Memory) IsApproved() bool { return m.Status == MemoryApproved }

// HasImage reports whether an image was uploaded with this memory.
func (m *Memory) HasImage() bool { return m.ImagePath != "" }

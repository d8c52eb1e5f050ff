// internal/domain/models/announcement.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Content statuses shared by announcements and events.
const (
	StatusActive  = "active"
	StatusPassive = "passive"
)

// Announcement importance levels.
const (
	ImportanceNormal    = "normal"
	ImportanceImportant = "important"
	ImportanceUrgent    = "urgent"
)

// IsValidImportance reports whether s is a recognized importance level.
func IsValidImportance(s string) bool {
	switch s {
	case ImportanceNormal, ImportanceImportant, ImportanceUrgent:
		return true
	}
	return false
}

// Announcement is an admin-authored site announcement. Listings are sorted
// newest-first.
type Announcement struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title      string             `bson:"title" json:"title"`
	Body       string             `bson:"body" json:"body"`
	ImagePath  string             `bson:"image_path,omitempty" json:"image_path,omitempty"`
	Status     string             `bson:"status" json:"status"`         // active | passive
	Importance string             `bson:"importance" json:"importance"` // normal | important | urgent

	CreatedByID primitive.ObjectID `bson:"created_by_id" json:"created_by_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasImage reports whether an image was uploaded with this announcement.
func (a *Announcement) HasImage() bool { return a.ImagePath != "" }

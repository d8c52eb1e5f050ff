// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is an association event. Listings are sorted by date ascending so
// upcoming events come first. Saving an event whose date has passed forces
// the status to passive; the store applies that rule on create and update.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Date        time.Time          `bson:"date" json:"date"`
	Time        string             `bson:"time,omitempty" json:"time,omitempty"` // "HH:MM"
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	ImagePath   string             `bson:"image_path,omitempty" json:"image_path,omitempty"`
	Status      string             `bson:"status" json:"status"` // active | passive

	CreatedByID primitive.ObjectID `bson:"created_by_id" json:"created_by_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasImage reports whether an image was uploaded with this event.
func (e *Event) HasImage() bool { return e.ImagePath != "" }

// IsPast reports whether the event's date is before now.
func (e *Event) IsPast(now time.Time) bool { return e.Date.Before(now) }

// internal/domain/models/duesentry.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Dues statuses.
const (
	DuesUnpaid = "unpaid"
	DuesPaid   = "paid"
)

// DuesEntry is one month's membership fee record for one member.
// At most one entry may exist per (member, year, month); the dues collection
// carries a unique compound index on that triple.
type DuesEntry struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID primitive.ObjectID `bson:"member_id" json:"member_id"`
	Year     int                `bson:"year" json:"year"`
	Month    int                `bson:"month" json:"month"` // 1-12
	Amount   float64            `bson:"amount" json:"amount"`
	Status   string             `bson:"status" json:"status"` // unpaid | paid
	PaidAt   *time.Time         `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
	Note     string             `bson:"note,omitempty" json:"note,omitempty"`

	CreatedByID primitive.ObjectID `bson:"created_by_id" json:"created_by_id"` // admin who added the entry

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsPaid reports whether the entry has been marked paid.
func (d *DuesEntry) IsPaid() bool { return d.Status == DuesPaid }

// Period returns the entry's (year, month) as a sortable integer, e.g. 202401.
func (d *DuesEntry) Period() int { return d.Year*100 + d.Month }

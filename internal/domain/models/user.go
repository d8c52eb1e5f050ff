// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership roles. Every user starts as RolePending and is moved to one of
// the other roles by an admin. Role changes never happen through self-service
// profile edits.
const (
	RolePending       = "pending"
	RoleActiveMember  = "active_member"
	RolePassiveMember = "passive_member"
	RoleAdmin         = "admin"
)

// AllRoles lists the valid membership roles.
var AllRoles = []string{RolePending, RoleActiveMember, RolePassiveMember, RoleAdmin}

// IsValidRole reports whether s is one of the membership roles.
func IsValidRole(s string) bool {
	switch s {
	case RolePending, RoleActiveMember, RolePassiveMember, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered association member (any role).
//
// NOTE:
//   - Group membership is not embedded on User.
//     Use the groups collection's member_ids to discover a user's groups.
//   - PasswordHash is a bcrypt hash; the clear-text password is never stored.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName    string             `bson:"first_name" json:"first_name"`
	LastName     string             `bson:"last_name" json:"last_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped "first last"
	NationalID   string             `bson:"national_id" json:"national_id"`   // 11 digits, unique
	Email        string             `bson:"email" json:"email"`               // lowercased, unique
	FamilyNick   string             `bson:"family_nick" json:"family_nick"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"` // pending | active_member | passive_member | admin

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// FullName returns the display name ("First Last").
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsApproved reports whether the user has been approved by an admin
// (any role other than pending).
func (u *User) IsApproved() bool {
	return u.Role != RolePending
}

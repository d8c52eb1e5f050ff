// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/dalemusser/villagehub/internal/app/system/auth"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a found flag.
// If no user is present in context or the user ID is malformed, it returns
// "visitor", "", NilObjectID, false. This ensures callers can trust that
// ok=true means a valid, authenticated user with a valid ObjectID.
// The role is normalized to lowercase for consistent comparison.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed for security.
		// This should not happen in normal operation; indicates session corruption.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// IsActiveMember reports whether the current request's user is an active member.
func IsActiveMember(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleActiveMember
}

// IsPassiveMember reports whether the current request's user is a passive member.
func IsPassiveMember(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RolePassiveMember
}

// IsPending reports whether the current request's user is still awaiting
// admin approval.
func IsPending(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RolePending
}

// IsApprovedMember reports whether the current user has been approved by an
// admin (any role past pending). Approved members can see member-only
// content; what they can contribute depends on active vs passive.
func IsApprovedMember(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	return role == models.RoleActiveMember || role == models.RolePassiveMember || role == models.RoleAdmin
}

// CanContribute reports whether the current user may create content
// (memories, metaverse access). Active members and admins can; passive
// members are read-only.
func CanContribute(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	return role == models.RoleActiveMember || role == models.RoleAdmin
}

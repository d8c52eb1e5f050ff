// Package userpolicy centralizes the membership role state machine.
//
// Authorization rules:
//   - Registration creates pending users; only admin actions change roles
//   - A record currently holding admin can neither be re-roled nor deleted
//   - Promotion to admin is allowed from any non-admin role
//   - Unknown role strings are rejected before any write
package userpolicy

import (
	"context"
	"errors"

	userstore "github.com/dalemusser/villagehub/internal/app/store/users"
	"github.com/dalemusser/villagehub/internal/app/system/normalize"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrAdminProtected is returned when a mutating operation targets a user who
// currently holds the admin role. Admin records are immutable through the
// member-management surface; demoting an admin is a deliberate out-of-band
// act, not a form submit.
var ErrAdminProtected = errors.New("admin accounts cannot be modified or deleted")

// ErrInvalidRole is returned for role strings outside the known set.
var ErrInvalidRole = errors.New("invalid role")

// ErrSameRole is returned when the requested role equals the current one.
var ErrSameRole = errors.New("user already has this role")

// Policy applies the role rules on top of the user store.
type Policy struct {
	users *userstore.Store
}

// New returns a Policy backed by the given user store.
func New(users *userstore.Store) *Policy {
	return &Policy{users: users}
}

// Approve moves a pending user into active_member or passive_member.
// Approving a user who is not pending is allowed and behaves like ChangeRole;
// the admin queue is just the common path.
func (p *Policy) Approve(ctx context.Context, id primitive.ObjectID, role string) error {
	role = normalize.Role(role)
	if role != models.RoleActiveMember && role != models.RolePassiveMember {
		return ErrInvalidRole
	}
	return p.ChangeRole(ctx, id, role)
}

// ChangeRole sets a user's role after checking the state machine.
func (p *Policy) ChangeRole(ctx context.Context, id primitive.ObjectID, role string) error {
	role = normalize.Role(role)
	if !models.IsValidRole(role) {
		return ErrInvalidRole
	}

	u, err := p.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == models.RoleAdmin {
		return ErrAdminProtected
	}
	if u.Role == role {
		return ErrSameRole
	}

	return p.users.SetRole(ctx, id, role)
}

// Delete removes a user record unless it holds the admin role.
func (p *Policy) Delete(ctx context.Context, id primitive.ObjectID) error {
	u, err := p.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u.Role == models.RoleAdmin {
		return ErrAdminProtected
	}

	_, err = p.users.Delete(ctx, id)
	return err
}

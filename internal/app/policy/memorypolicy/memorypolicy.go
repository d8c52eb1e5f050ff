// Package memorypolicy decides who may view a memory.
//
// Authorization rules:
//   - Admins can view every memory regardless of status or visibility
//   - Everyone else sees only approved memories
//   - An approved memory is visible when it is public, when the viewer is on
//     its user allow-list, or when the viewer belongs to a group on its group
//     allow-list
//   - Authorship grants nothing: an author whose memory is restricted to a
//     list they are not on cannot see it either
package memorypolicy

import (
	"context"
	"net/http"

	"github.com/dalemusser/villagehub/internal/app/system/authz"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Viewer carries the identity facts the visibility rules need. GroupIDs is
// the set of groups the viewer belongs to, resolved once per request.
type Viewer struct {
	ID       primitive.ObjectID
	Role     string
	GroupIDs []primitive.ObjectID
}

// IsAdmin reports whether the viewer holds the admin role.
func (v Viewer) IsAdmin() bool { return v.Role == models.RoleAdmin }

// CanView applies the visibility rules to a single memory.
func CanView(v Viewer, m models.Memory) bool {
	if v.IsAdmin() {
		return true
	}
	if !m.IsApproved() {
		return false
	}

	switch m.Visibility {
	case models.VisibilityPublic:
		return true
	case models.VisibilitySelectedUsers:
		for _, id := range m.AllowedUserIDs {
			if id == v.ID {
				return true
			}
		}
	case models.VisibilitySelectedGroups:
		for _, gid := range m.AllowedGroupIDs {
			for _, vgid := range v.GroupIDs {
				if gid == vgid {
					return true
				}
			}
		}
	}
	return false
}

// VisibleFilter returns the Mongo filter matching exactly the memories
// CanView would allow, for use in list queries. Admins get every approved
// memory here; the moderation queue lists the rest.
func VisibleFilter(v Viewer) bson.M {
	if v.IsAdmin() {
		return bson.M{"status": models.MemoryApproved}
	}

	or := []bson.M{
		{"visibility": models.VisibilityPublic},
		{"visibility": models.VisibilitySelectedUsers, "allowed_user_ids": v.ID},
	}
	if len(v.GroupIDs) > 0 {
		or = append(or, bson.M{
			"visibility":        models.VisibilitySelectedGroups,
			"allowed_group_ids": bson.M{"$in": v.GroupIDs},
		})
	}

	return bson.M{
		"status": models.MemoryApproved,
		"$or":    or,
	}
}

// LoadViewer builds a Viewer for the request's signed-in user, resolving
// group memberships from the groups collection. A request with no user in
// context yields a zero Viewer, which matches only public memories.
func LoadViewer(ctx context.Context, db *mongo.Database, r *http.Request) (Viewer, error) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		return Viewer{}, nil
	}

	v := Viewer{ID: userID, Role: role}
	if v.IsAdmin() {
		return v, nil
	}

	cur, err := db.Collection("groups").Find(ctx,
		bson.M{"member_ids": userID})
	if err != nil {
		return Viewer{}, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return Viewer{}, err
		}
		v.GroupIDs = append(v.GroupIDs, row.ID)
	}
	if err := cur.Err(); err != nil {
		return Viewer{}, err
	}

	return v, nil
}

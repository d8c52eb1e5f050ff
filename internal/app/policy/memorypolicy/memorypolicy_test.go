package memorypolicy

import (
	"testing"

	"github.com/dalemusser/villagehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanView(t *testing.T) {
	viewerID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()
	groupA := primitive.NewObjectID()
	groupB := primitive.NewObjectID()

	tests := []struct {
		name   string
		viewer Viewer
		memory models.Memory
		want   bool
	}{
		{
			name:   "approved public visible to anyone",
			viewer: Viewer{ID: viewerID, Role: models.RoleActiveMember},
			memory: models.Memory{Status: models.MemoryApproved, Visibility: models.VisibilityPublic},
			want:   true,
		},
		{
			name:   "pending invisible even when public",
			viewer: Viewer{ID: viewerID, Role: models.RoleActiveMember},
			memory: models.Memory{Status: models.MemoryPending, Visibility: models.VisibilityPublic},
			want:   false,
		},
		{
			name:   "rejected invisible",
			viewer: Viewer{ID: viewerID, Role: models.RoleActiveMember},
			memory: models.Memory{Status: models.MemoryRejected, Visibility: models.VisibilityPublic},
			want:   false,
		},
		{
			name:   "selected users includes viewer",
			viewer: Viewer{ID: viewerID, Role: models.RoleActiveMember},
			memory: models.Memory{
				Status:         models.MemoryApproved,
				Visibility:     models.VisibilitySelectedUsers,
				AllowedUserIDs: []primitive.ObjectID{otherID, viewerID},
			},
			want: true,
		},
		{
			name:   "selected users excludes viewer",
			viewer: Viewer{ID: viewerID, Role: models.RoleActiveMember},
			memory: models.Memory{
				Status:         models.MemoryApproved,
				Visibility:     models.VisibilitySelectedUsers,
				AllowedUserIDs: []primitive.ObjectID{otherID},
			},
			want: false,
		},
		{
			name:   "selected groups includes one of viewer's groups",
			viewer: Viewer{ID: viewerID, Role: models.RoleActiveMember, GroupIDs: []primitive.ObjectID{groupA}},
			memory: models.Memory{
				Status:          models.MemoryApproved,
				Visibility:      models.VisibilitySelectedGroups,
				AllowedGroupIDs: []primitive.ObjectID{groupA, groupB},
			},
			want: true,
		},
		{
			name:   "selected groups with no overlap",
			viewer: Viewer{ID: viewerID, Role: models.RoleActiveMember, GroupIDs: []primitive.ObjectID{groupB}},
			memory: models.Memory{
				Status:          models.MemoryApproved,
				Visibility:      models.VisibilitySelectedGroups,
				AllowedGroupIDs: []primitive.ObjectID{groupA},
			},
			want: false,
		},
		{
			name:   "viewer in no groups",
			viewer: Viewer{ID: viewerID, Role: models.RoleActiveMember},
			memory: models.Memory{
				Status:          models.MemoryApproved,
				Visibility:      models.VisibilitySelectedGroups,
				AllowedGroupIDs: []primitive.ObjectID{groupA},
			},
			want: false,
		},
		{
			name:   "authorship grants nothing",
			viewer: Viewer{ID: viewerID, Role: models.RoleActiveMember},
			memory: models.Memory{
				AuthorID:       viewerID,
				Status:         models.MemoryApproved,
				Visibility:     models.VisibilitySelectedUsers,
				AllowedUserIDs: []primitive.ObjectID{otherID},
			},
			want: false,
		},
		{
			name:   "admin sees pending",
			viewer: Viewer{ID: viewerID, Role: models.RoleAdmin},
			memory: models.Memory{Status: models.MemoryPending, Visibility: models.VisibilityPublic},
			want:   true,
		},
		{
			name:   "admin sees restricted lists they are not on",
			viewer: Viewer{ID: viewerID, Role: models.RoleAdmin},
			memory: models.Memory{
				Status:         models.MemoryApproved,
				Visibility:     models.VisibilitySelectedUsers,
				AllowedUserIDs: []primitive.ObjectID{otherID},
			},
			want: true,
		},
		{
			name:   "anonymous viewer sees public only",
			viewer: Viewer{},
			memory: models.Memory{Status: models.MemoryApproved, Visibility: models.VisibilityPublic},
			want:   true,
		},
		{
			name:   "unknown visibility mode denies",
			viewer: Viewer{ID: viewerID, Role: models.RoleActiveMember},
			memory: models.Memory{Status: models.MemoryApproved, Visibility: "everyone"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanView(tt.viewer, tt.memory); got != tt.want {
				t.Errorf("CanView() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisibleFilter_AdminMatchesAllApproved(t *testing.T) {
	f := VisibleFilter(Viewer{ID: primitive.NewObjectID(), Role: models.RoleAdmin})
	if f["status"] != models.MemoryApproved {
		t.Errorf("expected approved status filter, got %v", f["status"])
	}
	if _, hasOr := f["$or"]; hasOr {
		t.Error("admin filter should not restrict by visibility")
	}
}

func TestVisibleFilter_MemberBranches(t *testing.T) {
	// Without groups the group branch is omitted so $in never gets an
	// empty slice.
	f := VisibleFilter(Viewer{ID: primitive.NewObjectID(), Role: models.RoleActiveMember})
	or, ok := f["$or"].([]bson.M)
	if !ok {
		t.Fatalf("expected $or branches, got %T", f["$or"])
	}
	if len(or) != 2 {
		t.Errorf("expected 2 branches without groups, got %d", len(or))
	}

	f = VisibleFilter(Viewer{
		ID:       primitive.NewObjectID(),
		Role:     models.RoleActiveMember,
		GroupIDs: []primitive.ObjectID{primitive.NewObjectID()},
	})
	or, ok = f["$or"].([]bson.M)
	if !ok {
		t.Fatalf("expected $or branches, got %T", f["$or"])
	}
	if len(or) != 3 {
		t.Errorf("expected 3 branches with groups, got %d", len(or))
	}
}

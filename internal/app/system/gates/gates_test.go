package gates_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/villagehub/internal/app/resources"
	"github.com/dalemusser/villagehub/internal/app/system/auth"
	"github.com/dalemusser/villagehub/internal/app/system/gates"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	// Gates render error pages on failure, so the template engine must be
	// booted the same way bootstrap does it.
	logger := zap.NewNop()
	resources.LoadSharedTemplates()

	eng := templates.New(false)
	if err := eng.Boot(logger); err == nil {
		templates.UseEngine(eng, logger)
	}
	m.Run()
}

func reqWithUser(role string, id primitive.ObjectID) *http.Request {
	r := httptest.NewRequest("GET", "/members", nil)
	r.Header.Set("Accept", "text/html")
	u := &auth.SessionUser{
		ID:    id.Hex(),
		Name:  "Test User",
		Email: "test@example.com",
		Role:  role,
	}
	return auth.WithTestUser(r, u)
}

func TestRequireAuth_NoUser(t *testing.T) {
	r := httptest.NewRequest("GET", "/members", nil)
	w := httptest.NewRecorder()

	res := gates.RequireAuth(w, r, "/login")
	if res.OK {
		t.Error("expected OK=false for unauthenticated request")
	}
}

func TestRequireAuth_WithUser(t *testing.T) {
	id := primitive.NewObjectID()
	w := httptest.NewRecorder()

	res := gates.RequireAuth(w, reqWithUser("active_member", id), "/login")
	if !res.OK {
		t.Fatal("expected OK=true")
	}
	if res.Role != "active_member" {
		t.Errorf("expected role active_member, got %q", res.Role)
	}
	if res.UserID != id {
		t.Errorf("expected user ID %v, got %v", id, res.UserID)
	}
}

func TestRequireAdmin(t *testing.T) {
	id := primitive.NewObjectID()

	tests := []struct {
		role string
		ok   bool
	}{
		{"admin", true},
		{"active_member", false},
		{"passive_member", false},
		{"pending", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			w := httptest.NewRecorder()
			res := gates.RequireAdmin(w, reqWithUser(tt.role, id), "Admins only.", "/")
			if res.OK != tt.ok {
				t.Errorf("role %q: OK = %v, want %v", tt.role, res.OK, tt.ok)
			}
		})
	}
}

func TestRequireAdmin_NoUser(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin", nil)
	w := httptest.NewRecorder()

	res := gates.RequireAdmin(w, r, "Admins only.", "/")
	if res.OK {
		t.Error("expected OK=false for unauthenticated request")
	}
}

func TestRequireApprovedMember(t *testing.T) {
	id := primitive.NewObjectID()

	tests := []struct {
		role string
		ok   bool
	}{
		{"admin", true},
		{"active_member", true},
		{"passive_member", true},
		{"pending", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			w := httptest.NewRecorder()
			res := gates.RequireApprovedMember(w, reqWithUser(tt.role, id), "Members only.", "/")
			if res.OK != tt.ok {
				t.Errorf("role %q: OK = %v, want %v", tt.role, res.OK, tt.ok)
			}
		})
	}
}

func TestRequireActiveMember(t *testing.T) {
	id := primitive.NewObjectID()

	tests := []struct {
		role string
		ok   bool
	}{
		{"admin", true},
		{"active_member", true},
		{"passive_member", false},
		{"pending", false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			w := httptest.NewRecorder()
			res := gates.RequireActiveMember(w, reqWithUser(tt.role, id), "Active members only.", "/")
			if res.OK != tt.ok {
				t.Errorf("role %q: OK = %v, want %v", tt.role, res.OK, tt.ok)
			}
		})
	}
}

func TestRequireAnyRole(t *testing.T) {
	id := primitive.NewObjectID()

	w := httptest.NewRecorder()
	res := gates.RequireAnyRole(w, reqWithUser("passive_member", id), "No access.", "/", "admin", "passive_member")
	if !res.OK {
		t.Error("expected OK=true when role is in allowed list")
	}

	w = httptest.NewRecorder()
	res = gates.RequireAnyRole(w, reqWithUser("pending", id), "No access.", "/", "admin", "passive_member")
	if res.OK {
		t.Error("expected OK=false when role is not in allowed list")
	}
}

// internal/app/features/members/handler.go
package members

import (
	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	userpolicy "github.com/dalemusser/villagehub/internal/app/policy/userpolicy"
	groupstore "github.com/dalemusser/villagehub/internal/app/store/groups"
	userstore "github.com/dalemusser/villagehub/internal/app/store/users"
	"github.com/dalemusser/villagehub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the member administration
// feature. Every route behind it is admin-only; the role gate lives in the
// router, and role transition rules live in userpolicy.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager
	Users      *userstore.Store
	Groups     *groupstore.Store
	Policy     *userpolicy.Policy
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	users := userstore.New(db)
	return &Handler{
		DB:         db,
		Log:        logger,
		ErrLog:     errLog,
		SessionMgr: sessionMgr,
		Users:      users,
		Groups:     groupstore.New(db),
		Policy:     userpolicy.New(users),
	}
}

// internal/app/features/groups/handler.go
package groups

import (
	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	groupstore "github.com/dalemusser/villagehub/internal/app/store/groups"
	userstore "github.com/dalemusser/villagehub/internal/app/store/users"
	"github.com/dalemusser/villagehub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the admin group management pages. Groups exist to scope
// memory visibility, so there is no public surface.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager
	Groups     *groupstore.Store
	Users      *userstore.Store
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		ErrLog:     errLog,
		SessionMgr: sessionMgr,
		Groups:     groupstore.New(db),
		Users:      userstore.New(db),
	}
}

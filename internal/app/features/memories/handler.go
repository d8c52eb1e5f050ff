// internal/app/features/memories/handler.go
package memories

import (
	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	groupstore "github.com/dalemusser/villagehub/internal/app/store/groups"
	memorystore "github.com/dalemusser/villagehub/internal/app/store/memories"
	userstore "github.com/dalemusser/villagehub/internal/app/store/users"
	"github.com/dalemusser/villagehub/internal/app/system/auth"
	"github.com/dalemusser/villagehub/internal/app/system/uploads"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the member-facing memory wall and the admin moderation
// pages. Uploads points at the memories slot of the upload tree.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager
	Memories   *memorystore.Store
	Groups     *groupstore.Store
	Users      *userstore.Store
	Uploads    *uploads.Store
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, uploadStore *uploads.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		ErrLog:     errLog,
		SessionMgr: sessionMgr,
		Memories:   memorystore.New(db),
		Groups:     groupstore.New(db),
		Users:      userstore.New(db),
		Uploads:    uploadStore,
	}
}

// internal/app/features/announcements/handler.go
package announcements

import (
	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	announcementstore "github.com/dalemusser/villagehub/internal/app/store/announcements"
	"github.com/dalemusser/villagehub/internal/app/system/auth"
	"github.com/dalemusser/villagehub/internal/app/system/uploads"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves both the public announcement pages and the admin CRUD.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager
	Store      *announcementstore.Store
	Uploads    *uploads.Store
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, uploadStore *uploads.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		ErrLog:     errLog,
		SessionMgr: sessionMgr,
		Store:      announcementstore.New(db),
		Uploads:    uploadStore,
	}
}

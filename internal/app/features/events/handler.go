// internal/app/features/events/handler.go
package events

import (
	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	eventstore "github.com/dalemusser/villagehub/internal/app/store/events"
	"github.com/dalemusser/villagehub/internal/app/system/auth"
	"github.com/dalemusser/villagehub/internal/app/system/uploads"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the public event calendar and the admin CRUD.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager
	Store      *eventstore.Store
	Uploads    *uploads.Store
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, uploadStore *uploads.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		ErrLog:     errLog,
		SessionMgr: sessionMgr,
		Store:      eventstore.New(db),
		Uploads:    uploadStore,
	}
}

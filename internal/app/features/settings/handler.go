// internal/app/features/settings/handler.go
package settings

import (
	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	settingsstore "github.com/dalemusser/villagehub/internal/app/store/settings"
	"github.com/dalemusser/villagehub/internal/app/system/auth"
	"github.com/dalemusser/villagehub/internal/app/system/uploads"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the admin form for the site-wide settings singleton.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager
	Store      *settingsstore.Store
	Logos      *uploads.Store
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, logoStore *uploads.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		ErrLog:     errLog,
		SessionMgr: sessionMgr,
		Store:      settingsstore.New(db),
		Logos:      logoStore,
	}
}

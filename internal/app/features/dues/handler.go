// internal/app/features/dues/handler.go
package dues

import (
	uierrors "github.com/dalemusser/villagehub/internal/app/features/errors"
	duesstore "github.com/dalemusser/villagehub/internal/app/store/dues"
	userstore "github.com/dalemusser/villagehub/internal/app/store/users"
	"github.com/dalemusser/villagehub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the member-facing dues ledger and the admin ledger
// management pages.
type Handler struct {
	DB         *mongo.Database
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager
	Dues       *duesstore.Store
	Users      *userstore.Store
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:         db,
		Log:        logger,
		ErrLog:     errLog,
		SessionMgr: sessionMgr,
		Dues:       duesstore.New(db),
		Users:      userstore.New(db),
	}
}

// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/villagehub/internal/app/resources"
	userstore "github.com/dalemusser/villagehub/internal/app/store/users"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	if appCfg.BootstrapAdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg.BootstrapAdminEmail, logger); err != nil {
			return err
		}
	}
	return nil
}

// ensureAdmin promotes the named account to admin. Accounts register with
// their own password, so the user must already exist; a missing account is
// only logged, the admin can be promoted on a later restart.
func ensureAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	store := userstore.New(deps.MongoDatabase)

	u, err := store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			logger.Warn("bootstrap admin account not registered yet",
				zap.String("email", email))
			return nil
		}
		return err
	}
	if u.Role == models.RoleAdmin {
		return nil
	}

	if err := store.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
		return err
	}
	logger.Info("promoted bootstrap admin",
		zap.String("email", email), zap.String("user_id", u.ID.Hex()))
	return nil
}

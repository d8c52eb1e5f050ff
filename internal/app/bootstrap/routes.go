// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"
	"path/filepath"

	announcementsfeature "github.com/dalemusser/villagehub/internal/app/features/announcements"
	duesfeature "github.com/dalemusser/villagehub/internal/app/features/dues"
	errorsfeature "github.com/dalemusser/villagehub/internal/app/features/errors"
	eventsfeature "github.com/dalemusser/villagehub/internal/app/features/events"
	groupsfeature "github.com/dalemusser/villagehub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/villagehub/internal/app/features/health"
	homefeature "github.com/dalemusser/villagehub/internal/app/features/home"
	loginfeature "github.com/dalemusser/villagehub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/villagehub/internal/app/features/logout"
	membersfeature "github.com/dalemusser/villagehub/internal/app/features/members"
	memoriesfeature "github.com/dalemusser/villagehub/internal/app/features/memories"
	metaversefeature "github.com/dalemusser/villagehub/internal/app/features/metaverse"
	profilefeature "github.com/dalemusser/villagehub/internal/app/features/profile"
	registerfeature "github.com/dalemusser/villagehub/internal/app/features/register"
	settingsfeature "github.com/dalemusser/villagehub/internal/app/features/settings"
	announcementstore "github.com/dalemusser/villagehub/internal/app/store/announcements"
	userstore "github.com/dalemusser/villagehub/internal/app/store/users"
	"github.com/dalemusser/villagehub/internal/app/system/auth"
	"github.com/dalemusser/villagehub/internal/app/system/timeouts"
	"github.com/dalemusser/villagehub/internal/app/system/uploads"
	"github.com/dalemusser/villagehub/internal/app/system/viewdata"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// bannersShown caps the site-wide banner strip.
const bannersShown = 3

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. VillageHub initializes the template
// engine, the session manager, and one upload store per image-bearing
// resource, then mounts the public surface and the admin surface behind a
// role gate.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(
		appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
		appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser fetches fresh user data on each request, so role
	// changes and deletions take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Important and urgent announcements surface as a banner on every page.
	banners := announcementstore.New(db)
	viewdata.SetBannerLoader(func(ctx context.Context) []viewdata.BannerVM {
		ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
		defer cancel()
		list, err := banners.ListBanners(ctx, bannersShown)
		if err != nil {
			logger.Warn("load banner announcements", zap.Error(err))
			return nil
		}
		vms := make([]viewdata.BannerVM, 0, len(list))
		for _, a := range list {
			vms = append(vms, viewdata.BannerVM{
				ID:         a.ID.Hex(),
				Title:      a.Title,
				Importance: a.Importance,
			})
		}
		return vms
	})

	// One upload store per resource type keeps the public URL space tidy
	// and lets each feature clean up only its own files.
	newUploadStore := func(slot string) (*uploads.Store, error) {
		return uploads.NewStore(filepath.Join(appCfg.UploadDir, slot), "/uploads/"+slot, logger)
	}
	memoryUploads, err := newUploadStore("memories")
	if err != nil {
		return nil, err
	}
	announcementUploads, err := newUploadStore("announcements")
	if err != nil {
		return nil, err
	}
	eventUploads, err := newUploadStore("events")
	if err != nil {
		return nil, err
	}
	logoUploads, err := newUploadStore("logos")
	if err != nil {
		return nil, err
	}
	logoUploads.AllowIco()

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets and uploaded images
	r.Handle("/static/*", fileserver.Handler("/static", "public"))
	r.Handle("/uploads/*", fileserver.Handler("/uploads", appCfg.UploadDir))

	// Public pages
	homeHandler := homefeature.NewHandler(db, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	registerHandler := registerfeature.NewHandler(db, sessionMgr, errLog, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	loginHandler := loginfeature.NewHandler(db, sessionMgr, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	announcementsHandler := announcementsfeature.NewHandler(db, sessionMgr, announcementUploads, errLog, logger)
	r.Mount("/announcements", announcementsfeature.Routes(announcementsHandler))

	eventsHandler := eventsfeature.NewHandler(db, sessionMgr, eventUploads, errLog, logger)
	r.Mount("/events", eventsfeature.Routes(eventsHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)
	r.NotFound(errorsHandler.NotFound)

	// Signed-in member surface
	profileHandler := profilefeature.NewHandler(db, errLog, logger)
	duesHandler := duesfeature.NewHandler(db, sessionMgr, errLog, logger)
	memoriesHandler := memoriesfeature.NewHandler(db, sessionMgr, memoryUploads, errLog, logger)
	r.Group(func(gr chi.Router) {
		gr.Use(sessionMgr.RequireSignedIn)
		gr.Mount("/profile", profilefeature.Routes(profileHandler))
		gr.Mount("/dues", duesfeature.Routes(duesHandler))
		gr.Mount("/memories", memoriesfeature.Routes(memoriesHandler))
	})

	metaverseHandler := metaversefeature.NewHandler(db, sessionMgr, errLog, logger)
	r.Mount("/metaverse", metaversefeature.Routes(metaverseHandler))

	// Admin surface
	membersHandler := membersfeature.NewHandler(db, sessionMgr, errLog, logger)
	groupsHandler := groupsfeature.NewHandler(db, sessionMgr, errLog, logger)
	settingsHandler := settingsfeature.NewHandler(db, sessionMgr, logoUploads, errLog, logger)
	r.Route("/admin", func(ar chi.Router) {
		ar.Use(sessionMgr.RequireRole(models.RoleAdmin))
		ar.Mount("/members", membersfeature.Routes(membersHandler))
		ar.Mount("/dues", duesfeature.AdminRoutes(duesHandler))
		ar.Mount("/memories", memoriesfeature.AdminRoutes(memoriesHandler))
		ar.Mount("/announcements", announcementsfeature.AdminRoutes(announcementsHandler))
		ar.Mount("/events", eventsfeature.AdminRoutes(eventsHandler))
		ar.Mount("/groups", groupsfeature.AdminRoutes(groupsHandler))
		ar.Mount("/settings", settingsfeature.AdminRoutes(settingsHandler))
	})

	return r, nil
}

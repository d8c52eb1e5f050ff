// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"context"
	"net/http"

	settingsstore "github.com/dalemusser/villagehub/internal/app/store/settings"
	"github.com/dalemusser/villagehub/internal/app/system/authz"
	"github.com/dalemusser/villagehub/internal/app/system/timeouts"
	"github.com/dalemusser/villagehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"go.mongodb.org/mongo-driver/mongo"
)

// BannerVM represents an announcement for display in the site-wide banner.
type BannerVM struct {
	ID         string
	Title      string
	Importance string // normal, important, urgent
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, db, "Page Title", "/default-back"),
//	    // page-specific fields...
//	}
type BaseVM struct {
	// Site settings (from database)
	SiteName        string
	SiteDescription string
	LogoURL         string

	// Feature toggles (from site settings)
	AnnouncementsEnabled bool
	EventsEnabled        bool
	MemoriesEnabled      bool
	MetaverseEnabled     bool

	// User context (from auth middleware)
	IsLoggedIn bool
	Role       string
	UserName   string
	IsAdmin    bool

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// One-shot flash notices queued by the previous request
	Notices []string

	// Urgent/important announcements for banner display
	Banners []BannerVM
}

// BannerLoader is a function that loads announcements for the site banner.
// This is set by bootstrap to avoid circular dependencies.
type BannerLoader func(ctx context.Context) []BannerVM

var bannerLoader BannerLoader

// SetBannerLoader sets the function used to load banner announcements.
// Call this once at startup from bootstrap after the announcement store is available.
func SetBannerLoader(loader BannerLoader) {
	bannerLoader = loader
}

// NewBaseVM creates a fully populated BaseVM for a page.
// This is the preferred way to create a BaseVM for embedding in view models.
//
// Parameters:
//   - r: the HTTP request
//   - db: database for loading site settings (can be nil for defaults)
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func NewBaseVM(r *http.Request, db *mongo.Database, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)

	vm := BaseVM{
		SiteName:        models.DefaultSiteName,
		SiteDescription: models.DefaultSiteDescription,

		AnnouncementsEnabled: true,
		EventsEnabled:        true,
		MemoriesEnabled:      true,
		MetaverseEnabled:     true,

		IsLoggedIn:  signedIn,
		Role:        role,
		UserName:    name,
		IsAdmin:     signedIn && role == models.RoleAdmin,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
	}

	if db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()

		store := settingsstore.New(db)
		settings, err := store.Get(ctx)
		if err == nil {
			vm.SiteName = settings.SiteName
			vm.SiteDescription = settings.SiteDescription
			if settings.HasLogo() {
				vm.LogoURL = settings.LogoPath
			}
			vm.AnnouncementsEnabled = settings.AnnouncementsEnabled
			vm.EventsEnabled = settings.EventsEnabled
			vm.MemoriesEnabled = settings.MemoriesEnabled
			vm.MetaverseEnabled = settings.MetaverseEnabled
		}
	}

	// Load banner announcements if loader is configured
	if bannerLoader != nil {
		vm.Banners = bannerLoader(r.Context())
	}

	return vm
}

// GetSiteName returns the site name from settings, or the default if not available.
func GetSiteName(ctx context.Context, db *mongo.Database) string {
	if db == nil {
		return models.DefaultSiteName
	}

	store := settingsstore.New(db)
	settings, err := store.Get(ctx)
	if err != nil {
		return models.DefaultSiteName
	}
	return settings.SiteName
}

// GetSettings returns the full site settings, or defaults if not available.
func GetSettings(ctx context.Context, db *mongo.Database) models.SiteSettings {
	if db == nil {
		return settingsstore.Defaults()
	}

	store := settingsstore.New(db)
	settings, err := store.Get(ctx)
	if err != nil {
		return settingsstore.Defaults()
	}
	return settings
}

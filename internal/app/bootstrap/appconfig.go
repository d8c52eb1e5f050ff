// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging); AppConfig is everything
// specific to VillageHub.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // secret for signing session cookies (must be strong in production)
	SessionName   string
	SessionDomain string // blank means current host
	SessionMaxAge time.Duration

	// Uploaded images live under UploadDir, one subdirectory per resource
	// type, and are served under /uploads.
	UploadDir string

	// BootstrapAdminEmail names an existing account to promote to admin on
	// startup, so a fresh install has someone who can approve members.
	BootstrapAdminEmail string
}

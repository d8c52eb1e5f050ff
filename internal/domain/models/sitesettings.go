// internal/domain/models/sitesettings.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SiteSettings is the one site-wide configuration document. The settings
// store lazily creates it with defaults on first read; there is never more
// than one document in the collection.
type SiteSettings struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`

	// Branding
	SiteName        string `bson:"site_name" json:"site_name"`
	SiteDescription string `bson:"site_description,omitempty" json:"site_description,omitempty"`
	LogoPath        string `bson:"logo_path,omitempty" json:"logo_path,omitempty"`

	// Contact
	ContactEmail string `bson:"contact_email" json:"contact_email"`
	ContactPhone string `bson:"contact_phone,omitempty" json:"contact_phone,omitempty"`
	Address      string `bson:"address,omitempty" json:"address,omitempty"`

	// Social links
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	YouTube   string `bson:"youtube,omitempty" json:"youtube,omitempty"`

	// Per-module enable flags. A disabled module's public routes redirect
	// home with a notice.
	RegistrationEnabled  bool `bson:"registration_enabled" json:"registration_enabled"`
	AnnouncementsEnabled bool `bson:"announcements_enabled" json:"announcements_enabled"`
	EventsEnabled        bool `bson:"events_enabled" json:"events_enabled"`
	MemoriesEnabled      bool `bson:"memories_enabled" json:"memories_enabled"`
	MetaverseEnabled     bool `bson:"metaverse_enabled" json:"metaverse_enabled"`

	UpdatedAt   *time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	UpdatedByID *primitive.ObjectID `bson:"updated_by_id,omitempty" json:"updated_by_id,omitempty"`
}

// HasLogo returns true if a logo has been uploaded.
func (s *SiteSettings) HasLogo() bool {
	return s.LogoPath != ""
}

// Defaults used when the singleton is first created.
const (
	DefaultSiteName        = "VillageHub"
	DefaultSiteDescription = "Community association portal"
	DefaultContactEmail    = "info@villagehub.example"
)

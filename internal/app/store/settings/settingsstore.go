// internal/app/store/settings/settingsstore.go
package settingsstore

import (
	"context"
	"time"

	"github.com/dalemusser/villagehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the site_settings collection.
// The whole site shares one settings document (a singleton).
type Store struct {
	c *mongo.Collection
}

// New creates a new settings store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("site_settings")}
}

// Defaults returns the settings used before an admin has saved anything.
// All features start enabled.
func Defaults() models.SiteSettings {
	return models.SiteSettings{
		SiteName:             models.DefaultSiteName,
		SiteDescription:      models.DefaultSiteDescription,
		ContactEmail:         models.DefaultContactEmail,
		RegistrationEnabled:  true,
		AnnouncementsEnabled: true,
		EventsEnabled:        true,
		MemoriesEnabled:      true,
		MetaverseEnabled:     true,
	}
}

// Get returns the site settings.
// If no settings document exists yet, returns the defaults without writing.
func (s *Store) Get(ctx context.Context) (models.SiteSettings, error) {
	var settings models.SiteSettings
	err := s.c.FindOne(ctx, bson.M{}).Decode(&settings)
	if err == mongo.ErrNoDocuments {
		return Defaults(), nil
	}
	if err != nil {
		return models.SiteSettings{}, err
	}
	return settings, nil
}

// GetOrCreate returns the site settings, inserting the default document on
// first access so later saves always have a row to update.
func (s *Store) GetOrCreate(ctx context.Context) (models.SiteSettings, error) {
	var settings models.SiteSettings
	err := s.c.FindOne(ctx, bson.M{}).Decode(&settings)
	if err == nil {
		return settings, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.SiteSettings{}, err
	}

	settings = Defaults()
	settings.ID = primitive.NewObjectID()
	if _, err := s.c.InsertOne(ctx, settings); err != nil {
		// A concurrent first access may have inserted already; re-read.
		var again models.SiteSettings
		if err2 := s.c.FindOne(ctx, bson.M{}).Decode(&again); err2 == nil {
			return again, nil
		}
		return models.SiteSettings{}, err
	}
	return settings, nil
}

// Save updates the site settings.
// Uses upsert so it works whether the singleton exists or not.
func (s *Store) Save(ctx context.Context, settings models.SiteSettings) error {
	now := time.Now().UTC()
	settings.UpdatedAt = &now

	update := bson.M{
		"$set": bson.M{
			"site_name":             settings.SiteName,
			"site_description":      settings.SiteDescription,
			"logo_path":             settings.LogoPath,
			"contact_email":         settings.ContactEmail,
			"contact_phone":         settings.ContactPhone,
			"address":               settings.Address,
			"facebook":              settings.Facebook,
			"twitter":               settings.Twitter,
			"instagram":             settings.Instagram,
			"youtube":               settings.YouTube,
			"registration_enabled":  settings.RegistrationEnabled,
			"announcements_enabled": settings.AnnouncementsEnabled,
			"events_enabled":        settings.EventsEnabled,
			"memories_enabled":      settings.MemoriesEnabled,
			"metaverse_enabled":     settings.MetaverseEnabled,
			"updated_at":            settings.UpdatedAt,
			"updated_by_id":         settings.UpdatedByID,
		},
		"$setOnInsert": bson.M{
			"_id": primitive.NewObjectID(),
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, bson.M{}, update, opts)
	return err
}

// Exists checks if the settings singleton has been saved.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	count, err := s.c.CountDocuments(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

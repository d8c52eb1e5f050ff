// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/villagehub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	// Core collections this app uses
	ensure("users", usersSchema())
	ensure("dues_entries", duesEntriesSchema())
	ensure("memories", memoriesSchema())
	ensure("announcements", announcementsSchema())
	ensure("events", eventsSchema())
	ensure("groups", groupsSchema())

	// The settings singleton doesn't strictly need a validator; we still
	// ensure the collection exists.
	ensure("site_settings", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func usersSchema() bson.M {
	// Build the role enum from the canonical list in the domain models.
	roleEnum := bson.A{}
	for _, r := range models.AllRoles {
		roleEnum = append(roleEnum, r)
	}

	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"first_name", "last_name", "national_id", "email", "role"},
			"properties": bson.M{
				"first_name":    bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"last_name":     bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"full_name_ci":  bson.M{"bsonType": "string"},
				"national_id":   bson.M{"bsonType": "string", "pattern": "^[0-9]{11}$"},
				"email":         bson.M{"bsonType": "string", "minLength": 3},
				"family_nick":   bson.M{"bsonType": bson.A{"string", "null"}},
				"password_hash": bson.M{"bsonType": "string"},
				"role":          bson.M{"enum": roleEnum},
			},
		},
	}
}

func duesEntriesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"member_id", "year", "month", "amount", "status"},
			"properties": bson.M{
				"member_id": bson.M{"bsonType": "objectId"},
				"year":      bson.M{"bsonType": "int", "minimum": 2000, "maximum": 2100},
				"month":     bson.M{"bsonType": "int", "minimum": 1, "maximum": 12},
				"amount":    bson.M{"bsonType": bson.A{"double", "int", "long"}, "minimum": 0},
				"status":    bson.M{"enum": bson.A{models.DuesUnpaid, models.DuesPaid}},
				"paid_at":   bson.M{"bsonType": bson.A{"date", "null"}},
				"note":      bson.M{"bsonType": "string"},
			},
		},
	}
}

func memoriesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "author_id", "status", "visibility"},
			"properties": bson.M{
				"title":     bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"body":      bson.M{"bsonType": "string"},
				"author_id": bson.M{"bsonType": "objectId"},
				"status": bson.M{"enum": bson.A{
					models.MemoryPending, models.MemoryApproved, models.MemoryRejected,
				}},
				"visibility": bson.M{"enum": bson.A{
					models.VisibilityPublic, models.VisibilitySelectedUsers, models.VisibilitySelectedGroups,
				}},
				"allowed_user_ids":  bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
				"allowed_group_ids": bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
				"image_path":        bson.M{"bsonType": "string"},
			},
		},
	}
}

func announcementsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "body", "status", "importance"},
			"properties": bson.M{
				"title":  bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"body":   bson.M{"bsonType": "string", "minLength": 1},
				"status": bson.M{"enum": bson.A{models.StatusActive, models.StatusPassive}},
				"importance": bson.M{"enum": bson.A{
					models.ImportanceNormal, models.ImportanceImportant, models.ImportanceUrgent,
				}},
				"image_path": bson.M{"bsonType": "string"},
			},
		},
	}
}

func eventsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "date", "status"},
			"properties": bson.M{
				"title":       bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"description": bson.M{"bsonType": "string"},
				"date":        bson.M{"bsonType": "date"},
				"time":        bson.M{"bsonType": "string"},
				"location":    bson.M{"bsonType": "string"},
				"status":      bson.M{"enum": bson.A{models.StatusActive, models.StatusPassive}},
				"image_path":  bson.M{"bsonType": "string"},
			},
		},
	}
}

func groupsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci"},
			"properties": bson.M{
				"name":        bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"name_ci":     bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"description": bson.M{"bsonType": "string"},
				"member_ids":  bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
			},
		},
	}
}

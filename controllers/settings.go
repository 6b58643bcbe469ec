package controllers

import (
	"context"
	"log"

	"github.com/nestquest/backend/config"
	"github.com/nestquest/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// RequireApproval reads the persisted moderation policy. Until an admin has
// stored an explicit setting, the environment default applies; on a store
// error the default also applies rather than failing the caller's request.
func RequireApproval(ctx context.Context) bool {
	var settings models.Settings
	err := config.SettingsCollection.FindOne(ctx, bson.M{"_id": models.ModerationSettingsID}).Decode(&settings)
	if err == mongo.ErrNoDocuments {
		return config.DefaultRequireApproval()
	}
	if err != nil {
		log.Printf("Error reading moderation settings: %v", err)
		return config.DefaultRequireApproval()
	}
	return settings.RequireApproval
}

package models

// Settings is a single-document collection keyed by a well-known id.
// ModerationSettingsID holds the global listing-approval policy.
const ModerationSettingsID = "moderation"

type Settings struct {
	ID              string `bson:"_id" json:"_id"`
	RequireApproval bool   `bson:"requireApproval" json:"requireApproval"`
}

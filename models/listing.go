package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Moderation states a listing moves through.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

func ValidApprovalStatus(s string) bool {
	return s == StatusPending || s == StatusApproved || s == StatusRejected
}

type Listing struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Name             string             `bson:"name" json:"name"`
	Description      string             `bson:"description" json:"description"`
	Address          string             `bson:"address" json:"address"`
	RegularPrice     float64            `bson:"regularPrice" json:"regularPrice"`
	DiscountPrice    float64            `bson:"discountPrice" json:"discountPrice"`
	Bathrooms        int                `bson:"bathrooms" json:"bathrooms"`
	Bedrooms         int                `bson:"bedrooms" json:"bedrooms"`
	Furnished        bool               `bson:"furnished" json:"furnished"`
	Parking          bool               `bson:"parking" json:"parking"`
	Offer            bool               `bson:"offer" json:"offer"`
	Type             string             `bson:"type" json:"type"` // "sale" | "rent"
	ImageURLs        []string           `bson:"imageUrls" json:"imageUrls"`
	UserRef          string             `bson:"userRef" json:"userRef"`
	ApprovalStatus   string             `bson:"approvalStatus" json:"approvalStatus"`
	ApprovedBy       string             `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	RequiresApproval bool               `bson:"requiresApproval" json:"requiresApproval"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

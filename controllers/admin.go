package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/nestquest/backend/config"
	"github.com/nestquest/backend/models"
	"github.com/nestquest/backend/queue"
	"github.com/nestquest/backend/utils"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type adminLoginRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	AdminPasscode string `json:"adminPasscode"`
}

type approvalRequest struct {
	ApprovalStatus string `json:"approvalStatus"`
}

type approvalSettingsRequest struct {
	RequireApproval bool `json:"requireApproval"`
}

// AdminLogin authenticates against the single configured administrator
// identity: the email must match ADMIN_EMAIL, the shared passcode must
// match, and the account password must verify. The first successful login
// promotes the matched account's admin flag in place; repeat logins leave
// it untouched.
func AdminLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("Error decoding admin login payload: %v", err)
			utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || !strings.EqualFold(email, config.AdminEmail()) {
			log.Printf("Admin login with non-admin email: %s", email)
			utils.WriteError(w, http.StatusForbidden, "Not an admin email")
			return
		}

		if req.AdminPasscode != config.AdminPasscode() {
			log.Printf("Admin login with wrong passcode for %s", email)
			utils.WriteError(w, http.StatusForbidden, "Invalid admin passcode")
			return
		}

		var user models.User
		err := config.UserCollection.FindOne(r.Context(), bson.M{"email": email}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			utils.WriteError(w, http.StatusNotFound, "Admin user not found")
			return
		}
		if err != nil {
			log.Printf("Error looking up admin user: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if !utils.CheckPasswordHash(req.Password, user.Password) {
			log.Printf("Wrong admin password for %s", email)
			utils.WriteError(w, http.StatusUnauthorized, "Wrong credentials")
			return
		}

		if !user.IsAdmin {
			_, err := config.UserCollection.UpdateOne(
				r.Context(),
				bson.M{"_id": user.ID},
				bson.M{"$set": bson.M{"isAdmin": true, "updatedAt": time.Now()}},
			)
			if err != nil {
				log.Printf("Error promoting user %s to admin: %v", user.ID.Hex(), err)
				utils.WriteError(w, http.StatusInternalServerError, "Failed to promote admin")
				return
			}
			log.Printf("User %s promoted to admin on first admin login", user.ID.Hex())
			user.IsAdmin = true
		}

		token, err := utils.GenerateJWT(user.ID.Hex())
		if err != nil {
			log.Printf("Error generating session token: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Failed to generate token")
			return
		}

		utils.SetSessionCookie(w, token)
		utils.WriteJSON(w, http.StatusOK, user)
	}
}

func GetAllUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cursor, err := config.UserCollection.Find(r.Context(), bson.M{})
		if err != nil {
			log.Printf("Error fetching users: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Error fetching users")
			return
		}
		defer cursor.Close(r.Context())

		users := []models.User{}
		if err := cursor.All(r.Context(), &users); err != nil {
			log.Printf("Error decoding users: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Error decoding users")
			return
		}

		utils.WriteJSON(w, http.StatusOK, users)
	}
}

// GetAllListings is the moderation queue: every listing regardless of
// status, optionally filtered, with a total count and a has-more flag for
// paging.
func GetAllListings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		filter := bson.M{}
		if status := query.Get("status"); models.ValidApprovalStatus(status) {
			filter["approvalStatus"] = status
		}

		limit := int64(20)
		if v, err := strconv.ParseInt(query.Get("limit"), 10, 64); err == nil && v > 0 {
			limit = v
		}
		startIndex := int64(0)
		if v, err := strconv.ParseInt(query.Get("startIndex"), 10, 64); err == nil && v > 0 {
			startIndex = v
		}

		findOptions := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip(startIndex).
			SetLimit(limit)

		cursor, err := config.ListingCollection.Find(r.Context(), filter, findOptions)
		if err != nil {
			log.Printf("Error fetching listings: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Error fetching listings")
			return
		}
		defer cursor.Close(r.Context())

		listings := []models.Listing{}
		if err := cursor.All(r.Context(), &listings); err != nil {
			log.Printf("Error decoding listings: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Error decoding listings")
			return
		}

		total, err := config.ListingCollection.CountDocuments(r.Context(), filter)
		if err != nil {
			log.Printf("Error counting listings: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Error counting listings")
			return
		}

		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"listings": listings,
			"total":    total,
			"hasMore":  total > startIndex+limit,
		})
	}
}

// UpdateListingApproval sets a listing's moderation status and records the
// acting admin. Setting the same status twice is a no-op, not an error.
func UpdateListingApproval(redisClient *redis.Client, pub *queue.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		listingID := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(listingID)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid listing ID")
			return
		}

		var req approvalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("Error decoding approval payload: %v", err)
			utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}

		if !models.ValidApprovalStatus(req.ApprovalStatus) {
			utils.WriteError(w, http.StatusBadRequest, "Invalid approval status")
			return
		}

		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		update := bson.M{"$set": bson.M{
			"approvalStatus": req.ApprovalStatus,
			"approvedBy":     adminID,
			"updatedAt":      time.Now(),
		}}

		var listing models.Listing
		err = config.ListingCollection.FindOneAndUpdate(r.Context(), bson.M{"_id": objID}, update, opts).Decode(&listing)
		if err == mongo.ErrNoDocuments {
			utils.WriteError(w, http.StatusNotFound, "Listing not found")
			return
		}
		if err != nil {
			log.Printf("Error updating approval for listing %s: %v", listingID, err)
			utils.WriteError(w, http.StatusInternalServerError, "Failed to update approval status")
			return
		}

		go invalidateSearchCache(redisClient)

		go func() {
			if err := pub.Publish(context.Background(), queue.KeyListingModerated, queue.ListingModerated{
				ListingID: listing.ID.Hex(),
				Status:    listing.ApprovalStatus,
				AdminID:   adminID,
			}); err != nil {
				log.Printf("Failed to publish %s event: %v", queue.KeyListingModerated, err)
			}
		}()

		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Listing " + req.ApprovalStatus,
			"listing": listing,
		})
	}
}

// AdminDeleteListing removes any listing, bypassing ownership.
func AdminDeleteListing(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listingID := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(listingID)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid listing ID")
			return
		}

		res, err := config.ListingCollection.DeleteOne(r.Context(), bson.M{"_id": objID})
		if err != nil {
			log.Printf("Admin delete failed for listing %s: %v", listingID, err)
			utils.WriteError(w, http.StatusInternalServerError, "Delete failed")
			return
		}
		if res.DeletedCount == 0 {
			utils.WriteError(w, http.StatusNotFound, "Listing not found")
			return
		}

		go invalidateSearchCache(redisClient)

		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Listing has been deleted by admin",
		})
	}
}

// AdminCreateListing stores a listing owned by the admin, skipping the
// moderation queue entirely.
func AdminCreateListing(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var listing models.Listing
		if err := json.NewDecoder(r.Body).Decode(&listing); err != nil {
			log.Printf("Invalid listing payload: %v", err)
			utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}

		if listing.Type != "sale" && listing.Type != "rent" {
			utils.WriteError(w, http.StatusBadRequest, "Listing type must be 'sale' or 'rent'")
			return
		}

		now := time.Now()
		listing.ID = primitive.NewObjectID()
		listing.UserRef = adminID
		listing.ApprovalStatus = models.StatusApproved
		listing.ApprovedBy = adminID
		listing.RequiresApproval = false
		listing.CreatedAt = now
		listing.UpdatedAt = now

		if _, err := config.ListingCollection.InsertOne(r.Context(), listing); err != nil {
			log.Printf("Admin insert failed: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Failed to create listing")
			return
		}

		go invalidateSearchCache(redisClient)

		utils.WriteJSON(w, http.StatusCreated, listing)
	}
}

// UpdateApprovalSettings persists the global "listings require approval"
// policy. The snapshot on existing listings is unchanged; only future
// creations and search visibility follow the new value.
func UpdateApprovalSettings(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req approvalSettingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("Error decoding settings payload: %v", err)
			utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}

		opts := options.Update().SetUpsert(true)
		_, err := config.SettingsCollection.UpdateOne(
			r.Context(),
			bson.M{"_id": models.ModerationSettingsID},
			bson.M{"$set": bson.M{"requireApproval": req.RequireApproval}},
			opts,
		)
		if err != nil {
			log.Printf("Error persisting approval settings: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Failed to update settings")
			return
		}

		// Visibility rules changed, drop stale search results.
		go invalidateSearchCache(redisClient)

		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success":         true,
			"message":         "Listing approval requirement set to: " + strconv.FormatBool(req.RequireApproval),
			"requireApproval": req.RequireApproval,
		})
	}
}

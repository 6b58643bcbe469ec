package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
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

type ContextKey string

const UserIDKey = ContextKey("userID")

func CreateListing(redisClient *redis.Client, pub *queue.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			log.Println("User ID missing in context")
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

		requiresApproval := RequireApproval(r.Context())

		now := time.Now()
		listing.ID = primitive.NewObjectID()
		listing.UserRef = userID
		listing.ApprovedBy = ""
		listing.RequiresApproval = requiresApproval
		listing.CreatedAt = now
		listing.UpdatedAt = now
		if requiresApproval {
			listing.ApprovalStatus = models.StatusPending
		} else {
			listing.ApprovalStatus = models.StatusApproved
		}

		if _, err := config.ListingCollection.InsertOne(r.Context(), listing); err != nil {
			log.Printf("Insert failed: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Failed to create listing")
			return
		}

		go invalidateSearchCache(redisClient)

		if listing.ApprovalStatus == models.StatusPending {
			go func() {
				if err := pub.Publish(context.Background(), queue.KeyListingSubmitted, queue.ListingSubmitted{
					ListingID: listing.ID.Hex(),
					UserRef:   listing.UserRef,
					Name:      listing.Name,
				}); err != nil {
					log.Printf("Failed to publish %s event: %v", queue.KeyListingSubmitted, err)
				}
			}()
		}

		message := "Listing created successfully"
		if requiresApproval {
			message = "Listing created and pending admin approval"
		}
		utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"message": message,
			"listing": listing,
		})
	}
}

func GetListing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid listing ID")
			return
		}

		var listing models.Listing
		err = config.ListingCollection.FindOne(r.Context(), bson.M{"_id": objID}).Decode(&listing)
		if err == mongo.ErrNoDocuments {
			utils.WriteError(w, http.StatusNotFound, "Listing not found!")
			return
		}
		if err != nil {
			log.Printf("Error fetching listing %s: %v", id, err)
			utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		utils.WriteJSON(w, http.StatusOK, listing)
	}
}

// SearchListings serves the public search endpoint. Admin callers (resolved
// from the session cookie and the live admin flag, never from a query
// parameter) see listings of every moderation status; everyone else gets
// only approved listings while the approval policy is active.
func SearchListings(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		restricted := RequireApproval(r.Context()) && !callerIsAdmin(r)

		query := r.URL.Query()
		cacheKey := searchCacheKey(restricted, query)

		cachedData, err := redisClient.Get(r.Context(), cacheKey).Result()
		if err == nil {
			log.Printf("Cache hit for key: %s", cacheKey)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(cachedData))
			return
		}
		if err != redis.Nil {
			log.Printf("Redis GET error for key %s: %v", cacheKey, err)
		}

		filter, findOptions := buildSearchFilter(query, restricted)

		cursor, err := config.ListingCollection.Find(r.Context(), filter, findOptions)
		if err != nil {
			log.Printf("Error searching listings with filter %+v: %v", filter, err)
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

		resultBytes, err := json.Marshal(listings)
		if err != nil {
			log.Printf("Failed to serialize listings: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Failed to encode response")
			return
		}

		if err := redisClient.Set(r.Context(), cacheKey, resultBytes, 10*time.Minute).Err(); err != nil {
			log.Printf("Failed to cache response for key %s: %v", cacheKey, err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write(resultBytes)
	}
}

// buildSearchFilter translates the query string into a Mongo filter plus
// find options. The offer/furnished/parking filters only narrow the result
// set when explicitly "true"; absent or "false" matches both values. A
// restricted caller additionally only sees approved listings.
func buildSearchFilter(query map[string][]string, restricted bool) (bson.M, *options.FindOptions) {
	get := func(key string) string {
		if vs := query[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	filter := bson.M{
		"name": bson.M{"$regex": primitive.Regex{Pattern: get("searchTerm"), Options: "i"}},
	}

	for _, key := range []string{"offer", "furnished", "parking"} {
		if get(key) == "true" {
			filter[key] = true
		} else {
			filter[key] = bson.M{"$in": []bool{false, true}}
		}
	}

	if t := get("type"); t == "sale" || t == "rent" {
		filter["type"] = t
	} else {
		filter["type"] = bson.M{"$in": []string{"sale", "rent"}}
	}

	if restricted {
		filter["approvalStatus"] = models.StatusApproved
	}

	sortField := get("sort")
	if sortField == "" {
		sortField = "createdAt"
	}
	sortDir := -1
	if get("order") == "asc" {
		sortDir = 1
	}

	limit := int64(9)
	if v, err := strconv.ParseInt(get("limit"), 10, 64); err == nil && v > 0 {
		limit = v
	}
	skip := int64(0)
	if v, err := strconv.ParseInt(get("startIndex"), 10, 64); err == nil && v > 0 {
		skip = v
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: sortField, Value: sortDir}}).
		SetLimit(limit).
		SetSkip(skip)

	return filter, findOptions
}

// callerIsAdmin resolves an optional identity from the session cookie and
// checks the live admin flag. Anonymous or stale sessions simply read as
// non-admin.
func callerIsAdmin(r *http.Request) bool {
	cookie, err := r.Cookie(utils.SessionCookie)
	if err != nil || cookie.Value == "" {
		return false
	}
	claims, err := utils.ValidateJWT(cookie.Value)
	if err != nil {
		return false
	}
	objID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return false
	}
	var user models.User
	if err := config.UserCollection.FindOne(r.Context(), bson.M{"_id": objID}).Decode(&user); err != nil {
		return false
	}
	return user.IsAdmin
}

// UpdateListing merges owner-supplied content fields. The owner id and all
// moderation fields are stripped from the payload: content edits never
// change approval state here.
func UpdateListing(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
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

		var existing models.Listing
		err = config.ListingCollection.FindOne(r.Context(), bson.M{"_id": objID}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			utils.WriteError(w, http.StatusNotFound, "Listing not found!")
			return
		}
		if err != nil {
			log.Printf("Error fetching listing %s: %v", listingID, err)
			utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if existing.UserRef != userID {
			log.Printf("User %s attempted to update listing %s owned by %s", userID, listingID, existing.UserRef)
			utils.WriteError(w, http.StatusUnauthorized, "You can only update your own listings!")
			return
		}

		var updateData map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&updateData); err != nil {
			log.Printf("Invalid update data: %v", err)
			utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}

		delete(updateData, "_id")
		delete(updateData, "userRef")
		delete(updateData, "approvalStatus")
		delete(updateData, "approvedBy")
		delete(updateData, "requiresApproval")
		delete(updateData, "createdAt")
		updateData["updatedAt"] = time.Now()

		if t, ok := updateData["type"].(string); ok && t != "sale" && t != "rent" {
			utils.WriteError(w, http.StatusBadRequest, "Listing type must be 'sale' or 'rent'")
			return
		}

		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		var updated models.Listing
		err = config.ListingCollection.FindOneAndUpdate(
			r.Context(), bson.M{"_id": objID}, bson.M{"$set": updateData}, opts,
		).Decode(&updated)
		if err != nil {
			log.Printf("Update failed for listing %s: %v", listingID, err)
			utils.WriteError(w, http.StatusInternalServerError, "Update failed")
			return
		}

		go invalidateSearchCache(redisClient)

		utils.WriteJSON(w, http.StatusOK, updated)
	}
}

func DeleteListing(redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(UserIDKey).(string)
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

		var existing models.Listing
		err = config.ListingCollection.FindOne(r.Context(), bson.M{"_id": objID}).Decode(&existing)
		if err == mongo.ErrNoDocuments {
			utils.WriteError(w, http.StatusNotFound, "Listing not found!")
			return
		}
		if err != nil {
			log.Printf("Error fetching listing %s: %v", listingID, err)
			utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if existing.UserRef != userID {
			log.Printf("User %s attempted to delete listing %s owned by %s", userID, listingID, existing.UserRef)
			utils.WriteError(w, http.StatusUnauthorized, "You can only delete your own listings!")
			return
		}

		if _, err := config.ListingCollection.DeleteOne(r.Context(), bson.M{"_id": objID}); err != nil {
			log.Printf("Delete failed for listing %s: %v", listingID, err)
			utils.WriteError(w, http.StatusInternalServerError, "Delete failed")
			return
		}

		go invalidateSearchCache(redisClient)

		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Listing has been deleted!",
		})
	}
}

package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/nestquest/backend/config"
	"github.com/nestquest/backend/models"
	"github.com/nestquest/backend/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type updateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
	Password string `json:"password"`
}

func GetUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}

		var user models.User
		err = config.UserCollection.FindOne(r.Context(), bson.M{"_id": objID}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			utils.WriteError(w, http.StatusNotFound, "User not found!")
			return
		}
		if err != nil {
			log.Printf("Error fetching user %s: %v", id, err)
			utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		utils.WriteJSON(w, http.StatusOK, user)
	}
}

// UpdateUser applies a profile update. Only the account owner may call it,
// and only the profile fields are writable; a supplied password is
// re-hashed before storage.
func UpdateUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		targetID := mux.Vars(r)["id"]
		if callerID != targetID {
			log.Printf("User %s attempted to update account %s", callerID, targetID)
			utils.WriteError(w, http.StatusUnauthorized, "You can only update your own account!")
			return
		}

		objID, err := primitive.ObjectIDFromHex(targetID)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}

		var req updateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("Error decoding update payload: %v", err)
			utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}

		updates := bson.M{"updatedAt": time.Now()}
		if v := strings.TrimSpace(req.Username); v != "" {
			updates["username"] = v
		}
		if v := strings.ToLower(strings.TrimSpace(req.Email)); v != "" {
			updates["email"] = v
		}
		if req.Avatar != "" {
			updates["avatar"] = req.Avatar
		}
		if req.Password != "" {
			hashed, herr := utils.HashPassword(req.Password)
			if herr != nil {
				log.Printf("Error hashing password: %v", herr)
				utils.WriteError(w, http.StatusInternalServerError, "Failed to update user")
				return
			}
			updates["password"] = hashed
		}

		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		var updated models.User
		err = config.UserCollection.FindOneAndUpdate(
			r.Context(), bson.M{"_id": objID}, bson.M{"$set": updates}, opts,
		).Decode(&updated)
		if err == mongo.ErrNoDocuments {
			utils.WriteError(w, http.StatusNotFound, "User not found!")
			return
		}
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				utils.WriteError(w, http.StatusBadRequest, "Username or email already taken")
				return
			}
			log.Printf("Error updating user %s: %v", targetID, err)
			utils.WriteError(w, http.StatusInternalServerError, "Failed to update user")
			return
		}

		utils.WriteJSON(w, http.StatusOK, updated)
	}
}

// DeleteUser removes the caller's own account and ends the session.
func DeleteUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		targetID := mux.Vars(r)["id"]
		if callerID != targetID {
			log.Printf("User %s attempted to delete account %s", callerID, targetID)
			utils.WriteError(w, http.StatusUnauthorized, "You can only delete your own account!")
			return
		}

		objID, err := primitive.ObjectIDFromHex(targetID)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}

		res, err := config.UserCollection.DeleteOne(r.Context(), bson.M{"_id": objID})
		if err != nil {
			log.Printf("Error deleting user %s: %v", targetID, err)
			utils.WriteError(w, http.StatusInternalServerError, "Failed to delete user")
			return
		}
		if res.DeletedCount == 0 {
			utils.WriteError(w, http.StatusNotFound, "User not found!")
			return
		}

		utils.ClearSessionCookie(w)
		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "User has been deleted!",
		})
	}
}

// GetUserListings returns the caller's own listings, whatever their
// moderation status.
func GetUserListings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID, ok := r.Context().Value(UserIDKey).(string)
		if !ok {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		targetID := mux.Vars(r)["id"]
		if callerID != targetID {
			utils.WriteError(w, http.StatusUnauthorized, "You can only view your own listings!")
			return
		}

		cursor, err := config.ListingCollection.Find(r.Context(), bson.M{"userRef": targetID})
		if err != nil {
			log.Printf("Error fetching listings for user %s: %v", targetID, err)
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

		utils.WriteJSON(w, http.StatusOK, listings)
	}
}

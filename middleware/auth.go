package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/nestquest/backend/config"
	"github.com/nestquest/backend/controllers"
	"github.com/nestquest/backend/models"
	"github.com/nestquest/backend/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequireAuth resolves the caller's identity from the session cookie and
// attaches the user id to the request context.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(utils.SessionCookie)
		if err != nil || cookie.Value == "" {
			log.Printf("Missing session cookie from request %s %s", r.Method, r.URL)
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := utils.ValidateJWT(cookie.Value)
		if err != nil {
			log.Printf("Invalid session token: %v", err)
			utils.WriteError(w, http.StatusForbidden, "Forbidden")
			return
		}

		ctx := context.WithValue(r.Context(), controllers.UserIDKey, claims.UserID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates a route on the live admin flag. It re-fetches the user
// from the store rather than trusting anything baked into the token, so a
// revoked role takes effect on the very next request. Must run after
// RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := r.Context().Value(controllers.UserIDKey).(string)
		if !ok {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized - Authentication required")
			return
		}

		objID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			log.Printf("Malformed user id in session: %s", userID)
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized - Authentication required")
			return
		}

		var user models.User
		if err := config.UserCollection.FindOne(r.Context(), bson.M{"_id": objID}).Decode(&user); err != nil {
			log.Printf("Admin check failed, user %s not found: %v", userID, err)
			utils.WriteError(w, http.StatusNotFound, "User not found")
			return
		}

		if !user.IsAdmin {
			log.Printf("User %s attempted admin route without admin flag", userID)
			utils.WriteError(w, http.StatusForbidden, "Forbidden - Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

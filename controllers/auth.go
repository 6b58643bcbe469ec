package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nestquest/backend/config"
	"github.com/nestquest/backend/models"
	"github.com/nestquest/backend/queue"
	"github.com/nestquest/backend/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type oauthRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo"`
}

func Signup(pub *queue.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("Error decoding signup payload: %v", err)
			utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}

		req.Username = strings.TrimSpace(req.Username)
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Username == "" || req.Email == "" || req.Password == "" {
			utils.WriteError(w, http.StatusBadRequest, "All fields are required")
			return
		}

		hashed, err := utils.HashPassword(req.Password)
		if err != nil {
			log.Printf("Error hashing password: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		now := time.Now()
		user := models.User{
			ID:        primitive.NewObjectID(),
			Username:  req.Username,
			Email:     req.Email,
			Password:  hashed,
			Avatar:    models.DefaultAvatar,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if _, err := config.UserCollection.InsertOne(r.Context(), user); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				log.Printf("Duplicate signup for %s / %s", req.Username, req.Email)
				utils.WriteError(w, http.StatusBadRequest, "Username or email already taken")
				return
			}
			log.Printf("Error inserting user: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		go func() {
			if err := pub.Publish(context.Background(), queue.KeyUserRegistered, queue.UserRegistered{
				UserID:   user.ID.Hex(),
				Username: user.Username,
				Email:    user.Email,
			}); err != nil {
				log.Printf("Failed to publish %s event: %v", queue.KeyUserRegistered, err)
			}
		}()

		utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"message": "User created successfully!",
		})
	}
}

func Signin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("Error decoding signin payload: %v", err)
			utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		var user models.User
		err := config.UserCollection.FindOne(r.Context(), bson.M{"email": email}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			log.Printf("Signin for unknown email: %s", email)
			utils.WriteError(w, http.StatusNotFound, "User not found!")
			return
		}
		if err != nil {
			log.Printf("Error looking up user %s: %v", email, err)
			utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if !utils.CheckPasswordHash(req.Password, user.Password) {
			log.Printf("Wrong password for user: %s", email)
			utils.WriteError(w, http.StatusUnauthorized, "Wrong credentials!")
			return
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

// Google handles the OAuth hand-off from the SPA: the provider exchange
// happens client-side, so this endpoint only receives a verified profile.
// Unknown emails are auto-provisioned with a throwaway password.
func Google(pub *queue.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req oauthRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			log.Printf("Error decoding oauth payload: %v", err)
			utils.WriteError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" {
			utils.WriteError(w, http.StatusBadRequest, "Email is required")
			return
		}

		var user models.User
		err := config.UserCollection.FindOne(r.Context(), bson.M{"email": email}).Decode(&user)
		if err != nil && err != mongo.ErrNoDocuments {
			log.Printf("Error looking up oauth user %s: %v", email, err)
			utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if err == mongo.ErrNoDocuments {
			// No password is supplied on an OAuth signup, so store an
			// unguessable one; the account stays reachable via OAuth only
			// until the user sets a password through profile update.
			hashed, herr := utils.HashPassword(uuid.NewString())
			if herr != nil {
				log.Printf("Error hashing generated password: %v", herr)
				utils.WriteError(w, http.StatusInternalServerError, "Failed to create user")
				return
			}

			avatar := req.Photo
			if avatar == "" {
				avatar = models.DefaultAvatar
			}

			now := time.Now()
			user = models.User{
				ID:        primitive.NewObjectID(),
				Username:  oauthUsername(req.Name),
				Email:     email,
				Password:  hashed,
				Avatar:    avatar,
				CreatedAt: now,
				UpdatedAt: now,
			}

			if _, ierr := config.UserCollection.InsertOne(r.Context(), user); ierr != nil {
				log.Printf("Error provisioning oauth user: %v", ierr)
				utils.WriteError(w, http.StatusInternalServerError, "Failed to create user")
				return
			}

			registered := queue.UserRegistered{
				UserID:   user.ID.Hex(),
				Username: user.Username,
				Email:    user.Email,
			}
			go func() {
				if err := pub.Publish(context.Background(), queue.KeyUserRegistered, registered); err != nil {
					log.Printf("Failed to publish %s event: %v", queue.KeyUserRegistered, err)
				}
			}()
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

// oauthUsername derives a unique-enough username from the provider display
// name; the random suffix avoids collisions with existing local accounts.
func oauthUsername(name string) string {
	base := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
	if base == "" {
		base = "user"
	}
	return base + strings.ReplaceAll(uuid.NewString(), "-", "")[:4]
}

func Signout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.ClearSessionCookie(w)
		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "User has been logged out!",
		})
	}
}

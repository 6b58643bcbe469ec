package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/nestquest/backend/config"
	"github.com/nestquest/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// Profile reads are public: no session cookie is needed, and the response
// never carries the credential. Mutating user routes stay behind the auth
// gate.
func TestUserRoutes_PublicReadGatedMutations(t *testing.T) {
	userID := primitive.NewObjectID()

	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("anonymous profile read reaches the handler", func(mt *mtest.T) {
		config.UserCollection = mt.Coll
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "app.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: userID},
			{Key: "username", Value: "alice"},
			{Key: "email", Value: "alice@example.com"},
			{Key: "password", Value: "$2a$10$irrelevant"},
			{Key: "avatar", Value: models.DefaultAvatar},
			{Key: "isAdmin", Value: false},
		}))

		router := mux.NewRouter()
		Routes(router, nil, nil, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/user/"+userID.Hex(), nil)
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			mt.Fatalf("expected 200, got %d (body %s)", rec.Code, rec.Body.String())
		}

		var body map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			mt.Fatalf("decode body: %v", err)
		}
		if body["username"] != "alice" {
			mt.Fatalf("unexpected body: %v", body)
		}
		if _, leaked := body["password"]; leaked {
			mt.Fatal("password field leaked in response")
		}
	})

	mt.Run("anonymous profile update is rejected by the auth gate", func(mt *mtest.T) {
		config.UserCollection = mt.Coll

		router := mux.NewRouter()
		Routes(router, nil, nil, nil)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/user/update/"+userID.Hex(), nil)
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			mt.Fatalf("expected 401, got %d (body %s)", rec.Code, rec.Body.String())
		}
	})
}

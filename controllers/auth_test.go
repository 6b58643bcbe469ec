package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nestquest/backend/config"
	"github.com/nestquest/backend/models"
	"github.com/nestquest/backend/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func userDoc(id primitive.ObjectID, email, passwordHash string, isAdmin bool) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "username", Value: "alice"},
		{Key: "email", Value: email},
		{Key: "password", Value: passwordHash},
		{Key: "avatar", Value: models.DefaultAvatar},
		{Key: "isAdmin", Value: isAdmin},
	}
}

func TestSignin(t *testing.T) {
	utils.InitJWT("test-secret")

	hash, err := utils.HashPassword("secret123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	userID := primitive.NewObjectID()

	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success sets session cookie and strips password", func(mt *mtest.T) {
		config.UserCollection = mt.Coll
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "app.users", mtest.FirstBatch,
			userDoc(userID, "alice@example.com", hash, false)))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/auth/signin",
			strings.NewReader(`{"email":"alice@example.com","password":"secret123"}`))
		Signin()(rec, req)

		if rec.Code != http.StatusOK {
			mt.Fatalf("expected 200, got %d (body %s)", rec.Code, rec.Body.String())
		}

		var gotCookie bool
		for _, c := range rec.Result().Cookies() {
			if c.Name == utils.SessionCookie && c.Value != "" && c.HttpOnly {
				gotCookie = true
			}
		}
		if !gotCookie {
			mt.Fatal("expected an HTTP-only session cookie")
		}

		var body map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			mt.Fatalf("decode body: %v", err)
		}
		if _, leaked := body["password"]; leaked {
			mt.Fatal("password field leaked in response")
		}
		if body["email"] != "alice@example.com" {
			mt.Fatalf("unexpected body: %v", body)
		}
	})

	mt.Run("wrong password", func(mt *mtest.T) {
		config.UserCollection = mt.Coll
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "app.users", mtest.FirstBatch,
			userDoc(userID, "alice@example.com", hash, false)))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/auth/signin",
			strings.NewReader(`{"email":"alice@example.com","password":"wrong"}`))
		Signin()(rec, req)

		if rec.Code != http.StatusUnauthorized {
			mt.Fatalf("expected 401, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Wrong credentials!") {
			mt.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})

	mt.Run("unknown email", func(mt *mtest.T) {
		config.UserCollection = mt.Coll
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "app.users", mtest.FirstBatch))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/auth/signin",
			strings.NewReader(`{"email":"ghost@example.com","password":"secret123"}`))
		Signin()(rec, req)

		if rec.Code != http.StatusNotFound {
			mt.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	mt.Run("bad payload", func(mt *mtest.T) {
		config.UserCollection = mt.Coll

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/auth/signin", strings.NewReader(`not json`))
		Signin()(rec, req)

		if rec.Code != http.StatusBadRequest {
			mt.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestGoogle_ExistingUser(t *testing.T) {
	utils.InitJWT("test-secret")

	hash, _ := utils.HashPassword("irrelevant")
	userID := primitive.NewObjectID()

	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("existing email signs in without credential check", func(mt *mtest.T) {
		config.UserCollection = mt.Coll
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "app.users", mtest.FirstBatch,
			userDoc(userID, "alice@example.com", hash, false)))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/auth/google",
			strings.NewReader(`{"name":"Alice Doe","email":"alice@example.com","photo":"https://p/img.png"}`))
		Google(nil)(rec, req)

		if rec.Code != http.StatusOK {
			mt.Fatalf("expected 200, got %d (body %s)", rec.Code, rec.Body.String())
		}
		var gotCookie bool
		for _, c := range rec.Result().Cookies() {
			if c.Name == utils.SessionCookie && c.Value != "" {
				gotCookie = true
			}
		}
		if !gotCookie {
			mt.Fatal("expected a session cookie")
		}
	})
}

func TestOAuthUsername(t *testing.T) {
	name := oauthUsername("Alice Van Der Berg")
	if !strings.HasPrefix(name, "alicevanderberg") {
		t.Fatalf("unexpected base: %s", name)
	}
	if len(name) != len("alicevanderberg")+4 {
		t.Fatalf("expected 4-char suffix: %s", name)
	}
	if oauthUsername("Alice") == oauthUsername("Alice") {
		t.Fatal("expected random suffixes to differ")
	}
}

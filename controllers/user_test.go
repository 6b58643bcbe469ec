package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/nestquest/backend/utils"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// A session only grants writes to its own account: update and delete with a
// mismatched target id are rejected before the store is ever touched.
func TestUserMutations_RejectOtherAccounts(t *testing.T) {
	callerID := primitive.NewObjectID().Hex()
	targetID := primitive.NewObjectID().Hex()

	tests := []struct {
		name        string
		method      string
		handler     http.HandlerFunc
		wantMessage string
	}{
		{
			name:        "update another account",
			method:      "POST",
			handler:     UpdateUser(),
			wantMessage: "You can only update your own account!",
		},
		{
			name:        "delete another account",
			method:      "DELETE",
			handler:     DeleteUser(),
			wantMessage: "You can only delete your own account!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, "/api/user/x/"+targetID,
				strings.NewReader(`{"username":"mallory"}`))
			req = mux.SetURLVars(req, map[string]string{"id": targetID})
			req = req.WithContext(context.WithValue(req.Context(), UserIDKey, callerID))

			tt.handler(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantMessage)
		})
	}
}

// Both handlers bail out with the generic message when the auth middleware
// never placed an identity in the context.
func TestUserMutations_RequireIdentity(t *testing.T) {
	targetID := primitive.NewObjectID().Hex()

	for name, handler := range map[string]http.HandlerFunc{
		"update":   UpdateUser(),
		"delete":   DeleteUser(),
		"listings": GetUserListings(),
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/user/x/"+targetID, nil)
			req = mux.SetURLVars(req, map[string]string{"id": targetID})

			handler(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "Unauthorized")
		})
	}
}

// The rejection must also wear the standard error envelope.
func TestUserMutations_EnvelopeOnRejection(t *testing.T) {
	callerID := primitive.NewObjectID().Hex()
	targetID := primitive.NewObjectID().Hex()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/user/update/"+targetID, nil)
	req = mux.SetURLVars(req, map[string]string{"id": targetID})
	req = req.WithContext(context.WithValue(req.Context(), UserIDKey, callerID))

	UpdateUser()(rec, req)

	var env utils.ErrorEnvelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, http.StatusUnauthorized, env.StatusCode)
}

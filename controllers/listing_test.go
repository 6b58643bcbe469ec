package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/nestquest/backend/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// A valid session does not grant writes to someone else's listing: the
// handler loads the document, sees a foreign userRef and refuses before any
// write is issued.
func TestListingMutations_RejectNonOwner(t *testing.T) {
	ownerID := primitive.NewObjectID().Hex()
	intruderID := primitive.NewObjectID().Hex()
	listingID := primitive.NewObjectID()

	listingDoc := bson.D{
		{Key: "_id", Value: listingID},
		{Key: "name", Value: "Sunny flat"},
		{Key: "type", Value: "rent"},
		{Key: "userRef", Value: ownerID},
		{Key: "approvalStatus", Value: "approved"},
	}

	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("update by non-owner", func(mt *mtest.T) {
		config.ListingCollection = mt.Coll
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "app.listings", mtest.FirstBatch, listingDoc))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/listing/update/"+listingID.Hex(),
			strings.NewReader(`{"name":"hijacked"}`))
		req = mux.SetURLVars(req, map[string]string{"id": listingID.Hex()})
		req = req.WithContext(context.WithValue(req.Context(), UserIDKey, intruderID))

		UpdateListing(unreachableRedis())(rec, req)

		if rec.Code != http.StatusUnauthorized {
			mt.Fatalf("expected 401, got %d (body %s)", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "You can only update your own listings!") {
			mt.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})

	mt.Run("delete by non-owner", func(mt *mtest.T) {
		config.ListingCollection = mt.Coll
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "app.listings", mtest.FirstBatch, listingDoc))

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/api/listing/delete/"+listingID.Hex(), nil)
		req = mux.SetURLVars(req, map[string]string{"id": listingID.Hex()})
		req = req.WithContext(context.WithValue(req.Context(), UserIDKey, intruderID))

		DeleteListing(unreachableRedis())(rec, req)

		if rec.Code != http.StatusUnauthorized {
			mt.Fatalf("expected 401, got %d (body %s)", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "You can only delete your own listings!") {
			mt.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})

	mt.Run("owner passes the ownership gate", func(mt *mtest.T) {
		config.ListingCollection = mt.Coll
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "app.listings", mtest.FirstBatch, listingDoc),
			bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: listingDoc}},
		)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/api/listing/update/"+listingID.Hex(),
			strings.NewReader(`{"name":"Sunny flat refreshed"}`))
		req = mux.SetURLVars(req, map[string]string{"id": listingID.Hex()})
		req = req.WithContext(context.WithValue(req.Context(), UserIDKey, ownerID))

		UpdateListing(unreachableRedis())(rec, req)

		if rec.Code != http.StatusOK {
			mt.Fatalf("expected 200, got %d (body %s)", rec.Code, rec.Body.String())
		}
	})
}

package controllers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harborview/property_market_system/controllers"
	"github.com/harborview/property_market_system/stats"
	"github.com/harborview/property_market_system/store/memstore"
)

func putProperty(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	stores := memstore.New()
	handler := controllers.UpdateProperty(stores.Properties, stats.NewRecalculator(stores.Properties, stores.Owners), nil)

	id := primitive.NewObjectID().Hex()
	r := httptest.NewRequest(http.MethodPut, "/api/properties/"+id, bytes.NewReader([]byte(body)))
	r = mux.SetURLVars(r, map[string]string{"id": id})
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func TestUpdatePropertyRejectsUnknownStatus(t *testing.T) {
	w := putProperty(t, `{"status": "lease"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid property status")
	assert.NotContains(t, w.Body.String(), "sold")
}

func TestUpdatePropertyRejectsSoldStatus(t *testing.T) {
	w := putProperty(t, `{"status": "sold"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Status cannot be set to sold by edit")
}

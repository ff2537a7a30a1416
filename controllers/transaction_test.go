package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborview/property_market_system/availability"
	"github.com/harborview/property_market_system/controllers"
	"github.com/harborview/property_market_system/feedback"
	"github.com/harborview/property_market_system/finalize"
	"github.com/harborview/property_market_system/models"
	"github.com/harborview/property_market_system/notify"
	"github.com/harborview/property_market_system/sequence"
	"github.com/harborview/property_market_system/stats"
	"github.com/harborview/property_market_system/store/memstore"
)

func newTransactionHandler(t *testing.T) (http.HandlerFunc, *memstore.Stores, *models.Property) {
	t.Helper()
	stores := memstore.New()

	owner := &models.Owner{OwnerID: "OWN-1", Name: "Morgan", Phone: "555-0100", CreatedAt: time.Now()}
	require.NoError(t, stores.Owners.Insert(context.Background(), owner))

	property := &models.Property{
		Title:     "Sunset Villa",
		Type:      "Villa",
		Status:    models.StatusBoth,
		Price:     100000,
		OwnerID:   owner.ID,
		CreatedAt: time.Now(),
	}
	require.NoError(t, stores.Properties.Insert(context.Background(), property))

	finalizer := finalize.New(
		stores.Transactions,
		stores.Properties,
		stores.Users,
		sequence.NewAllocator(stores.Sequences),
		availability.NewGuard(stores.Properties),
		stats.NewRecalculator(stores.Properties, stores.Owners),
		feedback.NewScheduler(stores.Reviews, stores.Feedback),
		notify.NewService(stores.Notifications, nil),
		nil,
	)

	return controllers.CreateTransaction(finalizer), stores, property
}

func postTransaction(t *testing.T, handler http.HandlerFunc, req finalize.Request) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func TestCreateTransactionReturnsAdvisoryFlags(t *testing.T) {
	handler, _, property := newTransactionHandler(t)

	w := postTransaction(t, handler, finalize.Request{
		PaymentReference: "PAY-1",
		PayerName:        "Alice",
		PayerPhone:       "555-0200",
		Amount:           100000,
		PurchaseType:     models.PurchaseBuy,
		PropertyID:       property.ID.Hex(),
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var result finalize.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.PropertyMarkedAsSold)
	assert.True(t, result.OwnerStatsUpdated)
	assert.True(t, result.FeedbackScheduled)
	assert.True(t, result.Notified)
	assert.Equal(t, "TXN-1", result.Transaction.TransactionID)
}

func TestCreateTransactionRejectsInvalidAmount(t *testing.T) {
	handler, stores, property := newTransactionHandler(t)

	w := postTransaction(t, handler, finalize.Request{
		PaymentReference: "PAY-1",
		PayerName:        "Alice",
		PayerPhone:       "555-0200",
		Amount:           0,
		PurchaseType:     models.PurchaseBuy,
		PropertyID:       property.ID.Hex(),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	transactions, err := stores.Transactions.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestCreateTransactionConflictOnSoldProperty(t *testing.T) {
	handler, _, property := newTransactionHandler(t)

	first := postTransaction(t, handler, finalize.Request{
		PaymentReference: "PAY-1",
		PayerName:        "Alice",
		PayerPhone:       "555-0200",
		Amount:           100000,
		PurchaseType:     models.PurchaseBuy,
		PropertyID:       property.ID.Hex(),
	})
	require.Equal(t, http.StatusCreated, first.Code)

	second := postTransaction(t, handler, finalize.Request{
		PaymentReference: "PAY-2",
		PayerName:        "Bob",
		PayerPhone:       "555-0300",
		Amount:           100000,
		PurchaseType:     models.PurchaseBuy,
		PropertyID:       property.ID.Hex(),
	})
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestCreateTransactionMalformedBody(t *testing.T) {
	handler, _, _ := newTransactionHandler(t)

	r := httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	handler(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

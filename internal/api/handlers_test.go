package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cask-indexer/internal/config"
	"github.com/cask-indexer/internal/logging"
	"github.com/cask-indexer/internal/models"
	"github.com/cask-indexer/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	log := logging.NewLogger(logging.LevelFatal, logging.FormatText)
	srv := NewServer(&config.ServerConfig{Host: "127.0.0.1", Port: "0"}, store, log)
	return srv, store
}

func doRequest(t *testing.T, srv *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestGetUser(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	user := models.NewUser("0x1111111111111111111111111111111111111111", 1650000000)
	user.Balance = decimal.RequireFromString("42.5")
	require.NoError(t, store.PutUser(ctx, user))

	// Mixed-case path address resolves to the same entity.
	rec := doRequest(t, srv, http.MethodGet, "/api/users/0x1111111111111111111111111111111111111111")
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, user.ID, got.ID)
	assert.True(t, got.Balance.Equal(decimal.RequireFromString("42.5")))
}

func TestGetUserNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/users/0x2222222222222222222222222222222222222222")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeNotFound, body.Error.Code)
}

func TestGetUserInvalidAddress(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/users/not-an-address")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPlanByProviderAndID(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	provider := "0x2222222222222222222222222222222222222222"
	plan := models.NewSubscriptionPlan(provider, 10)
	plan.ActiveSubscriptionCount = 3
	require.NoError(t, store.PutPlan(ctx, plan))

	rec := doRequest(t, srv, http.MethodGet, "/api/providers/"+provider+"/plans/10")
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.SubscriptionPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, uint32(10), got.PlanID)
	assert.Equal(t, int64(3), got.ActiveSubscriptionCount)

	rec = doRequest(t, srv, http.MethodGet, "/api/providers/"+provider+"/plans/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSubscriptionAcceptsDecimalAndHex(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	sub := models.NewSubscription("0x2a")
	sub.CurrentOwner = "0x1111111111111111111111111111111111111111"
	require.NoError(t, store.PutSubscription(ctx, sub))

	for _, path := range []string{"/api/subscriptions/42", "/api/subscriptions/0x2a"} {
		rec := doRequest(t, srv, http.MethodGet, path)
		require.Equal(t, http.StatusOK, rec.Code, path)

		var got models.Subscription
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "0x2a", got.ID)
	}

	rec := doRequest(t, srv, http.MethodGet, "/api/subscriptions/nope")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDCAValidatesHashID(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	id := "0x00000000000000000000000000000000000000000000000000000000000000d1"
	require.NoError(t, store.PutDCA(ctx, models.NewDCA(id)))

	rec := doRequest(t, srv, http.MethodGet, "/api/dcas/"+id)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/dcas/0x1234")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProtocolDefaultsWhenEmpty(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/protocol")
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Cask
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "1", got.ID)
}

func TestGetMetricByDate(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	metric := models.NewMetric("subscription.created", 950400)
	metric.Value = decimal.NewFromInt(7)
	require.NoError(t, store.PutMetric(ctx, metric))

	rec := doRequest(t, srv, http.MethodGet, "/api/metrics/subscription.created?date=1000000")
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Metric
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Value.Equal(decimal.NewFromInt(7)))

	rec = doRequest(t, srv, http.MethodGet, "/api/metrics/subscription.created?date=86400000")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/metrics/subscription.created?date=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDiscount(t *testing.T) {
	srv, store := newTestServer(t)
	ctx := context.Background()

	provider := "0x2222222222222222222222222222222222222222"
	discountID := "0x000000000000000000000000000000000000000000000000000000000000dddd"
	discount := models.NewDiscount(provider, discountID)
	discount.Redemptions = 2
	require.NoError(t, store.PutDiscount(ctx, discount))

	rec := doRequest(t, srv, http.MethodGet, "/api/providers/"+provider+"/discounts/"+discountID)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Discount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(2), got.Redemptions)
}

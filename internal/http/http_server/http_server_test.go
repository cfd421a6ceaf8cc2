package http_server

import (
	"artmarket/internal/payments/stripe_client"
	"artmarket/internal/services/auction"
	"artmarket/internal/services/checkout"
	"artmarket/internal/services/settlement"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCheckout struct{}

func (stubCheckout) CreateSession(context.Context, string, string, string) (*checkout.SessionDTO, error) {
	return &checkout.SessionDTO{ID: "cs_1", URL: "https://checkout/cs_1"}, nil
}

type stubAuction struct{}

func (stubAuction) PlaceBid(context.Context, string, string, float64) error { return nil }

func (stubAuction) GetAuction(context.Context, string) (*auction.AuctionDTO, error) {
	return &auction.AuctionDTO{ID: "auc1"}, nil
}

type stubSettlement struct{}

func (stubSettlement) Settle(context.Context, settlement.Settlement) error { return nil }

func testRouter(health map[string]Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return newRouter(Services{
		Checkout:   stubCheckout{},
		Auction:    stubAuction{},
		Settlement: stubSettlement{},
		Events:     stripe_client.New("sk_test_123", "whsec_test"),
		Health:     health,
	})
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	r := testRouter(nil)

	for _, path := range []string{"/api/create-checkout", "/api/place-bid", "/api/webhook"} {
		for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
			assert.Equal(t, http.StatusMethodNotAllowed, w.Code, "%s %s", method, path)
			assert.Equal(t, "Method Not Allowed", w.Body.String())
		}
	}
}

func TestRoutes_Wired(t *testing.T) {
	r := testRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/create-checkout",
		strings.NewReader(`{"artworkId":"art_1","buyerEmail":"b@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"cs_1","url":"https://checkout/cs_1"}`, w.Body.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/place-bid",
		strings.NewReader(`{"auctionId":"auc1","bidAmount":51,"userId":"u1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auctions/auc1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID(t *testing.T) {
	r := testRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	_, err := uuid.Parse(w.Header().Get(requestIDHeader))
	require.NoError(t, err)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "trace-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "trace-123", w.Header().Get(requestIDHeader))
}

func TestHealth(t *testing.T) {
	ok := PingerFunc(func(context.Context) error { return nil })
	down := PingerFunc(func(context.Context) error { return errors.New("dial tcp: connection refused") })

	w := httptest.NewRecorder()
	testRouter(map[string]Pinger{"postgres": ok, "redis": ok}).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	testRouter(map[string]Pinger{"postgres": ok, "redis": down}).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"degraded","redis":"dial tcp: connection refused"}`, w.Body.String())
}

package checkouthandler

import (
	"artmarket/internal/services/checkout"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCheckoutService struct {
	mock.Mock
}

func (m *mockCheckoutService) CreateSession(ctx context.Context, artworkID, buyerEmail, origin string) (*checkout.SessionDTO, error) {
	args := m.Called(ctx, artworkID, buyerEmail, origin)
	out, _ := args.Get(0).(*checkout.SessionDTO)
	return out, args.Error(1)
}

func TestCreateCheckout(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		body           string
		origin         string
		mockSetup      func(m *mockCheckoutService)
		expectedStatus int
		expectedBody   map[string]any
	}{
		{
			name:   "success",
			body:   `{"artworkId":"art_1","buyerEmail":"buyer@example.com"}`,
			origin: "https://shop.example.com",
			mockSetup: func(m *mockCheckoutService) {
				m.On("CreateSession", mock.Anything, "art_1", "buyer@example.com", "https://shop.example.com").
					Return(&checkout.SessionDTO{ID: "cs_1", URL: "https://checkout/cs_1"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   map[string]any{"id": "cs_1", "url": "https://checkout/cs_1"},
		},
		{
			name:           "invalid_json",
			body:           `{invalid json}`,
			mockSetup:      func(m *mockCheckoutService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing_buyer_email",
			body:           `{"artworkId":"art_1"}`,
			mockSetup:      func(m *mockCheckoutService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "artwork_not_found",
			body: `{"artworkId":"art_x","buyerEmail":"buyer@example.com"}`,
			mockSetup: func(m *mockCheckoutService) {
				m.On("CreateSession", mock.Anything, "art_x", "buyer@example.com", "").
					Return(nil, fmt.Errorf("%w: art_x", checkout.ErrArtworkNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   map[string]any{"error": "artwork not found: art_x"},
		},
		{
			name: "artwork_sold",
			body: `{"artworkId":"art_1","buyerEmail":"buyer@example.com"}`,
			mockSetup: func(m *mockCheckoutService) {
				m.On("CreateSession", mock.Anything, "art_1", "buyer@example.com", "").
					Return(nil, checkout.ErrArtworkSold)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "gateway_failure",
			body: `{"artworkId":"art_1","buyerEmail":"buyer@example.com"}`,
			mockSetup: func(m *mockCheckoutService) {
				m.On("CreateSession", mock.Anything, "art_1", "buyer@example.com", "").
					Return(nil, errors.New("create checkout session: card declined"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   map[string]any{"error": "create checkout session: card declined"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockCheckoutService{}
			tt.mockSetup(svc)

			router := gin.New()
			New(svc).Register(router)

			req := httptest.NewRequest(http.MethodPost, "/api/create-checkout", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != nil {
				var got map[string]any
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, tt.expectedBody, got)
			}
			svc.AssertExpectations(t)
		})
	}
}

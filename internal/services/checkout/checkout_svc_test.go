package checkout

import (
	"artmarket/internal/payments/stripe_client"
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateCheckoutSession(ctx context.Context, req stripe_client.CheckoutRequest) (*stripe_client.CheckoutSession, error) {
	args := m.Called(ctx, req)
	s, _ := args.Get(0).(*stripe_client.CheckoutSession)
	return s, args.Error(1)
}

var listingColumns = []string{"id", "title", "price", "image", "status", "artist_id", "stripe_account_id", "membership_tier"}

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name        string
		price       float64
		tier        string
		wantUnit    int64
		wantFee     int64
		origin      string
		wantSuccess string
	}{
		{
			name: "professional_100", price: 100, tier: "professional",
			wantUnit: 10000, wantFee: 2000,
			origin: "https://shop.example.com", wantSuccess: "https://shop.example.com/success.html?session_id={CHECKOUT_SESSION_ID}",
		},
		{
			name: "featured_250", price: 250, tier: "featured",
			wantUnit: 25000, wantFee: 3750,
			origin: "https://shop.example.com/", wantSuccess: "https://shop.example.com/success.html?session_id={CHECKOUT_SESSION_ID}",
		},
		{
			name: "starter_fractional", price: 19.99, tier: "starter",
			wantUnit: 1999, wantFee: 500,
			origin: "", wantSuccess: "http://localhost:8085/success.html?session_id={CHECKOUT_SESSION_ID}",
		},
		{
			name: "unknown_tier_charged_as_starter", price: 40, tier: "",
			wantUnit: 4000, wantFee: 1000,
			origin: "", wantSuccess: "http://localhost:8085/success.html?session_id={CHECKOUT_SESSION_ID}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, dbMock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			dbMock.ExpectQuery("FROM artworks a").
				WithArgs("art_1").
				WillReturnRows(sqlmock.NewRows(listingColumns).
					AddRow("art_1", "Harbour at Dusk", tt.price, "https://cdn/h.jpg", "available", "artist_7", "acct_7", tt.tier))

			gw := &mockGateway{}
			gw.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(r stripe_client.CheckoutRequest) bool {
				return r.UnitAmount == tt.wantUnit &&
					r.ApplicationFee == tt.wantFee &&
					r.DestinationAccount == "acct_7" &&
					r.ArtworkID == "art_1" &&
					r.ArtistID == "artist_7" &&
					r.BuyerEmail == "buyer@example.com" &&
					r.Currency == "usd" &&
					r.ImageURL == "https://cdn/h.jpg" &&
					r.SuccessURL == tt.wantSuccess
			})).Return(&stripe_client.CheckoutSession{ID: "cs_1", URL: "https://checkout/cs_1"}, nil)

			svc := NewCheckoutService(db, gw, "usd", "http://localhost:8085")
			out, err := svc.CreateSession(context.Background(), "art_1", "buyer@example.com", tt.origin)
			require.NoError(t, err)
			assert.Equal(t, &SessionDTO{ID: "cs_1", URL: "https://checkout/cs_1"}, out)

			gw.AssertExpectations(t)
			require.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

func TestCreateSession_NotFound(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbMock.ExpectQuery("FROM artworks a").WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(listingColumns))

	gw := &mockGateway{}
	svc := NewCheckoutService(db, gw, "usd", "http://localhost:8085")

	_, err = svc.CreateSession(context.Background(), "missing", "buyer@example.com", "")
	require.ErrorIs(t, err, ErrArtworkNotFound)
	gw.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
}

func TestCreateSession_Sold(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbMock.ExpectQuery("FROM artworks a").WithArgs("art_1").
		WillReturnRows(sqlmock.NewRows(listingColumns).
			AddRow("art_1", "Harbour", 100.0, "", "sold", "artist_7", "acct_7", "starter"))

	gw := &mockGateway{}
	svc := NewCheckoutService(db, gw, "usd", "http://localhost:8085")

	_, err = svc.CreateSession(context.Background(), "art_1", "buyer@example.com", "")
	require.ErrorIs(t, err, ErrArtworkSold)
	gw.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything)
}

func TestCreateSession_StoreError(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbMock.ExpectQuery("FROM artworks a").WillReturnError(errors.New("connection reset"))

	svc := NewCheckoutService(db, &mockGateway{}, "usd", "http://localhost:8085")
	_, err = svc.CreateSession(context.Background(), "art_1", "buyer@example.com", "")
	require.ErrorContains(t, err, "connection reset")
	assert.False(t, errors.Is(err, ErrArtworkNotFound))
}

func TestCreateSession_GatewayError(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbMock.ExpectQuery("FROM artworks a").WithArgs("art_1").
		WillReturnRows(sqlmock.NewRows(listingColumns).
			AddRow("art_1", "Harbour", 100.0, "", "available", "artist_7", "", "starter"))

	gw := &mockGateway{}
	gw.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Return(nil, errors.New("No such destination"))

	svc := NewCheckoutService(db, gw, "usd", "http://localhost:8085")
	_, err = svc.CreateSession(context.Background(), "art_1", "buyer@example.com", "")
	require.ErrorContains(t, err, "No such destination")
}

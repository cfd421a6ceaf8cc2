package checkout

import (
	"artmarket/internal/payments/stripe_client"
	"artmarket/internal/services/commission"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	StatusAvailable = "available"
	StatusSold      = "sold"
)

var (
	ErrArtworkNotFound = errors.New("artwork not found")
	ErrArtworkSold     = errors.New("artwork already sold")
)

type SessionDTO struct {
	ID  string `json:"id"  example:"cs_test_a1b2c3"`
	URL string `json:"url" example:"https://checkout.stripe.com/c/pay/cs_test_a1b2c3"`
} // @name CheckoutSession

// Gateway is the part of the payment provider the checkout flow needs.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req stripe_client.CheckoutRequest) (*stripe_client.CheckoutSession, error)
}

type ICheckoutService interface {
	// CreateSession starts a hosted checkout for one artwork. origin is the
	// storefront base URL used for the success and cancel redirects; an empty
	// origin falls back to the configured public URL.
	CreateSession(ctx context.Context, artworkID, buyerEmail, origin string) (*SessionDTO, error)
}

type checkoutService struct {
	db       *sql.DB
	gateway  Gateway
	currency string
	baseURL  string
}

func NewCheckoutService(db *sql.DB, gateway Gateway, currency, baseURL string) ICheckoutService {
	return &checkoutService{
		db:       db,
		gateway:  gateway,
		currency: currency,
		baseURL:  baseURL,
	}
}

type listing struct {
	id            string
	title         string
	price         float64
	image         string
	status        string
	artistID      string
	stripeAccount string
	tier          string
}

func (svc *checkoutService) CreateSession(ctx context.Context, artworkID, buyerEmail, origin string) (*SessionDTO, error) {
	art, err := svc.loadListing(ctx, artworkID)
	if err != nil {
		return nil, err
	}
	if art.status == StatusSold {
		return nil, ErrArtworkSold
	}

	split := commission.Compute(art.price, art.tier)

	base := strings.TrimRight(origin, "/")
	if base == "" {
		base = strings.TrimRight(svc.baseURL, "/")
	}

	s, err := svc.gateway.CreateCheckoutSession(ctx, stripe_client.CheckoutRequest{
		ArtworkID:          art.id,
		ArtistID:           art.artistID,
		Title:              art.title,
		ImageURL:           art.image,
		Currency:           svc.currency,
		UnitAmount:         split.PriceMinor,
		ApplicationFee:     split.PlatformFee,
		DestinationAccount: art.stripeAccount,
		BuyerEmail:         buyerEmail,
		SuccessURL:         base + "/success.html?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:          base + "/store.html",
	})
	if err != nil {
		zap.L().Error("checkout_session_failed", zap.String("artwork_id", artworkID), zap.Error(err))
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	zap.L().Info("checkout_session_created",
		zap.String("artwork_id", art.id),
		zap.String("session_id", s.ID),
		zap.String("tier", art.tier),
		zap.Int64("price_minor", split.PriceMinor),
		zap.Int64("platform_fee", split.PlatformFee),
	)
	return &SessionDTO{ID: s.ID, URL: s.URL}, nil
}

func (svc *checkoutService) loadListing(ctx context.Context, artworkID string) (*listing, error) {
	const q = `SELECT a.id, a.title, a.price, coalesce(a.images[1], ''), a.status, a.artist_id,
                      coalesce(u.stripe_account_id, ''), coalesce(u.membership_tier, '')
                 FROM artworks a
                 JOIN users u ON u.id = a.artist_id
                WHERE a.id = $1`

	l := &listing{}
	err := svc.db.QueryRowContext(ctx, q, artworkID).Scan(
		&l.id, &l.title, &l.price, &l.image, &l.status, &l.artistID,
		&l.stripeAccount, &l.tier,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrArtworkNotFound, artworkID)
		}
		return nil, fmt.Errorf("load artwork: %w", err)
	}
	return l, nil
}

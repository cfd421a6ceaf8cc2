package stripe_client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
)

const (
	MetadataArtworkID = "artworkId"
	MetadataType      = "type"

	purchaseTypeStore = "store_purchase"

	EventCheckoutSessionCompleted = string(stripe.EventTypeCheckoutSessionCompleted)
)

var ErrInvalidEvent = errors.New("invalid webhook event")

// CheckoutRequest describes a single-artwork checkout with a split payment:
// ApplicationFee stays with the platform, the rest of UnitAmount is
// transferred to DestinationAccount.
type CheckoutRequest struct {
	ArtworkID          string
	ArtistID           string
	Title              string
	ImageURL           string
	Currency           string
	UnitAmount         int64
	ApplicationFee     int64
	DestinationAccount string
	BuyerEmail         string
	SuccessURL         string
	CancelURL          string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// Event is the verified subset of a Stripe webhook event the service acts on.
type Event struct {
	ID   string
	Type string
	// set only for checkout.session.completed
	Session *CompletedSession
}

type CompletedSession struct {
	ID          string
	ArtworkID   string
	AmountTotal int64
}

type Client struct {
	api           *client.API
	webhookSecret string
}

func New(secretKey, webhookSecret string) *Client {
	return newWithBackends(secretKey, webhookSecret, nil)
}

func newWithBackends(secretKey, webhookSecret string, backends *stripe.Backends) *Client {
	return &Client{
		api:           client.New(secretKey, backends),
		webhookSecret: webhookSecret,
	}
}

func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := sessionParams(req)
	params.Context = ctx

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// ParseEvent verifies the Stripe-Signature header against the webhook secret
// and decodes the event. Any failure wraps ErrInvalidEvent.
func (c *Client) ParseEvent(payload []byte, signature string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if ev.Type != stripe.EventTypeCheckoutSessionCompleted {
		return out, nil
	}
	if ev.Data == nil {
		return nil, fmt.Errorf("%w: missing data object", ErrInvalidEvent)
	}

	var s stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("%w: decode checkout session: %v", ErrInvalidEvent, err)
	}
	out.Session = &CompletedSession{
		ID:          s.ID,
		ArtworkID:   s.Metadata[MetadataArtworkID],
		AmountTotal: s.AmountTotal,
	}
	return out, nil
}

func sessionParams(req CheckoutRequest) *stripe.CheckoutSessionParams {
	product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name:        stripe.String(req.Title),
		Description: stripe.String("Original work by Artist #" + req.ArtistID),
	}
	if req.ImageURL != "" {
		product.Images = stripe.StringSlice([]string{req.ImageURL})
	}

	return &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(req.Currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(req.UnitAmount),
			},
			Quantity: stripe.Int64(1),
		}},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(req.ApplicationFee),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(req.DestinationAccount),
			},
		},
		SuccessURL:    stripe.String(req.SuccessURL),
		CancelURL:     stripe.String(req.CancelURL),
		CustomerEmail: stripe.String(req.BuyerEmail),
		Metadata: map[string]string{
			MetadataArtworkID: req.ArtworkID,
			MetadataType:      purchaseTypeStore,
		},
	}
}

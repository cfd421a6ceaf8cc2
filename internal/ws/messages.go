package ws

import "encoding/json"

// Envelope wraps every WS frame.
type Envelope struct {
	Event string          `json:"event"`          // e.g. "auctions/bid"
	Body  json.RawMessage `json:"body,omitempty"` // arbitrary JSON object
}

// ConnContext identifies the auction room and user behind a connection.
type ConnContext struct {
	AuctionID string
	UserID    string
}

// BidRequest is the body for "auctions/bid".
type BidRequest struct {
	Amount float64 `json:"amount"`
}

// BidAck mirrors the HTTP place-bid response.
type BidAck struct {
	Success  bool    `json:"success"`
	NewPrice float64 `json:"newPrice"`
}

// ErrorBody is returned for failures.
type ErrorBody struct {
	Error string `json:"error"`
}

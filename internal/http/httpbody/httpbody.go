// Package httpbody holds the JSON request and response shapes of the public API.
package httpbody

type CreateCheckoutBody struct {
	ArtworkID  string `json:"artworkId"  binding:"required" example:"art_42"`
	BuyerEmail string `json:"buyerEmail" binding:"required" example:"buyer@example.com"`
} // @name CreateCheckoutRequest

type PlaceBidBody struct {
	AuctionID string  `json:"auctionId" binding:"required" example:"auc123"`
	BidAmount float64 `json:"bidAmount" binding:"required" example:"51"`
	UserID    string  `json:"userId"    binding:"required" example:"user123"`
} // @name PlaceBidRequest

type PlaceBidResponse struct {
	Success  bool    `json:"success"  example:"true"`
	Message  string  `json:"message"  example:"Bid accepted"`
	NewPrice float64 `json:"newPrice" example:"51"`
} // @name PlaceBidResponse

type WebhookAck struct {
	Received bool `json:"received" example:"true"`
} // @name WebhookAck

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse

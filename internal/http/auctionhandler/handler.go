package auctionhandler

import (
	"artmarket/internal/http/httpbody"
	"artmarket/internal/services/auction"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc auction.IAuctionService
}

func New(svc auction.IAuctionService) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/api/place-bid", h.bid)
	r.GET("/api/auctions/:id", h.info)
}

// @Summary		Get auction details
// @Description	Returns the current price, winning bidder and end time of an auction.
// @Tags			Auctions
// @Param			id	path		string	true	"Auction ID"	default(auc123)
// @Success		200	{object}	auction.AuctionDTO
// @Failure		404	{object}	httpbody.ErrorResponse
// @Router			/api/auctions/{id} [get]
func (h *Handler) info(c *gin.Context) {
	dto, err := h.svc.GetAuction(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), httpbody.ErrorResponse{Error: auction.UserMessage(err)})
		return
	}
	c.JSON(http.StatusOK, dto)
}

// @Summary		Place a bid
// @Description	Accepts the bid only while the auction is open and only if it is strictly higher than the current price.
// @Tags			Auctions
// @Param			body	body		httpbody.PlaceBidBody	true	"Bid payload"
// @Success		200		{object}	httpbody.PlaceBidResponse
// @Failure		400		{object}	httpbody.ErrorResponse
// @Failure		404		{object}	httpbody.ErrorResponse
// @Failure		500		{object}	httpbody.ErrorResponse
// @Router			/api/place-bid [post]
func (h *Handler) bid(ginCtx *gin.Context) {
	var body httpbody.PlaceBidBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &httpbody.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.svc.PlaceBid(ginCtx.Request.Context(),
		body.AuctionID,
		body.UserID,
		body.BidAmount,
	); err != nil {
		ginCtx.JSON(statusFor(err), &httpbody.ErrorResponse{Error: auction.UserMessage(err)})
		return
	}
	ginCtx.JSON(http.StatusOK, &httpbody.PlaceBidResponse{
		Success:  true,
		Message:  "Bid accepted",
		NewPrice: body.BidAmount,
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, auction.ErrAuctionEnded), errors.Is(err, auction.ErrBidTooLow):
		return http.StatusBadRequest
	case errors.Is(err, auction.ErrAuctionNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

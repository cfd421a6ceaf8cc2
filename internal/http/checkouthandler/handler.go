package checkouthandler

import (
	"artmarket/internal/http/httpbody"
	"artmarket/internal/services/checkout"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc checkout.ICheckoutService
}

func New(svc checkout.ICheckoutService) *Handler { return &Handler{svc: svc} }

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/api/create-checkout", h.create)
}

// @Summary		Create a checkout session
// @Description	Starts a hosted Stripe checkout for one artwork. The platform fee depends on the artist's membership tier; the rest is transferred to the artist's Stripe account.
// @Tags			Checkout
// @Param			body	body		httpbody.CreateCheckoutBody	true	"Artwork and buyer"
// @Success		200		{object}	checkout.SessionDTO
// @Failure		400		{object}	httpbody.ErrorResponse
// @Failure		404		{object}	httpbody.ErrorResponse
// @Failure		409		{object}	httpbody.ErrorResponse
// @Failure		500		{object}	httpbody.ErrorResponse
// @Router			/api/create-checkout [post]
func (h *Handler) create(ginCtx *gin.Context) {
	var body httpbody.CreateCheckoutBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &httpbody.ErrorResponse{Error: err.Error()})
		return
	}

	out, err := h.svc.CreateSession(ginCtx.Request.Context(),
		body.ArtworkID,
		body.BuyerEmail,
		ginCtx.GetHeader("Origin"),
	)
	if err != nil {
		ginCtx.JSON(statusFor(err), &httpbody.ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusOK, out)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, checkout.ErrArtworkNotFound):
		return http.StatusNotFound
	case errors.Is(err, checkout.ErrArtworkSold):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

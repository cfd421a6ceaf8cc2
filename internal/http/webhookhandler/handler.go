package webhookhandler

import (
	"artmarket/internal/http/httpbody"
	"artmarket/internal/payments/stripe_client"
	"artmarket/internal/services/settlement"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Stripe caps event payloads well below this.
const maxBodyBytes = int64(65536)

// EventParser verifies and decodes a signed gateway event.
type EventParser interface {
	ParseEvent(payload []byte, signature string) (*stripe_client.Event, error)
}

type Handler struct {
	parser EventParser
	svc    settlement.ISettlementService
}

func New(parser EventParser, svc settlement.ISettlementService) *Handler {
	return &Handler{parser: parser, svc: svc}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/api/webhook", h.receive)
}

// @Summary		Stripe webhook
// @Description	Receives signed Stripe events. checkout.session.completed marks the artwork sold and records the order; other events are acknowledged and ignored.
// @Tags			Payments
// @Accept			json
// @Param			Stripe-Signature	header		string	true	"Stripe signature"
// @Success		200					{object}	httpbody.WebhookAck
// @Failure		400					{string}	string	"Webhook Error: ..."
// @Failure		409					{object}	httpbody.ErrorResponse
// @Failure		500					{object}	httpbody.ErrorResponse
// @Router			/api/webhook [post]
func (h *Handler) receive(ginCtx *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(ginCtx.Request.Body, maxBodyBytes))
	if err != nil {
		ginCtx.String(http.StatusBadRequest, "Webhook Error: %s", err.Error())
		return
	}

	ev, err := h.parser.ParseEvent(payload, ginCtx.GetHeader("Stripe-Signature"))
	if err != nil {
		zap.L().Warn("webhook_rejected", zap.Error(err))
		ginCtx.String(http.StatusBadRequest, "Webhook Error: %s", err.Error())
		return
	}

	if ev.Type == stripe_client.EventCheckoutSessionCompleted && ev.Session != nil && ev.Session.ArtworkID != "" {
		err := h.svc.Settle(ginCtx.Request.Context(), settlement.Settlement{
			SessionID:   ev.Session.ID,
			ArtworkID:   ev.Session.ArtworkID,
			AmountTotal: ev.Session.AmountTotal,
		})
		switch {
		case errors.Is(err, settlement.ErrSettlementInFlight):
			ginCtx.JSON(http.StatusConflict, &httpbody.ErrorResponse{Error: err.Error()})
			return
		case err != nil:
			zap.L().Error("settlement_failed",
				zap.String("event_id", ev.ID),
				zap.String("session_id", ev.Session.ID),
				zap.Error(err),
			)
			ginCtx.JSON(http.StatusInternalServerError, &httpbody.ErrorResponse{Error: err.Error()})
			return
		}
	}

	ginCtx.JSON(http.StatusOK, &httpbody.WebhookAck{Received: true})
}

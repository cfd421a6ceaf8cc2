package settlement

import (
	"artmarket/internal/services/commission"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	PaymentStatusPaid = "paid"

	settleLockPrefix = "settle_lock:"
	settleLockTTL    = 30 * time.Second
)

// ErrSettlementInFlight means another delivery of the same checkout session
// is being processed right now; the caller should ask the gateway to retry.
var ErrSettlementInFlight = errors.New("settlement already in progress")

// Settlement is a completed, paid checkout session.
type Settlement struct {
	SessionID   string
	ArtworkID   string
	AmountTotal int64 // minor units
}

type ISettlementService interface {
	Settle(ctx context.Context, s Settlement) error
}

type settlementService struct {
	db  *sql.DB
	rdc *redis.Client
}

func NewSettlementService(db *sql.DB, rdc *redis.Client) ISettlementService {
	return &settlementService{db: db, rdc: rdc}
}

// Settle records the order and marks the artwork sold in one transaction.
// Redelivered events for an already recorded session are a no-op.
func (svc *settlementService) Settle(ctx context.Context, s Settlement) error {
	// short lock per session so parallel redeliveries don't race; the unique
	// stripe_session_id index still guards correctness if Redis is down
	lockKey := settleLockPrefix + s.SessionID
	ok, err := svc.rdc.SetNX(ctx, lockKey, 1, settleLockTTL).Result()
	switch {
	case err != nil:
		zap.L().Warn("settle_lock_unavailable", zap.String("session_id", s.SessionID), zap.Error(err))
	case !ok:
		return ErrSettlementInFlight
	default:
		defer svc.rdc.Del(context.WithoutCancel(ctx), lockKey)
	}

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const insOrder = `
	  INSERT INTO orders (artwork_id, total_amount, stripe_session_id, payment_status)
	       VALUES ($1, $2, $3, $4)
	  ON CONFLICT (stripe_session_id) DO NOTHING`
	res, err := tx.ExecContext(ctx, insOrder,
		s.ArtworkID,
		commission.ToMajor(s.AmountTotal),
		s.SessionID,
		PaymentStatusPaid,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		zap.L().Info("settlement_duplicate", zap.String("session_id", s.SessionID))
		return tx.Commit()
	}

	const markSold = `UPDATE artworks SET status = 'sold' WHERE id = $1 AND status <> 'sold'`
	res, err = tx.ExecContext(ctx, markSold, s.ArtworkID)
	if err != nil {
		return fmt.Errorf("mark artwork sold: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Stripe charged for an artwork that was already sold; the order row
		// is still recorded so the payment can be refunded.
		zap.L().Warn("settlement_artwork_already_sold",
			zap.String("artwork_id", s.ArtworkID),
			zap.String("session_id", s.SessionID),
		)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	zap.L().Info("artwork_sold",
		zap.String("artwork_id", s.ArtworkID),
		zap.String("session_id", s.SessionID),
		zap.Int64("amount_total", s.AmountTotal),
	)
	return nil
}

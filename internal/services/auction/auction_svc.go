package auction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type AuctionDTO struct {
	ID              string    `json:"id"              example:"auc123"`
	CurrentBid      float64   `json:"currentBid"      example:"51"`
	EndTime         time.Time `json:"endTime"         example:"2025-07-27T16:05:05Z"`
	WinningBidderID string    `json:"winningBidderId" example:"user123"`
	Ended           bool      `json:"ended"`
}

// BidEvent describes an accepted bid after it has been committed.
type BidEvent struct {
	AuctionID string
	BidderID  string
	Amount    float64
	EndTime   time.Time
	PlacedAt  time.Time
}

// BidNotifier is told about every committed bid, e.g. to push it to live
// subscribers. Notification failures never undo a bid.
type BidNotifier interface {
	BidAccepted(ctx context.Context, ev BidEvent) error
}

var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrAuctionEnded    = errors.New("auction has ended")
	ErrBidTooLow       = errors.New("bid must be higher than current price")
)

// UserMessage is the client-facing text for a bidding error.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrAuctionEnded):
		return "Auction has ended"
	case errors.Is(err, ErrBidTooLow):
		return "Bid must be higher than current price"
	case errors.Is(err, ErrAuctionNotFound):
		return "Auction not found"
	}
	return err.Error()
}

type IAuctionService interface {
	PlaceBid(ctx context.Context, auctionID string, bidderID string, amount float64) error
	GetAuction(ctx context.Context, id string) (*AuctionDTO, error)
}

type auctionService struct {
	db       *sql.DB
	notifier BidNotifier
	now      func() time.Time
}

var _ IAuctionService = (*auctionService)(nil)

// NewAuctionService builds the bidding service. notifier may be nil.
func NewAuctionService(db *sql.DB, notifier BidNotifier) IAuctionService {
	return &auctionService{
		db:       db,
		notifier: notifier,
		now:      time.Now,
	}
}

// PlaceBid accepts a bid only while the auction is open and only if it is
// strictly above the current price. Read, validation and both writes run in
// one transaction holding the auction row lock, so two concurrent bids are
// applied one after the other and the price never goes down.
func (svc *auctionService) PlaceBid(ctx context.Context, auctionID, bidderID string, amount float64) error {
	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var (
		current float64
		endTime time.Time
	)
	const lockQ = `SELECT current_bid, end_time FROM auctions WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, lockQ, auctionID).Scan(&current, &endTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrAuctionNotFound, auctionID)
		}
		return err
	}

	now := svc.now()
	if now.After(endTime) {
		return ErrAuctionEnded
	}
	if amount <= current {
		return ErrBidTooLow
	}

	const insBid = `INSERT INTO bids (auction_id, bidder_id, amount, created_at)
	                VALUES ($1, $2, $3, $4)`
	if _, err := tx.ExecContext(ctx, insBid, auctionID, bidderID, amount, now); err != nil {
		return fmt.Errorf("insert bid: %w", err)
	}

	const updAuction = `UPDATE auctions
	                       SET current_bid = $1, winning_bidder_id = $2
	                     WHERE id = $3`
	if _, err := tx.ExecContext(ctx, updAuction, amount, bidderID, auctionID); err != nil {
		return fmt.Errorf("update auction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	zap.L().Debug("bid_accepted",
		zap.String("auction_id", auctionID),
		zap.String("bidder_id", bidderID),
		zap.Float64("amount", amount),
	)

	if svc.notifier != nil {
		ev := BidEvent{
			AuctionID: auctionID,
			BidderID:  bidderID,
			Amount:    amount,
			EndTime:   endTime,
			PlacedAt:  now,
		}
		if err := svc.notifier.BidAccepted(ctx, ev); err != nil {
			zap.L().Warn("bid_notify_failed", zap.String("auction_id", auctionID), zap.Error(err))
		}
	}
	return nil
}

func (svc *auctionService) GetAuction(ctx context.Context, id string) (*AuctionDTO, error) {
	const q = `SELECT id, current_bid, end_time, coalesce(winning_bidder_id, '')
                 FROM auctions WHERE id = $1`
	dto := &AuctionDTO{}
	err := svc.db.QueryRowContext(ctx, q, id).Scan(&dto.ID, &dto.CurrentBid, &dto.EndTime, &dto.WinningBidderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrAuctionNotFound, id)
		}
		return nil, err
	}
	dto.Ended = svc.now().After(dto.EndTime)
	return dto, nil
}

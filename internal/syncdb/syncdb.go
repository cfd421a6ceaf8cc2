package syncdb

import (
	"artmarket/internal/services/auction"
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

const (
	interval     = 10 * time.Second
	queryTimeout = 1500 * time.Millisecond
)

// Run re-publishes the committed price of every watched auction every 10 s.
// Bid notifications are best effort, so a snapshot can lag behind Postgres;
// the publish script ignores amounts that are not above the snapshot, so
// up-to-date auctions produce no events.
func Run(ctx context.Context, db *sql.DB, n auction.BidNotifier, watched func() []string) {
	tk := time.NewTicker(interval)
	go func() {
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				syncOnce(ctx, db, n, watched())
			}
		}
	}()
}

func syncOnce(ctx context.Context, db *sql.DB, n auction.BidNotifier, ids []string) {
	if len(ids) == 0 {
		return
	}

	qctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const q = `SELECT id, current_bid, end_time, winning_bidder_id
	             FROM auctions
	            WHERE id = ANY($1) AND winning_bidder_id IS NOT NULL`
	rows, err := db.QueryContext(qctx, q, ids)
	if err != nil {
		zap.L().Error("syncdb.query", zap.Error(err))
		return
	}
	defer rows.Close()

	now := time.Now()
	for rows.Next() {
		var ev auction.BidEvent
		if err := rows.Scan(&ev.AuctionID, &ev.Amount, &ev.EndTime, &ev.BidderID); err != nil {
			zap.L().Error("syncdb.scan", zap.Error(err))
			return
		}
		ev.PlacedAt = now
		if err := n.BidAccepted(ctx, ev); err != nil {
			zap.L().Warn("syncdb.publish", zap.String("auction_id", ev.AuctionID), zap.Error(err))
		}
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("syncdb.rows", zap.Error(err))
	}
}

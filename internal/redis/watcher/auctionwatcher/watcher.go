package auctionwatcher

import (
	"artmarket/internal/redis/bidfeed"
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EndNotifier announces that an auction's bidding window has closed.
type EndNotifier interface {
	AuctionEnded(ctx context.Context, auctionID string, at time.Time) error
}

// Run listens to key-expiry events for auction timer keys and announces the
// end of each auction on its channel. Run must be started once at service boot.
func Run(ctx context.Context, rdb *redis.Client, n EndNotifier) {
	ps := rdb.PSubscribe(ctx, "__keyevent@*__:expired")
	defer ps.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ps.Channel():
			if !ok {
				return
			}
			handleExpired(ctx, n, m.Payload)
		}
	}
}

func handleExpired(ctx context.Context, n EndNotifier, key string) {
	id, ok := bidfeed.AuctionIDFromTimerKey(key)
	if !ok {
		return
	}
	if err := n.AuctionEnded(ctx, id, time.Now()); err != nil {
		zap.L().Warn("auction_end_publish_failed", zap.String("auction_id", id), zap.Error(err))
	}
}

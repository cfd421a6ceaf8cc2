// Package bidfeed pushes accepted bids and auction endings to Redis so every
// service instance can relay them to its websocket clients.
package bidfeed

import (
	"artmarket/internal/redis/redis_functions"
	"artmarket/internal/services/auction"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	SnapshotKeyPrefix = "auc:"
	TimerKeyPrefix    = "auc_t:"
	eventsSuffix      = ":events"

	// snapshots outlive the auction so late joiners still see the result
	snapshotGrace = 24 * time.Hour

	EventBid   = "bid"
	EventEnded = "ended"
)

// Event is the JSON payload published on an auction's channel.
type Event struct {
	Version int     `json:"version"`
	Event   string  `json:"event"`
	Bidder  string  `json:"bidder,omitempty"`
	Amount  float64 `json:"amount,omitempty"`
	At      int64   `json:"at"`
}

func SnapshotKey(auctionID string) string { return SnapshotKeyPrefix + auctionID }

func TimerKey(auctionID string) string { return TimerKeyPrefix + auctionID }

func EventsChannel(auctionID string) string { return SnapshotKeyPrefix + auctionID + eventsSuffix }

// AuctionIDFromTimerKey returns the auction id for an "auc_t:<id>" key.
func AuctionIDFromTimerKey(key string) (string, bool) {
	if !strings.HasPrefix(key, TimerKeyPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(key, TimerKeyPrefix)
	return id, id != ""
}

type Publisher struct {
	rdc *redis.Client
}

var _ auction.BidNotifier = (*Publisher)(nil)

func NewPublisher(rdc *redis.Client) *Publisher {
	return &Publisher{rdc: rdc}
}

// BidAccepted implements auction.BidNotifier.
func (p *Publisher) BidAccepted(ctx context.Context, ev auction.BidEvent) error {
	payload, err := json.Marshal(Event{
		Version: 1,
		Event:   EventBid,
		Bidder:  ev.BidderID,
		Amount:  ev.Amount,
		At:      ev.PlacedAt.Unix(),
	})
	if err != nil {
		return err
	}

	return redis_functions.PublishBid.Run(ctx, p.rdc,
		[]string{
			SnapshotKey(ev.AuctionID),
			TimerKey(ev.AuctionID),
			EventsChannel(ev.AuctionID),
		},
		strconv.FormatFloat(ev.Amount, 'f', -1, 64),
		ev.BidderID,
		ev.EndTime.Unix(),
		ev.EndTime.Add(snapshotGrace).Unix(),
		string(payload),
	).Err()
}

// AuctionEnded announces that bidding on an auction has closed.
func (p *Publisher) AuctionEnded(ctx context.Context, auctionID string, at time.Time) error {
	payload, err := json.Marshal(Event{Version: 1, Event: EventEnded, At: at.Unix()})
	if err != nil {
		return err
	}
	return p.rdc.Publish(ctx, EventsChannel(auctionID), payload).Err()
}

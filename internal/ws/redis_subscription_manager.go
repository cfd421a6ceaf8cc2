package ws

import (
	"artmarket/internal/redis/bidfeed"
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// subscriptionManager keeps exactly one Redis subscription per auction
// channel, however many websocket clients watch that auction.
type subscriptionManager struct {
	rdb  *redis.Client
	hub  *Hub
	mu   sync.Mutex
	subs map[string]*subEntry // auctionID -> subscription data
}

type subEntry struct {
	refCnt int
	cancel context.CancelFunc
}

func newSubscriptionManager(rdb *redis.Client, hub *Hub) *subscriptionManager {
	return &subscriptionManager{
		rdb:  rdb,
		hub:  hub,
		subs: make(map[string]*subEntry),
	}
}

// Subscribe ensures the process is subscribed to the auction's channel;
// later calls for the same auction only increment the ref-counter.
func (sm *subscriptionManager) Subscribe(auctionID string) {
	sm.mu.Lock()
	if e, ok := sm.subs[auctionID]; ok {
		e.refCnt++
		sm.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	ps := sm.rdb.Subscribe(ctx, bidfeed.EventsChannel(auctionID))

	sm.subs[auctionID] = &subEntry{refCnt: 1, cancel: cancel}
	sm.mu.Unlock()

	go func() {
		defer ps.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ps.Channel():
				if !ok {
					return
				}
				wrapped, err := wrapRedisEvent(m.Payload)
				if err != nil {
					zap.L().Warn("ws.wrap_event_failed", zap.Error(err))
					wrapped = []byte(m.Payload)
				}
				sm.hub.Broadcast(auctionID, wrapped)
			}
		}
	}()
}

// Unsubscribe decrements the ref-counter and tears the Redis subscription
// down when the last websocket client leaves.
func (sm *subscriptionManager) Unsubscribe(auctionID string) {
	sm.mu.Lock()
	e, ok := sm.subs[auctionID]
	if !ok {
		sm.mu.Unlock()
		return
	}
	e.refCnt--
	if e.refCnt > 0 {
		sm.mu.Unlock()
		return
	}
	delete(sm.subs, auctionID)
	sm.mu.Unlock()

	e.cancel()
}

// wrapRedisEvent turns
//
//	{"version":1,"event":"bid","bidder":"u1",…}
//
// into
//
//	{"event":"auctions/bid","body":{"version":1,"bidder":"u1",…}}
func wrapRedisEvent(payload string) ([]byte, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, err
	}

	evt, _ := raw["event"].(string)
	if evt == "" {
		evt = "unknown"
	}
	delete(raw, "event")

	return json.Marshal(map[string]any{
		"event": "auctions/" + evt,
		"body":  raw,
	})
}

package auctionwatcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu  sync.Mutex
	ids []string
}

func (r *recorder) AuctionEnded(_ context.Context, id string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return nil
}

func TestHandleExpired(t *testing.T) {
	r := &recorder{}

	handleExpired(context.Background(), r, "auc_t:a1")
	handleExpired(context.Background(), r, "auc:a1")       // snapshot hash, not a timer
	handleExpired(context.Background(), r, "settle_lock:x") // unrelated key
	handleExpired(context.Background(), r, "auc_t:")
	handleExpired(context.Background(), r, "auc_t:a2")

	assert.Equal(t, []string{"a1", "a2"}, r.ids)
}

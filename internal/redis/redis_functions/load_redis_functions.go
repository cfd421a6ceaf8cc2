package redis_functions

import (
	"context"
	"embed"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

//go:embed *.lua
var fs embed.FS

// PublishBid updates the live auction snapshot and publishes the bid event,
// ignoring bids that are not above the snapshot's current high bid.
var PublishBid = mustScript("publish_bid.lua")

var all = map[string]*redis.Script{
	"publish_bid.lua": PublishBid,
}

func mustScript(name string) *redis.Script {
	code, err := fs.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("redis_functions: %s: %v", name, err))
	}
	return redis.NewScript(string(code))
}

// LoadAll preloads every embedded Lua script into the Redis script cache.
// Script.Run falls back to EVAL on a cache miss, so this only saves the first
// round-trip after a Redis restart.
func LoadAll(ctx context.Context, rdb *redis.Client) error {
	for name, s := range all {
		if err := s.Load(ctx, rdb).Err(); err != nil {
			return fmt.Errorf("load lua %s: %w", name, err)
		}
		zap.L().Info("lua script loaded", zap.String("file", name), zap.String("sha", s.Hash()))
	}
	return nil
}

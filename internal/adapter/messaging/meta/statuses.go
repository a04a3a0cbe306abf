package meta

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sundinlabs/multibot/internal/infrastructure/circuitbreaker"
)

// RemoteStatusCache polls an external JSON document of per-bot on/off
// switches. Missing entries, fetch failures and an empty URL all read
// as enabled. Results are cached for one TTL window.
type RemoteStatusCache struct {
	url    string
	ttl    time.Duration
	log    *zap.Logger
	client *circuitbreaker.HTTPClient

	mu       sync.Mutex
	statuses map[string]bool
	fetched  time.Time
}

func NewRemoteStatusCache(url string, ttl time.Duration, log *zap.Logger) *RemoteStatusCache {
	if ttl <= 0 {
		ttl = 20 * time.Second
	}
	settings := circuitbreaker.DefaultHTTPClientSettings("bot-statuses")
	settings.Timeout = 5 * time.Second
	return &RemoteStatusCache{
		url:    url,
		ttl:    ttl,
		log:    log,
		client: circuitbreaker.NewHTTPClientWithSettings(settings, log),
	}
}

// Enabled reports whether the remote document allows the bot to reply.
func (c *RemoteStatusCache) Enabled(ctx context.Context, bot string) bool {
	if c.url == "" {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.fetched) > c.ttl {
		c.refreshLocked(ctx)
	}
	if c.statuses == nil {
		return true
	}
	enabled, ok := c.statuses[bot]
	if !ok {
		return true
	}
	return enabled
}

func (c *RemoteStatusCache) refreshLocked(ctx context.Context) {
	resp, err := c.client.Get(ctx, c.url)
	if err != nil {
		c.log.Warn("remote status fetch failed", zap.Error(err))
		c.fetched = time.Now()
		return
	}
	defer resp.Body.Close()

	var statuses map[string]bool
	if err := json.NewDecoder(resp.Body).Decode(&statuses); err != nil {
		c.log.Warn("remote status decode failed", zap.Error(err))
		c.fetched = time.Now()
		return
	}
	c.statuses = statuses
	c.fetched = time.Now()
}

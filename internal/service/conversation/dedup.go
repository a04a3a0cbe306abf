package conversation

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/sundinlabs/multibot/internal/ports"
)

const (
	dedupTTL      = 10 * time.Minute
	dedupCapacity = 2048
)

// Deduper rejects Instagram message ids it has already seen. Redis
// backs it when available; a bounded in-process set covers restarts
// of a single node and cache outages.
type Deduper struct {
	cache ports.Cache

	mu    sync.Mutex
	seen  map[string]*list.Element
	order *list.List
}

func NewDeduper(cache ports.Cache) *Deduper {
	return &Deduper{
		cache: cache,
		seen:  make(map[string]*list.Element),
		order: list.New(),
	}
}

// Seen records the id and reports whether it was already known.
func (d *Deduper) Seen(ctx context.Context, id string) bool {
	if id == "" {
		return false
	}

	d.mu.Lock()
	if _, ok := d.seen[id]; ok {
		d.mu.Unlock()
		return true
	}
	d.seen[id] = d.order.PushBack(id)
	for len(d.seen) > dedupCapacity {
		oldest := d.order.Front()
		d.order.Remove(oldest)
		delete(d.seen, oldest.Value.(string))
	}
	d.mu.Unlock()

	if d.cache == nil {
		return false
	}

	key := "ig:mid:" + id
	if val, err := d.cache.Get(ctx, key); err == nil && val != "" {
		return true
	}
	_ = d.cache.Set(ctx, key, "1", dedupTTL)
	return false
}

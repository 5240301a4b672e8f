package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper tracks processed processor event ids. The reconciler is already
// idempotent without it; dedup only short-circuits redundant deliveries.
// Seen and Mark are split so a delivery is only recorded once it has been
// fully applied: an event that failed on infrastructure stays unmarked and
// the processor's retry re-enters the pipeline.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Mark(ctx context.Context, eventID string) error
}

type redisDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (d *redisDeduper) key(eventID string) string {
	return d.prefix + ":" + eventID
}

func (d *redisDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(eventID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *redisDeduper) Mark(ctx context.Context, eventID string) error {
	return d.client.Set(ctx, d.key(eventID), "1", d.ttl).Err()
}

type memoryDeduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	nextGC time.Time
}

func newMemoryDeduper(ttl time.Duration) *memoryDeduper {
	now := time.Now()
	return &memoryDeduper{
		seen:   make(map[string]time.Time),
		ttl:    ttl,
		nextGC: now.Add(ttl),
	}
}

func (d *memoryDeduper) Seen(_ context.Context, eventID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	exp, ok := d.seen[eventID]
	return ok && exp.After(time.Now()), nil
}

func (d *memoryDeduper) Mark(_ context.Context, eventID string) error {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.seen[eventID] = now.Add(d.ttl)
	if now.After(d.nextGC) {
		for id, exp := range d.seen {
			if exp.Before(now) {
				delete(d.seen, id)
			}
		}
		d.nextGC = now.Add(d.ttl)
	}
	return nil
}

// New builds a redis-backed deduper and falls back to in-memory when no
// address is configured or redis is unreachable.
func New(addr, password string, db int, ttl time.Duration) (Deduper, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if addr == "" {
		return newMemoryDeduper(ttl), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return newMemoryDeduper(ttl), err
	}
	return &redisDeduper{client: client, prefix: "webhook:event", ttl: ttl}, nil
}

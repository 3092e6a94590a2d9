package submitcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// retention bounds how long a device's pending-review entry is kept around
// for form prefill; well past any reasonable cooldown.
const retention = 30 * 24 * time.Hour

// Entry is what the site remembers about a device's last submission: which
// review it owns (so a resubmission becomes an edit) and when it last
// submitted (to show a cooldown countdown).
type Entry struct {
	ReviewID   string    `json:"reviewId"`
	LastSubmit time.Time `json:"lastSubmit"`
}

// Cache is the server-side mirror of the browser's submission cache, keyed by
// an opaque device token the client sends along. Purely advisory: clearing
// the token, like clearing localStorage, bypasses it entirely.
type Cache struct {
	client   *redis.Client
	prefix   string
	cooldown time.Duration
}

// New creates a submission cache. Prefix may be empty.
func New(client *redis.Client, prefix string, cooldown time.Duration) *Cache {
	if prefix == "" {
		prefix = "pending-review:"
	}
	return &Cache{client: client, prefix: prefix, cooldown: cooldown}
}

func (c *Cache) key(device string) string {
	return c.prefix + device
}

// Record stores the device's pending review id and stamps the submission time.
func (c *Cache) Record(ctx context.Context, device, reviewID string) error {
	b, err := json.Marshal(&Entry{ReviewID: reviewID, LastSubmit: time.Now().UTC()})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(device), b, retention).Err()
}

// Get returns the device's entry, or nil when the device has none.
func (c *Cache) Get(ctx context.Context, device string) (*Entry, error) {
	b, err := c.client.Get(ctx, c.key(device)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(b, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Clear drops the device's entry, e.g. after its review was rejected.
func (c *Cache) Clear(ctx context.Context, device string) error {
	return c.client.Del(ctx, c.key(device)).Err()
}

// CooldownRemaining reports how long the device should still wait before the
// next submission; zero when the cooldown has elapsed.
func (c *Cache) CooldownRemaining(e *Entry) time.Duration {
	if e == nil {
		return 0
	}
	remaining := c.cooldown - time.Since(e.LastSubmit)
	if remaining < 0 {
		return 0
	}
	return remaining
}

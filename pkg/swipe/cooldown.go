package swipe

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	json "github.com/json-iterator/go"
	"github.com/quill-social/quill/pkg/kvstore"
	"github.com/quill-social/quill/pkg/logger"
)

const (
	// RejectionCooldown is how long a passed profile stays out of the pool
	RejectionCooldown = 72 * time.Hour

	// CooldownKey is the persistence key for the rejection list
	CooldownKey = "swipe_rejected_profiles"
)

// Rejection is one passed profile. Times are unix milliseconds.
type Rejection struct {
	ID         string `json:"id"`
	RejectedAt int64  `json:"rejectedAt"`
	ExpiresAt  int64  `json:"expiresAt"`
}

// Expiry returns ExpiresAt as a time
func (r Rejection) Expiry() time.Time {
	return time.UnixMilli(r.ExpiresAt)
}

// CooldownStore persists rejections and drops them once expired
type CooldownStore struct {
	store kvstore.Store
	ttl   time.Duration
	now   func() time.Time
	log   *log.Logger
}

// CooldownOption configures a CooldownStore
type CooldownOption func(*CooldownStore)

// WithCooldownClock injects the clock used for expiry checks
func WithCooldownClock(now func() time.Time) CooldownOption {
	return func(c *CooldownStore) { c.now = now }
}

// WithCooldownTTL overrides RejectionCooldown
func WithCooldownTTL(ttl time.Duration) CooldownOption {
	return func(c *CooldownStore) { c.ttl = ttl }
}

// WithCooldownLogger sets the logger used for corruption warnings
func WithCooldownLogger(l *log.Logger) CooldownOption {
	return func(c *CooldownStore) { c.log = l }
}

// NewCooldownStore creates a cooldown list backed by store
func NewCooldownStore(store kvstore.Store, opts ...CooldownOption) *CooldownStore {
	c := &CooldownStore{
		store: store,
		ttl:   RejectionCooldown,
		now:   time.Now,
		log:   logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CooldownStore) read(ctx context.Context) ([]Rejection, error) {
	raw, ok, err := c.store.Get(ctx, CooldownKey)
	if err != nil {
		return nil, fmt.Errorf("read cooldowns: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var entries []Rejection
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		c.log.Warn("Resetting corrupt cooldown list", "err", err)
		return nil, c.write(ctx, nil)
	}
	return entries, nil
}

func (c *CooldownStore) write(ctx context.Context, entries []Rejection) error {
	if entries == nil {
		entries = []Rejection{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, CooldownKey, string(data)); err != nil {
		return fmt.Errorf("write cooldowns: %w", err)
	}
	return nil
}

// Active returns unexpired rejections. Expired entries are dropped and the
// list is written back when anything was removed.
func (c *CooldownStore) Active(ctx context.Context) ([]Rejection, error) {
	entries, err := c.read(ctx)
	if err != nil {
		return nil, err
	}

	now := c.now().UnixMilli()
	active := make([]Rejection, 0, len(entries))
	for _, e := range entries {
		if now < e.ExpiresAt {
			active = append(active, e)
		}
	}

	if len(active) != len(entries) {
		c.log.Debug("Purged expired cooldowns", "removed", len(entries)-len(active))
		if err := c.write(ctx, active); err != nil {
			return active, err
		}
	}
	return active, nil
}

// ActiveSet returns the ids of unexpired rejections
func (c *CooldownStore) ActiveSet(ctx context.Context) (map[string]struct{}, error) {
	active, err := c.Active(ctx)
	set := make(map[string]struct{}, len(active))
	for _, e := range active {
		set[e.ID] = struct{}{}
	}
	return set, err
}

// Purge drops expired entries and reports how many remain
func (c *CooldownStore) Purge(ctx context.Context) (int, error) {
	active, err := c.Active(ctx)
	return len(active), err
}

// IsRejected reports whether id is cooling down
func (c *CooldownStore) IsRejected(ctx context.Context, id string) (bool, error) {
	set, err := c.ActiveSet(ctx)
	if err != nil {
		return false, err
	}
	_, ok := set[id]
	return ok, nil
}

// Reject records id with a fresh expiry, replacing any earlier entry
func (c *CooldownStore) Reject(ctx context.Context, id string) error {
	active, err := c.Active(ctx)
	if err != nil {
		return err
	}

	now := c.now()
	entries := make([]Rejection, 0, len(active)+1)
	for _, e := range active {
		if e.ID != id {
			entries = append(entries, e)
		}
	}
	entries = append(entries, Rejection{
		ID:         id,
		RejectedAt: now.UnixMilli(),
		ExpiresAt:  now.Add(c.ttl).UnixMilli(),
	})
	return c.write(ctx, entries)
}

// Clear removes every rejection
func (c *CooldownStore) Clear(ctx context.Context) error {
	if err := c.store.Remove(ctx, CooldownKey); err != nil {
		return fmt.Errorf("clear cooldowns: %w", err)
	}
	return nil
}

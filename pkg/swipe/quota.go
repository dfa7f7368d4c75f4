package swipe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	json "github.com/json-iterator/go"
	"github.com/quill-social/quill/pkg/kvstore"
	"github.com/quill-social/quill/pkg/logger"
)

const (
	// DailySwipeLimit is the number of swipes allowed per local calendar day
	DailySwipeLimit = 20

	// QuotaKey is the persistence key for the daily quota record
	QuotaKey = "swipe_daily_quota"

	dateLayout = "2006-01-02"
)

// ErrQuotaUnavailable wraps store read failures. The stored count is
// unknown, so nothing is written.
var ErrQuotaUnavailable = errors.New("swipe quota unavailable")

// QuotaRecord is the persisted form of the daily quota
type QuotaRecord struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DailyQuota counts swipes per local calendar day
type DailyQuota struct {
	store kvstore.Store
	limit int
	now   func() time.Time
	log   *log.Logger
}

// QuotaOption configures a DailyQuota
type QuotaOption func(*DailyQuota)

// WithQuotaClock injects the clock used to decide the current day
func WithQuotaClock(now func() time.Time) QuotaOption {
	return func(q *DailyQuota) { q.now = now }
}

// WithQuotaLimit overrides DailySwipeLimit
func WithQuotaLimit(limit int) QuotaOption {
	return func(q *DailyQuota) { q.limit = limit }
}

// WithQuotaLogger sets the logger used for corruption warnings
func WithQuotaLogger(l *log.Logger) QuotaOption {
	return func(q *DailyQuota) { q.log = l }
}

// NewDailyQuota creates a quota backed by store
func NewDailyQuota(store kvstore.Store, opts ...QuotaOption) *DailyQuota {
	q := &DailyQuota{
		store: store,
		limit: DailySwipeLimit,
		now:   time.Now,
		log:   logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Limit returns the configured daily limit
func (q *DailyQuota) Limit() int {
	return q.limit
}

func (q *DailyQuota) today() string {
	return q.now().Local().Format(dateLayout)
}

// Load returns today's record. An absent, malformed or stale record is
// replaced with {today, 0} and written back.
func (q *DailyQuota) Load(ctx context.Context) (QuotaRecord, error) {
	today := q.today()
	fresh := QuotaRecord{Date: today}

	raw, ok, err := q.store.Get(ctx, QuotaKey)
	if err != nil {
		return fresh, fmt.Errorf("%w: read quota: %w", ErrQuotaUnavailable, err)
	}
	if !ok {
		return fresh, q.save(ctx, fresh)
	}

	var rec QuotaRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec.Date == "" || rec.Count < 0 {
		q.log.Warn("Resetting corrupt swipe quota", "value", raw, "err", err)
		return fresh, q.save(ctx, fresh)
	}
	if rec.Date != today {
		q.log.Debug("New day, resetting swipe quota", "previous", rec.Date, "today", today)
		return fresh, q.save(ctx, fresh)
	}
	return rec, nil
}

// Increment records one swipe. The returned record reflects the increment
// even when persisting it fails. When the current count cannot be read the
// swipe is not counted and the stored record is left alone.
func (q *DailyQuota) Increment(ctx context.Context) (QuotaRecord, error) {
	rec, err := q.Load(ctx)
	if errors.Is(err, ErrQuotaUnavailable) {
		return QuotaRecord{}, err
	}
	rec.Count++
	if saveErr := q.save(ctx, rec); saveErr != nil {
		return rec, saveErr
	}
	return rec, err
}

// Remaining returns max(0, limit - count) for today
func (q *DailyQuota) Remaining(ctx context.Context) (int, error) {
	rec, err := q.Load(ctx)
	return q.remaining(rec), err
}

func (q *DailyQuota) remaining(rec QuotaRecord) int {
	if left := q.limit - rec.Count; left > 0 {
		return left
	}
	return 0
}

// Reset writes {today, 0}
func (q *DailyQuota) Reset(ctx context.Context) error {
	return q.save(ctx, QuotaRecord{Date: q.today()})
}

func (q *DailyQuota) save(ctx context.Context, rec QuotaRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := q.store.Set(ctx, QuotaKey, string(data)); err != nil {
		return fmt.Errorf("write quota: %w", err)
	}
	return nil
}

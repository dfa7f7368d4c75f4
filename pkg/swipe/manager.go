// Package swipe runs the discovery queue: a rate-limited stream of candidate
// profiles the user follows or passes one at a time.
package swipe

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/quill-social/quill/pkg/api"
	"github.com/quill-social/quill/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const (
	// BufferSize is how many candidates are seeded into the buffer
	BufferSize = 3
	// PreloadThreshold is the slack at or below which a refill is attempted
	PreloadThreshold = 1
	// CompactionThreshold is the index above which consumed entries are dropped
	CompactionThreshold = 10

	eligibilityWorkers = 4
)

var (
	ErrDailyLimitReached = errors.New("daily swipe limit reached")
	ErrExhausted         = errors.New("no more profiles to discover")
	ErrNotReady          = errors.New("discovery queue is not ready")
	ErrNotCurrent        = errors.New("profile is not the current candidate")
	ErrFollowFailed      = errors.New("follow failed")
)

// Profile is the candidate detail shown for the current card
type Profile = api.Profile

// CandidateSource lists every profile id that could be discovered
type CandidateSource interface {
	CandidateIDs(ctx context.Context) ([]string, error)
}

// Oracle answers per-candidate eligibility questions. Profile returns
// api.ErrNotFound when the profile no longer exists.
type Oracle interface {
	Profile(ctx context.Context, id string) (*Profile, error)
	IsFollowing(ctx context.Context, observer, candidate string) (bool, error)
}

// Relationships mutates the follow graph
type Relationships interface {
	Follow(ctx context.Context, observer, candidate string) error
}

// Deps are the ports a Manager is built from
type Deps struct {
	Candidates    CandidateSource
	Oracle        Oracle
	Relationships Relationships
	Quota         *DailyQuota
	Cooldowns     *CooldownStore
}

// Phase is the lifecycle state of a discovery session
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseInitializing
	PhaseReady
	PhaseRefilling
	PhaseExhausted
	PhaseDailyLimitReached
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseInitializing:
		return "initializing"
	case PhaseReady:
		return "ready"
	case PhaseRefilling:
		return "refilling"
	case PhaseExhausted:
		return "exhausted"
	case PhaseDailyLimitReached:
		return "daily_limit_reached"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// actionable reports whether the current candidate accepts pass/follow
func (p Phase) actionable() bool {
	return p == PhaseReady || p == PhaseRefilling
}

// Snapshot is a copy of the manager state for display and tests
type Snapshot struct {
	Phase      Phase
	UserID     string
	CurrentID  string
	Index      int
	Buffer     []string
	PoolSize   int
	PoolCursor int
	Processed  int
	Followed   int
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the manager logger
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// Manager owns the discovery session for one user. All state is guarded by
// mu; network calls run outside it and re-check generation before applying.
type Manager struct {
	deps Deps
	log  *log.Logger

	mu         sync.Mutex
	phase      Phase
	userID     string
	generation uint64

	pool       []string
	poolCursor int
	buffer     []string
	index      int
	// swiping is set while a Pass or Follow for the current candidate runs
	swiping bool

	processed map[string]struct{}
	followed  map[string]struct{}
	profiles  map[string]*Profile
}

// NewManager creates an uninitialized manager
func NewManager(deps Deps, opts ...Option) *Manager {
	m := &Manager{
		deps: deps,
		log:  logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.clearLocked()
	return m
}

func (m *Manager) clearLocked() {
	m.phase = PhaseUninitialized
	m.pool = nil
	m.poolCursor = 0
	m.buffer = nil
	m.index = 0
	m.swiping = false
	m.processed = make(map[string]struct{})
	m.followed = make(map[string]struct{})
	m.profiles = make(map[string]*Profile)
}

// Teardown drops the in-memory session without touching persisted state
func (m *Manager) Teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	m.userID = ""
	m.clearLocked()
}

type verdict int

const (
	verdictExcluded verdict = iota
	verdictFollowed
	verdictEligible
)

type eligibility struct {
	verdict verdict
	profile *Profile
}

// Initialize builds the candidate pool for userID and seeds the buffer. It is
// a no-op when a session for the same user already exists.
func (m *Manager) Initialize(ctx context.Context, userID string) error {
	m.mu.Lock()
	if m.phase != PhaseUninitialized && m.userID == userID {
		m.mu.Unlock()
		return nil
	}
	if m.userID != userID {
		m.clearLocked()
	}
	m.generation++
	gen := m.generation
	m.userID = userID
	m.phase = PhaseInitializing
	processed := make(map[string]struct{}, len(m.processed))
	for id := range m.processed {
		processed[id] = struct{}{}
	}
	m.mu.Unlock()

	m.log.Debug("Initializing discovery", "user", userID)

	rejected, err := m.deps.Cooldowns.ActiveSet(ctx)
	if err != nil {
		m.log.Warn("Reading cooldowns failed", "err", err)
	}
	remaining, err := m.deps.Quota.Remaining(ctx)
	if err != nil {
		m.log.Warn("Reading swipe quota failed", "err", err)
	}

	ids, err := m.deps.Candidates.CandidateIDs(ctx)
	if err != nil {
		m.unlatch(gen)
		return fmt.Errorf("load candidates: %w", err)
	}

	var candidates []string
	for _, id := range ids {
		if id == userID {
			continue
		}
		if _, ok := processed[id]; ok {
			continue
		}
		if _, ok := rejected[id]; ok {
			continue
		}
		candidates = append(candidates, id)
	}

	results, err := m.checkEligibility(ctx, userID, candidates)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		m.unlatch(gen)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		m.log.Debug("Discarding stale initialization", "user", userID)
		return nil
	}

	pool := make([]string, 0, len(candidates))
	for i, id := range candidates {
		switch results[i].verdict {
		case verdictFollowed:
			m.followed[id] = struct{}{}
		case verdictEligible:
			pool = append(pool, id)
			m.profiles[id] = results[i].profile
		}
	}
	m.pool = pool

	switch {
	case remaining <= 0:
		m.phase = PhaseDailyLimitReached
	case len(pool) == 0:
		m.phase = PhaseExhausted
	default:
		n := min(BufferSize, len(pool))
		m.buffer = append([]string(nil), pool[:n]...)
		m.poolCursor = n
		m.index = 0
		m.phase = PhaseReady
	}

	m.log.Info("Discovery ready", "user", userID, "pool", len(pool), "followed", len(m.followed), "phase", m.phase)
	return nil
}

// checkEligibility runs the per-candidate checks concurrently. Results keep
// the order of ids. A failed check excludes the candidate; only cancellation
// is returned as an error.
func (m *Manager) checkEligibility(ctx context.Context, userID string, ids []string) ([]eligibility, error) {
	results := make([]eligibility, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(eligibilityWorkers)
	for i, id := range ids {
		g.Go(func() error {
			following, err := m.deps.Oracle.IsFollowing(gctx, userID, id)
			if err != nil {
				if cerr := gctx.Err(); cerr != nil {
					return cerr
				}
				m.log.Debug("Follow check failed, excluding", "candidate", id, "err", err)
				return nil
			}
			if following {
				results[i] = eligibility{verdict: verdictFollowed}
				return nil
			}

			profile, err := m.deps.Oracle.Profile(gctx, id)
			if err != nil {
				if cerr := gctx.Err(); cerr != nil {
					return cerr
				}
				m.log.Debug("Profile unavailable, excluding", "candidate", id, "err", err)
				return nil
			}
			results[i] = eligibility{verdict: verdictEligible, profile: profile}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// unlatch rolls a failed initialization back so it can be retried
func (m *Manager) unlatch(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen == m.generation {
		m.phase = PhaseUninitialized
	}
}

// Refill pulls candidates from the pool when the unconsumed slack is at or
// below PreloadThreshold. It reports whether anything was added.
func (m *Manager) Refill(ctx context.Context) bool {
	m.mu.Lock()
	if m.phase != PhaseReady {
		m.mu.Unlock()
		return false
	}

	slack := len(m.buffer) - m.index
	if slack > PreloadThreshold {
		m.mu.Unlock()
		return false
	}

	take := min(PreloadThreshold+1-slack, len(m.pool)-m.poolCursor)
	if take <= 0 {
		if slack == 0 {
			m.phase = PhaseExhausted
			m.log.Info("Discovery exhausted", "user", m.userID)
		}
		m.mu.Unlock()
		return false
	}

	added := append([]string(nil), m.pool[m.poolCursor:m.poolCursor+take]...)
	m.buffer = append(m.buffer, added...)
	m.poolCursor += take
	m.phase = PhaseRefilling
	gen := m.generation
	m.mu.Unlock()

	m.log.Debug("Refilled discovery buffer", "added", added)
	m.prewarm(ctx, gen, added)

	m.mu.Lock()
	stale := gen != m.generation
	if !stale && m.phase == PhaseRefilling {
		m.phase = PhaseReady
	}
	m.mu.Unlock()

	if !stale {
		m.Refill(ctx)
	}
	return true
}

// prewarm fetches profile details for ids not already cached. Failures are
// ignored; CurrentProfile retries on demand.
func (m *Manager) prewarm(ctx context.Context, gen uint64, ids []string) {
	for _, id := range ids {
		m.mu.Lock()
		_, cached := m.profiles[id]
		m.mu.Unlock()
		if cached {
			continue
		}

		profile, err := m.deps.Oracle.Profile(ctx, id)
		if err != nil {
			m.log.Debug("Pre-warm failed", "candidate", id, "err", err)
			continue
		}

		m.mu.Lock()
		if gen == m.generation {
			m.profiles[id] = profile
		}
		m.mu.Unlock()
	}
}

func (m *Manager) currentLocked() (string, bool) {
	if m.index < len(m.buffer) {
		return m.buffer[m.index], true
	}
	return "", false
}

// checkActionLocked validates that candidateID can be swiped right now
func (m *Manager) checkActionLocked(candidateID string) error {
	switch {
	case m.phase == PhaseDailyLimitReached:
		return ErrDailyLimitReached
	case m.phase == PhaseExhausted:
		return ErrExhausted
	case !m.phase.actionable(), m.swiping:
		return ErrNotReady
	}
	if cur, ok := m.currentLocked(); !ok || cur != candidateID {
		return ErrNotCurrent
	}
	return nil
}

// beginSwipeLocked claims the current candidate for one Pass or Follow
func (m *Manager) beginSwipeLocked(candidateID string) (uint64, error) {
	if err := m.checkActionLocked(candidateID); err != nil {
		return 0, err
	}
	m.swiping = true
	return m.generation, nil
}

// advance counts the swipe and consumes candidateID. Store I/O runs outside
// mu and the result is dropped if the session changed meanwhile. Reaching
// the daily limit freezes the index on the last shown candidate.
func (m *Manager) advance(ctx context.Context, gen uint64, candidateID string) {
	rec, err := m.deps.Quota.Increment(ctx)
	counted := true
	switch {
	case errors.Is(err, ErrQuotaUnavailable):
		counted = false
		m.log.Warn("Swipe not counted, quota unreadable", "candidate", candidateID, "err", err)
	case err != nil:
		m.log.Warn("Persisting swipe quota failed", "err", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		return
	}
	m.swiping = false
	m.processed[candidateID] = struct{}{}

	if counted && m.deps.Quota.remaining(rec) <= 0 {
		m.phase = PhaseDailyLimitReached
		m.log.Info("Daily swipe limit reached", "user", m.userID, "count", rec.Count)
		return
	}

	m.index++
	if m.index > CompactionThreshold {
		for _, id := range m.buffer[:m.index] {
			delete(m.profiles, id)
		}
		m.buffer = append([]string(nil), m.buffer[m.index:]...)
		m.index = 0
	}
}

// Pass rejects the current candidate for RejectionCooldown and advances
func (m *Manager) Pass(ctx context.Context, candidateID string) error {
	m.mu.Lock()
	gen, err := m.beginSwipeLocked(candidateID)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	if err := m.deps.Cooldowns.Reject(ctx, candidateID); err != nil {
		m.log.Warn("Persisting cooldown failed", "candidate", candidateID, "err", err)
	}
	m.advance(ctx, gen, candidateID)

	m.Refill(ctx)
	return nil
}

// Follow follows the current candidate and advances. A failed follow leaves
// the candidate current so the user can retry.
func (m *Manager) Follow(ctx context.Context, candidateID string) error {
	m.mu.Lock()
	gen, err := m.beginSwipeLocked(candidateID)
	userID := m.userID
	m.mu.Unlock()
	if err != nil {
		return err
	}

	if err := m.deps.Relationships.Follow(ctx, userID, candidateID); err != nil {
		m.mu.Lock()
		if gen == m.generation {
			m.swiping = false
		}
		m.mu.Unlock()
		m.log.Warn("Follow failed", "candidate", candidateID, "err", err)
		return fmt.Errorf("%w: %w", ErrFollowFailed, err)
	}

	m.mu.Lock()
	if gen != m.generation {
		m.mu.Unlock()
		return nil
	}
	m.followed[candidateID] = struct{}{}
	m.mu.Unlock()

	m.advance(ctx, gen, candidateID)

	m.Refill(ctx)
	return nil
}

// ResetAllCooldowns clears persisted cooldowns and today's quota, drops the
// session and rebuilds it for the same user.
func (m *Manager) ResetAllCooldowns(ctx context.Context) error {
	m.mu.Lock()
	userID := m.userID
	m.generation++
	m.clearLocked()
	m.mu.Unlock()

	var errs []error
	if err := m.deps.Cooldowns.Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := m.deps.Quota.Reset(ctx); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		m.log.Error("Resetting discovery state failed", "err", err)
		return err
	}

	m.log.Info("Discovery cooldowns and quota reset", "user", userID)
	if userID == "" {
		return nil
	}
	return m.Initialize(ctx, userID)
}

// Current returns the candidate awaiting a decision. It reports false when
// no candidate can be acted on.
func (m *Manager) Current() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.phase.actionable() {
		return "", false
	}
	return m.currentLocked()
}

// CurrentProfile returns details for the current candidate, from the
// pre-warm cache when possible.
func (m *Manager) CurrentProfile(ctx context.Context) (*Profile, error) {
	m.mu.Lock()
	if !m.phase.actionable() {
		phase := m.phase
		m.mu.Unlock()
		switch phase {
		case PhaseDailyLimitReached:
			return nil, ErrDailyLimitReached
		case PhaseExhausted:
			return nil, ErrExhausted
		}
		return nil, ErrNotReady
	}
	id, ok := m.currentLocked()
	if !ok {
		m.mu.Unlock()
		return nil, ErrExhausted
	}
	if p, ok := m.profiles[id]; ok {
		m.mu.Unlock()
		return p, nil
	}
	gen := m.generation
	m.mu.Unlock()

	profile, err := m.deps.Oracle.Profile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", id, err)
	}

	m.mu.Lock()
	if gen == m.generation {
		m.profiles[id] = profile
	}
	m.mu.Unlock()
	return profile, nil
}

// IsFollowed reports whether id was followed or found already followed in
// this session
func (m *Manager) IsFollowed(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.followed[id]
	return ok
}

// Snapshot copies the current state
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, _ := m.currentLocked()
	return Snapshot{
		Phase:      m.phase,
		UserID:     m.userID,
		CurrentID:  cur,
		Index:      m.index,
		Buffer:     append([]string(nil), m.buffer...),
		PoolSize:   len(m.pool),
		PoolCursor: m.poolCursor,
		Processed:  len(m.processed),
		Followed:   len(m.followed),
	}
}

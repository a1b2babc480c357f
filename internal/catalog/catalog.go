package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/pogodata/internal/observability"
	"github.com/cory-johannsen/pogodata/internal/protoenum"
	"github.com/cory-johannsen/pogodata/internal/query"
	"github.com/cory-johannsen/pogodata/internal/source"
)

// DefaultInterval is the snapshot age after which a catalog is stale.
const DefaultInterval = 24 * time.Hour

// ErrRefreshFailed wraps a rebuild failure surfaced by a read. The read still
// answers from the previously published snapshot.
var ErrRefreshFailed = errors.New("catalog refresh failed")

// Source provides the raw inputs of a build.
type Source interface {
	Load(ctx context.Context) (*source.Bundle, error)
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics sink. nil disables metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Catalog) { c.metrics = m }
}

// WithInterval sets the staleness interval. Zero disables staleness: the
// first snapshot is served until Refresh is called.
func WithInterval(d time.Duration) Option {
	return func(c *Catalog) { c.interval = d }
}

// WithBuildTimeout aborts rebuilds that take longer than d. Zero means no
// timeout.
func WithBuildTimeout(d time.Duration) Option {
	return func(c *Catalog) { c.buildTimeout = d }
}

// WithClock replaces the wall clock used for staleness.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// WithOnBuild registers fn to run after every successful publication. Hooks
// run on the rebuilding goroutine while rebuilds are serialized.
func WithOnBuild(fn func(*Snapshot)) Option {
	return func(c *Catalog) { c.onBuild = append(c.onBuild, fn) }
}

// Catalog publishes snapshots and rebuilds them when they go stale.
//
// Readers load the published snapshot atomically. A reader that finds it
// stale queues on the rebuild mutex; once it acquires the mutex it re-checks
// and reuses a snapshot a concurrent rebuild already published, so one
// staleness episode costs a single build. Readers of a fresh snapshot never
// wait.
type Catalog struct {
	src          Source
	logger       *zap.Logger
	metrics      *observability.Metrics
	interval     time.Duration
	buildTimeout time.Duration
	now          func() time.Time
	onBuild      []func(*Snapshot)

	mu      sync.Mutex
	current atomic.Pointer[Snapshot]
}

// New creates an unbuilt catalog over src.
//
// Precondition: src must be non-nil.
// Postcondition: no build has run; the first read or Load builds.
func New(src Source, opts ...Option) *Catalog {
	c := &Catalog{
		src:      src,
		logger:   zap.NewNop(),
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Current returns the published snapshot, or nil before the first successful
// build. It never triggers a rebuild.
func (c *Catalog) Current() *Snapshot { return c.current.Load() }

// Stale reports whether the next read would rebuild.
func (c *Catalog) Stale() bool { return c.isStale(c.current.Load()) }

func (c *Catalog) isStale(s *Snapshot) bool {
	if s == nil {
		return true
	}
	if c.interval <= 0 {
		return false
	}
	return c.now().Sub(s.BuiltAt) > c.interval
}

// Load builds the first snapshot. It is a no-op once a snapshot is published.
//
// Postcondition: Returns nil iff a snapshot is published.
func (c *Catalog) Load(ctx context.Context) error {
	if c.current.Load() != nil {
		return nil
	}
	_, err := c.rebuild(ctx, c.src.Load, func(prev *Snapshot) bool { return prev == nil })
	return err
}

// Refresh rebuilds unconditionally.
//
// Postcondition: On failure the previous snapshot stays published and is
// returned with the error; it is nil when nothing was ever published.
func (c *Catalog) Refresh(ctx context.Context) (*Snapshot, error) {
	return c.rebuild(ctx, c.src.Load, nil)
}

// Restore decodes snapshot bytes produced by Snapshot.Encode, rebuilds from
// them and publishes the result.
//
// Postcondition: On failure the previous snapshot stays published.
func (c *Catalog) Restore(ctx context.Context, data []byte) (*Snapshot, error) {
	bundle, err := source.Decode(data)
	if err != nil {
		return c.current.Load(), fmt.Errorf("restoring snapshot: %w", err)
	}
	return c.rebuild(ctx, source.Static{Bundle: bundle}.Load, nil)
}

// Snapshot returns the published snapshot, rebuilding first when it is stale.
//
// Postcondition: the returned snapshot is never nil. When a rebuild fails
// the previous snapshot, or an empty one, is returned with an error wrapping
// ErrRefreshFailed.
func (c *Catalog) Snapshot(ctx context.Context) (*Snapshot, error) {
	cur := c.current.Load()
	if !c.isStale(cur) {
		return cur, nil
	}
	snap, err := c.rebuild(ctx, c.src.Load, c.isStale)
	if snap == nil {
		snap = emptySnapshot()
	}
	if err != nil {
		return snap, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	return snap, nil
}

// rebuild builds and publishes a snapshot. need is re-evaluated once the
// rebuild lock is held so that concurrent triggers build only once; nil means
// always rebuild.
func (c *Catalog) rebuild(ctx context.Context, load func(context.Context) (*source.Bundle, error), need func(*Snapshot) bool) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.current.Load()
	if need != nil && !need(prev) {
		return prev, nil
	}

	if c.buildTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.buildTimeout)
		defer cancel()
	}

	start := time.Now()
	snap, err := c.build(ctx, load)
	elapsed := time.Since(start)
	c.metrics.RecordRebuild(ctx, elapsed, err)
	if err != nil {
		c.logger.Error("catalog rebuild failed",
			zap.Error(err),
			zap.Duration("elapsed", elapsed),
			zap.Bool("serving_previous", prev != nil),
		)
		return prev, err
	}

	snap.BuiltAt = c.now()
	c.current.Store(snap)

	counts := snap.Counts()
	for kind, n := range counts {
		c.metrics.RecordEntities(ctx, kind, n)
	}
	c.logger.Info("catalog published",
		zap.String("snapshot", snap.ID.String()),
		zap.Duration("elapsed", elapsed),
		zap.Int("creatures", counts["creatures"]),
		zap.Int("moves", counts["moves"]),
		zap.Int("items", counts["items"]),
	)
	for _, fn := range c.onBuild {
		fn(snap)
	}
	return snap, nil
}

func (c *Catalog) build(ctx context.Context, load func(context.Context) (*source.Bundle, error)) (*Snapshot, error) {
	bundle, err := load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading sources: %w", err)
	}
	return Build(ctx, bundle, c.logger)
}

// Watch checks staleness every tick and rebuilds when needed, until ctx is
// done. Rebuild failures are logged and retried on the next tick.
//
// Precondition: every must be > 0.
// Postcondition: Returns ctx.Err() once ctx is done.
func (c *Catalog) Watch(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !c.Stale() {
				continue
			}
			if _, err := c.Snapshot(ctx); err != nil {
				c.logger.Warn("scheduled refresh failed", zap.Error(err))
			}
		}
	}
}

// Locale returns the text for key from the fresh snapshot.
func (c *Catalog) Locale(ctx context.Context, key string) (string, error) {
	s, err := c.Snapshot(ctx)
	return s.Locale(key), err
}

// Enum returns an enumeration from the fresh snapshot's protocol source.
func (c *Catalog) Enum(ctx context.Context, name, message string) (*protoenum.Enum, error) {
	s, err := c.Snapshot(ctx)
	e, enumErr := s.Enum(name, message)
	if enumErr != nil {
		return nil, enumErr
	}
	return e, err
}

// Creature returns the first creature matching w.
func (c *Catalog) Creature(ctx context.Context, w query.Where) (*Creature, error) {
	s, err := c.Snapshot(ctx)
	return s.Creature(w), err
}

// AllCreatures returns every creature matching w.
func (c *Catalog) AllCreatures(ctx context.Context, w query.Where) ([]*Creature, error) {
	s, err := c.Snapshot(ctx)
	return s.AllCreatures(w), err
}

// Move returns the first move matching w.
func (c *Catalog) Move(ctx context.Context, w query.Where) (*Move, error) {
	s, err := c.Snapshot(ctx)
	return s.Move(w), err
}

// AllMoves returns every move matching w.
func (c *Catalog) AllMoves(ctx context.Context, w query.Where) ([]*Move, error) {
	s, err := c.Snapshot(ctx)
	return s.AllMoves(w), err
}

// Type returns the first type matching w.
func (c *Catalog) Type(ctx context.Context, w query.Where) (*Type, error) {
	s, err := c.Snapshot(ctx)
	return s.Type(w), err
}

// AllTypes returns every type matching w.
func (c *Catalog) AllTypes(ctx context.Context, w query.Where) ([]*Type, error) {
	s, err := c.Snapshot(ctx)
	return s.AllTypes(w), err
}

// Item returns the first item matching w.
func (c *Catalog) Item(ctx context.Context, w query.Where) (*Item, error) {
	s, err := c.Snapshot(ctx)
	return s.Item(w), err
}

// AllItems returns every item matching w.
func (c *Catalog) AllItems(ctx context.Context, w query.Where) ([]*Item, error) {
	s, err := c.Snapshot(ctx)
	return s.AllItems(w), err
}

// Weather returns the first weather condition matching w.
func (c *Catalog) Weather(ctx context.Context, w query.Where) (*Weather, error) {
	s, err := c.Snapshot(ctx)
	return s.Weather(w), err
}

// AllWeather returns every weather condition matching w.
func (c *Catalog) AllWeather(ctx context.Context, w query.Where) ([]*Weather, error) {
	s, err := c.Snapshot(ctx)
	return s.AllWeather(w), err
}

// Guard returns the first guard character matching w.
func (c *Catalog) Guard(ctx context.Context, w query.Where) (*GuardCharacter, error) {
	s, err := c.Snapshot(ctx)
	return s.Guard(w), err
}

// AllGuards returns every guard character matching w.
func (c *Catalog) AllGuards(ctx context.Context, w query.Where) ([]*GuardCharacter, error) {
	s, err := c.Snapshot(ctx)
	return s.AllGuards(w), err
}

// Quest returns the first quest matching w.
func (c *Catalog) Quest(ctx context.Context, w query.Where) (*Quest, error) {
	s, err := c.Snapshot(ctx)
	return s.Quest(w), err
}

// AllQuests returns every quest matching w.
func (c *Catalog) AllQuests(ctx context.Context, w query.Where) ([]*Quest, error) {
	s, err := c.Snapshot(ctx)
	return s.AllQuests(w), err
}

// Raid returns the first raid entry matching w.
func (c *Catalog) Raid(ctx context.Context, w query.Where) (*RaidEntry, error) {
	s, err := c.Snapshot(ctx)
	return s.Raid(w), err
}

// AllRaids returns every raid entry matching w.
func (c *Catalog) AllRaids(ctx context.Context, w query.Where) ([]*RaidEntry, error) {
	s, err := c.Snapshot(ctx)
	return s.AllRaids(w), err
}

// Event returns the first event matching w.
func (c *Catalog) Event(ctx context.Context, w query.Where) (*Event, error) {
	s, err := c.Snapshot(ctx)
	return s.Event(w), err
}

// AllEvents returns every event matching w.
func (c *Catalog) AllEvents(ctx context.Context, w query.Where) ([]*Event, error) {
	s, err := c.Snapshot(ctx)
	return s.AllEvents(w), err
}

// Suggest returns the creatures whose names best resemble name.
func (c *Catalog) Suggest(ctx context.Context, name string, limit int) ([]Suggestion, error) {
	s, err := c.Snapshot(ctx)
	return s.Suggest(name, limit), err
}

package matchserver

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/config"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/events"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/events/subscribers"
	"github.com/rs/zerolog"
)

var (
	// ErrCapacity is returned when the server already hosts MaxMatches matches
	ErrCapacity = errors.New("server at capacity")
	// ErrMatchNotFound is returned for unknown match ids
	ErrMatchNotFound = errors.New("match not found")
)

// ManagerConfig configures a MatchManager. Zero durations disable the
// corresponding cleanup rule; a zero CleanupInterval disables the loop.
type ManagerConfig struct {
	MaxMatches       int // zero means unlimited
	CleanupInterval  time.Duration
	AbandonedTimeout time.Duration
	FinishedTTL      time.Duration
	LogEvents        bool
	Logger           zerolog.Logger
}

// ManagerConfigFromConfig builds a ManagerConfig from the loaded configuration
func ManagerConfigFromConfig(c *config.Config, logger zerolog.Logger) ManagerConfig {
	ms := c.Server.MatchServer
	return ManagerConfig{
		MaxMatches:       ms.MaxMatches,
		CleanupInterval:  time.Duration(ms.CleanupInterval) * time.Second,
		AbandonedTimeout: time.Duration(ms.AbandonedMatchTimeout) * time.Minute,
		FinishedTTL:      time.Duration(ms.FinishedMatchTTL) * time.Minute,
		LogEvents:        c.Development.LogEvents,
		Logger:           logger,
	}
}

// matchInstance is one hosted match. mu serializes every engine call.
type matchInstance struct {
	id     string
	engine *game.Engine
	mu     sync.Mutex

	createdAt    time.Time
	lastActivity time.Time

	idempotency *IdempotencyManager
}

// MatchManager owns every hosted match. Matches share no mutable state;
// the manager lock only guards the match table.
type MatchManager struct {
	mu      sync.RWMutex
	matches map[string]*matchInstance
	cfg     ManagerConfig
	logger  zerolog.Logger
	now     func() time.Time

	seedMu sync.Mutex
	seeds  *rand.Rand

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewMatchManager creates a manager and starts its cleanup loop
func NewMatchManager(cfg ManagerConfig) *MatchManager {
	mm := &MatchManager{
		matches: make(map[string]*matchInstance),
		cfg:     cfg,
		logger:  cfg.Logger.With().Str("component", "MatchManager").Logger(),
		now:     time.Now,
		seeds:   rand.New(rand.NewSource(time.Now().UnixNano())),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go mm.runCleanup()
	} else {
		close(mm.done)
	}
	return mm
}

// CreateMatch creates a new match in Waiting
func (mm *MatchManager) CreateMatch(ctx context.Context, mode core.Mode, wallsPerPlayer int) (*matchInstance, error) {
	bus := events.NewEventBusWithLogger(mm.logger)
	engine, err := game.NewEngine(ctx, game.MatchConfig{
		Mode:           mode,
		WallsPerPlayer: wallsPerPlayer,
		Logger:         mm.cfg.Logger,
		Rng:            mm.newRng(),
		EventBus:       bus,
	})
	if err != nil {
		return nil, err
	}

	if mm.cfg.LogEvents {
		sub := subscribers.NewLoggerSubscriber("events-"+engine.ID(), mm.cfg.Logger, zerolog.DebugLevel)
		bus.Subscribe(sub)
	}

	now := mm.now()
	match := &matchInstance{
		id:           engine.ID(),
		engine:       engine,
		createdAt:    now,
		lastActivity: now,
		idempotency:  NewIdempotencyManager(),
	}

	mm.mu.Lock()
	if mm.cfg.MaxMatches > 0 && len(mm.matches) >= mm.cfg.MaxMatches {
		current := len(mm.matches)
		mm.mu.Unlock()
		mm.logger.Warn().
			Int("current_matches", current).
			Int("max_matches", mm.cfg.MaxMatches).
			Msg("Rejecting match creation - server at capacity")
		return nil, fmt.Errorf("%d/%d matches active: %w", current, mm.cfg.MaxMatches, ErrCapacity)
	}
	mm.matches[match.id] = match
	currentCount := len(mm.matches)
	mm.mu.Unlock()

	mm.logger.Info().
		Str("match_id", match.id).
		Str("mode", mode.String()).
		Int("current_matches", currentCount).
		Msg("Created match")

	return match, nil
}

// GetMatch retrieves a match by id
func (mm *MatchManager) GetMatch(id string) (*matchInstance, bool) {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	match, exists := mm.matches[id]
	return match, exists
}

// ActiveMatches returns the number of hosted matches
func (mm *MatchManager) ActiveMatches() int {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return len(mm.matches)
}

// WithMatch runs fn with the match locked and records the activity
func (mm *MatchManager) WithMatch(id string, fn func(m *matchInstance) error) error {
	match, ok := mm.GetMatch(id)
	if !ok {
		return fmt.Errorf("match %q: %w", id, ErrMatchNotFound)
	}

	match.mu.Lock()
	defer match.mu.Unlock()

	match.lastActivity = mm.now()
	return fn(match)
}

// Close stops the cleanup loop and waits for it to exit
func (mm *MatchManager) Close() {
	mm.stopOnce.Do(func() { close(mm.stop) })
	<-mm.done
}

func (mm *MatchManager) newRng() *rand.Rand {
	mm.seedMu.Lock()
	defer mm.seedMu.Unlock()
	return rand.New(rand.NewSource(mm.seeds.Int63()))
}

// runCleanup periodically removes finished and abandoned matches
func (mm *MatchManager) runCleanup() {
	defer close(mm.done)

	ticker := time.NewTicker(mm.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mm.cleanupMatchesSafely()
		case <-mm.stop:
			return
		}
	}
}

func (mm *MatchManager) cleanupMatchesSafely() {
	defer func() {
		if r := recover(); r != nil {
			mm.logger.Error().Interface("panic", r).Msg("Match cleanup panicked")
		}
	}()
	mm.cleanupMatches()
}

// cleanupMatches removes finished matches after FinishedTTL and any match
// idle for longer than AbandonedTimeout
func (mm *MatchManager) cleanupMatches() int {
	// collect references first so match locks are never taken under the manager lock
	mm.mu.RLock()
	refs := make([]*matchInstance, 0, len(mm.matches))
	for _, match := range mm.matches {
		refs = append(refs, match)
	}
	mm.mu.RUnlock()

	now := mm.now()
	var toDelete []string

	for _, match := range refs {
		match.mu.Lock()
		idle := now.Sub(match.lastActivity)
		finished := match.engine.IsFinished()
		createdAt := match.createdAt
		match.mu.Unlock()

		reason := ""
		switch {
		case finished && mm.cfg.FinishedTTL > 0 && idle > mm.cfg.FinishedTTL:
			reason = "finished match TTL expired"
		case !finished && mm.cfg.AbandonedTimeout > 0 && idle > mm.cfg.AbandonedTimeout:
			reason = "match abandoned (no activity)"
		}
		if reason == "" {
			continue
		}

		toDelete = append(toDelete, match.id)
		mm.logger.Info().
			Str("match_id", match.id).
			Str("reason", reason).
			Dur("age", now.Sub(createdAt)).
			Dur("inactive", idle).
			Msg("Cleaning up match")
	}

	if len(toDelete) == 0 {
		return 0
	}

	mm.mu.Lock()
	for _, id := range toDelete {
		delete(mm.matches, id)
	}
	remaining := len(mm.matches)
	mm.mu.Unlock()

	mm.logger.Info().
		Int("removed", len(toDelete)).
		Int("remaining", remaining).
		Msg("Match cleanup complete")
	return len(toDelete)
}

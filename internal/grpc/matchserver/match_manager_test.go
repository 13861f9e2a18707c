package matchserver

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/config"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/testutil"
)

func TestManagerConfigFromConfig(t *testing.T) {
	c := &config.Config{}
	c.Server.MatchServer.MaxMatches = 7
	c.Server.MatchServer.CleanupInterval = 60
	c.Server.MatchServer.AbandonedMatchTimeout = 30
	c.Server.MatchServer.FinishedMatchTTL = 10
	c.Development.LogEvents = true

	cfg := ManagerConfigFromConfig(c, testutil.NopLogger())
	assert.Equal(t, 7, cfg.MaxMatches)
	assert.Equal(t, time.Minute, cfg.CleanupInterval)
	assert.Equal(t, 30*time.Minute, cfg.AbandonedTimeout)
	assert.Equal(t, 10*time.Minute, cfg.FinishedTTL)
	assert.True(t, cfg.LogEvents)
}

func TestMatchManager_Capacity(t *testing.T) {
	mm := newTestManager(2)
	defer mm.Close()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := mm.CreateMatch(ctx, core.TwoPlayer, 0)
		require.NoError(t, err)
	}

	_, err := mm.CreateMatch(ctx, core.TwoPlayer, 0)
	require.ErrorIs(t, err, ErrCapacity)
	assert.Equal(t, 2, mm.ActiveMatches())
}

func TestMatchManager_ZeroMeansUnlimited(t *testing.T) {
	mm := newTestManager(0)
	defer mm.Close()

	for i := 0; i < 25; i++ {
		_, err := mm.CreateMatch(context.Background(), core.FourPlayer, 0)
		require.NoError(t, err)
	}
	assert.Equal(t, 25, mm.ActiveMatches())
}

func TestMatchManager_CancelledContext(t *testing.T) {
	mm := newTestManager(0)
	defer mm.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := mm.CreateMatch(ctx, core.TwoPlayer, 0)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, mm.ActiveMatches())
}

func TestMatchManager_WithMatchNotFound(t *testing.T) {
	mm := newTestManager(0)
	defer mm.Close()

	err := mm.WithMatch("missing", func(*matchInstance) error { return nil })
	require.ErrorIs(t, err, ErrMatchNotFound)
}

func TestMatchManager_Cleanup(t *testing.T) {
	mm := newTestManager(0)
	defer mm.Close()
	ctx := context.Background()

	clock := time.Now()
	mm.now = func() time.Time { return clock }
	mm.cfg.FinishedTTL = 10 * time.Minute
	mm.cfg.AbandonedTimeout = 30 * time.Minute

	active, err := mm.CreateMatch(ctx, core.TwoPlayer, 0)
	require.NoError(t, err)
	finished, err := mm.CreateMatch(ctx, core.TwoPlayer, 0)
	require.NoError(t, err)
	require.NoError(t, mm.WithMatch(finished.id, func(m *matchInstance) error {
		if err := m.engine.Start(); err != nil {
			return err
		}
		return m.engine.Eliminate(core.Player2)
	}))

	assert.Zero(t, mm.cleanupMatches(), "fresh matches stay")

	clock = clock.Add(11 * time.Minute)
	assert.Equal(t, 1, mm.cleanupMatches())
	_, ok := mm.GetMatch(finished.id)
	assert.False(t, ok, "finished match expires after its TTL")

	clock = clock.Add(15 * time.Minute)
	require.NoError(t, mm.WithMatch(active.id, func(*matchInstance) error { return nil }))
	clock = clock.Add(29 * time.Minute)
	assert.Zero(t, mm.cleanupMatches(), "activity resets the abandonment clock")

	clock = clock.Add(2 * time.Minute)
	assert.Equal(t, 1, mm.cleanupMatches())
	assert.Zero(t, mm.ActiveMatches())
}

func TestMatchManager_CleanupLoopStops(t *testing.T) {
	mm := NewMatchManager(ManagerConfig{
		CleanupInterval: 5 * time.Millisecond,
		Logger:          testutil.NopLogger(),
	})

	done := make(chan struct{})
	go func() {
		mm.Close()
		mm.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not stop the cleanup loop")
	}
}

func TestMatchManager_ConcurrentMatches(t *testing.T) {
	mm := newTestManager(0)
	defer mm.Close()

	const n = 20
	ids := make([]string, n)
	for i := range ids {
		m, err := mm.CreateMatch(context.Background(), core.TwoPlayer, 0)
		require.NoError(t, err)
		require.NoError(t, m.engine.Start())
		ids[i] = m.id
	}

	var wg sync.WaitGroup
	errs := make(chan error, n*2)
	for _, id := range ids {
		id := id
		// two clients race for the same first move; exactly one wins
		for c := 0; c < 2; c++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- mm.WithMatch(id, func(m *matchInstance) error {
					return m.engine.ApplyMove(core.Player1, core.NewPosition(7, 4))
				})
			}()
		}
	}
	wg.Wait()
	close(errs)

	failures := 0
	for err := range errs {
		if err != nil {
			failures++
		}
	}
	assert.Equal(t, n, failures, fmt.Sprintf("one of each pair must be rejected, got %d", failures))

	for _, id := range ids {
		m, ok := mm.GetMatch(id)
		require.True(t, ok)
		assert.Equal(t, 1, m.engine.State().Ply())
		assert.Equal(t, core.Player2, m.engine.CurrentPlayer())
	}
}

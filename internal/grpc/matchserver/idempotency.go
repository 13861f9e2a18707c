package matchserver

import (
	"sort"
	"sync"
	"time"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	idempotencyTTL       = 24 * time.Hour
	idempotencyCacheSize = 1000
)

// idempotencyKey scopes a client key to the submitting player
type idempotencyKey struct {
	Player         core.PlayerSlot
	IdempotencyKey string
}

// idempotencyEntry stores a cached response with timestamp
type idempotencyEntry struct {
	response  *structpb.Struct
	createdAt time.Time
}

// IdempotencyManager remembers the responses of accepted actions so a
// retried request is answered without being applied twice
type IdempotencyManager struct {
	cache map[idempotencyKey]*idempotencyEntry
	mu    sync.RWMutex
	now   func() time.Time
}

// NewIdempotencyManager creates a new idempotency manager
func NewIdempotencyManager() *IdempotencyManager {
	return &IdempotencyManager{
		cache: make(map[idempotencyKey]*idempotencyEntry),
		now:   time.Now,
	}
}

// Check returns the cached response for the player's key, or nil
func (im *IdempotencyManager) Check(player core.PlayerSlot, key string) *structpb.Struct {
	if key == "" {
		return nil
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	entry, exists := im.cache[idempotencyKey{Player: player, IdempotencyKey: key}]
	if !exists || im.now().Sub(entry.createdAt) > idempotencyTTL {
		return nil
	}
	return entry.response
}

// Store caches resp for the player's key
func (im *IdempotencyManager) Store(player core.PlayerSlot, key string, resp *structpb.Struct) {
	if key == "" {
		return
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	im.cache[idempotencyKey{Player: player, IdempotencyKey: key}] = &idempotencyEntry{
		response:  resp,
		createdAt: im.now(),
	}

	if len(im.cache) > idempotencyCacheSize {
		im.cleanupOldEntriesLocked()
	}
}

// Clear drops every cached response. Used when the match history is
// rewritten by undo or reset.
func (im *IdempotencyManager) Clear() {
	im.mu.Lock()
	defer im.mu.Unlock()

	im.cache = make(map[idempotencyKey]*idempotencyEntry)
}

// Len returns the number of cached responses
func (im *IdempotencyManager) Len() int {
	im.mu.RLock()
	defer im.mu.RUnlock()

	return len(im.cache)
}

// cleanupOldEntriesLocked removes expired entries, then the oldest ones
// until the cache is back at its size limit. Must be called with mu held.
func (im *IdempotencyManager) cleanupOldEntriesLocked() {
	cutoff := im.now().Add(-idempotencyTTL)
	for key, entry := range im.cache {
		if entry.createdAt.Before(cutoff) {
			delete(im.cache, key)
		}
	}

	excess := len(im.cache) - idempotencyCacheSize
	if excess <= 0 {
		return
	}
	keys := make([]idempotencyKey, 0, len(im.cache))
	for key := range im.cache {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return im.cache[keys[i]].createdAt.Before(im.cache[keys[j]].createdAt)
	})
	for _, key := range keys[:excess] {
		delete(im.cache, key)
	}
}

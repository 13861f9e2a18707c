package matchserver

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
)

func TestIdempotencyManager(t *testing.T) {
	im := NewIdempotencyManager()
	resp := &structpb.Struct{Fields: map[string]*structpb.Value{"ok": structpb.NewBoolValue(true)}}

	assert.Nil(t, im.Check(core.Player1, "k"))
	im.Store(core.Player1, "k", resp)
	assert.Same(t, resp, im.Check(core.Player1, "k"))
	assert.Nil(t, im.Check(core.Player2, "k"), "keys are scoped per player")

	im.Store(core.Player1, "", resp)
	assert.Equal(t, 1, im.Len(), "empty keys are never cached")

	im.Clear()
	assert.Nil(t, im.Check(core.Player1, "k"))
	assert.Zero(t, im.Len())
}

func TestIdempotencyManager_Expiry(t *testing.T) {
	im := NewIdempotencyManager()
	clock := time.Now()
	im.now = func() time.Time { return clock }

	im.Store(core.Player1, "old", &structpb.Struct{})
	clock = clock.Add(idempotencyTTL + time.Second)
	assert.Nil(t, im.Check(core.Player1, "old"))

	for i := 0; i < idempotencyCacheSize; i++ {
		im.Store(core.Player2, fmt.Sprintf("key-%d", i), &structpb.Struct{})
	}
	assert.Equal(t, idempotencyCacheSize, im.Len(), "expired entries are purged once the cache overflows")
}

func TestIdempotencyManager_SizeLimitEvictsOldest(t *testing.T) {
	im := NewIdempotencyManager()
	clock := time.Now()
	im.now = func() time.Time { return clock }

	for i := 0; i < idempotencyCacheSize+5; i++ {
		clock = clock.Add(time.Second)
		im.Store(core.Player1, fmt.Sprintf("key-%d", i), &structpb.Struct{})
	}

	assert.Equal(t, idempotencyCacheSize, im.Len())
	for i := 0; i < 5; i++ {
		assert.Nil(t, im.Check(core.Player1, fmt.Sprintf("key-%d", i)), "oldest entries are evicted first")
	}
	assert.NotNil(t, im.Check(core.Player1, "key-5"))
	assert.NotNil(t, im.Check(core.Player1, fmt.Sprintf("key-%d", idempotencyCacheSize+4)))
}

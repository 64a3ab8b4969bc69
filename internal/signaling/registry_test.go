package signaling

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRemoteLeaveRemovesParticipant(t *testing.T) {
	rdb := setupTestRedis(t)

	local := NewRegistry(rdb, zap.NewNop())
	defer local.Close()
	remote := NewRegistry(rdb, zap.NewNop())
	defer remote.Close()

	room := local.GetOrCreateRoom("room-1")
	room.Add(candidate("c1"), &fakeConn{})
	require.Equal(t, 1, room.Size())

	// give the local subscriber time to attach before publishing
	time.Sleep(50 * time.Millisecond)
	remote.PublishPresence(TypePresenceLeave, "room-1", candidate("c1"))

	assert.Eventually(t, func() bool {
		return room.Size() == 0
	}, 2*time.Second, 10*time.Millisecond, "remote leave should evict the ghost participant")
}

func TestOwnPresenceEventsAreIgnored(t *testing.T) {
	rdb := setupTestRedis(t)

	reg := NewRegistry(rdb, zap.NewNop())
	defer reg.Close()

	room := reg.GetOrCreateRoom("room-1")
	room.Add(candidate("c1"), &fakeConn{})

	time.Sleep(50 * time.Millisecond)
	reg.PublishPresence(TypePresenceLeave, "room-1", candidate("c1"))

	// the publishing instance must not evict its own participant
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, room.Size())
}

package signaling

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const presenceChannel = "interview:presence"

// Registry owns the mapping from room id to connected participants, with
// explicit add/remove on connect/disconnect. When a redis client is
// provided, presence changes are fanned out to other service instances.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	rdb        *redis.Client
	instanceID string
	logger     *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewRegistry creates a registry. rdb may be nil for single-instance
// deployments; presence fan-out is skipped in that case.
func NewRegistry(rdb *redis.Client, logger *zap.Logger) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	reg := &Registry{
		rooms:      make(map[string]*Room),
		rdb:        rdb,
		instanceID: uuid.New().String(),
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
	if rdb != nil {
		go reg.subscribePresence()
	}
	return reg
}

func (reg *Registry) InstanceID() string { return reg.instanceID }

func (reg *Registry) GetOrCreateRoom(roomID string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if room, ok := reg.rooms[roomID]; ok {
		return room
	}
	room := NewRoom(roomID)
	reg.rooms[roomID] = room
	reg.logger.Info("signaling room created", zap.String("room_id", roomID))
	return room
}

func (reg *Registry) GetRoom(roomID string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room, ok := reg.rooms[roomID]
	return room, ok
}

// DropIfEmpty removes a room once its last participant left.
func (reg *Registry) DropIfEmpty(roomID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if room, ok := reg.rooms[roomID]; ok && room.Size() == 0 {
		delete(reg.rooms, roomID)
		reg.logger.Info("signaling room dropped", zap.String("room_id", roomID))
	}
}

// PublishPresence notifies peer instances of a join/leave. Best-effort.
func (reg *Registry) PublishPresence(eventType, roomID string, p ParticipantInfo) {
	if reg.rdb == nil {
		return
	}
	event := PresenceEvent{
		Type:        eventType,
		RoomID:      roomID,
		Participant: p,
		InstanceID:  reg.instanceID,
		Timestamp:   time.Now(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := reg.rdb.Publish(reg.ctx, presenceChannel, data).Err(); err != nil {
		reg.logger.Warn("presence publish failed", zap.Error(err))
	}
}

// subscribePresence mirrors participant removals from other instances so
// a user migrating instances does not linger as a ghost here.
func (reg *Registry) subscribePresence() {
	pubsub := reg.rdb.Subscribe(reg.ctx, presenceChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	reg.logger.Info("subscribed to presence events", zap.String("instance_id", reg.instanceID))

	for {
		select {
		case <-reg.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event PresenceEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			if event.InstanceID == reg.instanceID {
				continue
			}
			reg.handlePresence(&event)
		}
	}
}

func (reg *Registry) handlePresence(event *PresenceEvent) {
	room, ok := reg.GetRoom(event.RoomID)
	if !ok {
		return
	}
	if event.Type == TypePresenceLeave {
		if _, removed := room.Remove(event.Participant.ID); removed {
			reg.logger.Info("removed participant after remote leave",
				zap.String("room_id", event.RoomID),
				zap.String("participant_id", event.Participant.ID))
		}
	}
}

// Close broadcasts shutdown to every room and tears the registry down.
func (reg *Registry) Close() {
	reg.cancel()

	reg.mu.Lock()
	defer reg.mu.Unlock()
	for id, room := range reg.rooms {
		for _, p := range room.Participants(true) {
			room.Remove(p.ID)
		}
		delete(reg.rooms, id)
	}
}

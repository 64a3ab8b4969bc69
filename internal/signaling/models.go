package signaling

import (
	"encoding/json"
	"time"
)

// Participant roles. Observers are HR watchers: invisible to candidates,
// never listed to them, and their join/leave is not announced.
const (
	RoleCandidate = "candidate"
	RoleObserver  = "hr"
)

// Envelope is the relay message format. The relay is a pass-through: it
// stamps From and RoomID, forwards Payload untouched to the addressed
// recipient, and silently drops messages to disconnected recipients.
type Envelope struct {
	Type      string          `json:"type"`
	From      string          `json:"from,omitempty"`
	To        string          `json:"to,omitempty"`
	RoomID    string          `json:"room_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

// Relayed message types.
const (
	TypeOffer         = "offer"
	TypeAnswer        = "answer"
	TypeICECandidate  = "ice_candidate"
	TypePresenceJoin  = "presence_join"
	TypePresenceLeave = "presence_leave"
	TypeStreamRequest = "stream_request"
	TypeStreamReady   = "stream_ready"
	TypeRoomState     = "room_state"
)

// ParticipantInfo is the public view of a participant in room_state and
// presence messages.
type ParticipantInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// PresenceEvent fans participant changes out to other service instances
// over redis pub/sub.
type PresenceEvent struct {
	Type        string          `json:"type"` // presence_join or presence_leave
	RoomID      string          `json:"room_id"`
	Participant ParticipantInfo `json:"participant"`
	InstanceID  string          `json:"instance_id"`
	Timestamp   time.Time       `json:"timestamp"`
}

package signaling

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Authorizer validates a participant's token for a room and returns the
// participant id to use. Candidates authenticate with their interview
// token, observers with a signed room token.
type Authorizer func(role, token, roomID string) (string, error)

// Handler serves the websocket relay endpoint.
type Handler struct {
	registry  *Registry
	authorize Authorizer
	upgrader  websocket.Upgrader
	logger    *zap.Logger
}

func NewHandler(registry *Registry, authorize Authorizer, logger *zap.Logger) *Handler {
	return &Handler{
		registry:  registry,
		authorize: authorize,
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		logger:    logger,
	}
}

// ServeWS handles one relay connection for /ws/interview/{roomID}.
// Query params: token, role (candidate|hr), name.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if roomID == "" {
		http.Error(w, "roomID is required", http.StatusBadRequest)
		return
	}

	params := r.URL.Query()
	role := params.Get("role")
	if role != RoleObserver {
		role = RoleCandidate
	}
	name := params.Get("name")
	if name == "" {
		name = "Anonymous"
	}

	participantID, err := h.authorize(role, params.Get("token"), roomID)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	info := ParticipantInfo{ID: participantID, Name: name, Role: role}
	room := h.registry.GetOrCreateRoom(roomID)
	h.join(room, info, conn)
	defer h.leave(room, info)

	for {
		var msg Envelope
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		msg.From = info.ID
		msg.RoomID = roomID
		msg.Timestamp = time.Now()
		h.dispatch(room, info, &msg)
	}
}

func (h *Handler) join(room *Room, info ParticipantInfo, conn Conn) {
	room.Add(info, conn)

	if info.Role == RoleObserver {
		// Observers see everyone but announce to no one.
		room.SendTo(info.ID, Envelope{
			Type:      TypeRoomState,
			RoomID:    room.ID,
			Timestamp: time.Now(),
			Payload:   mustJSON(map[string]interface{}{"participants": room.Participants(true), "your_id": info.ID}),
		})
		return
	}

	room.SendTo(info.ID, Envelope{
		Type:      TypeRoomState,
		RoomID:    room.ID,
		Timestamp: time.Now(),
		Payload:   mustJSON(map[string]interface{}{"participants": room.Participants(false), "your_id": info.ID}),
	})
	room.SendToObservers(Envelope{
		Type:      TypePresenceJoin,
		From:      info.ID,
		RoomID:    room.ID,
		Timestamp: time.Now(),
		Payload:   mustJSON(info),
	})
	h.registry.PublishPresence(TypePresenceJoin, room.ID, info)
}

func (h *Handler) leave(room *Room, info ParticipantInfo) {
	if _, ok := room.Remove(info.ID); !ok {
		return
	}
	if info.Role != RoleObserver {
		room.SendToObservers(Envelope{
			Type:      TypePresenceLeave,
			From:      info.ID,
			RoomID:    room.ID,
			Timestamp: time.Now(),
			Payload:   mustJSON(info),
		})
		h.registry.PublishPresence(TypePresenceLeave, room.ID, info)
	}
	h.registry.DropIfEmpty(room.ID)
}

func (h *Handler) dispatch(room *Room, info ParticipantInfo, msg *Envelope) {
	switch msg.Type {
	case TypeOffer, TypeAnswer, TypeICECandidate, TypeStreamRequest:
		if msg.To == "" {
			return
		}
		room.SendTo(msg.To, msg)
	case TypeStreamReady:
		// Candidate announces available streams; observers only.
		room.SendToObservers(msg)
	default:
		h.logger.Debug("unknown signaling message type",
			zap.String("type", msg.Type),
			zap.String("from", info.ID))
	}
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

package signaling

import (
	"sync"
	"time"
)

// Conn is the websocket surface the relay needs. *websocket.Conn
// satisfies it; tests substitute an in-memory recorder.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type participant struct {
	info ParticipantInfo
	conn Conn
}

// Room holds the currently connected participants of one interview room.
// The room id is the interview session id.
type Room struct {
	ID        string
	CreatedAt time.Time

	mu           sync.RWMutex
	participants map[string]*participant
}

func NewRoom(id string) *Room {
	return &Room{
		ID:           id,
		CreatedAt:    time.Now(),
		participants: make(map[string]*participant),
	}
}

func (r *Room) Add(info ParticipantInfo, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.participants[info.ID]; ok {
		old.conn.Close()
	}
	r.participants[info.ID] = &participant{info: info, conn: conn}
}

func (r *Room) Remove(id string) (ParticipantInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return ParticipantInfo{}, false
	}
	p.conn.Close()
	delete(r.participants, id)
	return p.info, true
}

func (r *Room) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.participants)
}

// SendTo delivers to one participant. Best-effort: a disconnected
// recipient is a silent drop, an errored write evicts the connection.
func (r *Room) SendTo(id string, v interface{}) {
	r.mu.RLock()
	p, ok := r.participants[id]
	r.mu.RUnlock()
	if !ok {
		return
	}
	if err := p.conn.WriteJSON(v); err != nil {
		r.Remove(id)
	}
}

// SendToObservers delivers to every observer in the room.
func (r *Room) SendToObservers(v interface{}) {
	for _, p := range r.snapshot() {
		if p.info.Role == RoleObserver {
			r.SendTo(p.info.ID, v)
		}
	}
}

// Participants lists the room members. Observers are excluded unless
// includeObservers is set; candidates must never learn an observer is
// watching.
func (r *Room) Participants(includeObservers bool) []ParticipantInfo {
	var out []ParticipantInfo
	for _, p := range r.snapshot() {
		if !includeObservers && p.info.Role == RoleObserver {
			continue
		}
		out = append(out, p.info)
	}
	return out
}

func (r *Room) snapshot() []*participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, p)
	}
	return out
}

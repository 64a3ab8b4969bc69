package signaling

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func allowAll(role, token, roomID string) (string, error) {
	if token == "" {
		return "", errors.New("missing token")
	}
	return token, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *Registry) {
	t.Helper()
	registry := NewRegistry(nil, zap.NewNop())
	t.Cleanup(registry.Close)

	handler := NewHandler(registry, allowAll, zap.NewNop())
	router := chi.NewRouter()
	router.Get("/ws/interview/{roomID}", handler.ServeWS)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, registry
}

func dial(t *testing.T, server *httptest.Server, roomID, token, role string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") +
		"/ws/interview/" + roomID + "?token=" + token + "&role=" + role + "&name=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Envelope
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestConnectRejectsMissingToken(t *testing.T) {
	server, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/interview/room-1?role=candidate"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCandidateRoomStateExcludesObservers(t *testing.T) {
	server, _ := newTestServer(t)

	hr := dial(t, server, "room-1", "hr1", RoleObserver)
	state := readEnvelope(t, hr)
	require.Equal(t, TypeRoomState, state.Type)

	cand := dial(t, server, "room-1", "cand1", RoleCandidate)
	state = readEnvelope(t, cand)
	require.Equal(t, TypeRoomState, state.Type)

	var payload struct {
		Participants []ParticipantInfo `json:"participants"`
		YourID       string            `json:"your_id"`
	}
	require.NoError(t, json.Unmarshal(state.Payload, &payload))
	assert.Equal(t, "cand1", payload.YourID)
	for _, p := range payload.Participants {
		assert.NotEqual(t, RoleObserver, p.Role, "candidates must not see observers")
	}

	// the observer does get the join announcement
	joined := readEnvelope(t, hr)
	assert.Equal(t, TypePresenceJoin, joined.Type)
	assert.Equal(t, "cand1", joined.From)
}

func TestDirectedRelay(t *testing.T) {
	server, _ := newTestServer(t)

	a := dial(t, server, "room-1", "userA", RoleCandidate)
	readEnvelope(t, a) // room_state
	b := dial(t, server, "room-1", "userB", RoleCandidate)
	readEnvelope(t, b) // room_state

	offer := Envelope{
		Type:    TypeOffer,
		To:      "userB",
		Payload: json.RawMessage(`{"sdp":"v=0"}`),
	}
	require.NoError(t, a.WriteJSON(offer))

	got := readEnvelope(t, b)
	assert.Equal(t, TypeOffer, got.Type)
	assert.Equal(t, "userA", got.From, "the relay must stamp the sender")
	assert.Equal(t, "room-1", got.RoomID)
	assert.JSONEq(t, `{"sdp":"v=0"}`, string(got.Payload), "payload must pass through untouched")
}

func TestStreamReadyGoesToObserversOnly(t *testing.T) {
	server, _ := newTestServer(t)

	hr := dial(t, server, "room-1", "hr1", RoleObserver)
	readEnvelope(t, hr) // room_state

	cand := dial(t, server, "room-1", "cand1", RoleCandidate)
	readEnvelope(t, cand) // room_state
	readEnvelope(t, hr)   // presence_join for cand1

	require.NoError(t, cand.WriteJSON(Envelope{Type: TypeStreamReady, Payload: json.RawMessage(`{"streams":["camera"]}`)}))

	got := readEnvelope(t, hr)
	assert.Equal(t, TypeStreamReady, got.Type)
	assert.Equal(t, "cand1", got.From)
}

func TestLeaveAnnouncedToObserversOnly(t *testing.T) {
	server, registry := newTestServer(t)

	hr := dial(t, server, "room-1", "hr1", RoleObserver)
	readEnvelope(t, hr)

	cand := dial(t, server, "room-1", "cand1", RoleCandidate)
	readEnvelope(t, cand)
	readEnvelope(t, hr) // presence_join

	cand.Close()

	left := readEnvelope(t, hr)
	assert.Equal(t, TypePresenceLeave, left.Type)
	assert.Equal(t, "cand1", left.From)

	assert.Eventually(t, func() bool {
		room, ok := registry.GetRoom("room-1")
		return ok && room.Size() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/pmmsinno/lightrace/game/service"
	"github.com/pmmsinno/lightrace/game/session"
)

// MockService implements service.GameService for transport tests.
type MockService struct {
	mu            sync.Mutex
	JoinFunc      func(connID, name string) error
	joined        []string
	holdStarts    []string
	holdEnds      []string
	disconnects   []string
	kicked        []string
	startCalls    int
	resetCalls    int
	displayCalls  []string
	snapshotValue session.Snapshot
}

func (m *MockService) Join(ctx context.Context, connID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joined = append(m.joined, name)
	if m.JoinFunc != nil {
		return m.JoinFunc(connID, name)
	}
	return nil
}

func (m *MockService) HoldStart(ctx context.Context, connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holdStarts = append(m.holdStarts, connID)
}

func (m *MockService) HoldEnd(ctx context.Context, connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holdEnds = append(m.holdEnds, connID)
}

func (m *MockService) Disconnect(ctx context.Context, connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnects = append(m.disconnects, connID)
}

func (m *MockService) StartGame(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startCalls++
}

func (m *MockService) ResetLobby(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetCalls++
}

func (m *MockService) KickPlayer(ctx context.Context, playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kicked = append(m.kicked, playerID)
}

func (m *MockService) RegisterDisplay(ctx context.Context, connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.displayCalls = append(m.displayCalls, connID)
}

func (m *MockService) Snapshot(ctx context.Context) session.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotValue
}

var _ service.GameService = (*MockService)(nil)

func newTestHub() (*Hub, *MockService) {
	hub := NewHub(zerolog.Nop())
	svc := &MockService{}
	hub.Bind(svc)
	return hub, svc
}

func addClient(hub *Hub, id string) *Client {
	c := &Client{hub: hub, send: make(chan []byte, sendBuffer), id: id}
	hub.mu.Lock()
	hub.clients[id] = c
	hub.mu.Unlock()
	return c
}

func TestToPlayerDeliversEnvelope(t *testing.T) {
	hub, _ := newTestHub()
	c := addClient(hub, "p1")

	hub.ToPlayer("p1", session.EventCountdown, session.CountdownPayload{Value: 3})

	select {
	case data := <-c.send:
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if env.Type != session.EventCountdown {
			t.Errorf("type = %s, want %s", env.Type, session.EventCountdown)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no frame delivered")
	}
}

func TestToPlayerUnknownIDIsNoOp(t *testing.T) {
	hub, _ := newTestHub()
	addClient(hub, "p1")
	hub.ToPlayer("ghost", session.EventKicked, nil)
}

func TestToDisplayOnlyReachesDisplays(t *testing.T) {
	hub, _ := newTestHub()
	player := addClient(hub, "p1")
	tv := addClient(hub, "tv1")
	hub.promoteDisplay(tv)

	hub.ToDisplay(session.EventGameState, nil)

	select {
	case <-tv.send:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("display did not receive broadcast")
	}
	select {
	case <-player.send:
		t.Fatal("player received a display broadcast")
	default:
	}
}

func TestFullBufferDropsClient(t *testing.T) {
	hub, _ := newTestHub()
	c := addClient(hub, "slow")
	for i := 0; i < sendBuffer; i++ {
		c.send <- []byte("x")
	}

	hub.ToPlayer("slow", session.EventGameState, nil)

	hub.mu.Lock()
	_, stillThere := hub.clients["slow"]
	hub.mu.Unlock()
	if stillThere {
		t.Error("client with full buffer was not dropped")
	}
	// The send channel must be closed so the write pump exits.
	drained := 0
	for range c.send {
		drained++
	}
	if drained != sendBuffer {
		t.Errorf("drained %d frames, want %d", drained, sendBuffer)
	}
}

func TestDoubleRemoveIsSafe(t *testing.T) {
	hub, _ := newTestHub()
	c := addClient(hub, "p1")
	hub.unregister(c)
	hub.unregister(c) // second close must not panic
}

func TestDispatchRoutesActions(t *testing.T) {
	hub, svc := newTestHub()
	c := addClient(hub, "p1")

	c.dispatch(inboundMessage{Type: actionJoinGame, Data: json.RawMessage(`{"name":"Ana"}`)})
	c.dispatch(inboundMessage{Type: actionHoldStart})
	c.dispatch(inboundMessage{Type: actionHoldEnd})
	c.dispatch(inboundMessage{Type: actionStartGame})
	c.dispatch(inboundMessage{Type: actionResetLobby})
	c.dispatch(inboundMessage{Type: actionKickPlayer, Data: json.RawMessage(`{"player_id":"p9"}`)})
	c.dispatch(inboundMessage{Type: "no-such-action"})

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.joined) != 1 || svc.joined[0] != "Ana" {
		t.Errorf("joined = %v", svc.joined)
	}
	if len(svc.holdStarts) != 1 || len(svc.holdEnds) != 1 {
		t.Errorf("holds = %v / %v", svc.holdStarts, svc.holdEnds)
	}
	if svc.startCalls != 1 || svc.resetCalls != 1 {
		t.Errorf("start/reset = %d/%d", svc.startCalls, svc.resetCalls)
	}
	if len(svc.kicked) != 1 || svc.kicked[0] != "p9" {
		t.Errorf("kicked = %v", svc.kicked)
	}
}

func TestDispatchJoinErrorIsSentBack(t *testing.T) {
	hub, svc := newTestHub()
	svc.JoinFunc = func(connID, name string) error { return session.ErrNameTaken }
	c := addClient(hub, "p1")

	c.dispatch(inboundMessage{Type: actionJoinGame, Data: json.RawMessage(`{"name":"Ana"}`)})

	select {
	case data := <-c.send:
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if env.Type != session.EventJoinError {
			t.Errorf("type = %s, want %s", env.Type, session.EventJoinError)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("no joinError frame")
	}
}

func TestDispatchJoinTVPromotesAndRegisters(t *testing.T) {
	hub, svc := newTestHub()
	c := addClient(hub, "tv1")

	c.dispatch(inboundMessage{Type: actionJoinTV})

	hub.mu.Lock()
	_, isDisplay := hub.displays["tv1"]
	hub.mu.Unlock()
	if !isDisplay {
		t.Error("joinTV did not promote the connection")
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.displayCalls) != 1 || svc.displayCalls[0] != "tv1" {
		t.Errorf("displayCalls = %v", svc.displayCalls)
	}
}

func TestWebSocketUpgradeAndDisconnect(t *testing.T) {
	hub, svc := newTestHub()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	waitFor(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 1
	}, "client registration")

	conn.Close()

	waitFor(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.clients) == 0
	}, "client cleanup")
	waitFor(t, func() bool {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		return len(svc.disconnects) == 1
	}, "disconnect callback")
}

func TestWebSocketRoundTrip(t *testing.T) {
	hub, _ := newTestHub()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(Envelope{Type: actionJoinTV}); err != nil {
		t.Fatalf("write: %v", err)
	}

	// joinTV lands the connection in the display room; a broadcast must come
	// through on the wire.
	waitFor(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.displays) == 1
	}, "display registration")

	hub.ToDisplay(session.EventCountdown, session.CountdownPayload{Value: 2})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var env Envelope
	for {
		if err := conn.ReadJSON(&env); err != nil {
			t.Fatalf("read: %v", err)
		}
		// The mock RegisterDisplay sends nothing, so the first frame is ours,
		// but tolerate any ordering.
		if env.Type == session.EventCountdown {
			break
		}
	}
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

package ws

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"mysteryletter/internal/app"
	"mysteryletter/internal/config"
	"mysteryletter/internal/domain"
	"mysteryletter/internal/lobby"
	"mysteryletter/internal/logger"
	"mysteryletter/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

type frame struct {
	Type          string              `json:"type"`
	RoomID        string              `json:"room_id"`
	ParticipantID string              `json:"participant_id"`
	Ticket        string              `json:"ticket"`
	Resumed       bool                `json:"resumed"`
	State         *app.ProjectedState `json:"state"`
	Event         *struct {
		Kind    app.EventKind   `json:"kind"`
		Payload json.RawMessage `json:"payload"`
	} `json:"event"`
	Error *lobby.ErrorPayload `json:"error"`
}

type testServer struct {
	*httptest.Server
	registry *lobby.Registry
}

func newTestServer(t *testing.T, draws ...domain.CardKind) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	game := config.DefaultGameConfig()
	game.BotThinkDelayMs = 0
	opts := lobby.Options{Game: game, Logger: logger.Discard(), Seed: 3}
	if len(draws) > 0 {
		opts.DeckBuilder = func(*rand.Rand) []domain.CardKind { return domain.StackedDeck(draws...) }
	}
	registry := lobby.NewRegistry(opts)
	tickets := app.NewTicketService("test-secret", "mysteryletter-test", time.Hour)
	h := NewHandler(registry, tickets, config.ServerConfig{}, logger.Discard())
	srv := httptest.NewServer(NewRouter(h, metrics.New(prometheus.NewRegistry())))
	t.Cleanup(func() {
		srv.Close()
		registry.Close()
	})
	return &testServer{Server: srv, registry: registry}
}

func (s *testServer) dial(t *testing.T, query url.Values) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	u := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws?" + query.Encode()
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Cleanup(func() { conn.Close() })
	}
	return conn, resp, err
}

func (s *testServer) join(t *testing.T, room, name string) (*websocket.Conn, frame) {
	t.Helper()
	conn, _, err := s.dial(t, url.Values{"room": {room}, "name": {name}})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	welcome := readFrame(t, conn)
	if welcome.Type != "welcome" {
		t.Fatalf("first frame = %+v", welcome)
	}
	return conn, welcome
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return f
}

// readUntil skips frames until match accepts one.
func readUntil(t *testing.T, conn *websocket.Conn, what string, match func(frame) bool) frame {
	t.Helper()
	for i := 0; i < 100; i++ {
		if f := readFrame(t, conn); match(f) {
			return f
		}
	}
	t.Fatalf("never received %s", what)
	return frame{}
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
}

func isError(code string) func(frame) bool {
	return func(f frame) bool { return f.Type == lobby.MessageError && f.Error.Code == code }
}

func TestJoinReceivesWelcomeAndState(t *testing.T) {
	srv := newTestServer(t)
	conn, welcome := srv.join(t, "abcd", "Ada")

	if welcome.RoomID != "ABCD" || welcome.ParticipantID == "" || welcome.Ticket == "" || welcome.Resumed {
		t.Fatalf("welcome = %+v", welcome)
	}
	state := readUntil(t, conn, "state", func(f frame) bool { return f.Type == lobby.MessageState })
	if len(state.State.Roster) != 1 || state.State.You.ID != welcome.ParticipantID {
		t.Fatalf("state = %+v", state.State)
	}
	if srv.registry.Len() != 1 {
		t.Fatalf("rooms = %d", srv.registry.Len())
	}
}

func TestCommandsReportErrorsToCaller(t *testing.T) {
	srv := newTestServer(t)
	conn, welcome := srv.join(t, "ERRS", "Ada")

	send(t, conn, Command{Type: CmdStartRound})
	readUntil(t, conn, "not_host", isError("not_host"))

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	readUntil(t, conn, "bad_request", isError("bad_request"))

	send(t, conn, Command{Type: "shuffle"})
	readUntil(t, conn, "unknown command", isError("bad_request"))

	send(t, conn, Command{Type: CmdClaimHost})
	readUntil(t, conn, "host state", func(f frame) bool {
		return f.Type == lobby.MessageState && f.State.HostID == welcome.ParticipantID
	})

	send(t, conn, Command{Type: CmdStartRound})
	readUntil(t, conn, "insufficient_players", isError("insufficient_players"))
}

func TestPlayOverWebsocket(t *testing.T) {
	srv := newTestServer(t, domain.Watcher, domain.Seer, domain.Aegis)
	ada, adaWelcome := srv.join(t, "PLAY", "Ada")
	bea, _ := srv.join(t, "PLAY", "Bea")

	send(t, ada, Command{Type: CmdClaimHost})
	send(t, ada, Command{Type: CmdStartRound})
	readUntil(t, ada, "must draw", func(f frame) bool {
		return f.Type == lobby.MessageState && f.State.You.MustDraw
	})

	send(t, ada, Command{Type: CmdDraw})
	readUntil(t, ada, "two cards", func(f frame) bool {
		return f.Type == lobby.MessageState && len(f.State.You.Hand) == 2
	})

	send(t, ada, Command{Type: CmdPlay, Card: domain.Aegis})
	played := readUntil(t, bea, "card_played", func(f frame) bool {
		return f.Type == lobby.MessageEvent && f.Event.Kind == app.EventCardPlayed
	})
	var p app.CardPlayedPayload
	if err := json.Unmarshal(played.Event.Payload, &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.ActorID != adaWelcome.ParticipantID || p.Card != domain.Aegis {
		t.Fatalf("played = %+v", p)
	}

	state := readUntil(t, bea, "bea's turn", func(f frame) bool {
		return f.Type == lobby.MessageState && f.State.CurrentTurnID == f.State.You.ID
	})
	for _, e := range state.State.Roster {
		if e.ID == adaWelcome.ParticipantID && !e.Protected {
			t.Fatal("ada is not shown as protected")
		}
	}
	if len(state.State.You.Hand) != 1 || state.State.You.Hand[0] != domain.Seer {
		t.Fatalf("bea hand = %v", state.State.You.Hand)
	}
}

func TestTicketRebindsSeat(t *testing.T) {
	srv := newTestServer(t)
	first, welcome := srv.join(t, "BACK", "Ada")
	readUntil(t, first, "state", func(f frame) bool { return f.Type == lobby.MessageState })

	second, _, err := srv.dial(t, url.Values{"ticket": {welcome.Ticket}})
	if err != nil {
		t.Fatalf("dial with ticket: %v", err)
	}
	again := readFrame(t, second)
	if !again.Resumed || again.ParticipantID != welcome.ParticipantID || again.RoomID != "BACK" {
		t.Fatalf("resume welcome = %+v", again)
	}
	state := readUntil(t, second, "state", func(f frame) bool { return f.Type == lobby.MessageState })
	if state.State.You.ID != welcome.ParticipantID || len(state.State.Roster) != 1 {
		t.Fatalf("resumed state = %+v", state.State)
	}
}

func TestRejectsBadTicket(t *testing.T) {
	srv := newTestServer(t)
	_, resp, err := srv.dial(t, url.Values{"ticket": {"garbage"}})
	if err == nil {
		t.Fatal("dial with a bad ticket succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("response = %+v", resp)
	}
}

func TestRoomStateEndpoint(t *testing.T) {
	srv := newTestServer(t)
	conn, _ := srv.join(t, "LOOK", "Ada")
	readUntil(t, conn, "state", func(f frame) bool { return f.Type == lobby.MessageState })

	resp, err := http.Get(srv.URL + "/rooms/look")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var state app.ProjectedState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if state.You != nil || len(state.Roster) != 1 {
		t.Fatalf("public state = %+v", state)
	}

	missing, err := http.Get(srv.URL + "/rooms/NOPE")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("missing room status = %d", missing.StatusCode)
	}
}

func TestLeaveClosesRoom(t *testing.T) {
	srv := newTestServer(t)
	conn, _ := srv.join(t, "GONE", "Ada")
	readUntil(t, conn, "state", func(f frame) bool { return f.Type == lobby.MessageState })

	send(t, conn, Command{Type: CmdLeave})
	deadline := time.Now().Add(3 * time.Second)
	for srv.registry.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("room was not removed after the last participant left")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

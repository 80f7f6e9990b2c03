package app

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"mysteryletter/internal/domain"
)

func TestJoinRejectedDuringRound(t *testing.T) {
	svc, session := newTable(t, nil, "p1", "p2")
	mustStart(t, svc, session)

	if _, err := svc.Join(session, "p3", "Late"); !errors.Is(err, domain.ErrRoundInProgress) {
		t.Fatalf("Join during round err = %v, want ErrRoundInProgress", err)
	}
}

func TestJoinNormalizesName(t *testing.T) {
	svc := NewService(nil)
	session := domain.NewSession("R")
	events, err := svc.Join(session, "p1", "   ")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if session.Participants["p1"].Name != domain.DefaultName {
		t.Fatalf("name = %q", session.Participants["p1"].Name)
	}
	if len(events) != 1 || events[0].Kind != EventParticipantJoined {
		t.Fatalf("events = %+v", events)
	}
}

func TestClaimHost(t *testing.T) {
	svc := NewService(nil)
	session := domain.NewSession("R")
	svc.Join(session, "a", "A")
	svc.Join(session, "b", "B")

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "first claim", id: "a"},
		{name: "repeat claim is idempotent", id: "a"},
		{name: "second claimant rejected", id: "b", wantErr: domain.ErrHostAlreadyClaimed},
		{name: "unknown participant", id: "zz", wantErr: domain.ErrUnknownParticipant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ClaimHost(session, tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ClaimHost(%s) = %v, want %v", tt.id, err, tt.wantErr)
			}
		})
	}
	if session.HostID != "a" {
		t.Fatalf("host = %s, want a", session.HostID)
	}
}

func TestConfigureBots(t *testing.T) {
	n := 0
	svc := NewService(nil, WithBotNamer(func(i int) (string, string) {
		n++
		return fmt.Sprintf("bot-%d", n), fmt.Sprintf("Bot %d", i+1)
	}))
	session := domain.NewSession("R")
	svc.Join(session, "host", "Host")
	svc.Join(session, "guest", "Guest")
	svc.ClaimHost(session, "host")

	tests := []struct {
		name      string
		requester string
		count     int
		skill     int
		wantErr   error
		wantBots  int
	}{
		{name: "not host", requester: "guest", count: 2, skill: 1, wantErr: domain.ErrNotHost},
		{name: "too many", requester: "host", count: 4, skill: 1, wantErr: domain.ErrInvalidBotConfig},
		{name: "bad skill", requester: "host", count: 1, skill: 4, wantErr: domain.ErrInvalidBotConfig},
		{name: "three bots", requester: "host", count: 3, skill: 2, wantBots: 3},
		{name: "replaced by one", requester: "host", count: 1, skill: 3, wantBots: 1},
		{name: "cleared", requester: "host", count: 0, skill: 1, wantBots: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ConfigureBots(session, tt.requester, tt.count, tt.skill)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ConfigureBots err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			bots := session.BotIDs()
			if len(bots) != tt.wantBots {
				t.Fatalf("bots = %v, want %d", bots, tt.wantBots)
			}
			for _, id := range bots {
				if p := session.Participants[id]; p.SkillLevel != tt.skill || !p.IsBot {
					t.Fatalf("bot %s = %+v", id, p)
				}
			}
		})
	}
}

func TestConfigureBotsRespectsSeatLimit(t *testing.T) {
	svc := NewService(nil)
	session := domain.NewSession("R")
	for i := 0; i < 4; i++ {
		svc.Join(session, fmt.Sprintf("h%d", i), "H")
	}
	svc.ClaimHost(session, "h0")
	if _, err := svc.ConfigureBots(session, "h0", 3, 1); !errors.Is(err, domain.ErrRoomFull) {
		t.Fatalf("err = %v, want ErrRoomFull", err)
	}
}

func TestStartRoundGuards(t *testing.T) {
	svc, session := newTable(t, nil, "p1")
	if _, err := svc.StartRound(session, "p1"); !errors.Is(err, domain.ErrInsufficientPlayers) {
		t.Fatalf("solo start err = %v", err)
	}
	svc.Join(session, "p2", "P2")
	if _, err := svc.StartRound(session, "p2"); !errors.Is(err, domain.ErrNotHost) {
		t.Fatalf("non-host start err = %v", err)
	}
	mustStart(t, svc, session)
	if _, err := svc.StartRound(session, "p1"); !errors.Is(err, domain.ErrRoundInProgress) {
		t.Fatalf("double start err = %v", err)
	}
}

func TestStartRoundDealsOneCardEach(t *testing.T) {
	svc, session := newTable(t, []domain.CardKind{domain.Seer, domain.Aegis, domain.Duelist}, "p1", "p2", "p3")
	events := mustStart(t, svc, session)

	want := map[string]domain.CardKind{"p1": domain.Seer, "p2": domain.Aegis, "p3": domain.Duelist}
	for id, card := range want {
		p := session.Participants[id]
		if len(p.Hand) != 1 || p.Hand[0] != card {
			t.Fatalf("%s hand = %v, want [%s]", id, p.Hand, card)
		}
	}
	if session.CurrentTurnID != "p1" || session.RoundNumber != 1 || !session.RoundActive() {
		t.Fatalf("turn=%s round=%d phase=%s", session.CurrentTurnID, session.RoundNumber, session.Phase)
	}
	if len(session.Deck) != domain.TotalCards()-3 {
		t.Fatalf("deck = %d", len(session.Deck))
	}

	private := 0
	for _, ev := range events {
		if ev.Kind == EventCardDrawn {
			private++
			if len(ev.Recipients) != 1 {
				t.Fatalf("deal event must be private: %+v", ev)
			}
		}
	}
	if private != 3 {
		t.Fatalf("deal events = %d, want 3", private)
	}
	checkInvariants(t, session)
}

func TestLeaveDuringOwnTurnAdvances(t *testing.T) {
	svc, session := newTable(t, nil, "p1", "p2", "p3")
	mustStart(t, svc, session)

	events, err := svc.Leave(session, "p1", LeaveReasonDisconnected)
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if _, ok := session.Participant("p1"); ok {
		t.Fatal("p1 still seated")
	}
	if session.CurrentTurnID != "p2" {
		t.Fatalf("turn = %s, want p2", session.CurrentTurnID)
	}
	if _, ok := findEvent(events, EventEliminated); !ok {
		t.Fatal("departure mid-round must be reported as an elimination")
	}
	if got := session.CardsAccountedFor(); got != domain.TotalCards() {
		t.Fatalf("cards accounted = %d", got)
	}
	if session.HostID != "" {
		t.Fatalf("host should be released, got %s", session.HostID)
	}
}

func TestLeaveLeavingOneStandingEndsRound(t *testing.T) {
	svc, session := newTable(t, nil, "p1", "p2")
	mustStart(t, svc, session)

	events, err := svc.Leave(session, "p2", LeaveReasonLeft)
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	ev, ok := findEvent(events, EventRoundEnded)
	if !ok {
		t.Fatal("expected round end")
	}
	if p := ev.Payload.(RoundEndedPayload); p.WinnerID != "p1" || p.Reason != RoundEndLastStanding {
		t.Fatalf("round end = %+v", p)
	}
	if session.Participants["p1"].Tokens != 1 {
		t.Fatalf("tokens = %d", session.Participants["p1"].Tokens)
	}
}

func TestLastHumanLeavingRemovesBots(t *testing.T) {
	svc := NewService(nil)
	session := domain.NewSession("R")
	svc.Join(session, "h", "H")
	svc.ClaimHost(session, "h")
	if _, err := svc.ConfigureBots(session, "h", 2, 1); err != nil {
		t.Fatalf("ConfigureBots: %v", err)
	}
	if _, err := svc.StartRound(session, "h"); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if _, err := svc.Leave(session, "h", LeaveReasonDisconnected); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if session.Len() != 0 {
		t.Fatalf("seats left = %v", session.Seating)
	}
}

func TestKick(t *testing.T) {
	svc, session := newTable(t, nil, "p1", "p2", "p3")
	if _, err := svc.Kick(session, "p2", "p3"); !errors.Is(err, domain.ErrNotHost) {
		t.Fatalf("kick by guest err = %v", err)
	}
	if _, err := svc.Kick(session, "p1", "nobody"); !errors.Is(err, domain.ErrUnknownTarget) {
		t.Fatalf("kick unknown err = %v", err)
	}
	events, err := svc.Kick(session, "p1", "p3")
	if err != nil {
		t.Fatalf("Kick: %v", err)
	}
	ev, ok := findEvent(events, EventParticipantLeft)
	if !ok || ev.Payload.(ParticipantLeftPayload).Reason != LeaveReasonKicked {
		t.Fatalf("events = %+v", events)
	}
}

func TestNewServiceDefaults(t *testing.T) {
	svc := NewService(nil)
	if svc.Rand() == nil || svc.AutoDraw() {
		t.Fatal("unexpected defaults")
	}
	svc = NewService(rand.New(rand.NewSource(3)), WithAutoDraw(true))
	if !svc.AutoDraw() {
		t.Fatal("auto draw option ignored")
	}
}

package app

import (
	"errors"
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"mysteryletter/internal/domain"
)

func TestScenarioProtectedFromGuess(t *testing.T) {
	svc, session := newTable(t, []domain.CardKind{domain.Duelist, domain.Watcher, domain.Aegis, domain.Seer}, "p1", "p2")
	mustStart(t, svc, session)

	mustDraw(t, svc, session, "p1")
	mustPlay(t, svc, session, PlayRequest{ActorID: "p1", Card: domain.Aegis})
	if !session.Participants["p1"].Protected {
		t.Fatal("p1 should be protected")
	}

	mustDraw(t, svc, session, "p2")
	out, _ := mustPlay(t, svc, session, PlayRequest{ActorID: "p2", Card: domain.Watcher, TargetID: "p1", Guess: domain.Duelist})
	if !out.NoOp || len(out.Eliminated) != 0 {
		t.Fatalf("outcome = %+v, want no-op", out)
	}
	if !session.Participants["p1"].Alive {
		t.Fatal("protected participant was eliminated")
	}
	checkInvariants(t, session)
}

func TestScenarioDuelElimination(t *testing.T) {
	svc, session := newTable(t, []domain.CardKind{domain.Courier, domain.Seer, domain.Watcher, domain.Duelist}, "p1", "p2", "p3")
	mustStart(t, svc, session)

	mustDraw(t, svc, session, "p1")
	mustPlay(t, svc, session, PlayRequest{ActorID: "p1", Card: domain.Duelist, TargetID: "p2"})

	p2 := session.Participants["p2"]
	if p2.Alive || len(p2.Hand) != 0 {
		t.Fatalf("p2 = %+v, want eliminated with an empty hand", p2)
	}
	if domain.CountKinds(session.Discard)[domain.Seer] != 1 {
		t.Fatalf("discard = %v, want p2's seer", session.Discard)
	}
	if session.CurrentTurnID != "p3" {
		t.Fatalf("turn = %s, want p3", session.CurrentTurnID)
	}
	checkInvariants(t, session)
}

func TestScenarioShowdown(t *testing.T) {
	svc, session := newTable(t, []domain.CardKind{domain.Switch, domain.Aegis, domain.Heir}, "p1", "p2")
	mustStart(t, svc, session)

	// Leave only the Heir in the deck.
	top := len(session.Deck) - 1
	session.Discard = append(session.Discard, session.Deck[:top]...)
	session.Deck = session.Deck[top:]
	checkInvariants(t, session)

	mustDraw(t, svc, session, "p1")
	out, events := mustPlay(t, svc, session, PlayRequest{ActorID: "p1", Card: domain.Heir})
	if !out.RoundEnded {
		t.Fatalf("outcome = %+v, want round end", out)
	}
	ev, ok := findEvent(events, EventRoundEnded)
	if !ok {
		t.Fatal("no round end event")
	}
	p := ev.Payload.(RoundEndedPayload)
	if p.Reason != RoundEndShowdown || p.WinnerID != "p1" {
		t.Fatalf("round end = %+v", p)
	}
	if p.Revealed["p1"] != domain.Switch || p.Revealed["p2"] != domain.Aegis {
		t.Fatalf("revealed = %v", p.Revealed)
	}
	if session.Participants["p1"].Tokens != 1 || session.Participants["p2"].Tokens != 0 {
		t.Fatal("winner should gain exactly one token")
	}
	if session.Phase != domain.PhaseRoundEnded {
		t.Fatalf("phase = %s", session.Phase)
	}
}

func TestShowdownTieGoesToEarliestInTurnOrder(t *testing.T) {
	svc, session := newTable(t, []domain.CardKind{domain.Seer, domain.Seer, domain.Watcher}, "p1", "p2", "p3")
	mustStart(t, svc, session)
	if got := ShowdownWinner(session); got != "p1" {
		t.Fatalf("winner = %s, want p1", got)
	}
	session.Participants["p1"].Hand = nil
	if got := ShowdownWinner(session); got != "p2" {
		t.Fatalf("winner = %s, want p2 once p1's hand is empty", got)
	}
}

func TestScenarioGameToThreeTokens(t *testing.T) {
	svc, session := newTable(t, []domain.CardKind{domain.Watcher, domain.Seer, domain.Watcher}, "p1", "p2")

	var last Outcome
	for round := 1; round <= domain.TokensToWin; round++ {
		mustStart(t, svc, session)
		if session.CurrentTurnID != "p1" {
			t.Fatalf("round %d opened by %s, want p1", round, session.CurrentTurnID)
		}
		mustDraw(t, svc, session, "p1")
		last, _ = mustPlay(t, svc, session, PlayRequest{ActorID: "p1", Card: domain.Watcher, TargetID: "p2", Guess: domain.Seer})
		if !last.RoundEnded {
			t.Fatalf("round %d did not end", round)
		}
	}
	if !last.GameEnded || session.Phase != domain.PhaseGameEnded || session.GameWinnerID != "p1" {
		t.Fatalf("outcome=%+v phase=%s winner=%s", last, session.Phase, session.GameWinnerID)
	}
	if _, err := svc.StartRound(session, "p1"); !errors.Is(err, domain.ErrGameOver) {
		t.Fatalf("start after game end err = %v", err)
	}

	if _, err := svc.NewGame(session, "p1"); err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	for _, p := range session.Participants {
		if p.Tokens != 0 {
			t.Fatalf("%s kept %d tokens", p.ID, p.Tokens)
		}
	}
	if session.Phase != domain.PhaseLobby || session.RoundNumber != 0 || session.GameWinnerID != "" {
		t.Fatalf("phase=%s round=%d winner=%s", session.Phase, session.RoundNumber, session.GameWinnerID)
	}
	mustStart(t, svc, session)
}

func TestLaterRoundsOpenWithFirstSeat(t *testing.T) {
	svc, session := newTable(t, []domain.CardKind{domain.Watcher, domain.Oracle, domain.Seer}, "p1", "p2")
	mustStart(t, svc, session)

	// Leave only the Seer in the deck so the round goes to showdown.
	top := len(session.Deck) - 1
	session.Discard = append(session.Discard, session.Deck[:top]...)
	session.Deck = session.Deck[top:]

	mustDraw(t, svc, session, "p1")
	out, _ := mustPlay(t, svc, session, PlayRequest{ActorID: "p1", Card: domain.Seer, TargetID: "p2"})
	if !out.RoundEnded || session.LastRoundWinnerID != "p2" {
		t.Fatalf("outcome = %+v, round winner = %s", out, session.LastRoundWinnerID)
	}

	events := mustStart(t, svc, session)
	if session.CurrentTurnID != session.Seating[0] || session.CurrentTurnID != "p1" {
		t.Fatalf("round 2 opened by %s, want the first seat %s", session.CurrentTurnID, session.Seating[0])
	}
	ev, ok := findEvent(events, EventRoundStarted)
	if !ok || ev.Payload.(RoundStartedPayload).StarterID != "p1" {
		t.Fatalf("round started event = %+v", ev)
	}
}

// playGame drives a whole game with random legal moves and returns every event
// in emission order. It checks the round invariants after each step.
func playGame(t *testing.T, seed int64, players int) ([]string, *domain.Session) {
	t.Helper()
	svc := NewService(rand.New(rand.NewSource(seed)))
	moves := rand.New(rand.NewSource(seed * 31))
	session := domain.NewSession("SIM")
	for i := 0; i < players; i++ {
		id := fmt.Sprintf("p%d", i+1)
		if _, err := svc.Join(session, id, id); err != nil {
			t.Fatalf("Join: %v", err)
		}
	}
	svc.ClaimHost(session, "p1")

	var trace []string
	record := func(events []Event) {
		for _, ev := range events {
			trace = append(trace, fmt.Sprintf("%s %v %v", ev.Kind, ev.Payload, ev.Recipients))
		}
	}

	for step := 0; session.Phase != domain.PhaseGameEnded; step++ {
		if step > 10000 {
			t.Fatalf("seed %d: game did not finish", seed)
		}
		if !session.RoundActive() {
			events, err := svc.StartRound(session, "p1")
			if err != nil {
				t.Fatalf("seed %d: StartRound: %v", seed, err)
			}
			record(events)
			checkInvariants(t, session)
			continue
		}

		actor := session.CurrentTurnID
		for _, id := range session.Seating {
			if id == actor {
				continue
			}
			if _, _, err := svc.Draw(session, id); err == nil {
				t.Fatalf("seed %d: %s acted out of turn", seed, id)
			}
		}

		shielded := map[string][]domain.CardKind{}
		for _, p := range session.Participants {
			if p.ID != actor && p.Alive && p.Protected {
				shielded[p.ID] = append([]domain.CardKind{}, p.Hand...)
			}
		}

		record(randomAction(t, svc, session, moves))
		checkInvariants(t, session)

		if !session.RoundActive() {
			continue
		}
		for id, hand := range shielded {
			p := session.Participants[id]
			if !p.Alive || !reflect.DeepEqual(p.Hand, hand) {
				t.Fatalf("seed %d: protected %s was affected (alive=%v hand=%v, was %v)", seed, id, p.Alive, p.Hand, hand)
			}
		}
	}
	return trace, session
}

func TestRandomGamesHoldInvariants(t *testing.T) {
	for seed := int64(1); seed <= 40; seed++ {
		players := 2 + int(seed)%(domain.MaxParticipants-1)
		t.Run(fmt.Sprintf("seed%d_players%d", seed, players), func(t *testing.T) {
			_, session := playGame(t, seed, players)
			winner, ok := session.Participant(session.GameWinnerID)
			if !ok || winner.Tokens != domain.TokensToWin {
				t.Fatalf("winner %q with tokens %+v", session.GameWinnerID, winner)
			}
			for _, p := range session.Participants {
				if p.ID != winner.ID && p.Tokens >= domain.TokensToWin {
					t.Fatalf("%s also reached %d tokens", p.ID, p.Tokens)
				}
			}
		})
	}
}

func TestGamesAreDeterministicPerSeed(t *testing.T) {
	for _, seed := range []int64{3, 17, 99} {
		first, _ := playGame(t, seed, 4)
		second, _ := playGame(t, seed, 4)
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("seed %d produced different games", seed)
		}
	}
}

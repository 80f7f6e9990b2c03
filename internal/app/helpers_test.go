package app

import (
	"math/rand"
	"testing"

	"mysteryletter/internal/domain"
)

// newTable seats ids (the first is host) and returns a service whose every round
// deals from a deck stacked with draws.
func newTable(t *testing.T, draws []domain.CardKind, ids ...string) (*Service, *domain.Session) {
	t.Helper()
	svc := NewService(rand.New(rand.NewSource(1)), WithDeckBuilder(func(*rand.Rand) []domain.CardKind {
		return domain.StackedDeck(draws...)
	}))
	session := domain.NewSession("TEST")
	for _, id := range ids {
		if _, err := svc.Join(session, id, id); err != nil {
			t.Fatalf("Join(%s): %v", id, err)
		}
	}
	if _, err := svc.ClaimHost(session, ids[0]); err != nil {
		t.Fatalf("ClaimHost: %v", err)
	}
	return svc, session
}

func mustStart(t *testing.T, svc *Service, session *domain.Session) []Event {
	t.Helper()
	events, err := svc.StartRound(session, session.HostID)
	if err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	return events
}

func mustDraw(t *testing.T, svc *Service, session *domain.Session, id string) domain.CardKind {
	t.Helper()
	card, _, err := svc.Draw(session, id)
	if err != nil {
		t.Fatalf("Draw(%s): %v", id, err)
	}
	return card
}

func mustPlay(t *testing.T, svc *Service, session *domain.Session, req PlayRequest) (Outcome, []Event) {
	t.Helper()
	out, events, err := svc.Play(session, req)
	if err != nil {
		t.Fatalf("Play(%+v): %v", req, err)
	}
	return out, events
}

func findEvent(events []Event, kind EventKind) (Event, bool) {
	for _, ev := range events {
		if ev.Kind == kind {
			return ev, true
		}
	}
	return Event{}, false
}

// checkInvariants asserts the structural invariants that hold during an active round.
func checkInvariants(t *testing.T, session *domain.Session) {
	t.Helper()
	for _, p := range session.Participants {
		if p.Protected && !p.Alive {
			t.Fatalf("%s is protected while eliminated", p.ID)
		}
	}
	if !session.RoundActive() {
		return
	}
	if got := session.CardsAccountedFor(); got != domain.TotalCards() {
		t.Fatalf("conservation broken: %d cards accounted, want %d", got, domain.TotalCards())
	}
	current, ok := session.Participant(session.CurrentTurnID)
	if !ok || !current.Alive {
		t.Fatalf("current turn %q is not an alive participant", session.CurrentTurnID)
	}
	inOrder := false
	for _, id := range session.TurnOrder {
		if id == session.CurrentTurnID {
			inOrder = true
		}
	}
	if !inOrder {
		t.Fatalf("current turn %q missing from turn order %v", session.CurrentTurnID, session.TurnOrder)
	}
	for _, p := range session.Participants {
		if p.Alive && p.ID != session.CurrentTurnID && len(p.Hand) > 1 {
			t.Fatalf("%s holds %d cards outside their turn", p.ID, len(p.Hand))
		}
	}
}

// randomAction takes one legal step for the current participant, trying
// combinations in random order until the engine accepts one.
func randomAction(t *testing.T, svc *Service, session *domain.Session, rng *rand.Rand) []Event {
	t.Helper()
	actorID := session.CurrentTurnID
	actor := session.Participants[actorID]
	if len(actor.Hand) == 1 {
		_, events, err := svc.Draw(session, actorID)
		if err != nil {
			t.Fatalf("draw for %s: %v", actorID, err)
		}
		return events
	}

	cards := actor.Hand
	targets := append([]string{""}, session.Seating...)
	guesses := domain.AllKinds()
	rng.Shuffle(len(targets), func(i, j int) { targets[i], targets[j] = targets[j], targets[i] })
	rng.Shuffle(len(guesses), func(i, j int) { guesses[i], guesses[j] = guesses[j], guesses[i] })

	for _, card := range cards {
		for _, target := range targets {
			for _, guess := range guesses {
				_, events, err := svc.Play(session, PlayRequest{ActorID: actorID, Card: card, TargetID: target, Guess: guess})
				if err == nil {
					return events
				}
				if domain.Classify(err) == domain.KindInternal {
					t.Fatalf("unexpected error: %v", err)
				}
			}
		}
	}
	t.Fatalf("no legal play for %s with hand %v", actorID, actor.Hand)
	return nil
}

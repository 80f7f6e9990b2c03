package internal

import (
	"testing"

	"mysteryletter/internal/app"
	"mysteryletter/internal/domain"
)

func viewWithHand(hand []domain.CardKind, roster ...app.RosterEntry) app.ProjectedState {
	return app.ProjectedState{
		Roster: roster,
		You: &app.SelfView{
			ID:       "me",
			Hand:     hand,
			Playable: domain.LegalCards(hand),
		},
	}
}

func TestGenerateCandidates(t *testing.T) {
	roster := []app.RosterEntry{
		{ID: "me", Alive: true},
		{ID: "a", Alive: true},
		{ID: "b", Alive: true, Protected: true},
		{ID: "c", Alive: false},
	}

	tests := []struct {
		name string
		hand []domain.CardKind
		want int
	}{
		// 7 guesses at the single unprotected opponent, plus the Heir.
		{name: "watcher", hand: []domain.CardKind{domain.Watcher, domain.Heir}, want: 7 + 1},
		// Aegis may cover self or any alive opponent; Seer only the unprotected one.
		{name: "aegis and seer", hand: []domain.CardKind{domain.Aegis, domain.Seer}, want: 3 + 1},
		// Courier skips protected opponents.
		{name: "courier", hand: []domain.CardKind{domain.Courier, domain.Duelist}, want: 2 + 1},
		{name: "forced heir", hand: []domain.CardKind{domain.Switch, domain.Heir}, want: 1},
		{name: "oracle never offered", hand: []domain.CardKind{domain.Oracle, domain.Aegis}, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateCandidates(viewWithHand(tt.hand, roster...))
			if len(got) != tt.want {
				t.Fatalf("got %d candidates %+v, want %d", len(got), got, tt.want)
			}
			for _, c := range got {
				if c.Card == domain.Oracle {
					t.Fatal("oracle offered as a candidate")
				}
				if c.TargetID == "b" && c.Card != domain.Aegis {
					t.Fatalf("protected participant targeted by %s", c.Card)
				}
				if c.TargetID == "c" {
					t.Fatal("eliminated participant targeted")
				}
			}
		})
	}
}

func TestGenerateCandidatesWithoutTargets(t *testing.T) {
	view := viewWithHand([]domain.CardKind{domain.Watcher, domain.Duelist},
		app.RosterEntry{ID: "me", Alive: true},
		app.RosterEntry{ID: "a", Alive: true, Protected: true},
	)
	got := GenerateCandidates(view)
	if len(got) != 2 {
		t.Fatalf("got %+v", got)
	}
	for _, c := range got {
		if c.TargetID != "" || c.Guess != domain.NoCard {
			t.Fatalf("expected untargeted no-op candidates, got %+v", c)
		}
	}
}

func TestRemaining(t *testing.T) {
	hand := []domain.CardKind{domain.Seer, domain.Heir}
	if got := Remaining(hand, domain.Seer); got != domain.Heir {
		t.Errorf("Remaining = %v", got)
	}
	if got := Remaining(hand, domain.Oracle); got != domain.NoCard {
		t.Errorf("Remaining of a missing card = %v", got)
	}
}

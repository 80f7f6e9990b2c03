package internal

import (
	"mysteryletter/internal/app"
	"mysteryletter/internal/domain"
)

// Candidate is one concrete (card, target, guess) combination a bot could submit.
type Candidate struct {
	Card     domain.CardKind
	TargetID string
	Guess    domain.CardKind
}

// Request turns the candidate into a play on behalf of actorID.
func (c Candidate) Request(actorID string) app.PlayRequest {
	return app.PlayRequest{ActorID: actorID, Card: c.Card, TargetID: c.TargetID, Guess: c.Guess}
}

// Guesses lists every kind a Watcher may name.
func Guesses() []domain.CardKind {
	var out []domain.CardKind
	for _, k := range domain.AllKinds() {
		if domain.ValidGuess(k) {
			out = append(out, k)
		}
	}
	return out
}

// OtherTargets returns the alive, unprotected participants other than the viewer, in seating order.
func OtherTargets(view app.ProjectedState) []string {
	if view.You == nil {
		return nil
	}
	var out []string
	for _, e := range view.Roster {
		if e.ID != view.You.ID && e.Alive && !e.Protected {
			out = append(out, e.ID)
		}
	}
	return out
}

// AliveOthers returns every alive participant other than the viewer, protected or not.
func AliveOthers(view app.ProjectedState) []string {
	if view.You == nil {
		return nil
	}
	var out []string
	for _, e := range view.Roster {
		if e.ID != view.You.ID && e.Alive {
			out = append(out, e.ID)
		}
	}
	return out
}

// GenerateCandidates enumerates every play the engine would accept from the
// viewer's current hand. It is empty unless the viewer holds two cards on their turn.
func GenerateCandidates(view app.ProjectedState) []Candidate {
	if view.You == nil {
		return nil
	}
	self := view.You.ID
	others := OtherTargets(view)

	var out []Candidate
	for _, card := range view.You.Playable {
		switch card.Info().Target {
		case domain.TargetNone:
			out = append(out, Candidate{Card: card})
		case domain.TargetOther:
			if len(others) == 0 {
				out = append(out, Candidate{Card: card})
				continue
			}
			for _, id := range others {
				if card != domain.Watcher {
					out = append(out, Candidate{Card: card, TargetID: id})
					continue
				}
				for _, g := range Guesses() {
					out = append(out, Candidate{Card: card, TargetID: id, Guess: g})
				}
			}
		case domain.TargetSelfOrOther:
			out = append(out, Candidate{Card: card, TargetID: self})
			targets := others
			if card == domain.Aegis {
				targets = AliveOthers(view)
			}
			for _, id := range targets {
				out = append(out, Candidate{Card: card, TargetID: id})
			}
		}
	}
	return out
}

// Remaining returns the card left in hand after playing card from a two-card hand.
func Remaining(hand []domain.CardKind, card domain.CardKind) domain.CardKind {
	for i, c := range hand {
		if c == card {
			if len(hand) == 2 {
				return hand[1-i]
			}
			return domain.NoCard
		}
	}
	return domain.NoCard
}

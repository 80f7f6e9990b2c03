package bot

import (
	"math/rand"

	"mysteryletter/internal/app"
	"mysteryletter/internal/bot/brain"
	"mysteryletter/internal/domain"
)

// mediumPreference is the order in which MediumBot likes to get rid of cards.
var mediumPreference = []domain.CardKind{
	domain.Aegis,
	domain.Seer,
	domain.Watcher,
	domain.Duelist,
	domain.Courier,
	domain.Switch,
	domain.Heir,
}

// MediumBot follows a fixed card preference and guesses by card counting alone.
type MediumBot struct {
	rng *rand.Rand
}

func (b *MediumBot) Decide(view app.ProjectedState, _ *brain.Memory) Move {
	playable := view.You.Playable
	if len(playable) == 0 {
		return Move{}
	}
	card := playable[0]
	for _, pref := range mediumPreference {
		if containsKind(playable, pref) {
			card = pref
			break
		}
	}

	m := Move{Card: card, TargetID: pickTarget(b.rng, view, card)}
	if card == domain.Aegis && !selfProtected(view) {
		m.TargetID = view.You.ID
	}
	est := brain.NewEstimator(nil)
	return finish(m, func(targetID string) domain.CardKind {
		k, _ := est.MostLikelyGuess(view, targetID)
		return k
	})
}

func containsKind(kinds []domain.CardKind, k domain.CardKind) bool {
	for _, c := range kinds {
		if c == k {
			return true
		}
	}
	return false
}

package bot

import (
	"math/rand"

	"mysteryletter/internal/app"
	"mysteryletter/internal/bot/internal"
	"mysteryletter/internal/domain"
)

// selfProtected reports whether the viewer is currently covered by an Aegis.
func selfProtected(view app.ProjectedState) bool {
	entry, ok := view.Participant(view.You.ID)
	return ok && entry.Protected
}

// pickTarget chooses a target for card following the baseline policy: uniform
// among alive, unprotected others, falling back to self where the card allows
// it, and empty only when nobody can be targeted.
func pickTarget(rng *rand.Rand, view app.ProjectedState, card domain.CardKind) string {
	info := card.Info()
	if info.Target == domain.TargetNone {
		return ""
	}
	others := internal.OtherTargets(view)
	if len(others) == 0 {
		if info.Target == domain.TargetSelfOrOther {
			return view.You.ID
		}
		return ""
	}
	return others[rng.Intn(len(others))]
}

// randomGuess names any kind a Watcher may legally name.
func randomGuess(rng *rand.Rand) domain.CardKind {
	guesses := internal.Guesses()
	return guesses[rng.Intn(len(guesses))]
}

// finish fills in the guess for Watcher moves that have a target.
func finish(m Move, guess func(targetID string) domain.CardKind) Move {
	if m.Card == domain.Watcher && m.TargetID != "" {
		m.Guess = guess(m.TargetID)
	}
	return m
}

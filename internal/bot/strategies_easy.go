package bot

import (
	"math/rand"

	"mysteryletter/internal/app"
	"mysteryletter/internal/bot/brain"
	"mysteryletter/internal/domain"
)

// EasyBot plays a uniformly random legal card at a random target.
type EasyBot struct {
	rng *rand.Rand
}

func (b *EasyBot) Decide(view app.ProjectedState, _ *brain.Memory) Move {
	playable := view.You.Playable
	if len(playable) == 0 {
		return Move{}
	}
	card := playable[b.rng.Intn(len(playable))]
	m := Move{Card: card, TargetID: pickTarget(b.rng, view, card)}
	return finish(m, func(string) domain.CardKind { return randomGuess(b.rng) })
}

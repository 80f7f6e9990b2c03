package bot

import (
	"mysteryletter/internal/app"
	"mysteryletter/internal/bot/brain"
	"mysteryletter/internal/domain"
)

// Move represents the decision made by the AI.
type Move struct {
	Card     domain.CardKind
	TargetID string
	Guess    domain.CardKind
}

// Request converts the move into a play on behalf of actorID.
func (m Move) Request(actorID string) app.PlayRequest {
	return app.PlayRequest{ActorID: actorID, Card: m.Card, TargetID: m.TargetID, Guess: m.Guess}
}

// Brain is the interface that all bot strategies must implement. Decide is only
// called when the bot holds two cards on its own turn.
type Brain interface {
	Decide(view app.ProjectedState, mem *brain.Memory) Move
}

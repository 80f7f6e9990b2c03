package bot

import (
	"errors"
	"fmt"
	"math/rand"

	"mysteryletter/internal/app"
	"mysteryletter/internal/bot/brain"
	"mysteryletter/internal/bot/internal"
	"mysteryletter/internal/domain"
)

// ErrNoLegalMove is returned when no play the bot could find was accepted.
var ErrNoLegalMove = errors.New("bot found no legal move")

// Agent represents an autonomous bot participant.
type Agent struct {
	ID       string
	Name     string
	Level    BotLevel
	Strategy Brain
	Memory   *brain.Memory
}

// NewAgent builds an agent with a fresh memory and a brain for level.
func NewAgent(id, name string, level BotLevel, rng *rand.Rand) (*Agent, error) {
	strategy, err := NewBrain(level, rng)
	if err != nil {
		return nil, err
	}
	return &Agent{
		ID:       id,
		Name:     name,
		Level:    level,
		Strategy: strategy,
		Memory:   brain.NewMemory(id),
	}, nil
}

// Observe feeds engine events to the agent's memory. Callers pass every event
// the room emits; the agent keeps only what it is allowed to see.
func (a *Agent) Observe(events []app.Event) {
	for _, ev := range events {
		a.Memory.Observe(ev)
	}
}

// TakeTurn draws when needed and plays through the same entry points a human
// uses. A rejected decision is retried once without a target, then the agent
// sweeps every remaining legal combination until one is accepted.
func (a *Agent) TakeTurn(svc *app.Service, session *domain.Session) ([]app.Event, error) {
	if err := app.RequireActorTurn(session, a.ID); err != nil {
		return nil, err
	}

	var events []app.Event
	if p := session.Participants[a.ID]; len(p.Hand) < 2 {
		_, drawn, err := svc.Draw(session, a.ID)
		if err != nil {
			return nil, fmt.Errorf("bot %s draw: %w", a.ID, err)
		}
		events = append(events, drawn...)
		if !session.RoundActive() || session.CurrentTurnID != a.ID {
			return events, nil
		}
	}

	view := app.Project(session, a.ID)
	move := a.Strategy.Decide(view, a.Memory)
	_, played, err := svc.Play(session, move.Request(a.ID))
	if err == nil {
		return append(events, played...), nil
	}

	move.TargetID = ""
	if _, played, err = svc.Play(session, move.Request(a.ID)); err == nil {
		return append(events, played...), nil
	}

	for _, c := range internal.GenerateCandidates(view) {
		if c.Card == domain.Oracle {
			continue
		}
		if _, played, err = svc.Play(session, c.Request(a.ID)); err == nil {
			return append(events, played...), nil
		}
	}
	return events, fmt.Errorf("bot %s with hand %v: %w", a.ID, view.You.Hand, ErrNoLegalMove)
}

// SyncAgents keeps exactly one agent per bot seated in session, rebuilding an
// agent whose skill level changed. Each new agent draws its seed from rng.
func SyncAgents(agents map[string]*Agent, session *domain.Session, rng *rand.Rand) error {
	for id := range agents {
		if _, ok := session.Participant(id); !ok {
			delete(agents, id)
		}
	}
	var errs []error
	for _, id := range session.BotIDs() {
		p := session.Participants[id]
		level := BotLevel(p.SkillLevel)
		if a, ok := agents[id]; ok && a.Level == level {
			continue
		}
		agent, err := NewAgent(id, p.Name, level, rand.New(rand.NewSource(rng.Int63())))
		if err != nil {
			errs = append(errs, fmt.Errorf("bot %s: %w", id, err))
			continue
		}
		agents[id] = agent
	}
	return errors.Join(errs...)
}

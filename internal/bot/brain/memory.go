package brain

import (
	"mysteryletter/internal/app"
	"mysteryletter/internal/domain"
)

// Memory stores what a bot has legitimately learned during a round: cards it
// was shown by a Seer or a duel, cards it handed over in a Switch, and public
// plays. It never looks at the session directly.
type Memory struct {
	SelfID string
	Round  int
	// Known maps a participant to the card the bot knows they hold.
	Known map[string]domain.CardKind
	// Opponents survive across rounds and are cleared by a new game.
	Opponents map[string]*OpponentProfile
}

// NewMemory initializes a fresh memory for the bot seated as selfID.
func NewMemory(selfID string) *Memory {
	return &Memory{
		SelfID:    selfID,
		Known:     make(map[string]domain.CardKind),
		Opponents: make(map[string]*OpponentProfile),
	}
}

// Reset forgets every card seen in the previous round.
func (m *Memory) Reset(round int) {
	m.Round = round
	m.Known = make(map[string]domain.CardKind)
}

// KnownCard returns the card id is known to hold.
func (m *Memory) KnownCard(id string) (domain.CardKind, bool) {
	k, ok := m.Known[id]
	return k, ok
}

// Profile returns the profile for id, creating it on first use.
func (m *Memory) Profile(id string) *OpponentProfile {
	p, ok := m.Opponents[id]
	if !ok {
		p = NewOpponentProfile(id)
		m.Opponents[id] = p
	}
	return p
}

// Observe folds an engine event into memory. Events the bot may not see are ignored.
func (m *Memory) Observe(ev app.Event) {
	if !ev.VisibleTo(m.SelfID) {
		return
	}
	switch p := ev.Payload.(type) {
	case app.RoundStartedPayload:
		m.Reset(p.RoundNumber)
	case app.CardRevealedPayload:
		if p.ViewerID == m.SelfID && p.OwnerID != m.SelfID {
			m.Known[p.OwnerID] = p.Card
		}
	case app.CardReceivedPayload:
		if p.ParticipantID == m.SelfID {
			m.Known[p.FromID] = p.Gave
		}
	case app.CardPlayedPayload:
		m.observePlay(p)
	case app.CardDiscardedPayload:
		delete(m.Known, p.ParticipantID)
	case app.EliminatedPayload:
		delete(m.Known, p.ParticipantID)
		if p.ParticipantID != m.SelfID {
			m.Profile(p.ParticipantID).Eliminations++
		}
	case app.ParticipantLeftPayload:
		delete(m.Known, p.ParticipantID)
		delete(m.Opponents, p.ParticipantID)
	default:
		if ev.Kind == app.EventGameReset {
			m.Reset(0)
			m.Opponents = make(map[string]*OpponentProfile)
		}
	}
}

func (m *Memory) observePlay(p app.CardPlayedPayload) {
	if p.ActorID != m.SelfID {
		m.Profile(p.ActorID).RecordPlay(p.Card, p.TargetID == m.SelfID)
		// Holding two of a kind makes the remaining card ambiguous.
		if known, ok := m.Known[p.ActorID]; ok && known == p.Card {
			delete(m.Known, p.ActorID)
		}
	}
	if p.Card != domain.Switch || p.NoOp || p.TargetID == "" {
		return
	}
	actorCard, actorKnown := m.Known[p.ActorID]
	targetCard, targetKnown := m.Known[p.TargetID]
	delete(m.Known, p.ActorID)
	delete(m.Known, p.TargetID)
	if actorKnown && p.TargetID != m.SelfID {
		m.Known[p.TargetID] = actorCard
	}
	if targetKnown && p.ActorID != m.SelfID {
		m.Known[p.ActorID] = targetCard
	}
}

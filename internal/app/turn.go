package app

import (
	"mysteryletter/internal/domain"
)

// StartRound deals a fresh round. The first seat always opens.
func (s *Service) StartRound(session *domain.Session, requesterID string) ([]Event, error) {
	if err := requireHost(session, requesterID); err != nil {
		return nil, err
	}
	switch session.Phase {
	case domain.PhaseRoundActive:
		return nil, domain.ErrRoundInProgress
	case domain.PhaseGameEnded:
		return nil, domain.ErrGameOver
	}
	if session.Len() < MinPlayersToStartGame {
		return nil, domain.ErrInsufficientPlayers
	}

	session.ResetForRound(s.buildDeck(s.rng))
	session.Phase = domain.PhaseRoundActive
	session.RoundNumber++

	events := make([]Event, 0, session.Len()+3)
	for _, p := range session.Ordered() {
		card, err := session.DrawCard()
		if err != nil {
			// A full deck always covers MaxParticipants opening cards.
			return nil, err
		}
		p.Hand = append(p.Hand, card)
		events = append(events, Event{
			Kind:       EventCardDrawn,
			Payload:    CardDrawnPayload{ParticipantID: p.ID, Card: card, DeckSize: len(session.Deck)},
			Recipients: []string{p.ID},
		})
	}

	starter := session.Seating[0]
	session.Log.Addf("Round %d started.", session.RoundNumber)
	events = append(events, Event{
		Kind: EventRoundStarted,
		Payload: RoundStartedPayload{
			RoundNumber: session.RoundNumber,
			StarterID:   starter,
			DeckSize:    len(session.Deck),
		},
	})
	events = append(events, s.beginTurn(session, starter)...)
	return events, nil
}

// RequireActorTurn guards every action taken on a participant's own turn.
func RequireActorTurn(session *domain.Session, participantID string) error {
	if !session.RoundActive() {
		return domain.ErrRoundNotActive
	}
	p, ok := session.Participant(participantID)
	if !ok {
		return domain.ErrUnknownParticipant
	}
	if !p.Alive {
		return domain.ErrPlayerEliminated
	}
	if session.CurrentTurnID != participantID {
		return domain.ErrNotYourTurn
	}
	return nil
}

// AdvanceTurn passes the turn to the next alive participant, or ends the round
// when fewer than two participants remain or the deck ran out.
func (s *Service) AdvanceTurn(session *domain.Session) ([]Event, error) {
	if !session.RoundActive() {
		return nil, domain.ErrRoundNotActive
	}
	return s.finishTurn(session, session.CurrentTurnID), nil
}

// Draw moves the top card of the deck into the actor's hand. When the deck is
// already empty the round is settled by showdown instead.
func (s *Service) Draw(session *domain.Session, participantID string) (domain.CardKind, []Event, error) {
	if err := RequireActorTurn(session, participantID); err != nil {
		return domain.NoCard, nil, err
	}
	p := session.Participants[participantID]
	if len(p.Hand) >= 2 {
		return domain.NoCard, nil, domain.ErrHandAlreadyFull
	}
	if len(session.Deck) == 0 {
		return domain.NoCard, s.endRound(session, RoundEndShowdown), nil
	}
	card, events := s.drawFor(session, p)
	return card, events, nil
}

// drawFor performs the draw and the forced-discard check that follows it.
func (s *Service) drawFor(session *domain.Session, p *domain.Participant) (domain.CardKind, []Event) {
	card, err := session.DrawCard()
	if err != nil {
		return domain.NoCard, s.endRound(session, RoundEndShowdown)
	}
	p.Hand = append(p.Hand, card)
	events := []Event{{
		Kind:       EventCardDrawn,
		Payload:    CardDrawnPayload{ParticipantID: p.ID, Card: card, DeckSize: len(session.Deck)},
		Recipients: []string{p.ID},
	}}
	if forced := s.applyForcedRule(session, p); len(forced) > 0 {
		events = append(events, forced...)
		if session.CurrentTurnID == p.ID {
			events = append(events, s.finishTurn(session, p.ID)...)
		}
	}
	return card, events
}

// applyForcedRule eliminates a participant holding Oracle together with Heir.
func (s *Service) applyForcedRule(session *domain.Session, p *domain.Participant) []Event {
	if !p.Alive || domain.EvaluateForcedRule(p.Hand) != domain.ForcedEliminate {
		return nil
	}
	p.RemoveCard(domain.Oracle)
	session.Discard = append(session.Discard, domain.Oracle)
	session.Log.Addf("%s was caught holding the Oracle with the Heir.", p.Name)
	events := []Event{{
		Kind:    EventCardDiscarded,
		Payload: CardDiscardedPayload{ParticipantID: p.ID, Card: domain.Oracle},
	}}
	return append(events, s.eliminate(session, p, EliminatedByForcedRule)...)
}

// finishTurn closes the turn of fromID and either ends the round or starts the next turn.
func (s *Service) finishTurn(session *domain.Session, fromID string) []Event {
	if !session.RoundActive() {
		return nil
	}
	if len(session.AliveIDs()) < domain.MinParticipants {
		return s.endRound(session, RoundEndLastStanding)
	}
	if len(session.Deck) == 0 {
		return s.endRound(session, RoundEndShowdown)
	}
	return s.beginTurn(session, session.NextAliveAfter(fromID))
}

// beginTurn hands the turn to id, lifting its protection.
func (s *Service) beginTurn(session *domain.Session, id string) []Event {
	p := session.Participants[id]
	session.CurrentTurnID = id
	session.TurnSeq++
	if p.Protected {
		p.Protected = false
		session.Log.Addf("%s is no longer protected.", p.Name)
	}
	events := []Event{{
		Kind:    EventTurnStarted,
		Payload: TurnStartedPayload{ParticipantID: id, TurnSeq: session.TurnSeq},
	}}
	if s.autoDraw && len(p.Hand) == 1 {
		_, drawn := s.drawFor(session, p)
		events = append(events, drawn...)
	}
	return events
}

// eliminate knocks p out and reports the cards that went to the discard pile.
func (s *Service) eliminate(session *domain.Session, p *domain.Participant, reason string) []Event {
	discarded := append([]domain.CardKind(nil), p.Hand...)
	session.Eliminate(p.ID)
	session.Log.Addf("%s is out of the round.", p.Name)
	return []Event{{
		Kind:    EventEliminated,
		Payload: EliminatedPayload{ParticipantID: p.ID, Reason: reason, Discarded: discarded},
	}}
}

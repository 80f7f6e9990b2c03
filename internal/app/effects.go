package app

import (
	"mysteryletter/internal/domain"
)

// PlayRequest is a participant's choice of card, target and guess.
type PlayRequest struct {
	ActorID  string          `json:"actor_id"`
	Card     domain.CardKind `json:"card"`
	TargetID string          `json:"target_id,omitempty"`
	Guess    domain.CardKind `json:"guess,omitempty"`
}

// Outcome summarizes what a play did.
type Outcome struct {
	Card       domain.CardKind `json:"card"`
	TargetID   string          `json:"target_id,omitempty"`
	NoOp       bool            `json:"no_op"`
	Eliminated []string        `json:"eliminated,omitempty"`
	RoundEnded bool            `json:"round_ended"`
	GameEnded  bool            `json:"game_ended"`
}

// resolution carries a validated play through its effect.
type resolution struct {
	svc     *Service
	session *domain.Session
	actor   *domain.Participant
	target  *domain.Participant // nil when the play has no target
	req     PlayRequest
	events  []Event
}

type effect struct {
	selfAllowed bool // the actor may aim the card at themselves
	playable    bool
	apply       func(r *resolution)
}

// effects is indexed by card kind; every catalog kind has an entry.
var effects = [domain.KindCount + 1]effect{
	domain.Watcher: {playable: true, apply: applyWatcher},
	domain.Seer:    {playable: true, apply: applySeer},
	domain.Aegis:   {playable: true, selfAllowed: true, apply: applyAegis},
	domain.Duelist: {playable: true, apply: applyDuelist},
	domain.Switch:  {playable: true, apply: applySwitch},
	domain.Courier: {playable: true, selfAllowed: true, apply: applyCourier},
	domain.Heir:    {playable: true, apply: func(*resolution) {}},
	domain.Oracle:  {playable: false},
}

// Play validates and resolves a card play. A rejected play leaves the session untouched.
func (s *Service) Play(session *domain.Session, req PlayRequest) (Outcome, []Event, error) {
	actor, target, err := validatePlay(session, req)
	if err != nil {
		return Outcome{}, nil, err
	}

	actor.RemoveCard(req.Card)
	session.Discard = append(session.Discard, req.Card)

	outcome := Outcome{Card: req.Card, NoOp: target == nil && req.Card.Info().Target == domain.TargetOther}
	if target != nil {
		outcome.TargetID = target.ID
		if target != actor && target.Protected && req.Card != domain.Aegis {
			outcome.NoOp = true
		}
	}

	played := CardPlayedPayload{ActorID: actor.ID, Card: req.Card, TargetID: outcome.TargetID, NoOp: outcome.NoOp}
	if req.Card == domain.Watcher {
		played.Guess = req.Guess
	}
	r := &resolution{
		svc:     s,
		session: session,
		actor:   actor,
		target:  target,
		req:     req,
		events:  []Event{{Kind: EventCardPlayed, Payload: played}},
	}
	logPlay(r, outcome.NoOp)

	if !outcome.NoOp {
		effects[req.Card].apply(r)
	}

	// Switch and Courier leave the target exactly one card, so the forced rule
	// never applies to a target; it is checked on draws only.

	r.events = append(r.events, s.finishTurn(session, actor.ID)...)

	for _, ev := range r.events {
		switch ev.Kind {
		case EventEliminated:
			outcome.Eliminated = append(outcome.Eliminated, ev.Payload.(EliminatedPayload).ParticipantID)
		case EventRoundEnded:
			outcome.RoundEnded = true
		case EventGameEnded:
			outcome.GameEnded = true
		}
	}
	return outcome, r.events, nil
}

// validatePlay checks every precondition of a play before anything is mutated.
// The returned target is nil when the card takes no target or no legal target exists.
func validatePlay(session *domain.Session, req PlayRequest) (*domain.Participant, *domain.Participant, error) {
	if err := RequireActorTurn(session, req.ActorID); err != nil {
		return nil, nil, err
	}
	actor := session.Participants[req.ActorID]
	if len(actor.Hand) < 2 {
		return nil, nil, domain.ErrDrawRequired
	}
	if !req.Card.Valid() {
		return nil, nil, domain.ErrCardNotInHand
	}
	if err := domain.CheckVoluntaryPlay(actor.Hand, req.Card); err != nil {
		return nil, nil, err
	}
	eff := effects[req.Card]
	if !eff.playable {
		return nil, nil, domain.ErrCannotVoluntarilyDiscardLosingCard
	}

	target, err := resolveTarget(session, actor, req.Card, req.TargetID, eff.selfAllowed)
	if err != nil {
		return nil, nil, err
	}

	if req.Card == domain.Watcher {
		if req.Guess != domain.NoCard && !domain.ValidGuess(req.Guess) {
			return nil, nil, domain.ErrIllegalGuess
		}
		if target != nil && !target.Protected && req.Guess == domain.NoCard {
			return nil, nil, domain.ErrGuessRequired
		}
	}
	return actor, target, nil
}

func resolveTarget(session *domain.Session, actor *domain.Participant, card domain.CardKind, targetID string, selfAllowed bool) (*domain.Participant, error) {
	switch card.Info().Target {
	case domain.TargetNone:
		return nil, nil
	case domain.TargetSelfOrOther:
		if targetID == "" {
			return actor, nil
		}
	case domain.TargetOther:
		if targetID == "" {
			if HasLegalTarget(session, actor.ID) {
				return nil, domain.ErrInvalidTarget
			}
			return nil, nil
		}
	}

	target, ok := session.Participant(targetID)
	if !ok {
		return nil, domain.ErrUnknownTarget
	}
	if !target.Alive {
		return nil, domain.ErrInvalidTarget
	}
	if target == actor && !selfAllowed {
		return nil, domain.ErrInvalidTarget
	}
	return target, nil
}

// HasLegalTarget reports whether another alive, unprotected participant exists.
func HasLegalTarget(session *domain.Session, actorID string) bool {
	for _, id := range session.TurnOrder {
		p := session.Participants[id]
		if id != actorID && p.Alive && !p.Protected {
			return true
		}
	}
	return false
}

func logPlay(r *resolution, noop bool) {
	log := r.session.Log
	name := r.req.Card.Name()
	switch {
	case r.target == nil:
		log.Addf("%s played the %s.", r.actor.Name, name)
	case r.req.Card == domain.Watcher && r.req.Guess.Valid():
		log.Addf("%s played the %s on %s, naming the %s.", r.actor.Name, name, r.target.Name, r.req.Guess.Name())
	case r.target == r.actor:
		log.Addf("%s played the %s on themselves.", r.actor.Name, name)
	default:
		log.Addf("%s played the %s on %s.", r.actor.Name, name, r.target.Name)
	}
	if noop && r.target != nil {
		log.Addf("%s is protected. Nothing happens.", r.target.Name)
	} else if noop {
		log.Addf("Nobody could be targeted. Nothing happens.")
	}
}

func applyWatcher(r *resolution) {
	if r.target.SoleCard() != r.req.Guess {
		r.session.Log.Addf("%s does not hold the %s.", r.target.Name, r.req.Guess.Name())
		return
	}
	r.session.Log.Addf("Correct! %s held the %s.", r.target.Name, r.req.Guess.Name())
	r.events = append(r.events, r.svc.eliminate(r.session, r.target, EliminatedByGuess)...)
}

func applySeer(r *resolution) {
	r.events = append(r.events, Event{
		Kind: EventCardRevealed,
		Payload: CardRevealedPayload{
			ViewerID: r.actor.ID,
			OwnerID:  r.target.ID,
			Card:     r.target.SoleCard(),
			Reason:   RevealSeer,
		},
		Recipients: []string{r.actor.ID},
	})
	r.session.Log.Addf("%s looked at %s's hand.", r.actor.Name, r.target.Name)
}

func applyAegis(r *resolution) {
	r.target.Protected = true
	r.session.Log.Addf("%s is protected until their next turn.", r.target.Name)
	r.events = append(r.events, Event{
		Kind:    EventProtected,
		Payload: ProtectedPayload{ParticipantID: r.target.ID, ByID: r.actor.ID},
	})
}

func applyDuelist(r *resolution) {
	mine, theirs := r.actor.SoleCard(), r.target.SoleCard()
	r.events = append(r.events,
		Event{
			Kind:       EventCardRevealed,
			Payload:    CardRevealedPayload{ViewerID: r.actor.ID, OwnerID: r.target.ID, Card: theirs, Reason: RevealDuelist},
			Recipients: []string{r.actor.ID},
		},
		Event{
			Kind:       EventCardRevealed,
			Payload:    CardRevealedPayload{ViewerID: r.target.ID, OwnerID: r.actor.ID, Card: mine, Reason: RevealDuelist},
			Recipients: []string{r.target.ID},
		},
	)
	switch {
	case mine.Rank() < theirs.Rank():
		r.events = append(r.events, r.svc.eliminate(r.session, r.actor, EliminatedByDuel)...)
	case theirs.Rank() < mine.Rank():
		r.events = append(r.events, r.svc.eliminate(r.session, r.target, EliminatedByDuel)...)
	default:
		r.session.Log.Addf("%s and %s are tied.", r.actor.Name, r.target.Name)
	}
}

func applySwitch(r *resolution) {
	mine, theirs := r.actor.SoleCard(), r.target.SoleCard()
	r.actor.Hand, r.target.Hand = r.target.Hand, r.actor.Hand
	r.session.Log.Addf("%s and %s traded hands.", r.actor.Name, r.target.Name)
	r.events = append(r.events,
		Event{
			Kind:       EventCardReceived,
			Payload:    CardReceivedPayload{ParticipantID: r.actor.ID, FromID: r.target.ID, Card: theirs, Gave: mine},
			Recipients: []string{r.actor.ID},
		},
		Event{
			Kind:       EventCardReceived,
			Payload:    CardReceivedPayload{ParticipantID: r.target.ID, FromID: r.actor.ID, Card: mine, Gave: theirs},
			Recipients: []string{r.target.ID},
		},
	)
}

func applyCourier(r *resolution) {
	discarded := r.target.SoleCard()
	if discarded == domain.NoCard {
		return
	}
	r.target.RemoveCard(discarded)
	r.session.Discard = append(r.session.Discard, discarded)
	r.session.Log.Addf("%s discarded the %s.", r.target.Name, discarded.Name())
	r.events = append(r.events, Event{
		Kind:    EventCardDiscarded,
		Payload: CardDiscardedPayload{ParticipantID: r.target.ID, Card: discarded, ForcedBy: r.actor.ID},
	})

	if discarded == domain.Oracle {
		r.events = append(r.events, r.svc.eliminate(r.session, r.target, EliminatedByOracle)...)
		return
	}
	card, err := r.session.DrawCard()
	if err != nil {
		r.session.Log.Addf("The deck is empty. %s draws nothing.", r.target.Name)
		return
	}
	r.target.Hand = append(r.target.Hand, card)
	r.events = append(r.events, Event{
		Kind:       EventCardDrawn,
		Payload:    CardDrawnPayload{ParticipantID: r.target.ID, Card: card, DeckSize: len(r.session.Deck)},
		Recipients: []string{r.target.ID},
	})
}

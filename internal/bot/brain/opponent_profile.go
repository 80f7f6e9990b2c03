package brain

import "mysteryletter/internal/domain"

// OpponentProfile tracks what a specific participant has done in public.
type OpponentProfile struct {
	ID string
	// Played counts the cards this participant has played, by kind.
	Played map[domain.CardKind]int
	// Attacks counts plays aimed at the bot that owns the memory.
	Attacks int
	// Eliminations counts how often this participant has been knocked out.
	Eliminations int
}

// NewOpponentProfile initializes a profile for a participant.
func NewOpponentProfile(id string) *OpponentProfile {
	return &OpponentProfile{
		ID:     id,
		Played: make(map[domain.CardKind]int),
	}
}

// RecordPlay logs a card played by this opponent.
func (p *OpponentProfile) RecordPlay(card domain.CardKind, aimedAtMe bool) {
	if !card.Valid() {
		return
	}
	p.Played[card]++
	if aimedAtMe {
		p.Attacks++
	}
}

// Aggression is the share of this opponent's plays aimed at the memory owner.
func (p *OpponentProfile) Aggression() float64 {
	total := 0
	for _, n := range p.Played {
		total += n
	}
	if total == 0 {
		return 0
	}
	return float64(p.Attacks) / float64(total)
}

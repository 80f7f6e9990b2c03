package internal

import "mysteryletter/internal/app"

// RoundPhase describes how far a round has progressed.
type RoundPhase int

const (
	// PhaseEarly means most of the deck is still to be drawn.
	PhaseEarly RoundPhase = iota
	// PhaseMid is everything between the opening and the last few draws.
	PhaseMid
	// PhaseLate means a showdown is close; the card kept matters most.
	PhaseLate
)

const (
	earlyDeckSize = 9
	lateDeckSize  = 3
)

func (p RoundPhase) String() string {
	switch p {
	case PhaseEarly:
		return "early"
	case PhaseLate:
		return "late"
	default:
		return "mid"
	}
}

// DetectPhase infers the phase from the remaining deck size.
func DetectPhase(view app.ProjectedState) RoundPhase {
	switch {
	case view.DeckSize >= earlyDeckSize:
		return PhaseEarly
	case view.DeckSize <= lateDeckSize:
		return PhaseLate
	default:
		return PhaseMid
	}
}

package domain

// ForcedRule is the outcome of checking a two-card hand before a play.
type ForcedRule int

const (
	// ForcedNone leaves the choice of card to the participant.
	ForcedNone ForcedRule = iota
	// ForcedEliminate means Oracle and Heir are held together: Oracle is discarded and the holder is out.
	ForcedEliminate
	// ForcedPlayHeir means Heir is held with Switch or Courier and must be played.
	ForcedPlayHeir
)

func (r ForcedRule) String() string {
	switch r {
	case ForcedEliminate:
		return "eliminate"
	case ForcedPlayHeir:
		return "play_heir"
	default:
		return "none"
	}
}

// EvaluateForcedRule checks a hand against the compound rules, most severe first.
func EvaluateForcedRule(hand []CardKind) ForcedRule {
	has := func(k CardKind) bool {
		for _, c := range hand {
			if c == k {
				return true
			}
		}
		return false
	}
	if !has(Heir) {
		return ForcedNone
	}
	if has(Oracle) {
		return ForcedEliminate
	}
	if has(Switch) || has(Courier) {
		return ForcedPlayHeir
	}
	return ForcedNone
}

// CheckVoluntaryPlay validates the choice of card against the hand, ignoring targets.
func CheckVoluntaryPlay(hand []CardKind, card CardKind) error {
	held := false
	for _, c := range hand {
		if c == card {
			held = true
			break
		}
	}
	if !held {
		return ErrCardNotInHand
	}
	if card == Oracle {
		return ErrCannotVoluntarilyDiscardLosingCard
	}
	if EvaluateForcedRule(hand) == ForcedPlayHeir && card != Heir {
		return ErrMustPlayForcedCard
	}
	return nil
}

// LegalCards lists the distinct cards a participant may choose from hand.
func LegalCards(hand []CardKind) []CardKind {
	var out []CardKind
	seen := make(map[CardKind]bool, len(hand))
	for _, c := range hand {
		if seen[c] {
			continue
		}
		seen[c] = true
		if CheckVoluntaryPlay(hand, c) == nil {
			out = append(out, c)
		}
	}
	return out
}

// ValidGuess reports whether a Watcher may name k.
func ValidGuess(k CardKind) bool {
	return k.Valid() && k != Watcher
}

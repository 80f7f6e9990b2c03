package bot

import botinternal "mysteryletter/internal/bot/internal"

// PhaseWeights scales each selection rule for one phase of a round.
type PhaseWeights struct {
	ProtectSelf     float64
	CertainKill     float64
	GuessWeight     float64
	InfoGain        float64
	DuelWeight      float64
	WeakDuelPenalty float64
	KeepHighWeight  float64
	CourierRedraw   float64
	SwitchGain      float64
	LeaderBonus     float64
	AggressorBonus  float64
}

// Tuning holds the weights HardBot uses as the deck runs down.
type Tuning struct {
	Early PhaseWeights
	Mid   PhaseWeights
	Late  PhaseWeights
	// WeakRank is the highest rank HardBot will not take into a duel.
	WeakRank int
}

// ForPhase returns the weights for phase.
func (t Tuning) ForPhase(phase botinternal.RoundPhase) PhaseWeights {
	switch phase {
	case botinternal.PhaseEarly:
		return t.Early
	case botinternal.PhaseLate:
		return t.Late
	default:
		return t.Mid
	}
}

const certainKill = 10.0

// DefaultTuning favours information early and card strength near the showdown.
var DefaultTuning = Tuning{
	Early: PhaseWeights{
		ProtectSelf:     4.0,
		CertainKill:     certainKill,
		GuessWeight:     2.0,
		InfoGain:        0.8,
		DuelWeight:      1.5,
		WeakDuelPenalty: 3.0,
		KeepHighWeight:  0.8,
		CourierRedraw:   1.5,
		SwitchGain:      1.5,
		LeaderBonus:     0.4,
		AggressorBonus:  0.3,
	},
	Mid: PhaseWeights{
		ProtectSelf:     4.0,
		CertainKill:     certainKill,
		GuessWeight:     2.5,
		InfoGain:        0.6,
		DuelWeight:      2.0,
		WeakDuelPenalty: 3.0,
		KeepHighWeight:  1.2,
		CourierRedraw:   1.5,
		SwitchGain:      2.0,
		LeaderBonus:     0.5,
		AggressorBonus:  0.3,
	},
	Late: PhaseWeights{
		ProtectSelf:     4.0,
		CertainKill:     certainKill,
		GuessWeight:     3.0,
		InfoGain:        0.2,
		DuelWeight:      2.5,
		WeakDuelPenalty: 4.0,
		KeepHighWeight:  3.0,
		CourierRedraw:   3.0,
		SwitchGain:      3.0,
		LeaderBonus:     0.6,
		AggressorBonus:  0.2,
	},
	WeakRank: 2,
}

package bot

import (
	"mysteryletter/internal/app"
	"mysteryletter/internal/bot/brain"
	"mysteryletter/internal/bot/internal"
	"mysteryletter/internal/domain"
)

// DecisionContext holds what every selection rule may consult for one decision.
type DecisionContext struct {
	View      app.ProjectedState
	Memory    *brain.Memory
	Estimator *brain.Estimator
	Weights   PhaseWeights
	WeakRank  int
}

func (ctx *DecisionContext) self() string { return ctx.View.You.ID }

func (ctx *DecisionContext) known(id string) (domain.CardKind, bool) {
	if ctx.Memory == nil {
		return domain.NoCard, false
	}
	return ctx.Memory.KnownCard(id)
}

// SelectionRule represents a logic unit that scores a candidate play.
type SelectionRule interface {
	Name() string
	Score(ctx *DecisionContext, c internal.Candidate) float64
}

// DefaultRules is the rule set HardBot sums for every candidate.
func DefaultRules() []SelectionRule {
	return []SelectionRule{
		&ProtectSelfRule{},
		&KnownCardRule{},
		&GuessRule{},
		&InformationRule{},
		&DuelRiskRule{},
		&KeepHighRule{},
		&CourierRule{},
		&TargetRule{},
	}
}

// ProtectSelfRule rewards covering yourself with an Aegis.
type ProtectSelfRule struct{}

func (r *ProtectSelfRule) Name() string { return "ProtectSelf" }

func (r *ProtectSelfRule) Score(ctx *DecisionContext, c internal.Candidate) float64 {
	if c.Card != domain.Aegis {
		return 0
	}
	if c.TargetID == ctx.self() {
		if selfProtected(ctx.View) {
			return 0
		}
		return ctx.Weights.ProtectSelf
	}
	return -ctx.Weights.ProtectSelf / 2
}

// KnownCardRule exploits cards the bot has seen.
type KnownCardRule struct{}

func (r *KnownCardRule) Name() string { return "KnownCard" }

func (r *KnownCardRule) Score(ctx *DecisionContext, c internal.Candidate) float64 {
	if c.TargetID == "" || c.TargetID == ctx.self() {
		return 0
	}
	theirs, ok := ctx.known(c.TargetID)
	if !ok {
		return 0
	}
	mine := internal.Remaining(ctx.View.You.Hand, c.Card)
	switch c.Card {
	case domain.Watcher:
		if c.Guess == theirs {
			return ctx.Weights.CertainKill
		}
	case domain.Courier:
		if theirs == domain.Oracle {
			return ctx.Weights.CertainKill
		}
	case domain.Duelist:
		switch {
		case mine.Rank() > theirs.Rank():
			return ctx.Weights.CertainKill
		case mine.Rank() < theirs.Rank():
			return -ctx.Weights.CertainKill
		}
	case domain.Switch:
		return ctx.Weights.SwitchGain * float64(theirs.Rank()-mine.Rank()) / float64(domain.Oracle.Rank())
	}
	return 0
}

// GuessRule scores a Watcher by the chance its guess is right.
type GuessRule struct{}

func (r *GuessRule) Name() string { return "Guess" }

func (r *GuessRule) Score(ctx *DecisionContext, c internal.Candidate) float64 {
	if c.Card != domain.Watcher || c.TargetID == "" {
		return 0
	}
	if _, ok := ctx.known(c.TargetID); ok {
		return 0
	}
	dist := ctx.Estimator.Distribution(ctx.View, c.TargetID)
	return ctx.Weights.GuessWeight * dist[c.Guess]
}

// InformationRule values peeking at a hand the bot does not know yet.
type InformationRule struct{}

func (r *InformationRule) Name() string { return "Information" }

func (r *InformationRule) Score(ctx *DecisionContext, c internal.Candidate) float64 {
	if c.Card != domain.Seer || c.TargetID == "" {
		return 0
	}
	if _, ok := ctx.known(c.TargetID); ok {
		return -ctx.Weights.InfoGain
	}
	return ctx.Weights.InfoGain
}

// DuelRiskRule weighs a Duelist against an unknown card and refuses weak duels.
type DuelRiskRule struct{}

func (r *DuelRiskRule) Name() string { return "DuelRisk" }

func (r *DuelRiskRule) Score(ctx *DecisionContext, c internal.Candidate) float64 {
	if c.Card != domain.Duelist || c.TargetID == "" {
		return 0
	}
	mine := internal.Remaining(ctx.View.You.Hand, c.Card)
	score := 0.0
	if mine.Rank() <= ctx.WeakRank {
		score -= ctx.Weights.WeakDuelPenalty
	}
	if _, ok := ctx.known(c.TargetID); ok {
		return score
	}
	lower, higher := ctx.Estimator.DuelOdds(ctx.View, c.TargetID, mine.Rank())
	return score + ctx.Weights.DuelWeight*(lower-higher)
}

// KeepHighRule prefers keeping the stronger card for a showdown.
type KeepHighRule struct{}

func (r *KeepHighRule) Name() string { return "KeepHigh" }

func (r *KeepHighRule) Score(ctx *DecisionContext, c internal.Candidate) float64 {
	if c.Card == domain.Switch && c.TargetID != "" {
		return 0
	}
	if c.Card == domain.Courier && c.TargetID == ctx.self() {
		return 0
	}
	kept := internal.Remaining(ctx.View.You.Hand, c.Card)
	return ctx.Weights.KeepHighWeight * float64(kept.Rank()) / float64(domain.Oracle.Rank())
}

// CourierRule sends a weak card of your own away, or forces a known Oracle out.
type CourierRule struct{}

func (r *CourierRule) Name() string { return "Courier" }

func (r *CourierRule) Score(ctx *DecisionContext, c internal.Candidate) float64 {
	if c.Card != domain.Courier || c.TargetID != ctx.self() {
		return 0
	}
	other := internal.Remaining(ctx.View.You.Hand, c.Card)
	if other == domain.Oracle {
		return -ctx.Weights.CertainKill
	}
	if other.Rank() <= ctx.WeakRank {
		return ctx.Weights.CourierRedraw
	}
	return -ctx.Weights.CourierRedraw
}

// TargetRule leans towards the token leader and towards opponents who keep attacking.
type TargetRule struct{}

func (r *TargetRule) Name() string { return "Target" }

func (r *TargetRule) Score(ctx *DecisionContext, c internal.Candidate) float64 {
	if c.TargetID == "" || c.TargetID == ctx.self() || c.Card == domain.Aegis {
		return 0
	}
	score := 0.0
	if entry, ok := ctx.View.Participant(c.TargetID); ok && ctx.View.TokensToWin > 0 {
		score += ctx.Weights.LeaderBonus * float64(entry.Tokens) / float64(ctx.View.TokensToWin)
	}
	if ctx.Memory != nil {
		if p, ok := ctx.Memory.Opponents[c.TargetID]; ok {
			score += ctx.Weights.AggressorBonus * p.Aggression()
		}
	}
	return score
}

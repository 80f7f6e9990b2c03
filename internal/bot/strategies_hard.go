package bot

import (
	"math/rand"

	"mysteryletter/internal/app"
	"mysteryletter/internal/bot/brain"
	"mysteryletter/internal/bot/internal"
	"mysteryletter/internal/domain"
)

// HardBot scores every legal play with its rule pipeline and the bot's memory.
type HardBot struct {
	rng    *rand.Rand
	Tuning Tuning
	Rules  []SelectionRule
}

func (b *HardBot) Decide(view app.ProjectedState, mem *brain.Memory) Move {
	ctx := &DecisionContext{
		View:      view,
		Memory:    mem,
		Estimator: brain.NewEstimator(mem),
		Weights:   b.Tuning.ForPhase(internal.DetectPhase(view)),
		WeakRank:  b.Tuning.WeakRank,
	}

	var best []internal.Candidate
	bestScore := 0.0
	for _, c := range internal.GenerateCandidates(view) {
		if c.Card == domain.Watcher && c.TargetID != "" && c.Guess != b.guess(ctx, c.TargetID) {
			continue
		}
		score := 0.0
		for _, rule := range b.Rules {
			score += rule.Score(ctx, c)
		}
		switch {
		case len(best) == 0 || score > bestScore:
			best, bestScore = []internal.Candidate{c}, score
		case score == bestScore:
			best = append(best, c)
		}
	}
	if len(best) == 0 {
		return Move{}
	}
	c := best[b.rng.Intn(len(best))]
	return Move{Card: c.Card, TargetID: c.TargetID, Guess: c.Guess}
}

// guess names a remembered card, else the Oracle while it is unaccounted for,
// else the most likely unseen kind.
func (b *HardBot) guess(ctx *DecisionContext, targetID string) domain.CardKind {
	if k, ok := ctx.known(targetID); ok && domain.ValidGuess(k) {
		return k
	}
	if ctx.Estimator.Unseen(ctx.View)[domain.Oracle] > 0 {
		return domain.Oracle
	}
	k, _ := ctx.Estimator.MostLikelyGuess(ctx.View, targetID)
	return k
}

package brain

import (
	"mysteryletter/internal/app"
	"mysteryletter/internal/domain"
)

// Estimator provides probabilistic insights based on memory and the public view.
type Estimator struct {
	Memory *Memory
}

// NewEstimator creates a new reasoning engine. A nil memory means nothing is known.
func NewEstimator(m *Memory) *Estimator {
	return &Estimator{Memory: m}
}

// Unseen counts, per kind, the cards the viewer cannot account for: the full
// deck minus the discard pile, the viewer's hand and every card known to sit
// in an alive opponent's hand.
func (e *Estimator) Unseen(view app.ProjectedState) [domain.KindCount + 1]int {
	var counts [domain.KindCount + 1]int
	for _, info := range domain.Catalog() {
		counts[info.Kind] = info.Count
	}
	take := func(k domain.CardKind) {
		if k.Valid() && counts[k] > 0 {
			counts[k]--
		}
	}
	for _, k := range view.Discard {
		take(k)
	}
	if view.You != nil {
		for _, k := range view.You.Hand {
			take(k)
		}
	}
	for _, id := range e.knownAlive(view) {
		take(e.Memory.Known[id])
	}
	return counts
}

func (e *Estimator) knownAlive(view app.ProjectedState) []string {
	if e.Memory == nil {
		return nil
	}
	var ids []string
	for _, entry := range view.Roster {
		if _, ok := e.Memory.Known[entry.ID]; ok && entry.Alive && entry.ID != e.Memory.SelfID {
			ids = append(ids, entry.ID)
		}
	}
	return ids
}

// Distribution returns the probability that targetID holds each kind.
func (e *Estimator) Distribution(view app.ProjectedState, targetID string) [domain.KindCount + 1]float64 {
	var dist [domain.KindCount + 1]float64
	if e.Memory != nil {
		if k, ok := e.Memory.Known[targetID]; ok {
			dist[k] = 1
			return dist
		}
	}
	unseen := e.Unseen(view)
	total := 0
	for _, n := range unseen {
		total += n
	}
	if total == 0 {
		return dist
	}
	for k, n := range unseen {
		dist[k] = float64(n) / float64(total)
	}
	return dist
}

// MostLikelyGuess returns the legal Watcher guess with the highest probability
// for targetID. Ties favour the higher rank.
func (e *Estimator) MostLikelyGuess(view app.ProjectedState, targetID string) (domain.CardKind, float64) {
	dist := e.Distribution(view, targetID)
	best, bestP := domain.Seer, -1.0
	for _, k := range domain.AllKinds() {
		if !domain.ValidGuess(k) {
			continue
		}
		if dist[k] >= bestP {
			best, bestP = k, dist[k]
		}
	}
	return best, bestP
}

// DuelOdds returns the chances that targetID's card ranks below and above rank.
func (e *Estimator) DuelOdds(view app.ProjectedState, targetID string, rank int) (lower, higher float64) {
	dist := e.Distribution(view, targetID)
	for k, p := range dist {
		kind := domain.CardKind(k)
		if !kind.Valid() {
			continue
		}
		switch {
		case kind.Rank() < rank:
			lower += p
		case kind.Rank() > rank:
			higher += p
		}
	}
	return lower, higher
}

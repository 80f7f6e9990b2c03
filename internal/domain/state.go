package domain

// Phase represents the lifecycle stage of a room.
type Phase string

const (
	// PhaseLobby is the state before the first round or after a new game.
	PhaseLobby Phase = "lobby"
	// PhaseRoundActive means cards are in hands and turns are being taken.
	PhaseRoundActive Phase = "round_active"
	// PhaseRoundEnded means a round finished and another can be started.
	PhaseRoundEnded Phase = "round_ended"
	// PhaseGameEnded means a participant reached TokensToWin.
	PhaseGameEnded Phase = "game_ended"
)

// Participant holds the state of one seat.
type Participant struct {
	ID         string
	Name       string
	IsBot      bool
	SkillLevel int // 1..3, bots only
	Hand       []CardKind
	Alive      bool
	Protected  bool // immune to targeted effects until the start of this participant's turn
	Tokens     int
}

// Holds reports whether the hand contains k.
func (p *Participant) Holds(k CardKind) bool {
	for _, c := range p.Hand {
		if c == k {
			return true
		}
	}
	return false
}

// RemoveCard takes one copy of k out of the hand.
func (p *Participant) RemoveCard(k CardKind) bool {
	for i, c := range p.Hand {
		if c == k {
			p.Hand = append(p.Hand[:i:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}

// SoleCard returns the single card held between turns, or NoCard.
func (p *Participant) SoleCard() CardKind {
	if len(p.Hand) == 0 {
		return NoCard
	}
	return p.Hand[0]
}

// HighestRank returns the best rank in hand, 0 for an empty hand.
func (p *Participant) HighestRank() int {
	best := 0
	for _, c := range p.Hand {
		if c.Rank() > best {
			best = c.Rank()
		}
	}
	return best
}

func (p *Participant) resetForRound() {
	p.Hand = nil
	p.Alive = true
	p.Protected = false
}

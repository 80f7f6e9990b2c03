package domain

// Session is the authoritative state of one room.
type Session struct {
	RoomID       string
	HostID       string
	Seating      []string // participant ids in join order
	Participants map[string]*Participant

	TurnOrder     []string // alive participant ids in seating order
	CurrentTurnID string
	TurnSeq       int // incremented each time a turn starts

	Deck    []CardKind // stack, draws pop from the end
	Discard []CardKind // play order

	Phase             Phase
	RoundNumber       int
	LastRoundWinnerID string
	GameWinnerID      string

	Log *EventLog
}

// NewSession creates an empty room in the lobby phase.
func NewSession(roomID string) *Session {
	return &Session{
		RoomID:       roomID,
		Participants: make(map[string]*Participant),
		Phase:        PhaseLobby,
		Log:          NewEventLog(LogCapacity),
	}
}

// RoundActive reports whether a round is in progress.
func (s *Session) RoundActive() bool {
	return s.Phase == PhaseRoundActive
}

// Participant looks up a seated participant.
func (s *Session) Participant(id string) (*Participant, bool) {
	p, ok := s.Participants[id]
	return p, ok
}

// Len returns the number of seated participants.
func (s *Session) Len() int { return len(s.Seating) }

// Ordered returns participants in seating order.
func (s *Session) Ordered() []*Participant {
	out := make([]*Participant, 0, len(s.Seating))
	for _, id := range s.Seating {
		out = append(out, s.Participants[id])
	}
	return out
}

// HumanCount returns the number of seated non-bot participants.
func (s *Session) HumanCount() int {
	n := 0
	for _, p := range s.Participants {
		if !p.IsBot {
			n++
		}
	}
	return n
}

// BotIDs returns the bot participant ids in seating order.
func (s *Session) BotIDs() []string {
	var ids []string
	for _, id := range s.Seating {
		if s.Participants[id].IsBot {
			ids = append(ids, id)
		}
	}
	return ids
}

// Seat adds a participant at the end of the seating order.
func (s *Session) Seat(p *Participant) error {
	if _, exists := s.Participants[p.ID]; exists {
		return ErrDuplicateID
	}
	if len(s.Seating) >= MaxParticipants {
		return ErrRoomFull
	}
	s.Participants[p.ID] = p
	s.Seating = append(s.Seating, p.ID)
	return nil
}

// Unseat removes a participant from the room and from the turn order.
// Callers eliminate the participant first when a round is active.
func (s *Session) Unseat(id string) (*Participant, bool) {
	p, ok := s.Participants[id]
	if !ok {
		return nil, false
	}
	delete(s.Participants, id)
	s.Seating = removeID(s.Seating, id)
	s.TurnOrder = removeID(s.TurnOrder, id)
	if s.HostID == id {
		s.HostID = ""
	}
	return p, true
}

// AliveIDs returns the alive participants in seating order.
func (s *Session) AliveIDs() []string {
	var ids []string
	for _, id := range s.Seating {
		if s.Participants[id].Alive {
			ids = append(ids, id)
		}
	}
	return ids
}

// RecomputeTurnOrder rebuilds TurnOrder from the alive participants.
func (s *Session) RecomputeTurnOrder() {
	s.TurnOrder = s.AliveIDs()
}

// NextAliveAfter returns the next alive participant after id in seating order,
// wrapping around. id itself is returned only when it is the sole survivor.
func (s *Session) NextAliveAfter(id string) string {
	start := indexOf(s.Seating, id)
	n := len(s.Seating)
	for step := 1; step <= n; step++ {
		candidate := s.Seating[(start+step+n)%n]
		if p := s.Participants[candidate]; p.Alive {
			return candidate
		}
	}
	return ""
}

// DrawCard pops the top card of the deck.
func (s *Session) DrawCard() (CardKind, error) {
	if len(s.Deck) == 0 {
		return NoCard, ErrDeckEmpty
	}
	top := s.Deck[len(s.Deck)-1]
	s.Deck = s.Deck[:len(s.Deck)-1]
	return top, nil
}

// Eliminate knocks a participant out, moving their hand to the discard pile.
func (s *Session) Eliminate(id string) {
	p, ok := s.Participants[id]
	if !ok || !p.Alive {
		return
	}
	s.Discard = append(s.Discard, p.Hand...)
	p.Hand = nil
	p.Alive = false
	p.Protected = false
	s.RecomputeTurnOrder()
}

// CardsAccountedFor returns alive hands plus deck plus discard.
// During an active round it always equals TotalCards.
func (s *Session) CardsAccountedFor() int {
	n := len(s.Deck) + len(s.Discard)
	for _, p := range s.Participants {
		if p.Alive {
			n += len(p.Hand)
		}
	}
	return n
}

// ResetForRound clears per-round state on every participant.
func (s *Session) ResetForRound(deck []CardKind) {
	s.Deck = deck
	s.Discard = nil
	s.CurrentTurnID = ""
	for _, p := range s.Participants {
		p.resetForRound()
	}
	s.RecomputeTurnOrder()
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func removeID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

package app

import "mysteryletter/internal/domain"

// RosterEntry is what every viewer may know about a participant.
type RosterEntry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	IsBot      bool   `json:"is_bot"`
	SkillLevel int    `json:"skill_level,omitempty"`
	IsHost     bool   `json:"is_host"`
	Alive      bool   `json:"alive"`
	Protected  bool   `json:"protected"`
	Tokens     int    `json:"tokens"`
	HandSize   int    `json:"hand_size"`
}

// SelfView is the viewer's private part of the projection.
type SelfView struct {
	ID       string            `json:"id"`
	Hand     []domain.CardKind `json:"hand"`
	Playable []domain.CardKind `json:"playable"`
	MustDraw bool              `json:"must_draw"`
	Forced   string            `json:"forced"`
}

// ProjectedState is the redacted view of a session for a single viewer.
type ProjectedState struct {
	RoomID        string            `json:"room_id"`
	HostID        string            `json:"host_id"`
	Phase         domain.Phase      `json:"phase"`
	RoundNumber   int               `json:"round_number"`
	RoundActive   bool              `json:"round_active"`
	CurrentTurnID string            `json:"current_turn_id"`
	TurnSeq       int               `json:"turn_seq"`
	DeckSize      int               `json:"deck_size"`
	Discard       []domain.CardKind `json:"discard"`
	Roster        []RosterEntry     `json:"roster"`
	You           *SelfView         `json:"you,omitempty"`
	GameWinnerID  string            `json:"game_winner_id,omitempty"`
	TokensToWin   int               `json:"tokens_to_win"`
	Log           []string          `json:"log"`
}

// Project renders the session as seen by viewerID. Unknown viewers get the public view only.
func Project(session *domain.Session, viewerID string) ProjectedState {
	state := ProjectedState{
		RoomID:        session.RoomID,
		HostID:        session.HostID,
		Phase:         session.Phase,
		RoundNumber:   session.RoundNumber,
		RoundActive:   session.RoundActive(),
		CurrentTurnID: session.CurrentTurnID,
		TurnSeq:       session.TurnSeq,
		DeckSize:      len(session.Deck),
		Discard:       append([]domain.CardKind{}, session.Discard...),
		Roster:        make([]RosterEntry, 0, session.Len()),
		GameWinnerID:  session.GameWinnerID,
		TokensToWin:   domain.TokensToWin,
		Log:           session.Log.Entries(),
	}
	for _, p := range session.Ordered() {
		state.Roster = append(state.Roster, RosterEntry{
			ID:         p.ID,
			Name:       p.Name,
			IsBot:      p.IsBot,
			SkillLevel: p.SkillLevel,
			IsHost:     p.ID == session.HostID,
			Alive:      p.Alive,
			Protected:  p.Protected,
			Tokens:     p.Tokens,
			HandSize:   len(p.Hand),
		})
	}

	if viewer, ok := session.Participant(viewerID); ok {
		self := &SelfView{
			ID:       viewer.ID,
			Hand:     append([]domain.CardKind{}, viewer.Hand...),
			Playable: []domain.CardKind{},
			Forced:   domain.EvaluateForcedRule(viewer.Hand).String(),
		}
		if session.RoundActive() && session.CurrentTurnID == viewer.ID {
			self.MustDraw = len(viewer.Hand) == 1 && len(session.Deck) > 0
			if len(viewer.Hand) == 2 {
				self.Playable = domain.LegalCards(viewer.Hand)
			}
		}
		state.You = self
	}
	return state
}

// Participant returns the roster entry for id.
func (ps ProjectedState) Participant(id string) (RosterEntry, bool) {
	for _, e := range ps.Roster {
		if e.ID == id {
			return e, true
		}
	}
	return RosterEntry{}, false
}

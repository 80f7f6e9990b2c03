package app

import "mysteryletter/internal/domain"

// EventKind identifies emitted domain events for transport dispatch.
type EventKind string

const (
	EventParticipantJoined EventKind = "participant_joined"
	EventParticipantLeft   EventKind = "participant_left"
	EventHostChanged       EventKind = "host_changed"
	EventBotsConfigured    EventKind = "bots_configured"
	EventGameReset         EventKind = "game_reset"
	EventRoundStarted      EventKind = "round_started"
	EventTurnStarted       EventKind = "turn_started"
	EventCardDrawn         EventKind = "card_drawn"    // private to the drawer
	EventCardPlayed        EventKind = "card_played"   // public
	EventCardRevealed      EventKind = "card_revealed" // private to the viewer
	EventCardReceived      EventKind = "card_received" // private, after a Switch
	EventCardDiscarded     EventKind = "card_discarded"
	EventProtected         EventKind = "participant_protected"
	EventEliminated        EventKind = "participant_eliminated"
	EventRoundEnded        EventKind = "round_ended"
	EventGameEnded         EventKind = "game_ended"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // participant IDs; empty means broadcast
}

// Private reports whether the event must only reach its recipients.
func (e Event) Private() bool { return len(e.Recipients) > 0 }

// VisibleTo reports whether participantID may receive the event.
func (e Event) VisibleTo(participantID string) bool {
	if !e.Private() {
		return true
	}
	for _, id := range e.Recipients {
		if id == participantID {
			return true
		}
	}
	return false
}

type ParticipantJoinedPayload struct {
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	IsBot         bool   `json:"is_bot"`
}

// Reasons for a participant leaving.
const (
	LeaveReasonLeft         = "left"
	LeaveReasonKicked       = "kicked"
	LeaveReasonDisconnected = "disconnected"
	LeaveReasonReplaced     = "replaced"
)

type ParticipantLeftPayload struct {
	ParticipantID string `json:"participant_id"`
	Reason        string `json:"reason"`
}

type HostChangedPayload struct {
	HostID string `json:"host_id"`
}

type BotsConfiguredPayload struct {
	Count      int      `json:"count"`
	SkillLevel int      `json:"skill_level"`
	BotIDs     []string `json:"bot_ids"`
}

type RoundStartedPayload struct {
	RoundNumber int    `json:"round_number"`
	StarterID   string `json:"starter_id"`
	DeckSize    int    `json:"deck_size"`
}

type TurnStartedPayload struct {
	ParticipantID string `json:"participant_id"`
	TurnSeq       int    `json:"turn_seq"`
}

type CardDrawnPayload struct {
	ParticipantID string          `json:"participant_id"`
	Card          domain.CardKind `json:"card"`
	DeckSize      int             `json:"deck_size"`
}

type CardPlayedPayload struct {
	ActorID  string          `json:"actor_id"`
	Card     domain.CardKind `json:"card"`
	TargetID string          `json:"target_id,omitempty"`
	Guess    domain.CardKind `json:"guess,omitempty"`
	NoOp     bool            `json:"no_op"`
}

// Reveal reasons.
const (
	RevealSeer    = "seer"
	RevealDuelist = "duelist"
)

type CardRevealedPayload struct {
	ViewerID string          `json:"viewer_id"`
	OwnerID  string          `json:"owner_id"`
	Card     domain.CardKind `json:"card"`
	Reason   string          `json:"reason"`
}

type CardReceivedPayload struct {
	ParticipantID string          `json:"participant_id"`
	FromID        string          `json:"from_id"`
	Card          domain.CardKind `json:"card"`
	Gave          domain.CardKind `json:"gave"`
}

type CardDiscardedPayload struct {
	ParticipantID string          `json:"participant_id"`
	Card          domain.CardKind `json:"card"`
	ForcedBy      string          `json:"forced_by,omitempty"`
}

type ProtectedPayload struct {
	ParticipantID string `json:"participant_id"`
	ByID          string `json:"by_id"`
}

// Elimination reasons.
const (
	EliminatedByGuess      = "guessed"
	EliminatedByDuel       = "duel"
	EliminatedByOracle     = "oracle_discarded"
	EliminatedByForcedRule = "oracle_with_heir"
	EliminatedByDeparture  = "departed"
)

type EliminatedPayload struct {
	ParticipantID string            `json:"participant_id"`
	Reason        string            `json:"reason"`
	Discarded     []domain.CardKind `json:"discarded"`
}

// Round end reasons.
const (
	RoundEndLastStanding = "last_standing"
	RoundEndShowdown     = "showdown"
)

type RoundEndedPayload struct {
	RoundNumber int                        `json:"round_number"`
	WinnerID    string                     `json:"winner_id"`
	Reason      string                     `json:"reason"`
	Revealed    map[string]domain.CardKind `json:"revealed"`
	Tokens      map[string]int             `json:"tokens"`
}

type GameEndedPayload struct {
	WinnerID string         `json:"winner_id"`
	Tokens   map[string]int `json:"tokens"`
}

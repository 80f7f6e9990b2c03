package domain

import "errors"

// Turn ownership errors.
var (
	ErrNotYourTurn        = errors.New("not your turn")
	ErrRoundNotActive     = errors.New("round not active")
	ErrPlayerEliminated   = errors.New("participant eliminated")
	ErrUnknownParticipant = errors.New("participant not found")
)

// Rule violations.
var (
	ErrMustPlayForcedCard                 = errors.New("heir must be played")
	ErrCannotVoluntarilyDiscardLosingCard = errors.New("oracle cannot be played")
	ErrIllegalGuess                       = errors.New("illegal guess")
	ErrGuessRequired                      = errors.New("guess required")
	ErrCardNotInHand                      = errors.New("card not in hand")
	ErrInvalidTarget                      = errors.New("invalid target")
	ErrHandAlreadyFull                    = errors.New("hand already full")
	ErrDrawRequired                       = errors.New("draw before playing")
	ErrUnknownCard                        = errors.New("unknown card")
)

// Resource errors.
var (
	ErrInsufficientPlayers = errors.New("not enough participants to start")
	ErrDeckEmpty           = errors.New("deck empty")
	ErrRoomFull            = errors.New("room full")
	ErrRoundInProgress     = errors.New("round in progress")
	ErrGameOver            = errors.New("game over, start a new game")
	ErrInvalidBotConfig    = errors.New("invalid bot configuration")
	ErrDuplicateID         = errors.New("participant already seated")
)

// Authorization errors.
var (
	ErrNotHost            = errors.New("only the host can do that")
	ErrHostAlreadyClaimed = errors.New("host already claimed")
	ErrUnknownTarget      = errors.New("target not found")
)

// ErrorKind groups errors for reporting.
type ErrorKind string

const (
	KindTurn          ErrorKind = "turn"
	KindRule          ErrorKind = "rule"
	KindResource      ErrorKind = "resource"
	KindAuthorization ErrorKind = "authorization"
	KindInternal      ErrorKind = "internal"
)

type errorEntry struct {
	err  error
	code string
	kind ErrorKind
}

var errorTable = []errorEntry{
	{ErrNotYourTurn, "not_your_turn", KindTurn},
	{ErrRoundNotActive, "round_not_active", KindTurn},
	{ErrPlayerEliminated, "player_eliminated", KindTurn},
	{ErrUnknownParticipant, "unknown_participant", KindTurn},

	{ErrMustPlayForcedCard, "must_play_forced_card", KindRule},
	{ErrCannotVoluntarilyDiscardLosingCard, "cannot_discard_losing_card", KindRule},
	{ErrIllegalGuess, "illegal_guess", KindRule},
	{ErrGuessRequired, "guess_required", KindRule},
	{ErrCardNotInHand, "card_not_in_hand", KindRule},
	{ErrInvalidTarget, "invalid_target", KindRule},
	{ErrHandAlreadyFull, "hand_already_full", KindRule},
	{ErrDrawRequired, "draw_required", KindRule},
	{ErrUnknownCard, "unknown_card", KindRule},

	{ErrInsufficientPlayers, "insufficient_players", KindResource},
	{ErrDeckEmpty, "deck_empty", KindResource},
	{ErrRoomFull, "room_full", KindResource},
	{ErrRoundInProgress, "round_in_progress", KindResource},
	{ErrGameOver, "game_over", KindResource},
	{ErrInvalidBotConfig, "invalid_bot_config", KindResource},
	{ErrDuplicateID, "duplicate_participant", KindResource},

	{ErrNotHost, "not_host", KindAuthorization},
	{ErrHostAlreadyClaimed, "host_already_claimed", KindAuthorization},
	{ErrUnknownTarget, "unknown_target", KindAuthorization},
}

// Code returns a stable wire code for err, or "internal" when it is not a domain error.
func Code(err error) string {
	if e, ok := lookup(err); ok {
		return e.code
	}
	return "internal"
}

// Classify reports which error family err belongs to.
func Classify(err error) ErrorKind {
	if e, ok := lookup(err); ok {
		return e.kind
	}
	return KindInternal
}

func lookup(err error) (errorEntry, bool) {
	if err == nil {
		return errorEntry{}, false
	}
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return e, true
		}
	}
	return errorEntry{}, false
}

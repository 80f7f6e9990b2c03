package domain

const (
	// MinParticipants is the smallest table that can start a round.
	MinParticipants = 2
	// MaxParticipants is the number of seats in a room.
	MaxParticipants = 6
	// TokensToWin ends the game once a participant collects this many round wins.
	TokensToWin = 3
	// LogCapacity bounds the room event log.
	LogCapacity = 50
	// MaxBots is the most computer-controlled participants a host can add.
	MaxBots = 3
)

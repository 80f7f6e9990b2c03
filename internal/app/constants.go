package app

import (
	"time"

	"mysteryletter/internal/domain"
)

// MinPlayersToStartGame defines the minimum number of seated participants required to start a round.
const MinPlayersToStartGame = domain.MinParticipants

// DefaultTicketTTL bounds how long a seat ticket can be used to rebind a connection.
const DefaultTicketTTL = 12 * time.Hour

package app

import (
	"mysteryletter/internal/domain"
)

// endRound settles the round, awards a token and detects the end of the game.
func (s *Service) endRound(session *domain.Session, reason string) []Event {
	if !session.RoundActive() {
		return nil
	}
	winnerID := ""
	switch reason {
	case RoundEndLastStanding:
		if alive := session.AliveIDs(); len(alive) > 0 {
			winnerID = alive[0]
		}
	default:
		winnerID = ShowdownWinner(session)
	}

	revealed := make(map[string]domain.CardKind)
	for _, id := range session.TurnOrder {
		revealed[id] = session.Participants[id].SoleCard()
	}

	session.Phase = domain.PhaseRoundEnded
	session.CurrentTurnID = ""

	winner, ok := session.Participant(winnerID)
	if !ok {
		// Everybody left mid-round; nothing to award.
		session.Log.Addf("Round %d ended without a winner.", session.RoundNumber)
		return []Event{{
			Kind:    EventRoundEnded,
			Payload: RoundEndedPayload{RoundNumber: session.RoundNumber, Reason: reason, Revealed: revealed, Tokens: tokens(session)},
		}}
	}

	winner.Tokens++
	session.LastRoundWinnerID = winner.ID
	if reason == RoundEndShowdown {
		session.Log.Addf("The deck ran out. %s wins round %d with the %s.", winner.Name, session.RoundNumber, winner.SoleCard().Name())
	} else {
		session.Log.Addf("%s is the last one standing and wins round %d.", winner.Name, session.RoundNumber)
	}

	events := []Event{{
		Kind: EventRoundEnded,
		Payload: RoundEndedPayload{
			RoundNumber: session.RoundNumber,
			WinnerID:    winner.ID,
			Reason:      reason,
			Revealed:    revealed,
			Tokens:      tokens(session),
		},
	}}

	if winner.Tokens >= domain.TokensToWin {
		session.Phase = domain.PhaseGameEnded
		session.GameWinnerID = winner.ID
		session.Log.Addf("%s wins the game with %d tokens!", winner.Name, winner.Tokens)
		events = append(events, Event{
			Kind:    EventGameEnded,
			Payload: GameEndedPayload{WinnerID: winner.ID, Tokens: tokens(session)},
		})
	}
	return events
}

// ShowdownWinner returns the alive participant with the highest card.
// Ties go to the earliest participant in the turn order; an empty hand ranks 0.
func ShowdownWinner(session *domain.Session) string {
	winner := ""
	best := -1
	for _, id := range session.TurnOrder {
		p := session.Participants[id]
		if !p.Alive {
			continue
		}
		if rank := p.HighestRank(); rank > best {
			best = rank
			winner = id
		}
	}
	return winner
}

func tokens(session *domain.Session) map[string]int {
	out := make(map[string]int, len(session.Participants))
	for id, p := range session.Participants {
		out[id] = p.Tokens
	}
	return out
}

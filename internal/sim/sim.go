// Package sim plays bot-only games through the engine to compare bot levels.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"mysteryletter/internal/app"
	"mysteryletter/internal/bot"
	"mysteryletter/internal/domain"
	"mysteryletter/internal/logger"
)

// maxTurnsPerRound bounds a round; a full deck cannot last longer.
const maxTurnsPerRound = 64

var ErrInvalidConfig = errors.New("invalid simulation config")

// Config describes a batch of games.
type Config struct {
	Games  int
	Seed   int64
	Levels []bot.BotLevel // one seat per entry, in seating order
	Logger *slog.Logger
}

// Seat is the running tally for one simulated participant.
type Seat struct {
	ID         string
	Name       string
	Level      bot.BotLevel
	Wins       int
	RoundsWon  int
	Eliminated int
}

// Result aggregates a batch.
type Result struct {
	Games        int
	Rounds       int
	Turns        int
	Seats        []*Seat
	RoundEnds    map[string]int          // by round end reason
	Eliminations map[string]int          // by elimination reason
	CardsPlayed  map[domain.CardKind]int // includes no-op plays
}

// WinRate returns the share of games seat won.
func (r Result) WinRate(seat *Seat) float64 {
	if r.Games == 0 {
		return 0
	}
	return float64(seat.Wins) / float64(r.Games)
}

func (c Config) validate() error {
	if c.Games <= 0 {
		return fmt.Errorf("%w: games must be positive", ErrInvalidConfig)
	}
	if n := len(c.Levels); n < domain.MinParticipants || n > domain.MaxParticipants {
		return fmt.Errorf("%w: need %d to %d bots, got %d", ErrInvalidConfig, domain.MinParticipants, domain.MaxParticipants, n)
	}
	for _, l := range c.Levels {
		if l < bot.BotLevelEasy || l > bot.BotLevelHard {
			return fmt.Errorf("%w: unknown level %d", ErrInvalidConfig, l)
		}
	}
	return nil
}

// Run plays cfg.Games games to completion. The same seed replays the same batch.
func Run(ctx context.Context, cfg Config) (Result, error) {
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}

	res := Result{
		RoundEnds:    make(map[string]int),
		Eliminations: make(map[string]int),
		CardsPlayed:  make(map[domain.CardKind]int),
	}
	seats := make(map[string]*Seat, len(cfg.Levels))
	for i, level := range cfg.Levels {
		s := &Seat{ID: fmt.Sprintf("sim-%d", i+1), Name: fmt.Sprintf("%s-%d", level, i+1), Level: level}
		res.Seats = append(res.Seats, s)
		seats[s.ID] = s
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	for g := 0; g < cfg.Games; g++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		winner, err := playGame(g, rng, res.Seats, &res)
		if err != nil {
			return res, fmt.Errorf("game %d: %w", g+1, err)
		}
		seats[winner].Wins++
		res.Games++
		log.Debug("game finished", "game", g+1, "winner", seats[winner].Name)
	}
	return res, nil
}

// playGame seats the bots, rotated by game so nobody always opens, and plays
// rounds until one of them reaches the winning token count.
func playGame(game int, rng *rand.Rand, seats []*Seat, res *Result) (string, error) {
	svc := app.NewService(rand.New(rand.NewSource(rng.Int63())))
	session := domain.NewSession("SIM")
	for i := range seats {
		s := seats[(i+game)%len(seats)]
		p := &domain.Participant{ID: s.ID, Name: s.Name, IsBot: true, SkillLevel: int(s.Level), Alive: true}
		if err := session.Seat(p); err != nil {
			return "", err
		}
	}
	host := session.Seating[0]
	session.HostID = host

	agents := make(map[string]*bot.Agent, len(seats))
	if err := bot.SyncAgents(agents, session, rng); err != nil {
		return "", err
	}
	observe := func(events []app.Event) {
		for _, a := range agents {
			a.Observe(events)
		}
		res.tally(events)
	}

	for session.Phase != domain.PhaseGameEnded {
		events, err := svc.StartRound(session, host)
		if err != nil {
			return "", err
		}
		observe(events)
		res.Rounds++

		for turns := 0; session.RoundActive(); turns++ {
			if turns >= maxTurnsPerRound {
				return "", fmt.Errorf("round %d did not finish", session.RoundNumber)
			}
			agent, ok := agents[session.CurrentTurnID]
			if !ok {
				return "", fmt.Errorf("no agent for %q", session.CurrentTurnID)
			}
			events, err := agent.TakeTurn(svc, session)
			observe(events)
			if err != nil {
				return "", err
			}
			res.Turns++
		}
	}
	return session.GameWinnerID, nil
}

func (r *Result) tally(events []app.Event) {
	for _, ev := range events {
		switch p := ev.Payload.(type) {
		case app.CardPlayedPayload:
			r.CardsPlayed[p.Card]++
		case app.EliminatedPayload:
			r.Eliminations[p.Reason]++
			r.seat(p.ParticipantID).Eliminated++
		case app.RoundEndedPayload:
			r.RoundEnds[p.Reason]++
			r.seat(p.WinnerID).RoundsWon++
		}
	}
}

func (r *Result) seat(id string) *Seat {
	for _, s := range r.Seats {
		if s.ID == id {
			return s
		}
	}
	return &Seat{}
}

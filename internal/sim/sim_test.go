package sim

import (
	"context"
	"errors"
	"testing"

	"mysteryletter/internal/bot"
	"mysteryletter/internal/domain"
)

func TestRunPlaysGamesToCompletion(t *testing.T) {
	res, err := Run(context.Background(), Config{
		Games:  5,
		Seed:   42,
		Levels: []bot.BotLevel{bot.BotLevelEasy, bot.BotLevelMedium, bot.BotLevelHard},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Games != 5 {
		t.Fatalf("games = %d", res.Games)
	}
	wins := 0
	for _, s := range res.Seats {
		wins += s.Wins
	}
	if wins != res.Games {
		t.Fatalf("wins = %d, want one per game", wins)
	}
	if res.Rounds < res.Games*domain.TokensToWin {
		t.Fatalf("rounds = %d, fewer than a game needs", res.Rounds)
	}
	ends := 0
	for _, n := range res.RoundEnds {
		ends += n
	}
	if ends != res.Rounds {
		t.Fatalf("round ends = %d, rounds = %d", ends, res.Rounds)
	}
	if len(res.CardsPlayed) == 0 || res.Turns == 0 {
		t.Fatalf("no plays recorded: %+v", res)
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no games", Config{Levels: []bot.BotLevel{bot.BotLevelEasy, bot.BotLevelEasy}}},
		{"one bot", Config{Games: 1, Levels: []bot.BotLevel{bot.BotLevelEasy}}},
		{"too many bots", Config{Games: 1, Levels: make([]bot.BotLevel, domain.MaxParticipants+1)}},
		{"unknown level", Config{Games: 1, Levels: []bot.BotLevel{bot.BotLevelEasy, 7}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Run(context.Background(), tt.cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Run(ctx, Config{Games: 3, Levels: []bot.BotLevel{bot.BotLevelEasy, bot.BotLevelHard}})
	if !errors.Is(err, context.Canceled) || res.Games != 0 {
		t.Fatalf("Run after cancel = %d games, %v", res.Games, err)
	}
}

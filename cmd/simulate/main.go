// Command simulate plays bot-only Mystery Letter games and prints how each level fared.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"time"

	"mysteryletter/internal/bot"
	"mysteryletter/internal/sim"

	"github.com/pterm/pterm"
)

func main() {
	games := flag.Int("games", 100, "number of games to play")
	seed := flag.Int64("seed", 0, "random seed; 0 uses the clock")
	bots := flag.String("bots", "easy,medium,hard", "comma separated bot levels, one per seat")
	verbose := flag.Bool("v", false, "log every finished game")
	flag.Parse()

	levels, err := parseLevels(*bots)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(2)
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	logger := pterm.DefaultLogger
	if *verbose {
		logger = *logger.WithLevel(pterm.LogLevelDebug)
	}
	log := slog.New(pterm.NewSlogHandler(&logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Playing %d games (seed %d) ...", *games, *seed))
	res, err := sim.Run(ctx, sim.Config{Games: *games, Seed: *seed, Levels: levels, Logger: log})
	if err != nil {
		spinner.Fail(err.Error())
		if res.Games == 0 {
			os.Exit(1)
		}
	} else {
		spinner.Success(fmt.Sprintf("Played %d games, %d rounds, %d turns", res.Games, res.Rounds, res.Turns))
	}
	render(res)
}

func parseLevels(s string) ([]bot.BotLevel, error) {
	var levels []bot.BotLevel
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		level, ok := bot.ParseLevel(name)
		if !ok {
			return nil, fmt.Errorf("unknown bot level %q", part)
		}
		levels = append(levels, level)
	}
	return levels, nil
}

func render(res sim.Result) {
	seats := pterm.TableData{{"Seat", "Level", "Games won", "Win rate", "Rounds won", "Eliminated"}}
	for _, s := range res.Seats {
		seats = append(seats, []string{
			pterm.LightCyan(s.Name),
			s.Level.String(),
			fmt.Sprint(s.Wins),
			fmt.Sprintf("%.1f%%", 100*res.WinRate(s)),
			fmt.Sprint(s.RoundsWon),
			fmt.Sprint(s.Eliminated),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(seats).Render()

	cards := pterm.TableData{{"Card", "Played"}}
	for _, k := range slices.Sorted(maps.Keys(res.CardsPlayed)) {
		cards = append(cards, []string{k.String(), fmt.Sprint(res.CardsPlayed[k])})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(cards).Render()

	reasons := pterm.TableData{{"Outcome", "Reason", "Count"}}
	for _, r := range slices.Sorted(maps.Keys(res.RoundEnds)) {
		reasons = append(reasons, []string{"round ended", r, fmt.Sprint(res.RoundEnds[r])})
	}
	for _, r := range slices.Sorted(maps.Keys(res.Eliminations)) {
		reasons = append(reasons, []string{"eliminated", r, fmt.Sprint(res.Eliminations[r])})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(reasons).Render()
}

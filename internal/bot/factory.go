package bot

import (
	"fmt"
	"math/rand"
	"time"
)

// BotLevel is the skill level a host picks for the room's bots.
type BotLevel int

const (
	BotLevelEasy   BotLevel = 1
	BotLevelMedium BotLevel = 2
	BotLevelHard   BotLevel = 3
)

func (l BotLevel) String() string {
	switch l {
	case BotLevelEasy:
		return "easy"
	case BotLevelMedium:
		return "medium"
	case BotLevelHard:
		return "hard"
	default:
		return fmt.Sprintf("level-%d", int(l))
	}
}

// ParseLevel maps an identity difficulty string to a level.
func ParseLevel(s string) (BotLevel, bool) {
	switch s {
	case "easy":
		return BotLevelEasy, true
	case "medium":
		return BotLevelMedium, true
	case "hard":
		return BotLevelHard, true
	default:
		return 0, false
	}
}

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel, rng *rand.Rand) (Brain, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	switch level {
	case BotLevelEasy:
		return &EasyBot{rng: rng}, nil
	case BotLevelMedium:
		return &MediumBot{rng: rng}, nil
	case BotLevelHard:
		return &HardBot{rng: rng, Tuning: DefaultTuning, Rules: DefaultRules()}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}

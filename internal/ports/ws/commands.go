package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mysteryletter/internal/app"
	"mysteryletter/internal/domain"
	"mysteryletter/internal/lobby"
)

// Command types a client may send.
const (
	CmdClaimHost     = "claim_host"
	CmdConfigureBots = "configure_bots"
	CmdNewGame       = "new_game"
	CmdStartRound    = "start_round"
	CmdDraw          = "draw"
	CmdPlay          = "play"
	CmdLeave         = "leave"
	CmdKick          = "kick"
	// CmdState asks for a fresh projection.
	CmdState         = "state"
)

// Command is one inbound websocket frame.
type Command struct {
	Type     string          `json:"type"`
	Count    int             `json:"count,omitempty"`
	Skill    int             `json:"skill,omitempty"`
	Card     domain.CardKind `json:"card,omitempty"`
	TargetID string          `json:"target_id,omitempty"`
	Guess    domain.CardKind `json:"guess,omitempty"`
}

// ErrUnknownCommand is reported for frames with an unrecognised type.
var ErrUnknownCommand = errors.New("unknown command")

func decodeCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}
	return cmd, nil
}

// execute runs cmd against room on behalf of participantID. It reports
// whether the participant has left the room.
func execute(ctx context.Context, room *lobby.Room, participantID string, cmd Command) (left bool, err error) {
	switch cmd.Type {
	case CmdClaimHost:
		return false, room.ClaimHost(ctx, participantID)
	case CmdConfigureBots:
		return false, room.ConfigureBots(ctx, participantID, cmd.Count, cmd.Skill)
	case CmdNewGame:
		return false, room.NewGame(ctx, participantID)
	case CmdStartRound:
		return false, room.StartRound(ctx, participantID)
	case CmdDraw:
		_, err := room.Draw(ctx, participantID)
		return false, err
	case CmdPlay:
		_, err := room.Play(ctx, app.PlayRequest{
			ActorID:  participantID,
			Card:     cmd.Card,
			TargetID: cmd.TargetID,
			Guess:    cmd.Guess,
		})
		return false, err
	case CmdKick:
		return false, room.Kick(ctx, participantID, cmd.TargetID)
	case CmdLeave:
		if err := room.Leave(ctx, participantID); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Type)
	}
}

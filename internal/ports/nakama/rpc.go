package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"mysteryletter/internal/domain"
	"mysteryletter/internal/lobby"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchFinder is the part of runtime.NakamaModule the RPCs use.
type MatchFinder interface {
	MatchList(ctx context.Context, limit int, authoritative bool, label string, minSize, maxSize *int, query string) ([]*api.Match, error)
	MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error)
}

// JoinRoomRequest is the payload of the join_room RPC.
type JoinRoomRequest struct {
	RoomID string `json:"room_id"`
}

// RoomResponse tells the client which match to join.
type RoomResponse struct {
	MatchID string `json:"match_id"`
	RoomID  string `json:"room_id,omitempty"`
}

// RegisterRPCs registers the room lookup RPCs.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcJoinRoom, RpcJoinRoomHandler); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcQuickMatch, RpcQuickMatchHandler)
}

// RpcJoinRoomHandler returns the match hosting the requested room code,
// creating it when no match holds that code. An empty code creates a new room.
//
// Payload: {"room_id": "ABCD"} (optional)
// Returns: {"match_id": "...", "room_id": "ABCD"}
func RpcJoinRoomHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return joinRoom(ctx, logger, nk, payload)
}

// RpcQuickMatchHandler returns a room that still takes players, creating one if none does.
func RpcQuickMatchHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return quickMatch(ctx, logger, nk)
}

func joinRoom(ctx context.Context, logger runtime.Logger, nk MatchFinder, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req JoinRoomRequest
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid join_room payload", 3)
		}
	}
	roomID := domain.NormalizeRoomID(req.RoomID)
	if roomID == "" {
		roomID = lobby.NewRoomCode()
	} else {
		query := fmt.Sprintf("+label.%s:%s +label.%s:%s", LabelKeyGame, GameLabel, LabelKeyRoom, roomID)
		matches, err := nk.MatchList(ctx, 1, true, "", nil, nil, query)
		if err != nil {
			logger.Error("RpcJoinRoom [User:%s]: Failed to list matches: %v", userID, err)
			return "", err
		}
		if len(matches) > 0 {
			logger.Info("RpcJoinRoom [User:%s]: Found room %s in match %s", userID, roomID, matches[0].MatchId)
			return encodeRoom(matches[0].MatchId, roomID)
		}
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameMysteryLetter, map[string]interface{}{"room_id": roomID})
	if err != nil {
		logger.Error("RpcJoinRoom [User:%s]: Failed to create match: %v", userID, err)
		return "", err
	}
	logger.Info("RpcJoinRoom [User:%s]: Created room %s in match %s", userID, roomID, matchID)
	return encodeRoom(matchID, roomID)
}

func quickMatch(ctx context.Context, logger runtime.Logger, nk MatchFinder) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	// Rooms mid-round report zero open seats.
	query := fmt.Sprintf("+label.%s:%s +label.%s:>=1", LabelKeyGame, GameLabel, LabelKeyOpen)
	minSize := 1
	maxSize := domain.MaxParticipants - 1
	matches, err := nk.MatchList(ctx, 1, true, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("RpcQuickMatch [User:%s]: Failed to list matches: %v", userID, err)
		return "", err
	}
	if len(matches) > 0 {
		logger.Info("RpcQuickMatch [User:%s]: Found existing match %s", userID, matches[0].MatchId)
		return encodeRoom(matches[0].MatchId, "")
	}

	roomID := lobby.NewRoomCode()
	matchID, err := nk.MatchCreate(ctx, MatchNameMysteryLetter, map[string]interface{}{"room_id": roomID})
	if err != nil {
		logger.Error("RpcQuickMatch [User:%s]: Failed to create match: %v", userID, err)
		return "", err
	}
	logger.Info("RpcQuickMatch [User:%s]: Created new match %s", userID, matchID)
	return encodeRoom(matchID, roomID)
}

func encodeRoom(matchID, roomID string) (string, error) {
	out, err := json.Marshal(RoomResponse{MatchID: matchID, RoomID: roomID})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

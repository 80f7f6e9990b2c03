package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a room with open seats.
	RpcQuickMatch = "quick_match"

	// RpcJoinRoom resolves a room code to its match, creating the match when needed.
	RpcJoinRoom = "join_room"

	// MatchNameMysteryLetter is the authoritative match handler name registered with Nakama.
	MatchNameMysteryLetter = "mysteryletter_match"

	// GameLabel identifies Mystery Letter matches in label queries.
	GameLabel = "mysteryletter"

	tickRate = 5
)

// Match label keys.
const (
	LabelKeyGame  = "game"
	LabelKeyRoom  = "room"
	LabelKeyOpen  = "open"
	LabelKeyPhase = "phase"
)

// Op codes for client messages and server pushes. Payloads are JSON.
const (
	// Client -> Server
	OpClaimHost     int64 = 1
	OpConfigureBots int64 = 2
	OpNewGame       int64 = 3
	OpStartRound    int64 = 4
	OpDraw          int64 = 5
	OpPlay          int64 = 6
	OpKick          int64 = 7
	OpLeave         int64 = 8
	OpRequestState  int64 = 9

	// Server -> Client
	OpState int64 = 100 // per-presence projection
	OpEvent int64 = 101
	OpError int64 = 102 // sent only to the presence whose command failed
)

// Environment keys read from the Nakama runtime config.
const (
	envBotThinkDelayMs = "mysteryletter_bot_think_delay_ms"
	envAutoDraw        = "mysteryletter_auto_draw"
	envGameConfigPath  = "mysteryletter_game_config"
	envBotIdentities   = "mysteryletter_bot_identities"
)

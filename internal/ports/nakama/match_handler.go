package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"mysteryletter/internal/app"
	"mysteryletter/internal/bot"
	"mysteryletter/internal/config"
	"mysteryletter/internal/domain"
	"mysteryletter/internal/lobby"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultGameConfigPath    = "data/game_config.json"
	defaultBotIdentitiesPath = "data/bot_identities.json"
)

// MatchState holds the authoritative runtime state for one room hosted as a Nakama match.
type MatchState struct {
	RoomID    string                      `json:"room_id"`
	Tick      int64                       `json:"tick"`
	Session   *domain.Session             `json:"-"`
	App       *app.Service                `json:"-"`
	Presences map[string]runtime.Presence `json:"-"` // user id -> presence, connected humans only
	Bots      map[string]*bot.Agent       `json:"-"`

	rng *rand.Rand

	BotDelayTicks int64 `json:"bot_delay_ticks"`
	BotWaitUntil  int64 `json:"bot_wait_until"` // tick when the pending bot acts
	botRound      int
	botTurnSeq    int
	botID         string
}

// openSeats is the number of humans that could still join.
func (ms *MatchState) openSeats() int {
	if ms.Session.RoundActive() {
		return 0
	}
	return domain.MaxParticipants - ms.Session.Len()
}

// commandPayload is the JSON body of a client op.
type commandPayload struct {
	Count    int             `json:"count,omitempty"`
	Skill    int             `json:"skill,omitempty"`
	Card     domain.CardKind `json:"card,omitempty"`
	TargetID string          `json:"target_id,omitempty"`
	Guess    domain.CardKind `json:"guess,omitempty"`
}

var errUnknownOpCode = errors.New("unknown op code")

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	if err := bot.LoadIdentities(envOr(env, envBotIdentities, defaultBotIdentitiesPath)); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig(envOr(env, envGameConfigPath, defaultGameConfigPath)); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}
	cfg := applyEnv(config.GetGameConfig(), env, logger)

	roomID, _ := params["room_id"].(string)
	roomID = domain.NormalizeRoomID(roomID)
	if roomID == "" {
		roomID = lobby.NewRoomCode()
	}

	seed := time.Now().UnixNano()
	state := &MatchState{
		RoomID:    roomID,
		Session:   domain.NewSession(roomID),
		App:       app.NewService(rand.New(rand.NewSource(seed)), app.WithAutoDraw(cfg.AutoDraw), app.WithBotNamer(bot.IdentityNamer())),
		Presences: make(map[string]runtime.Presence),
		Bots:      make(map[string]*bot.Agent),
		rng:       rand.New(rand.NewSource(seed + 1)),
	}
	state.BotDelayTicks = delayTicks(cfg.BotThinkDelay())

	label, err := matchLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	logger.Info("MatchInit: Room %s ready (bot delay %d ticks).", roomID, state.BotDelayTicks)
	return state, tickRate, label
}

func envOr(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok && v != "" {
		return v
	}
	return fallback
}

// applyEnv overlays the runtime env onto cfg, ignoring unparsable values.
func applyEnv(cfg config.GameConfig, env map[string]string, logger runtime.Logger) config.GameConfig {
	if val, ok := env[envBotThinkDelayMs]; ok {
		if ms, err := strconv.Atoi(val); err == nil && ms >= 0 {
			cfg.BotThinkDelayMs = ms
		} else {
			logger.Warn("MatchInit: Ignoring %s=%q", envBotThinkDelayMs, val)
		}
	}
	if val, ok := env[envAutoDraw]; ok {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.AutoDraw = b
		} else {
			logger.Warn("MatchInit: Ignoring %s=%q", envAutoDraw, val)
		}
	}
	return cfg
}

// delayTicks converts a think delay to match ticks, rounding up.
func delayTicks(d time.Duration) int64 {
	perTick := time.Second / tickRate
	return int64((d + perTick - 1) / perTick)
}

func matchLabel(state *MatchState) (string, error) {
	label, err := structpb.NewStruct(map[string]interface{}{
		LabelKeyGame:  GameLabel,
		LabelKeyRoom:  state.RoomID,
		LabelKeyOpen:  state.openSeats(),
		LabelKeyPhase: string(state.Session.Phase),
	})
	if err != nil {
		return "", err
	}
	labelBytes, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(label)
	if err != nil {
		return "", err
	}
	return string(labelBytes), nil
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	if _, seated := matchState.Session.Participant(presence.GetUserId()); seated {
		return matchState, true, ""
	}
	if matchState.Session.RoundActive() {
		return matchState, false, domain.ErrRoundInProgress.Error()
	}
	if matchState.Session.Len() >= domain.MaxParticipants {
		return matchState, false, domain.ErrRoomFull.Error()
	}
	return matchState, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	var events []app.Event
	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p
		if _, seated := matchState.Session.Participant(userID); seated {
			logger.Debug("MatchJoin: User %s reconnected.", userID)
			mh.sendState(matchState, dispatcher, logger, userID)
			continue
		}
		joined, err := matchState.App.Join(matchState.Session, userID, p.GetUsername())
		if err != nil {
			logger.Warn("MatchJoin: User %s could not be seated: %v", userID, err)
			mh.sendError(matchState, dispatcher, logger, userID, err)
			delete(matchState.Presences, userID)
			_ = dispatcher.MatchKick([]runtime.Presence{p})
			continue
		}
		logger.Info("MatchJoin: User %s seated in room %s.", userID, matchState.RoomID)
		events = append(events, joined...)
	}

	mh.dispatch(matchState, dispatcher, logger, events)
	return matchState
}

// MatchLeave is called when one or more presences leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	var events []app.Event
	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)
		if _, seated := matchState.Session.Participant(userID); !seated {
			continue
		}
		left, err := matchState.App.Leave(matchState.Session, userID, app.LeaveReasonDisconnected)
		if err != nil {
			logger.Warn("MatchLeave: Could not unseat %s: %v", userID, err)
			continue
		}
		events = append(events, left...)
	}

	if matchState.Session.HumanCount() == 0 {
		logger.Info("MatchLeave: Terminating room %s with no humans.", matchState.RoomID)
		return nil
	}

	mh.dispatch(matchState, dispatcher, logger, events)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		mh.handleMessage(matchState, dispatcher, logger, msg)
	}

	if matchState.Session.HumanCount() == 0 {
		logger.Info("MatchLoop: Terminating room %s with no humans.", matchState.RoomID)
		return nil
	}

	mh.processBots(matchState, dispatcher, logger)

	return matchState
}

// handleMessage runs one client op. Events emitted alongside an error are
// still dispatched; the error only reaches the sender.
func (mh *matchHandler) handleMessage(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var cmd commandPayload
	if data := msg.GetData(); len(data) > 0 {
		if err := json.Unmarshal(data, &cmd); err != nil {
			logger.Warn("handleMessage: Invalid payload from %s for op %d: %v", senderID, msg.GetOpCode(), err)
			mh.sendBadRequest(state, dispatcher, logger, senderID, fmt.Errorf("decode command: %w", err))
			return
		}
	}

	svc, session := state.App, state.Session
	var (
		events []app.Event
		err    error
	)
	switch msg.GetOpCode() {
	case OpClaimHost:
		events, err = svc.ClaimHost(session, senderID)
	case OpConfigureBots:
		events, err = svc.ConfigureBots(session, senderID, cmd.Count, cmd.Skill)
	case OpNewGame:
		events, err = svc.NewGame(session, senderID)
	case OpStartRound:
		events, err = svc.StartRound(session, senderID)
	case OpDraw:
		_, events, err = svc.Draw(session, senderID)
	case OpPlay:
		_, events, err = svc.Play(session, app.PlayRequest{
			ActorID:  senderID,
			Card:     cmd.Card,
			TargetID: cmd.TargetID,
			Guess:    cmd.Guess,
		})
	case OpKick:
		events, err = svc.Kick(session, senderID, cmd.TargetID)
	case OpLeave:
		events, err = svc.Leave(session, senderID, app.LeaveReasonLeft)
	case OpRequestState:
		mh.sendState(state, dispatcher, logger, senderID)
		return
	default:
		logger.Warn("handleMessage: Unknown opcode received: %d", msg.GetOpCode())
		mh.sendBadRequest(state, dispatcher, logger, senderID, fmt.Errorf("%w: %d", errUnknownOpCode, msg.GetOpCode()))
		return
	}

	if len(events) > 0 {
		mh.dispatch(state, dispatcher, logger, events)
	}
	if err != nil {
		logger.Debug("handleMessage: Op %d from %s rejected: %v", msg.GetOpCode(), senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
	}
}

// processBots plays the current bot's turn once its think delay has elapsed.
// The wait is keyed on round, turn and bot so a changed turn re-arms it.
func (mh *matchHandler) processBots(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	session := state.Session
	if !session.RoundActive() {
		state.BotWaitUntil = 0
		state.botID = ""
		return
	}
	agent, ok := state.Bots[session.CurrentTurnID]
	if !ok {
		state.BotWaitUntil = 0
		state.botID = ""
		return
	}

	if state.botID != agent.ID || state.botRound != session.RoundNumber || state.botTurnSeq != session.TurnSeq {
		state.botID, state.botRound, state.botTurnSeq = agent.ID, session.RoundNumber, session.TurnSeq
		state.BotWaitUntil = state.Tick + state.BotDelayTicks
		logger.Debug("processBots: Bot %s will act at tick %d (current %d)", agent.ID, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0
	state.botID = ""

	events, err := agent.TakeTurn(state.App, session)
	if err != nil {
		logger.Error("processBots: Bot %s failed its turn, removing it: %v", agent.ID, err)
		left, leaveErr := state.App.Leave(session, agent.ID, app.LeaveReasonLeft)
		if leaveErr == nil {
			events = append(events, left...)
		}
	}
	if len(events) > 0 {
		mh.dispatch(state, dispatcher, logger, events)
	}
}

// dispatch feeds events to bots, relays the visible ones, pushes a fresh
// projection to every presence and kicks presences that lost their seat.
func (mh *matchHandler) dispatch(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	if err := bot.SyncAgents(state.Bots, state.Session, state.rng); err != nil {
		logger.Error("dispatch: Cannot create bot agent: %v", err)
	}
	for _, agent := range state.Bots {
		agent.Observe(events)
	}

	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}

	var unseated []runtime.Presence
	for userID, p := range state.Presences {
		if _, ok := state.Session.Participant(userID); !ok {
			unseated = append(unseated, p)
			delete(state.Presences, userID)
		}
	}
	if len(unseated) > 0 {
		if err := dispatcher.MatchKick(unseated); err != nil {
			logger.Warn("dispatch: Failed to kick %d presences: %v", len(unseated), err)
		}
	}

	for userID := range state.Presences {
		mh.sendState(state, dispatcher, logger, userID)
	}

	mh.updateLabel(state, dispatcher, logger)
}

// broadcastEvent relays ev to the presences allowed to see it. A private event
// whose recipients are all bots or offline goes nowhere.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var recipients []runtime.Presence
	if ev.Private() {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		if len(recipients) == 0 {
			return
		}
	} else {
		for _, p := range state.Presences {
			recipients = append(recipients, p)
		}
		if len(recipients) == 0 {
			return
		}
	}

	data, err := json.Marshal(lobby.EventMessage(ev))
	if err != nil {
		logger.Error("broadcastEvent: Failed to marshal event %s: %v", ev.Kind, err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpEvent, data, recipients, nil, true); err != nil {
		logger.Warn("broadcastEvent: Failed to send %s: %v", ev.Kind, err)
	}
}

func (mh *matchHandler) sendState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	presence, ok := state.Presences[userID]
	if !ok {
		return
	}
	data, err := json.Marshal(lobby.StateMessage(app.Project(state.Session, userID)))
	if err != nil {
		logger.Error("sendState: Failed to marshal state for %s: %v", userID, err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpState, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Warn("sendState: Failed to send state to %s: %v", userID, err)
	}
}

// sendError reports a rejected command to its sender only.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, err error) {
	mh.sendMessage(state, dispatcher, logger, userID, lobby.ErrorMessage(err))
}

func (mh *matchHandler) sendBadRequest(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, err error) {
	mh.sendMessage(state, dispatcher, logger, userID, lobby.Message{Type: lobby.MessageError, Error: &lobby.ErrorPayload{
		Code:    "bad_request",
		Kind:    domain.KindInternal,
		Message: err.Error(),
	}})
}

func (mh *matchHandler) sendMessage(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, msg lobby.Message) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("Failed to marshal error message: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpError, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Warn("Failed to send error to %s: %v", userID, err)
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := matchLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminating with %d seconds of grace", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

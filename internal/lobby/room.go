package lobby

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"mysteryletter/internal/app"
	"mysteryletter/internal/bot"
	"mysteryletter/internal/config"
	"mysteryletter/internal/domain"
	"mysteryletter/internal/logger"
	"mysteryletter/internal/metrics"

	"github.com/google/uuid"
)

// ErrRoomClosed is returned for commands sent to a room that has shut down.
var ErrRoomClosed = errors.New("room closed")

const inboxSize = 64

// Options configures the rooms a registry creates.
type Options struct {
	Game     config.GameConfig
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	BotNamer app.BotNamer
	// Seed makes dealing and bot choices reproducible; zero seeds from the clock.
	Seed        int64
	DeckBuilder func(*rand.Rand) []domain.CardKind
}

// JoinResult is what a participant learns when they take a seat.
type JoinResult struct {
	ParticipantID string             `json:"participant_id"`
	State         app.ProjectedState `json:"state"`
}

// Subscription identifies one connection bound to a seat.
type Subscription struct {
	ParticipantID string
	gen           uint64
}

type attachment struct {
	sink Sink
	gen  uint64
}

// Room owns one session. Every command runs on the room goroutine, which is
// the only code touching the session.
type Room struct {
	id        string
	inbox     chan func()
	done      chan struct{}
	closeOnce sync.Once
	onEmpty   func(roomID string)

	svc      *app.Service
	session  *domain.Session
	rng      *rand.Rand
	agents   map[string]*bot.Agent
	sinks    map[string]attachment
	nextGen  uint64
	retired  bool
	botTimer *time.Timer
	botDelay time.Duration
	log      *slog.Logger
	metrics  *metrics.Metrics
}

func newRoom(id string, opts Options, onEmpty func(string)) *Room {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	serviceOpts := []app.Option{app.WithAutoDraw(opts.Game.AutoDraw)}
	if opts.BotNamer != nil {
		serviceOpts = append(serviceOpts, app.WithBotNamer(opts.BotNamer))
	}
	if opts.DeckBuilder != nil {
		serviceOpts = append(serviceOpts, app.WithDeckBuilder(opts.DeckBuilder))
	}
	log := opts.Logger
	if log == nil {
		log = logger.Get()
	}

	r := &Room{
		id:       id,
		inbox:    make(chan func(), inboxSize),
		done:     make(chan struct{}),
		onEmpty:  onEmpty,
		svc:      app.NewService(rand.New(rand.NewSource(seed)), serviceOpts...),
		session:  domain.NewSession(id),
		rng:      rand.New(rand.NewSource(seed + 1)),
		agents:   make(map[string]*bot.Agent),
		sinks:    make(map[string]attachment),
		botDelay: opts.Game.BotThinkDelay(),
		log:      log.With("room", id),
		metrics:  opts.Metrics,
	}
	go r.loop()
	return r
}

// ID returns the normalized room code.
func (r *Room) ID() string { return r.id }

func (r *Room) loop() {
	for {
		select {
		case cmd := <-r.inbox:
			cmd()
			if r.retired {
				r.Close()
			}
		case <-r.done:
			r.stopBotTimer()
			return
		}
	}
}

// Close stops the room goroutine and its bot timer. Pending commands fail with ErrRoomClosed.
func (r *Room) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

func (r *Room) isClosed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// do runs fn on the room goroutine and waits for its result. A command that
// was already queued still runs when ctx is cancelled while waiting.
func (r *Room) do(ctx context.Context, fn func() error) error {
	reply := make(chan error, 1)
	cmd := func() {
		err := fn()
		if err != nil {
			r.metrics.ActionRejected(domain.Code(err))
		}
		reply <- err
	}
	select {
	case r.inbox <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		return ErrRoomClosed
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-r.done:
		// The command that closed the room has already replied.
		select {
		case err := <-reply:
			return err
		default:
			return ErrRoomClosed
		}
	}
}

// post queues fn without waiting; it is dropped once the room is closed.
func (r *Room) post(fn func()) {
	select {
	case r.inbox <- fn:
	case <-r.done:
	}
}

// apply runs an engine operation and dispatches whatever it emitted, even
// alongside an error.
func (r *Room) apply(ctx context.Context, op func() ([]app.Event, error)) error {
	return r.do(ctx, func() error {
		events, err := op()
		if len(events) > 0 {
			r.dispatch(events)
		}
		return err
	})
}

// Join seats a new human participant under a generated id.
func (r *Room) Join(ctx context.Context, name string) (JoinResult, error) {
	var res JoinResult
	err := r.do(ctx, func() error {
		id := uuid.NewString()
		events, err := r.svc.Join(r.session, id, name)
		if err != nil {
			return err
		}
		r.log.Info("participant joined", "participant", id, "seats", r.session.Len())
		r.dispatch(events)
		res = JoinResult{ParticipantID: id, State: app.Project(r.session, id)}
		return nil
	})
	return res, err
}

// Attach binds sink to a seated participant, replacing any earlier connection,
// and immediately delivers the current state.
func (r *Room) Attach(ctx context.Context, participantID string, sink Sink) (Subscription, error) {
	var sub Subscription
	err := r.do(ctx, func() error {
		if _, ok := r.session.Participant(participantID); !ok {
			return domain.ErrUnknownParticipant
		}
		r.nextGen++
		r.sinks[participantID] = attachment{sink: sink, gen: r.nextGen}
		sub = Subscription{ParticipantID: participantID, gen: r.nextGen}
		sink.Deliver(StateMessage(app.Project(r.session, participantID)))
		return nil
	})
	return sub, err
}

// Release is called when a connection ends. If it is still the participant's
// current connection the participant is disconnected; a connection that was
// replaced by a newer one releases nothing.
func (r *Room) Release(ctx context.Context, sub Subscription) error {
	return r.apply(ctx, func() ([]app.Event, error) {
		att, ok := r.sinks[sub.ParticipantID]
		if !ok || att.gen != sub.gen {
			return nil, nil
		}
		delete(r.sinks, sub.ParticipantID)
		if _, seated := r.session.Participant(sub.ParticipantID); !seated {
			return nil, nil
		}
		return r.svc.Leave(r.session, sub.ParticipantID, app.LeaveReasonDisconnected)
	})
}

func (r *Room) ClaimHost(ctx context.Context, participantID string) error {
	return r.apply(ctx, func() ([]app.Event, error) {
		return r.svc.ClaimHost(r.session, participantID)
	})
}

func (r *Room) ConfigureBots(ctx context.Context, requesterID string, count, skill int) error {
	return r.apply(ctx, func() ([]app.Event, error) {
		return r.svc.ConfigureBots(r.session, requesterID, count, skill)
	})
}

func (r *Room) NewGame(ctx context.Context, requesterID string) error {
	return r.apply(ctx, func() ([]app.Event, error) {
		return r.svc.NewGame(r.session, requesterID)
	})
}

func (r *Room) StartRound(ctx context.Context, requesterID string) error {
	return r.apply(ctx, func() ([]app.Event, error) {
		return r.svc.StartRound(r.session, requesterID)
	})
}

// Draw draws for participantID and returns the card drawn.
func (r *Room) Draw(ctx context.Context, participantID string) (domain.CardKind, error) {
	var card domain.CardKind
	err := r.apply(ctx, func() ([]app.Event, error) {
		c, events, err := r.svc.Draw(r.session, participantID)
		card = c
		return events, err
	})
	return card, err
}

func (r *Room) Play(ctx context.Context, req app.PlayRequest) (app.Outcome, error) {
	var out app.Outcome
	err := r.apply(ctx, func() ([]app.Event, error) {
		o, events, err := r.svc.Play(r.session, req)
		out = o
		return events, err
	})
	return out, err
}

func (r *Room) Leave(ctx context.Context, participantID string) error {
	return r.apply(ctx, func() ([]app.Event, error) {
		return r.svc.Leave(r.session, participantID, app.LeaveReasonLeft)
	})
}

func (r *Room) Kick(ctx context.Context, requesterID, targetID string) error {
	return r.apply(ctx, func() ([]app.Event, error) {
		return r.svc.Kick(r.session, requesterID, targetID)
	})
}

// Disconnect removes participantID as if they had left; mid-round this eliminates them.
func (r *Room) Disconnect(ctx context.Context, participantID string) error {
	return r.apply(ctx, func() ([]app.Event, error) {
		return r.svc.Leave(r.session, participantID, app.LeaveReasonDisconnected)
	})
}

// Snapshot returns the session as seen by viewerID.
func (r *Room) Snapshot(ctx context.Context, viewerID string) (app.ProjectedState, error) {
	var state app.ProjectedState
	err := r.do(ctx, func() error {
		state = app.Project(r.session, viewerID)
		return nil
	})
	return state, err
}

// retireIfEmpty shuts the room down when no human is seated. Commands queued
// behind it fail with ErrRoomClosed.
func (r *Room) retireIfEmpty(ctx context.Context) (bool, error) {
	retired := false
	err := r.do(ctx, func() error {
		if r.session.HumanCount() == 0 {
			r.retired = true
			retired = true
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return retired, nil
}

// HumanCount reports how many humans are seated.
func (r *Room) HumanCount(ctx context.Context) (int, error) {
	var n int
	err := r.do(ctx, func() error {
		n = r.session.HumanCount()
		return nil
	})
	return n, err
}

// dispatch fans events out to agents and connections, pushes fresh
// projections, and schedules the next bot turn.
func (r *Room) dispatch(events []app.Event) {
	if err := bot.SyncAgents(r.agents, r.session, r.rng); err != nil {
		r.log.Error("cannot create bot agent", "error", err)
	}
	for _, agent := range r.agents {
		agent.Observe(events)
	}

	for _, ev := range events {
		r.record(ev)
		for id, att := range r.sinks {
			if ev.VisibleTo(id) {
				att.sink.Deliver(EventMessage(ev))
			}
		}
	}

	for id := range r.sinks {
		if _, ok := r.session.Participant(id); !ok {
			delete(r.sinks, id)
		}
	}
	for id, att := range r.sinks {
		att.sink.Deliver(StateMessage(app.Project(r.session, id)))
	}

	r.scheduleBot()

	if r.session.HumanCount() == 0 && r.onEmpty != nil {
		go r.onEmpty(r.id)
	}
}

func (r *Room) record(ev app.Event) {
	switch p := ev.Payload.(type) {
	case app.RoundStartedPayload:
		r.metrics.RoundStarted()
		r.log.Info("round started", "round", p.RoundNumber, "starter", p.StarterID)
	case app.RoundEndedPayload:
		r.metrics.RoundEnded(p.Reason)
		r.log.Info("round ended", "round", p.RoundNumber, "winner", p.WinnerID, "reason", p.Reason)
	case app.GameEndedPayload:
		r.log.Info("game ended", "winner", p.WinnerID)
	case app.ParticipantLeftPayload:
		r.log.Info("participant left", "participant", p.ParticipantID, "reason", p.Reason)
	}
}

func (r *Room) stopBotTimer() {
	if r.botTimer != nil {
		r.botTimer.Stop()
		r.botTimer = nil
	}
}

// scheduleBot arms a timer when a bot holds the turn. The timer carries the
// round, turn and bot it was armed for and does nothing if any has changed.
func (r *Room) scheduleBot() {
	r.stopBotTimer()
	if !r.session.RoundActive() {
		return
	}
	agent, ok := r.agents[r.session.CurrentTurnID]
	if !ok {
		return
	}
	round, seq, botID := r.session.RoundNumber, r.session.TurnSeq, agent.ID
	r.botTimer = time.AfterFunc(r.botDelay, func() {
		r.post(func() { r.runBot(round, seq, botID) })
	})
}

func (r *Room) runBot(round, seq int, botID string) {
	s := r.session
	if !s.RoundActive() || s.RoundNumber != round || s.TurnSeq != seq || s.CurrentTurnID != botID {
		r.log.Debug("stale bot timer", "bot", botID, "round", round, "turn_seq", seq)
		return
	}
	agent, ok := r.agents[botID]
	if !ok {
		return
	}

	events, err := agent.TakeTurn(r.svc, s)
	r.metrics.BotTurn(agent.Level.String())
	if err != nil {
		// A bot that cannot act would stall the table.
		r.log.Error("bot turn failed, removing bot", "bot", botID, "error", err)
		r.metrics.ActionRejected(domain.Code(err))
		left, leaveErr := r.svc.Leave(s, botID, app.LeaveReasonLeft)
		if leaveErr == nil {
			events = append(events, left...)
		}
	}
	if len(events) > 0 {
		r.dispatch(events)
	}
}

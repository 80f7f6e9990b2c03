package app

import (
	"fmt"
	"math/rand"
	"time"

	"mysteryletter/internal/domain"

	"github.com/google/uuid"
)

// BotNamer returns the participant id and display name of the index-th bot in a room.
type BotNamer func(index int) (id, name string)

// Option customizes a Service.
type Option func(*Service)

// WithAutoDraw makes the engine draw for each participant at the start of their turn.
func WithAutoDraw(enabled bool) Option {
	return func(s *Service) { s.autoDraw = enabled }
}

// WithDeckBuilder replaces the shuffled deck used at the start of every round.
func WithDeckBuilder(build func(rng *rand.Rand) []domain.CardKind) Option {
	return func(s *Service) { s.buildDeck = build }
}

// WithBotNamer sets how bots are identified when a host configures them.
func WithBotNamer(namer BotNamer) Option {
	return func(s *Service) { s.botNamer = namer }
}

// Service contains the game use-cases operating on a domain.Session.
// It holds no session state itself; callers serialize access per session.
type Service struct {
	rng       *rand.Rand
	autoDraw  bool
	buildDeck func(rng *rand.Rand) []domain.CardKind
	botNamer  BotNamer
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand, opts ...Option) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Service{
		rng:       rng,
		buildDeck: domain.BuildDeck,
		botNamer:  defaultBotNamer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AutoDraw reports whether turn starts draw automatically.
func (s *Service) AutoDraw() bool { return s.autoDraw }

// Rand exposes the service random source for collaborators that share its seed.
func (s *Service) Rand() *rand.Rand { return s.rng }

func defaultBotNamer(index int) (string, string) {
	return "bot-" + uuid.NewString(), fmt.Sprintf("Bot %d", index+1)
}

// Join seats a human participant. Joining is refused while a round is being played.
func (s *Service) Join(session *domain.Session, participantID, name string) ([]Event, error) {
	if session.RoundActive() {
		return nil, domain.ErrRoundInProgress
	}
	p := &domain.Participant{
		ID:    participantID,
		Name:  domain.NormalizeName(name),
		Alive: true,
	}
	if err := session.Seat(p); err != nil {
		return nil, err
	}
	session.Log.Addf("%s joined the room.", p.Name)
	return []Event{{
		Kind:    EventParticipantJoined,
		Payload: ParticipantJoinedPayload{ParticipantID: p.ID, Name: p.Name},
	}}, nil
}

// ClaimHost makes participantID the host when nobody holds the role.
func (s *Service) ClaimHost(session *domain.Session, participantID string) ([]Event, error) {
	p, ok := session.Participant(participantID)
	if !ok {
		return nil, domain.ErrUnknownParticipant
	}
	if session.HostID == participantID {
		return nil, nil
	}
	if session.HostID != "" {
		return nil, domain.ErrHostAlreadyClaimed
	}
	if p.IsBot {
		return nil, domain.ErrNotHost
	}
	session.HostID = participantID
	session.Log.Addf("%s is now the host.", p.Name)
	return []Event{{Kind: EventHostChanged, Payload: HostChangedPayload{HostID: participantID}}}, nil
}

// ConfigureBots replaces the room's bots with count bots of the given skill.
func (s *Service) ConfigureBots(session *domain.Session, requesterID string, count, skill int) ([]Event, error) {
	if err := requireHost(session, requesterID); err != nil {
		return nil, err
	}
	if count < 0 || count > domain.MaxBots || skill < 1 || skill > 3 {
		return nil, domain.ErrInvalidBotConfig
	}
	if session.RoundActive() {
		return nil, domain.ErrRoundInProgress
	}
	if session.HumanCount()+count > domain.MaxParticipants {
		return nil, domain.ErrRoomFull
	}

	var events []Event
	for _, id := range session.BotIDs() {
		session.Unseat(id)
		events = append(events, Event{
			Kind:    EventParticipantLeft,
			Payload: ParticipantLeftPayload{ParticipantID: id, Reason: LeaveReasonReplaced},
		})
	}

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		id, name := s.botNamer(i)
		bot := &domain.Participant{ID: id, Name: name, IsBot: true, SkillLevel: skill, Alive: true}
		if err := session.Seat(bot); err != nil {
			return events, fmt.Errorf("seat bot %s: %w", id, err)
		}
		ids = append(ids, id)
		events = append(events, Event{
			Kind:    EventParticipantJoined,
			Payload: ParticipantJoinedPayload{ParticipantID: id, Name: name, IsBot: true},
		})
	}

	session.Log.Addf("Bots set to %d (level %d).", count, skill)
	events = append(events, Event{
		Kind:    EventBotsConfigured,
		Payload: BotsConfiguredPayload{Count: count, SkillLevel: skill, BotIDs: ids},
	})
	return events, nil
}

// NewGame resets tokens and round state without starting a round.
func (s *Service) NewGame(session *domain.Session, requesterID string) ([]Event, error) {
	if err := requireHost(session, requesterID); err != nil {
		return nil, err
	}
	session.ResetForRound(nil)
	for _, p := range session.Participants {
		p.Tokens = 0
	}
	session.Phase = domain.PhaseLobby
	session.RoundNumber = 0
	session.LastRoundWinnerID = ""
	session.GameWinnerID = ""
	session.Log.Addf("A new game was set up.")
	return []Event{{Kind: EventGameReset}}, nil
}

// Leave removes a participant. During a round the departure counts as an
// elimination so the remaining participants can keep playing.
func (s *Service) Leave(session *domain.Session, participantID, reason string) ([]Event, error) {
	p, ok := session.Participant(participantID)
	if !ok {
		return nil, domain.ErrUnknownParticipant
	}

	var events []Event
	if session.RoundActive() && p.Alive {
		events = append(events, s.eliminate(session, p, EliminatedByDeparture)...)
		if session.CurrentTurnID == participantID {
			events = append(events, s.finishTurn(session, participantID)...)
		} else if len(session.AliveIDs()) < domain.MinParticipants {
			events = append(events, s.endRound(session, RoundEndLastStanding)...)
		}
	}

	session.Unseat(participantID)
	if reason == "" {
		reason = LeaveReasonLeft
	}
	session.Log.Addf("%s left the room.", p.Name)
	events = append(events, Event{
		Kind:    EventParticipantLeft,
		Payload: ParticipantLeftPayload{ParticipantID: participantID, Reason: reason},
	})

	if !p.IsBot && session.HumanCount() == 0 {
		for _, id := range session.BotIDs() {
			session.Unseat(id)
			events = append(events, Event{
				Kind:    EventParticipantLeft,
				Payload: ParticipantLeftPayload{ParticipantID: id, Reason: LeaveReasonLeft},
			})
		}
		session.Phase = domain.PhaseLobby
		session.CurrentTurnID = ""
	}
	return events, nil
}

// Kick removes targetID on behalf of the host.
func (s *Service) Kick(session *domain.Session, requesterID, targetID string) ([]Event, error) {
	if err := requireHost(session, requesterID); err != nil {
		return nil, err
	}
	if _, ok := session.Participant(targetID); !ok {
		return nil, domain.ErrUnknownTarget
	}
	return s.Leave(session, targetID, LeaveReasonKicked)
}

func requireHost(session *domain.Session, requesterID string) error {
	if session.HostID == "" || session.HostID != requesterID {
		return domain.ErrNotHost
	}
	return nil
}

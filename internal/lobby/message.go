package lobby

import (
	"errors"

	"mysteryletter/internal/app"
	"mysteryletter/internal/domain"
)

// Message types pushed to connected participants.
const (
	MessageState = "state"
	MessageEvent = "event"
	MessageError = "error"
)

// Message is the envelope a room pushes to a participant's connection.
type Message struct {
	Type  string              `json:"type"`
	State *app.ProjectedState `json:"state,omitempty"`
	Event *EventEnvelope      `json:"event,omitempty"`
	Error *ErrorPayload       `json:"error,omitempty"`
}

type EventEnvelope struct {
	Kind    app.EventKind `json:"kind"`
	Payload any           `json:"payload,omitempty"`
}

type ErrorPayload struct {
	Code    string           `json:"code"`
	Kind    domain.ErrorKind `json:"kind"`
	Message string           `json:"message"`
}

// Sink receives the messages meant for one participant. Deliver is called from
// the room goroutine and must not block.
type Sink interface {
	Deliver(Message)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Message)

func (f SinkFunc) Deliver(m Message) { f(m) }

// ErrorMessage builds the error envelope reported to the caller of a rejected command.
func ErrorMessage(err error) Message {
	msg := err.Error()
	if errors.Is(err, ErrRoomClosed) {
		return Message{Type: MessageError, Error: &ErrorPayload{Code: "room_closed", Kind: domain.KindResource, Message: msg}}
	}
	return Message{Type: MessageError, Error: &ErrorPayload{
		Code:    domain.Code(err),
		Kind:    domain.Classify(err),
		Message: msg,
	}}
}

// StateMessage wraps a projection for its viewer.
func StateMessage(state app.ProjectedState) Message {
	return Message{Type: MessageState, State: &state}
}

// EventMessage wraps one visible event.
func EventMessage(ev app.Event) Message {
	return Message{Type: MessageEvent, Event: &EventEnvelope{Kind: ev.Kind, Payload: ev.Payload}}
}

package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// Ticket identifies a seat a connection may bind to.
type Ticket struct {
	RoomID        string
	ParticipantID string
	Name          string
	ExpiresAt     time.Time
}

var (
	ErrTicketInvalid = errors.New("ticket invalid")
	ErrTicketExpired = errors.New("ticket expired")
)

const ticketAudience = "mysteryletter-seat"

// TicketService signs and verifies seat tickets.
type TicketService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTicketService(secret, issuer string, ttl time.Duration) *TicketService {
	if ttl <= 0 {
		ttl = DefaultTicketTTL
	}
	return &TicketService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a ticket for participantID in roomID.
func (s *TicketService) Issue(roomID, participantID, name string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("ticket service is nil")
	}
	if roomID == "" || participantID == "" {
		return "", fmt.Errorf("room and participant are required")
	}
	if len(s.secret) == 0 {
		return "", fmt.Errorf("ticket secret is not configured")
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss":  s.issuer,
		"aud":  ticketAudience,
		"sub":  participantID,
		"room": roomID,
		"name": name,
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
		"jti":  fmt.Sprintf("%d-%d", now.UnixNano(), rand.Int63()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses a ticket and checks its signature, issuer and expiry.
func (s *TicketService) Verify(tokenString string) (Ticket, error) {
	if s == nil || len(s.secret) == 0 {
		return Ticket{}, ErrTicketInvalid
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return Ticket{}, ErrTicketExpired
		}
		return Ticket{}, fmt.Errorf("%w: %v", ErrTicketInvalid, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Ticket{}, ErrTicketInvalid
	}
	if !claims.VerifyIssuer(s.issuer, true) || !claims.VerifyAudience(ticketAudience, true) {
		return Ticket{}, ErrTicketInvalid
	}

	ticket := Ticket{}
	ticket.ParticipantID, _ = claims["sub"].(string)
	ticket.RoomID, _ = claims["room"].(string)
	ticket.Name, _ = claims["name"].(string)
	if exp, ok := claims["exp"].(float64); ok {
		ticket.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if ticket.ParticipantID == "" || ticket.RoomID == "" {
		return Ticket{}, ErrTicketInvalid
	}
	return ticket, nil
}

package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"mysteryletter/internal/domain"
	"mysteryletter/internal/ports"
)

// Service handles post-auth onboarding for new users.
type Service struct {
	accounts ports.AccountPort
	rng      *rand.Rand
}

// NewService constructs an onboarding service. accounts must be non-nil;
// rng may be nil to use a time-seeded default.
func NewService(accounts ports.AccountPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		accounts: accounts,
		rng:      rng,
	}
}

// OnboardNewUser gives a newly created account a table name and returns it.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (string, error) {
	if s.accounts == nil {
		return "", fmt.Errorf("onboarding service not configured")
	}
	if userID == "" {
		return "", fmt.Errorf("onboarding: empty user id")
	}

	displayName := s.generateFriendlyName()
	if err := s.accounts.UpdateProfile(ctx, userID, "", displayName); err != nil {
		return "", fmt.Errorf("set display name for %s: %w", userID, err)
	}
	return displayName, nil
}

var (
	adjectives = []string{"Silent", "Hidden", "Sealed", "Secret", "Quiet", "Masked", "Veiled", "Loyal", "Clever", "Swift"}
	nouns      = []string{"Herald", "Scribe", "Envoy", "Courier", "Seer", "Warden", "Duelist", "Heir", "Page", "Spy"}
)

// generateFriendlyName builds names like "VeiledHerald4821" that always fit a seat name.
func (s *Service) generateFriendlyName() string {
	adj := adjectives[s.rng.Intn(len(adjectives))]
	noun := nouns[s.rng.Intn(len(nouns))]
	num := s.rng.Intn(9000) + 1000

	return domain.NormalizeName(fmt.Sprintf("%s%s%d", adj, noun, num))
}

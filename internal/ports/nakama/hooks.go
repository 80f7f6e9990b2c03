package nakama

import (
	"context"
	"database/sql"
	"fmt"

	"mysteryletter/internal/app/onboarding"

	"github.com/form3tech-oss/jwt-go"
	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// AfterAuthenticateDevice gives newly created accounts a table name.
func AfterAuthenticateDevice(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, out *api.Session, in *api.AuthenticateDeviceRequest) error {
	if !out.Created {
		return nil
	}

	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		resolvedID, err := extractUserIDFromToken(out.Token)
		if err != nil {
			logger.Error("AfterAuthenticateDevice: Failed to extract user ID from token: %v", err)
			return err
		}
		userID = resolvedID
	}

	service := onboarding.NewService(NewNakamaAccountAdapter(nk), nil)
	name, err := service.OnboardNewUser(ctx, userID)
	if err != nil {
		// A missing display name only means the username is shown at the table.
		logger.Warn("AfterAuthenticateDevice: Onboarding failed for user %s: %v", userID, err)
		return nil
	}
	logger.Info("Onboarded new user %s as %s", userID, name)
	return nil
}

// extractUserIDFromToken reads the uid claim of a session token Nakama just issued.
func extractUserIDFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("failed to parse session token: %w", err)
	}
	uid, ok := claims["uid"].(string)
	if !ok || uid == "" {
		return "", fmt.Errorf("token claims missing uid")
	}
	return uid, nil
}

package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"mysteryletter/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

type BotIdentity struct {
	DeviceID    string `json:"device_id"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Difficulty  string `json:"difficulty"` // "easy", "medium", "hard"
	AvatarIndex int    `json:"avatar_index"`
}

var (
	identitiesMu      sync.RWMutex
	botIdentities     []BotIdentity
	botIDMap          map[string]bool
	botDisplayNameMap map[string]string
	loadOnce          sync.Once
	provisionOnce     sync.Once
	loadErr           error
)

// LoadIdentities loads the bot profiles from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}

		var identities []BotIdentity
		if err := json.Unmarshal(data, &identities); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}

		identitiesMu.Lock()
		defer identitiesMu.Unlock()
		botIdentities = identities
		botIDMap = make(map[string]bool)
		botDisplayNameMap = make(map[string]string)
		for _, identity := range botIdentities {
			if identity.UserID != "" {
				mapIdentity(identity)
			}
		}
	})
	return loadErr
}

func mapIdentity(identity BotIdentity) {
	botIDMap[identity.UserID] = true
	botDisplayNameMap[identity.UserID] = identity.DisplayName
}

// ProvisionBots ensures that bot accounts exist in the Nakama database and carry the is_bot metadata.
func ProvisionBots(ctx context.Context, nk runtime.NakamaModule, logger runtime.Logger) {
	provisionOnce.Do(func() {
		identitiesMu.Lock()
		defer identitiesMu.Unlock()
		if botIDMap == nil {
			botIDMap = make(map[string]bool)
			botDisplayNameMap = make(map[string]string)
		}
		for i := range botIdentities {
			identity := &botIdentities[i]
			if identity.DeviceID == "" {
				continue
			}

			userID, username, _, err := nk.AuthenticateDevice(ctx, identity.DeviceID, identity.Username, true)
			if err != nil {
				logger.Error("ProvisionBots: Failed to authenticate bot %s: %v", identity.Username, err)
				continue
			}
			identity.UserID = userID
			identity.Username = username

			metadata := map[string]interface{}{
				"is_bot":       true,
				"difficulty":   identity.Difficulty,
				"avatar_index": identity.AvatarIndex,
			}
			if err := nk.AccountUpdateId(ctx, userID, identity.Username, metadata, identity.DisplayName, "", "", "", ""); err != nil {
				logger.Warn("ProvisionBots: Failed to update bot account %s: %v", userID, err)
			}

			mapIdentity(*identity)
			logger.Info("ProvisionBots: Bot %s (%s) is ready. Difficulty: %s", identity.DisplayName, userID, identity.Difficulty)
		}
	})
}

// GetBotIdentity returns an identity for a bot by index (mod pool size).
func GetBotIdentity(index int) BotIdentity {
	identitiesMu.RLock()
	defer identitiesMu.RUnlock()
	if len(botIdentities) == 0 {
		return BotIdentity{
			UserID:      fmt.Sprintf("bot-%d", index),
			DisplayName: fmt.Sprintf("AI Player %d", index+1),
		}
	}
	identity := botIdentities[index%len(botIdentities)]
	if identity.UserID == "" {
		identity.UserID = fmt.Sprintf("bot-%d", index)
	}
	if identity.DisplayName == "" {
		identity.DisplayName = identity.Username
	}
	return identity
}

// GetBotDisplayName returns the display name for a bot ID, or an empty string if not a bot.
func GetBotDisplayName(userID string) string {
	identitiesMu.RLock()
	defer identitiesMu.RUnlock()
	return botDisplayNameMap[userID]
}

// IsBot reports whether the given user ID belongs to the bot pool.
func IsBot(userID string) bool {
	identitiesMu.RLock()
	defer identitiesMu.RUnlock()
	return botIDMap[userID]
}

// IdentityNamer names a room's bots after the loaded identity pool.
func IdentityNamer() app.BotNamer {
	return func(index int) (string, string) {
		identity := GetBotIdentity(index)
		return identity.UserID, identity.DisplayName
	}
}

package bot

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sync"

	"github.com/google/uuid"
)

// Identity is a profile for an automated opponent seat.
type Identity struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

var (
	identities []Identity
	idSet      map[string]bool
	loadOnce   sync.Once
	loadErr    error
)

// LoadIdentities loads the opponent profiles from the given path.
func LoadIdentities(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read bot identities: %w", err)
			return
		}

		if err := json.Unmarshal(data, &identities); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal bot identities: %w", err)
			return
		}

		idSet = make(map[string]bool, len(identities))
		for _, id := range identities {
			idSet[id.UserID] = true
		}
	})
	return loadErr
}

// PickIdentity returns a random profile from the pool, or a generated one
// when no pool was loaded.
func PickIdentity(rng *rand.Rand) Identity {
	if len(identities) == 0 {
		return Identity{
			UserID:      "bot-" + uuid.NewString(),
			DisplayName: "AI Player",
		}
	}
	if rng == nil {
		return identities[0]
	}
	return identities[rng.Intn(len(identities))]
}

// IsBot reports whether the given user id belongs to the opponent pool.
func IsBot(userID string) bool {
	if idSet != nil && idSet[userID] {
		return true
	}
	return len(userID) > 4 && userID[:4] == "bot-"
}

// Package notification stores per-user notification preference toggles as
// a Redis hash.
package notification

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Preference keys recognized by the portal
const (
	PrefNewSession     = "new_session"
	PrefSessionClosed  = "session_closed"
	PrefDenunciaUpdate = "denuncia_update"
)

var defaults = map[string]bool{
	PrefNewSession:     true,
	PrefSessionClosed:  true,
	PrefDenunciaUpdate: false,
}

type NotificationService struct {
	rdb *redis.Client
}

func NewNotificationService(rdb *redis.Client) *NotificationService {
	return &NotificationService{rdb: rdb}
}

func prefsKey(userID uint) string {
	return fmt.Sprintf("user:%d:notification_prefs", userID)
}

// GetPreferences returns the user's toggles, falling back to defaults for
// anything not explicitly set.
func (s *NotificationService) GetPreferences(ctx context.Context, userID uint) (map[string]bool, error) {
	stored, err := s.rdb.HGetAll(ctx, prefsKey(userID)).Result()
	if err != nil {
		return nil, err
	}

	prefs := make(map[string]bool, len(defaults))
	for key, def := range defaults {
		prefs[key] = def
		if raw, ok := stored[key]; ok {
			if v, err := strconv.ParseBool(raw); err == nil {
				prefs[key] = v
			}
		}
	}
	return prefs, nil
}

// SetPreference flips one toggle. Unknown keys are rejected.
func (s *NotificationService) SetPreference(ctx context.Context, userID uint, key string, enabled bool) error {
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("unknown notification preference %q", key)
	}
	return s.rdb.HSet(ctx, prefsKey(userID), key, strconv.FormatBool(enabled)).Err()
}

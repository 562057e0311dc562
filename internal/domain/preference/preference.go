// Package preference holds per-user settings that exports can embed.
package preference

import (
	"context"
	"strings"
)

// Preferences is the per-user settings document. Provider API keys are
// stored server-side and always masked before leaving the service.
type Preferences struct {
	UserID            uint              `json:"-"`
	Voice             string            `json:"voice,omitempty"`
	Language          string            `json:"language,omitempty"`
	NotificationsOn   bool              `json:"notifications_on"`
	DefaultModel      string            `json:"default_model,omitempty"`
	ProviderAPIKeys   map[string]string `json:"provider_api_keys,omitempty"`
	TurnDetectionMS   int               `json:"turn_detection_ms,omitempty"`
	AutoDeleteAfterMS int64             `json:"auto_delete_after_ms,omitempty"`
}

// Masked returns a copy safe for export: API keys reduced to a suffix hint.
func (p *Preferences) Masked() *Preferences {
	if p == nil {
		return nil
	}
	cp := *p
	if len(p.ProviderAPIKeys) > 0 {
		cp.ProviderAPIKeys = make(map[string]string, len(p.ProviderAPIKeys))
		for provider, key := range p.ProviderAPIKeys {
			cp.ProviderAPIKeys[provider] = maskKey(key)
		}
	}
	return &cp
}

func maskKey(key string) string {
	const keep = 4
	if len(key) <= keep {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-keep) + key[len(key)-keep:]
}

type PreferenceRepository interface {
	FindByUser(ctx context.Context, userID uint) (*Preferences, error)
	Upsert(ctx context.Context, prefs *Preferences) error
}

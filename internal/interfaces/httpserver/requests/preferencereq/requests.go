// Package preferencereq contains HTTP request DTOs for preference endpoints.
package preferencereq

// UpdatePreferencesRequest replaces the caller's stored preferences.
// Omitted API keys are preserved; supplied keys overwrite per provider.
type UpdatePreferencesRequest struct {
	Voice             string            `json:"voice,omitempty"`
	Language          string            `json:"language,omitempty"`
	NotificationsOn   bool              `json:"notifications_on"`
	DefaultModel      string            `json:"default_model,omitempty"`
	ProviderAPIKeys   map[string]string `json:"provider_api_keys,omitempty"`
	TurnDetectionMS   int               `json:"turn_detection_ms,omitempty" binding:"omitempty,min=0"`
	AutoDeleteAfterMS int64             `json:"auto_delete_after_ms,omitempty" binding:"omitempty,min=0"`
}

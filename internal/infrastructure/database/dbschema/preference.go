package dbschema

import (
	"tee-chat/services/chat-gateway/internal/domain/preference"
)

// Preference stores one user's workspace settings.
type Preference struct {
	BaseModel
	UserID            uint    `gorm:"uniqueIndex;not null"`
	Voice             string  `gorm:"type:varchar(64)"`
	Language          string  `gorm:"type:varchar(16)"`
	NotificationsOn   bool    `gorm:"not null;default:false"`
	DefaultModel      string  `gorm:"type:varchar(128)"`
	ProviderAPIKeys   JSONMap `gorm:"type:jsonb"`
	TurnDetectionMS   int     `gorm:"not null;default:0"`
	AutoDeleteAfterMS int64   `gorm:"not null;default:0"`
}

func (Preference) TableName() string {
	return "preferences"
}

// NewSchemaPreference creates a row from the domain preferences.
func NewSchemaPreference(p *preference.Preferences) *Preference {
	return &Preference{
		UserID:            p.UserID,
		Voice:             p.Voice,
		Language:          p.Language,
		NotificationsOn:   p.NotificationsOn,
		DefaultModel:      p.DefaultModel,
		ProviderAPIKeys:   JSONMap(p.ProviderAPIKeys),
		TurnDetectionMS:   p.TurnDetectionMS,
		AutoDeleteAfterMS: p.AutoDeleteAfterMS,
	}
}

// EtoD converts the row to the domain preferences.
func (p *Preference) EtoD() *preference.Preferences {
	return &preference.Preferences{
		UserID:            p.UserID,
		Voice:             p.Voice,
		Language:          p.Language,
		NotificationsOn:   p.NotificationsOn,
		DefaultModel:      p.DefaultModel,
		ProviderAPIKeys:   map[string]string(p.ProviderAPIKeys),
		TurnDetectionMS:   p.TurnDetectionMS,
		AutoDeleteAfterMS: p.AutoDeleteAfterMS,
	}
}

package handlers

import (
	"context"
	"strings"
	"testing"

	"tee-chat/services/chat-gateway/internal/domain/preference"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/requests/preferencereq"
)

type fakePreferenceRepo struct {
	stored *preference.Preferences
}

func (f *fakePreferenceRepo) FindByUser(_ context.Context, userID uint) (*preference.Preferences, error) {
	if f.stored == nil {
		return &preference.Preferences{UserID: userID}, nil
	}
	return f.stored, nil
}

func (f *fakePreferenceRepo) Upsert(_ context.Context, prefs *preference.Preferences) error {
	f.stored = prefs
	return nil
}

func TestUpdatePreferencesMergesAPIKeys(t *testing.T) {
	repo := &fakePreferenceRepo{stored: &preference.Preferences{
		UserID:          42,
		ProviderAPIKeys: map[string]string{"openai": "sk-verysecret-1234"},
	}}
	handler := NewPreferenceHandler(repo)

	prefs, err := handler.UpdatePreferences(context.Background(), 42, preferencereq.UpdatePreferencesRequest{
		Voice:           "alloy",
		ProviderAPIKeys: map[string]string{"gemini": "gk-other-key-5678"},
	})
	if err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}

	if _, ok := repo.stored.ProviderAPIKeys["openai"]; !ok {
		t.Fatal("expected unmentioned openai key to survive the update")
	}
	if repo.stored.ProviderAPIKeys["gemini"] != "gk-other-key-5678" {
		t.Fatalf("expected new gemini key stored, got %q", repo.stored.ProviderAPIKeys["gemini"])
	}

	// The response must never leak full keys.
	for provider, key := range prefs.ProviderAPIKeys {
		if strings.Contains(key, "secret") || strings.Contains(key, "other-key") {
			t.Fatalf("unmasked key returned for %s: %q", provider, key)
		}
	}
}

func TestUpdatePreferencesEmptyKeyDeletes(t *testing.T) {
	repo := &fakePreferenceRepo{stored: &preference.Preferences{
		UserID:          42,
		ProviderAPIKeys: map[string]string{"openai": "sk-verysecret-1234"},
	}}
	handler := NewPreferenceHandler(repo)

	_, err := handler.UpdatePreferences(context.Background(), 42, preferencereq.UpdatePreferencesRequest{
		ProviderAPIKeys: map[string]string{"openai": ""},
	})
	if err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}

	if _, ok := repo.stored.ProviderAPIKeys["openai"]; ok {
		t.Fatal("expected empty key to delete the stored key")
	}
}

func TestGetPreferencesMasksKeys(t *testing.T) {
	repo := &fakePreferenceRepo{stored: &preference.Preferences{
		UserID:          42,
		ProviderAPIKeys: map[string]string{"openai": "sk-verysecret-1234"},
	}}
	handler := NewPreferenceHandler(repo)

	prefs, err := handler.GetPreferences(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetPreferences: %v", err)
	}

	masked := prefs.ProviderAPIKeys["openai"]
	if masked == "sk-verysecret-1234" {
		t.Fatal("expected masked key")
	}
	if !strings.HasSuffix(masked, "1234") {
		t.Fatalf("expected suffix hint, got %q", masked)
	}
}

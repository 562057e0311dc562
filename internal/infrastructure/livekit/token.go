// Package livekit integrates the self-hosted provider family: session
// credentials are minted locally as room tokens instead of being fetched
// from an external issuer.
package livekit

import (
	"context"
	"time"

	"github.com/livekit/protocol/auth"

	"tee-chat/services/chat-gateway/internal/config"
	"tee-chat/services/chat-gateway/internal/domain/session"
	"tee-chat/services/chat-gateway/internal/utils/idgen"
)

// TokenIssuer implements session.CredentialSource by generating LiveKit
// access tokens for a per-session room.
type TokenIssuer struct {
	apiKey    string
	apiSecret string
	wsURL     string
	tokenTTL  time.Duration
}

var _ session.CredentialSource = (*TokenIssuer)(nil)

// NewTokenIssuer creates a local credential source backed by LiveKit keys.
func NewTokenIssuer(cfg *config.Config) *TokenIssuer {
	return &TokenIssuer{
		apiKey:    cfg.LiveKitAPIKey,
		apiSecret: cfg.LiveKitAPISecret,
		wsURL:     cfg.LiveKitWsURL,
		tokenTTL:  cfg.LiveKitTokenTTL,
	}
}

// Fetch mints a room join token. Each session gets its own room.
func (g *TokenIssuer) Fetch(_ context.Context, cfg session.Config) (*session.Credential, error) {
	room, err := idgen.GenerateSecureID("room", 16)
	if err != nil {
		return nil, err
	}
	token, err := g.Generate(room, "chat-gateway", g.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &session.Credential{
		Token:     token,
		Endpoint:  g.wsURL,
		ExpiresAt: time.Now().Add(g.tokenTTL),
	}, nil
}

// Generate creates a LiveKit access token for the given room and identity.
func (g *TokenIssuer) Generate(room, identity string, ttl time.Duration) (string, error) {
	at := auth.NewAccessToken(g.apiKey, g.apiSecret)

	canPublish := true
	canSubscribe := true
	canPublishData := true

	grant := &auth.VideoGrant{
		RoomJoin:       true,
		Room:           room,
		CanPublish:     &canPublish,
		CanSubscribe:   &canSubscribe,
		CanPublishData: &canPublishData,
	}

	at.AddGrant(grant).
		SetIdentity(identity).
		SetValidFor(ttl)

	return at.ToJWT()
}

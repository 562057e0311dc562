// Package credentials fetches short-lived provider tokens from the
// credential-issuing endpoint.
package credentials

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"tee-chat/services/chat-gateway/internal/config"
	"tee-chat/services/chat-gateway/internal/domain/session"
)

// Client implements session.CredentialSource against an HTTP issuer.
type Client struct {
	httpClient *resty.Client
	endpoint   string
	apiKey     string
	log        zerolog.Logger
}

var _ session.CredentialSource = (*Client)(nil)

// NewClient builds the issuer client from service configuration.
func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	client := resty.New().
		SetTimeout(cfg.CredentialTimeout).
		SetHeader("User-Agent", "chat-gateway/1.0")

	return &Client{
		httpClient: client,
		endpoint:   cfg.CredentialEndpoint,
		apiKey:     cfg.CredentialAPIKey,
		log:        log.With().Str("component", "credential-client").Logger(),
	}
}

type issueRequest struct {
	Provider   string   `json:"provider"`
	Voice      string   `json:"voice,omitempty"`
	Language   string   `json:"language,omitempty"`
	Modalities []string `json:"modalities,omitempty"`
}

type issueResponse struct {
	Token        string `json:"token"`
	EphemeralKey string `json:"ephemeral_key"`
	APIKey       string `json:"api_key"`
	Endpoint     string `json:"endpoint"`
	ExpiresAt    int64  `json:"expires_at"`
}

// token picks the credential field the issuer populated; issuers differ in
// which name they use.
func (r *issueResponse) token() string {
	switch {
	case r.Token != "":
		return r.Token
	case r.EphemeralKey != "":
		return r.EphemeralKey
	default:
		return r.APIKey
	}
}

// Fetch requests one credential for the session being started.
func (c *Client) Fetch(ctx context.Context, cfg session.Config) (*session.Credential, error) {
	var result issueResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(issueRequest{
			Provider:   cfg.Provider,
			Voice:      cfg.Voice,
			Language:   cfg.Language,
			Modalities: cfg.Modalities,
		}).
		SetResult(&result).
		Post(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("credential request failed: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("credential issuer returned %d", resp.StatusCode())
	}

	token := result.token()
	if token == "" {
		return nil, fmt.Errorf("credential issuer returned no usable token")
	}

	expires := time.Unix(result.ExpiresAt, 0)
	if result.ExpiresAt == 0 {
		expires = time.Now().Add(time.Minute)
	}
	c.log.Debug().Str("provider", cfg.Provider).Time("expires_at", expires).
		Msg("credential issued")

	return &session.Credential{
		Token:     token,
		Endpoint:  result.Endpoint,
		ExpiresAt: expires,
	}, nil
}

package reddit

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultTokenURL is Reddit's application-only OAuth endpoint.
const DefaultTokenURL = "https://www.reddit.com/api/v1/access_token"

// Credential is the outcome of the startup token exchange. It is either
// Granted or Unavailable and is never refreshed.
type Credential interface {
	credential()
}

// Granted holds a bearer token obtained at startup.
type Granted struct {
	Token *oauth2.Token
}

// Unavailable records why no token could be obtained.
type Unavailable struct {
	Reason string
}

func (Granted) credential()     {}
func (Unavailable) credential() {}

type CredentialConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// AcquireCredential performs the client-credentials exchange once. Missing
// configuration or any exchange failure produces Unavailable.
func AcquireCredential(ctx context.Context, cfg CredentialConfig, httpClient *http.Client, log zerolog.Logger) Credential {
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		log.Warn().Msg("reddit client credentials not configured; authenticated source disabled")
		return Unavailable{Reason: "client credentials not configured"}
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	if httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	}

	tok, err := cc.Token(ctx)
	if err != nil {
		log.Error().Err(err).Msg("reddit token exchange failed; authenticated source disabled")
		return Unavailable{Reason: "token exchange failed"}
	}
	if tok.AccessToken == "" {
		return Unavailable{Reason: "empty access token"}
	}

	log.Info().Time("expires", tok.Expiry).Msg("reddit application token acquired")
	return Granted{Token: tok}
}

// CredentialState is a short label for readiness reporting.
func CredentialState(c Credential) string {
	switch v := c.(type) {
	case Granted:
		return "granted"
	case Unavailable:
		return "unavailable: " + v.Reason
	default:
		return "unknown"
	}
}

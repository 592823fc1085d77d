package requester

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/oasbridge/oas-mcp/internal/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// AuthProvider supplies outbound authentication headers and decides whether
// an authentication failure is worth one retry. Implementations hold their
// own credential state and must serialize refreshes internally.
type AuthProvider interface {
	// AuthHeaders returns the headers to merge into the outgoing request.
	// It fails when credentials are unavailable.
	AuthHeaders(ctx context.Context) (map[string]string, error)
	// HandleAuthError inspects an authentication failure response. It
	// returns true to re-issue the request once with refreshed headers, or
	// an error describing a non-recoverable condition. (false, nil) means
	// the original HTTP error should surface unchanged.
	HandleAuthError(resp *Response) (bool, error)
}

// NewAuthProvider builds the provider matching the endpoint configuration.
func NewAuthProvider(serviceConfig *config.EndpointConfig) (AuthProvider, error) {
	cfg := serviceConfig.AuthConfig
	switch serviceConfig.AuthType {
	case config.AuthTypeNone, "":
		return &noneProvider{}, nil
	case config.AuthTypeBasic:
		if cfg["username"] == "" {
			return nil, fmt.Errorf("basic auth requires auth_config.username")
		}
		return &basicProvider{username: cfg["username"], password: cfg["password"]}, nil
	case config.AuthTypeBearer:
		if cfg["token"] == "" {
			return nil, fmt.Errorf("bearer auth requires auth_config.token")
		}
		return &bearerProvider{token: cfg["token"]}, nil
	case config.AuthTypeAPIKey:
		if cfg["key"] == "" {
			return nil, fmt.Errorf("api_key auth requires auth_config.key")
		}
		header := cfg["header"]
		if header == "" {
			header = "X-API-Key"
		}
		return &apiKeyProvider{header: header, key: cfg["key"]}, nil
	case config.AuthTypeOAuth2:
		return newOAuth2Provider(cfg)
	default:
		return nil, fmt.Errorf("unsupported auth type: %s", serviceConfig.AuthType)
	}
}

type noneProvider struct{}

func (*noneProvider) AuthHeaders(context.Context) (map[string]string, error) {
	return nil, nil
}

func (*noneProvider) HandleAuthError(*Response) (bool, error) { return false, nil }

type basicProvider struct {
	username string
	password string
}

func (p *basicProvider) AuthHeaders(context.Context) (map[string]string, error) {
	creds := base64.StdEncoding.EncodeToString([]byte(p.username + ":" + p.password))
	return map[string]string{"Authorization": "Basic " + creds}, nil
}

func (*basicProvider) HandleAuthError(*Response) (bool, error) { return false, nil }

type bearerProvider struct {
	token string
}

func (p *bearerProvider) AuthHeaders(context.Context) (map[string]string, error) {
	return map[string]string{"Authorization": "Bearer " + p.token}, nil
}

func (*bearerProvider) HandleAuthError(*Response) (bool, error) { return false, nil }

type apiKeyProvider struct {
	header string
	key    string
}

func (p *apiKeyProvider) AuthHeaders(context.Context) (map[string]string, error) {
	return map[string]string{p.header: p.key}, nil
}

func (*apiKeyProvider) HandleAuthError(*Response) (bool, error) { return false, nil }

// oauth2Provider fetches client-credentials tokens. The token source caches
// the current token and serializes refreshes; a 401 drops the cached source
// so the retry fetches a fresh token.
type oauth2Provider struct {
	cc *clientcredentials.Config

	mu     sync.Mutex
	source oauth2.TokenSource
}

func newOAuth2Provider(cfg map[string]string) (*oauth2Provider, error) {
	if cfg["token_url"] == "" || cfg["client_id"] == "" {
		return nil, fmt.Errorf("oauth2 auth requires auth_config.token_url and auth_config.client_id")
	}
	cc := &clientcredentials.Config{
		TokenURL:     cfg["token_url"],
		ClientID:     cfg["client_id"],
		ClientSecret: cfg["client_secret"],
	}
	if scopes := cfg["scopes"]; scopes != "" {
		cc.Scopes = strings.Fields(scopes)
	}
	return &oauth2Provider{cc: cc}, nil
}

func (p *oauth2Provider) AuthHeaders(ctx context.Context) (map[string]string, error) {
	p.mu.Lock()
	if p.source == nil {
		p.source = p.cc.TokenSource(ctx)
	}
	source := p.source
	p.mu.Unlock()

	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to obtain oauth2 token: %w", err)
	}
	return map[string]string{"Authorization": "Bearer " + token.AccessToken}, nil
}

func (p *oauth2Provider) HandleAuthError(resp *Response) (bool, error) {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		p.mu.Lock()
		p.source = nil
		p.mu.Unlock()
		return true, nil
	case http.StatusForbidden:
		return false, fmt.Errorf("upstream refused oauth2 credentials (403): token lacks a required scope")
	default:
		return false, nil
	}
}

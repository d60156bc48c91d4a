package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"golang.org/x/oauth2"
)

// Flow drives the end-to-end authorization-code-with-PKCE flow for one MCP
// server: discovery, optional dynamic registration, the interactive
// authorization step, and token caching/refresh. It is built to back the
// authorization collaborator streamable-HTTP transports invoke on a 401
// (transport/httpmcp's WithAuthFlow option).
type Flow struct {
	HTTPClient  *http.Client
	ServerURL   string
	ClientName  string
	RedirectURI string
	Scopes      []string

	// ResourceMetadataURL overrides the protected-resource metadata
	// document discovery fetches (spec §4.8 step 1). When empty it
	// defaults to ServerURL's origin plus "/.well-known/mcp-resource".
	ResourceMetadataURL string

	// Resource is sent as the RFC 8707 resource indicator during token
	// exchange. When empty it defaults to ServerURL.
	Resource string

	// ClientID pins a statically registered client; when empty, Flow
	// performs dynamic client registration the first time it needs one
	// and remembers the result for the life of the Flow value.
	ClientID string

	Cache    Cache
	CacheKey string

	// Authorize is invoked with the URL the resource owner must visit,
	// and must return once the authorization code has been captured
	// from the redirect (typically by a local callback listener).
	Authorize func(ctx context.Context, authorizationURL string) (code string, err error)

	mu        sync.Mutex
	metadata  *Metadata
	exchanger *Exchanger
}

// AuthorizationHeader returns a ready-to-use "Bearer <token>" header value,
// reusing a cached token when valid, refreshing it when a refresh token is
// available, and falling back to the interactive flow otherwise. The value
// already carries the "Bearer " prefix, whereas transport/httpmcp.WithAuthFlow
// takes the bare access token because the transport adds that prefix itself.
func (f *Flow) AuthorizationHeader(ctx context.Context) (string, error) {
	tok, err := f.Token(ctx)
	if err != nil {
		return "", err
	}
	return "Bearer " + tok.AccessToken, nil
}

// Token returns a valid access token for the server, running the
// interactive authorization flow only when no cached or refreshable token
// is available.
func (f *Flow) Token(ctx context.Context) (*oauth2.Token, error) {
	cacheKey := f.cacheKey()

	if f.Cache != nil {
		if cached, err := f.Cache.Get(ctx, cacheKey); err == nil {
			if cached.Valid() {
				return cached, nil
			}
			if cached.RefreshToken != "" {
				exchanger, err := f.ensureExchanger(ctx)
				if err != nil {
					return nil, err
				}
				refreshed, err := exchanger.TokenSource(ctx, f.HTTPClient, cached).Token()
				if err == nil {
					_ = f.Cache.Put(ctx, cacheKey, refreshed)
					return refreshed, nil
				}
				// fall through to the interactive flow; the refresh
				// token may itself have been revoked.
			}
		}
	}

	tok, err := f.authorize(ctx)
	if err != nil {
		return nil, err
	}
	if f.Cache != nil {
		_ = f.Cache.Put(ctx, cacheKey, tok)
	}
	return tok, nil
}

func (f *Flow) cacheKey() string {
	if f.CacheKey != "" {
		return f.CacheKey
	}
	if u, err := url.Parse(f.ServerURL); err == nil {
		return u.Scheme + "://" + u.Host
	}
	return f.ServerURL
}

func (f *Flow) ensureExchanger(ctx context.Context) (*Exchanger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.exchanger != nil {
		return f.exchanger, nil
	}

	meta, err := f.metadataLocked(ctx)
	if err != nil {
		return nil, err
	}

	clientID := f.ClientID
	if clientID == "" {
		reg, err := Register(ctx, f.HTTPClient, meta, f.ClientName, []string{f.RedirectURI})
		if err != nil {
			return nil, fmt.Errorf("oauth: client registration required but failed: %w", err)
		}
		clientID = reg.ClientID
	}

	f.exchanger = NewExchanger(meta, clientID, f.RedirectURI, f.Scopes)
	return f.exchanger, nil
}

func (f *Flow) metadataLocked(ctx context.Context) (*Metadata, error) {
	if f.metadata != nil {
		return f.metadata, nil
	}
	meta, err := Discover(ctx, f.HTTPClient, f.resourceMetadataURL())
	if err != nil {
		return nil, err
	}
	f.metadata = meta
	return meta, nil
}

func (f *Flow) resourceMetadataURL() string {
	if f.ResourceMetadataURL != "" {
		return f.ResourceMetadataURL
	}
	origin, err := originOf(f.ServerURL)
	if err != nil {
		return f.ServerURL
	}
	return origin + "/.well-known/mcp-resource"
}

func (f *Flow) resource() string {
	if f.Resource != "" {
		return f.Resource
	}
	return f.ServerURL
}

func (f *Flow) authorize(ctx context.Context) (*oauth2.Token, error) {
	if f.Authorize == nil {
		return nil, fmt.Errorf("oauth: no cached token and Flow.Authorize is nil")
	}
	exchanger, err := f.ensureExchanger(ctx)
	if err != nil {
		return nil, err
	}

	pkce, err := NewPKCEChallenge()
	if err != nil {
		return nil, err
	}
	state, err := randomState()
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	meta := f.metadata
	f.mu.Unlock()

	authURL := meta.AuthorizationURL(exchanger.config.ClientID, f.RedirectURI, state, pkce, f.Scopes...)
	code, err := f.Authorize(ctx, authURL)
	if err != nil {
		return nil, fmt.Errorf("oauth: authorization step failed: %w", err)
	}

	return exchanger.Exchange(ctx, f.HTTPClient, code, f.resource(), pkce)
}

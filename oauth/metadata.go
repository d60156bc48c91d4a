// Package oauth implements the client side of the MCP authorization flow:
// protected-resource metadata discovery, authorization-server metadata
// discovery, PKCE authorization-code exchange, dynamic client registration,
// and token caching (spec §4.8).
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// DefaultProtocolVersion is sent as MCP-Protocol-Version on the
// protected-resource metadata fetch, matching the value the session client
// negotiates with a server before authorization ever kicks in.
const DefaultProtocolVersion = "2025-06-18"

// Metadata is the OAuth 2.0 Authorization Server Metadata document (RFC
// 8414) describing the endpoints a client needs to complete the flow.
type Metadata struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	RegistrationEndpoint              string   `json:"registration_endpoint,omitempty"`
	RevocationEndpoint                string   `json:"revocation_endpoint,omitempty"`
	ResponseTypesSupported            []string `json:"response_types_supported,omitempty"`
	GrantTypesSupported               []string `json:"grant_types_supported,omitempty"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported,omitempty"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported,omitempty"`
	ScopesSupported                   []string `json:"scopes_supported,omitempty"`
}

// resourceMetadata is the protected-resource metadata document (RFC 9728)
// naming the authorization server(s) that protect an MCP resource.
type resourceMetadata struct {
	Resource             string   `json:"resource"`
	AuthorizationServers []string `json:"authorization_servers,omitempty"`
}

// SupportsS256 reports whether the server advertises S256 PKCE support. An
// empty list is treated as support, per RFC 8414's "absence means ask the
// server" default.
func (m *Metadata) SupportsS256() bool {
	if len(m.CodeChallengeMethodsSupported) == 0 {
		return true
	}
	for _, method := range m.CodeChallengeMethodsSupported {
		if method == "S256" {
			return true
		}
	}
	return false
}

// SupportsRegistration reports whether the server exposes a dynamic client
// registration endpoint.
func (m *Metadata) SupportsRegistration() bool {
	return m.RegistrationEndpoint != ""
}

// Discover resolves the authorization server protecting the resource at
// resourceMetadataURL (e.g. "https://host/.well-known/mcp-resource") and
// returns its metadata, per spec §4.8 step 1:
//
//  1. Fetch resourceMetadataURL with an MCP-Protocol-Version header. If it
//     succeeds, the authorization server is authorization_servers[0] from
//     the returned document; otherwise the authorization server is the
//     origin of resourceMetadataURL itself.
//  2. Fetch <auth-server>/.well-known/oauth-authorization-server. If that
//     fails (any non-200 status, a network error, or a document without
//     authorization/token endpoints), synthesize a metadata record from the
//     default endpoint layout (<auth-server>/authorize, /token, /register)
//     instead of failing.
func Discover(ctx context.Context, httpClient *http.Client, resourceMetadataURL string) (*Metadata, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	authServer, err := resolveAuthorizationServer(ctx, httpClient, resourceMetadataURL)
	if err != nil {
		return nil, err
	}

	meta, err := fetchMetadata(ctx, httpClient, strings.TrimRight(authServer, "/")+"/.well-known/oauth-authorization-server")
	if err == nil {
		return meta, nil
	}
	return fallbackMetadata(authServer), nil
}

// resolveAuthorizationServer implements the first half of discovery: it
// never fails outright, since a resource that publishes no metadata (or one
// unreachable) still has a conventional authorization server at its own
// origin.
func resolveAuthorizationServer(ctx context.Context, httpClient *http.Client, resourceMetadataURL string) (string, error) {
	origin, err := originOf(resourceMetadataURL)
	if err != nil {
		return "", fmt.Errorf("oauth: invalid resource metadata URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resourceMetadataURL, nil)
	if err != nil {
		return origin, nil
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("MCP-Protocol-Version", DefaultProtocolVersion)

	resp, err := httpClient.Do(req)
	if err != nil {
		return origin, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return origin, nil
	}

	var rm resourceMetadata
	if err := json.NewDecoder(resp.Body).Decode(&rm); err != nil || len(rm.AuthorizationServers) == 0 {
		return origin, nil
	}
	return rm.AuthorizationServers[0], nil
}

func originOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

func fetchMetadata(ctx context.Context, httpClient *http.Client, wellKnown string) (*Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wellKnown, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "authorization server metadata discovery", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oauth: discovery at %s returned %s", wellKnown, resp.Status)
	}

	var meta Metadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("oauth: discovery response invalid: %w", err)
	}
	if meta.AuthorizationEndpoint == "" || meta.TokenEndpoint == "" {
		return nil, fmt.Errorf("oauth: discovery document missing required endpoints")
	}
	return &meta, nil
}

// fallbackMetadata builds the conventional endpoint layout an authorization
// server is expected to serve when it publishes no discovery document.
func fallbackMetadata(authServer string) *Metadata {
	authServer = strings.TrimRight(authServer, "/")
	return &Metadata{
		Issuer:                authServer,
		AuthorizationEndpoint: authServer + "/authorize",
		TokenEndpoint:         authServer + "/token",
		RegistrationEndpoint:  authServer + "/register",
	}
}

// AuthorizationURL builds the browser-facing authorization-code-with-PKCE
// URL the caller must present to the resource owner.
func (m *Metadata) AuthorizationURL(clientID, redirectURI, state string, pkce *PKCEChallenge, scopes ...string) string {
	params := url.Values{
		"response_type":         {"code"},
		"client_id":             {clientID},
		"redirect_uri":          {redirectURI},
		"code_challenge":        {pkce.Challenge},
		"code_challenge_method": {pkce.Method},
	}
	if state != "" {
		params.Set("state", state)
	}
	if len(scopes) > 0 {
		params.Set("scope", strings.Join(scopes, " "))
	}
	return m.AuthorizationEndpoint + "?" + params.Encode()
}

package oauth

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"
)

// Exchanger drives the authorization-code-with-PKCE token exchange and
// subsequent refreshes, backed by golang.org/x/oauth2 for the wire protocol.
type Exchanger struct {
	config *oauth2.Config
}

// NewExchanger builds an Exchanger for a public client (no client secret;
// PKCE carries the proof of possession) against the endpoints in m.
func NewExchanger(m *Metadata, clientID, redirectURI string, scopes []string) *Exchanger {
	return &Exchanger{
		config: &oauth2.Config{
			ClientID:    clientID,
			RedirectURL: redirectURI,
			Scopes:      scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  m.AuthorizationEndpoint,
				TokenURL: m.TokenEndpoint,
			},
		},
	}
}

// Exchange redeems an authorization code for an access/refresh token pair,
// presenting the PKCE verifier so the authorization server can confirm it
// matches the challenge sent in the authorization request. resource is the
// optional RFC 8707 resource indicator (spec §4.8 step 2); pass "" to omit
// it.
func (e *Exchanger) Exchange(ctx context.Context, httpClient *http.Client, code, resource string, pkce *PKCEChallenge) (*oauth2.Token, error) {
	ctx = contextWithHTTPClient(ctx, httpClient)

	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("code_verifier", pkce.Verifier)}
	if resource != "" {
		opts = append(opts, oauth2.SetAuthURLParam("resource", resource))
	}

	tok, err := e.config.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, wrapTokenError("token exchange", err)
	}
	return applyJWTExpiry(tok), nil
}

// TokenSource returns an auto-refreshing oauth2.TokenSource seeded with
// tok: Token() transparently exchanges the refresh token once the access
// token is within oauth2's expiry skew, without the caller managing state.
func (e *Exchanger) TokenSource(ctx context.Context, httpClient *http.Client, tok *oauth2.Token) oauth2.TokenSource {
	ctx = contextWithHTTPClient(ctx, httpClient)
	return e.config.TokenSource(ctx, tok)
}

func contextWithHTTPClient(ctx context.Context, httpClient *http.Client) context.Context {
	if httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, httpClient)
}

// wrapTokenError recognizes golang.org/x/oauth2's own RetrieveError (the
// decoded error/error_description body of a 4xx token response) and
// re-surfaces it as a typed ErrorResponse; any other failure (the request
// never reaching the server, a non-OAuth body) becomes a NetworkError.
func wrapTokenError(op string, err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		return &ErrorResponse{
			Op:          op,
			StatusCode:  status,
			ErrorCode:   retrieveErr.ErrorCode,
			Description: retrieveErr.ErrorDescription,
		}
	}
	return &NetworkError{Op: op, Cause: err}
}

// applyJWTExpiry fills in tok.Expiry from the access token's "exp" claim
// when the token response omitted expires_in, which some MCP authorization
// servers do when the access token itself is a JWT.
func applyJWTExpiry(tok *oauth2.Token) *oauth2.Token {
	if tok == nil || !tok.Expiry.IsZero() {
		return tok
	}
	if exp, ok := jwtExpiry(tok.AccessToken); ok {
		tok.Expiry = exp
	}
	return tok
}

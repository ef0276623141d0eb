package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mahmoud-slama/creditapp/internal/common"
	"golang.org/x/oauth2"
)

// RequestIDHeader carries a per-request id for correlating logs.
const RequestIDHeader = "X-Request-ID"

// expiryLeeway refreshes tokens slightly before they expire.
const expiryLeeway = 30 * time.Second

// TokenStore holds the session tokens. Token returns common.ErrMissingAuth when
// nobody is logged in.
type TokenStore interface {
	Token() (*oauth2.Token, error)
	SaveToken(tok *oauth2.Token) error
}

// refreshFunc exchanges a refresh token for a new token pair.
type refreshFunc func(ctx context.Context, refreshToken string) (*oauth2.Token, error)

// authTransport attaches the bearer token and owns the refresh policy:
// a 401 triggers one refresh and exactly one replay. A second 401 ends the session.
type authTransport struct {
	base    http.RoundTripper
	tokens  TokenStore
	refresh refreshFunc
	logger  *slog.Logger
	mu      sync.Mutex
}

// tokenFor returns the stored token, refreshing it first when it has expired.
func (t *authTransport) tokenFor(ctx context.Context) (*oauth2.Token, error) {
	tok, err := t.current()
	if err != nil {
		return nil, err
	}
	if tok.Valid() || tok.RefreshToken == "" {
		return tok, nil
	}
	return t.renew(ctx, tok)
}

func (t *authTransport) current() (*oauth2.Token, error) {
	if t.tokens == nil {
		return nil, common.ErrMissingAuth
	}
	tok, err := t.tokens.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil || tok.AccessToken == "" {
		return nil, common.ErrMissingAuth
	}
	return tok, nil
}

// renew refreshes stale unless another request already replaced it.
func (t *authTransport) renew(ctx context.Context, stale *oauth2.Token) (*oauth2.Token, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	latest, err := t.current()
	if err != nil {
		return nil, err
	}
	if latest.AccessToken != stale.AccessToken {
		return latest, nil
	}
	if latest.RefreshToken == "" || t.refresh == nil {
		return nil, common.ErrSessionExpired
	}

	fresh, err := t.refresh(ctx, latest.RefreshToken)
	if err != nil {
		t.logger.Debug("Token refresh failed", "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrSessionExpired, err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = latest.RefreshToken
	}
	if err := t.tokens.SaveToken(fresh); err != nil {
		return nil, fmt.Errorf("failed to save refreshed token: %w", err)
	}

	t.logger.Debug("Access token refreshed", "expiry", fresh.Expiry)
	return fresh, nil
}

// RoundTrip implements http.RoundTripper.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	tok, err := t.tokenFor(ctx)
	if err != nil {
		return nil, err
	}

	if err := bufferBody(req); err != nil {
		return nil, err
	}

	resp, err := t.base.RoundTrip(authorize(req, tok))
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	drain(resp)

	fresh, err := t.renew(ctx, tok)
	if err != nil {
		return nil, err
	}

	replay, err := rewind(req)
	if err != nil {
		return nil, err
	}

	resp, err = t.base.RoundTrip(authorize(replay, fresh))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		return nil, fmt.Errorf("%w: %s %s rejected after refresh", common.ErrSessionExpired, req.Method, req.URL.Path)
	}
	return resp, nil
}

// authorize clones req with the bearer header set. RoundTrippers must not mutate the original.
func authorize(req *http.Request, tok *oauth2.Token) *http.Request {
	r := req.Clone(req.Context())
	tok.SetAuthHeader(r)
	return r
}

// bufferBody makes the body replayable by installing GetBody.
func bufferBody(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}
	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to buffer request body: %w", err)
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return nil
}

func rewind(req *http.Request) (*http.Request, error) {
	r := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		r.Body = body
	}
	return r, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}

// loggingTransport tags requests with an id and logs them at debug level.
type loggingTransport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	id := r.Header.Get(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
		r.Header.Set(RequestIDHeader, id)
	}

	start := time.Now()
	resp, err := t.base.RoundTrip(r)
	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", id,
		"duration", time.Since(start),
	}
	if err != nil {
		t.logger.Debug("API request failed", append(attrs, "error", err)...)
		return nil, err
	}
	t.logger.Debug("API request", append(attrs, "status", resp.StatusCode)...)
	return resp, nil
}

// tokenFromAuth builds an oauth2 token whose expiry comes from the JWT exp claim.
func tokenFromAuth(access, refresh string) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
	}
	if exp, err := tokenExpiry(access); err == nil {
		tok.Expiry = exp.Add(-expiryLeeway)
	}
	return tok
}

// TokenFromAuth is the exported form used by the session layer after login.
func TokenFromAuth(access, refresh string) *oauth2.Token {
	return tokenFromAuth(access, refresh)
}

var errNoExpiry = errors.New("token has no exp claim")

// tokenExpiry reads the exp claim without verifying the signature.
func tokenExpiry(raw string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

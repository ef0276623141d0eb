package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mahmoud-slama/creditapp/internal/model"
	"golang.org/x/oauth2"
)

// Authenticate exchanges credentials for a token pair and the account profile.
func (c *Client) Authenticate(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/v1/auth/authenticate",
		body:   creds,
		out:    &resp,
		public: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}
	return &resp, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, reg model.Registration) (*model.AuthResponse, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	var resp model.AuthResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/v1/auth/register",
		body:   reg,
		out:    &resp,
		public: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}
	return &resp, nil
}

// Logout revokes the current token on the backend.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.post(ctx, "/api/v1/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	return nil
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// refresh sends the refresh token both as bearer and in the body; the
// backend reads the header, older deployments read the body.
func (c *Client) refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	var resp model.AuthResponse
	err := c.send(ctx, call{
		method: http.MethodPost,
		path:   "/api/v1/auth/refresh-token",
		body:   refreshRequest{RefreshToken: refreshToken},
		out:    &resp,
		bearer: refreshToken,
		public: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, errors.New("failed to refresh token: empty access token")
	}
	return tokenFromAuth(resp.AccessToken, resp.RefreshToken), nil
}

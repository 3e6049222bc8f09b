package erpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/erpdesk/erpdesk/internal/records"
)

type tokenResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds records.Credentials) (string, error) {
	return c.issueToken(ctx, "/auth/login", creds)
}

// Register creates an account and returns its bearer token.
func (c *Client) Register(ctx context.Context, reg records.Registration) (string, error) {
	return c.issueToken(ctx, "/auth/register", reg)
}

func (c *Client) issueToken(ctx context.Context, path string, body any) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, nil, http.MethodPost, path, body, &resp)
	if err != nil {
		if msg, ok := IsValidation(err); ok {
			return "", fmt.Errorf("%w: %s", ErrInvalidCredentials, msg)
		}
		if errors.Is(err, ErrUnauthorized) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: no token received from server", ErrTransport)
	}
	return resp.Token, nil
}

// Profile returns the authenticated account.
func (c *Conn) Profile(ctx context.Context) (records.Profile, error) {
	var profile records.Profile
	if err := c.get(ctx, "/auth/profile", &profile); err != nil {
		return records.Profile{}, err
	}
	return profile, nil
}

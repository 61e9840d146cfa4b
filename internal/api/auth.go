package api

import (
	"context"
	"errors"
	"net/http"
)

// Credentials is the register and login body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ErrNoAccessToken is returned when a login response carries no token.
var ErrNoAccessToken = errors.New("login response has no access_token")

// Register creates an account and returns the server's message.
func (c *Client) Register(ctx context.Context, username, password string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, pathRegister, nil, Credentials{Username: username, Password: password}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Login exchanges credentials for a bearer token. The token is returned, not
// stored; callers hand it to the session holder.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.do(ctx, http.MethodPost, pathLogin, nil, Credentials{Username: username, Password: password}, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", ErrNoAccessToken
	}
	return out.AccessToken, nil
}

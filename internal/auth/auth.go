// Package auth implements the client side of the login endpoint. One POST
// mints both an access token and a refresh token; the four public operations
// differ only in what the request carries and which field is extracted.
package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/finops-sre/opsprobe/internal/dispatch"
)

const tokensPath = "/auth/tokens"

// AuthenticationError reports a non-200 response from the login endpoint.
type AuthenticationError struct {
	Status int
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: status %d", e.Status)
}

// Reference identifies the user or account a login was resolved against.
type Reference struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// LoginResult is the full login response envelope. Tokens are opaque; the
// client checks presence only and never inspects their contents.
type LoginResult struct {
	User         Reference `json:"user"`
	Account      Reference `json:"account"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}

type accountRef struct {
	ID string `json:"id"`
}

type loginRequest struct {
	Email        string      `json:"email,omitempty"`
	Password     string      `json:"password,omitempty"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	Account      *accountRef `json:"account,omitempty"`
}

// Client issues and refreshes access tokens. It is stateless; every result
// is an immutable value the caller owns.
type Client struct {
	d *dispatch.Dispatcher
}

// NewClient creates an authentication client on top of the dispatcher.
func NewClient(d *dispatch.Dispatcher) *Client {
	return &Client{d: d}
}

// Login performs the credentials flow and returns the full response
// envelope. Account is optional; when empty the backend resolves the
// account last used by the user.
func (c *Client) Login(ctx context.Context, email, password, accountID string) (*LoginResult, error) {
	req := loginRequest{Email: email, Password: password}
	if accountID != "" {
		req.Account = &accountRef{ID: accountID}
	}
	return c.login(ctx, req)
}

// LoginWithRefreshToken exchanges a refresh token for a new token pair
// without re-supplying credentials.
func (c *Client) LoginWithRefreshToken(ctx context.Context, refreshToken, accountID string) (*LoginResult, error) {
	return c.login(ctx, loginRequest{
		RefreshToken: refreshToken,
		Account:      &accountRef{ID: accountID},
	})
}

// IssueTokenForAccount authenticates and scopes the session to one account.
func (c *Client) IssueTokenForAccount(ctx context.Context, email, password, accountID string) (string, error) {
	result, err := c.Login(ctx, email, password, accountID)
	if err != nil {
		return "", err
	}
	return result.AccessToken, nil
}

// IssueTokenForLastUsedAccount authenticates against whichever account the
// user last used; the backend resolves the scope.
func (c *Client) IssueTokenForLastUsedAccount(ctx context.Context, email, password string) (string, error) {
	result, err := c.Login(ctx, email, password, "")
	if err != nil {
		return "", err
	}
	return result.AccessToken, nil
}

// IssueRefreshToken performs the same login call but extracts the refresh
// token instead of the access token.
func (c *Client) IssueRefreshToken(ctx context.Context, email, password, accountID string) (string, error) {
	result, err := c.Login(ctx, email, password, accountID)
	if err != nil {
		return "", err
	}
	if result.RefreshToken == "" {
		return "", fmt.Errorf("login response missing refresh_token")
	}
	return result.RefreshToken, nil
}

// RefreshAccessToken exchanges a refresh token plus account scope for a new
// access token.
func (c *Client) RefreshAccessToken(ctx context.Context, refreshToken, accountID string) (string, error) {
	result, err := c.LoginWithRefreshToken(ctx, refreshToken, accountID)
	if err != nil {
		return "", err
	}
	return result.AccessToken, nil
}

func (c *Client) login(ctx context.Context, req loginRequest) (*LoginResult, error) {
	resp, err := c.d.Send(ctx, dispatch.Request{
		Method: dispatch.MethodPost,
		Path:   tokensPath,
		Body:   req,
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &AuthenticationError{Status: resp.StatusCode}
	}

	var result LoginResult
	if err := resp.Decode(&result); err != nil {
		return nil, err
	}

	if result.AccessToken == "" {
		return nil, fmt.Errorf("login response missing access_token")
	}

	return &result, nil
}

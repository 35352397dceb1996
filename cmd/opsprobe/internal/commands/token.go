package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

type TokenCmd struct {
	Issue   TokenIssueCmd   `cmd:"" help:"Authenticate and print an access token"`
	Refresh TokenRefreshCmd `cmd:"" help:"Exchange a refresh token for a new access token"`
	Inspect TokenInspectCmd `cmd:"" help:"Decode a token's claims without verifying it"`
}

type TokenIssueCmd struct {
	ConnectionFlags
	RefreshToken bool `help:"Print the refresh token instead of the access token"`
}

func (t *TokenIssueCmd) Run(ctx context.Context, globals *Globals) error {
	cfg := t.buildConfig(globals)
	if err := cfg.Validate(); err != nil {
		return err
	}

	clients := newClients(cfg)

	result, err := clients.Auth.Login(ctx, cfg.Email, cfg.Password, cfg.AccountID)
	if err != nil {
		return err
	}

	if t.RefreshToken {
		fmt.Println(result.RefreshToken)
		return nil
	}

	fmt.Println(result.AccessToken)
	return nil
}

type TokenRefreshCmd struct {
	ConnectionFlags
	Token string `arg:"" help:"Refresh token to exchange"`
}

func (t *TokenRefreshCmd) Run(ctx context.Context, globals *Globals) error {
	cfg := t.buildConfig(globals)
	clients := newClients(cfg)

	accessToken, err := clients.Auth.RefreshAccessToken(ctx, t.Token, cfg.AccountID)
	if err != nil {
		return err
	}

	fmt.Println(accessToken)
	return nil
}

type TokenInspectCmd struct {
	Token string `arg:"" help:"Token to decode"`
}

// Run decodes the claims for debugging. The backend owns validation; the
// signature is deliberately not checked here.
func (t *TokenInspectCmd) Run(ctx context.Context) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.Token, claims); err != nil {
		return fmt.Errorf("failed to parse token: %w", err)
	}

	out, err := json.MarshalIndent(claims, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(out))
	return nil
}

// Package config holds the process configuration. It is resolved once at
// startup (flags, environment, optional .env file) and threaded into every
// constructor as a value; nothing reads the environment after that.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config is the immutable process configuration.
type Config struct {
	// BaseURL is the service root; the versioned /ops/v1 prefix is appended
	// by the client layer.
	BaseURL string

	// Default credentials used to mint suite tokens.
	Email    string
	Password string

	// AccountID scopes issued tokens. Empty means last-used-account.
	AccountID string

	// OrgID names a pre-existing organization with datasources attached,
	// used by the read-only datasource scenario. Optional.
	OrgID string

	Timeout time.Duration
	Debug   bool
}

// Validate checks the fields every client constructor depends on.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base URL is required")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base URL %q", c.BaseURL)
	}

	if c.Email == "" || c.Password == "" {
		return errors.New("credentials are required")
	}

	return nil
}

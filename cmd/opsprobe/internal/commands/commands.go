package commands

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/finops-sre/opsprobe/internal/client"
	"github.com/finops-sre/opsprobe/internal/config"
)

type Globals struct {
	Debug   bool
	Version string
}

// ConnectionFlags are shared by every command that talks to the backend.
type ConnectionFlags struct {
	BaseURL   string        `help:"Service root URL, without the /ops/v1 prefix" env:"OPSPROBE_BASE_URL" required:""`
	Email     string        `help:"Login email" env:"OPSPROBE_EMAIL"`
	Password  string        `help:"Login password" env:"OPSPROBE_PASSWORD"`
	AccountID string        `help:"Account id tokens are scoped to; empty uses the last-used account" env:"OPSPROBE_ACCOUNT_ID"`
	Timeout   time.Duration `help:"HTTP timeout" default:"30s" env:"OPSPROBE_TIMEOUT"`
}

func (f ConnectionFlags) buildConfig(globals *Globals) config.Config {
	return config.Config{
		BaseURL:   f.BaseURL,
		Email:     f.Email,
		Password:  f.Password,
		AccountID: f.AccountID,
		Timeout:   f.Timeout,
		Debug:     globals.Debug,
	}
}

func newClients(cfg config.Config) *client.Clients {
	return client.New(client.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Logger:  log.Logger,
	})
}

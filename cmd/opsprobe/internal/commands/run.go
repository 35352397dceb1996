package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/finops-sre/opsprobe/internal/client"
	"github.com/finops-sre/opsprobe/internal/scenario"
	"github.com/finops-sre/opsprobe/internal/telemetry"
)

type RunCmd struct {
	ConnectionFlags
	OrgID       string   `help:"Existing organization with datasources, used by the read-only datasource scenario" env:"OPSPROBE_ORG_ID"`
	Workers     int      `help:"Parallel scenario workers" default:"4"`
	FreshTokens bool     `help:"Mint a fresh token per scenario instead of one suite-scoped token"`
	Scenarios   []string `help:"Run only the named scenarios"`
	Config      string   `help:"YAML suite config file path"`
	Caching     bool     `help:"Cache idempotent GET responses"`
	CacheDir    string   `help:"Directory for the response cache; empty keeps it in memory"`
}

// suiteFile mirrors the flags that make sense to keep in version control
// alongside the environment being probed.
type suiteFile struct {
	Workers     int      `yaml:"workers"`
	FreshTokens bool     `yaml:"freshTokens"`
	Scenarios   []string `yaml:"scenarios"`
	OrgID       string   `yaml:"orgId"`
}

func (r *RunCmd) Run(ctx context.Context, globals *Globals) error {
	if r.Config != "" {
		if err := r.loadConfigFile(); err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg := r.buildConfig(globals)
	cfg.OrgID = r.OrgID
	if err := cfg.Validate(); err != nil {
		return err
	}

	shutdown, err := telemetry.Init(ctx, "opsprobe", globals.Version)
	if err != nil {
		log.Warn().Err(err).Msg("telemetry disabled")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("telemetry shutdown failed")
			}
		}()
	}

	clients := client.New(client.Config{
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.Timeout,
		Logger:   log.Logger,
		Caching:  r.Caching,
		CacheDir: r.CacheDir,
	})

	tokens := scenario.TokenSource(scenario.FreshTokens(clients.Auth, cfg))
	if !r.FreshTokens {
		suiteToken, err := scenario.FreshTokens(clients.Auth, cfg)(ctx)
		if err != nil {
			return fmt.Errorf("failed to obtain suite token: %w", err)
		}
		tokens = scenario.StaticToken(suiteToken)
	}

	scenarios, err := scenario.Named(cfg, r.Scenarios)
	if err != nil {
		return err
	}

	runner := &scenario.Runner{
		Clients: clients,
		Config:  cfg,
		Tokens:  tokens,
		Workers: r.Workers,
		Logger:  log.Logger,
	}

	report := runner.Run(ctx, scenarios)

	fmt.Printf("Run %s: %d passed, %d failed\n", report.RunID, report.Passed(), report.Failed())
	for _, res := range report.Results {
		status := "PASS"
		if res.Err != nil {
			status = "FAIL"
		}
		fmt.Printf("  %-4s %-28s %8s\n", status, res.Scenario, res.Duration.Round(time.Millisecond))
		if res.Err != nil {
			fmt.Printf("       %v\n", res.Err)
		}
		for _, warning := range res.Warnings {
			fmt.Printf("       cleanup warning: %s\n", warning)
		}
	}

	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(report.Results))
	}

	return nil
}

func (r *RunCmd) loadConfigFile() error {
	data, err := os.ReadFile(r.Config)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var file suiteFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}

	// Config file takes precedence over flags.
	if file.Workers > 0 {
		r.Workers = file.Workers
	}
	if file.FreshTokens {
		r.FreshTokens = true
	}
	if len(file.Scenarios) > 0 {
		r.Scenarios = file.Scenarios
	}
	if file.OrgID != "" {
		r.OrgID = file.OrgID
	}

	return nil
}

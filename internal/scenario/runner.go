package scenario

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/finops-sre/opsprobe/internal/auth"
	"github.com/finops-sre/opsprobe/internal/client"
	"github.com/finops-sre/opsprobe/internal/config"
	"github.com/finops-sre/opsprobe/internal/ids"
	"github.com/finops-sre/opsprobe/internal/telemetry"
)

// TokenSource yields the access token a scenario execution should carry.
// Tokens are immutable values, so one token may safely be shared read-only
// across a whole parallel suite.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken returns the same suite-scoped token for every scenario.
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) {
		return token, nil
	}
}

// FreshTokens mints a new scenario-scoped token per execution.
func FreshTokens(authClient *auth.Client, cfg config.Config) TokenSource {
	return func(ctx context.Context) (string, error) {
		if cfg.AccountID != "" {
			return authClient.IssueTokenForAccount(ctx, cfg.Email, cfg.Password, cfg.AccountID)
		}
		return authClient.IssueTokenForLastUsedAccount(ctx, cfg.Email, cfg.Password)
	}
}

// Result is the outcome of one scenario execution.
type Result struct {
	Scenario string
	ExecID   string
	Err      error
	Duration time.Duration
	Warnings []string
}

// Report aggregates the results of one suite run.
type Report struct {
	RunID   string
	Results []Result
}

// Passed counts scenarios that completed without error.
func (r *Report) Passed() int {
	return len(r.Results) - r.Failed()
}

// Failed counts scenarios that returned an error.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Runner executes scenarios across parallel workers. Scenarios never share
// state; within one scenario every step is strictly sequential.
type Runner struct {
	Clients *client.Clients
	Config  config.Config
	Tokens  TokenSource
	Workers int
	Logger  zerolog.Logger
}

// Run executes all scenarios and returns the aggregated report. Result
// order follows completion, not submission.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) *Report {
	workers := r.Workers
	if workers <= 0 {
		workers = 4
	}

	runID := ids.New()
	logger := r.Logger.With().Str("run_id", runID).Logger()
	logger.Info().Int("workers", workers).Int("scenarios", len(scenarios)).Msg("suite starting")

	jobs := make(chan Scenario)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sc := range jobs {
				results <- r.runOne(ctx, logger, sc)
			}
		}()
	}

	go func() {
		for _, sc := range scenarios {
			jobs <- sc
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	report := &Report{RunID: runID}
	for res := range results {
		report.Results = append(report.Results, res)
	}

	logger.Info().
		Int("passed", report.Passed()).
		Int("failed", report.Failed()).
		Msg("suite finished")

	return report
}

func (r *Runner) runOne(ctx context.Context, logger zerolog.Logger, sc Scenario) Result {
	execID := ids.New()
	scLog := logger.With().Str("scenario", sc.Name).Str("exec_id", execID).Logger()

	s := &S{
		Clients: r.Clients,
		Config:  r.Config,
		Log:     scLog,
		phase:   PhaseInit,
	}

	start := time.Now()

	var runErr error
	token, err := r.Tokens(ctx)
	if err != nil {
		runErr = fmt.Errorf("failed to obtain token: %w", err)
	} else {
		s.Token = token
		runErr = sc.Run(ctx, s)
	}

	// Cleanup runs unconditionally; its failures become warnings.
	warnings := s.runCleanups(ctx)

	elapsed := time.Since(start)

	outcome := "pass"
	if runErr != nil {
		outcome = "fail"
		scLog.Error().Err(runErr).Dur("elapsed", elapsed).Msg("scenario failed")
	} else {
		scLog.Info().Dur("elapsed", elapsed).Msg("scenario passed")
	}

	m := telemetry.GetMetrics()
	attrs := metric.WithAttributes(
		attribute.String("scenario", sc.Name),
		attribute.String("outcome", outcome),
	)
	m.ScenariosTotal.Add(ctx, 1, attrs)
	m.ScenarioDuration.Record(ctx, float64(elapsed.Milliseconds()), attrs)

	return Result{
		Scenario: sc.Name,
		ExecID:   execID,
		Err:      runErr,
		Duration: elapsed,
		Warnings: warnings,
	}
}

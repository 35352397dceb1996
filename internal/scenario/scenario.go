// Package scenario orchestrates end-to-end workflows against the backend:
// arrange fixtures, exercise one operation, assert, and always clean up.
package scenario

import (
	"context"
	"errors"
	"net/http"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/finops-sre/opsprobe/internal/client"
	"github.com/finops-sre/opsprobe/internal/config"
	"github.com/finops-sre/opsprobe/internal/dispatch"
	"github.com/finops-sre/opsprobe/internal/resources"
	"github.com/finops-sre/opsprobe/internal/telemetry"
)

// Phase names the stage a scenario is in. Cleanup always runs, whichever
// phase the scenario failed in.
type Phase string

const (
	PhaseInit    Phase = "init"
	PhaseArrange Phase = "arrange"
	PhaseAct     Phase = "act"
	PhaseAssert  Phase = "assert"
	PhaseCleanup Phase = "cleanup"
)

// Scenario is one end-to-end test case. Run receives scenario-local state
// and must register cleanup for every resource it creates.
type Scenario struct {
	Name string
	Run  func(ctx context.Context, s *S) error
}

type cleanupStep struct {
	name string
	fn   func(ctx context.Context) error
}

// S carries scenario-local state. Each execution gets a fresh value, so
// nothing is shared between parallel scenarios.
type S struct {
	Clients *client.Clients
	Config  config.Config
	Token   string
	Log     zerolog.Logger

	phase    Phase
	cleanups []cleanupStep
	warnings []string
}

// Phase marks the scenario's current stage for logging and failure reports.
func (s *S) Phase(p Phase) {
	s.phase = p
	s.Log.Debug().Str("phase", string(p)).Msg("entering phase")
}

// Cleanup registers an undo step. Steps run in reverse registration order
// after the scenario finishes, regardless of its outcome.
func (s *S) Cleanup(name string, fn func(ctx context.Context) error) {
	s.cleanups = append(s.cleanups, cleanupStep{name: name, fn: fn})
}

// cleanupBackOff builds the retry policy for cleanup deletions. Variable so
// tests can substitute a faster policy.
var cleanupBackOff = func() backoff.BackOff {
	return backoff.NewExponentialBackOff()
}

// DeleteOrganizationOnCleanup registers deletion of the organization. A 404
// counts as already deleted, transient statuses are retried with backoff,
// and anything else surfaces as a cleanup warning.
func (s *S) DeleteOrganizationOnCleanup(id string) {
	s.Cleanup("delete organization "+id, func(ctx context.Context) error {
		op := func() (struct{}, error) {
			resp, err := s.Clients.Organizations.DeleteRaw(ctx, s.Token, id)
			if err != nil {
				var transportErr *dispatch.TransportError
				if errors.As(err, &transportErr) {
					return struct{}{}, err
				}
				return struct{}{}, backoff.Permanent(err)
			}

			switch resp.StatusCode {
			case http.StatusNoContent, http.StatusNotFound:
				return struct{}{}, nil
			case http.StatusConflict, http.StatusTooManyRequests, http.StatusServiceUnavailable:
				return struct{}{}, &resources.ResourceOperationError{Op: "delete organization", Status: resp.StatusCode}
			default:
				return struct{}{}, backoff.Permanent(&resources.ResourceOperationError{Op: "delete organization", Status: resp.StatusCode})
			}
		}

		_, err := backoff.Retry(ctx, op,
			backoff.WithBackOff(cleanupBackOff()),
			backoff.WithMaxTries(4),
		)
		return err
	})
}

// runCleanups executes registered steps in LIFO order. Failures are logged
// and collected as warnings; they never mask the scenario's own result.
func (s *S) runCleanups(ctx context.Context) []string {
	s.Phase(PhaseCleanup)

	for i := len(s.cleanups) - 1; i >= 0; i-- {
		step := s.cleanups[i]
		if err := step.fn(ctx); err != nil {
			s.Log.Warn().Str("step", step.name).Err(err).Msg("cleanup step failed")
			s.warnings = append(s.warnings, step.name+": "+err.Error())
			telemetry.GetMetrics().CleanupWarningsTotal.Add(ctx, 1)
		}
	}

	return s.warnings
}

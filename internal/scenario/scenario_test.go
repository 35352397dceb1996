package scenario

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finops-sre/opsprobe/internal/client"
)

func newS(clients *client.Clients) *S {
	return &S{
		Clients: clients,
		Token:   "tok",
		Log:     zerolog.Nop(),
		phase:   PhaseInit,
	}
}

func TestS_runCleanups(t *testing.T) {
	t.Run("runs in reverse registration order", func(t *testing.T) {
		s := newS(nil)

		var order []string
		s.Cleanup("first", func(ctx context.Context) error {
			order = append(order, "first")
			return nil
		})
		s.Cleanup("second", func(ctx context.Context) error {
			order = append(order, "second")
			return nil
		})

		warnings := s.runCleanups(context.Background())
		assert.Empty(t, warnings)
		assert.Equal(t, []string{"second", "first"}, order)
	})

	t.Run("failures become warnings and do not stop later steps", func(t *testing.T) {
		s := newS(nil)

		var ran bool
		s.Cleanup("delete organization", func(ctx context.Context) error {
			ran = true
			return nil
		})
		s.Cleanup("broken step", func(ctx context.Context) error {
			return errors.New("backend unreachable")
		})

		warnings := s.runCleanups(context.Background())
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "broken step")
		assert.True(t, ran)
	})
}

func fastCleanupBackOff(t *testing.T) {
	t.Helper()
	prev := cleanupBackOff
	cleanupBackOff = func() backoff.BackOff {
		return backoff.NewConstantBackOff(time.Millisecond)
	}
	t.Cleanup(func() { cleanupBackOff = prev })
}

func newOrgClients(serverURL string) *client.Clients {
	return client.New(client.Config{BaseURL: serverURL, Timeout: time.Second})
}

func TestS_DeleteOrganizationOnCleanup(t *testing.T) {
	fastCleanupBackOff(t)

	t.Run("404 counts as already deleted", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			require.Equal(t, "/ops/v1/organizations/FORG-0001-0002-0003", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		s := newS(newOrgClients(server.URL))
		s.DeleteOrganizationOnCleanup("FORG-0001-0002-0003")

		warnings := s.runCleanups(context.Background())
		assert.Empty(t, warnings)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("transient statuses are retried", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		s := newS(newOrgClients(server.URL))
		s.DeleteOrganizationOnCleanup("FORG-0001-0002-0003")

		warnings := s.runCleanups(context.Background())
		assert.Empty(t, warnings)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("permanent failures surface as one warning", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		s := newS(newOrgClients(server.URL))
		s.DeleteOrganizationOnCleanup("FORG-0001-0002-0003")

		warnings := s.runCleanups(context.Background())
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "403")
		// No retries on a permanent status.
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}

package scenario

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finops-sre/opsprobe/internal/client"
	"github.com/finops-sre/opsprobe/internal/config"
	"github.com/finops-sre/opsprobe/internal/resources"
)

const seededOrgID = "FORG-9999-9999-9999"

func newSuiteEnv(t *testing.T) (*fakeBackend, config.Config, *client.Clients) {
	t.Helper()

	backend := newFakeBackend()
	backend.seedDatasources(seededOrgID, []resources.Datasource{
		{
			ID:                        "ds-aws-1",
			OrganizationID:            seededOrgID,
			Name:                      "aws-main",
			Type:                      resources.DatasourceTypeAWSCNR,
			ResourcesChangedThisMonth: 17,
			ExpensesSoFarThisMonth:    512.25,
			ExpensesForecastThisMonth: 1024.5,
		},
	})

	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)

	cfg := config.Config{
		BaseURL:   server.URL,
		Email:     "suite@probe.example.com",
		Password:  "suite-password",
		AccountID: "acc-1",
		OrgID:     seededOrgID,
		Timeout:   5 * time.Second,
	}

	clients := client.New(client.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	})

	return backend, cfg, clients
}

func TestSuite_endToEnd(t *testing.T) {
	backend, cfg, clients := newSuiteEnv(t)

	runner := &Runner{
		Clients: clients,
		Config:  cfg,
		Tokens:  FreshTokens(clients.Auth, cfg),
		Workers: 4,
		Logger:  zerolog.Nop(),
	}

	report := runner.Run(context.Background(), Suite(cfg))

	require.Len(t, report.Results, 6)
	for _, res := range report.Results {
		assert.NoError(t, res.Err, "scenario %s", res.Scenario)
		assert.Empty(t, res.Warnings, "scenario %s", res.Scenario)
	}
	assert.Equal(t, 0, report.Failed())

	// Every organization created by a scenario must be gone afterwards.
	assert.Equal(t, 0, backend.orgCount())
}

func TestSuite_suiteScopedToken(t *testing.T) {
	backend, cfg, clients := newSuiteEnv(t)

	suiteToken, err := clients.Auth.IssueTokenForAccount(context.Background(), cfg.Email, cfg.Password, cfg.AccountID)
	require.NoError(t, err)

	runner := &Runner{
		Clients: clients,
		Config:  cfg,
		Tokens:  StaticToken(suiteToken),
		Workers: 2,
		Logger:  zerolog.Nop(),
	}

	report := runner.Run(context.Background(), Suite(cfg))

	assert.Equal(t, 0, report.Failed())
	assert.Equal(t, 0, backend.orgCount())
}

func TestSuite_omitsDatasourceScenarioWithoutOrg(t *testing.T) {
	cfg := config.Config{}

	names := make([]string, 0)
	for _, sc := range Suite(cfg) {
		names = append(names, sc.Name)
	}

	assert.NotContains(t, names, "datasource-reimport")
}

func TestNamed(t *testing.T) {
	cfg := config.Config{OrgID: seededOrgID}

	t.Run("selects the requested subset", func(t *testing.T) {
		scenarios, err := Named(cfg, []string{"token-refresh", "employee-create"})
		require.NoError(t, err)
		require.Len(t, scenarios, 2)
		assert.Equal(t, "token-refresh", scenarios[0].Name)
		assert.Equal(t, "employee-create", scenarios[1].Name)
	})

	t.Run("empty selection means the whole suite", func(t *testing.T) {
		scenarios, err := Named(cfg, nil)
		require.NoError(t, err)
		assert.Len(t, scenarios, 6)
	})

	t.Run("unknown names are loud", func(t *testing.T) {
		_, err := Named(cfg, []string{"organization-roundtrip", "no-such-scenario"})
		require.ErrorContains(t, err, "no-such-scenario")
	})
}

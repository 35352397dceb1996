// Package client wires the dispatcher and every typed resource client
// together behind one constructor.
package client

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/finops-sre/opsprobe/internal/auth"
	"github.com/finops-sre/opsprobe/internal/dispatch"
	"github.com/finops-sre/opsprobe/internal/resources"
)

// apiPrefix is the versioned root every endpoint lives under.
const apiPrefix = "/ops/v1"

// Config holds common client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  zerolog.Logger

	// CacheDir enables a disk-backed caching transport for idempotent GETs
	// when set. Empty disables caching entirely.
	CacheDir string
	Caching  bool
}

// Clients holds one typed client per backend resource, all sharing one
// dispatcher and base URL.
type Clients struct {
	Auth          *auth.Client
	Organizations *resources.OrganizationClient
	Employees     *resources.EmployeeClient
	Datasources   *resources.DatasourceClient
	Users         *resources.UserClient
}

// New creates the clients with the given configuration.
func New(config Config) *Clients {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var httpClient *http.Client
	if config.Caching {
		httpClient = dispatch.NewCachingHTTPClient(config.CacheDir, timeout)
	} else {
		httpClient = &http.Client{Timeout: timeout}
	}

	d := dispatch.New(config.BaseURL+apiPrefix,
		dispatch.WithHTTPClient(httpClient),
		dispatch.WithLogger(config.Logger),
	)

	return &Clients{
		Auth:          auth.NewClient(d),
		Organizations: resources.NewOrganizationClient(d),
		Employees:     resources.NewEmployeeClient(d),
		Datasources:   resources.NewDatasourceClient(d),
		Users:         resources.NewUserClient(d),
	}
}

package resources

import (
	"context"
	"net/http"

	"github.com/finops-sre/opsprobe/internal/dispatch"
)

// DatasourceClient encodes the datasource operations. Datasources are
// read-only from the client's perspective apart from force-reimport.
type DatasourceClient struct {
	d *dispatch.Dispatcher
}

// NewDatasourceClient creates a client on top of the dispatcher.
func NewDatasourceClient(d *dispatch.Dispatcher) *DatasourceClient {
	return &DatasourceClient{d: d}
}

// List reads the datasources of an organization, expecting a 200.
func (c *DatasourceClient) List(ctx context.Context, token, orgID string) ([]Datasource, error) {
	resp, err := c.d.Send(ctx, dispatch.Request{
		Method: dispatch.MethodGet,
		Path:   organizationsPath + "/" + orgID + "/datasources",
		Header: bearerHeader(token),
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ResourceOperationError{Op: "list datasources", Status: resp.StatusCode}
	}

	var datasources []Datasource
	if err := resp.Decode(&datasources); err != nil {
		return nil, err
	}
	return datasources, nil
}

// FindByName scans the organization's datasources for one with the given
// name. Returns *NotFoundError when nothing matches.
func (c *DatasourceClient) FindByName(ctx context.Context, token, orgID, name string) (*Datasource, error) {
	datasources, err := c.List(ctx, token, orgID)
	if err != nil {
		return nil, err
	}

	for i := range datasources {
		if datasources[i].Name == name {
			return &datasources[i], nil
		}
	}

	return nil, &NotFoundError{Resource: "datasource", Name: name}
}

// ForceReimport triggers a reimport of the datasource's billing data,
// expecting a 204.
func (c *DatasourceClient) ForceReimport(ctx context.Context, token, orgID, datasourceID string) error {
	resp, err := c.d.Send(ctx, dispatch.Request{
		Method: dispatch.MethodPost,
		Path:   organizationsPath + "/" + orgID + "/datasources/" + datasourceID + "/force-reimport",
		Header: bearerHeader(token),
	})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent {
		return &ResourceOperationError{Op: "force datasource reimport", Status: resp.StatusCode}
	}
	return nil
}

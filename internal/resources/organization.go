package resources

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/finops-sre/opsprobe/internal/dispatch"
)

const organizationsPath = "/organizations"

// OrganizationClient encodes the organization resource's operations. Every
// mutating convenience method asserts its expected status immediately so a
// misbehaving backend fails at the offending call, not three steps later.
type OrganizationClient struct {
	d *dispatch.Dispatcher
}

// NewOrganizationClient creates a client on top of the dispatcher.
func NewOrganizationClient(d *dispatch.Dispatcher) *OrganizationClient {
	return &OrganizationClient{d: d}
}

// CreateRaw issues the create request and returns the raw response.
func (c *OrganizationClient) CreateRaw(ctx context.Context, token string, in OrganizationCreate) (*dispatch.Response, error) {
	return c.d.Send(ctx, dispatch.Request{
		Method: dispatch.MethodPost,
		Path:   organizationsPath,
		Header: bearerHeader(token),
		Body:   in,
	})
}

// Create creates an organization, expecting a 201.
func (c *OrganizationClient) Create(ctx context.Context, token string, in OrganizationCreate) (*Organization, error) {
	resp, err := c.CreateRaw(ctx, token, in)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, &ResourceOperationError{Op: "create organization", Status: resp.StatusCode}
	}

	var org Organization
	if err := resp.Decode(&org); err != nil {
		return nil, err
	}
	return &org, nil
}

// GetRaw issues the read request and returns the raw response.
func (c *OrganizationClient) GetRaw(ctx context.Context, token, id string) (*dispatch.Response, error) {
	return c.d.Send(ctx, dispatch.Request{
		Method: dispatch.MethodGet,
		Path:   organizationsPath + "/" + id,
		Header: bearerHeader(token),
	})
}

// Get reads an organization by id, expecting a 200.
func (c *OrganizationClient) Get(ctx context.Context, token, id string) (*Organization, error) {
	resp, err := c.GetRaw(ctx, token, id)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ResourceOperationError{Op: "get organization", Status: resp.StatusCode}
	}

	var org Organization
	if err := resp.Decode(&org); err != nil {
		return nil, err
	}
	return &org, nil
}

// List reads a page of organizations using limit/offset pagination.
func (c *OrganizationClient) List(ctx context.Context, token string, limit, offset int) (*Page[Organization], error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	resp, err := c.d.Send(ctx, dispatch.Request{
		Method: dispatch.MethodGet,
		Path:   organizationsPath,
		Query:  query,
		Header: bearerHeader(token),
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ResourceOperationError{Op: "list organizations", Status: resp.StatusCode}
	}

	var page Page[Organization]
	if err := resp.Decode(&page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdateRaw issues the update request and returns the raw response.
func (c *OrganizationClient) UpdateRaw(ctx context.Context, token, id string, in OrganizationUpdate) (*dispatch.Response, error) {
	return c.d.Send(ctx, dispatch.Request{
		Method: dispatch.MethodPut,
		Path:   organizationsPath + "/" + id,
		Header: bearerHeader(token),
		Body:   in,
	})
}

// Update mutates an organization, expecting a 200.
func (c *OrganizationClient) Update(ctx context.Context, token, id string, in OrganizationUpdate) (*Organization, error) {
	resp, err := c.UpdateRaw(ctx, token, id, in)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ResourceOperationError{Op: "update organization", Status: resp.StatusCode}
	}

	var org Organization
	if err := resp.Decode(&org); err != nil {
		return nil, err
	}
	return &org, nil
}

// DeleteRaw issues the delete request and returns the raw response.
func (c *OrganizationClient) DeleteRaw(ctx context.Context, token, id string) (*dispatch.Response, error) {
	return c.d.Send(ctx, dispatch.Request{
		Method: dispatch.MethodDelete,
		Path:   organizationsPath + "/" + id,
		Header: bearerHeader(token),
	})
}

// Delete removes an organization, expecting a 204.
func (c *OrganizationClient) Delete(ctx context.Context, token, id string) error {
	resp, err := c.DeleteRaw(ctx, token, id)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNoContent {
		return &ResourceOperationError{Op: "delete organization", Status: resp.StatusCode}
	}
	return nil
}

// AddAdmin grants an existing user admin membership of the organization,
// expecting a 200.
func (c *OrganizationClient) AddAdmin(ctx context.Context, token, id, email string) error {
	resp, err := c.d.Send(ctx, dispatch.Request{
		Method: dispatch.MethodPost,
		Path:   organizationsPath + "/" + id + "/add-admin",
		Header: bearerHeader(token),
		Body:   map[string]string{"email": email},
	})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &ResourceOperationError{Op: "add organization admin", Status: resp.StatusCode}
	}
	return nil
}

// Employees lists the members of an organization, expecting a 200.
func (c *OrganizationClient) Employees(ctx context.Context, token, id string) ([]Employee, error) {
	resp, err := c.d.Send(ctx, dispatch.Request{
		Method: dispatch.MethodGet,
		Path:   organizationsPath + "/" + id + "/employees",
		Header: bearerHeader(token),
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ResourceOperationError{Op: "list organization employees", Status: resp.StatusCode}
	}

	var employees []Employee
	if err := resp.Decode(&employees); err != nil {
		return nil, err
	}
	return employees, nil
}

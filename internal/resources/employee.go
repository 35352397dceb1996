package resources

import (
	"context"
	"net/http"

	"github.com/finops-sre/opsprobe/internal/dispatch"
)

const employeesPath = "/employees"

// EmployeeClient encodes the employee resource's operations.
type EmployeeClient struct {
	d *dispatch.Dispatcher
}

// NewEmployeeClient creates a client on top of the dispatcher.
func NewEmployeeClient(d *dispatch.Dispatcher) *EmployeeClient {
	return &EmployeeClient{d: d}
}

// CreateRaw issues the create request and returns the raw response.
func (c *EmployeeClient) CreateRaw(ctx context.Context, token string, in EmployeeCreate) (*dispatch.Response, error) {
	return c.d.Send(ctx, dispatch.Request{
		Method: dispatch.MethodPost,
		Path:   employeesPath,
		Header: bearerHeader(token),
		Body:   in,
	})
}

// Create creates an employee, expecting a 201.
func (c *EmployeeClient) Create(ctx context.Context, token string, in EmployeeCreate) (*Employee, error) {
	resp, err := c.CreateRaw(ctx, token, in)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, &ResourceOperationError{Op: "create employee", Status: resp.StatusCode}
	}

	var employee Employee
	if err := resp.Decode(&employee); err != nil {
		return nil, err
	}
	return &employee, nil
}

// GetByEmailRaw issues the read request and returns the raw response.
func (c *EmployeeClient) GetByEmailRaw(ctx context.Context, token, email string) (*dispatch.Response, error) {
	return c.d.Send(ctx, dispatch.Request{
		Method: dispatch.MethodGet,
		Path:   employeesPath + "/" + email,
		Header: bearerHeader(token),
	})
}

// GetByEmail reads an employee by email, expecting a 200.
func (c *EmployeeClient) GetByEmail(ctx context.Context, token, email string) (*Employee, error) {
	resp, err := c.GetByEmailRaw(ctx, token, email)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ResourceOperationError{Op: "get employee by email", Status: resp.StatusCode}
	}

	var employee Employee
	if err := resp.Decode(&employee); err != nil {
		return nil, err
	}
	return &employee, nil
}

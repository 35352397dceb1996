// Package resources implements the typed clients for the backend's REST
// resources. Each client holds a dispatcher and encodes one resource's
// operations; none of them hold entity state between calls.
package resources

import (
	"net/http"
	"time"
)

// Organization statuses as reported by the backend.
const (
	OrganizationStatusActive   = "active"
	OrganizationStatusDeleted  = "deleted"
	OrganizationStatusDisabled = "disabled"
)

// Organization is identified by a formatted id (FORG-####-####-####).
type Organization struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Currency             string    `json:"currency"`
	BillingCurrency      string    `json:"billing_currency,omitempty"`
	OperationsExternalID string    `json:"operations_external_id"`
	UserID               string    `json:"user_id,omitempty"`
	LinkedOrganizationID string    `json:"linked_organization_id,omitempty"`
	Status               string    `json:"status,omitempty"`
	CreatedAt            time.Time `json:"created_at,omitzero"`
	UpdatedAt            time.Time `json:"updated_at,omitzero"`
}

// OrganizationCreate is the request body for creating an organization. The
// owning user must exist before the organization is created.
type OrganizationCreate struct {
	Name                 string `json:"name"`
	Currency             string `json:"currency"`
	BillingCurrency      string `json:"billing_currency,omitempty"`
	OperationsExternalID string `json:"operations_external_id"`
	UserID               string `json:"user_id"`
}

// OrganizationUpdate carries the mutable organization fields. Nil fields
// are left untouched by the backend.
type OrganizationUpdate struct {
	Name                 *string `json:"name,omitempty"`
	OperationsExternalID *string `json:"operations_external_id,omitempty"`
}

// Employee is a member of an organization, identified by a UUID.
type Employee struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	RolesCount  int        `json:"roles_count,omitempty"`
}

// EmployeeCreate is the request body for creating an employee.
type EmployeeCreate struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Datasource types form a closed set; anything else is reported as unknown.
const (
	DatasourceTypeAWSCNR      = "aws_cnr"
	DatasourceTypeAzureCNR    = "azure_cnr"
	DatasourceTypeAzureTenant = "azure_tenant"
	DatasourceTypeGCPCNR      = "gcp_cnr"
	DatasourceTypeUnknown     = "unknown"
)

// Datasource belongs to an organization and is read-only apart from the
// force-reimport action.
type Datasource struct {
	ID                        string  `json:"id"`
	OrganizationID            string  `json:"organization_id"`
	Name                      string  `json:"name"`
	Type                      string  `json:"type"`
	ResourcesChangedThisMonth int     `json:"resources_changed_this_month"`
	ExpensesSoFarThisMonth    float64 `json:"expenses_so_far_this_month"`
	ExpensesForecastThisMonth float64 `json:"expenses_forecast_this_month"`
}

// User invitation statuses. Invitations move draft -> invited -> active;
// invitation-expired and deleted are terminal.
const (
	UserStatusDraft             = "draft"
	UserStatusInvited           = "invited"
	UserStatusActive            = "active"
	UserStatusInvitationExpired = "invitation-expired"
	UserStatusDeleted           = "deleted"
)

// Invitation is produced when a user is invited into an account.
type Invitation struct {
	UserID                   string     `json:"id"`
	Email                    string     `json:"email"`
	Name                     string     `json:"name,omitempty"`
	Status                   string     `json:"status"`
	InvitationToken          string     `json:"invitation_token"`
	InvitationTokenExpiresAt *time.Time `json:"invitation_token_expires_at,omitempty"`
}

// Page is the limit/offset pagination envelope used by list endpoints.
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func bearerHeader(token string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	return h
}

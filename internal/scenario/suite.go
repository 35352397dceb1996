package scenario

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	"github.com/finops-sre/opsprobe/internal/config"
	"github.com/finops-sre/opsprobe/internal/fixtures"
	"github.com/finops-sre/opsprobe/internal/resources"
)

var orgIDPattern = regexp.MustCompile(`^FORG-\d{4}-\d{4}-\d{4}$`)

// Suite returns the built-in end-to-end scenarios. The datasource scenario
// is included only when a pre-existing organization is configured, since
// datasources cannot be created through this client.
func Suite(cfg config.Config) []Scenario {
	suite := []Scenario{
		{Name: "employee-create", Run: employeeCreate},
		{Name: "organization-roundtrip", Run: organizationRoundTrip},
		{Name: "organization-admin", Run: organizationAdmin},
		{Name: "invitation-roundtrip", Run: invitationRoundTrip},
		{Name: "token-refresh", Run: tokenRefresh},
	}

	if cfg.OrgID != "" {
		suite = append(suite, Scenario{Name: "datasource-reimport", Run: datasourceReimport})
	}

	return suite
}

// Named returns the subset of the suite matching the given names, in suite
// order. Unknown names are an error so a typo in a config file is loud.
func Named(cfg config.Config, names []string) ([]Scenario, error) {
	if len(names) == 0 {
		return Suite(cfg), nil
	}

	byName := make(map[string]Scenario)
	for _, sc := range Suite(cfg) {
		byName[sc.Name] = sc
	}

	selected := make([]Scenario, 0, len(names))
	for _, name := range names {
		sc, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown scenario %q", name)
		}
		selected = append(selected, sc)
	}
	return selected, nil
}

// employeeCreate exercises POST /employees: the display name round-trips,
// a fresh employee has no roles, and the id is populated.
func employeeCreate(ctx context.Context, s *S) error {
	s.Phase(PhaseArrange)
	in := resources.EmployeeCreate{
		Email:       fixtures.Email(),
		DisplayName: fixtures.DisplayName(),
	}

	s.Phase(PhaseAct)
	resp, err := s.Clients.Employees.CreateRaw(ctx, s.Token, in)
	if err != nil {
		return err
	}

	s.Phase(PhaseAssert)
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("create employee: expected 201, got %d", resp.StatusCode)
	}

	var employee resources.Employee
	if err := resp.Decode(&employee); err != nil {
		return err
	}

	if employee.DisplayName != in.DisplayName {
		return fmt.Errorf("display name mismatch: sent %q, got %q", in.DisplayName, employee.DisplayName)
	}
	if employee.RolesCount != 0 {
		return fmt.Errorf("fresh employee has %d roles, expected none", employee.RolesCount)
	}
	if employee.ID == "" {
		return fmt.Errorf("employee id is empty")
	}

	return nil
}

// organizationRoundTrip drives create, read, rename, delete, and verifies
// operations on the deleted id fail. The owning employee must exist before
// the organization referencing it can be created.
func organizationRoundTrip(ctx context.Context, s *S) error {
	s.Phase(PhaseArrange)
	owner, err := s.Clients.Employees.Create(ctx, s.Token, resources.EmployeeCreate{
		Email:       fixtures.Email(),
		DisplayName: fixtures.DisplayName(),
	})
	if err != nil {
		return err
	}

	s.Phase(PhaseAct)
	name := fixtures.OrgName()
	org, err := s.Clients.Organizations.Create(ctx, s.Token, resources.OrganizationCreate{
		Name:                 name,
		Currency:             "USD",
		OperationsExternalID: fixtures.ExternalID(),
		UserID:               owner.ID,
	})
	if err != nil {
		return err
	}
	s.DeleteOrganizationOnCleanup(org.ID)

	s.Phase(PhaseAssert)
	if !orgIDPattern.MatchString(org.ID) {
		return fmt.Errorf("organization id %q does not match FORG-####-####-####", org.ID)
	}

	read, err := s.Clients.Organizations.Get(ctx, s.Token, org.ID)
	if err != nil {
		return err
	}
	if read.Name != name {
		return fmt.Errorf("name mismatch after create: sent %q, got %q", name, read.Name)
	}

	renamed := fixtures.OrgName()
	if _, err := s.Clients.Organizations.Update(ctx, s.Token, org.ID, resources.OrganizationUpdate{
		Name: &renamed,
	}); err != nil {
		return err
	}

	read, err = s.Clients.Organizations.Get(ctx, s.Token, org.ID)
	if err != nil {
		return err
	}
	if read.Name != renamed {
		return fmt.Errorf("name mismatch after update: sent %q, got %q", renamed, read.Name)
	}

	if err := s.Clients.Organizations.Delete(ctx, s.Token, org.ID); err != nil {
		return err
	}

	// The id must be gone; cleanup will observe the 404 and treat the
	// organization as already released.
	resp, err := s.Clients.Organizations.GetRaw(ctx, s.Token, org.ID)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("deleted organization still readable: status %d", resp.StatusCode)
	}

	return nil
}

// organizationAdmin verifies that after add-admin the organization has
// exactly two members: the owner and the added admin.
func organizationAdmin(ctx context.Context, s *S) error {
	s.Phase(PhaseArrange)
	owner, err := s.Clients.Employees.Create(ctx, s.Token, resources.EmployeeCreate{
		Email:       fixtures.Email(),
		DisplayName: fixtures.DisplayName(),
	})
	if err != nil {
		return err
	}

	org, err := s.Clients.Organizations.Create(ctx, s.Token, resources.OrganizationCreate{
		Name:                 fixtures.OrgName(),
		Currency:             "USD",
		OperationsExternalID: fixtures.ExternalID(),
		UserID:               owner.ID,
	})
	if err != nil {
		return err
	}
	s.DeleteOrganizationOnCleanup(org.ID)

	admin, err := s.Clients.Employees.Create(ctx, s.Token, resources.EmployeeCreate{
		Email:       fixtures.Email(),
		DisplayName: fixtures.DisplayName(),
	})
	if err != nil {
		return err
	}

	s.Phase(PhaseAct)
	if err := s.Clients.Organizations.AddAdmin(ctx, s.Token, org.ID, admin.Email); err != nil {
		return err
	}

	s.Phase(PhaseAssert)
	members, err := s.Clients.Organizations.Employees(ctx, s.Token, org.ID)
	if err != nil {
		return err
	}
	if len(members) != 2 {
		return fmt.Errorf("expected 2 members after add-admin, got %d", len(members))
	}

	found := false
	for _, member := range members {
		if member.Email == admin.Email {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("added admin %s not among members", admin.Email)
	}

	return nil
}

// invitationRoundTrip invites a user and accepts the invitation with the
// issued token; the resulting status must be active.
func invitationRoundTrip(ctx context.Context, s *S) error {
	s.Phase(PhaseArrange)
	email := fixtures.Email()

	s.Phase(PhaseAct)
	invitation, err := s.Clients.Users.Invite(ctx, s.Token, email, fixtures.DisplayName())
	if err != nil {
		return err
	}

	if invitation.InvitationToken == "" || invitation.UserID == "" {
		return fmt.Errorf("invitation missing token or user id")
	}

	accepted, err := s.Clients.Users.Accept(ctx, invitation.UserID, invitation.InvitationToken, fixtures.Password())
	if err != nil {
		return err
	}

	s.Phase(PhaseAssert)
	if accepted.Status != resources.UserStatusActive {
		return fmt.Errorf("expected status %q after accept, got %q", resources.UserStatusActive, accepted.Status)
	}

	return nil
}

// tokenRefresh exchanges a refresh token for a new access token and proves
// the result is usable by listing organizations with it.
func tokenRefresh(ctx context.Context, s *S) error {
	s.Phase(PhaseArrange)
	refreshToken, err := s.Clients.Auth.IssueRefreshToken(ctx, s.Config.Email, s.Config.Password, s.Config.AccountID)
	if err != nil {
		return err
	}

	s.Phase(PhaseAct)
	accessToken, err := s.Clients.Auth.RefreshAccessToken(ctx, refreshToken, s.Config.AccountID)
	if err != nil {
		return err
	}

	s.Phase(PhaseAssert)
	if accessToken == "" {
		return fmt.Errorf("refreshed access token is empty")
	}

	if _, err := s.Clients.Organizations.List(ctx, accessToken, 1, 0); err != nil {
		return fmt.Errorf("refreshed token not usable: %w", err)
	}

	return nil
}

// datasourceReimport finds a datasource by name on the configured
// organization and triggers a forced reimport. Datasources cannot be
// created here, so an organization without any is nothing to exercise.
func datasourceReimport(ctx context.Context, s *S) error {
	s.Phase(PhaseArrange)
	datasources, err := s.Clients.Datasources.List(ctx, s.Token, s.Config.OrgID)
	if err != nil {
		return err
	}
	if len(datasources) == 0 {
		s.Log.Info().Str("org_id", s.Config.OrgID).Msg("organization has no datasources, nothing to reimport")
		return nil
	}

	for _, ds := range datasources {
		if err := validateDatasource(ds); err != nil {
			return err
		}
	}

	s.Phase(PhaseAct)
	target, err := s.Clients.Datasources.FindByName(ctx, s.Token, s.Config.OrgID, datasources[0].Name)
	if err != nil {
		return err
	}

	s.Phase(PhaseAssert)
	return s.Clients.Datasources.ForceReimport(ctx, s.Token, s.Config.OrgID, target.ID)
}

func validateDatasource(ds resources.Datasource) error {
	switch ds.Type {
	case resources.DatasourceTypeAWSCNR,
		resources.DatasourceTypeAzureCNR,
		resources.DatasourceTypeAzureTenant,
		resources.DatasourceTypeGCPCNR,
		resources.DatasourceTypeUnknown:
	default:
		return fmt.Errorf("datasource %s has type %q outside the known set", ds.ID, ds.Type)
	}

	if ds.ResourcesChangedThisMonth < 0 || ds.ExpensesSoFarThisMonth < 0 || ds.ExpensesForecastThisMonth < 0 {
		return fmt.Errorf("datasource %s reports negative monthly figures", ds.ID)
	}

	return nil
}

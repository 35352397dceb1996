package commands

import (
	"context"
	"fmt"

	"github.com/finops-sre/opsprobe/internal/fixtures"
	"github.com/finops-sre/opsprobe/internal/resources"
)

type OrgCmd struct {
	Create OrgCreateCmd `cmd:"" help:"Create an organization"`
	Get    OrgGetCmd    `cmd:"" help:"Read an organization by id"`
	List   OrgListCmd   `cmd:"" help:"List organizations"`
	Delete OrgDeleteCmd `cmd:"" help:"Delete an organization"`
}

type OrgCreateCmd struct {
	ConnectionFlags
	Name       string `arg:"" help:"Organization name"`
	OwnerID    string `help:"Owning user id" required:""`
	Currency   string `help:"Organization currency" default:"USD"`
	ExternalID string `help:"Operations external id; random when omitted"`
}

func (o *OrgCreateCmd) Run(ctx context.Context, globals *Globals) error {
	cfg := o.buildConfig(globals)
	if err := cfg.Validate(); err != nil {
		return err
	}

	clients := newClients(cfg)

	token, err := clients.Auth.IssueTokenForAccount(ctx, cfg.Email, cfg.Password, cfg.AccountID)
	if err != nil {
		return err
	}

	externalID := o.ExternalID
	if externalID == "" {
		externalID = fixtures.ExternalID()
	}

	org, err := clients.Organizations.Create(ctx, token, resources.OrganizationCreate{
		Name:                 o.Name,
		Currency:             o.Currency,
		OperationsExternalID: externalID,
		UserID:               o.OwnerID,
	})
	if err != nil {
		return err
	}

	fmt.Println(org.ID)
	return nil
}

type OrgGetCmd struct {
	ConnectionFlags
	ID string `arg:"" help:"Organization id"`
}

func (o *OrgGetCmd) Run(ctx context.Context, globals *Globals) error {
	cfg := o.buildConfig(globals)
	if err := cfg.Validate(); err != nil {
		return err
	}

	clients := newClients(cfg)

	token, err := clients.Auth.IssueTokenForAccount(ctx, cfg.Email, cfg.Password, cfg.AccountID)
	if err != nil {
		return err
	}

	org, err := clients.Organizations.Get(ctx, token, o.ID)
	if err != nil {
		return err
	}

	fmt.Printf("%s  %s  %s  %s\n", org.ID, org.Name, org.Currency, org.Status)
	return nil
}

type OrgListCmd struct {
	ConnectionFlags
	Limit  int `help:"Page size" default:"50"`
	Offset int `help:"Page offset" default:"0"`
}

func (o *OrgListCmd) Run(ctx context.Context, globals *Globals) error {
	cfg := o.buildConfig(globals)
	if err := cfg.Validate(); err != nil {
		return err
	}

	clients := newClients(cfg)

	token, err := clients.Auth.IssueTokenForAccount(ctx, cfg.Email, cfg.Password, cfg.AccountID)
	if err != nil {
		return err
	}

	page, err := clients.Organizations.List(ctx, token, o.Limit, o.Offset)
	if err != nil {
		return err
	}

	for _, org := range page.Items {
		fmt.Printf("%s  %s\n", org.ID, org.Name)
	}
	fmt.Printf("%d of %d organizations\n", len(page.Items), page.Total)
	return nil
}

type OrgDeleteCmd struct {
	ConnectionFlags
	ID string `arg:"" help:"Organization id"`
}

func (o *OrgDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	cfg := o.buildConfig(globals)
	if err := cfg.Validate(); err != nil {
		return err
	}

	clients := newClients(cfg)

	token, err := clients.Auth.IssueTokenForAccount(ctx, cfg.Email, cfg.Password, cfg.AccountID)
	if err != nil {
		return err
	}

	if err := clients.Organizations.Delete(ctx, token, o.ID); err != nil {
		return err
	}

	fmt.Printf("Organization %s deleted\n", o.ID)
	return nil
}

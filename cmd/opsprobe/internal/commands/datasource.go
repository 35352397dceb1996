package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/finops-sre/opsprobe/internal/client"
)

type DatasourceCmd struct {
	List     DatasourceListCmd     `cmd:"" help:"List an organization's datasources"`
	Reimport DatasourceReimportCmd `cmd:"" help:"Force a reimport of a datasource's billing data"`
}

type DatasourceListCmd struct {
	ConnectionFlags
	OrgID   string `arg:"" help:"Organization id"`
	Caching bool   `help:"Cache the listing response when the backend allows it"`
}

func (d *DatasourceListCmd) Run(ctx context.Context, globals *Globals) error {
	cfg := d.buildConfig(globals)
	if err := cfg.Validate(); err != nil {
		return err
	}

	clients := client.New(client.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Logger:  log.Logger,
		Caching: d.Caching,
	})

	token, err := clients.Auth.IssueTokenForAccount(ctx, cfg.Email, cfg.Password, cfg.AccountID)
	if err != nil {
		return err
	}

	datasources, err := clients.Datasources.List(ctx, token, d.OrgID)
	if err != nil {
		return err
	}

	for _, ds := range datasources {
		fmt.Printf("%s  %-12s  %-24s  %9.2f so far  %9.2f forecast\n",
			ds.ID, ds.Type, ds.Name, ds.ExpensesSoFarThisMonth, ds.ExpensesForecastThisMonth)
	}
	return nil
}

type DatasourceReimportCmd struct {
	ConnectionFlags
	OrgID string `arg:"" help:"Organization id"`
	Name  string `arg:"" help:"Datasource name"`
}

func (d *DatasourceReimportCmd) Run(ctx context.Context, globals *Globals) error {
	cfg := d.buildConfig(globals)
	if err := cfg.Validate(); err != nil {
		return err
	}

	clients := newClients(cfg)

	token, err := clients.Auth.IssueTokenForAccount(ctx, cfg.Email, cfg.Password, cfg.AccountID)
	if err != nil {
		return err
	}

	ds, err := clients.Datasources.FindByName(ctx, token, d.OrgID, d.Name)
	if err != nil {
		return err
	}

	if err := clients.Datasources.ForceReimport(ctx, token, d.OrgID, ds.ID); err != nil {
		return err
	}

	fmt.Printf("Reimport triggered for datasource %s (%s)\n", ds.Name, ds.ID)
	return nil
}

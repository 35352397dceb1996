package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/finops-sre/opsprobe/cmd/opsprobe/internal/commands"
	"github.com/finops-sre/opsprobe/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		Run        commands.RunCmd        `cmd:"" help:"Run the end-to-end scenario suite"`
		Token      commands.TokenCmd      `cmd:"" help:"Issue, refresh, or inspect access tokens"`
		Org        commands.OrgCmd        `cmd:"" help:"Ad-hoc organization operations"`
		Datasource commands.DatasourceCmd `cmd:"" help:"Datasource listing and reimport"`
		Debug      bool                   `help:"Enable debug mode."`
		Version    kong.VersionFlag
	}
)

func main() {
	// Local development keeps credentials in a .env file; absence is fine.
	_ = godotenv.Load()

	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	logger.Setup(cli.Debug)

	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/soodoh/openfit/internal/config"
	"github.com/soodoh/openfit/internal/db"
	"github.com/soodoh/openfit/pkg/client"
)

type globalFlags struct {
	env        string
	configPath string
	apiURL     string
	token      string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "openfitctl",
		Short:         "openfitctl administers an OpenFit deployment",
		Long:          "openfitctl runs migrations, seeds the exercise catalog, manages users and talks to a running OpenFit API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.env, "env", "development", "environment [prod | production | dev | development]")
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "./config.toml", "path for the TOML config file")
	cmd.PersistentFlags().StringVar(&flags.apiURL, "api", "http://localhost:9000", "base url of the OpenFit API")
	cmd.PersistentFlags().StringVar(&flags.token, "token", "", "session token, defaults to $OPENFIT_TOKEN")

	cmd.AddCommand(newMigrateCmd(flags))
	cmd.AddCommand(newCatalogCmd(flags))
	cmd.AddCommand(newUserCmd(flags))
	cmd.AddCommand(newDashboardCmd(flags))
	cmd.AddCommand(newSessionCmd(flags))
	cmd.AddCommand(newSearchCmd(flags))
	return cmd
}

func (f *globalFlags) loadConfig() (*config.Config, error) {
	return config.Load(f.env, f.configPath)
}

func poolParams(cfg *config.Config) db.NewDBPoolParams {
	return db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: cfg.PostgresPassword,
		MaxConns:   cfg.PostgresMaxCon,
	}
}

func (f *globalFlags) client(getenv func(string) string) *client.Client {
	token := f.token
	if token == "" {
		token = getenv("OPENFIT_TOKEN")
	}
	return client.New(f.apiURL, client.WithToken(token))
}

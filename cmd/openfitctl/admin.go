package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/soodoh/openfit/internal/auth"
	"github.com/soodoh/openfit/internal/catalog"
	"github.com/soodoh/openfit/internal/db"
)

func newMigrateCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if err := db.MigrateUp(poolParams(cfg).ConnString()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			if err := db.MigrateDown(poolParams(cfg).ConnString(), steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)
	return cmd
}

func newCatalogCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the exercise catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Insert lookups and exercises from a seed file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			seed, err := catalog.ParseSeed(f)
			if err != nil {
				return err
			}

			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			pool, err := db.NewDBPool(cmd.Context(), poolParams(cfg))
			if err != nil {
				return err
			}
			defer pool.Close()

			stats, err := catalog.NewService(catalog.NewRepo(pool)).Seed(cmd.Context(), seed)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d lookups, %d exercises\n", stats.Lookups, stats.Exercises)
			return nil
		},
	})
	return cmd
}

func newUserCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var admin bool
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an account, the password is read from $OPENFIT_PASSWORD",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("OPENFIT_PASSWORD")
			if password == "" {
				return fmt.Errorf("OPENFIT_PASSWORD is not set")
			}
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			pool, err := db.NewDBPool(cmd.Context(), poolParams(cfg))
			if err != nil {
				return err
			}
			defer pool.Close()

			ttl := time.Duration(cfg.SessionTTLHours) * time.Hour
			service := auth.NewService(auth.NewUsersRepo(pool), ttl, nil)
			user, err := service.Register(cmd.Context(), auth.Credentials{Username: args[0], Password: password}, admin, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s), admin: %t\n", user.Username, user.ID, user.Admin)
			return nil
		},
	}
	add.Flags().BoolVar(&admin, "admin", false, "grant catalog administration")
	cmd.AddCommand(add)
	return cmd
}

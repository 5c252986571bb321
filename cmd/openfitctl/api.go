package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/soodoh/openfit/internal/search"
)

func newDashboardCmd(flags *globalFlags) *cobra.Command {
	var tz string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the workout summary of the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := flags.client(os.Getenv).Dashboard(cmd.Context(), tz)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sessions:       %d\n", summary.TotalSessions)
			fmt.Fprintf(out, "this week:      %d\n", summary.ThisWeekSessions)
			fmt.Fprintf(out, "routines:       %d\n", summary.TotalRoutines)
			fmt.Fprintf(out, "current streak: %d\n", summary.CurrentStreak)
			return nil
		},
	}
	cmd.Flags().StringVar(&tz, "tz", "", "IANA time zone for week and day boundaries (default UTC)")
	return cmd
}

func newSessionCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and finish workout sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "current",
		Short: "Show the active session",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := flags.client(os.Getenv).CurrentSession(cmd.Context())
			if err != nil {
				return err
			}
			if session == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no active session")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\tstarted %s\n", session.ID, session.Name, session.StartTime.Format("2006-01-02 15:04"))
			for _, g := range session.SetGroups {
				done := 0
				for _, s := range g.Sets {
					if s.Completed {
						done++
					}
				}
				fmt.Fprintf(w, "  %d\t%s\t%d/%d sets\n", g.Order+1, g.Type, done, len(g.Sets))
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "finish [session-id]",
		Short: "Finish a session, the active one when no id is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := flags.client(os.Getenv)
			var id uuid.UUID
			if len(args) == 1 {
				parsed, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid session id: %w", err)
				}
				id = parsed
			} else {
				current, err := c.CurrentSession(cmd.Context())
				if err != nil {
					return err
				}
				if current == nil {
					return fmt.Errorf("no active session")
				}
				id = current.ID
			}

			session, err := c.FinishSession(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "finished session %s at %s\n", session.ID, session.EndTime.Format("2006-01-02 15:04"))
			return nil
		},
	})
	return cmd
}

func newSearchCmd(flags *globalFlags) *cobra.Command {
	var (
		gym   string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search exercises, optionally limited to a gym's equipment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var f search.Filter
			if len(args) == 1 {
				f.Query = args[0]
			}
			switch gym {
			case "":
			case "default":
				f.DefaultGym = true
			default:
				id, err := uuid.Parse(gym)
				if err != nil {
					return fmt.Errorf("invalid gym id: %w", err)
				}
				f.GymID = &id
			}

			page, err := flags.client(os.Getenv).SearchExercises(cmd.Context(), f, "", limit)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range page.Page {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Name, e.Level)
			}
			if !page.IsDone {
				fmt.Fprintln(w, "...")
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&gym, "gym", "", "gym id, or \"default\" for the default gym")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum results")
	return cmd
}

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Server status and session summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := c.client().Status()
			if err != nil {
				return fmt.Errorf("status check failed: %w", err)
			}
			out := cmd.OutOrStdout()
			if c.jsonOutput {
				return printJSON(out, status)
			}
			printStatus(out, c.serverURL, status)
			return nil
		},
	}
}

func newEventsCmd(c *cli) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent session events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := c.client().Events(limit, offset)
			if err != nil {
				return fmt.Errorf("events: %w", err)
			}
			out := cmd.OutOrStdout()
			if c.jsonOutput {
				return printJSON(out, resp)
			}
			if len(resp.Items) == 0 {
				fmt.Fprintln(out, "No events.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tENTITY\tAT\tSUMMARY")
			for _, e := range resp.Items {
				fmt.Fprintf(tw, "%d\t%s\t%s:%d\t%s\t%s\n", e.ID, e.EventType, e.EntityType, e.EntityID, e.OccurredAt, e.Summary)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\nShowing %d of %d\n", len(resp.Items), resp.Total)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of events")
	cmd.Flags().IntVar(&offset, "offset", 0, "Events to skip")
	return cmd
}

func printStatus(w io.Writer, server string, s *StatusResponse) {
	fmt.Fprintf(w, "cinelist %s  %s  %s\n", s.Version, server, s.Status)
	fmt.Fprintf(w, "  Uptime:          %s\n", s.Uptime)
	fmt.Fprintf(w, "  Favorites:       %d\n", s.Stats.Favorites)
	fmt.Fprintf(w, "  Must-watch:      %d\n", s.Stats.MustWatch)
	fmt.Fprintf(w, "  Session reviews: %d\n", s.Stats.SessionReviews)
	fmt.Fprintf(w, "  Cached queries:  %d\n", s.Stats.CachedQueries)
}

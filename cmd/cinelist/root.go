package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

// cli carries the persistent flags shared by every command.
type cli struct {
	serverURL  string
	jsonOutput bool
}

func (c *cli) client() *Client { return NewClient(c.serverURL) }

// newRootCmd builds the full command tree.
func newRootCmd() *cobra.Command {
	c := &cli{}
	rootCmd := &cobra.Command{
		Use:   "cinelist",
		Short: "CLI client for cinelist",
		Long: `cinelist - browse movies, keep favorites and a must-watch list, write reviews

Lists live for as long as the server runs.

Run 'cinelistd' to start the server daemon.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&c.serverURL, "server", "http://localhost:8585", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "Output as JSON")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("cinelist {{.Version}}\n")

	rootCmd.AddCommand(
		newMovieListCmd(c, "popular", "Show popular movies"),
		newMovieListCmd(c, "upcoming", "Show upcoming movies"),
		newMovieCmd(c),
		newGenresCmd(c),
		newListCmd(c, "favorites", "Manage favorite movies"),
		newListCmd(c, "mustwatch", "Manage the must-watch list"),
		newReviewsCmd(c),
		newReviewCmd(c),
		newStatusCmd(c),
		newEventsCmd(c),
		newConfigCmd(),
	)
	return rootCmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newMovieListCmd(c *cli, name, short string) *cobra.Command {
	var f ListFilter
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Long: short + `.

Examples:
  cinelist ` + name + `
  cinelist ` + name + ` --page 2
  cinelist ` + name + ` --title matrix --genre 878`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fetch := c.client().Popular
			if name == "upcoming" {
				fetch = c.client().Upcoming
			}
			list, err := fetch(f)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			out := cmd.OutOrStdout()
			if c.jsonOutput {
				return printJSON(out, list)
			}
			fmt.Fprintf(out, "%s (page %d of %d)\n\n", list.Title, list.Page, list.TotalPages)
			printMovies(out, list.Movies)
			return nil
		},
	}
	cmd.Flags().IntVar(&f.Page, "page", 1, "Page number")
	cmd.Flags().StringVar(&f.Title, "title", "", "Only movies whose title matches")
	cmd.Flags().IntVar(&f.Genre, "genre", 0, "Only movies with this genre id")
	return cmd
}

func newMovieCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "movie <id>",
		Short: "Show movie details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			m, err := c.client().Movie(id)
			if err != nil {
				return fmt.Errorf("movie %d: %w", id, err)
			}
			out := cmd.OutOrStdout()
			if c.jsonOutput {
				return printJSON(out, m)
			}
			printMovie(out, m)
			return nil
		},
	}
}

func newGenresCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List genre ids for --genre",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			genres, err := c.client().Genres()
			if err != nil {
				return fmt.Errorf("genres: %w", err)
			}
			out := cmd.OutOrStdout()
			if c.jsonOutput {
				return printJSON(out, genres)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, g := range genres {
				fmt.Fprintf(tw, "%d\t%s\n", g.ID, g.Name)
			}
			return tw.Flush()
		},
	}
}

func parseMovieID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid movie ID: %s", s)
	}
	return id, nil
}

func printMovies(w io.Writer, movies []Movie) {
	if len(movies) == 0 {
		fmt.Fprintln(w, "No movies.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tYEAR\tRATING\tLISTS")
	for _, m := range movies {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", m.ID, m.Title, movieYear(m.ReleaseDate), formatRating(m.VoteAverage), badges(m))
	}
	_ = tw.Flush()
}

func printMovie(w io.Writer, m *Movie) {
	fmt.Fprintf(w, "%s (%s)\n", m.Title, movieYear(m.ReleaseDate))
	if m.Tagline != "" {
		fmt.Fprintf(w, "  %s\n", m.Tagline)
	}
	fmt.Fprintf(w, "  Rating:   %s (%d votes)\n", formatRating(m.VoteAverage), m.VoteCount)
	if m.Runtime > 0 {
		fmt.Fprintf(w, "  Runtime:  %d min\n", m.Runtime)
	}
	if len(m.Genres) > 0 {
		names := make([]string, len(m.Genres))
		for i, g := range m.Genres {
			names[i] = g.Name
		}
		fmt.Fprintf(w, "  Genres:   %s\n", strings.Join(names, ", "))
	}
	if b := badges(*m); b != "" {
		fmt.Fprintf(w, "  Lists:    %s\n", b)
	}
	if m.Overview != "" {
		fmt.Fprintf(w, "\n%s\n", m.Overview)
	}
}

// movieYear returns the year part of a TMDB release date, or "-".
func movieYear(date string) string {
	if len(date) < 4 {
		return "-"
	}
	if _, err := strconv.Atoi(date[:4]); err != nil {
		return "-"
	}
	return date[:4]
}

func formatRating(v float64) string {
	if v <= 0 {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func badges(m Movie) string {
	var b []string
	if m.Favorite {
		b = append(b, "favorite")
	}
	if m.MustWatch {
		b = append(b, "must-watch")
	}
	return strings.Join(b, ",")
}

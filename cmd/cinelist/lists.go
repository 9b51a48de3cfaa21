package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// newListCmd builds the command group for one list ("favorites" or "mustwatch").
func newListCmd(c *cli, list, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   list,
		Short: short,
		Long: short + `.

Without a subcommand, shows the list.

Examples:
  cinelist ` + list + `
  cinelist ` + list + ` add 27205
  cinelist ` + list + ` remove 27205`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showList(c, cmd.OutOrStdout(), list)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show the movies on the list",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return showList(c, cmd.OutOrStdout(), list)
			},
		},
		&cobra.Command{
			Use:   "add <id>",
			Short: "Add a movie to the list",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return changeList(c, cmd.OutOrStdout(), list, args[0], true)
			},
		},
		&cobra.Command{
			Use:     "remove <id>",
			Aliases: []string{"rm"},
			Short:   "Remove a movie from the list",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return changeList(c, cmd.OutOrStdout(), list, args[0], false)
			},
		},
	)
	return cmd
}

func showList(c *cli, out io.Writer, list string) error {
	resp, err := c.client().List(list)
	if err != nil {
		return fmt.Errorf("%s: %w", list, err)
	}
	if c.jsonOutput {
		return printJSON(out, resp)
	}
	printMovies(out, resp.Items)
	return nil
}

func changeList(c *cli, out io.Writer, list, arg string, add bool) error {
	id, err := parseMovieID(arg)
	if err != nil {
		return err
	}

	client := c.client()
	op := client.RemoveFromList
	if add {
		op = client.AddToList
	}
	resp, err := op(list, id)
	if err != nil {
		return fmt.Errorf("%s: %w", list, err)
	}
	if c.jsonOutput {
		return printJSON(out, resp)
	}
	fmt.Fprintln(out, membershipMessage(resp, add))
	return nil
}

func membershipMessage(resp *MembershipResponse, add bool) string {
	switch {
	case add && resp.Changed:
		return fmt.Sprintf("Added %d to %s (%d total)", resp.MovieID, resp.List, len(resp.IDs))
	case add:
		return fmt.Sprintf("%d is already on %s", resp.MovieID, resp.List)
	case resp.Changed:
		return fmt.Sprintf("Removed %d from %s (%d total)", resp.MovieID, resp.List, len(resp.IDs))
	default:
		return fmt.Sprintf("%d is not on %s", resp.MovieID, resp.List)
	}
}

package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newReviewsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reviews <movie-id>",
		Short: "Show reviews of a movie, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			resp, err := c.client().Reviews(id)
			if err != nil {
				return fmt.Errorf("reviews: %w", err)
			}
			out := cmd.OutOrStdout()
			if c.jsonOutput {
				return printJSON(out, resp)
			}
			printReviews(out, resp)
			return nil
		},
	}
}

func newReviewCmd(c *cli) *cobra.Command {
	var req ReviewRequest
	cmd := &cobra.Command{
		Use:   "review <movie-id>",
		Short: "Write a review",
		Long: `Write a review of a movie.

The rating is between 0.5 and 10 in steps of 0.5.

Examples:
  cinelist review 27205 --author alice --rating 9.5 --content "Dreams within dreams."`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseMovieID(args[0])
			if err != nil {
				return err
			}
			review, err := c.client().SubmitReview(id, req)
			if err != nil {
				var apiErr *APIError
				if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
					printFieldErrors(cmd.ErrOrStderr(), apiErr.Fields)
				}
				return fmt.Errorf("review: %w", err)
			}
			out := cmd.OutOrStdout()
			if c.jsonOutput {
				return printJSON(out, review)
			}
			fmt.Fprintf(out, "Review %s saved for movie %d\n", review.ID, review.MovieID)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Author, "author", "", "Review author")
	cmd.Flags().StringVar(&req.Content, "content", "", "Review text")
	cmd.Flags().Float64Var(&req.Rating, "rating", 0, "Rating from 0.5 to 10")
	return cmd
}

func printReviews(w io.Writer, r *ReviewsResponse) {
	if len(r.Reviews) == 0 {
		fmt.Fprintln(w, "No reviews yet.")
		return
	}
	fmt.Fprintf(w, "%d reviews (%d from this session)\n", len(r.Reviews), r.Session)
	for _, rev := range r.Reviews {
		fmt.Fprintf(w, "\n%s  %s  %s\n", rev.Author, formatRating(rev.Rating), rev.CreatedAt.Format("2006-01-02"))
		fmt.Fprintf(w, "  %s\n", indent(rev.Content))
	}
}

func printFieldErrors(w io.Writer, fields map[string]string) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  - %s\n", fields[name])
	}
}

func indent(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n  ")
}

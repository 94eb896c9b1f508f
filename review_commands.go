package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"movieweb/services"
	"movieweb/shared/format"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "review",
		Aliases: []string{"reviews"},
		Short:   "Write and manage reviews",
	}
	cmd.AddCommand(newReviewAddCommand(ctx))
	cmd.AddCommand(newReviewUpdateCommand(ctx))
	cmd.AddCommand(newReviewDeleteCommand(ctx))
	cmd.AddCommand(newReviewListCommand(ctx))
	return cmd
}

func newReviewAddCommand(ctx *commandContext) *cobra.Command {
	var in services.ReviewInput

	cmd := &cobra.Command{
		Use:   "add <movie-id>",
		Short: "Review a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			movieID, err := parseID(args[0], "movie")
			if err != nil {
				return err
			}
			user, err := ctx.actingUser(cmd.Context())
			if err != nil {
				return err
			}
			reviews, err := ctx.reviewService(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := reviews.AddReview(cmd.Context(), user, movieID, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "New Review by %s created!\n", user.Username)
			return nil
		},
	}
	cmd.Flags().IntVarP(&in.Rating, "rating", "r", 0, "Rating from 1 to 10")
	cmd.Flags().StringVar(&in.Text, "text", "", "Review text")
	_ = cmd.MarkFlagRequired("rating")
	return cmd
}

func newReviewUpdateCommand(ctx *commandContext) *cobra.Command {
	var rating int
	var text string

	cmd := &cobra.Command{
		Use:   "update <review-id>",
		Short: "Edit your review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reviewID, err := parseID(args[0], "review")
			if err != nil {
				return err
			}
			var upd services.ReviewUpdate
			if cmd.Flags().Changed("rating") {
				upd.Rating = &rating
			}
			if cmd.Flags().Changed("text") {
				upd.Text = &text
			}
			if upd.Rating == nil && upd.Text == nil {
				return fmt.Errorf("nothing to update, pass --rating or --text")
			}

			user, err := ctx.actingUser(cmd.Context())
			if err != nil {
				return err
			}
			reviews, err := ctx.reviewService(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := reviews.UpdateReview(cmd.Context(), user, reviewID, upd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Review by %s updated!\n", user.Username)
			return nil
		},
	}
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "New rating from 1 to 10")
	cmd.Flags().StringVar(&text, "text", "", "New review text (empty clears it)")
	return cmd
}

func newReviewDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <review-id>",
		Short: "Delete your review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reviewID, err := parseID(args[0], "review")
			if err != nil {
				return err
			}
			user, err := ctx.actingUser(cmd.Context())
			if err != nil {
				return err
			}
			reviews, err := ctx.reviewService(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := reviews.DeleteReview(cmd.Context(), user, reviewID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted Review from %s!\n", user.Username)
			return nil
		},
	}
}

func newReviewListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <movie-id>",
		Short: "List the reviews of a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			movieID, err := parseID(args[0], "movie")
			if err != nil {
				return err
			}
			reviews, err := ctx.reviewService(cmd.Context())
			if err != nil {
				return err
			}
			list, err := reviews.ReviewsForMovie(cmd.Context(), movieID)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No reviews yet")
				return nil
			}

			rows := make([][]string, 0, len(list))
			for _, r := range list {
				when := r.Created.Format("2006-01-02")
				if r.Updated != nil {
					when += " (edited " + r.Updated.Format("2006-01-02") + ")"
				}
				rows = append(rows, []string{
					fmt.Sprint(r.ID),
					r.Username,
					fmt.Sprintf("%d/10", r.Rating),
					when,
					format.Preview(r.Body(), 60),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "User", "Rating", "Date", "Review"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

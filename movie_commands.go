package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"movieweb/models"
	"movieweb/services"
	"movieweb/shared/format"
)

func newMovieCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "movie",
		Aliases: []string{"movies"},
		Short:   "Manage movies and libraries",
	}
	cmd.AddCommand(newMovieAddCommand(ctx))
	cmd.AddCommand(newMovieListCommand(ctx))
	cmd.AddCommand(newMovieShowCommand(ctx))
	cmd.AddCommand(newMovieRefreshCommand(ctx))
	cmd.AddCommand(newMovieUpdateCommand(ctx))
	cmd.AddCommand(newMovieRemoveCommand(ctx))
	cmd.AddCommand(newMovieDeleteCommand(ctx))
	return cmd
}

func newMovieAddCommand(ctx *commandContext) *cobra.Command {
	var query services.MovieQuery

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Fetch a movie from OMDb and add it to your library",
		Example: `  movieweb movie add --user alice --title "The Dark Knight" --year 2008
  movieweb movie add --user alice --imdb-id tt0468569`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := ctx.actingUser(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := ctx.reconciler(cmd.Context(), true)
			if err != nil {
				return err
			}
			movie, err := rec.AddMovie(cmd.Context(), user, query)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Movie %s added!\n", movie.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&query.Title, "title", "t", "", "Movie title")
	cmd.Flags().IntVarP(&query.Year, "year", "y", 0, "Release year")
	cmd.Flags().StringVarP(&query.IMDbID, "imdb-id", "i", "", "IMDb id, e.g. tt0468569")
	return cmd
}

func newMovieListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your library, or every movie when --user is not set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := ctx.reconciler(cmd.Context(), false)
			if err != nil {
				return err
			}
			user, err := ctx.optionalUser(cmd.Context())
			if err != nil {
				return err
			}

			var movies []models.Movie
			if user != nil {
				movies, err = rec.Library(cmd.Context(), user)
			} else {
				movies, err = rec.Movies(cmd.Context())
			}
			if err != nil {
				return err
			}

			if len(movies) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No movies yet")
				return nil
			}
			rows := make([][]string, 0, len(movies))
			for _, m := range movies {
				rows = append(rows, []string{
					fmt.Sprint(m.ID),
					m.Title,
					formatYear(m.Year),
					services.CalculateIMDbStars(m.IMDbRating).String(),
					m.IMDbID,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Year", "IMDb", "IMDb ID"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newMovieShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <movie-id>",
		Short: "Show a movie with your review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "movie")
			if err != nil {
				return err
			}
			rec, err := ctx.reconciler(cmd.Context(), false)
			if err != nil {
				return err
			}
			user, err := ctx.optionalUser(cmd.Context())
			if err != nil {
				return err
			}
			details, err := rec.MovieDetails(cmd.Context(), user, id)
			if err != nil {
				return err
			}
			printMovieDetails(cmd.OutOrStdout(), details)
			return nil
		},
	}
}

func printMovieDetails(w io.Writer, d *services.MovieDetails) {
	m := d.Movie
	pairs := [][2]string{
		{"Title", m.Title},
		{"Year", formatYear(m.Year)},
		{"Genre", strings.Join(d.Genres, " · ")},
		{"IMDb", fmt.Sprintf("%s %s", d.Stars, formatRating(m.IMDbRating))},
		{"Director", m.Director},
		{"Writer", m.Writer},
		{"Stars", m.Stars},
		{"Plot", m.Plot},
		{"Poster", m.PosterURL},
		{"IMDb ID", m.IMDbID},
	}
	if r := d.UserReview; r != nil {
		pairs = append(pairs, [2]string{"Your review", fmt.Sprintf("%d/10 %s", r.Rating, format.Preview(r.Body(), 200))})
	}
	fmt.Fprintln(w, renderDetails(pairs))
}

func newMovieRefreshCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <movie-id>",
		Short: "Re-fetch a movie's metadata from OMDb",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "movie")
			if err != nil {
				return err
			}
			rec, err := ctx.reconciler(cmd.Context(), true)
			if err != nil {
				return err
			}
			movie, err := rec.RefreshMovie(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Movie %s refreshed!\n", movie.Title)
			return nil
		},
	}
}

func newMovieUpdateCommand(ctx *commandContext) *cobra.Command {
	var assignments []string

	cmd := &cobra.Command{
		Use:     "update <movie-id>",
		Short:   "Edit a movie's attributes",
		Example: `  movieweb movie update 3 --set title="The Dark Knight" --set imdb_rating=9.1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "movie")
			if err != nil {
				return err
			}
			changes, err := parseAssignments(assignments)
			if err != nil {
				return err
			}
			rec, err := ctx.reconciler(cmd.Context(), false)
			if err != nil {
				return err
			}
			details, err := rec.MovieDetails(cmd.Context(), nil, id)
			if err != nil {
				return err
			}

			// start from the stored values, like a prefilled edit form
			fields := services.MovieFields(details.Movie)
			for key, value := range changes {
				fields[key] = value
			}
			movie, err := rec.UpdateMovie(cmd.Context(), id, fields)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Movie %s updated!\n", movie.Title)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&assignments, "set", nil, "Attribute to change as key=value (repeatable)")
	return cmd
}

func newMovieRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <movie-id>",
		Short: "Remove a movie from your library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "movie")
			if err != nil {
				return err
			}
			user, err := ctx.actingUser(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := ctx.reconciler(cmd.Context(), false)
			if err != nil {
				return err
			}
			movie, err := rec.RemoveFromLibrary(cmd.Context(), user, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s deleted!\n", movie.Title)
			return nil
		},
	}
}

func newMovieDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <movie-id>",
		Short: "Delete a movie for everyone, with its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "movie")
			if err != nil {
				return err
			}
			rec, err := ctx.reconciler(cmd.Context(), false)
			if err != nil {
				return err
			}
			movie, err := rec.DeleteMovie(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s removed from the catalog\n", movie.Title)
			return nil
		},
	}
}

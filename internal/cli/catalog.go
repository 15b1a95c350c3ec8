package cli

import (
	"fmt"
	"io"

	"composite-client/internal/domain/model"

	"github.com/spf13/cobra"
)

func moviesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movies",
		Short: "Browse the movie catalog",
	}

	var page, size int
	list := &cobra.Command{
		Use:   "list",
		Short: "List movies page by page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			pg, err := app.Catalog.Movies(cmd.Context(), page, size)
			if err != nil {
				return err
			}
			return e.printer(cmd).emit(viewPage(pg), func(w io.Writer) { printMovies(w, pg) })
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().IntVar(&size, "page-size", 0, "items per page (default from config)")

	show := &cobra.Command{
		Use:   "show <movie-id>",
		Short: "Show a single movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			m, err := app.Catalog.Movie(cmd.Context(), model.ID(args[0]))
			if err != nil {
				return err
			}
			return e.printer(cmd).emit(m, func(w io.Writer) { printMovie(w, m) })
		},
	}

	details := &cobra.Command{
		Use:   "details <movie-id>",
		Short: "Show a movie with its cast, crew and reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			d, err := app.Catalog.MovieDetails(cmd.Context(), model.ID(args[0]))
			if err != nil {
				return err
			}
			return e.printer(cmd).emit(d, func(w io.Writer) { printDetails(w, d) })
		},
	}

	cmd.AddCommand(list, show, details)
	return cmd
}

func reviewsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Read, write and delete reviews",
	}

	var page, size int
	list := &cobra.Command{
		Use:   "list",
		Short: "List reviews page by page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			pg, err := app.Catalog.Reviews(cmd.Context(), page, size)
			if err != nil {
				return err
			}
			return e.printer(cmd).emit(viewPage(pg), func(w io.Writer) { printReviews(w, pg) })
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().IntVar(&size, "page-size", 0, "items per page (default from config)")

	show := &cobra.Command{
		Use:   "show <review-id>",
		Short: "Show a single review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			r, err := app.Catalog.Review(cmd.Context(), model.ID(args[0]))
			if err != nil {
				return err
			}
			return e.printer(cmd).emit(r, func(w io.Writer) { printReview(w, r) })
		},
	}

	del := &cobra.Command{
		Use:   "delete <review-id>",
		Short: "Delete a review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			if err := app.Catalog.DeleteReview(cmd.Context(), model.ID(args[0])); err != nil {
				return err
			}
			p := e.printer(cmd)
			return p.emit(map[string]any{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "Review %s deleted\n", args[0])
			})
		},
	}

	var movieID, comment string
	var rating int
	create := &cobra.Command{
		Use:   "create",
		Short: "Review a movie as the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			r, err := app.Reviews.Submit(cmd.Context(), model.ID(movieID), rating, comment)
			if err != nil {
				return err
			}
			return e.printer(cmd).emit(r, func(w io.Writer) {
				fmt.Fprintln(w, "Review submitted")
				printReview(w, r)
			})
		},
	}
	create.Flags().StringVar(&movieID, "movie", "", "movie id")
	create.Flags().IntVar(&rating, "rating", 0, "rating from 1 to 5")
	create.Flags().StringVar(&comment, "comment", "", "review text")

	cmd.AddCommand(list, show, del, create)
	return cmd
}

func healthCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the composite service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			h, err := app.API.Health(cmd.Context())
			if err != nil {
				return err
			}
			return e.printer(cmd).emit(h, func(w io.Writer) {
				fmt.Fprintf(w, "Status: %s\n", h.Status)
			})
		},
	}
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"composite-client/internal/domain/model"
)

// printer writes either the JSON encoding of a result or its text rendering.
type printer struct {
	w    io.Writer
	json bool
}

func (p printer) emit(v any, text func(w io.Writer)) error {
	if p.json {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(p.w)
	return nil
}

func (p printer) line(format string, args ...any) {
	if p.json {
		return
	}
	fmt.Fprintf(p.w, format+"\n", args...)
}

type pageView[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

func viewPage[T any](pg *model.Page[T]) pageView[T] {
	items := pg.Items
	if items == nil {
		items = []T{}
	}
	return pageView[T]{Items: items, Total: pg.Total, Page: pg.Page, PageSize: pg.PageSize, TotalPages: pg.TotalPages}
}

func pageFooter[T any](w io.Writer, noun string, pg *model.Page[T]) {
	nav := ""
	if pg.HasPrev() {
		nav += fmt.Sprintf(" [prev: --page %d]", pg.Page-1)
	}
	if pg.HasNext() {
		nav += fmt.Sprintf(" [next: --page %d]", pg.Page+1)
	}
	fmt.Fprintf(w, "Page %d of %d (%d %s)%s\n", pg.Page, pg.TotalPages, pg.Total, noun, nav)
}

func printMovies(w io.Writer, pg *model.Page[model.Movie]) {
	if len(pg.Items) == 0 {
		fmt.Fprintln(w, "No movies found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tYEAR\tGENRE")
	for _, m := range pg.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Title, orNA(yearString(m.Year)), orNA(m.Genre))
	}
	_ = tw.Flush()
	pageFooter(w, "movies", pg)
}

func printMovie(w io.Writer, m *model.Movie) {
	fmt.Fprintf(w, "%s (%s)\n", m.Title, orNA(yearString(m.Year)))
	fmt.Fprintf(w, "  ID:     %s\n", m.ID)
	fmt.Fprintf(w, "  Genre:  %s\n", orNA(m.Genre))
	if m.ProcessingStatus != "" {
		fmt.Fprintf(w, "  Status: %s\n", m.ProcessingStatus)
	}
}

func printDetails(w io.Writer, d *model.MovieDetails) {
	printMovie(w, &d.Movie)
	fmt.Fprintln(w, "\nCast & Crew:")
	if len(d.CastAndCrew) == 0 {
		fmt.Fprintln(w, "  No cast information available")
	}
	for _, c := range d.CastAndCrew {
		line := "  " + c.Name
		if r := c.DisplayRole(); r != "" {
			line += " - " + r
		}
		if c.CharacterName != "" {
			line += " as " + c.CharacterName
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w, "\nReviews:")
	if len(d.Reviews.Items) == 0 {
		fmt.Fprintln(w, "  No reviews yet")
	}
	for _, r := range d.Reviews.Items {
		fmt.Fprintf(w, "  %s  %s\n", stars(r.Rating), r.Comment)
	}
}

func printReviews(w io.Writer, pg *model.Page[model.Review]) {
	if len(pg.Items) == 0 {
		fmt.Fprintln(w, "No reviews found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMOVIE\tUSER\tRATING\tCOMMENT")
	for _, r := range pg.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.MovieID, r.UserID, stars(r.Rating), r.Comment)
	}
	_ = tw.Flush()
	pageFooter(w, "reviews", pg)
}

func printReview(w io.Writer, r *model.Review) {
	fmt.Fprintf(w, "Review %s\n", r.ID)
	fmt.Fprintf(w, "  Movie:   %s\n", r.MovieID)
	fmt.Fprintf(w, "  User:    %s\n", r.UserID)
	fmt.Fprintf(w, "  Rating:  %s\n", stars(r.Rating))
	fmt.Fprintf(w, "  Comment: %s\n", r.Comment)
}

func printUser(w io.Writer, u *model.User) {
	fmt.Fprintf(w, "%s\n", u.DisplayName())
	fmt.Fprintf(w, "  ID:       %s\n", u.ID)
	fmt.Fprintf(w, "  Email:    %s\n", u.Email)
	fmt.Fprintf(w, "  Username: %s\n", u.Username)
	fmt.Fprintf(w, "  Active:   %t\n", u.IsActive)
}

func printJob(w io.Writer, j *model.ShareCardJob) {
	fmt.Fprintf(w, "Job %s for movie %s\n", j.JobID, j.MovieID)
	fmt.Fprintf(w, "  Outcome:  %s\n", orNA(string(j.Outcome)))
	fmt.Fprintf(w, "  Status:   %s\n", j.Status)
	fmt.Fprintf(w, "  Attempts: %d\n", j.Attempts)
	if j.CardURL != "" {
		fmt.Fprintf(w, "  Card:     %s\n", j.CardURL)
	}
	if j.LastError != "" {
		fmt.Fprintf(w, "  Error:    %s\n", j.LastError)
	}
}

func stars(n int) string {
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	s := ""
	for i := 0; i < 5; i++ {
		if i < n {
			s += "★"
		} else {
			s += "☆"
		}
	}
	return s
}

func yearString(y int) string {
	if y == 0 {
		return ""
	}
	return fmt.Sprint(y)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

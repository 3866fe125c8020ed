package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ourdigital/gbp-toolkit/internal/domain"
)

// printJSON encodes v as indented JSON to stdout.
func printJSON(v any) error {
	return fprintJSON(os.Stdout, v)
}

// fprintJSON encodes v as indented JSON to w.
func fprintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func writeAccounts(w io.Writer, accounts []domain.Account) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tACCOUNT NAME\tTYPE")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Name(), truncate(a.String("accountName"), 40), a.String("type"))
	}
	return tw.Flush()
}

func writeLocations(w io.Writer, locs []domain.Location) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tTITLE\tADDRESS\tPHONE")
	for _, l := range locs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			l.Name(),
			truncate(l.String("locationName"), 30),
			truncate(domain.FormatAddress(l), 50),
			l.String("primaryPhone"),
		)
	}
	return tw.Flush()
}

func writeLocationDetail(w io.Writer, loc domain.Location) {
	fmt.Fprintln(w, titleStyle.Render(loc.String("locationName")))
	fmt.Fprintf(w, "  Name:     %s\n", loc.Name())
	if acct := loc.String(domain.AccountNameKey); acct != "" {
		fmt.Fprintf(w, "  Account:  %s (%s)\n", acct, loc.String(domain.AccountTypeKey))
	}
	if cat := loc.Sub("primaryCategory").String("displayName"); cat != "" {
		fmt.Fprintf(w, "  Category: %s\n", cat)
	}
	if addr := domain.FormatAddress(loc); addr != "" {
		fmt.Fprintf(w, "  Address:  %s\n", addr)
	}
	if phone := loc.String("primaryPhone"); phone != "" {
		fmt.Fprintf(w, "  Phone:    %s\n", phone)
	}
	if site := loc.String("websiteUri"); site != "" {
		fmt.Fprintf(w, "  Website:  %s\n", site)
	}
	if hours := domain.FormatHours(loc); len(hours) > 0 {
		fmt.Fprintln(w, "  Hours:")
		for _, h := range hours {
			fmt.Fprintf(w, "    %s\n", h)
		}
	}
}

func writeReviews(w io.Writer, reviews []domain.Review) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "NAME\tSTARS\tDATE\tREVIEWER\tREPLIED\tCOMMENT")
	for _, r := range reviews {
		date := "-"
		if t, ok := domain.CreateTime(r); ok {
			date = t.Local().Format(time.DateOnly)
		}
		replied := "no"
		if domain.IsAnswered(r) {
			replied = "yes"
		}
		reviewer := r.Sub("reviewer").String("displayName")
		if reviewer == "" {
			reviewer = "Anonymous"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			r.Name(),
			domain.StarValue(r),
			date,
			truncate(reviewer, 20),
			replied,
			truncate(r.String("comment"), 50),
		)
	}
	return tw.Flush()
}

func writeReplyResults(w io.Writer, results []domain.ReplyResult) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "REVIEW\tSTATUS\tERROR")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ReviewName, r.Status, r.Error)
	}
	return tw.Flush()
}

func writeReviewStats(w io.Writer, stats *domain.ReviewStats) {
	fmt.Fprintf(w, "Total reviews: %d\n", stats.Total)
	if stats.Rated > 0 {
		fmt.Fprintf(w, "Average rating: %.1f/5 %s\n", stats.Average, stars(int(stats.Average+0.5)))
	} else {
		fmt.Fprintln(w, "Average rating: n/a")
	}
	fmt.Fprintf(w, "Reviews replied to: %d/%d\n", stats.Replied, stats.Total)
}

func writeIssues(w io.Writer, issues []string) {
	if len(issues) == 0 {
		fmt.Fprintf(w, "%s Location data is complete\n", okMark())
		return
	}
	for _, issue := range issues {
		fmt.Fprintf(w, "%s %s\n", failMark(), issue)
	}
}

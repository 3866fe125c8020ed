package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ourdigital/gbp-toolkit/internal/domain"
)

func newReviewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Customer reviews",
	}
	cmd.AddCommand(newReviewsListCmd())
	cmd.AddCommand(newReviewsReplyCmd())
	cmd.AddCommand(newReviewsBulkReplyCmd())
	cmd.AddCommand(newReviewsSummaryCmd())
	return cmd
}

func newReviewsListCmd() *cobra.Command {
	var recentFlag int
	var unansweredFlag bool

	cmd := &cobra.Command{
		Use:   "list [location]",
		Short: "List reviews of a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			location := args[0]

			var reviews []domain.Review
			switch {
			case recentFlag > 0:
				reviews, err = s.manager.GetRecentReviews(ctx, location, recentFlag)
			case cmd.Flags().Changed("recent"):
				reviews, err = s.manager.GetRecentReviews(ctx, location, s.cfg.Reviews.RecentDays)
			case unansweredFlag:
				reviews, err = s.manager.GetUnansweredReviews(ctx, location)
			default:
				reviews, err = s.manager.ListReviews(ctx, location)
			}
			if err != nil {
				return fmt.Errorf("failed to list reviews: %w", err)
			}
			if unansweredFlag && cmd.Flags().Changed("recent") {
				reviews = domain.Unanswered(reviews)
			}

			if jsonFlag {
				return printJSON(reviews)
			}
			if len(reviews) == 0 {
				fmt.Println("No reviews found.")
				return nil
			}
			return writeReviews(os.Stdout, reviews)
		},
	}
	cmd.Flags().IntVar(&recentFlag, "recent", 0, "only reviews from the last N days (0 uses the configured default)")
	cmd.Flags().BoolVar(&unansweredFlag, "unanswered", false, "only reviews without an owner reply")
	return cmd
}

func newReviewsReplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reply [review] [comment...]",
		Short: "Reply to one review, replacing any existing reply",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			review := args[0]
			comment := strings.Join(args[1:], " ")
			if _, err := s.client.ReplyToReview(cmd.Context(), review, comment); err != nil {
				return fmt.Errorf("failed to reply to review: %w", err)
			}
			if jsonFlag {
				return printJSON(jsonAction{OK: true, Action: "reply", Review: review})
			}
			fmt.Printf("%s Replied to %s\n", okMark(), review)
			return nil
		},
	}
}

func newReviewsBulkReplyCmd() *cobra.Command {
	var templateFlag string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "bulk-reply [location]",
		Short: "Reply to every unanswered review with a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			location := args[0]
			template := templateFlag
			if template == "" {
				template = s.cfg.Reviews.ReplyTemplate
			}

			if dryRun {
				pending, err := s.manager.GetUnansweredReviews(ctx, location)
				if err != nil {
					return fmt.Errorf("failed to list unanswered reviews: %w", err)
				}
				if jsonFlag {
					return printJSON(pending)
				}
				fmt.Printf("Would reply to %d reviews with %q\n", len(pending), template)
				if len(pending) == 0 {
					return nil
				}
				return writeReviews(os.Stdout, pending)
			}

			results, err := s.manager.BulkReplyToReviews(ctx, location, template)
			if jsonFlag {
				if jerr := printJSON(results); jerr != nil {
					return jerr
				}
			} else if len(results) > 0 {
				if werr := writeReplyResults(os.Stdout, results); werr != nil {
					return werr
				}
			}
			if err != nil {
				return fmt.Errorf("failed to reply to reviews: %w", err)
			}

			if !jsonFlag {
				ok, failed := countResults(results)
				fmt.Printf("%s %d replied", okMark(), ok)
				if failed > 0 {
					fmt.Printf(", %s %d failed", failMark(), failed)
				}
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&templateFlag, "template", "t", "", "reply text (defaults to reviews.reply_template)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the reviews that would be replied to")
	return cmd
}

func countResults(results []domain.ReplyResult) (ok, failed int) {
	for _, r := range results {
		if r.Status == domain.ReplySuccess {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

func newReviewsSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary [location]",
		Short: "Review count, average rating and reply rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			stats, err := s.manager.ReviewSummary(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to summarize reviews: %w", err)
			}
			if jsonFlag {
				return printJSON(stats)
			}
			writeReviewStats(os.Stdout, stats)
			return nil
		},
	}
}

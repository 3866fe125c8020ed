package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newInsightsCmd() *cobra.Command {
	var daysFlag int

	cmd := &cobra.Command{
		Use:   "insights [location]",
		Short: "Fetch performance metrics for a location",
		Long:  "Fetch daily performance metrics for a location over the last N days.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			ins, err := s.manager.GetLocationInsights(cmd.Context(), args[0], daysFlag)
			if err != nil {
				return fmt.Errorf("failed to fetch insights: %w", err)
			}
			if jsonFlag {
				return printJSON(ins)
			}
			if ins.Failed() {
				fmt.Fprintf(os.Stderr, "%s %s\n", failMark(), ins.Error)
				return nil
			}
			return printJSON(ins.Report)
		},
	}
	cmd.Flags().IntVar(&daysFlag, "days", 30, "number of days to cover")
	return cmd
}

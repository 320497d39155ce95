package commands

import (
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/algohub-dev/algohub/internal/cli/client"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd(opts *GlobalOptions) *cobra.Command {
	var problemUUID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List your submissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.requireLogin(cmd.Context()); err != nil {
				return err
			}

			history, err := app.Client.GetSolutionHistory(cmd.Context(), problemUUID)
			if err != nil {
				return err
			}

			if len(history.Solutions) == 0 {
				app.UI.Println("No submissions yet.")
				return nil
			}

			solutions := history.Solutions
			sort.SliceStable(solutions, func(i, j int) bool {
				return solutions[i].CreatedAt.After(solutions[j].CreatedAt)
			})

			w := tabwriter.NewWriter(app.UI.Writer(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SUBMITTED\tLANGUAGE\tSTATUS\tTIME\tMEMORY")
			fmt.Fprintln(w, "─────────\t────────\t──────\t────\t──────")
			for _, s := range solutions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					s.CreatedAt.Local().Format(time.DateTime),
					s.Language,
					s.Status,
					metric(s.Status, "%.2f ms", s.AverageTimeMS),
					metric(s.Status, "%.0f KB", s.AverageMemoryKB),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&problemUUID, "problem", "", "Only show submissions for this problem UUID")

	return cmd
}

func metric(status, format string, v float64) string {
	if status != client.SolutionAccepted {
		return "-"
	}
	return fmt.Sprintf(format, v)
}

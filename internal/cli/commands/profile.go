package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/algohub-dev/algohub/internal/cli/client"
)

// NewProfileCmd creates the profile command
func NewProfileCmd(opts *GlobalOptions) *cobra.Command {
	var submissions bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.requireLogin(cmd.Context()); err != nil {
				return err
			}

			profile, err := app.Client.GetProfile(cmd.Context())
			if err != nil {
				return err
			}

			stats := client.ComputeStats(profile)

			app.UI.Println(fmt.Sprintf("%s (%s)", profile.Username, profile.Role))
			app.UI.Println()
			app.UI.Println(fmt.Sprintf("Solved:         %d / %d (%.1f%%)", stats.Solved, stats.Total, stats.SolvedPercentage))
			app.UI.Println(fmt.Sprintf("  Easy:         %d / %d", stats.SolvedByDifficulty.Easy, stats.TotalByDifficulty.Easy))
			app.UI.Println(fmt.Sprintf("  Medium:       %d / %d", stats.SolvedByDifficulty.Medium, stats.TotalByDifficulty.Medium))
			app.UI.Println(fmt.Sprintf("  Hard:         %d / %d", stats.SolvedByDifficulty.Hard, stats.TotalByDifficulty.Hard))
			app.UI.Println(fmt.Sprintf("Success rate:   %.1f%%", profile.SuccessRate))
			app.UI.Println(fmt.Sprintf("Streak:         %d days (longest %d)", profile.Streak, profile.LongestStreak))

			if !submissions || len(profile.Problems) == 0 {
				return nil
			}

			counts, err := app.Client.SolutionCounts(cmd.Context(), profile.Problems)
			if err != nil {
				return err
			}

			app.UI.Println()
			w := tabwriter.NewWriter(app.UI.Writer(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROBLEM\tDIFFICULTY\tSTATUS\tSUBMISSIONS")
			fmt.Fprintln(w, "───────\t──────────\t──────\t───────────")
			for _, p := range profile.Problems {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.Name, p.Difficulty, solvedLabel(p.Solved), counts[p.UUID])
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&submissions, "submissions", false, "Also count submissions per problem")

	return cmd
}

package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/algohub-dev/algohub/internal/cli/client"
)

// NewProblemsCmd creates the problems command
func NewProblemsCmd(opts *GlobalOptions) *cobra.Command {
	var difficulty string
	var unsolved bool

	cmd := &cobra.Command{
		Use:     "problems",
		Aliases: []string{"ls"},
		Short:   "List all problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.requireLogin(cmd.Context()); err != nil {
				return err
			}

			problems, err := app.Client.GetProblems(cmd.Context())
			if err != nil {
				return err
			}

			problems = filterProblems(problems, difficulty, unsolved)
			if len(problems) == 0 {
				app.UI.Println("No problems found.")
				return nil
			}

			w := tabwriter.NewWriter(app.UI.Writer(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "UUID\tNAME\tDIFFICULTY\tSTATUS")
			fmt.Fprintln(w, "────\t────\t──────────\t──────")
			for _, p := range problems {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.UUID, p.Name, p.Difficulty, solvedLabel(p.Solved))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&difficulty, "difficulty", "", "Only show problems of this difficulty (easy, medium, hard)")
	cmd.Flags().BoolVar(&unsolved, "unsolved", false, "Only show problems you have not solved")

	return cmd
}

func filterProblems(problems []client.Problem, difficulty string, unsolved bool) []client.Problem {
	out := problems[:0:0]
	for _, p := range problems {
		if difficulty != "" && !strings.EqualFold(p.Difficulty, difficulty) {
			continue
		}
		if unsolved && p.Solved {
			continue
		}
		out = append(out, p)
	}
	return out
}

func solvedLabel(solved bool) string {
	if solved {
		return "solved"
	}
	return "-"
}

// NewProblemCmd creates the problem command
func NewProblemCmd(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "problem <uuid>",
		Short: "Show a problem and your accepted solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.requireLogin(cmd.Context()); err != nil {
				return err
			}

			p, err := app.Client.GetProblem(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			app.UI.Println(fmt.Sprintf("%s [%s]", p.Name, p.Difficulty))
			app.UI.Println()
			app.UI.Println(p.Description)

			if p.Solved && p.Solution != nil {
				app.UI.Println()
				app.UI.Box("Accepted solution ("+p.Solution.Language+")", formatMetrics(&p.Solution.ResultDetails))
			}
			return nil
		},
	}
}

func formatMetrics(d *client.ResultDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Time:   %.2f ms (beats %.1f%%)\n", d.AverageTimeMS, d.TimeBeatPercent)
	fmt.Fprintf(&b, "Memory: %.0f KB (beats %.1f%%)", d.AverageMemoryKB, d.MemoryBeatPercent)
	return b.String()
}

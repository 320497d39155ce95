package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/algohub-dev/algohub/internal/cli/client"
	"github.com/algohub-dev/algohub/internal/cli/ui"
)

var languageByExt = map[string]string{
	".py":   "python",
	".cpp":  "cpp",
	".cc":   "cpp",
	".java": "java",
}

// NewSubmitCmd creates the submit command
func NewSubmitCmd(opts *GlobalOptions) *cobra.Command {
	var file, language string

	cmd := &cobra.Command{
		Use:   "submit <uuid>",
		Short: "Submit a solution for judging",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read solution: %w", err)
			}

			if language == "" {
				language = languageByExt[strings.ToLower(filepath.Ext(file))]
				if language == "" {
					return fmt.Errorf("cannot infer language from %s, use --language", file)
				}
			}

			app, err := newApp(opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.requireLogin(cmd.Context()); err != nil {
				return err
			}

			result, err := app.Client.SubmitSolution(cmd.Context(), args[0], client.SolutionRequest{
				Code:     string(code),
				Language: language,
			})
			if err != nil {
				return err
			}

			renderResult(app.UI, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Source file to submit")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Language (inferred from the file extension if omitted)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// renderResult prints a verdict. A failed verdict is output, not an error.
func renderResult(p *ui.Printer, r *client.SubmitResult) {
	if r.Accepted() {
		p.Success("%s", nonEmpty(r.Message, "All test cases passed"))
		if r.Details != nil {
			p.Box("Performance", formatMetrics(r.Details))
		}
		return
	}

	p.Error("%s", nonEmpty(r.Message, "Submission failed"))

	switch {
	case r.ErrorDetails != "":
		title := "Error"
		switch r.Message {
		case client.CompilationFailed:
			title = "Compiler output"
		case client.ExecutionFailed:
			title = "Runtime error"
		}
		p.Box(title, r.ErrorDetails)
	case len(r.FailedTests) > 0:
		for _, tc := range r.FailedTests {
			p.Box(fmt.Sprintf("Failed test #%d", tc.ID), fmt.Sprintf(
				"Input:    %s\nExpected: %s\nActual:   %s", tc.Input, tc.Output, tc.ActualOutput))
		}
	}
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

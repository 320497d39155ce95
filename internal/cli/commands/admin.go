package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/algohub-dev/algohub/internal/cli/client"
)

// confirm is replaced in tests
var confirm = promptConfirm

func promptConfirm(opts *GlobalOptions, label string) error {
	if !isTerminal(stdinOrDefault(opts.In)) {
		return fmt.Errorf("confirmation required in non-interactive mode (use --yes)")
	}

	prompt := promptui.Prompt{Label: label, IsConfirm: true}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
			return fmt.Errorf("aborted")
		}
		return fmt.Errorf("confirmation failed: %w", err)
	}
	return nil
}

// NewAdminCmd creates the admin command group
func NewAdminCmd(opts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage problems and test cases (admin only)",
	}

	cmd.AddCommand(newDashboardCmd(opts))
	cmd.AddCommand(newCreateProblemCmd(opts))
	cmd.AddCommand(newDeleteProblemCmd(opts))
	cmd.AddCommand(newTestCasesCmd(opts))
	cmd.AddCommand(newAddTestCaseCmd(opts))
	cmd.AddCommand(newDeleteTestCaseCmd(opts))

	return cmd
}

// adminRun builds the app, checks the admin role and runs fn
func adminRun(opts *GlobalOptions, cmd *cobra.Command, fn func(app *App) error) error {
	app, err := newApp(opts)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAdmin(cmd.Context()); err != nil {
		return err
	}
	return fn(app)
}

func newDashboardCmd(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show platform totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminRun(opts, cmd, func(app *App) error {
				d, err := app.Client.GetDashboard(cmd.Context())
				if err != nil {
					return err
				}

				if d.Message != "" {
					app.UI.Println(d.Message)
				}
				app.UI.Println(fmt.Sprintf("Users:     %d", d.Users))
				app.UI.Println(fmt.Sprintf("Problems:  %d", d.Problems))
				app.UI.Println(fmt.Sprintf("Solutions: %d", d.Solutions))
				return nil
			})
		},
	}
}

func newCreateProblemCmd(opts *GlobalOptions) *cobra.Command {
	var req client.CreateProblemRequest
	var descriptionFile string

	cmd := &cobra.Command{
		Use:   "create-problem",
		Short: "Create a problem",
		RunE: func(cmd *cobra.Command, args []string) error {
			if descriptionFile != "" {
				data, err := os.ReadFile(descriptionFile)
				if err != nil {
					return fmt.Errorf("failed to read description: %w", err)
				}
				req.Description = string(data)
			}

			return adminRun(opts, cmd, func(app *App) error {
				resp, err := app.Client.CreateProblem(cmd.Context(), req)
				if err != nil {
					return err
				}
				app.UI.Success("Problem created successfully! (%s)", resp.UUID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Problem name")
	cmd.Flags().StringVar(&req.Difficulty, "difficulty", "easy", "Difficulty: easy, medium or hard")
	cmd.Flags().StringVar(&req.Description, "description", "", "Problem statement")
	cmd.Flags().StringVar(&descriptionFile, "description-file", "", "Read the problem statement from a file")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newDeleteProblemCmd(opts *GlobalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete-problem <uuid>",
		Short: "Delete a problem and its test cases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminRun(opts, cmd, func(app *App) error {
				if !yes {
					if err := confirm(opts, fmt.Sprintf("Delete problem %s", args[0])); err != nil {
						return err
					}
				}

				if _, err := app.Client.DeleteProblem(cmd.Context(), args[0]); err != nil {
					return err
				}
				app.UI.Success("Problem deleted successfully!")
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newTestCasesCmd(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "testcases <uuid>",
		Short: "List the test cases of a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminRun(opts, cmd, func(app *App) error {
				cases, err := app.Client.GetTestCases(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				if len(cases) == 0 {
					app.UI.Println("No test cases.")
					return nil
				}

				w := tabwriter.NewWriter(app.UI.Writer(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tINPUT\tOUTPUT")
				fmt.Fprintln(w, "──\t─────\t──────")
				for _, tc := range cases {
					fmt.Fprintf(w, "%d\t%s\t%s\n", tc.ID, strconv.Quote(tc.Input), strconv.Quote(tc.Output))
				}
				return w.Flush()
			})
		},
	}
}

func newAddTestCaseCmd(opts *GlobalOptions) *cobra.Command {
	var req client.CreateTestCaseRequest
	var inputFile, outputFile string

	cmd := &cobra.Command{
		Use:   "add-testcase <uuid>",
		Short: "Add a test case to a problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := readInto(&req.Input, inputFile); err != nil {
				return err
			}
			if err := readInto(&req.Output, outputFile); err != nil {
				return err
			}

			return adminRun(opts, cmd, func(app *App) error {
				if _, err := app.Client.AddTestCase(cmd.Context(), args[0], req); err != nil {
					return err
				}
				app.UI.Success("Test case added successfully!")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&req.Input, "input", "", "Program input")
	cmd.Flags().StringVar(&req.Output, "output", "", "Expected output")
	cmd.Flags().StringVar(&inputFile, "input-file", "", "Read the program input from a file")
	cmd.Flags().StringVar(&outputFile, "output-file", "", "Read the expected output from a file")

	return cmd
}

func newDeleteTestCaseCmd(opts *GlobalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete-testcase <id>",
		Short: "Delete a test case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid test case id %q", args[0])
			}

			return adminRun(opts, cmd, func(app *App) error {
				if !yes {
					if err := confirm(opts, fmt.Sprintf("Delete test case %d", id)); err != nil {
						return err
					}
				}

				if _, err := app.Client.DeleteTestCase(cmd.Context(), id); err != nil {
					return err
				}
				app.UI.Success("Test case deleted successfully!")
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func readInto(dst *string, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	*dst = string(data)
	return nil
}

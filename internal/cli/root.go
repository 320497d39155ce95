package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/algohub-dev/algohub/internal/cli/client"
	"github.com/algohub-dev/algohub/internal/cli/commands"
	"github.com/algohub-dev/algohub/internal/cli/ui"
	"github.com/algohub-dev/algohub/internal/config"
	"github.com/algohub-dev/algohub/internal/logger"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the algohub command tree writing to out
func NewRootCmd(out io.Writer, in io.Reader) *cobra.Command {
	opts := &commands.GlobalOptions{Out: out, In: in}

	rootCmd := &cobra.Command{
		Use:   "algohub",
		Short: "AlgoHub - practice algorithms from the terminal",
		Long: `AlgoHub CLI - browse problems, submit solutions and track your progress.

Point it at a server with 'algohub init <url>' or ALGOHUB_API_URL, then run
'algohub login'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A broken config is reported by the command that needs it
			cfg, _ := config.LoadCLI()
			level, format := logSettings(cfg, opts.Verbose)
			logger.InitWithWriter(os.Stderr, level, format)

			if opts.NoColor || os.Getenv("NO_COLOR") != "" {
				ui.DisableColor()
			}
		},
	}

	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVar(&opts.Server, "server", "", "Server URL or alias from algohub.yaml")
	rootCmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Log requests to stderr")
	rootCmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(out, "algohub version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewInitCmd(opts))
	rootCmd.AddCommand(commands.NewSelectServerCmd(opts))
	rootCmd.AddCommand(commands.NewLoginCmd(opts))
	rootCmd.AddCommand(commands.NewSignupCmd(opts))
	rootCmd.AddCommand(commands.NewLogoutCmd(opts))
	rootCmd.AddCommand(commands.NewWhoamiCmd(opts))
	rootCmd.AddCommand(commands.NewProblemsCmd(opts))
	rootCmd.AddCommand(commands.NewProblemCmd(opts))
	rootCmd.AddCommand(commands.NewSubmitCmd(opts))
	rootCmd.AddCommand(commands.NewHistoryCmd(opts))
	rootCmd.AddCommand(commands.NewProfileCmd(opts))
	rootCmd.AddCommand(commands.NewOpenCmd(opts))
	rootCmd.AddCommand(commands.NewAdminCmd(opts))

	return rootCmd
}

// logSettings picks the log level and format; --verbose forces debug
func logSettings(cfg *config.CLIConfig, verbose bool) (level, format string) {
	level, format = "warn", "console"
	if cfg != nil {
		level, format = cfg.Logging.Level, cfg.Logging.Format
	}
	if verbose {
		level = "debug"
	}
	return level, format
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return execute(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Stdin)
}

func execute(ctx context.Context, args []string, out, errOut io.Writer, in io.Reader) error {
	cmd := NewRootCmd(out, in)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		// The forced-logout notice or the login hint already told the user
		if !errors.Is(err, client.ErrAuthRequired) && !errors.Is(err, commands.ErrNotLoggedIn) {
			fmt.Fprintf(errOut, "Error: %s\n", client.ErrorMessage(err))
		}
		return err
	}
	return nil
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	cliconfig "github.com/algohub-dev/algohub/internal/cli/config"
	"github.com/algohub-dev/algohub/internal/cli/serverselect"
	"github.com/algohub-dev/algohub/internal/cli/ui"
	"github.com/algohub-dev/algohub/internal/cli/userconfig"
	"github.com/algohub-dev/algohub/internal/config"
)

// NewSelectServerCmd creates the select-server command
func NewSelectServerCmd(opts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select-server [url-or-alias]",
		Short: "Select the server to use for commands",
		Long: `Select the server to use for commands.

If no param is provided, an interactive prompt will be shown.

Examples:
  $ algohub select-server                        # Interactive selection
  $ algohub select-server http://localhost:8080  # Select by URL
  $ algohub select-server staging                # Select by alias`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var urlOrAlias string
			if len(args) > 0 {
				urlOrAlias = args[0]
			}
			return runSelectServer(ui.New(opts.Out), urlOrAlias)
		},
	}

	return cmd
}

func runSelectServer(p *ui.Printer, urlOrAlias string) error {
	appCfg, err := config.LoadCLI()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	cfg, err := cliconfig.LoadFromCurrentDir()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\nRun 'algohub init <url>' to create a configuration file", err)
	}

	var server *cliconfig.Server

	if urlOrAlias != "" {
		server, err = cfg.GetServerByURLOrAlias(urlOrAlias)
	} else {
		server, err = serverselect.PromptServerSelection(cfg)
	}
	if err != nil {
		return err
	}

	if err := userconfig.SetSelectedServer(appCfg.ConfigDir, server.URL); err != nil {
		return fmt.Errorf("failed to save selected server: %w", err)
	}

	p.Success("Selected server: %s (%s)", server.Alias, server.URL)
	return nil
}

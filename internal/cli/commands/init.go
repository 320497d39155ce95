package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/algohub-dev/algohub/internal/cli/config"
	"github.com/algohub-dev/algohub/internal/cli/ui"
)

// NewInitCmd creates the init command
func NewInitCmd(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init <url>",
		Short: "Add an AlgoHub server to ./algohub.yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(ui.New(opts.Out), args[0])
		},
	}
}

func runInit(p *ui.Printer, rawURL string) error {
	serverURL, err := config.NormalizeURL(rawURL)
	if err != nil {
		return err
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	configPath := filepath.Join(currentDir, config.ConfigFileName)

	var cfg *config.Config
	isNewConfig := false

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load existing config: %w", err)
		}
		p.Info("Found existing %s", config.ConfigFileName)
	} else {
		cfg = &config.Config{Servers: []config.Server{}}
		isNewConfig = true
	}

	server, added := cfg.AddServer(serverURL)
	if !added {
		p.Info("Server %s already exists in %s as '%s'", serverURL, config.ConfigFileName, server.Alias)
	} else {
		if err := config.Save(configPath, cfg); err != nil {
			return err
		}

		if isNewConfig {
			p.Success("Created ./%s with server %s (%s)", config.ConfigFileName, serverURL, server.Alias)
		} else {
			p.Success("Added server %s (%s) to ./%s", serverURL, server.Alias, config.ConfigFileName)
		}
	}

	p.Println()
	p.Println("Next steps:")
	p.Println("  1. Run 'algohub signup' to create an account, or")
	p.Println("  2. Run 'algohub login' to authenticate")

	return nil
}

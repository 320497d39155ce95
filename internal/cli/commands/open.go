package commands

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

// browserOpener is replaced in tests
var browserOpener = openBrowser

// NewOpenCmd creates the open command
func NewOpenCmd(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open [uuid]",
		Short: "Open the web app, or one problem, in the browser",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			target := webURL(app.Server.APIBase())
			if len(args) == 1 {
				target += "/problem/" + url.PathEscape(args[0])
			}

			app.UI.Info("Opening %s", target)
			if err := browserOpener(target); err != nil {
				return fmt.Errorf("failed to open browser: %w\nPlease visit: %s", err, target)
			}
			return nil
		},
	}
}

// webURL derives the web app origin from the API base
func webURL(apiBase string) string {
	return strings.TrimSuffix(strings.TrimRight(apiBase, "/"), "/api")
}

// openBrowser opens the URL in the default browser
func openBrowser(target string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", target)
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}

package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type credentialFlags struct {
	username string
	password string
	remember bool
}

func (f *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.username, "username", "", "Username (or set ALGOHUB_USERNAME)")
	cmd.Flags().StringVar(&f.password, "password", "", "Password (or set ALGOHUB_PASSWORD, will prompt if not provided)")
	cmd.Flags().BoolVar(&f.remember, "remember", false, "Stay logged in for 30 days instead of until the next reboot")
}

// NewLoginCmd creates the login command
func NewLoginCmd(opts *GlobalOptions) *cobra.Command {
	var creds credentialFlags

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to an AlgoHub server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, opts, creds)
		},
	}

	creds.register(cmd)
	return cmd
}

func runLogin(cmd *cobra.Command, opts *GlobalOptions, creds credentialFlags) error {
	app, err := newApp(opts)
	if err != nil {
		return err
	}

	username, password, err := readCredentials(opts, creds)
	if err != nil {
		return err
	}

	return login(cmd, app, username, password, creds.remember)
}

func login(cmd *cobra.Command, app *App, username, password string, remember bool) error {
	app.UI.Info("Logging in to %s (%s)...", app.Server.Alias, app.Server.URL)

	resp, err := app.Client.Login(cmd.Context(), username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := app.Session.Login(resp.Token, remember); err != nil {
		return err
	}

	app.UI.Success("Logged in as %s", username)
	if app.Session.IsAdmin() {
		app.UI.Println("  Role: Admin")
	}
	return nil
}

// readCredentials resolves username and password from flags, environment
// variables and finally an interactive prompt
func readCredentials(opts *GlobalOptions, creds credentialFlags) (string, string, error) {
	username := creds.username
	if username == "" {
		username = os.Getenv("ALGOHUB_USERNAME")
	}
	password := creds.password
	if password == "" {
		password = os.Getenv("ALGOHUB_PASSWORD")
	}

	in := stdinOrDefault(opts.In)
	interactive := isTerminal(in)
	reader := bufio.NewReader(in)

	if username == "" {
		if !interactive {
			return "", "", fmt.Errorf("username is required in non-interactive mode (use --username flag or ALGOHUB_USERNAME env var)")
		}
		fmt.Fprint(opts.Out, "Username: ")
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", "", fmt.Errorf("failed to read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}

	if password == "" {
		if !interactive {
			return "", "", fmt.Errorf("password is required in non-interactive mode (use --password flag or ALGOHUB_PASSWORD env var)")
		}
		fmt.Fprint(opts.Out, "Password: ")
		bytePassword, err := term.ReadPassword(int(in.(*os.File).Fd()))
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(bytePassword)
		fmt.Fprintln(opts.Out)
	}

	if username == "" || password == "" {
		return "", "", fmt.Errorf("username and password are required")
	}

	return username, password, nil
}

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSignupCmd creates the signup command
func NewSignupCmd(opts *GlobalOptions) *cobra.Command {
	var creds credentialFlags

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			username, password, err := readCredentials(opts, creds)
			if err != nil {
				return err
			}

			resp, err := app.Client.Signup(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("signup failed: %w", err)
			}
			if resp.Message != "" {
				app.UI.Success("%s", resp.Message)
			}

			return login(cmd, app, username, password, creds.remember)
		},
	}

	creds.register(cmd)
	return cmd
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			wasLoggedIn := app.Session.Token() != ""
			if err := app.Session.Logout(); err != nil {
				return err
			}

			if wasLoggedIn {
				app.UI.Success("Logged out of %s", app.Server.Alias)
			} else {
				app.UI.Info("Not logged in")
			}
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(opts)
			if err != nil {
				return err
			}

			if app.Session.Token() == "" {
				app.UI.Info("Not logged in")
				app.UI.RedirectToLogin()
				return nil
			}

			if err := app.Session.Verify(cmd.Context(), app.Client); err != nil {
				return err
			}

			profile, err := app.Client.GetProfile(cmd.Context())
			if err != nil {
				return err
			}

			snap := app.Session.Snapshot()
			app.UI.Println(fmt.Sprintf("User:   %s", profile.Username))
			app.UI.Println(fmt.Sprintf("Role:   %s", profile.Role))
			app.UI.Println(fmt.Sprintf("Server: %s (%s)", app.Server.Alias, app.Server.URL))
			app.UI.Println(fmt.Sprintf("State:  %s", snap.State))
			return nil
		},
	}
}

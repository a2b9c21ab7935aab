package cmd

import (
	"context"
	"errors"

	"github.com/roessland/nikeplus/np"
	"github.com/roessland/nikeplus/pkg/output"
	"github.com/spf13/cobra"
)

// authSession opens the authentication gateway for a command run
func authSession(ol *output.OutputLogger) (*np.AuthService, error) {
	client, err := newClient(ol)
	if err != nil {
		return nil, err
	}
	auth, err := client.Factory.Authentication()
	if err != nil {
		return nil, err
	}
	return np.NewAuthService(auth, ol.Component("auth")), nil
}

// requireLogin fails with a login prompt when no token is stored
func requireLogin(ctx context.Context, ol *output.OutputLogger) (*np.Client, error) {
	client, err := newClient(ol)
	if err != nil {
		return nil, err
	}
	auth, err := client.Factory.Authentication()
	if err != nil {
		return nil, err
	}
	if err := np.NewAuthService(auth, ol.Component("auth")).EnsureAuthenticated(ctx); err != nil {
		var loginErr *np.LoginRequiredError
		if errors.As(err, &loginErr) {
			np.NewPresentationService(ol).ShowLoginRequired(loginErr.AuthorizationURL)
		}
		return nil, err
	}
	return client, nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start the Nike+ OAuth2 login",
	Long: `Print the Nike+ authorization URL. After approving access, Nike+ redirects
to the callback URL with a code and a state; pass both to 'nikeplus authorize',
or run 'nikeplus serve' so the callback is handled for you.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ol, err := newOutput()
		if err != nil {
			return err
		}
		presenter := np.NewPresentationService(ol)

		auth, err := authSession(ol)
		if err != nil {
			return showFailure(ol, err, "Could not set up Nike+ client")
		}

		err = auth.EnsureAuthenticated(cmd.Context())
		var loginErr *np.LoginRequiredError
		switch {
		case err == nil:
			presenter.ShowStatus("Already logged in to Nike+")
			return nil
		case errors.As(err, &loginErr):
			presenter.ShowLoginRequired(loginErr.AuthorizationURL)
			presenter.ShowProgress("Then run: nikeplus authorize --code <code> --state <state>")
			return nil
		default:
			return showFailure(ol, err, "Could not start login")
		}
	},
}

var authorizeCmd = &cobra.Command{
	Use:   "authorize",
	Short: "Exchange the authorization code from the callback for a token",
	RunE: func(cmd *cobra.Command, args []string) error {
		code, _ := cmd.Flags().GetString("code")
		state, _ := cmd.Flags().GetString("state")

		ol, err := newOutput()
		if err != nil {
			return err
		}

		auth, err := authSession(ol)
		if err != nil {
			return showFailure(ol, err, "Could not set up Nike+ client")
		}
		if err := auth.CompleteLogin(cmd.Context(), code, state); err != nil {
			return showFailure(ol, err, "Login failed")
		}
		np.NewPresentationService(ol).ShowStatus("Logged in to Nike+")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored Nike+ token",
	RunE: func(cmd *cobra.Command, args []string) error {
		ol, err := newOutput()
		if err != nil {
			return err
		}

		auth, err := authSession(ol)
		if err != nil {
			return showFailure(ol, err, "Could not set up Nike+ client")
		}
		if err := auth.Logout(cmd.Context()); err != nil {
			return showFailure(ol, err, "Logout failed")
		}
		np.NewPresentationService(ol).ShowStatus("Logged out of Nike+")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a Nike+ token is stored",
	RunE: func(cmd *cobra.Command, args []string) error {
		ol, err := newOutput()
		if err != nil {
			return err
		}

		client, err := newClient(ol)
		if err != nil {
			return showFailure(ol, err, "Could not set up Nike+ client")
		}
		auth, err := client.Factory.Authentication()
		if err != nil {
			return showFailure(ol, err, "Could not open authentication gateway")
		}
		ok, err := auth.IsAuthorized(cmd.Context())
		if err != nil {
			return showFailure(ol, err, "Could not look up the stored token")
		}

		if ol.JSONMode() {
			return ol.JSON(map[string]any{"authorized": ok, "backend": client.Store.Backend()})
		}
		if ok {
			np.NewPresentationService(ol).ShowStatus("Logged in to Nike+ (%s backend)", client.Store.Backend())
		} else {
			ol.Error("Not logged in to Nike+. Run 'nikeplus login'.")
		}
		return nil
	},
}

func init() {
	authorizeCmd.Flags().String("code", "", "Authorization code from the callback URL")
	authorizeCmd.Flags().String("state", "", "State from the callback URL")
	authorizeCmd.MarkFlagRequired("code")

	rootCmd.AddCommand(loginCmd, authorizeCmd, logoutCmd, statusCmd)
}

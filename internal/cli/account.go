package cli

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"composite-client/internal/domain/model"

	"github.com/spf13/cobra"
)

func usersCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage your account",
	}

	var reg model.Registration
	register := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			u, err := app.Users.Register(cmd.Context(), reg)
			if err != nil {
				return err
			}
			return e.printer(cmd).emit(u, func(w io.Writer) {
				fmt.Fprintln(w, "Registration successful. You can now log in.")
				printUser(w, u)
			})
		},
	}
	register.Flags().StringVar(&reg.Email, "email", "", "email address")
	register.Flags().StringVar(&reg.Username, "username", "", "username")
	register.Flags().StringVar(&reg.Password, "password", "", "password (at least 6 characters)")
	register.Flags().StringVar(&reg.FullName, "full-name", "", "full name (optional)")

	profile := &cobra.Command{
		Use:   "profile",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			u, err := app.Users.Profile(cmd.Context())
			if err != nil {
				return err
			}
			return e.printer(cmd).emit(u, func(w io.Writer) { printUser(w, u) })
		},
	}

	var patch model.UserPatch
	update := &cobra.Command{
		Use:   "update",
		Short: "Change your full name or email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			u, err := app.Users.Update(cmd.Context(), patch)
			if err != nil {
				return err
			}
			return e.printer(cmd).emit(u, func(w io.Writer) {
				fmt.Fprintln(w, "Profile updated")
				printUser(w, u)
			})
		},
	}
	update.Flags().StringVar(&patch.FullName, "full-name", "", "new full name")
	update.Flags().StringVar(&patch.Email, "email", "", "new email address")

	var yes bool
	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete your account and log out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete the account without --yes")
			}
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			if err := app.Users.DeleteAccount(cmd.Context()); err != nil {
				return err
			}
			return e.printer(cmd).emit(map[string]bool{"deleted": true}, func(w io.Writer) {
				fmt.Fprintln(w, "Account deleted")
			})
		},
	}
	del.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")

	cmd.AddCommand(register, profile, update, del)
	return cmd
}

func loginCmd(e *env) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			cred, err := app.Session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			return e.printer(cmd).emit(map[string]any{"user_id": cred.UserID}, func(w io.Writer) {
				fmt.Fprintln(w, "Login successful")
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")

	googleURL := &cobra.Command{
		Use:   "google-url",
		Short: "Print the Google sign-in URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			ga, err := app.Session.GoogleLoginURL(cmd.Context())
			if err != nil {
				return err
			}
			return e.printer(cmd).emit(ga, func(w io.Writer) {
				fmt.Fprintln(w, "Open this URL to sign in with Google, then pass the redirect URL to 'login google-callback':")
				fmt.Fprintln(w, ga.AuthURL)
			})
		},
	}

	googleCallback := &cobra.Command{
		Use:   "google-callback <redirect-url-or-query>",
		Short: "Finish a Google sign-in from the redirect URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := callbackQuery(args[0])
			if err != nil {
				return err
			}
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			cred, err := app.Session.CompleteGoogleLogin(cmd.Context(), query)
			if err != nil {
				return err
			}
			return e.printer(cmd).emit(map[string]any{"user_id": cred.UserID, "google": cred.HasGoogle()}, func(w io.Writer) {
				fmt.Fprintln(w, "Google login successful")
			})
		},
	}

	cmd.AddCommand(googleURL, googleCallback)
	return cmd
}

// callbackQuery accepts a full redirect URL or just its query string.
func callbackQuery(s string) (url.Values, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[i+1:]
	}
	if j := strings.IndexByte(s, '#'); j >= 0 {
		s = s[:j]
	}
	q, err := url.ParseQuery(s)
	if err != nil {
		return nil, fmt.Errorf("parse callback: %w", err)
	}
	return q, nil
}

func logoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and revoke the Google token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.App(cmd)
			if err != nil {
				return err
			}
			if err := app.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			return e.printer(cmd).emit(map[string]bool{"logged_out": true}, func(w io.Writer) {
				fmt.Fprintln(w, "Logged out")
			})
		},
	}
}

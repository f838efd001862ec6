package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"noteminder/internal/auth"
	"noteminder/models"
	"noteminder/repository"
)

var (
	username string
	password string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		name, err := valueOrPrompt(out, username, "Username")
		if err != nil {
			return err
		}
		pw := password
		if pw == "" {
			if pw, err = promptPassword(out, "Password"); err != nil {
				return err
			}
			confirm, err := promptPassword(out, "Repeat password")
			if err != nil {
				return err
			}
			if confirm != pw {
				return fmt.Errorf("%w: passwords do not match", auth.ErrInvalidInput)
			}
		}

		u, err := application.Guard.Register(cmd.Context(), name, pw)
		if errors.Is(err, repository.ErrDuplicateUser) {
			return fmt.Errorf("username %q is already taken", name)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, success("Registered %s. Run \"notes login\" to sign in.", u.Username))
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		name, err := valueOrPrompt(out, username, "Username")
		if err != nil {
			return err
		}
		pw := password
		if pw == "" {
			if pw, err = promptPassword(out, "Password"); err != nil {
				return err
			}
		}

		u, token, err := application.Guard.Login(cmd.Context(), name, pw)
		if err != nil {
			return err
		}
		if err := application.SaveSession(token); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		fmt.Fprintln(out, success("Logged in as %s.", u.Username))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the current session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := application.ClearSession(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), success("Logged out."))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		u, err := requireSession(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", u.Username, u.Role)
		return nil
	},
}

// requireSession restores the saved session or fails with a hint to log in.
func requireSession(cmd *cobra.Command) (*models.User, error) {
	u, err := application.RestoreSession(cmd.Context())
	if errors.Is(err, auth.ErrNoSession) {
		return nil, fmt.Errorf("%w, run \"notes login\" first", auth.ErrNoSession)
	}
	return u, err
}

func init() {
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().StringVarP(&username, "username", "u", "", "username (prompted when empty)")
		c.Flags().StringVar(&password, "password", "", "password (prompted without echo when empty)")
	}
}

package auth

import (
	"fmt"

	"github.com/crucial707/hci-users/cmd/cli/client"
	"github.com/crucial707/hci-users/cmd/cli/config"
	"github.com/spf13/cobra"
)

// InitAuth registers token and logout on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(tokenCmd(), logoutCmd())
}

// tokenCmd exchanges username and password for a token and stores it locally.
func tokenCmd() *cobra.Command {
	var username, password string
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Get an auth token",
		Long:  "Authenticate with username and password and store the returned token for subsequent commands.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("--username is required")
			}

			token, err := client.New().Token(client.Credentials{Username: username, Password: password})
			if err != nil {
				return fmt.Errorf("failed to get token: %w", err)
			}
			if printOnly {
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			}
			if err := config.SaveToken(token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Token stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username to authenticate as")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the token instead of storing it")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the locally stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := config.DeleteToken()
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), "No token stored.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

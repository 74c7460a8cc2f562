package users

import (
	"fmt"
	"strconv"

	"github.com/crucial707/hci-users/cmd/cli/client"
	"github.com/crucial707/hci-users/cmd/cli/config"
	"github.com/crucial707/hci-users/cmd/cli/output"
	"github.com/crucial707/hci-users/cmd/cli/root"
	"github.com/spf13/cobra"
)

var userHeaders = []string{"ID", "Username", "Created"}

// ==========================
// CLI Command Init
// ==========================
func init() {
	root.GetRoot().AddCommand(usersCmd())
}

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List, show and register users",
	}
	cmd.AddCommand(listUsersCmd(), getUserCmd(), createUserCmd())
	return cmd
}

func userRow(u client.User) []interface{} {
	return []interface{}{u.ID, u.Username, u.CreatedAt.Local().Format("2006-01-02 15:04")}
}

// ==========================
// List Users
// ==========================
func listUsersCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := client.New().ListUsers()
			if err != nil {
				return err
			}
			if asJSON {
				return output.RenderJSON(cmd.OutOrStdout(), list)
			}
			rows := make([][]interface{}, 0, len(list))
			for _, u := range list {
				rows = append(rows, userRow(u))
			}
			output.RenderTable(cmd.OutOrStdout(), userHeaders, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}

// ==========================
// Get User
// ==========================
func getUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one user (requires a saved token)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			token, err := config.LoadToken()
			if err != nil {
				return err
			}
			u, err := client.New().GetUser(id, client.Credentials{Token: token})
			if err != nil {
				return err
			}
			output.RenderTable(cmd.OutOrStdout(), userHeaders, [][]interface{}{userRow(*u)})
			return nil
		},
	}
}

// ==========================
// Create User
// ==========================
func createUserCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password are required")
			}
			id, err := client.New().CreateUser(username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %q with id %d.\n", username, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Username to register (at most 150 characters)")
	cmd.Flags().StringVar(&password, "password", "", "Password for the new user (at most 72 bytes)")
	return cmd
}

package root

import (
	"github.com/spf13/cobra"
)

// RootCmd is the usersctl root command.
var RootCmd = &cobra.Command{
	Use:           "usersctl",
	Short:         "User accounts CLI",
	Long:          "Command line interface for the user accounts API. Set USERS_API_URL to point it at a server.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func GetRoot() *cobra.Command {
	return RootCmd
}

package main

import (
	"fmt"
	"os"

	"github.com/crucial707/hci-users/cmd/cli/auth"
	"github.com/crucial707/hci-users/cmd/cli/root"
	_ "github.com/crucial707/hci-users/cmd/cli/users"
)

func main() {
	rootCmd := root.GetRoot()
	auth.InitAuth(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <address>",
	Short: "Probe a server for its info",
	Long: `Probe the server at the given connection address, independent of any
active session.

Example:
  p4view info ssl:perforce.example.com:1666`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Show the current user",
	RunE:  runUser,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(userCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	res := app.Provider.RunInfoCommand(cmd.Context(), args[0])
	if !res.Success {
		return fmt.Errorf("info failed: %s", res.Error)
	}

	info := res.Data
	fmt.Printf("Server address: %s\n", info.ServerAddress)
	fmt.Printf("Server version: %s\n", info.ServerVersion)
	if info.ServerLicense != "" {
		fmt.Printf("License:        %s\n", info.ServerLicense)
	}
	if info.UserName != "" {
		fmt.Printf("User:           %s\n", info.UserName)
	}
	if info.ClientName != "" {
		fmt.Printf("Client:         %s\n", info.ClientName)
	}
	if info.ClientRoot != "" {
		fmt.Printf("Client root:    %s\n", info.ClientRoot)
	}
	return nil
}

func runUser(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	res := app.Provider.GetCurrentUser(cmd.Context())
	if !res.Success {
		return fmt.Errorf("failed to resolve current user: %s", res.Error)
	}

	fmt.Println(res.Data)
	return nil
}

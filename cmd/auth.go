package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginUser      string
	statusValidate bool
)

var loginCmd = &cobra.Command{
	Use:   "login <server-id>",
	Short: "Log in to a configured server",
	Long: `Log in to a configured server. The password is read from stdin.

Only one session can be active at a time; logging in to a second server
requires logging out of the first.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout <server-id>",
	Short: "Log out of a server",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)

	loginCmd.Flags().StringVar(&loginUser, "user", "", "Username to log in as")
	loginCmd.MarkFlagRequired("user")

	statusCmd.Flags().BoolVar(&statusValidate, "validate", false, "Check the ticket against the server and clear the session if invalid")
}

func runLogin(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	fmt.Fprint(os.Stderr, "Password: ")
	reader := bufio.NewReader(cmd.InOrStdin())
	password, err := reader.ReadString('\n')
	if err != nil && password == "" {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password = strings.TrimRight(password, "\r\n")

	result := app.Auth.Login(cmd.Context(), args[0], loginUser, password)
	if result.NeedsLogout {
		return fmt.Errorf("already logged in to server %s, run 'p4view logout %s' first",
			result.CurrentServerID, result.CurrentServerID)
	}
	if !result.Success {
		return fmt.Errorf("login failed: %s", result.Error)
	}

	fmt.Printf("Logged in to %s as %s\n", args[0], loginUser)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	res := app.Auth.Logout(cmd.Context(), args[0])
	if !res.Success {
		return fmt.Errorf("logout failed: %s", res.Error)
	}

	fmt.Println("Logged out")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	if statusValidate {
		res := app.Auth.ValidateSession(cmd.Context())
		if !res.Success {
			return fmt.Errorf("validation failed: %s", res.Error)
		}
		if !res.Data {
			fmt.Println("Not logged in (session invalid or expired)")
			return nil
		}
	}

	status := app.Auth.GetSessionStatus()
	if !status.IsLoggedIn {
		fmt.Println("Not logged in")
		return nil
	}

	name := status.ServerName
	if name == "" {
		name = status.ServerID
	}
	fmt.Printf("Logged in to %s as %s\n", name, status.Username)
	return nil
}

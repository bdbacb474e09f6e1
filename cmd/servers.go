package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sgrant/p4view/internal/discovery"
	"github.com/sgrant/p4view/internal/store"
)

var (
	addName        string
	addDescription string
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "Manage the list of known servers",
}

var serversListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known servers",
	RunE:  runServersList,
}

var serversAddCmd = &cobra.Command{
	Use:   "add <address>",
	Short: "Add a server by connection address",
	Args:  cobra.ExactArgs(1),
	RunE:  runServersAdd,
}

var serversRemoveCmd = &cobra.Command{
	Use:   "remove <server-id>",
	Short: "Remove a server",
	Args:  cobra.ExactArgs(1),
	RunE:  runServersRemove,
}

var serversDiscoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover servers from the environment and ticket files",
	Long: `Discover servers from the P4PORT environment variable and from the
hosts referenced by credential tickets. New servers are added to the
known list; sessions are recovered from valid tickets where possible.`,
	RunE: runServersDiscover,
}

func init() {
	rootCmd.AddCommand(serversCmd)
	serversCmd.AddCommand(serversListCmd)
	serversCmd.AddCommand(serversAddCmd)
	serversCmd.AddCommand(serversRemoveCmd)
	serversCmd.AddCommand(serversDiscoverCmd)

	serversAddCmd.Flags().StringVar(&addName, "name", "", "Display name (default: derived from the address)")
	serversAddCmd.Flags().StringVar(&addDescription, "description", "", "Optional description")
}

func runServersList(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	servers, err := app.Servers.List()
	if err != nil {
		return fmt.Errorf("failed to list servers: %w", err)
	}

	if len(servers) == 0 {
		fmt.Println("No servers configured")
		return nil
	}

	status := app.Auth.GetSessionStatus()
	for _, s := range servers {
		marker := " "
		if status.IsLoggedIn && status.ServerID == s.ID {
			marker = "*"
		}
		fmt.Printf("%s %s  %s  %s\n", marker, s.ID, s.Name, s.Address)
	}
	return nil
}

func runServersAdd(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	address := args[0]
	name := addName
	if name == "" {
		name = defaultServerName(address)
	}

	existing, err := app.Servers.FindByAddress(address)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("a server with address %s already exists (%s)", address, existing.ID)
	}

	srv, err := app.Servers.Add(name, address, addDescription)
	if err != nil {
		return fmt.Errorf("failed to add server: %w", err)
	}

	fmt.Printf("Added server %s (%s)\n", srv.Name, srv.ID)
	return nil
}

func runServersRemove(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	removed, err := app.Servers.Remove(args[0])
	if err != nil {
		return fmt.Errorf("failed to remove server: %w", err)
	}
	if !removed {
		return fmt.Errorf("server %s not found", args[0])
	}

	fmt.Println("Server removed")
	return nil
}

func runServersDiscover(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	result := app.Discovery.DiscoverServers(cmd.Context())

	printCreated(result.Created)
	if result.Recovered > 0 {
		fmt.Printf("Recovered %d session(s)\n", result.Recovered)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", e)
	}
	return nil
}

// defaultServerName derives a display name from the connection address.
func defaultServerName(address string) string {
	return discovery.ExtractServerName(address)
}

func printCreated(created []store.ServerConfig) {
	if len(created) == 0 {
		fmt.Println("No new servers discovered")
		return
	}
	for _, s := range created {
		fmt.Printf("Added server %s (%s) at %s\n", s.Name, s.ID, s.Address)
	}
}

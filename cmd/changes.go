package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sgrant/p4view/internal/ztag"
)

var (
	changesPending bool
	changesMax     int
	changesUser    string
	changesPath    string
)

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "List submitted or pending changelists",
	Long: `List changelists from the server.

Examples:
  p4view changes
  p4view changes --max 20 --path //depot/main/...
  p4view changes --pending
  p4view changes --pending --user alice`,
	RunE: runChanges,
}

func init() {
	rootCmd.AddCommand(changesCmd)

	changesCmd.Flags().BoolVar(&changesPending, "pending", false, "Show pending changelists instead of submitted")
	changesCmd.Flags().IntVar(&changesMax, "max", 0, "Maximum number of changelists to list")
	changesCmd.Flags().StringVar(&changesUser, "user", "", "Filter pending changelists by user (default: current user)")
	changesCmd.Flags().StringVar(&changesPath, "path", "", "Filter by depot path (e.g. //depot/main/...)")
}

func runChanges(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	var changes []ztag.ChangelistInfo
	if changesPending {
		res := app.Provider.GetPendingChanges(cmd.Context(), changesUser)
		if !res.Success {
			return fmt.Errorf("failed to list pending changes: %s", res.Error)
		}
		changes = res.Data
	} else {
		res := app.Provider.GetSubmittedChanges(cmd.Context(), changesMax, changesPath)
		if !res.Success {
			return fmt.Errorf("failed to list submitted changes: %s", res.Error)
		}
		changes = res.Data
	}

	if len(changes) == 0 {
		fmt.Println("No changelists found")
		return nil
	}

	for _, c := range changes {
		desc := c.Description
		if idx := strings.IndexByte(desc, '\n'); idx >= 0 {
			desc = desc[:idx]
		}
		fmt.Printf("%d  %s  %s@%s  %s\n",
			c.ID, c.Date.Format("2006-01-02"), c.User, c.Client, desc)
	}
	return nil
}

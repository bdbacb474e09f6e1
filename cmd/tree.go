package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sgrant/p4view/internal/tree"
)

var treeDepth int

var treeCmd = &cobra.Command{
	Use:   "tree [root]",
	Short: "Show the workspace directory tree",
	Long: `Show the directory tree under the given root, bounded by --depth.
Without an argument the workspace root is resolved from the server.

Directories at the depth boundary are marked with "..." because their
contents have not been explored.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)

	treeCmd.Flags().IntVar(&treeDepth, "depth", 2, "How many directory levels to descend")
}

func runTree(cmd *cobra.Command, args []string) error {
	app, err := newAppContext()
	if err != nil {
		return err
	}

	var root string
	if len(args) > 0 {
		root = args[0]
	} else {
		res := tree.WorkspaceRoot(cmd.Context(), app.Provider)
		if !res.Success {
			return fmt.Errorf("failed to resolve workspace root: %s", res.Error)
		}
		root = res.Data
	}

	result := tree.Explore(root, treeDepth, tree.NewFSWalker())
	if !result.Success {
		return fmt.Errorf("failed to walk %s: %s", root, result.Error)
	}

	fmt.Println(root)
	printTree(result.Data, 1)
	return nil
}

func printTree(nodes []*tree.DirEntry, indent int) {
	prefix := strings.Repeat("  ", indent)
	for _, node := range nodes {
		suffix := "/"
		if node.Children == nil {
			// Not explored to this depth.
			suffix = "/..."
		}
		fmt.Printf("%s%s%s\n", prefix, node.Name, suffix)
		for _, f := range node.Files {
			fmt.Printf("%s  %s\n", prefix, f)
		}
		printTree(node.Children, indent+1)
	}
}

package tree

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/LegacyCodeHQ/includeparser/cmd/cmdutil"
	"github.com/LegacyCodeHQ/includeparser/includetree"
	"github.com/spf13/cobra"
)

type treeOptions struct {
	process         cmdutil.ProcessFlags
	asJSON          bool
	copyToClipboard bool
}

// NewCommand returns a new tree command instance.
func NewCommand() *cobra.Command {
	opts := &treeOptions{}

	cmd := &cobra.Command{
		Use:   "tree <file>",
		Short: "Print the include tree of a file",
		Long: `Preprocess a file and print the includes it pulled in, nested by include depth.
Includes that could not be resolved are marked as not found.

Examples:
  includeparser tree main.cpp -I vendor
  includeparser tree main.cpp --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd, args[0], opts)
		},
	}

	opts.process.Register(cmd)
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print the tree as JSON")
	cmd.Flags().BoolVarP(&opts.copyToClipboard, "clipboard", "b", false, "Automatically copy output to clipboard")

	return cmd
}

func runTree(cmd *cobra.Command, input string, opts *treeOptions) error {
	session, err := opts.process.Run(cmdutil.Logger(cmd), input)
	if err != nil {
		return err
	}
	root := session.IncludeTree()

	var sb strings.Builder
	if opts.asJSON {
		data, err := json.MarshalIndent(root, "", "  ")
		if err != nil {
			return err
		}
		sb.Write(data)
	} else {
		if err := includetree.Render(&sb, root); err != nil {
			return err
		}
	}

	if err := cmdutil.Emit(cmd, strings.TrimSuffix(sb.String(), "\n"), opts.copyToClipboard); err != nil {
		return err
	}

	if missing := root.Unresolved(); len(missing) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d include(s) not found: %s\n", len(missing), strings.Join(missing, ", "))
	}
	return nil
}

package why

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/LegacyCodeHQ/includeparser/cmd/cmdutil"
	"github.com/LegacyCodeHQ/includeparser/cmd/graph/formatters"
	"github.com/LegacyCodeHQ/includeparser/depgraph"
	"github.com/LegacyCodeHQ/includeparser/resolver"
	"github.com/spf13/cobra"
)

type whyOptions struct {
	process   cmdutil.ProcessFlags
	static    bool
	maxChains int
}

// NewCommand returns a new why command instance.
func NewCommand() *cobra.Command {
	opts := &whyOptions{maxChains: 10}

	cmd := &cobra.Command{
		Use:   "why <file> <header>",
		Short: "Show the include chains that pull a header into a file",
		Long: `Show every chain of includes through which <file> ends up including <header>,
shortest first. <header> may be a path or, for includes that were not found, the
spelling used in the source.

Examples:
  includeparser why main.cpp vendor/foo.hpp -I vendor
  includeparser why main.cpp missing.h --static`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhy(cmd, opts, args[0], args[1])
		},
	}

	opts.process.Register(cmd)
	cmd.Flags().BoolVar(&opts.static, "static", false, "Scan include directives without preprocessing")
	cmd.Flags().IntVarP(&opts.maxChains, "max", "n", opts.maxChains, "Maximum number of chains to print (0 for all)")

	return cmd
}

func runWhy(cmd *cobra.Command, opts *whyOptions, fileArg, headerArg string) error {
	logger := cmdutil.Logger(cmd)
	file, err := filepath.Abs(fileArg)
	if err != nil {
		return fmt.Errorf("failed to resolve path %s: %w", fileArg, err)
	}

	var g *depgraph.IncludeGraph
	if opts.static {
		cfg, err := opts.process.Config()
		if err != nil {
			return err
		}
		g, err = depgraph.Scan(cmd.Context(), []string{file}, depgraph.ScanOptions{
			SearchDirs: resolver.SplitSearchDirs(cfg.IncludeDirectories(opts.process.IncludeDirs)),
			SkipDirs:   cfg.SkipDirectories(nil),
			Logger:     logger,
		})
		if err != nil {
			return fmt.Errorf("failed to build include graph: %w", err)
		}
	} else {
		session, err := opts.process.Run(logger, file)
		if err != nil {
			return err
		}
		if g, err = depgraph.FromTree(session.IncludeTree()); err != nil {
			return err
		}
	}

	header, ok := findNode(g, headerArg)
	if !ok {
		return fmt.Errorf("%s is not included by %s", headerArg, fileArg)
	}

	chains, err := g.Chains(file, header)
	if err != nil {
		return err
	}
	if len(chains) == 0 {
		return fmt.Errorf("%s is not included by %s", headerArg, fileArg)
	}

	names := formatters.BuildNodeNames(formatters.NodeIDs(g))
	out := cmd.OutOrStdout()
	shown := chains
	if opts.maxChains > 0 && len(shown) > opts.maxChains {
		shown = shown[:opts.maxChains]
	}
	for _, chain := range shown {
		parts := make([]string, len(chain))
		for i, id := range chain {
			parts[i] = names[id]
		}
		fmt.Fprintln(out, strings.Join(parts, " -> "))
	}
	if len(shown) < len(chains) {
		fmt.Fprintf(out, "... %d more chain(s)\n", len(chains)-len(shown))
	}
	return nil
}

// findNode matches arg against resolved paths first, then against unresolved spellings.
func findNode(g *depgraph.IncludeGraph, arg string) (string, bool) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		abs = arg
	}
	for _, n := range g.Nodes() {
		if n.Resolved && n.ID == abs {
			return n.ID, true
		}
	}
	for _, n := range g.Nodes() {
		if !n.Resolved && n.ID == arg {
			return n.ID, true
		}
	}
	return "", false
}

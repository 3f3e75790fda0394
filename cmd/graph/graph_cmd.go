package graph

import (
	"fmt"
	"path/filepath"

	"github.com/LegacyCodeHQ/includeparser/cmd/cmdutil"
	"github.com/LegacyCodeHQ/includeparser/cmd/graph/formatters"
	"github.com/LegacyCodeHQ/includeparser/depgraph"
	"github.com/LegacyCodeHQ/includeparser/preprocess"
	"github.com/LegacyCodeHQ/includeparser/resolver"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type graphOptions struct {
	process         cmdutil.ProcessFlags
	outputFormat    string
	static          bool
	skipDirs        []string
	between         []string
	label           string
	generateURL     bool
	copyToClipboard bool
}

// NewCommand returns a new graph command instance.
func NewCommand() *cobra.Command {
	opts := &graphOptions{}

	cmd := &cobra.Command{
		Use:   "graph <files...>",
		Short: "Generate an include graph for source files",
		Long: `Generate an include graph for one or more source files.

By default each file is preprocessed and the graph follows the includes that were
actually active. With --static the includes are read directly from the sources,
every conditional branch counts, and no macros are applied.

Examples:
  includeparser graph main.cpp -I vendor
  includeparser graph src/a.c src/b.c -f mermaid
  includeparser graph main.cpp --static --skip /usr/include -f dgml
  includeparser graph main.cpp -w main.cpp,vendor/foo.hpp   # include paths between files
  includeparser graph main.cpp -u                # generate visualization URL`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, args, opts)
		},
	}

	opts.process.Register(cmd)
	cmd.Flags().StringVarP(&opts.outputFormat, "format", "f", "",
		fmt.Sprintf("Output format (%s) (default %q)", formatters.SupportedFormats(), formatters.OutputFormatDOT))
	cmd.Flags().BoolVar(&opts.static, "static", false, "Scan include directives without preprocessing")
	cmd.Flags().StringSliceVar(&opts.skipDirs, "skip", nil, "Directories whose files are not scanned further (with --static)")
	cmd.Flags().StringSliceVarP(&opts.between, "between", "w", nil, "Keep only include paths between these files (comma-separated)")
	cmd.Flags().StringVarP(&opts.label, "label", "l", "", "Graph title")
	cmd.Flags().BoolVarP(&opts.generateURL, "url", "u", false, "Generate visualization URL (supported formats: dot, mermaid)")
	cmd.Flags().BoolVarP(&opts.copyToClipboard, "clipboard", "b", false, "Automatically copy output to clipboard")

	return cmd
}

func runGraph(cmd *cobra.Command, files []string, opts *graphOptions) error {
	logger := cmdutil.Logger(cmd)

	cfg, err := opts.process.Config()
	if err != nil {
		return err
	}
	format := opts.outputFormat
	if format == "" {
		format = cfg.Format
	}
	if format == "" {
		format = formatters.OutputFormatDOT.String()
	}
	formatter, err := NewFormatter(format)
	if err != nil {
		return err
	}

	var g *depgraph.IncludeGraph
	if opts.static {
		g, err = depgraph.Scan(cmd.Context(), files, depgraph.ScanOptions{
			SearchDirs: resolver.SplitSearchDirs(cfg.IncludeDirectories(opts.process.IncludeDirs)),
			SkipDirs:   cfg.SkipDirectories(opts.skipDirs),
			Logger:     logger,
		})
	} else {
		g, err = buildFromSessions(cmd, files, opts, logger)
	}
	if err != nil {
		return fmt.Errorf("failed to build include graph: %w", err)
	}

	if len(opts.between) > 0 {
		if g, err = filterBetween(g, opts.between); err != nil {
			return err
		}
	}

	label := opts.label
	if label == "" && len(files) == 1 {
		label = filepath.Base(files[0])
	}

	output, err := formatter.Format(g, formatters.RenderOptions{Label: label})
	if err != nil {
		return fmt.Errorf("failed to format graph: %w", err)
	}

	if opts.generateURL {
		if urlStr, ok := formatter.GenerateURL(output); ok {
			output = urlStr
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: URL generation is not supported for %s format\n\n", format)
		}
	}
	return cmdutil.Emit(cmd, output, opts.copyToClipboard)
}

func buildFromSessions(cmd *cobra.Command, files []string, opts *graphOptions, logger *zap.Logger) (*depgraph.IncludeGraph, error) {
	g := depgraph.NewIncludeGraph()
	for _, file := range files {
		session, err := opts.process.Run(logger, file)
		if err != nil {
			return nil, err
		}
		if session.Result == preprocess.Failure {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s processed with errors:\n%s\n", file, session.Log)
		}
		if err := g.AddTree(session.IncludeTree()); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func filterBetween(g *depgraph.IncludeGraph, files []string) (*depgraph.IncludeGraph, error) {
	known := make(map[string]bool)
	for _, n := range g.Nodes() {
		known[n.ID] = true
	}

	var targets, missing []string
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %s: %w", f, err)
		}
		if !known[abs] {
			missing = append(missing, f)
			continue
		}
		targets = append(targets, abs)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("files not found in graph: %v", missing)
	}
	if len(targets) < 2 {
		return nil, fmt.Errorf("at least 2 files required for --between, found %d in graph", len(targets))
	}
	return g.Between(targets)
}

// Package cmdutil holds what the includeparser subcommands share: the session logger,
// project config, preprocessing runs and output handling.
package cmdutil

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/LegacyCodeHQ/includeparser/config"
	"github.com/LegacyCodeHQ/includeparser/includetree"
	"github.com/LegacyCodeHQ/includeparser/preprocess"
	"github.com/LegacyCodeHQ/includeparser/registry"
	"github.com/LegacyCodeHQ/includeparser/resolver"
	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type loggerKey struct{}

// WithLogger stores logger in ctx for subcommands to pick up.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger returns the command's logger, or a no-op logger when none was set.
func Logger(cmd *cobra.Command) *zap.Logger {
	if ctx := cmd.Context(); ctx != nil {
		if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
			return logger
		}
	}
	return zap.NewNop()
}

// ProcessFlags are the preprocessing flags shared by parse, tree, graph and watch.
type ProcessFlags struct {
	IncludeDirs []string
	Defines     []string
	ConfigPath  string
}

// Register adds the flags to cmd.
func (f *ProcessFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.IncludeDirs, "include-dirs", "I", nil, "Include search directories, repeatable or ';'-separated")
	cmd.Flags().StringArrayVarP(&f.Defines, "defines", "D", nil, "Macro definitions (NAME, NAME=VALUE), repeatable or ';'-separated")
	cmd.Flags().StringVar(&f.ConfigPath, "config", "", "Config file (default: nearest "+config.FileName+")")
}

// Config loads the explicit config file, or the nearest one above the working directory.
func (f *ProcessFlags) Config() (*config.Config, error) {
	if f.ConfigPath != "" {
		return config.Load(f.ConfigPath)
	}
	return config.Discover(".")
}

// Session is the text of one preprocessing run.
type Session struct {
	Input  string
	Result preprocess.Result
	Output string
	Tree   string
	Log    string
	// SearchDirs are the include directories the run searched, in order.
	SearchDirs []string
}

// IncludeTree parses the session's include tree below its input file.
func (s Session) IncludeTree() *includetree.Item {
	return includetree.Parse(s.Input, s.Tree)
}

// Run preprocesses input with the flag and config settings and reads back every result.
func (f *ProcessFlags) Run(logger *zap.Logger, input string) (Session, error) {
	cfg, err := f.Config()
	if err != nil {
		return Session{}, err
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return Session{}, fmt.Errorf("failed to resolve path %s: %w", input, err)
	}

	includeDirs := cfg.IncludeDirectories(f.IncludeDirs)
	reg := registry.New()
	parser := preprocess.New(reg, preprocess.WithLogger(logger))
	result, handles := parser.ParseIncludes(abs, includeDirs, cfg.DefineList(f.Defines))

	s := Session{Input: abs, Result: result, SearchDirs: resolver.SplitSearchDirs(includeDirs)}
	for _, read := range []struct {
		h   registry.Handle
		dst *string
	}{
		{handles.Output, &s.Output},
		{handles.Tree, &s.Tree},
		{handles.Log, &s.Log},
	} {
		if *read.dst, err = reg.Resolve(read.h); err != nil {
			return Session{}, err
		}
	}
	return s, nil
}

// Emit prints output and optionally copies it to the clipboard.
func Emit(cmd *cobra.Command, output string, copyToClipboard bool) error {
	fmt.Fprintln(cmd.OutOrStdout(), output)
	if !copyToClipboard {
		return nil
	}
	if err := clipboard.WriteAll(output); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "Content copied to your clipboard.")
	return nil
}

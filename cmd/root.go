package cmd

import (
	"os"

	"github.com/LegacyCodeHQ/includeparser/cmd/cmdutil"
	"github.com/LegacyCodeHQ/includeparser/cmd/graph"
	"github.com/LegacyCodeHQ/includeparser/cmd/parse"
	"github.com/LegacyCodeHQ/includeparser/cmd/tree"
	"github.com/LegacyCodeHQ/includeparser/cmd/watch"
	"github.com/LegacyCodeHQ/includeparser/cmd/why"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set via build-time ldflags
var version = "dev"

// buildDate is set via build-time ldflags
var buildDate = "unknown"

// commit is set via build-time ldflags
var commit = "unknown"

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = NewRootCommand()

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "includeparser",
		Short: "Resolve, inspect and graph C/C++ includes",
		Long: `includeparser preprocesses C and C++ files, resolving #include directives
against a list of search directories, and reports the expanded output, the
include tree and any processing errors.

Use 'includeparser --help' to see all available commands, or
'includeparser <command> --help' for detailed information about a specific command.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(verbose)
			if err != nil {
				return err
			}
			cmd.SetContext(cmdutil.WithLogger(cmd.Context(), logger))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = cmdutil.Logger(cmd).Sync()
		},
	}

	cmd.AddCommand(parse.NewCommand())
	cmd.AddCommand(tree.NewCommand())
	cmd.AddCommand(graph.NewCommand())
	cmd.AddCommand(watch.NewCommand())
	cmd.AddCommand(why.NewCommand())

	cmd.Annotations = map[string]string{
		"buildDate": buildDate,
		"commit":    commit,
	}
	cmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
Build date: {{printf "%s" (index .Annotations "buildDate")}}
Commit: {{printf "%s" (index .Annotations "commit")}}
`)

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	return cfg.Build()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

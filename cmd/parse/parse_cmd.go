package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/LegacyCodeHQ/includeparser/cmd/cmdutil"
	"github.com/LegacyCodeHQ/includeparser/preprocess"
	"github.com/spf13/cobra"
)

// ErrProcessingFailed is returned when the session logged at least one error.
var ErrProcessingFailed = errors.New("processing failed")

const (
	showOutput = "output"
	showTree   = "tree"
	showLog    = "log"
)

type parseOptions struct {
	process         cmdutil.ProcessFlags
	show            []string
	copyToClipboard bool
}

// NewCommand returns a new parse command instance.
func NewCommand() *cobra.Command {
	opts := &parseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Preprocess a file and print its output, include tree or log",
		Long: `Preprocess a C or C++ file, resolving includes against the include directories.

Examples:
  includeparser parse main.cpp -I vendor -I /usr/include
  includeparser parse main.cpp -I "vendor;third_party" -D "DEBUG;LEVEL=2"
  includeparser parse main.cpp --show tree,log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args[0], opts)
		},
	}

	opts.process.Register(cmd)
	cmd.Flags().StringSliceVarP(&opts.show, "show", "s", []string{showOutput},
		fmt.Sprintf("Results to print (%s, %s, %s)", showOutput, showTree, showLog))
	cmd.Flags().BoolVarP(&opts.copyToClipboard, "clipboard", "b", false, "Automatically copy output to clipboard")

	return cmd
}

func runParse(cmd *cobra.Command, input string, opts *parseOptions) error {
	for _, s := range opts.show {
		if s != showOutput && s != showTree && s != showLog {
			return fmt.Errorf("unknown result: %s (valid options: %s, %s, %s)", s, showOutput, showTree, showLog)
		}
	}

	session, err := opts.process.Run(cmdutil.Logger(cmd), input)
	if err != nil {
		return err
	}

	var parts []string
	for _, s := range opts.show {
		switch s {
		case showOutput:
			parts = append(parts, session.Output)
		case showTree:
			parts = append(parts, session.Tree)
		case showLog:
			parts = append(parts, session.Log)
		}
	}
	if err := cmdutil.Emit(cmd, strings.Join(parts, "\n"), opts.copyToClipboard); err != nil {
		return err
	}

	if session.Result == preprocess.Failure {
		if !contains(opts.show, showLog) && session.Log != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), session.Log)
		}
		return ErrProcessingFailed
	}
	return nil
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

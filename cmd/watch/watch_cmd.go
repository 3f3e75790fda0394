package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/LegacyCodeHQ/includeparser/cmd/cmdutil"
	"github.com/LegacyCodeHQ/includeparser/cmd/graph/formatters"
	"github.com/LegacyCodeHQ/includeparser/cmd/graph/formatters/dot"
	"github.com/LegacyCodeHQ/includeparser/depgraph"
	"github.com/LegacyCodeHQ/includeparser/includetree"
	"github.com/LegacyCodeHQ/includeparser/preprocess"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type watchOptions struct {
	process cmdutil.ProcessFlags
	port    int
}

// NewCommand returns a new watch command instance.
func NewCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-run preprocessing whenever an included file changes",
		Long: `Preprocess a file, print its include tree, and run again whenever the file or
anything it includes changes. With --port the include graph is also served as a
live-updating page at localhost.

Examples:
  includeparser watch main.cpp -I vendor
  includeparser watch main.cpp -I vendor --port 4900`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return runWatch(ctx, cmd, args[0], opts)
		},
	}

	opts.process.Register(cmd)
	cmd.Flags().IntVarP(&opts.port, "port", "P", 0, "Serve a live include graph on this HTTP port")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, input string, opts *watchOptions) error {
	logger := cmdutil.Logger(cmd)
	s := &watchSession{
		process: &opts.process,
		input:   input,
		out:     cmd.OutOrStdout(),
		logger:  logger,
	}

	if opts.port > 0 {
		s.broker = newBroker()
		srv := newServer(s.broker, opts.port)
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on port %d: %w", opts.port, err)
		}
		go func() {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("viewer server stopped", zap.Error(err))
			}
		}()
		defer srv.Close()
		fmt.Fprintf(cmd.ErrOrStderr(), "Serving at http://localhost:%d\n", opts.port)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s, press Ctrl+C to stop\n", input)
	return watchAndRebuild(ctx, s.rebuild, logger)
}

// watchSession prints each run and publishes it to the viewer, if one is served.
type watchSession struct {
	process *cmdutil.ProcessFlags
	input   string
	out     io.Writer
	logger  *zap.Logger
	broker  *broker
}

func (s *watchSession) rebuild() ([]string, error) {
	session, err := s.process.Run(s.logger, s.input)
	if err != nil {
		return nil, err
	}
	root := session.IncludeTree()

	fmt.Fprintf(s.out, "=== %s: %s\n", s.input, session.Result)
	if err := includetree.Render(s.out, root); err != nil {
		return nil, err
	}
	if session.Result == preprocess.Failure {
		fmt.Fprintln(s.out, session.Log)
	}

	if s.broker != nil {
		if err := s.publish(root, session.Result); err != nil {
			s.logger.Warn("failed to render include graph", zap.Error(err))
		}
	}

	return append(root.Files(), missingCandidates(root, session.SearchDirs)...), nil
}

// missingCandidates returns every path at which an unresolved include of root would be
// found once it exists, so creating the file triggers a rerun. Paths whose directory
// does not exist are left out.
func missingCandidates(root *includetree.Item, searchDirs []string) []string {
	var paths []string
	add := func(path string) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if info, err := os.Stat(filepath.Dir(abs)); err == nil && info.IsDir() {
			paths = append(paths, abs)
		}
	}

	var visit func(includer *includetree.Item)
	visit = func(includer *includetree.Item) {
		for _, child := range includer.Children {
			if !child.NotFound {
				visit(child)
				continue
			}
			add(child.Spelling)
			if filepath.IsAbs(child.Spelling) {
				continue
			}
			add(filepath.Join(filepath.Dir(includer.Path), child.Spelling))
			for _, dir := range searchDirs {
				add(filepath.Join(dir, child.Spelling))
			}
		}
	}
	visit(root)
	return paths
}

func (s *watchSession) publish(root *includetree.Item, result preprocess.Result) error {
	g, err := depgraph.FromTree(root)
	if err != nil {
		return err
	}
	formatter := dot.Formatter{}
	out, err := formatter.Format(g, formatters.RenderOptions{})
	if err != nil {
		return err
	}

	status := result.String()
	if missing := len(g.Unresolved()); missing > 0 {
		status = fmt.Sprintf("%s, %d include(s) not found", status, missing)
	}
	s.broker.publish(update{DOT: out, Status: status})
	return nil
}

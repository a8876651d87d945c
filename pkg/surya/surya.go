// Package surya runs the external structural call-graph tool.
//
// The tool is invoked as "<bin> [args...] graph <paths...>" and prints the
// call graph of the given Solidity files as Graphviz DOT on stdout.
package surya

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/auditgraph/pkg/errors"
)

// DefaultBin is the tool's executable name.
const DefaultBin = "surya"

// waitDelay bounds how long a cancelled run may hold its output pipes.
const waitDelay = 2 * time.Second

// Tool describes how to run the structural graph tool. Args are placed
// before the "graph" subcommand, e.g. Bin "node" with Args
// ["node_modules/surya/bin/surya"].
type Tool struct {
	Bin    string
	Args   []string
	Logger *log.Logger
}

func (t Tool) bin() string {
	if t.Bin == "" {
		return DefaultBin
	}
	return t.Bin
}

func (t Tool) logger() *log.Logger {
	if t.Logger == nil {
		return log.New(io.Discard)
	}
	return t.Logger
}

// Command returns the executable and the arguments placed before the
// subcommand.
func (t Tool) Command() (string, []string) {
	return t.bin(), t.Args
}

// Available reports whether the tool's executable can be found.
func (t Tool) Available() bool {
	_, err := exec.LookPath(t.bin())
	return err == nil
}

// Graph runs the tool on paths and returns its DOT output.
//
// A failing run that still printed a graph is accepted and its stderr
// logged. A run that printed nothing fails with EXTERNAL_TOOL and the
// tool's stderr as details.
func (t Tool) Graph(ctx context.Context, paths []string) (string, error) {
	if len(paths) == 0 {
		return "", errors.New(errors.ErrCodeInvalidInput, "no source files to graph")
	}
	bin, err := exec.LookPath(t.bin())
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeToolNotFound, err, "%s not found", t.bin())
	}

	args := append(append([]string{}, t.Args...), "graph")
	args = append(args, paths...)
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	runErr := cmd.Run()
	out := stdout.String()
	diag := strings.TrimSpace(stderr.String())

	if ctx.Err() != nil {
		return "", errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "%s graph interrupted", t.bin())
	}
	if strings.TrimSpace(out) == "" {
		cause := runErr
		if cause == nil {
			cause = errors.New(errors.ErrCodeExternalTool, "empty output")
		}
		return "", errors.Wrap(errors.ErrCodeExternalTool, cause, "%s graph failed", t.bin()).WithDetails(diag)
	}
	if runErr != nil || diag != "" {
		t.logger().Warn("structural graph tool reported problems", "tool", t.bin(), "err", runErr, "stderr", diag)
	}
	return out, nil
}

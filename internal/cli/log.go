// Package cli implements the convgraph command-line interface.
//
// The commands inspect a conversion registry populated with the builtin and
// cty converters plus the aliases of the user's configuration. The CLI is
// built using cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - find: Show the converter resolved between two types
//   - convert: Convert a literal HCL expression to a type
//   - tree, graph, explore: Inspect the conversion tree of a type
//   - types: List the type names the catalog knows
//   - serve: Run the debug HTTP server
//   - cache: Manage the render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which includes
// every resolution the registry performs.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered graph (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

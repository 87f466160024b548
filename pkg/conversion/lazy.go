package conversion

import (
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/convgraph/pkg/typedecl"
)

// LazyConverter stands for the converter between two types and resolves it
// on first use. When resolution fails it turns into a [FailingConverter] for
// good: the failure is logged once, observers are notified once, and every
// later invocation panics with an UNSUPPORTED error.
type LazyConverter struct {
	input  typedecl.Type
	output typedecl.Type
	lookup Lookup
	logger *log.Logger

	mu        sync.Mutex
	resolved  Converter
	failed    *FailingConverter
	observers []func(input, output typedecl.Type)
}

// NewLazy returns a converter from input to output resolved through lookup
// on first use. A nil logger uses log.Default().
func NewLazy(input, output typedecl.Type, lookup Lookup, logger *log.Logger) *LazyConverter {
	if logger == nil {
		logger = log.Default()
	}
	return &LazyConverter{input: input, output: output, lookup: lookup, logger: logger}
}

// LazyOf returns an already resolved lazy converter wrapping c.
func LazyOf(c Converter) *LazyConverter {
	return &LazyConverter{input: c.Input(), output: c.Output(), resolved: c, logger: log.Default()}
}

func (c *LazyConverter) Input() typedecl.Type  { return c.input }
func (c *LazyConverter) Output() typedecl.Type { return c.output }
func (c *LazyConverter) Lazy() bool            { return false }

// AcceptsNilInput reports the resolved converter's setting. It does not
// trigger resolution and is false before it.
func (c *LazyConverter) AcceptsNilInput() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolved != nil && c.resolved.AcceptsNilInput()
}

// Init resolves the converter if that has not happened yet. It returns the
// UNSUPPORTED error of a failed resolution, now or from an earlier call.
func (c *LazyConverter) Init() error {
	c.mu.Lock()
	switch {
	case c.resolved != nil:
		c.mu.Unlock()
		return nil
	case c.failed != nil:
		c.mu.Unlock()
		return c.failed.Err()
	}
	c.mu.Unlock()

	// The lookup may take its own locks, so it runs without holding c.mu.
	var found Converter
	if c.lookup != nil {
		found = c.lookup.Find(c.input, c.output)
	}

	c.mu.Lock()
	if c.resolved != nil || c.failed != nil {
		// Another goroutine finished first.
		err := c.errLocked()
		c.mu.Unlock()
		return err
	}
	if found != nil {
		c.resolved = found
		c.mu.Unlock()
		return nil
	}
	c.failed = NotFound(c.input, c.output)
	observers := c.observers
	c.observers = nil
	c.mu.Unlock()

	c.logger.Warn("lazy converter unavailable", "input", c.input, "output", c.output)
	for _, fn := range observers {
		fn(c.input, c.output)
	}
	return c.failed.Err()
}

func (c *LazyConverter) errLocked() error {
	if c.failed != nil {
		return c.failed.Err()
	}
	return nil
}

// Available resolves the converter and reports whether it exists.
func (c *LazyConverter) Available() bool {
	return c.Init() == nil
}

// Err returns the recorded resolution failure without attempting resolution.
func (c *LazyConverter) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errLocked()
}

// Resolved returns the resolved converter, or nil before resolution and after
// a failure.
func (c *LazyConverter) Resolved() Converter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolved
}

// WhenFailing registers fn to be called once when resolution fails. If it
// already failed, fn is called immediately.
func (c *LazyConverter) WhenFailing(fn func(input, output typedecl.Type)) {
	c.mu.Lock()
	if c.failed == nil {
		c.observers = append(c.observers, fn)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	fn(c.input, c.output)
}

// ConvertInput resolves the converter and applies it. It panics with the
// UNSUPPORTED error when no converter exists.
func (c *LazyConverter) ConvertInput(value any) (any, bool) {
	if err := c.Init(); err != nil {
		panic(err)
	}
	c.mu.Lock()
	resolved := c.resolved
	c.mu.Unlock()
	if value == nil && !resolved.AcceptsNilInput() {
		return nil, false
	}
	return resolved.ConvertInput(value)
}

func (c *LazyConverter) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.resolved != nil:
		return "Lazy{" + c.resolved.String() + "}"
	case c.failed != nil:
		return "Lazy{" + c.failed.String() + "}"
	}
	return "Lazy{" + c.input.String() + " -> " + c.output.String() + "}"
}

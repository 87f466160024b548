package conversion

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/convgraph/pkg/errors"
	"github.com/matzehuels/convgraph/pkg/observability"
	"github.com/matzehuels/convgraph/pkg/typedecl"
)

// pair identifies a resolution request.
type pair struct {
	input, output typedecl.Type
}

// Registry stores converters and providers and resolves converters between
// arbitrary pairs of types, chaining registered converters where needed.
//
// All methods are safe for concurrent use. Resolution results, including
// misses, are cached per pair until the next registration.
type Registry struct {
	id     uuid.UUID
	logger *log.Logger

	mu       sync.Mutex
	listings *listingTable
	trees    map[typedecl.Type]*tree
	cache    map[pair]Converter
	hits     uint64
	misses   uint64
	gen      atomic.Uint64
	locked   lockedLookup
}

// RegistryOption configures a [Registry].
type RegistryOption func(*Registry)

// WithLogger sets the logger used for registration and resolution messages.
func WithLogger(logger *log.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		id:     uuid.New(),
		logger: log.Default(),
		trees:  make(map[typedecl.Type]*tree),
		cache:  make(map[pair]Converter),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("registry", r.id.String()[:8])
	r.listings = newListingTable(r.logger)
	r.locked = lockedLookup{r: r}
	return r
}

// ID returns the identifier of the registry, used in log messages.
func (r *Registry) ID() uuid.UUID {
	return r.id
}

// Logger returns the registry's logger.
func (r *Registry) Logger() *log.Logger {
	return r.logger
}

// Generation is incremented by every successful registration. Converters
// that cache resolution results compare it to detect stale entries.
func (r *Registry) Generation() uint64 {
	return r.gen.Load()
}

// =============================================================================
// Registration
// =============================================================================

// RegisterConverter adds c to the registry. Duplex converters are registered
// in both directions. An invalid converter is rejected with an error and the
// registry is left unchanged.
func (r *Registry) RegisterConverter(c Converter) error {
	if err := validate(c); err != nil {
		r.logger.Warn("rejected converter", "converter", describe(c), "err", err)
		observability.Resolution().OnRegister(inputName(c), outputName(c), err)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.listings.addConverter(c)
	r.resetTypeChangeLocked(c.Input())
	r.resetTypeChangeLocked(c.Output())
	if d, ok := c.(Duplex); ok {
		r.listings.addConverter(d.Reverse())
	}
	clear(r.cache)
	r.gen.Add(1)

	r.logger.Debug("registered converter", "converter", c)
	observability.Resolution().OnRegister(c.Input().String(), c.Output().String(), nil)
	return nil
}

// MustRegister registers every converter and panics on the first rejection.
// It is meant for package initialization with converters known to be valid.
func (r *Registry) MustRegister(cs ...Converter) {
	for _, c := range cs {
		if err := r.RegisterConverter(c); err != nil {
			panic(err)
		}
	}
}

// RegisterProvider adds p to the registry. Providers are consulted in
// registration order, after directly registered converters. Registering a
// provider discards every conversion tree.
func (r *Registry) RegisterProvider(p Provider) error {
	if p == nil {
		err := errors.New(errors.ErrCodeInvalidProvider, "provider is nil")
		r.logger.Warn("rejected provider", "err", err)
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.listings.addProvider(p)
	for _, t := range r.trees {
		r.resetTree(t)
	}
	clear(r.cache)
	r.gen.Add(1)

	r.logger.Debug("registered provider", "provider", fmt.Sprintf("%T", p))
	return nil
}

// validate checks that c can be registered.
func validate(c Converter) error {
	if isNil(c) {
		return errors.New(errors.ErrCodeInvalidConverter, "converter is nil")
	}
	in, out := c.Input(), c.Output()
	switch {
	case !in.IsValid():
		return errors.New(errors.ErrCodeInvalidType, "converter %s has no input type", c)
	case !out.IsValid():
		return errors.New(errors.ErrCodeInvalidType, "converter %s has no output type", c)
	case !in.IsResolved():
		return errors.New(errors.ErrCodeUnresolvedType, "converter %s has unresolved input type %s", c, in)
	case !out.IsResolved():
		return errors.New(errors.ErrCodeUnresolvedType, "converter %s has unresolved output type %s", c, out)
	}
	switch f := c.(type) {
	case *Func:
		if f.fn == nil {
			return errors.New(errors.ErrCodeInvalidConverter, "converter %s has no function", c)
		}
	case *FuncDuplex:
		if f.fwd == nil || f.rev == nil {
			return errors.New(errors.ErrCodeInvalidConverter, "duplex %s is missing a function", c)
		}
	}
	return nil
}

// validateProvided checks a converter returned by a provider for output.
func validateProvided(c Converter, output typedecl.Type) error {
	if err := validate(c); err != nil {
		return err
	}
	if !c.Output().IsInstanceOf(output) {
		return errors.New(errors.ErrCodeInvalidConverter,
			"provided converter %s does not produce %s", c, output)
	}
	return nil
}

func isNil(c Converter) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func describe(c Converter) string {
	if isNil(c) {
		return "<nil>"
	}
	return c.String()
}

func inputName(c Converter) string {
	if isNil(c) {
		return ""
	}
	return c.Input().String()
}

func outputName(c Converter) string {
	if isNil(c) {
		return ""
	}
	return c.Output().String()
}

// resetTypeChangeLocked discards the trees that reached t.
func (r *Registry) resetTypeChangeLocked(t typedecl.Type) {
	for _, tr := range r.trees {
		if tr.touches(t) {
			r.resetTree(tr)
		}
	}
}

func (r *Registry) resetTree(t *tree) {
	nodes := len(t.nodes)
	t.reset()
	observability.Resolution().OnReset(t.output.String(), nodes)
}

// =============================================================================
// Resolution
// =============================================================================

// Find returns a converter from input to output, or nil when none exists.
//
// Types that already are instances of output resolve to a null converter.
// Otherwise the registered converters are chained along the shortest path,
// preferring non-lazy converters. As a last resort a casting converter is
// returned when output is an instance of input.
func (r *Registry) Find(input, output typedecl.Type) Converter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findLocked(input, output)
}

func (r *Registry) findLocked(input, output typedecl.Type) Converter {
	if !input.IsResolved() || !output.IsResolved() {
		return nil
	}

	key := pair{input, output}
	if c, ok := r.cache[key]; ok {
		r.hits++
		observability.Cache().OnCacheHit(context.Background(), "converter")
		return c
	}
	r.misses++
	observability.Cache().OnCacheMiss(context.Background(), "converter")

	start := time.Now()
	var c Converter
	if input.IsInstanceOf(output) {
		c = Null(input, output)
	} else {
		t := r.treeLocked(output)
		partial := t.busy
		c = t.find(input)
		if c == nil && partial {
			// The tree is still being searched further up the stack, so a
			// miss here is not final and must not be cached.
			return nil
		}
		if c == nil && output.IsInstanceOf(input) {
			c = Casting(input, output)
		}
	}

	r.cache[key] = c
	if d, ok := c.(Duplex); ok {
		rev := d.Reverse()
		rk := pair{rev.Input(), rev.Output()}
		if _, ok := r.cache[rk]; !ok {
			r.cache[rk] = rev
		}
	}

	elapsed := time.Since(start)
	r.logger.Debug("resolved converter", "input", input, "output", output, "found", c != nil, "took", elapsed)
	observability.Resolution().OnFind(input.String(), output.String(), c != nil, elapsed)
	return c
}

func (r *Registry) treeLocked(output typedecl.Type) *tree {
	t, ok := r.trees[output]
	if !ok {
		t = newTree(output, r.listings, r.locked, r, r.logger)
		r.trees[output] = t
	}
	return t
}

// FindOutput returns a converter from any value to output. It picks the
// converter for each value from the value's runtime type.
func (r *Registry) FindOutput(output typedecl.Type) *InputConverter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.treeLocked(output).poly
}

// FindDuplex returns a converter between a and b in both directions. It
// returns nil without error when either direction is missing, and a
// DUPLEX_MISMATCH error when the two directions do not form a duplex.
func (r *Registry) FindDuplex(a, b typedecl.Type) (Duplex, error) {
	forward, reverse := r.findBoth(a, b)
	d, err := Pair(forward, reverse)
	if err != nil {
		r.logger.Error("mismatched duplex legs", "a", a, "b", b, "err", err)
		return nil, err
	}
	return d, nil
}

// findBoth resolves a to b and b to a under one lock.
func (r *Registry) findBoth(a, b typedecl.Type) (forward, reverse Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findLocked(a, b), r.findLocked(b, a)
}

// FindNilInput returns the first converter to output that accepts nil, or
// nil when there is none.
func (r *Registry) FindNilInput(output typedecl.Type) Converter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listings.nilConverter(output)
}

// Lazy returns a converter from input to output that is resolved through the
// registry on first use.
func (r *Registry) Lazy(input, output typedecl.Type) *LazyConverter {
	return NewLazy(input, output, r, r.logger)
}

// Converters returns the converters producing output, one per input type, in
// priority order. The result includes provided and inherited converters.
func (r *Registry) Converters(output typedecl.Type) []Converter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Converter(nil), r.listings.converters(output)...)
}

// FindFor returns the converter from I to O in r, or nil.
func FindFor[I, O any](r *Registry) Converter {
	return r.Find(typedecl.Of[I](), typedecl.Of[O]())
}

// To converts value to O using the converter for the value's runtime type.
func To[O any](r *Registry, value any) (O, bool) {
	return As[O](r.FindOutput(typedecl.Of[O]()), value)
}

// lockedLookup resolves through a registry whose lock is already held. It is
// handed to polymorphic converters specialized during a tree search.
type lockedLookup struct {
	r *Registry
}

func (l lockedLookup) Find(input, output typedecl.Type) Converter {
	return l.r.findLocked(input, output)
}

func (l lockedLookup) FindNilInput(output typedecl.Type) Converter {
	return l.r.listings.nilConverter(output)
}

func (l lockedLookup) Generation() uint64 {
	return l.r.gen.Load()
}

// =============================================================================
// Introspection
// =============================================================================

// Stats describes the state of a registry.
type Stats struct {
	Converters  int    `json:"converters"`
	Providers   int    `json:"providers"`
	Listings    int    `json:"listings"`
	Trees       int    `json:"trees"`
	Nodes       int    `json:"nodes"`
	CachedPairs int    `json:"cached_pairs"`
	CacheHits   uint64 `json:"cache_hits"`
	CacheMisses uint64 `json:"cache_misses"`
	Generation  uint64 `json:"generation"`
}

// Stats returns counters describing the registry.
func (r *Registry) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Stats{
		Converters:  r.listings.directCount(),
		Providers:   len(r.listings.providers),
		Listings:    len(r.listings.lists),
		Trees:       len(r.trees),
		CachedPairs: len(r.cache),
		CacheHits:   r.hits,
		CacheMisses: r.misses,
		Generation:  r.gen.Load(),
	}
	for _, t := range r.trees {
		s.Nodes += len(t.nodes)
	}
	return s
}

// WriteCache writes the cached resolution results to w, one pair per line in
// the form "input -> output: converter".
func (r *Registry) WriteCache(w io.Writer) error {
	r.mu.Lock()
	keys := make([]pair, 0, len(r.cache))
	for k := range r.cache {
		keys = append(keys, k)
	}
	lines := make(map[pair]string, len(keys))
	for _, k := range keys {
		lines[k] = describe(r.cache[k])
	}
	r.mu.Unlock()

	sort.Slice(keys, func(i, j int) bool {
		if a, b := keys[i].input.String(), keys[j].input.String(); a != b {
			return a < b
		}
		return keys[i].output.String() < keys[j].output.String()
	})
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s -> %s: %s\n", k.input, k.output, lines[k]); err != nil {
			return err
		}
	}
	return nil
}

package conversion

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/convgraph/pkg/errors"
	"github.com/matzehuels/convgraph/pkg/typedecl"
	"github.com/matzehuels/convgraph/pkg/typemap"
)

// listing holds the best converter per input type for one output type.
type listing struct {
	output typedecl.Type
	direct byInput
	merged byInput
	dirty  bool
}

// byInput is an insertion ordered map from input type to converter.
type byInput struct {
	keys []typedecl.Type
	m    map[typedecl.Type]Converter
	list []Converter
}

// put stores c, replacing the converter registered for the same input.
func (b *byInput) put(c Converter) {
	if b.m == nil {
		b.m = make(map[typedecl.Type]Converter)
	}
	if _, ok := b.m[c.Input()]; !ok {
		b.keys = append(b.keys, c.Input())
	}
	b.m[c.Input()] = c
	b.list = nil
}

// putIfAbsent stores c unless its input type is already claimed.
func (b *byInput) putIfAbsent(c Converter) bool {
	if _, ok := b.m[c.Input()]; ok {
		return false
	}
	b.put(c)
	return true
}

func (b *byInput) converters() []Converter {
	if b.list == nil && len(b.keys) > 0 {
		b.list = make([]Converter, len(b.keys))
		for i, k := range b.keys {
			b.list[i] = b.m[k]
		}
	}
	return b.list
}

func (b *byInput) reset() {
	b.keys, b.m, b.list = nil, nil, nil
}

func (b *byInput) len() int {
	return len(b.keys)
}

// listingTable owns the listings of a registry. Inheritance between listings
// follows the output types: a listing includes the converters of every
// listing whose output type is an instance of its own.
type listingTable struct {
	logger     *log.Logger
	lists      map[typedecl.Type]*listing
	subtypes   *typemap.Map[*listing] // at T: T and the listings T inherits from
	supertypes *typemap.Map[*listing] // at T: T and the listings inheriting from T
	providers  []Provider
}

func newListingTable(logger *log.Logger) *listingTable {
	return &listingTable{
		logger:     logger,
		lists:      make(map[typedecl.Type]*listing),
		subtypes:   typemap.NewOutput[*listing](),
		supertypes: typemap.NewInput[*listing](),
	}
}

// get returns the listing for output, creating it on first use.
func (lt *listingTable) get(output typedecl.Type) *listing {
	if l, ok := lt.lists[output]; ok {
		return l
	}
	l := &listing{output: output, dirty: true}
	lt.lists[output] = l
	lt.subtypes.Add(output, l)
	lt.supertypes.Add(output, l)
	// Listings of supertypes now inherit from l.
	lt.invalidate(output)
	return l
}

// invalidate marks the listing of t and every listing inheriting from it for
// regeneration.
func (lt *listingTable) invalidate(t typedecl.Type) {
	for _, l := range lt.supertypes.GetAll(t) {
		l.dirty = true
	}
}

func (lt *listingTable) invalidateAll() {
	for _, l := range lt.lists {
		l.dirty = true
	}
}

func (lt *listingTable) addConverter(c Converter) {
	lt.get(c.Output()).direct.put(c)
	lt.invalidate(c.Output())
}

func (lt *listingTable) addProvider(p Provider) {
	lt.providers = append(lt.providers, p)
	lt.invalidateAll()
}

// converters returns the converters producing output, one per input type.
func (lt *listingTable) converters(output typedecl.Type) []Converter {
	l := lt.get(output)
	lt.generate(l)
	return l.merged.converters()
}

// generate rebuilds a dirty listing. Direct registrations win over provider
// results, which win over inherited converters. A provider that panics is
// skipped and the listing stays dirty, so the provider is asked again on the
// next use.
func (lt *listingTable) generate(l *listing) {
	if !l.dirty {
		return
	}
	l.dirty = false
	complete := false
	defer func() {
		if !complete {
			l.dirty = true
		}
	}()
	l.merged.reset()

	for _, c := range l.direct.converters() {
		l.merged.put(c)
	}

	failed := false
	for _, p := range lt.providers {
		cs, err := lt.provide(p, l.output)
		if err != nil {
			lt.logger.Warn("provider failed", "output", l.output, "err", err)
			failed = true
			continue
		}
		for _, c := range cs {
			if err := validateProvided(c, l.output); err != nil {
				lt.logger.Warn("provider returned invalid converter", "output", l.output, "err", err)
				continue
			}
			l.merged.putIfAbsent(c)
		}
	}

	for _, sub := range lt.subtypes.GetAll(l.output) {
		if sub == l {
			continue
		}
		lt.generate(sub)
		for _, c := range sub.merged.converters() {
			l.merged.putIfAbsent(c)
		}
	}
	complete = !failed
}

// provide asks p for converters to output, turning a panic into an error.
func (lt *listingTable) provide(p Provider, output typedecl.Type) (cs []Converter, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeInvalidProvider, "provider %T panicked: %v", p, r)
		}
	}()
	return p.Converters(output), nil
}

// nilConverter returns the first converter to output that accepts nil.
func (lt *listingTable) nilConverter(output typedecl.Type) Converter {
	for _, c := range lt.converters(output) {
		if c.AcceptsNilInput() {
			return c
		}
	}
	return nil
}

func (lt *listingTable) directCount() int {
	n := 0
	for _, l := range lt.lists {
		n += l.direct.len()
	}
	return n
}

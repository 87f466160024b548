package typedecl

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Catalog maps type names to descriptors and parses type expressions built
// from those names. It is safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	names map[string]Type
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{names: make(map[string]Type)}
}

// DefaultCatalog returns a catalog holding the predeclared Go types and a few
// common standard library types.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	c.Register("any", Any)
	c.Register("interface{}", Any)
	c.Register("bool", Of[bool]())
	c.Register("string", Of[string]())
	c.Register("int", Of[int]())
	c.Register("int8", Of[int8]())
	c.Register("int16", Of[int16]())
	c.Register("int32", Of[int32]())
	c.Register("int64", Of[int64]())
	c.Register("uint", Of[uint]())
	c.Register("uint8", Of[uint8]())
	c.Register("uint16", Of[uint16]())
	c.Register("uint32", Of[uint32]())
	c.Register("uint64", Of[uint64]())
	c.Register("uintptr", Of[uintptr]())
	c.Register("float32", Of[float32]())
	c.Register("float64", Of[float64]())
	c.Register("complex64", Of[complex64]())
	c.Register("complex128", Of[complex128]())
	c.Register("byte", Of[byte]())
	c.Register("rune", Of[rune]())
	c.Register("error", Of[error]())
	c.Register("fmt.Stringer", Of[fmt.Stringer]())
	c.Register("time.Duration", Of[time.Duration]())
	c.Register("time.Time", Of[time.Time]())
	return c
}

// Register binds name to t, replacing any previous binding.
func (c *Catalog) Register(name string, t Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[name] = t
}

// Lookup returns the type registered under name.
func (c *Catalog) Lookup(name string) (Type, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.names[name]
	return t, ok
}

// Names returns all registered names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.names))
	for name := range c.names {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Parse resolves a type expression. Supported forms are registered names,
// "[]T", "[N]T", "*T" and "map[K]V", nested arbitrarily.
func (c *Catalog) Parse(expr string) (Type, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Invalid, fmt.Errorf("empty type expression")
	}
	if t, ok := c.Lookup(expr); ok {
		return t, nil
	}

	switch {
	case strings.HasPrefix(expr, "*"):
		elem, err := c.parseElem(expr[1:])
		if err != nil {
			return Invalid, err
		}
		return PointerTo(elem), nil

	case strings.HasPrefix(expr, "[]"):
		elem, err := c.parseElem(expr[2:])
		if err != nil {
			return Invalid, err
		}
		return SliceOf(elem), nil

	case strings.HasPrefix(expr, "map["):
		end := matchBracket(expr, 3)
		if end < 0 {
			return Invalid, fmt.Errorf("unbalanced brackets in %q", expr)
		}
		key, err := c.parseElem(expr[4:end])
		if err != nil {
			return Invalid, err
		}
		elem, err := c.parseElem(expr[end+1:])
		if err != nil {
			return Invalid, err
		}
		t := MapOf(key, elem)
		if !t.IsValid() {
			return Invalid, fmt.Errorf("invalid map key type %s", key)
		}
		return t, nil

	case strings.HasPrefix(expr, "["):
		end := matchBracket(expr, 0)
		if end < 0 {
			return Invalid, fmt.Errorf("unbalanced brackets in %q", expr)
		}
		n, err := strconv.Atoi(strings.TrimSpace(expr[1:end]))
		if err != nil || n < 0 {
			return Invalid, fmt.Errorf("invalid array length in %q", expr)
		}
		elem, err := c.parseElem(expr[end+1:])
		if err != nil {
			return Invalid, err
		}
		return Type{rt: reflect.ArrayOf(n, elem.rt)}, nil
	}

	return Invalid, fmt.Errorf("unknown type %q", expr)
}

// parseElem parses a type argument, which must be a concrete type.
func (c *Catalog) parseElem(expr string) (Type, error) {
	t, err := c.Parse(expr)
	if err != nil {
		return Invalid, err
	}
	if !t.IsResolved() {
		return Invalid, fmt.Errorf("type variable %s cannot be used as a type argument", t)
	}
	return t, nil
}

// MustParse is like Parse but panics on error.
func (c *Catalog) MustParse(expr string) Type {
	t, err := c.Parse(expr)
	if err != nil {
		panic(err)
	}
	return t
}

// matchBracket returns the index of the ']' closing the '[' at open.
func matchBracket(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

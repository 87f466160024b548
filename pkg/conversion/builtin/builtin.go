// Package builtin provides the standard converters between Go's basic types.
//
// [Register] installs all of them into a registry:
//
//   - Boxing: every basic type T to and from *T. A nil pointer does not unbox.
//   - Numbers: integer kinds widen to int64 (unsigned kinds to uint64) and
//     narrow back with range checks; int64, uint64, float64 and float32 are
//     connected both ways.
//   - Text: int64, uint64, float64 and bool to and from string, []byte and
//     []rune to and from string, fmt.Stringer and error to string, and a lazy
//     fallback formatting any value with fmt.Sprint.
//   - Time: time.Duration to and from string and int64 nanoseconds, and
//     time.Time to and from RFC 3339 text.
//   - Collections: providers converting slices, arrays and maps element by
//     element.
//
// Parsing text into numbers is lenient: surrounding text is ignored and the
// first number found is used, so "Value: 12" parses as 12. Integer targets
// accept decimal text and truncate it.
package builtin

import (
	"github.com/matzehuels/convgraph/pkg/conversion"
)

// Converters returns every builtin converter. Duplex converters count once
// and cover both directions.
func Converters() []conversion.Converter {
	var cs []conversion.Converter
	cs = append(cs, boxing()...)
	cs = append(cs, numbers()...)
	cs = append(cs, text()...)
	cs = append(cs, timeConverters()...)
	return cs
}

// Providers returns the builtin providers in registration order.
func Providers() []conversion.Provider {
	return []conversion.Provider{
		conversion.ProviderFunc(sliceProvider),
		conversion.ProviderFunc(mapProvider),
	}
}

// Register installs every builtin converter and provider into r.
func Register(r *conversion.Registry) error {
	for _, c := range Converters() {
		if err := r.RegisterConverter(c); err != nil {
			return err
		}
	}
	for _, p := range Providers() {
		if err := r.RegisterProvider(p); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry with the builtin converters installed.
func NewRegistry(opts ...conversion.RegistryOption) *conversion.Registry {
	r := conversion.NewRegistry(opts...)
	if err := Register(r); err != nil {
		// The builtin set is fixed; a rejection is a bug in this package.
		panic(err)
	}
	return r
}

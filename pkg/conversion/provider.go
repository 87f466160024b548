package conversion

import "github.com/matzehuels/convgraph/pkg/typedecl"

// Provider supplies converters for an output type on demand. It is used for
// families of conversions that cannot be registered up front, such as
// conversions into every slice type.
//
// Providers are asked again whenever the registry rebuilds the listing for
// an output type, so Converters should be cheap and free of side effects. It
// must not call back into the registry that owns it.
type Provider interface {
	Converters(output typedecl.Type) []Converter
}

// ProviderFunc adapts a function to the [Provider] interface.
type ProviderFunc func(output typedecl.Type) []Converter

// Converters calls f(output).
func (f ProviderFunc) Converters(output typedecl.Type) []Converter {
	return f(output)
}

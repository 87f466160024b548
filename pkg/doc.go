// Package pkg provides the core libraries for Convgraph runtime type
// conversion.
//
// # Overview
//
// Convgraph resolves converters between Go types at runtime. Converters are
// registered for single type pairs; the registry chains them into longer
// conversions on demand and explains how it got there. The pkg directory is
// organized into three areas:
//
//  1. Types - descriptors of Go types and maps indexed by type hierarchy
//  2. Conversion - converters, the registry and the converter libraries
//  3. Infrastructure - rendering, caching, errors and observability hooks
//
// # Architecture
//
// The data flow of a resolution:
//
//	typedecl.Type pair (input, output)
//	         ↓
//	    [conversion] registry (find, chain, cache)
//	         ↓
//	    [typemap] listing of converters into the output type
//	         ↓
//	    Converter, or a tree snapshot for debugging
//	         ↓
//	    [render/nodelink] DOT/SVG output
//
// # Quick Start
//
// Register converters and resolve a chain:
//
//	import (
//	    "github.com/matzehuels/convgraph/pkg/conversion"
//	    "github.com/matzehuels/convgraph/pkg/conversion/builtin"
//	    "github.com/matzehuels/convgraph/pkg/typedecl"
//	)
//
//	r := builtin.NewRegistry()
//	c := r.Find(typedecl.Of[[]string](), typedecl.Of[[]int]())
//	v, ok := conversion.Convert(c, []string{"1", "2"})
//
// # Main Packages
//
// ## Types
//
// [typedecl] - Runtime type descriptors built on reflect. A descriptor knows
// its kind, its element types, whether it can hold nil and which other
// descriptors it is an instance of. A [typedecl.Catalog] parses Go type
// expressions such as map[string][]int.
//
// [typemap] - A map keyed by type descriptor whose lookups also see the
// entries of every subtype.
//
// ## Conversion
//
// [conversion] - The converter variants (function, null, casting, failing,
// chain, lazy and duplex converters), converter providers and the
// [conversion.Registry] that builds conversion trees and resolves requests.
//
// [conversion/builtin] - Converters between the predeclared types, strings,
// durations and collections of those.
//
// [conversion/ctyconv] - Converters between cty values and Go values, used
// to feed HCL literals into the registry.
//
// ## Infrastructure
//
// [render/nodelink] - Graphviz rendering of conversion trees.
//
// [cache] - File-based cache for rendered graphs.
//
// [errors] - Error codes and validation helpers shared by the CLI and the
// debug server.
//
// [observability] - Hooks for resolution, cache and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/conversion/...         # Specific package
//	go test -run Example                 # Examples only
//
// [typedecl]: https://pkg.go.dev/github.com/matzehuels/convgraph/pkg/typedecl
// [typemap]: https://pkg.go.dev/github.com/matzehuels/convgraph/pkg/typemap
// [conversion]: https://pkg.go.dev/github.com/matzehuels/convgraph/pkg/conversion
// [conversion/builtin]: https://pkg.go.dev/github.com/matzehuels/convgraph/pkg/conversion/builtin
// [conversion/ctyconv]: https://pkg.go.dev/github.com/matzehuels/convgraph/pkg/conversion/ctyconv
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/convgraph/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/convgraph/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/convgraph/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/convgraph/pkg/observability
package pkg

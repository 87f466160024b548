// Package engine wires a conversion registry, the builtin and cty converters
// and a type catalog together for the command line and the debug server.
package engine

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/convgraph/internal/config"
	"github.com/matzehuels/convgraph/pkg/conversion"
	"github.com/matzehuels/convgraph/pkg/conversion/builtin"
	"github.com/matzehuels/convgraph/pkg/conversion/ctyconv"
	"github.com/matzehuels/convgraph/pkg/errors"
	"github.com/matzehuels/convgraph/pkg/typedecl"
)

// Engine is a populated registry plus the catalog used to parse type names.
type Engine struct {
	Registry *conversion.Registry
	Catalog  *typedecl.Catalog
}

// New returns an engine with the builtin and cty converters registered and
// the aliases of cfg added to the default catalog.
func New(cfg config.Config, logger *log.Logger) (*Engine, error) {
	r := conversion.NewRegistry(conversion.WithLogger(logger))
	if err := builtin.Register(r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "register builtin converters")
	}
	if err := ctyconv.Register(r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "register cty converters")
	}

	catalog := typedecl.DefaultCatalog()
	catalog.Register("cty.Value", ctyconv.ValueType)
	if err := cfg.ApplyAliases(catalog); err != nil {
		return nil, err
	}

	logger.Debug("engine ready", "types", len(catalog.Names()), "converters", r.Stats().Converters)
	return &Engine{Registry: r, Catalog: catalog}, nil
}

// ParseType validates and parses a type expression.
func (e *Engine) ParseType(expr string) (typedecl.Type, error) {
	if err := errors.ValidateTypeExpr(expr); err != nil {
		return typedecl.Invalid, err
	}
	t, err := e.Catalog.Parse(expr)
	if err != nil {
		return typedecl.Invalid, errors.Wrap(errors.ErrCodeTypeNotFound, err, "unknown type %q", strings.TrimSpace(expr))
	}
	return t, nil
}

// ParsePair parses an input and an output type expression.
func (e *Engine) ParsePair(from, to string) (typedecl.Type, typedecl.Type, error) {
	in, err := e.ParseType(from)
	if err != nil {
		return typedecl.Invalid, typedecl.Invalid, err
	}
	out, err := e.ParseType(to)
	if err != nil {
		return typedecl.Invalid, typedecl.Invalid, err
	}
	return in, out, nil
}

// Resolve parses both type expressions and finds a converter between them.
// A miss is reported as NO_CONVERTER.
func (e *Engine) Resolve(from, to string) (conversion.Converter, error) {
	in, out, err := e.ParsePair(from, to)
	if err != nil {
		return nil, err
	}
	c := e.Registry.Find(in, out)
	if c == nil {
		return nil, errors.New(errors.ErrCodeNoConverter, "no converter from %s to %s", in, out)
	}
	return c, nil
}

// Result is the outcome of [Engine.Convert].
type Result struct {
	Input     string `json:"input"`
	Output    string `json:"output"`
	Converter string `json:"converter"`
	Value     any    `json:"value"`
}

// Convert evaluates expr as a literal HCL expression, builds a value of type
// from out of it and converts that value to type to. An empty from converts
// the cty value itself.
func (e *Engine) Convert(expr, from, to string) (Result, error) {
	raw, err := ctyconv.ParseExpr(expr)
	if err != nil {
		return Result{}, err
	}

	in := ctyconv.ValueType
	if from != "" {
		if in, err = e.ParseType(from); err != nil {
			return Result{}, err
		}
	}
	out, err := e.ParseType(to)
	if err != nil {
		return Result{}, err
	}

	var value any = raw
	if in != ctyconv.ValueType {
		if _, value, err = e.apply(ctyconv.ValueType, in, raw); err != nil {
			return Result{}, err
		}
	}

	c, v, err := e.apply(in, out, value)
	if err != nil {
		return Result{}, err
	}
	return Result{Input: in.String(), Output: out.String(), Converter: c.String(), Value: v}, nil
}

// apply resolves and applies a converter, turning misses, failures and
// panics of failed lazy converters into errors.
func (e *Engine) apply(in, out typedecl.Type, value any) (c conversion.Converter, result any, err error) {
	c = e.Registry.Find(in, out)
	if c == nil {
		return nil, nil, errors.New(errors.ErrCodeNoConverter, "no converter from %s to %s", in, out)
	}

	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("%v", r)
			}
			err = errors.Wrap(errors.ErrCodeConversionFailed, cause, "convert %s to %s", in, out)
		}
	}()

	v, ok := conversion.Convert(c, value)
	if !ok {
		return c, nil, errors.Wrap(errors.ErrCodeConversionFailed,
			&errors.ConversionError{From: in.String(), To: out.String(), Value: value},
			"convert %s to %s", in, out)
	}
	return c, v, nil
}

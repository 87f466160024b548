package conversion

import (
	"fmt"

	"github.com/matzehuels/convgraph/pkg/errors"
	"github.com/matzehuels/convgraph/pkg/typedecl"
)

// NullConverter returns its input unchanged. It bridges types where every
// input value already is a valid output value.
type NullConverter struct {
	base
}

// Null returns the identity converter from input to output. It passes nil
// through when nil is a valid output value.
func Null(input, output typedecl.Type) *NullConverter {
	return &NullConverter{base: base{input: input, output: output, acceptsNil: output.Nillable()}}
}

// ConvertInput returns value.
func (c *NullConverter) ConvertInput(value any) (any, bool) {
	return value, true
}

func (c *NullConverter) String() string {
	return c.describe("Null")
}

// CastingConverter narrows a value to a more specific type, failing when the
// runtime value is not an instance of the output type.
type CastingConverter struct {
	base
}

// Casting returns a runtime checked converter from input to output.
func Casting(input, output typedecl.Type) *CastingConverter {
	return &CastingConverter{base: base{input: input, output: output}}
}

// ConvertInput returns value when it is an instance of the output type.
func (c *CastingConverter) ConvertInput(value any) (any, bool) {
	if value == nil || !typedecl.TypeOf(value).IsInstanceOf(c.output) {
		return nil, false
	}
	return value, true
}

func (c *CastingConverter) String() string {
	return c.describe("Casting")
}

// FailingConverter stands in for a converter that could not be found. Every
// invocation panics with the recorded error.
type FailingConverter struct {
	base
	err *errors.Error
}

// Failing returns a converter whose invocation panics with an UNSUPPORTED
// error carrying message.
func Failing(input, output typedecl.Type, message string) *FailingConverter {
	return &FailingConverter{
		base: base{input: input, output: output},
		err:  errors.New(errors.ErrCodeUnsupported, "%s", message),
	}
}

// NotFound returns the failing converter used for a missing input to output
// conversion.
func NotFound(input, output typedecl.Type) *FailingConverter {
	return Failing(input, output, fmt.Sprintf("Converter not found: %s -> %s", input, output))
}

// Err returns the error raised on invocation.
func (c *FailingConverter) Err() error {
	return c.err
}

// ConvertInput panics with the recorded error.
func (c *FailingConverter) ConvertInput(any) (any, bool) {
	panic(c.err)
}

func (c *FailingConverter) String() string {
	return c.describe("Failing")
}

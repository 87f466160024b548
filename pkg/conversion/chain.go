package conversion

import (
	"strings"

	"github.com/matzehuels/convgraph/pkg/errors"
)

// ChainConverter applies a sequence of converters, feeding the output of each
// stage into the next.
type ChainConverter struct {
	base
	stages []Converter
}

// NewChain composes stages into one converter. Each stage's output type must
// be an instance of the next stage's input type.
func NewChain(stages ...Converter) (*ChainConverter, error) {
	if len(stages) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConverter, "chain needs at least one converter")
	}
	for i, c := range stages {
		if c == nil {
			return nil, errors.New(errors.ErrCodeInvalidConverter, "chain stage %d is nil", i)
		}
		if i > 0 && !stages[i-1].Output().IsInstanceOf(c.Input()) {
			return nil, errors.New(errors.ErrCodeInvalidConverter,
				"chain stage %d produces %s but stage %d expects %s", i-1, stages[i-1].Output(), i, c.Input())
		}
	}
	first, last := stages[0], stages[len(stages)-1]
	return &ChainConverter{
		base: base{
			input:      first.Input(),
			output:     last.Output(),
			acceptsNil: first.AcceptsNilInput(),
		},
		stages: stages,
	}, nil
}

// Stages returns the converters of the chain in application order.
func (c *ChainConverter) Stages() []Converter {
	return c.stages
}

// ConvertInput runs every stage in order and stops at the first stage that
// yields no result.
func (c *ChainConverter) ConvertInput(value any) (any, bool) {
	for _, stage := range c.stages {
		if value == nil && !stage.AcceptsNilInput() {
			return nil, false
		}
		out, ok := stage.ConvertInput(value)
		if !ok {
			return nil, false
		}
		value = out
	}
	return value, true
}

// Lazy reports whether any stage is lazy.
func (c *ChainConverter) Lazy() bool {
	for _, stage := range c.stages {
		if stage.Lazy() {
			return true
		}
	}
	return false
}

func (c *ChainConverter) String() string {
	var b strings.Builder
	b.WriteString(c.describe("Chain"))
	b.WriteString(" [")
	for i, stage := range c.stages {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(stage.String())
	}
	b.WriteString("]")
	return b.String()
}

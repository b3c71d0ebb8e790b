package icc

import (
	"fmt"
	"reflect"
	"strings"
)

// ChannelTransformer maps three channel values to three channel values.
// Composite transformers yield their stages from Iter so that a Pipeline
// can flatten and coalesce them.
type ChannelTransformer interface {
	Transform(r, g, b unit_float) (unit_float, unit_float, unit_float)
	Iter(yield func(ChannelTransformer) bool)
	String() string
}

type AsMatrix3 interface {
	AsMatrix3() *Matrix3
}

// Curves is implemented by transformers that apply an independent 1D curve
// to each channel.
type Curves interface {
	Curves() []Curve1D
}

type stage struct {
	t  ChannelTransformer
	fn func(r, g, b unit_float) (unit_float, unit_float, unit_float)
}

func stage_of(t ChannelTransformer) stage { return stage{t, t.Transform} }

// Pipeline is a flat list of stages. Adjacent plain matrices are multiplied
// together as they are appended.
type Pipeline struct {
	stages []stage
}

func NewPipeline() *Pipeline { return &Pipeline{} }

// absent is true for nil interfaces and for typed nil pointers held in them
func absent(i any) bool {
	if i == nil {
		return true
	}
	switch v := reflect.ValueOf(i); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	}
	return false
}

func (p *Pipeline) push(c ChannelTransformer) {
	if _, noop := c.(*IdentityMatrix); noop || absent(c) {
		return
	}
	if n := len(p.stages); n > 0 {
		if next, ok := c.(AsMatrix3); ok {
			if prev, ok := p.stages[n-1].t.(AsMatrix3); ok {
				m := next.AsMatrix3().Multiply(*prev.AsMatrix3())
				p.stages[n-1] = stage_of(&m)
				return
			}
		}
	}
	p.stages = append(p.stages, stage_of(c))
}

// Append adds transformers to the end of the pipeline, flattening nested
// ones. Nil transformers are skipped.
func (p *Pipeline) Append(c ...ChannelTransformer) {
	for _, x := range c {
		if absent(x) {
			continue
		}
		x.Iter(func(q ChannelTransformer) bool {
			p.push(q)
			return true
		})
	}
}

func (p *Pipeline) Transform(r, g, b unit_float) (unit_float, unit_float, unit_float) {
	for _, s := range p.stages {
		r, g, b = s.fn(r, g, b)
	}
	return r, g, b
}

func (p *Pipeline) Iter(yield func(ChannelTransformer) bool) {
	for _, s := range p.stages {
		if !yield(s.t) {
			return
		}
	}
}

func (p *Pipeline) Len() int { return len(p.stages) }

func (p *Pipeline) first() ChannelTransformer {
	if len(p.stages) == 0 {
		return nil
	}
	return p.stages[0].t
}

func (p *Pipeline) last() ChannelTransformer {
	if len(p.stages) == 0 {
		return nil
	}
	return p.stages[len(p.stages)-1].t
}

func (p *Pipeline) pop_first() (ans ChannelTransformer) {
	if ans = p.first(); ans != nil {
		p.stages = p.stages[1:]
	}
	return
}

func (p *Pipeline) pop_last() (ans ChannelTransformer) {
	if ans = p.last(); ans != nil {
		p.stages = p.stages[:len(p.stages)-1]
	}
	return
}

func transformers_as_string(t ...ChannelTransformer) string {
	var sb strings.Builder
	for i, x := range t {
		if i > 0 {
			sb.WriteString(" → ")
		}
		sb.WriteString(x.String())
	}
	return sb.String()
}

func (p *Pipeline) String() string {
	return fmt.Sprintf("Pipeline[%s]", transformers_as_string(collect(p)...))
}

func IfElse[T any](condition bool, if_val T, else_val T) T {
	if condition {
		return if_val
	}
	return else_val
}

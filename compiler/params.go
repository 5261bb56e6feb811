package compiler

import (
	"errors"
	"fmt"
)

// SlotCount is the number of parameter slots on a code block.
const SlotCount = 27

var (
	// ErrTooManyParams indicates that positional values and tags together
	// do not fit in SlotCount slots.
	ErrTooManyParams = errors.New("too many parameters")

	// ErrUnsupportedValue indicates a value kind that has no serialized form.
	ErrUnsupportedValue = errors.New("unsupported value kind")
)

// Params is the fixed slot array of a code block. A nil entry is an
// empty slot.
type Params [SlotCount]Value

// Count returns the number of occupied slots.
func (p *Params) Count() int {
	n := 0
	for _, v := range p {
		if v != nil {
			n++
		}
	}
	return n
}

// Positional returns the non-tag values in slot order.
func (p *Params) Positional() []Value {
	var vals []Value
	for _, v := range p {
		if v == nil {
			continue
		}
		if _, ok := v.(Tag); !ok {
			vals = append(vals, v)
		}
	}
	return vals
}

// Tags returns the tags in slot order.
func (p *Params) Tags() []Tag {
	var tags []Tag
	for _, v := range p {
		if t, ok := v.(Tag); ok {
			tags = append(tags, t)
		}
	}
	return tags
}

// ParamBuilder accumulates positional values and tags for a Params array.
// Positional values fill slots from the front; tags fill from the back.
type ParamBuilder struct {
	params []Value
	tags   []Tag
}

// NewParams starts an empty ParamBuilder.
func NewParams() *ParamBuilder {
	return &ParamBuilder{}
}

// Param appends a positional value.
func (b *ParamBuilder) Param(v Value) *ParamBuilder {
	b.params = append(b.params, v)
	return b
}

// Tag appends a tag.
func (b *ParamBuilder) Tag(t Tag) *ParamBuilder {
	b.tags = append(b.tags, t)
	return b
}

// Build lays out the collected values. Positional values occupy slots
// 0,1,2,... in insertion order. Tags are placed from slot 26 downward in
// reverse insertion order, so the last tag added lands in slot 26.
func (b *ParamBuilder) Build() (Params, error) {
	var out Params
	if n := len(b.params) + len(b.tags); n > SlotCount {
		return out, fmt.Errorf("%w: %d values for %d slots", ErrTooManyParams, n, SlotCount)
	}
	for i, v := range b.params {
		if v == nil {
			continue
		}
		if !supported(v) {
			return Params{}, fmt.Errorf("%w: %T in slot %d", ErrUnsupportedValue, v, i)
		}
		out[i] = v
	}
	for i := range b.tags {
		out[SlotCount-1-i] = b.tags[len(b.tags)-1-i]
	}
	return out, nil
}

// MustBuild is like Build but panics on failure. It is for call sites that
// already know the values fit.
func (b *ParamBuilder) MustBuild() Params {
	p, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("compiler: %v", err))
	}
	return p
}

package storage

import (
	"fmt"
	"math"

	"github.com/hupe1980/hugegraph/descriptor"
)

// Value is one stored element. The zero Value is None.
type Value struct {
	typ   descriptor.ValueType
	valid bool
	bits  uint64
	obj   any
}

// None is the absent value.
var None = Value{}

func LongValue(v int64) Value { return Value{typ: descriptor.ValueLong, valid: true, bits: uint64(v)} }

func DoubleValue(v float64) Value {
	return Value{typ: descriptor.ValueDouble, valid: true, bits: math.Float64bits(v)}
}

func FloatValue(v float32) Value {
	return Value{typ: descriptor.ValueFloat, valid: true, bits: uint64(math.Float32bits(v))}
}

func ObjectValue(v any) Value { return Value{typ: descriptor.ValueObject, valid: true, obj: v} }

// IsNone reports whether v holds no value.
func (v Value) IsNone() bool { return !v.valid }

// Type returns the value type. It is meaningless for None.
func (v Value) Type() descriptor.ValueType { return v.typ }

// Long returns the value of a Long value and 0 otherwise.
func (v Value) Long() int64 {
	if !v.valid || v.typ != descriptor.ValueLong {
		return 0
	}
	return int64(v.bits)
}

// Double returns the value of a Double value and 0 otherwise.
func (v Value) Double() float64 {
	if !v.valid || v.typ != descriptor.ValueDouble {
		return 0
	}
	return math.Float64frombits(v.bits)
}

// Float returns the value of a Float value and 0 otherwise.
func (v Value) Float() float32 {
	if !v.valid || v.typ != descriptor.ValueFloat {
		return 0
	}
	return math.Float32frombits(uint32(v.bits))
}

// Object returns the value of an Object value and nil otherwise.
func (v Value) Object() any {
	if !v.valid || v.typ != descriptor.ValueObject {
		return nil
	}
	return v.obj
}

func (v Value) String() string {
	if !v.valid {
		return "none"
	}
	switch v.typ {
	case descriptor.ValueLong:
		return fmt.Sprintf("long(%d)", v.Long())
	case descriptor.ValueDouble:
		return fmt.Sprintf("double(%g)", v.Double())
	case descriptor.ValueFloat:
		return fmt.Sprintf("float(%g)", v.Float())
	default:
		return fmt.Sprintf("object(%v)", v.obj)
	}
}

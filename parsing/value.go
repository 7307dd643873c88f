package parsing

import (
	"errors"
	"fmt"
)

type ValueKind uint8

const (
	KindNone ValueKind = iota
	KindNode
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindChar
	KindRef
)

func (k ValueKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNode:
		return "node"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindChar:
		return "char"
	case KindRef:
		return "ref"
	default:
		return "unknown"
	}
}

// Value is a tagged attribute value. Exactly one payload is meaningful,
// selected by Kind. Node values are owned by whoever pops them; Ref values
// point at caller-owned objects such as a parsing context and are never
// owned by the stack.
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	u    uint64
	f    float64
	s    string
	r    rune
	ref  any
}

func NodeValue(node any) Value { return Value{kind: KindNode, ref: node} }
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }
func UintValue(u uint64) Value { return Value{kind: KindUint, u: u} }
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }
func StringValue(s string) Value { return Value{kind: KindString, s: s} }
func CharValue(r rune) Value { return Value{kind: KindChar, r: r} }
func RefValue(ref any) Value { return Value{kind: KindRef, ref: ref} }
func (v Value) Kind() ValueKind { return v.kind }
func (v Value) IsNone() bool { return v.kind == KindNone }

// ValueKindError reports a pop whose expected kind does not match what the
// producer pushed.
type ValueKindError struct {
	Want ValueKind
	Got  ValueKind
}

func (e *ValueKindError) Error() string {
	return fmt.Sprintf("value stack: want %s value, got %s", e.Want, e.Got)
}

func (v Value) check(want ValueKind) {
	if v.kind != want {
		panic(&ValueKindError{Want: want, Got: v.kind})
	}
}

func (v Value) Bool() bool {
	v.check(KindBool)
	return v.b
}

func (v Value) Int() int64 {
	v.check(KindInt)
	return v.i
}

func (v Value) Uint() uint64 {
	v.check(KindUint)
	return v.u
}

func (v Value) Float() float64 {
	v.check(KindFloat)
	return v.f
}

func (v Value) Str() string {
	v.check(KindString)
	return v.s
}

func (v Value) Char() rune {
	v.check(KindChar)
	return v.r
}

func (v Value) Node() any {
	v.check(KindNode)
	return v.ref
}

func (v Value) Ref() any {
	v.check(KindRef)
	return v.ref
}

// Any returns the payload regardless of kind.
func (v Value) Any() any {
	switch v.kind {
	case KindNode, KindRef:
		return v.ref
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindUint:
		return v.u
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindChar:
		return v.r
	}
	return nil
}

func (v Value) String() string {
	if v.kind == KindNone {
		return "<none>"
	}
	return fmt.Sprintf("%v", v.Any())
}

// As extracts a node or ref payload as T. A nil payload yields the zero T.
func As[T any](v Value) T {
	var zero T
	if v.kind != KindNode && v.kind != KindRef {
		panic(&ValueKindError{Want: KindNode, Got: v.kind})
	}
	if v.ref == nil {
		return zero
	}
	t, ok := v.ref.(T)
	if !ok {
		panic(fmt.Errorf("value stack: payload %T is not %T", v.ref, zero))
	}
	return t
}

var ErrStackUnderflow = errors.New("value stack underflow")

// ValueStack carries inherited attributes into rules and synthesized
// attributes out of them.
type ValueStack struct {
	values []Value
}

func NewValueStack() *ValueStack {
	return &ValueStack{}
}

func (s *ValueStack) Push(v Value) {
	s.values = append(s.values, v)
}

func (s *ValueStack) Pop() Value {
	if len(s.values) == 0 {
		panic(ErrStackUnderflow)
	}
	v := s.values[len(s.values)-1]
	s.values[len(s.values)-1] = Value{}
	s.values = s.values[:len(s.values)-1]
	return v
}

func (s *ValueStack) Top() Value {
	if len(s.values) == 0 {
		panic(ErrStackUnderflow)
	}
	return s.values[len(s.values)-1]
}

func (s *ValueStack) Len() int {
	return len(s.values)
}

// Truncate pops values until the stack holds n.
func (s *ValueStack) Truncate(n int) {
	for len(s.values) > n {
		s.Pop()
	}
}

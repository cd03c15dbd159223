// Package types defines the closed set of value kinds that attributes and
// fields can hold, together with their Go representations.
package types

import (
	"fmt"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/geofield/internal/color"
)

// ValueKind is the runtime tag of a canonical attribute value type.
type ValueKind uint8

const (
	// KindInvalid is the zero kind; it never describes stored data.
	KindInvalid ValueKind = iota
	// KindBool is a boolean value.
	KindBool
	// KindInt8 is a signed 8-bit integer.
	KindInt8
	// KindInt32 is a signed 32-bit integer.
	KindInt32
	// KindInt2 is a pair of signed 32-bit integers.
	KindInt2
	// KindFloat is a 32-bit float.
	KindFloat
	// KindFloat2 is a 2-component float vector.
	KindFloat2
	// KindFloat3 is a 3-component float vector.
	KindFloat3
	// KindColor is a scene-linear RGBA float color.
	KindColor
	// KindByteColor is an sRGB-encoded RGBA byte color.
	KindByteColor
)

// NumKinds is one past the last valid kind, usable as an array bound.
const NumKinds = int(KindByteColor) + 1

// Kinds lists every valid kind in declaration order.
var Kinds = [...]ValueKind{
	KindBool, KindInt8, KindInt32, KindInt2, KindFloat,
	KindFloat2, KindFloat3, KindColor, KindByteColor,
}

// Int2 is a pair of 32-bit integers.
type Int2 struct {
	X, Y int32
}

// Float2 and Float3 are the Go types of the float vector kinds.
type (
	Float2 = f32.Vec2
	Float3 = f32.Vec3
)

// ColorGeometry4f is the Go type of KindColor.
type ColorGeometry4f = color.Linear

// ColorGeometry4b is the Go type of KindByteColor.
type ColorGeometry4b = color.Encoded

// Value is the union of Go types that back a ValueKind.
type Value interface {
	bool | int8 | int32 | Int2 | float32 | Float2 | Float3 | ColorGeometry4f | ColorGeometry4b
}

// Info describes the layout of a value kind.
type Info struct {
	Name  string
	Size  int
	Align int
}

var infos = [NumKinds]Info{
	KindInvalid:   {Name: "invalid"},
	KindBool:      {Name: "bool", Size: 1, Align: 1},
	KindInt8:      {Name: "int8", Size: 1, Align: 1},
	KindInt32:     {Name: "int32", Size: 4, Align: 4},
	KindInt2:      {Name: "int2", Size: 8, Align: 4},
	KindFloat:     {Name: "float", Size: 4, Align: 4},
	KindFloat2:    {Name: "float2", Size: 8, Align: 4},
	KindFloat3:    {Name: "float3", Size: 12, Align: 4},
	KindColor:     {Name: "color", Size: 16, Align: 4},
	KindByteColor: {Name: "byte_color", Size: 4, Align: 1},
}

// Info returns the layout description of k.
func (k ValueKind) Info() Info {
	if int(k) >= NumKinds {
		return infos[KindInvalid]
	}
	return infos[k]
}

// IsValid reports whether k names a storable kind.
func (k ValueKind) IsValid() bool {
	return k > KindInvalid && int(k) < NumKinds
}

// String returns the kind's canonical name.
func (k ValueKind) String() string {
	if int(k) >= NumKinds {
		return fmt.Sprintf("ValueKind(%d)", uint8(k))
	}
	return infos[k].Name
}

// ParseKind resolves a canonical kind name as returned by String.
func ParseKind(name string) (ValueKind, bool) {
	for _, k := range Kinds {
		if infos[k].Name == name {
			return k, true
		}
	}
	return KindInvalid, false
}

// KindOf returns the kind backed by the Go type T.
func KindOf[T Value]() ValueKind {
	var zero T
	return KindOfValue(zero)
}

// KindOfValue returns the kind of a boxed value, or KindInvalid.
func KindOfValue(v any) ValueKind {
	switch v.(type) {
	case bool:
		return KindBool
	case int8:
		return KindInt8
	case int32:
		return KindInt32
	case Int2:
		return KindInt2
	case float32:
		return KindFloat
	case Float2:
		return KindFloat2
	case Float3:
		return KindFloat3
	case ColorGeometry4f:
		return KindColor
	case ColorGeometry4b:
		return KindByteColor
	}
	return KindInvalid
}

// DefaultValue returns the boxed default (zero) value of k, or nil for an
// invalid kind.
func DefaultValue(k ValueKind) any {
	switch k {
	case KindBool:
		return false
	case KindInt8:
		return int8(0)
	case KindInt32:
		return int32(0)
	case KindInt2:
		return Int2{}
	case KindFloat:
		return float32(0)
	case KindFloat2:
		return Float2{}
	case KindFloat3:
		return Float3{}
	case KindColor:
		return ColorGeometry4f{}
	case KindByteColor:
		return ColorGeometry4b{}
	}
	return nil
}

package attribute

import (
	"github.com/gogpu/geofield/field"
	"github.com/gogpu/geofield/types"
)

// Validator adjusts a field before it is written into a builtin attribute,
// for example clamping an index to be non-negative.
type Validator func(f field.Field) field.Field

// Builtin describes an attribute whose identifier is reserved by a
// geometry type.
type Builtin struct {
	Domain Domain
	Kind   types.ValueKind
	// Deletable builtins may be absent; the others always exist.
	Deletable bool
	Validator Validator
}

// Builtins maps reserved identifiers to their descriptions.
type Builtins map[ID]Builtin

// Lookup returns the builtin registered under id.
func (b Builtins) Lookup(id ID) (Builtin, bool) {
	info, ok := b[id]
	return info, ok
}

// IsRequired reports whether id names a builtin that cannot be removed.
func (b Builtins) IsRequired(id ID) bool {
	info, ok := b[id]
	return ok && !info.Deletable
}

// ClampMin returns a validator that raises values below lo to lo.
func ClampMin(lo int32) Validator {
	return func(f field.Field) field.Field {
		return field.Map("clamp_min", f, func(v int32) int32 { return max(v, lo) })
	}
}

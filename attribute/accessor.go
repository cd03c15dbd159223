package attribute

import (
	"github.com/gogpu/geofield/conversion"
	"github.com/gogpu/geofield/sharing"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

// Provider is implemented by geometry types to expose their attributes.
type Provider interface {
	// DomainSize returns the number of elements of domain d, or 0 when the
	// geometry has no such domain.
	DomainSize(d Domain) int
	// SupportsDomain reports whether attributes may live on d.
	SupportsDomain(d Domain) bool
	// Storage returns the attribute arrays. Callers that write must own
	// the geometry exclusively.
	Storage() *Storage
	// Builtins returns the reserved attributes of the geometry type.
	Builtins() Builtins
	// AdaptDomain interpolates src from one supported domain to another.
	// It returns the empty array when no interpolation exists.
	AdaptDomain(src varray.GVArray, from, to Domain) varray.GVArray
	// TagModified invalidates caches derived from the attribute id.
	TagModified(id ID)
}

// Reader is a read-only view of a stored attribute.
type Reader struct {
	VArray varray.GVArray
	Domain Domain
	// Sharing is the token of the stored buffer; holders of the same token
	// alias the same data.
	Sharing *sharing.Info
}

// Accessor reads attributes through a Provider.
type Accessor struct {
	p Provider
}

// NewAccessor returns an accessor over p.
func NewAccessor(p Provider) Accessor { return Accessor{p: p} }

// IsValid reports whether the accessor wraps a provider.
func (a Accessor) IsValid() bool { return a.p != nil }

// DomainSize returns the number of elements of domain d.
func (a Accessor) DomainSize(d Domain) int { return a.p.DomainSize(d) }

// SupportsDomain reports whether attributes may live on d.
func (a Accessor) SupportsDomain(d Domain) bool { return a.p.SupportsDomain(d) }

// Contains reports whether id is stored.
func (a Accessor) Contains(id ID) bool { return a.p.Storage().Contains(id) }

// IsBuiltin reports whether id is reserved by the geometry type.
func (a Accessor) IsBuiltin(id ID) bool {
	_, ok := a.p.Builtins().Lookup(id)
	return ok
}

// LookupMeta returns the domain and kind of id.
func (a Accessor) LookupMeta(id ID) (MetaData, bool) {
	arr, ok := a.p.Storage().Lookup(id)
	if !ok {
		return MetaData{}, false
	}
	return arr.Meta(), true
}

// Lookup returns id on its stored domain with its stored kind.
func (a Accessor) Lookup(id ID) (Reader, bool) {
	arr, ok := a.p.Storage().Lookup(id)
	if !ok {
		return Reader{}, false
	}
	return Reader{VArray: varray.ForGSpan(arr.Data), Domain: arr.Domain, Sharing: arr.Sharing}, true
}

// LookupOnDomain returns id interpolated to domain d, keeping its kind.
// The result is empty when id is absent or cannot reach d.
func (a Accessor) LookupOnDomain(id ID, d Domain) varray.GVArray {
	r, ok := a.Lookup(id)
	if !ok {
		return varray.GVArray{}
	}
	return a.AdaptDomain(r.VArray, r.Domain, d)
}

// LookupAs returns id on domain d converted to kind k. The result has
// DomainSize(d) elements, or is empty when the attribute is absent, cannot
// be interpolated to d or cannot be converted to k.
func (a Accessor) LookupAs(id ID, d Domain, k types.ValueKind) varray.GVArray {
	v := a.LookupOnDomain(id, d)
	if v.IsEmpty() {
		return v
	}
	return conversion.TryConvert(v, k)
}

// LookupOrDefault is LookupAs falling back to def on every element.
func (a Accessor) LookupOrDefault(id ID, d Domain, k types.ValueKind, def any) varray.GVArray {
	if v := a.LookupAs(id, d, k); !v.IsEmpty() {
		return v
	}
	if def == nil {
		return varray.ForSingleDefault(k, a.DomainSize(d))
	}
	return varray.ForSingleAny(k, conversion.Default().ConvertValue(types.KindOfValue(def), k, def), a.DomainSize(d))
}

// AdaptDomain interpolates v between domains of this geometry.
func (a Accessor) AdaptDomain(v varray.GVArray, from, to Domain) varray.GVArray {
	if v.IsEmpty() || from == to {
		return v
	}
	if !a.p.SupportsDomain(from) || !a.p.SupportsDomain(to) {
		return varray.GVArray{}
	}
	return a.p.AdaptDomain(v, from, to)
}

// ForEach calls fn for every attribute until fn returns false.
func (a Accessor) ForEach(fn func(id ID, meta MetaData) bool) {
	a.p.Storage().ForEach(func(arr Array) bool {
		return fn(arr.ID, arr.Meta())
	})
}

// AllIDs returns every stored identifier.
func (a Accessor) AllIDs() []ID { return a.p.Storage().IDs() }

package attribute

import (
	"sync"

	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

// Writer is a writable view of a stored attribute. Call Finish when done
// writing so the geometry can invalidate derived caches.
type Writer struct {
	VArray varray.GMutableVArray
	Domain Domain
	finish func()
}

// Finish reports the write to the geometry. Extra calls are no-ops.
func (w Writer) Finish() {
	if w.finish != nil {
		w.finish()
	}
}

// SpanWriter is a Writer over contiguous storage.
type SpanWriter struct {
	Span   varray.GSpan
	Domain Domain
	finish func()
}

// Finish reports the write to the geometry. Extra calls are no-ops.
func (w SpanWriter) Finish() {
	if w.finish != nil {
		w.finish()
	}
}

// MutableAccessor reads and writes attributes through a Provider. The
// geometry behind the provider must be exclusively owned.
type MutableAccessor struct {
	Accessor
}

// NewMutableAccessor returns a mutable accessor over p.
func NewMutableAccessor(p Provider) MutableAccessor {
	return MutableAccessor{Accessor: Accessor{p: p}}
}

func (a MutableAccessor) finisher(id ID) func() {
	return sync.OnceFunc(func() { a.p.TagModified(id) })
}

// Add creates attribute id on domain d with kind k. It fails when id
// exists, when d is unsupported, when id is a builtin with another domain
// or kind, or when init does not fit.
func (a MutableAccessor) Add(id ID, d Domain, k types.ValueKind, init Init) bool {
	if id.IsEmpty() || !k.IsValid() || !a.p.SupportsDomain(d) {
		return false
	}
	s := a.p.Storage()
	if s.Contains(id) {
		return false
	}
	if b, ok := a.p.Builtins().Lookup(id); ok && (b.Domain != d || b.Kind != k) {
		return false
	}
	data, info, ok := buildData(k, a.p.DomainSize(d), init)
	if !ok {
		return false
	}
	s.Add(id, d, data, info)
	a.p.TagModified(id)
	return true
}

// Remove deletes id. Required builtins cannot be removed.
func (a MutableAccessor) Remove(id ID) bool {
	if a.p.Builtins().IsRequired(id) {
		return false
	}
	if !a.p.Storage().Remove(id) {
		return false
	}
	a.p.TagModified(id)
	return true
}

// Rename moves attribute from to the identifier to. Builtins can be
// neither source nor target.
func (a MutableAccessor) Rename(from, to ID) bool {
	if to.IsEmpty() || a.IsBuiltin(from) || a.IsBuiltin(to) {
		return false
	}
	return a.p.Storage().Rename(from, to)
}

// LookupForWrite returns a writer for id, copying shared data first.
func (a MutableAccessor) LookupForWrite(id ID) (Writer, bool) {
	w, ok := a.LookupForWriteSpan(id)
	if !ok {
		return Writer{}, false
	}
	return Writer{VArray: varray.ForGMutableSpan(w.Span), Domain: w.Domain, finish: w.finish}, true
}

// LookupForWriteSpan returns a span writer for id, copying shared data
// first.
func (a MutableAccessor) LookupForWriteSpan(id ID) (SpanWriter, bool) {
	s := a.p.Storage()
	arr, ok := s.Lookup(id)
	if !ok {
		return SpanWriter{}, false
	}
	span, _ := s.SpanForWrite(id)
	return SpanWriter{Span: span, Domain: arr.Domain, finish: a.finisher(id)}, true
}

// LookupOrAddForWriteSpan returns a span writer for id on domain d with
// kind k, adding the attribute with init if absent. It fails when id exists
// with another domain or kind.
func (a MutableAccessor) LookupOrAddForWriteSpan(id ID, d Domain, k types.ValueKind, init Init) (SpanWriter, bool) {
	if meta, ok := a.LookupMeta(id); ok {
		if meta.Domain != d || meta.Kind != k {
			return SpanWriter{}, false
		}
		return a.LookupForWriteSpan(id)
	}
	if !a.Add(id, d, k, init) {
		return SpanWriter{}, false
	}
	return a.LookupForWriteSpan(id)
}

// LookupOrAddForWriteOnlySpan is LookupOrAddForWriteSpan for callers that
// overwrite every element; new data is not initialized beyond zeroing.
func (a MutableAccessor) LookupOrAddForWriteOnlySpan(id ID, d Domain, k types.ValueKind) (SpanWriter, bool) {
	return a.LookupOrAddForWriteSpan(id, d, k, InitConstruct{})
}

// Validator returns the field transform for builtin id, or nil.
func (a MutableAccessor) Validator(id ID) Validator {
	if b, ok := a.p.Builtins().Lookup(id); ok {
		return b.Validator
	}
	return nil
}

// RemoveAnonymous deletes every anonymous attribute.
func (a MutableAccessor) RemoveAnonymous() {
	for _, id := range a.AllIDs() {
		if id.IsAnonymous() {
			a.Remove(id)
		}
	}
}

// ReplaceData moves data into the existing attribute id. data must match
// the attribute's kind and domain size; the caller must not use it
// afterwards.
func (a MutableAccessor) ReplaceData(id ID, data varray.GSpan) bool {
	meta, ok := a.LookupMeta(id)
	if !ok || meta.Kind != data.Kind() || data.Len() != a.p.DomainSize(meta.Domain) {
		return false
	}
	a.p.Storage().Assign(id, data)
	a.p.TagModified(id)
	return true
}

package attribute

import (
	"github.com/gogpu/geofield/indexmask"
	"github.com/gogpu/geofield/sharing"
	"github.com/gogpu/geofield/varray"
)

// Array is one stored attribute: its data and the sharing token that
// tracks every owner of that data.
type Array struct {
	ID      ID
	Domain  Domain
	Data    varray.GSpan
	Sharing *sharing.Info
}

// Meta returns the domain and kind of the array.
func (a Array) Meta() MetaData {
	return MetaData{Domain: a.Domain, Kind: a.Data.Kind()}
}

// Storage holds the attribute arrays of one geometry in insertion order.
//
// Copies made with Copy share every array. Each Storage holds one user of
// each token it references, so a writer can tell whether anybody else
// still sees the data. Storage is not safe for concurrent mutation; the
// owning geometry must be exclusively owned before it is modified.
type Storage struct {
	arrays []*Array
}

// NewStorage returns an empty storage.
func NewStorage() *Storage { return &Storage{} }

// Len returns the number of stored arrays.
func (s *Storage) Len() int { return len(s.arrays) }

func (s *Storage) index(id ID) int {
	for i, a := range s.arrays {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// Lookup returns the array stored under id.
func (s *Storage) Lookup(id ID) (Array, bool) {
	if i := s.index(id); i >= 0 {
		return *s.arrays[i], true
	}
	return Array{}, false
}

// Contains reports whether an array is stored under id.
func (s *Storage) Contains(id ID) bool { return s.index(id) >= 0 }

// Add stores data under id. A nil info creates a new token owned by this
// storage; a non-nil info gains a user. Returns false if id exists.
func (s *Storage) Add(id ID, domain Domain, data varray.GSpan, info *sharing.Info) bool {
	if s.Contains(id) {
		return false
	}
	if info == nil {
		info = sharing.New()
	} else {
		info.AddUser()
	}
	s.arrays = append(s.arrays, &Array{ID: id, Domain: domain, Data: data, Sharing: info})
	return true
}

// Remove drops the array stored under id.
func (s *Storage) Remove(id ID) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.arrays[i].Sharing.RemoveUser()
	s.arrays = append(s.arrays[:i], s.arrays[i+1:]...)
	return true
}

// Rename moves the array stored under from to to.
func (s *Storage) Rename(from, to ID) bool {
	i := s.index(from)
	if i < 0 || s.Contains(to) {
		return false
	}
	s.arrays[i].ID = to
	return true
}

// Assign replaces the data of an existing array, keeping its domain.
// data becomes exclusively owned by this storage.
func (s *Storage) Assign(id ID, data varray.GSpan) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	a := s.arrays[i]
	a.Sharing.RemoveUser()
	a.Data = data
	a.Sharing = sharing.New()
	return true
}

// SpanForWrite returns the data of id for writing, copying it first if
// another owner shares it.
func (s *Storage) SpanForWrite(id ID) (varray.GSpan, bool) {
	i := s.index(id)
	if i < 0 {
		return varray.GSpan{}, false
	}
	a := s.arrays[i]
	if a.Sharing.IsShared() {
		a.Data = a.Data.Clone()
		a.Sharing.RemoveUser()
		a.Sharing = sharing.New()
	}
	return a.Data, true
}

// Resize changes the length of every array on domain d to n. Kept
// elements are copied into fresh buffers; new elements are zero, which is
// the default value of every kind.
func (s *Storage) Resize(d Domain, n int) {
	for _, a := range s.arrays {
		if a.Domain != d || a.Data.Len() == n {
			continue
		}
		grown := varray.NewGSpan(a.Data.Kind(), n)
		grown.CopyFrom(indexmask.FromSize(min(n, a.Data.Len())), a.Data)
		a.Sharing.RemoveUser()
		a.Data = grown
		a.Sharing = sharing.New()
	}
}

// ForEach calls fn for every array until fn returns false.
func (s *Storage) ForEach(fn func(a Array) bool) {
	for _, a := range s.arrays {
		if !fn(*a) {
			return
		}
	}
}

// IDs returns the stored identifiers in insertion order.
func (s *Storage) IDs() []ID {
	out := make([]ID, len(s.arrays))
	for i, a := range s.arrays {
		out[i] = a.ID
	}
	return out
}

// Copy returns a storage sharing every array of s.
func (s *Storage) Copy() *Storage {
	out := &Storage{arrays: make([]*Array, len(s.arrays))}
	for i, a := range s.arrays {
		a.Sharing.AddUser()
		c := *a
		out.arrays[i] = &c
	}
	return out
}

// Release drops this storage's user of every array and empties it.
func (s *Storage) Release() {
	for _, a := range s.arrays {
		a.Sharing.RemoveUser()
	}
	s.arrays = nil
}

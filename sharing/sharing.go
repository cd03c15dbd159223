// Package sharing implements the reference-counted token that lets several
// owners alias one immutable buffer.
//
// A buffer together with its *Info is shared when more than one owner holds
// the token. Owners must check IsMutable before writing in place and copy
// the buffer otherwise. The garbage collector reclaims memory; the count
// only tracks logical ownership so copy-on-write knows when a copy is needed.
package sharing

import "sync/atomic"

// Info is a reference-counted sharing token.
// The zero value is not usable; create tokens with New.
type Info struct {
	users atomic.Int32
}

// New returns a token held by exactly one owner.
func New() *Info {
	info := &Info{}
	info.users.Store(1)
	return info
}

// AddUser registers an additional owner.
func (s *Info) AddUser() {
	s.users.Add(1)
}

// RemoveUser drops one owner. Removing more owners than were added panics.
func (s *Info) RemoveUser() {
	if s.users.Add(-1) < 0 {
		panic("sharing: RemoveUser called on released token")
	}
}

// Users returns the current number of owners.
func (s *Info) Users() int {
	return int(s.users.Load())
}

// IsMutable reports whether the caller is the only owner.
func (s *Info) IsMutable() bool {
	return s.users.Load() == 1
}

// IsShared reports whether more than one owner holds the token.
func (s *Info) IsShared() bool {
	return s.users.Load() > 1
}

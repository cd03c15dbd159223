package attribute

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/geofield/types"
)

const (
	// anonymousPrefix marks identifiers created by NewAnonymous.
	anonymousPrefix = ".a_"
	// nameEscape is prepended to user names that would otherwise start with
	// anonymousPrefix. Names already starting with it are escaped as well so
	// that distinct names keep distinct identifiers.
	nameEscape = "\\"
)

// ID identifies an attribute. Named identifiers are NFC-normalized so that
// visually identical names match; anonymous identifiers are unique and
// never chosen by users.
type ID string

// NewName returns the identifier of a user-visible attribute name. The
// result is never anonymous.
func NewName(name string) ID {
	n := norm.NFC.String(name)
	if strings.HasPrefix(n, anonymousPrefix) || strings.HasPrefix(n, nameEscape) {
		n = nameEscape + n
	}
	return ID(n)
}

// NewAnonymous returns a fresh identifier for data created during field
// evaluation. Anonymous attributes must not leave the system; see
// MutableAccessor.RemoveAnonymous.
func NewAnonymous() ID {
	return ID(anonymousPrefix + uuid.NewString())
}

// IsAnonymous reports whether id was created by NewAnonymous.
func (id ID) IsAnonymous() bool {
	return strings.HasPrefix(string(id), anonymousPrefix)
}

// IsEmpty reports whether id is the empty identifier.
func (id ID) IsEmpty() bool { return id == "" }

// String returns the identifier text.
func (id ID) String() string { return string(id) }

// MetaData describes where an attribute lives and what it stores.
type MetaData struct {
	Domain Domain
	Kind   types.ValueKind
}

// Package attribute provides uniform read and write access to the
// attributes stored on geometry.
//
// An attribute is a named (or anonymous) array anchored to a topological
// domain. Concrete geometry types expose their storage through a Provider;
// Accessor and MutableAccessor wrap a provider with lookups that convert
// value kinds and interpolate between domains transparently.
package attribute

import "fmt"

// Domain is a topological element category of a geometry.
type Domain uint8

const (
	// Point is the vertex / control point domain.
	Point Domain = iota
	// Edge is the mesh edge domain.
	Edge
	// Face is the mesh face domain.
	Face
	// Corner is the mesh face corner domain.
	Corner
	// Curve is the curve domain.
	Curve
	// Instance is the instance domain.
	Instance
	// Layer is the grease pencil layer domain.
	Layer
)

// NumDomains is the number of domains.
const NumDomains = int(Layer) + 1

// Domains lists every domain in declaration order.
var Domains = [...]Domain{Point, Edge, Face, Corner, Curve, Instance, Layer}

var domainNames = [NumDomains]string{
	Point:    "point",
	Edge:     "edge",
	Face:     "face",
	Corner:   "corner",
	Curve:    "curve",
	Instance: "instance",
	Layer:    "layer",
}

// String returns the lower-case domain name.
func (d Domain) String() string {
	if int(d) >= NumDomains {
		return fmt.Sprintf("Domain(%d)", uint8(d))
	}
	return domainNames[d]
}

// ParseDomain resolves a name returned by String.
func ParseDomain(name string) (Domain, bool) {
	for _, d := range Domains {
		if domainNames[d] == name {
			return d, true
		}
	}
	return 0, false
}

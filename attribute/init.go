package attribute

import (
	"github.com/gogpu/geofield/conversion"
	"github.com/gogpu/geofield/sharing"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

// Init chooses how a new attribute's data is initialized.
type Init interface {
	initPolicy()
}

// InitDefault fills the attribute with the kind's default value.
type InitDefault struct{}

// InitConstruct allocates the attribute for the caller to overwrite
// completely. Memory is zeroed, which for every kind is also the default.
type InitConstruct struct{}

// InitValue fills the attribute with one value, converted to the
// attribute's kind when necessary.
type InitValue struct {
	Value any
}

// InitVArray copies the attribute data from a virtual array of the domain's
// size, converting the kind when necessary.
type InitVArray struct {
	VArray varray.GVArray
}

// InitMoveArray hands an already filled buffer to the attribute. The
// caller must not use Data afterwards.
type InitMoveArray struct {
	Data varray.GSpan
}

// InitShared aliases a buffer owned through Sharing. The attribute becomes
// one more user of the token and copies the data before its first write.
type InitShared struct {
	Data    varray.GSpan
	Sharing *sharing.Info
}

func (InitDefault) initPolicy()   {}
func (InitConstruct) initPolicy() {}
func (InitValue) initPolicy()     {}
func (InitVArray) initPolicy()    {}
func (InitMoveArray) initPolicy() {}
func (InitShared) initPolicy()    {}

// buildData creates the buffer of a new attribute. A nil token means the
// buffer is new and exclusively owned.
func buildData(kind types.ValueKind, size int, init Init) (varray.GSpan, *sharing.Info, bool) {
	switch in := init.(type) {
	case nil, InitDefault, InitConstruct:
		return varray.NewGSpan(kind, size), nil, true
	case InitValue:
		from := types.KindOfValue(in.Value)
		if !conversion.IsConvertible(from, kind) {
			return varray.GSpan{}, nil, false
		}
		data := varray.NewGSpan(kind, size)
		data.Fill(conversion.Default().ConvertValue(from, kind, in.Value))
		return data, nil, true
	case InitVArray:
		v := conversion.TryConvert(in.VArray, kind)
		if v.IsEmpty() || v.Size() != size {
			return varray.GSpan{}, nil, false
		}
		return v.Materialize(), nil, true
	case InitMoveArray:
		if in.Data.Kind() != kind || in.Data.Len() != size {
			return varray.GSpan{}, nil, false
		}
		return in.Data, nil, true
	case InitShared:
		if in.Data.Kind() != kind || in.Data.Len() != size || in.Sharing == nil {
			return varray.GSpan{}, nil, false
		}
		return in.Data, in.Sharing, true
	}
	return varray.GSpan{}, nil, false
}

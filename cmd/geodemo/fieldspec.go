package main

import (
	"fmt"

	"github.com/gogpu/geofield/attribute"
	"github.com/gogpu/geofield/field"
	"github.com/gogpu/geofield/geometry"
	"github.com/gogpu/geofield/types"
)

var floatOps = map[string]func(a, b float32) float32{
	"add": func(a, b float32) float32 { return a + b },
	"sub": func(a, b float32) float32 { return a - b },
	"mul": func(a, b float32) float32 { return a * b },
}

var compareOps = map[string]func(a, b float32) bool{
	"less":    func(a, b float32) bool { return a < b },
	"greater": func(a, b float32) bool { return a > b },
}

var boolOps = map[string]func(a, b bool) bool{
	"and": func(a, b bool) bool { return a && b },
	"or":  func(a, b bool) bool { return a || b },
}

// Build returns the field described by fs.
func (fs FieldSpec) Build() (field.Field, error) {
	switch {
	case fs.Input != "":
		return fs.buildInput()
	case fs.Op != "":
		return fs.buildOp()
	case fs.Value != nil:
		k, err := fs.kind(types.KindFloat)
		if err != nil {
			return field.Field{}, err
		}
		v, err := constantValue(k, fs.Value)
		if err != nil {
			return field.Field{}, err
		}
		return field.ConstantAny(k, v), nil
	}
	return field.Field{}, fmt.Errorf("%w: field needs input, op or value", errUnknownInput)
}

func (fs FieldSpec) kind(def types.ValueKind) (types.ValueKind, error) {
	if fs.Type == "" {
		return def, nil
	}
	k, ok := types.ParseKind(fs.Type)
	if !ok {
		return types.KindInvalid, fmt.Errorf("%w %q", errUnknownKind, fs.Type)
	}
	return k, nil
}

func (fs FieldSpec) buildInput() (field.Field, error) {
	switch fs.Input {
	case "index":
		return field.Index(), nil
	case "position":
		return geometry.Position(), nil
	case "normal":
		return geometry.Normal(), nil
	case "id":
		return geometry.ID(), nil
	case "attribute":
		k, err := fs.kind(types.KindFloat)
		if err != nil {
			return field.Field{}, err
		}
		return geometry.Attribute(attribute.NewName(fs.Name), k), nil
	case "exists":
		return geometry.AttributeExists(attribute.NewName(fs.Name)), nil
	case "layer":
		return geometry.NamedLayerSelection(fs.Name), nil
	}
	return field.Field{}, fmt.Errorf("%w %q", errUnknownInput, fs.Input)
}

func (fs FieldSpec) buildOp() (field.Field, error) {
	args := make([]field.Field, len(fs.Args))
	for i, a := range fs.Args {
		f, err := a.Build()
		if err != nil {
			return field.Field{}, fmt.Errorf("%s arg %d: %w", fs.Op, i, err)
		}
		args[i] = f
	}

	arity := 2
	switch fs.Op {
	case "not", "convert":
		arity = 1
	}
	if len(args) != arity {
		return field.Field{}, fmt.Errorf("%s takes %d arguments, got %d", fs.Op, arity, len(args))
	}

	var out field.Field
	if fn, ok := floatOps[fs.Op]; ok {
		out = field.Map2(fs.Op, args[0], args[1], fn)
	} else if fn, ok := compareOps[fs.Op]; ok {
		out = field.Map2(fs.Op, args[0], args[1], fn)
	} else if fn, ok := boolOps[fs.Op]; ok {
		out = field.Map2(fs.Op, args[0], args[1], fn)
	} else {
		switch fs.Op {
		case "not":
			out = field.Map("not", args[0], func(v bool) bool { return !v })
		case "convert":
			k, err := fs.kind(types.KindInvalid)
			if err != nil {
				return field.Field{}, err
			}
			out = field.Convert(args[0], k)
		default:
			return field.Field{}, fmt.Errorf("%w %q", errUnknownOp, fs.Op)
		}
	}
	if out.IsEmpty() {
		return field.Field{}, fmt.Errorf("%s: operands are not convertible", fs.Op)
	}
	return out, nil
}

// constantValue converts a decoded YAML value into a value of kind k.
// Vector kinds take lists; colors accept three components with alpha 1.
func constantValue(k types.ValueKind, raw any) (any, error) {
	if k == types.KindBool {
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %v is not a bool", errBadValue, raw)
		}
		return b, nil
	}
	n, err := numbers(raw)
	if err != nil {
		return nil, err
	}
	want := map[types.ValueKind]int{
		types.KindInt8: 1, types.KindInt32: 1, types.KindFloat: 1,
		types.KindInt2: 2, types.KindFloat2: 2, types.KindFloat3: 3,
	}[k]
	if k == types.KindColor || k == types.KindByteColor {
		if len(n) == 3 {
			a := 1.0
			if k == types.KindByteColor {
				a = 255
			}
			n = append(n, a)
		}
		want = 4
	}
	if want == 0 || len(n) != want {
		return nil, fmt.Errorf("%w: %v for %v", errBadValue, raw, k)
	}

	switch k {
	case types.KindInt8:
		return int8(n[0]), nil
	case types.KindInt32:
		return int32(n[0]), nil
	case types.KindInt2:
		return types.Int2{X: int32(n[0]), Y: int32(n[1])}, nil
	case types.KindFloat:
		return float32(n[0]), nil
	case types.KindFloat2:
		return types.Float2{float32(n[0]), float32(n[1])}, nil
	case types.KindFloat3:
		return types.Float3{float32(n[0]), float32(n[1]), float32(n[2])}, nil
	case types.KindColor:
		return types.ColorGeometry4f{R: float32(n[0]), G: float32(n[1]), B: float32(n[2]), A: float32(n[3])}, nil
	default:
		return types.ColorGeometry4b{R: uint8(n[0]), G: uint8(n[1]), B: uint8(n[2]), A: uint8(n[3])}, nil
	}
}

func numbers(raw any) ([]float64, error) {
	switch v := raw.(type) {
	case int:
		return []float64{float64(v)}, nil
	case float64:
		return []float64{v}, nil
	case []any:
		out := make([]float64, 0, len(v))
		for _, e := range v {
			n, err := numbers(e)
			if err != nil || len(n) != 1 {
				return nil, fmt.Errorf("%w: %v", errBadValue, raw)
			}
			out = append(out, n[0])
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %v", errBadValue, raw)
}

package field

import (
	"fmt"

	"github.com/gogpu/geofield"
	"github.com/gogpu/geofield/conversion"
	"github.com/gogpu/geofield/indexmask"
	"github.com/gogpu/geofield/internal/parallel"
	"github.com/gogpu/geofield/metrics"
	"github.com/gogpu/geofield/types"
	"github.com/gogpu/geofield/varray"
)

// Option configures an Evaluator.
type Option func(*evaluatorOptions)

type evaluatorOptions struct {
	grain     int
	selection Field
}

func defaultEvaluatorOptions() evaluatorOptions {
	return evaluatorOptions{grain: parallel.GrainElements}
}

// WithGrainSize sets the minimum number of elements an operation processes
// per parallel task.
func WithGrainSize(n int) Option {
	return func(o *evaluatorOptions) {
		if n > 0 {
			o.grain = n
		}
	}
}

// WithSelection restricts evaluation to the elements where selection is
// true. selection is implicitly converted to bool.
func WithSelection(selection Field) Option {
	return func(o *evaluatorOptions) {
		o.selection = selection
	}
}

// Evaluator evaluates a batch of fields on one context.
//
// Fields are added with Add or AddWithDestination, evaluated together with
// Evaluate, and read back with Get. Shared sub-graphs of the batch are
// computed once.
//
// Example:
//
//	ev := field.NewEvaluator(ctx, domainSize, field.WithSelection(sel))
//	i := ev.Add(positions)
//	ev.Evaluate()
//	values := ev.Get(i)
type Evaluator struct {
	ctx  Context
	mask indexmask.Mask
	opts evaluatorOptions

	fields []Field
	dsts   []varray.GMutableVArray

	evaluated     bool
	selectionMask indexmask.Mask
	results       []varray.GVArray
}

// NewEvaluator returns an evaluator over the elements [0, size) of ctx.
func NewEvaluator(ctx Context, size int, opts ...Option) *Evaluator {
	return NewEvaluatorForMask(ctx, indexmask.FromSize(size), opts...)
}

// NewEvaluatorForMask returns an evaluator over the elements of mask.
func NewEvaluatorForMask(ctx Context, mask indexmask.Mask, opts ...Option) *Evaluator {
	o := defaultEvaluatorOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Evaluator{ctx: ctx, mask: mask, opts: o}
}

// SetSelection replaces the selection field. Must be called before Evaluate.
func (e *Evaluator) SetSelection(selection Field) {
	e.checkNotEvaluated()
	e.opts.selection = selection
}

// Add schedules f and returns the index of its result.
func (e *Evaluator) Add(f Field) int {
	return e.AddWithDestination(f, varray.GMutableVArray{})
}

// AddWithDestination schedules f to be written into dst at the selected
// indices. dst must have the field's kind.
func (e *Evaluator) AddWithDestination(f Field, dst varray.GMutableVArray) int {
	e.checkNotEvaluated()
	if !dst.IsEmpty() && dst.Kind() != f.Kind() {
		panic(fmt.Sprintf("field: %v field written into %v destination", f.Kind(), dst.Kind()))
	}
	e.fields = append(e.fields, f)
	e.dsts = append(e.dsts, dst)
	return len(e.fields) - 1
}

func (e *Evaluator) checkNotEvaluated() {
	if e.evaluated {
		panic("field: evaluator modified after Evaluate")
	}
}

// Evaluate computes every scheduled field. It may be called once.
func (e *Evaluator) Evaluate() {
	e.checkNotEvaluated()
	e.evaluated = true

	e.selectionMask = e.mask
	if !e.opts.selection.IsEmpty() {
		sel := evaluateFields(e.ctx, e.mask, []Field{Convert(e.opts.selection, types.KindBool)}, nil, e.opts.grain)
		e.selectionMask = maskFromBools(sel[0], e.mask, e.opts.grain)
	}

	e.results = evaluateFields(e.ctx, e.selectionMask, e.fields, e.dsts, e.opts.grain)

	metrics.FieldEvaluations.Inc()
	metrics.EvaluatedElements.Add(float64(e.selectionMask.Size()))
	geofield.Logger().Debug("field evaluation",
		"fields", len(e.fields),
		"universe", e.mask.Size(),
		"selected", e.selectionMask.Size())
}

// Get returns the result of the field with index i. Results with a
// destination view the destination.
func (e *Evaluator) Get(i int) varray.GVArray {
	if !e.evaluated {
		panic("field: Get before Evaluate")
	}
	return e.results[i]
}

// GetAsMask returns the selected indices where the bool field i is true.
func (e *Evaluator) GetAsMask(i int) indexmask.Mask {
	return maskFromBools(conversion.TryConvert(e.Get(i), types.KindBool), e.selectionMask, e.opts.grain)
}

// SelectionMask returns the evaluated selection. Without a selection field
// it is the evaluator's full mask.
func (e *Evaluator) SelectionMask() indexmask.Mask {
	if !e.evaluated {
		panic("field: SelectionMask before Evaluate")
	}
	return e.selectionMask
}

func maskFromBools(g varray.GVArray, universe indexmask.Mask, grain int) indexmask.Mask {
	if g.IsEmpty() {
		return indexmask.Mask{}
	}
	if v, ok := g.Single(); ok {
		if v.(bool) {
			return universe
		}
		return indexmask.Mask{}
	}
	if span, ok := g.Span(); ok {
		return indexmask.FromBools(varray.SpanOf[bool](span), universe)
	}
	typed := varray.Typed[bool](g)
	return indexmask.FromPredicate(universe, grain, typed.Get)
}

// EvaluateFields evaluates fields on the indices of mask. Fields with a
// non-empty destination in dsts are written into it; dsts may be shorter
// than fields.
func EvaluateFields(ctx Context, mask indexmask.Mask, fields []Field, dsts []varray.GMutableVArray) []varray.GVArray {
	return evaluateFields(ctx, mask, fields, dsts, parallel.GrainElements)
}

type memoEntry struct {
	node   Node
	result varray.GVArray
}

// evaluation holds the state of one batch.
type evaluation struct {
	ctx   Context
	mask  indexmask.Mask
	size  int
	grain int
	memo  map[uint64][]memoEntry
}

func evaluateFields(ctx Context, mask indexmask.Mask, fields []Field, dsts []varray.GMutableVArray, grain int) []varray.GVArray {
	ev := &evaluation{
		ctx:   ctx,
		mask:  mask,
		size:  mask.MinArraySize(),
		grain: grain,
		memo:  make(map[uint64][]memoEntry),
	}
	results := make([]varray.GVArray, len(fields))
	for i, f := range fields {
		if f.IsEmpty() {
			continue
		}
		var dst varray.GMutableVArray
		if i < len(dsts) {
			dst = dsts[i]
		}
		if dst.IsEmpty() {
			results[i] = ev.eval(f.node)
			continue
		}
		results[i] = ev.evalInto(f.node, dst)
	}
	return results
}

func (ev *evaluation) lookup(n Node) (varray.GVArray, bool) {
	for _, e := range ev.memo[n.Hash()] {
		if e.node.Equal(n) {
			return e.result, true
		}
	}
	return varray.GVArray{}, false
}

func (ev *evaluation) store(n Node, r varray.GVArray) {
	h := n.Hash()
	ev.memo[h] = append(ev.memo[h], memoEntry{node: n, result: r})
}

func (ev *evaluation) eval(n Node) varray.GVArray {
	if r, ok := ev.lookup(n); ok {
		return r
	}
	r := ev.compute(n, varray.GSpan{})
	ev.store(n, r)
	return r
}

// evalInto evaluates n into dst. Operations not yet computed write their
// output straight into dst's storage.
func (ev *evaluation) evalInto(n Node, dst varray.GMutableVArray) varray.GVArray {
	op, isOp := n.(*OperationNode)
	span, hasSpan := dst.Span()
	if _, cached := ev.lookup(n); isOp && hasSpan && !cached {
		r := ev.operation(op, span)
		if rs, ok := r.Span(); !ok || !rs.SameStorage(span) {
			dst.SetAllFrom(ev.mask, r)
		}
		ev.store(n, dst.ReadOnly())
		return dst.ReadOnly()
	}
	dst.SetAllFrom(ev.mask, ev.eval(n))
	return dst.ReadOnly()
}

func (ev *evaluation) compute(n Node, dst varray.GSpan) varray.GVArray {
	switch x := n.(type) {
	case *ConstantNode:
		return varray.ForSingleAny(x.kind, x.value, ev.size)
	case *ConversionNode:
		return conversion.TryConvert(ev.eval(x.src.node), x.to)
	case *OperationNode:
		return ev.operation(x, dst)
	case Input:
		return ev.input(x)
	}
	panic(fmt.Sprintf("field: unsupported node %T", n))
}

// input reads an input from the context. Unavailable inputs evaluate to
// the default value of their kind.
func (ev *evaluation) input(in Input) varray.GVArray {
	r := ev.ctx.VArrayForInput(in, ev.mask)
	if !r.IsEmpty() && r.Kind() != in.Kind() {
		r = conversion.TryConvert(r, in.Kind())
	}
	if r.IsEmpty() {
		return varray.ForSingleDefault(in.Kind(), ev.size)
	}
	return r
}

func (ev *evaluation) operation(op *OperationNode, dst varray.GSpan) varray.GVArray {
	inputs := make([]varray.GVArray, len(op.inputs))
	allSingle := true
	for i, in := range op.inputs {
		inputs[i] = ev.eval(in.node)
		if !inputs[i].IsSingle() {
			allSingle = false
		}
	}

	if allSingle {
		one := make([]varray.GVArray, len(inputs))
		for i, in := range inputs {
			v, _ := in.Single()
			one[i] = varray.ForSingleAny(in.Kind(), v, 1)
		}
		buf := varray.NewGSpan(op.kind, 1)
		op.fn(one, indexmask.FromSize(1), buf)
		return varray.ForSingleAny(op.kind, buf.Get(0), ev.size)
	}

	if dst.IsEmpty() {
		dst = varray.NewGSpan(op.kind, ev.size)
	}
	ev.mask.ForEachChunk(ev.grain, func(chunk indexmask.Mask) {
		op.fn(inputs, chunk, dst)
	})
	return varray.ForGSpan(dst)
}

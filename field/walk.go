package field

// parentNode is implemented by nodes with child fields.
type parentNode interface {
	Node
	Children() []Field
}

// Inputs returns the distinct inputs of f in depth-first order.
// Inputs that compare Equal are reported once.
func Inputs(f Field) []Input {
	var out []Input
	seen := map[uint64][]Input{}
	var walk func(n Node)
	walk = func(n Node) {
		switch x := n.(type) {
		case Input:
			h := x.Hash()
			for _, s := range seen[h] {
				if s.Equal(x) {
					return
				}
			}
			seen[h] = append(seen[h], x)
			out = append(out, x)
		case parentNode:
			for _, c := range x.Children() {
				if c.node != nil {
					walk(c.node)
				}
			}
		}
	}
	if f.node != nil {
		walk(f.node)
	}
	return out
}

// DependsOnInput reports whether evaluating f reads any input.
func DependsOnInput(f Field) bool {
	var walk func(n Node) bool
	walk = func(n Node) bool {
		switch x := n.(type) {
		case Input:
			return true
		case parentNode:
			for _, c := range x.Children() {
				if c.node != nil && walk(c.node) {
					return true
				}
			}
		}
		return false
	}
	return f.node != nil && walk(f.node)
}

package diag

import "github.com/maruel/natural"

// naturalLess orders diagnostic codes the way a human reading a sorted
// list expects ("E2" before "E10"), rather than plain byte comparison.
func naturalLess(a, b string) bool {
	return natural.Less(a, b)
}

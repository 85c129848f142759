// Package reward converts a root-to-winner referral path into an exact,
// loss-free split of a reward held in integer minor units.
package reward

import (
	"questflow/pkg/errutil"
	"questflow/services/graph"
)

// Allocation pairs one node on the path with its computed amount.
type Allocation struct {
	Node     *graph.Node
	Position int
	Amount   int64
}

// Split distributes amount across the given root-first path.
//
// The winner takes half, each predecessor toward the root takes half of what
// remains, and the root absorbs the final remainder so the allocations always
// sum to exactly amount. For a single-node path the root is the winner and
// takes everything. Halving the live remainder rather than computing 2^-i
// shares keeps the arithmetic exact for odd amounts at every step.
func Split(path []*graph.Node, amount int64) ([]Allocation, error) {
	if len(path) == 0 {
		return nil, errutil.BadRequest("empty reward path")
	}
	if amount < 0 {
		return nil, errutil.BadRequest("negative reward amount")
	}

	n := len(path)
	out := make([]Allocation, n)

	remaining := amount
	for i := n - 1; i >= 1; i-- {
		half := remaining / 2
		out[i] = Allocation{Node: path[i], Position: n - i, Amount: half}
		remaining -= half
	}
	// Root closes the series instead of continuing it.
	out[0] = Allocation{Node: path[0], Position: n, Amount: remaining}

	return out, nil
}

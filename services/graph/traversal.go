package graph

import (
	"context"
	"sort"

	"questflow/pkg/db/option"
	"questflow/pkg/errutil"
	"questflow/pkg/repository"

	"gorm.io/gorm"
)

// Traverser reconstructs ancestor and descendant branches of a quest's
// referral tree. Trees have unbounded depth and fan-out, so both walks are
// explicit loops over an adjacency view, never language-level recursion.
type Traverser struct {
	nodes repository.Repository[Node]
}

func NewTraverser(db *gorm.DB) *Traverser {
	return &Traverser{
		nodes: repository.ProvideStore[Node](db),
	}
}

// Descendant tags a node with its depth below the branch origin (+1, +2, ...).
type Descendant struct {
	Node  *Node
	Depth int
}

// NodeForUser locates the caller's position in the quest. Returns (nil, nil)
// when the user never joined.
func (t *Traverser) NodeForUser(ctx context.Context, questID, userID string) (*Node, error) {
	return t.nodes.FindOne(ctx, &Node{QuestID: questID, UserID: userID})
}

// Ancestors returns the ordered path from the quest's root node down to the
// caller's node, root first. A parent chain that leaves the quest, dangles, or
// loops is corrupted data and fails with GraphCorruption rather than walking
// forever.
func (t *Traverser) Ancestors(ctx context.Context, questID, userID string) ([]*Node, error) {
	self, err := t.NodeForUser(ctx, questID, userID)
	if err != nil {
		return nil, err
	}
	if self == nil {
		return nil, errutil.NotFound("user has no node in this quest")
	}

	return t.AncestorsOf(ctx, self)
}

// AncestorsOf walks parent edges from the given node up to the root. The walk
// is bounded by the quest's node count; exceeding it means a cycle.
func (t *Traverser) AncestorsOf(ctx context.Context, self *Node) ([]*Node, error) {
	total, err := t.nodes.Count(ctx, &Node{QuestID: self.QuestID})
	if err != nil {
		return nil, err
	}

	path := []*Node{self}
	seen := map[string]bool{self.ID: true}

	cur := self
	for cur.ParentID != nil {
		if int64(len(path)) > total {
			return nil, errutil.GraphCorruption("ancestor walk exceeded quest node count")
		}

		parent, err := t.nodes.FindOne(ctx, &Node{ID: *cur.ParentID})
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, errutil.GraphCorruption("node references a missing parent")
		}
		if parent.QuestID != self.QuestID {
			return nil, errutil.GraphCorruption("parent belongs to a different quest")
		}
		if seen[parent.ID] {
			return nil, errutil.GraphCorruption("cycle detected in parent chain")
		}

		seen[parent.ID] = true
		path = append(path, parent)
		cur = parent
	}

	// Collected caller-first; the contract is root-first.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, nil
}

// Descendants returns every node whose parent chain passes through the
// caller's node, in breadth order (shallow before deep), ties broken by
// created_at ascending. Depths are relative to the caller: +1, +2, ...
func (t *Traverser) Descendants(ctx context.Context, questID, userID string) ([]Descendant, error) {
	self, err := t.NodeForUser(ctx, questID, userID)
	if err != nil {
		return nil, err
	}
	if self == nil {
		return nil, errutil.NotFound("user has no node in this quest")
	}

	all, err := t.nodes.Find(ctx, &Node{QuestID: questID}, option.WithSortBy(option.QuerySortBy{
		SortBy:  "created_at",
		OrderBy: "asc",
		Allow:   map[string]bool{"created_at": true},
	}))
	if err != nil {
		return nil, err
	}

	// Children-by-parent adjacency index; insertion keeps created_at order,
	// ids break exact-timestamp ties deterministically.
	children := make(map[string][]*Node, len(all))
	for _, n := range all {
		if n.ParentID == nil {
			continue
		}
		children[*n.ParentID] = append(children[*n.ParentID], n)
	}
	for _, siblings := range children {
		sort.SliceStable(siblings, func(i, j int) bool {
			if siblings[i].CreatedAt.Equal(siblings[j].CreatedAt) {
				return siblings[i].ID < siblings[j].ID
			}
			return siblings[i].CreatedAt.Before(siblings[j].CreatedAt)
		})
	}

	type frame struct {
		node  *Node
		depth int
	}

	var out []Descendant
	seen := map[string]bool{self.ID: true}
	queue := make([]frame, 0, len(children[self.ID]))
	for _, child := range children[self.ID] {
		queue = append(queue, frame{node: child, depth: 1})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if seen[cur.node.ID] {
			return nil, errutil.GraphCorruption("cycle detected in child expansion")
		}
		seen[cur.node.ID] = true

		out = append(out, Descendant{Node: cur.node, Depth: cur.depth})
		for _, child := range children[cur.node.ID] {
			queue = append(queue, frame{node: child, depth: cur.depth + 1})
		}
	}

	return out, nil
}

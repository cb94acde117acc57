package catalog

import (
	"github.com/mkowalik/libris/internal/entities"
)

// Forest is an in-memory view of the category parent-pointer graph,
// restricted to non-deleted categories. All traversals guard against
// corrupted input (cycles already present in storage) with a visited set,
// so they terminate on any graph.
type Forest struct {
	parents  map[string]string   // child id -> parent id, roots absent
	children map[string][]string // parent id -> child ids
	known    map[string]bool
}

// NewForest builds a Forest from category rows. Deleted categories and edges
// pointing at them are ignored.
func NewForest(categories []entities.Category) *Forest {
	f := &Forest{
		parents:  make(map[string]string, len(categories)),
		children: make(map[string][]string),
		known:    make(map[string]bool, len(categories)),
	}
	for _, c := range categories {
		if c.IsDeleted {
			continue
		}
		f.known[c.ID] = true
	}
	for _, c := range categories {
		if c.IsDeleted || c.ParentID == nil {
			continue
		}
		parent := *c.ParentID
		if !f.known[parent] {
			continue
		}
		f.parents[c.ID] = parent
		f.children[parent] = append(f.children[parent], c.ID)
	}
	return f
}

// Contains reports whether id is a live category in the forest.
func (f *Forest) Contains(id string) bool {
	return f.known[id]
}

// DescendantIDs returns the subtree rooted at categoryID, categoryID
// included, in breadth-first order. Unknown ids yield an empty result.
func (f *Forest) DescendantIDs(categoryID string) []string {
	if !f.known[categoryID] {
		return nil
	}
	visited := map[string]bool{categoryID: true}
	order := []string{categoryID}
	queue := []string{categoryID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range f.children[current] {
			if visited[child] {
				continue
			}
			visited[child] = true
			order = append(order, child)
			queue = append(queue, child)
		}
	}
	return order
}

// AncestorIDs returns every id on the path from categoryID's parent up to a
// root, categoryID excluded.
func (f *Forest) AncestorIDs(categoryID string) []string {
	var ancestors []string
	visited := map[string]bool{categoryID: true}
	current, ok := f.parents[categoryID]
	for ok && !visited[current] {
		visited[current] = true
		ancestors = append(ancestors, current)
		current, ok = f.parents[current]
	}
	return ancestors
}

// WouldCreateCycle reports whether assigning proposedParentID as categoryID's
// parent would make categoryID its own ancestor. Must be checked before the
// parent pointer is written; the storage layer does not enforce it.
func (f *Forest) WouldCreateCycle(categoryID, proposedParentID string) bool {
	if categoryID == proposedParentID {
		return true
	}
	for _, ancestor := range f.AncestorIDs(proposedParentID) {
		if ancestor == categoryID {
			return true
		}
	}
	return false
}

// Depth returns the number of ancestors above categoryID: 0 for roots.
func (f *Forest) Depth(categoryID string) int {
	return len(f.AncestorIDs(categoryID))
}

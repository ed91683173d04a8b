// Package treeview projects the container tree into the nested form used by
// the drag-and-drop tree widget, and applies edited forests back.
package treeview

import (
	"fmt"

	"github.com/layout-editor/backend/internal/canvas"
	"github.com/layout-editor/backend/internal/geometry"
	"github.com/layout-editor/backend/internal/models"
)

// Node is one entry of the tree widget's model.
type Node struct {
	ID       string `json:"id"`
	Children []Node `json:"children"`
}

// IDs returns the ids of nodes in order.
func IDs(nodes []Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

// ToTreeView builds the forest for containers, given in insertion order.
// Children follow their parent's Children order. A container whose parent is
// missing is shown as a root. Every container appears exactly once.
func ToTreeView(containers []models.Container) []Node {
	byID := make(map[string]models.Container, len(containers))
	for _, c := range containers {
		if _, dup := byID[c.ID]; !dup {
			byID[c.ID] = c
		}
	}

	// Parent -> ordered child ids: the declared list first, then any
	// container that points at the parent without being listed.
	kids := make(map[string][]string)
	listed := make(map[string]struct{})
	for _, c := range containers {
		for _, childID := range c.Children {
			child, ok := byID[childID]
			if !ok || child.ParentID != c.ID {
				continue
			}
			if _, dup := listed[childID]; dup {
				continue
			}
			listed[childID] = struct{}{}
			kids[c.ID] = append(kids[c.ID], childID)
		}
	}
	for _, c := range containers {
		if _, ok := listed[c.ID]; ok {
			continue
		}
		if _, ok := byID[c.ParentID]; ok && c.ParentID != "" {
			listed[c.ID] = struct{}{}
			kids[c.ParentID] = append(kids[c.ParentID], c.ID)
		}
	}

	placed := make(map[string]struct{}, len(byID))
	var build func(id string) Node
	build = func(id string) Node {
		placed[id] = struct{}{}
		n := Node{ID: id, Children: []Node{}}
		for _, childID := range kids[id] {
			if _, done := placed[childID]; done {
				continue
			}
			n.Children = append(n.Children, build(childID))
		}
		return n
	}

	forest := []Node{}
	for _, c := range containers {
		if _, done := placed[c.ID]; done {
			continue
		}
		if _, hasParent := byID[c.ParentID]; hasParent && c.ParentID != "" {
			continue
		}
		forest = append(forest, build(c.ID))
	}
	// Anything still unplaced sits on a parent cycle; surface it as a root.
	for _, c := range containers {
		if _, done := placed[c.ID]; !done {
			forest = append(forest, build(c.ID))
		}
	}
	return forest
}

// FromTreeView applies an edited forest. Positions are rebased against the
// pre-edit tree so every container keeps its canvas position. update receives
// the new parent, children and relative position of each node.
//
// Ids unknown to pre are dropped and their children hoisted to the nearest
// known ancestor; an id seen twice keeps its first placement.
func FromTreeView(forest []Node, pre map[string]models.Container, update func(id string, p models.Patch) bool) error {
	nodes := normalize(forest, pre, make(map[string]struct{}))
	return apply(nodes, "", pre, update)
}

func normalize(nodes []Node, known map[string]models.Container, seen map[string]struct{}) []Node {
	out := []Node{}
	for _, n := range nodes {
		if _, ok := known[n.ID]; !ok {
			out = append(out, normalize(n.Children, known, seen)...)
			continue
		}
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		out = append(out, Node{ID: n.ID, Children: normalize(n.Children, known, seen)})
	}
	return out
}

func apply(nodes []Node, parentID string, pre map[string]models.Container, update func(string, models.Patch) bool) error {
	var parentAbs models.Position
	if parentID != "" {
		var err error
		parentAbs, err = geometry.AbsolutePosition(parentID, pre)
		if err != nil {
			return fmt.Errorf("position of %s: %w", parentID, err)
		}
	}

	for _, n := range nodes {
		abs, err := geometry.AbsolutePosition(n.ID, pre)
		if err != nil {
			return fmt.Errorf("position of %s: %w", n.ID, err)
		}
		rel := geometry.Rebase(abs, parentAbs)
		update(n.ID, models.Patch{
			X:        models.Float(rel.X),
			Y:        models.Float(rel.Y),
			ParentID: models.String(parentID),
			Children: IDs(n.Children),
		})
		if err := apply(n.Children, n.ID, pre, update); err != nil {
			return err
		}
	}
	return nil
}

// Apply runs FromTreeView against the store as one transaction. A forest that
// would leave the tree inconsistent, for example by dropping a child from its
// parent without placing it elsewhere, changes nothing.
func Apply(store *canvas.Store, forest []Node) error {
	return store.Batch(func(tx *canvas.Tx) error {
		return FromTreeView(forest, tx.Snapshot(), tx.Update)
	})
}

package canvas

import (
	"fmt"
	"slices"

	"github.com/layout-editor/backend/internal/geometry"
	"github.com/layout-editor/backend/internal/models"
)

// Tx is a working copy of the tree handed to Batch callbacks. Its methods
// mirror the Store mutations but skip validation until the batch commits.
// A Tx must not be used after its callback returns.
type Tx struct {
	st       state
	defaults models.Container
	newID    func() string
	dirty    bool
	touched  []string
}

func (tx *Tx) touch(ids ...string) {
	tx.dirty = true
	for _, id := range ids {
		if !slices.Contains(tx.touched, id) {
			tx.touched = append(tx.touched, id)
		}
	}
}

// Get returns a copy of the container as seen by this transaction.
func (tx *Tx) Get(id string) (models.Container, bool) {
	c, ok := tx.st.containers[id]
	if !ok {
		return models.Container{}, false
	}
	return c.Clone(), true
}

// Snapshot returns a copy of the container map as seen by this transaction.
func (tx *Tx) Snapshot() map[string]models.Container {
	return tx.st.snapshot()
}

// Add inserts a new container. See Store.Add.
func (tx *Tx) Add(id string, p models.Patch) (string, error) {
	if id == "" {
		id = tx.newID()
	}
	if _, exists := tx.st.containers[id]; exists {
		return "", fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	c := tx.defaults.Apply(p)
	c.ID = id

	if c.ParentID != "" {
		parent, ok := tx.st.containers[c.ParentID]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnknownParent, c.ParentID)
		}
		if !slices.Contains(parent.Children, id) {
			parent.Children = append(parent.Children, id)
			tx.st.containers[parent.ID] = parent
		}
	}

	tx.st.containers[id] = c
	tx.st.order = append(tx.st.order, id)
	tx.touch(id)
	return id, nil
}

// Update merges p into the container. See Store.Update.
func (tx *Tx) Update(id string, p models.Patch) bool {
	cur, ok := tx.st.containers[id]
	if !ok {
		return false
	}
	next := cur.Apply(p)
	next.ID = id
	if next.Equal(cur) {
		return false
	}
	tx.st.containers[id] = next
	tx.touch(id)
	return true
}

// Remove deletes the container and its subtree. See Store.Remove.
func (tx *Tx) Remove(id string) bool {
	c, ok := tx.st.containers[id]
	if !ok {
		return false
	}
	if parent, ok := tx.st.containers[c.ParentID]; ok {
		parent.Children = without(parent.Children, id)
		tx.st.containers[parent.ID] = parent
	}

	removed := make(map[string]struct{})
	tx.collect(id, removed)
	for rid := range removed {
		delete(tx.st.containers, rid)
	}
	tx.st.order = slices.DeleteFunc(tx.st.order, func(oid string) bool {
		_, gone := removed[oid]
		return gone
	})
	tx.touch(id)
	return true
}

func (tx *Tx) collect(id string, into map[string]struct{}) {
	if _, seen := into[id]; seen {
		return
	}
	c, ok := tx.st.containers[id]
	if !ok {
		return
	}
	into[id] = struct{}{}
	for _, child := range c.Children {
		tx.collect(child, into)
	}
}

// Nest moves childID under parentID. See Store.Nest.
func (tx *Tx) Nest(childID, parentID string) bool {
	if childID == parentID {
		return false
	}
	child, ok := tx.st.containers[childID]
	if !ok {
		return false
	}
	if _, ok := tx.st.containers[parentID]; !ok {
		return false
	}
	if child.ParentID == parentID {
		return false
	}
	if tx.isAncestor(childID, parentID) {
		return false
	}

	abs, err := geometry.AbsolutePosition(childID, tx.st.containers)
	if err != nil {
		return false
	}
	// parentID is not inside the child's subtree, so detaching the child
	// below does not move it.
	parentAbs, err := geometry.AbsolutePosition(parentID, tx.st.containers)
	if err != nil {
		return false
	}

	if old, ok := tx.st.containers[child.ParentID]; ok {
		old.Children = without(old.Children, childID)
		tx.st.containers[old.ID] = old
		tx.touch(old.ID)
	}

	rel := geometry.Rebase(abs, parentAbs)
	child.X, child.Y = rel.X, rel.Y
	child.ParentID = parentID
	tx.st.containers[childID] = child

	parent := tx.st.containers[parentID]
	if !slices.Contains(parent.Children, childID) {
		parent.Children = append(parent.Children, childID)
		tx.st.containers[parentID] = parent
	}
	tx.touch(childID, parentID)
	return true
}

// isAncestor reports whether ancestorID is on the parent chain of id.
func (tx *Tx) isAncestor(ancestorID, id string) bool {
	seen := make(map[string]struct{})
	for cur, ok := tx.st.containers[id]; ok; cur, ok = tx.st.containers[cur.ParentID] {
		if cur.ParentID == ancestorID {
			return true
		}
		if _, loop := seen[cur.ID]; loop {
			return false
		}
		seen[cur.ID] = struct{}{}
	}
	return false
}

// Unnest makes childID a root. See Store.Unnest.
func (tx *Tx) Unnest(childID string) bool {
	child, ok := tx.st.containers[childID]
	if !ok || child.IsRoot() {
		return false
	}
	abs, err := geometry.AbsolutePosition(childID, tx.st.containers)
	if err != nil {
		return false
	}
	if parent, ok := tx.st.containers[child.ParentID]; ok {
		parent.Children = without(parent.Children, childID)
		tx.st.containers[parent.ID] = parent
		tx.touch(parent.ID)
	}
	child.X, child.Y = abs.X, abs.Y
	child.ParentID = ""
	tx.st.containers[childID] = child
	tx.touch(childID)
	return true
}

// Reset removes every container.
func (tx *Tx) Reset() {
	if len(tx.st.containers) == 0 {
		return
	}
	tx.st = newState()
	tx.dirty = true
}

// Load inserts containers keeping their ids and field values. Parents are
// inserted before their children.
func (tx *Tx) Load(containers []models.Container) error {
	pending := slices.Clone(containers)
	for len(pending) > 0 {
		var rest []models.Container
		for _, c := range pending {
			if c.ParentID != "" {
				if _, ok := tx.st.containers[c.ParentID]; !ok {
					rest = append(rest, c)
					continue
				}
			}
			if _, err := tx.Add(c.ID, fullPatch(c)); err != nil {
				return err
			}
		}
		if len(rest) == len(pending) {
			return fmt.Errorf("%w: %s has unknown parent %s", ErrInconsistent, rest[0].ID, rest[0].ParentID)
		}
		pending = rest
	}
	return nil
}

// fullPatch builds a patch that sets every field of c.
func fullPatch(c models.Container) models.Patch {
	styles := c.Styles
	children := slices.Clone(c.Children)
	if children == nil {
		children = []string{}
	}
	return models.Patch{
		X:        models.Float(c.X),
		Y:        models.Float(c.Y),
		Width:    models.Float(c.Width),
		Height:   models.Float(c.Height),
		Rotation: models.Float(c.Rotation),
		Styles: &models.StylePatch{
			BackgroundColor: &styles.BackgroundColor,
			Border:          &styles.Border,
			ZIndex:          &styles.ZIndex,
		},
		ParentID: models.String(c.ParentID),
		Children: children,
	}
}

func without(ids []string, id string) []string {
	return slices.DeleteFunc(slices.Clone(ids), func(s string) bool { return s == id })
}

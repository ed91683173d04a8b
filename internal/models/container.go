// Package models contains domain types for the layout editor.
package models

import "slices"

// Container is a rectangular layout unit on the canvas.
// X and Y are always relative to the parent's origin; a root container
// (ParentID == "") is positioned in canvas space.
type Container struct {
	ID       string   `json:"id" msgpack:"id"`
	X        float64  `json:"x" msgpack:"x"`
	Y        float64  `json:"y" msgpack:"y"`
	Width    float64  `json:"width" msgpack:"width"`
	Height   float64  `json:"height" msgpack:"height"`
	Rotation float64  `json:"rotation" msgpack:"rotation"` // degrees, about the container center
	Styles   Styles   `json:"styles" msgpack:"styles"`
	ParentID string   `json:"parentId,omitempty" msgpack:"parentId,omitempty"`
	Children []string `json:"children" msgpack:"children"`
}

// Styles holds the visual properties of a container.
type Styles struct {
	BackgroundColor string `json:"backgroundColor" msgpack:"backgroundColor"`
	Border          Border `json:"border" msgpack:"border"`
	ZIndex          int    `json:"zIndex" msgpack:"zIndex"`
}

// IsRoot reports whether the container has no parent.
func (c Container) IsRoot() bool {
	return c.ParentID == ""
}

// Clone returns a copy that shares no memory with c.
func (c Container) Clone() Container {
	c.Children = slices.Clone(c.Children)
	if c.Children == nil {
		c.Children = []string{}
	}
	return c
}

// Equal reports whether two containers are value-identical.
func (c Container) Equal(o Container) bool {
	return c.ID == o.ID &&
		c.X == o.X &&
		c.Y == o.Y &&
		c.Width == o.Width &&
		c.Height == o.Height &&
		c.Rotation == o.Rotation &&
		c.Styles == o.Styles &&
		c.ParentID == o.ParentID &&
		slices.Equal(c.Children, o.Children)
}

// DefaultContainer returns the geometry and styles given to a container
// when the caller does not override them.
func DefaultContainer() Container {
	return Container{
		Width:  200,
		Height: 100,
		Styles: Styles{
			BackgroundColor: "#ffffff",
			Border:          DefaultBorder(),
			ZIndex:          1,
		},
		Children: []string{},
	}
}

// Patch is a partial update. Nil fields are left untouched.
// Children replaces the whole list when non-nil; ParentID pointing
// to "" detaches the container.
type Patch struct {
	X        *float64    `json:"x,omitempty"`
	Y        *float64    `json:"y,omitempty"`
	Width    *float64    `json:"width,omitempty"`
	Height   *float64    `json:"height,omitempty"`
	Rotation *float64    `json:"rotation,omitempty"`
	Styles   *StylePatch `json:"styles,omitempty"`
	ParentID *string     `json:"parentId,omitempty"`
	Children []string    `json:"children,omitempty"`
}

// StylePatch merges into Styles key by key.
type StylePatch struct {
	BackgroundColor *string `json:"backgroundColor,omitempty"`
	Border          *Border `json:"border,omitempty"`
	ZIndex          *int    `json:"zIndex,omitempty"`
}

// IsStructural reports whether the patch touches the hierarchy.
func (p Patch) IsStructural() bool {
	return p.ParentID != nil || p.Children != nil
}

// Apply returns c with p merged over it.
func (c Container) Apply(p Patch) Container {
	out := c.Clone()
	if p.X != nil {
		out.X = *p.X
	}
	if p.Y != nil {
		out.Y = *p.Y
	}
	if p.Width != nil {
		out.Width = *p.Width
	}
	if p.Height != nil {
		out.Height = *p.Height
	}
	if p.Rotation != nil {
		out.Rotation = *p.Rotation
	}
	if p.Styles != nil {
		if p.Styles.BackgroundColor != nil {
			out.Styles.BackgroundColor = *p.Styles.BackgroundColor
		}
		if p.Styles.Border != nil {
			out.Styles.Border = *p.Styles.Border
		}
		if p.Styles.ZIndex != nil {
			out.Styles.ZIndex = *p.Styles.ZIndex
		}
	}
	if p.ParentID != nil {
		out.ParentID = *p.ParentID
	}
	if p.Children != nil {
		out.Children = slices.Clone(p.Children)
	}
	return out
}

// Position is a point in layout units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Float returns a pointer to v. Handy for building patches.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// String returns a pointer to v.
func String(v string) *string { return &v }

// Package geometry converts between parent-relative and canvas coordinates.
package geometry

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/layout-editor/backend/internal/models"
)

var (
	// ErrNotFound is returned when the requested container is not in the map.
	ErrNotFound = errors.New("container not found")

	// ErrCycle is returned when the parent chain revisits a container.
	ErrCycle = errors.New("cycle in container hierarchy")
)

// AbsolutePosition returns the canvas position of the container with the given id
// by adding up the relative offsets of its ancestors. A parent reference that is
// not present in the map ends the walk, so the container is treated as a root.
func AbsolutePosition(id string, containers map[string]models.Container) (models.Position, error) {
	c, ok := containers[id]
	if !ok {
		return models.Position{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	pos := models.Position{X: c.X, Y: c.Y}
	visited := map[string]struct{}{id: {}}
	for c.ParentID != "" {
		if len(visited) > len(containers) {
			return models.Position{}, fmt.Errorf("%w: depth limit at %s", ErrCycle, id)
		}
		if _, seen := visited[c.ParentID]; seen {
			return models.Position{}, fmt.Errorf("%w: %s is its own ancestor", ErrCycle, c.ParentID)
		}
		parent, ok := containers[c.ParentID]
		if !ok {
			break
		}
		visited[c.ParentID] = struct{}{}
		pos.X += parent.X
		pos.Y += parent.Y
		c = parent
	}
	return pos, nil
}

// Rebase returns the position relative to a parent at parentAbs that keeps a
// container at abs on the canvas.
func Rebase(abs, parentAbs models.Position) models.Position {
	return models.Position{X: abs.X - parentAbs.X, Y: abs.Y - parentAbs.Y}
}

var rotateRe = regexp.MustCompile(`(?i)rotate(?:z)?\(\s*([-+]?(?:\d+\.?\d*|\.\d+)(?:e[-+]?\d+)?)\s*(deg|rad|grad|turn)?\s*\)`)

// ExtractRotationDegrees returns the angle of the first rotate() in a CSS
// transform, in degrees. It returns 0 when there is none or it is malformed.
func ExtractRotationDegrees(transform string) float64 {
	if !strings.Contains(strings.ToLower(transform), "rotate") {
		return 0
	}
	m := rotateRe.FindStringSubmatch(transform)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	switch strings.ToLower(m[2]) {
	case "rad":
		v = v * 180 / math.Pi
	case "grad":
		v = v * 0.9
	case "turn":
		v = v * 360
	}
	return v
}

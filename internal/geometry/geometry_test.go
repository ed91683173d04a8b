package geometry

import (
	"testing"

	"github.com/layout-editor/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tree() map[string]models.Container {
	return map[string]models.Container{
		"root":  {ID: "root", X: 10, Y: 20, Children: []string{"mid"}},
		"mid":   {ID: "mid", X: 5, Y: 5, ParentID: "root", Children: []string{"leaf"}},
		"leaf":  {ID: "leaf", X: 1, Y: 2, ParentID: "mid"},
		"stray": {ID: "stray", X: 7, Y: 8, ParentID: "gone"},
	}
}

func TestAbsolutePosition(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want models.Position
	}{
		{name: "root is its own position", id: "root", want: models.Position{X: 10, Y: 20}},
		{name: "one level", id: "mid", want: models.Position{X: 15, Y: 25}},
		{name: "two levels", id: "leaf", want: models.Position{X: 16, Y: 27}},
		{name: "dangling parent treated as root", id: "stray", want: models.Position{X: 7, Y: 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AbsolutePosition(tt.id, tree())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAbsolutePosition_Errors(t *testing.T) {
	t.Run("unknown id", func(t *testing.T) {
		_, err := AbsolutePosition("nope", tree())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cycle terminates", func(t *testing.T) {
		cyclic := map[string]models.Container{
			"a": {ID: "a", ParentID: "b"},
			"b": {ID: "b", ParentID: "c"},
			"c": {ID: "c", ParentID: "a"},
		}
		_, err := AbsolutePosition("a", cyclic)
		assert.ErrorIs(t, err, ErrCycle)
	})

	t.Run("self parent", func(t *testing.T) {
		_, err := AbsolutePosition("a", map[string]models.Container{"a": {ID: "a", ParentID: "a"}})
		assert.ErrorIs(t, err, ErrCycle)
	})
}

func TestRebase(t *testing.T) {
	abs := models.Position{X: 30, Y: 40}
	parent := models.Position{X: 10, Y: 15}

	rel := Rebase(abs, parent)
	assert.Equal(t, models.Position{X: 20, Y: 25}, rel)
	// Adding the parent back must give the original absolute position.
	assert.Equal(t, abs, models.Position{X: rel.X + parent.X, Y: rel.Y + parent.Y})
}

func TestExtractRotationDegrees(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"rotate(45deg)", 45},
		{"translate(10px, 20px) rotate(-30.5deg)", -30.5},
		{"rotate( 90deg )", 90},
		{"rotateZ(15deg)", 15},
		{"rotate(0.5turn)", 180},
		{"rotate(100grad)", 90},
		{"rotate(12)", 12},
		{"rotateX(10deg) rotate(20deg)", 20},
		{"translate(5px, 5px)", 0},
		{"rotate(abc)", 0},
		{"", 0},
		{"none", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, ExtractRotationDegrees(tt.in), 1e-9)
		})
	}

	assert.InDelta(t, 180, ExtractRotationDegrees("rotate(3.141592653589793rad)"), 1e-9)
}

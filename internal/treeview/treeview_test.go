package treeview

import (
	"testing"

	"github.com/layout-editor/backend/internal/canvas"
	"github.com/layout-editor/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func container(id, parent string, x, y float64, children ...string) models.Container {
	c := models.DefaultContainer()
	c.ID, c.ParentID, c.X, c.Y = id, parent, x, y
	c.Children = append([]string{}, children...)
	return c
}

func node(id string, children ...Node) Node {
	if children == nil {
		children = []Node{}
	}
	return Node{ID: id, Children: children}
}

func TestToTreeView(t *testing.T) {
	tests := []struct {
		name       string
		containers []models.Container
		want       []Node
	}{
		{
			name:       "empty",
			containers: nil,
			want:       []Node{},
		},
		{
			name: "flat roots keep insertion order",
			containers: []models.Container{
				container("b", "", 0, 0),
				container("a", "", 0, 0),
			},
			want: []Node{node("b"), node("a")},
		},
		{
			name: "children follow declared order",
			containers: []models.Container{
				container("r", "", 0, 0, "y", "x"),
				container("x", "r", 0, 0),
				container("y", "r", 0, 0, "z"),
				container("z", "y", 0, 0),
			},
			want: []Node{node("r", node("y", node("z")), node("x"))},
		},
		{
			name: "dangling parent becomes root",
			containers: []models.Container{
				container("a", "", 0, 0),
				container("lost", "gone", 0, 0),
			},
			want: []Node{node("a"), node("lost")},
		},
		{
			name: "unlisted child is still attached",
			containers: []models.Container{
				container("a", "", 0, 0),
				container("b", "a", 0, 0),
			},
			want: []Node{node("a", node("b"))},
		},
		{
			name: "cycle members surface as roots",
			containers: []models.Container{
				container("p", "q", 0, 0, "q"),
				container("q", "p", 0, 0, "p"),
			},
			want: []Node{node("p", node("q"))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToTreeView(tt.containers))
		})
	}
}

func newStore(t *testing.T, containers ...models.Container) *canvas.Store {
	t.Helper()
	s := canvas.New()
	require.NoError(t, s.Load(containers))
	return s
}

func TestApplyReparentKeepsCanvasPosition(t *testing.T) {
	s := newStore(t,
		container("A", "", 100, 100),
		container("B", "", 150, 260),
	)
	before, err := s.AbsolutePosition("B")
	require.NoError(t, err)

	require.NoError(t, Apply(s, []Node{node("A", node("B"))}))

	a, _ := s.Get("A")
	b, _ := s.Get("B")
	assert.Equal(t, "A", b.ParentID)
	assert.Equal(t, []string{"B"}, a.Children)
	assert.Equal(t, 50.0, b.X)
	assert.Equal(t, 160.0, b.Y)

	after, err := s.AbsolutePosition("B")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestApplyUnnestAndReorder(t *testing.T) {
	s := newStore(t,
		container("A", "", 10, 10, "B", "C"),
		container("B", "A", 5, 5),
		container("C", "A", 20, 30),
	)

	require.NoError(t, Apply(s, []Node{node("A", node("C")), node("B")}))

	b, _ := s.Get("B")
	assert.True(t, b.IsRoot())
	assert.Equal(t, 15.0, b.X)
	assert.Equal(t, 15.0, b.Y)

	a, _ := s.Get("A")
	assert.Equal(t, []string{"C"}, a.Children)

	require.NoError(t, Apply(s, []Node{node("A"), node("B", node("C"))}))
	c, _ := s.Get("C")
	assert.Equal(t, "B", c.ParentID)
	pos, _ := s.AbsolutePosition("C")
	assert.Equal(t, models.Position{X: 30, Y: 40}, pos)
}

func TestApplyDuplicatesAndUnknownIDs(t *testing.T) {
	s := newStore(t,
		container("A", "", 0, 0),
		container("B", "", 40, 40),
	)

	forest := []Node{
		node("A", node("ghost", node("B"))),
		node("B"),
	}
	require.NoError(t, Apply(s, forest))

	a, _ := s.Get("A")
	b, _ := s.Get("B")
	assert.Equal(t, []string{"B"}, a.Children)
	assert.Equal(t, "A", b.ParentID)
	assert.Equal(t, 2, s.Len())
}

func TestApplyRejectsForestThatDropsChild(t *testing.T) {
	s := newStore(t,
		container("A", "", 0, 0, "B"),
		container("B", "A", 5, 5),
	)
	v := s.Version()

	err := Apply(s, []Node{node("A")})
	assert.ErrorIs(t, err, canvas.ErrInconsistent)
	assert.Equal(t, v, s.Version())

	b, _ := s.Get("B")
	assert.Equal(t, "A", b.ParentID)
}

func TestRoundTripIsNoOp(t *testing.T) {
	s := newStore(t,
		container("A", "", 10, 10, "B"),
		container("B", "A", 5, 5),
		container("C", "", 300, 0),
	)
	v := s.Version()

	require.NoError(t, Apply(s, ToTreeView(s.All())))
	assert.Equal(t, v, s.Version())
}

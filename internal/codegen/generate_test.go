package codegen

import (
	"math"
	"strings"
	"testing"

	"github.com/layout-editor/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(id, parent string, x, y, w, h float64, z int, children ...string) models.Container {
	c := models.DefaultContainer()
	c.ID, c.ParentID = id, parent
	c.X, c.Y, c.Width, c.Height = x, y, w, h
	c.Styles.ZIndex = z
	c.Children = append([]string{}, children...)
	return c
}

func body(t *testing.T, doc string) string {
	t.Helper()
	require.True(t, strings.HasPrefix(doc, documentHead))
	require.True(t, strings.HasSuffix(doc, documentTail))
	return strings.TrimSuffix(strings.TrimPrefix(doc, documentHead), documentTail)
}

func TestGenerateNested(t *testing.T) {
	a := box("A", "", 10, 10, 300, 200, 1, "B")
	b := box("B", "A", 20, 20, 100, 50, 1)
	b.Styles.BackgroundColor = "#e0e0e0"

	out, err := GenerateAll([]models.Container{a, b})
	require.NoError(t, err)

	want := `  <div id="A" style="width: 300px; height: 200px; background-color: #ffffff; border: 1px solid #cccccc; z-index: 1; transform: rotate(0deg); position: relative; left: 10px; top: 10px">
    <div id="B" style="width: 100px; height: 50px; background-color: #e0e0e0; border: 1px solid #cccccc; z-index: 1; transform: rotate(0deg); position: absolute; left: 20px; top: 20px">
    </div>
  </div>
`
	assert.Equal(t, want, body(t, out))
}

func TestGenerateStacksRoots(t *testing.T) {
	first := box("first", "", 0, 0, 100, 120, 1)
	second := box("second", "", 0, 200, 100, 80, 1)
	third := box("third", "", 5, 300, 100, 40, 1)

	out, err := GenerateAll([]models.Container{first, second, third})
	require.NoError(t, err)

	assert.Contains(t, out, `id="first" style="width: 100px; height: 120px; background-color: #ffffff; border: 1px solid #cccccc; z-index: 1; transform: rotate(0deg); position: relative; left: 0px; top: 0px"`)
	assert.Contains(t, out, "left: 0px; top: 80px\"")
	assert.Contains(t, out, "left: 5px; top: 100px\"")
}

func TestGenerateOrdersByZIndex(t *testing.T) {
	root := box("root", "", 0, 0, 500, 500, 1, "top", "mid1", "low", "mid2")
	all := []models.Container{
		root,
		box("top", "root", 0, 0, 10, 10, 9),
		box("mid1", "root", 0, 0, 10, 10, 5),
		box("low", "root", 0, 0, 10, 10, 0),
		box("mid2", "root", 0, 0, 10, 10, 5),
		box("over", "", 0, 0, 10, 10, 3),
	}

	out, err := GenerateAll(all)
	require.NoError(t, err)

	order := []string{`id="root"`, `id="over"`}
	assert.Less(t, strings.Index(out, order[0]), strings.Index(out, order[1]))

	kids := []string{`id="low"`, `id="mid1"`, `id="mid2"`, `id="top"`}
	for i := 1; i < len(kids); i++ {
		assert.Less(t, strings.Index(out, kids[i-1]), strings.Index(out, kids[i]), kids[i])
	}
}

func TestGenerateOrdersExtremeZIndex(t *testing.T) {
	all := []models.Container{
		box("root", "", 0, 0, 500, 500, 1, "max", "neg", "min"),
		box("max", "root", 0, 0, 10, 10, math.MaxInt),
		box("neg", "root", 0, 0, 10, 10, -1),
		box("min", "root", 0, 0, 10, 10, math.MinInt),
	}

	out, err := GenerateAll(all)
	require.NoError(t, err)

	assert.Less(t, strings.Index(out, `id="min"`), strings.Index(out, `id="neg"`))
	assert.Less(t, strings.Index(out, `id="neg"`), strings.Index(out, `id="max"`))
}

func TestGenerateFormatsValues(t *testing.T) {
	c := box("r", "", 1.5, 2.25, 100.125, 50, 2)
	c.Rotation = -12.5
	c.Styles.Border = models.Border{Style: "none"}
	c.Styles.BackgroundColor = `"bad"`

	out, err := GenerateAll([]models.Container{c})
	require.NoError(t, err)

	assert.Contains(t, out, "width: 100.125px")
	assert.Contains(t, out, "transform: rotate(-12.5deg)")
	assert.Contains(t, out, "border: none")
	assert.Contains(t, out, "left: 1.5px; top: 2.25px")
	assert.Contains(t, out, "background-color: &#34;bad&#34;")
}

func TestGenerateIsDeterministic(t *testing.T) {
	all := []models.Container{
		box("a", "", 0, 0, 10, 10, 1, "b", "c"),
		box("b", "a", 1, 1, 5, 5, 1),
		box("c", "a", 2, 2, 5, 5, 1),
		box("d", "", 0, 50, 10, 10, 1),
	}
	first, err := GenerateAll(all)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := GenerateAll(all)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestGenerateEmpty(t *testing.T) {
	out, err := Generate(map[string]models.Container{}, nil)
	require.NoError(t, err)
	assert.Equal(t, documentHead+documentTail, out)
}

func TestGenerateSkipsMissingChildren(t *testing.T) {
	out, err := GenerateAll([]models.Container{box("a", "", 0, 0, 10, 10, 1, "gone")})
	require.NoError(t, err)
	assert.NotContains(t, out, "gone")
}

func TestGenerateDetectsCycle(t *testing.T) {
	_, err := GenerateAll([]models.Container{box("a", "", 0, 0, 10, 10, 1, "a")})
	assert.ErrorIs(t, err, ErrCycle)
}

func TestGeneratorKeepsPreviousOutputOnFailure(t *testing.T) {
	g := NewGenerator(nil)
	assert.Equal(t, models.StatusIdle, g.State().Status)

	good, err := g.Run([]models.Container{box("a", "", 0, 0, 10, 10, 1)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, g.State().Status)

	_, err = g.Run([]models.Container{box("loop", "", 0, 0, 10, 10, 1, "loop")})
	require.Error(t, err)

	state := g.State()
	assert.Equal(t, models.StatusError, state.Status)
	assert.Contains(t, state.Message, "cycle")

	out, at := g.Output()
	assert.Equal(t, good, out)
	assert.False(t, at.IsZero())
}

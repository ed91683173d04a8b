package importer

import (
	"testing"

	"github.com/layout-editor/backend/internal/canvas"
	"github.com/layout-editor/backend/internal/codegen"
	"github.com/layout-editor/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReadsInlineStyles(t *testing.T) {
	markup := `<div id="a" style="left: 12px; top: 7.5px; width: 300px; height: 200px; background-color: rgb(1, 2, 3); border: 2px dashed red; z-index: 4; transform: rotate(45deg)"></div>`

	res, err := Parse(markup)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, res.Order)

	a := res.Containers["a"]
	assert.Equal(t, 12.0, a.X)
	assert.Equal(t, 7.5, a.Y)
	assert.Equal(t, 300.0, a.Width)
	assert.Equal(t, 200.0, a.Height)
	assert.Equal(t, 45.0, a.Rotation)
	assert.Equal(t, "rgb(1, 2, 3)", a.Styles.BackgroundColor)
	assert.Equal(t, models.Border{Width: 2, Style: "dashed", Color: "red"}, a.Styles.Border)
	assert.Equal(t, 4, a.Styles.ZIndex)
	assert.True(t, a.IsRoot())
}

func TestParseDefaults(t *testing.T) {
	res, err := Parse(`<section id="bare"></section>`)
	require.NoError(t, err)

	c := res.Containers["bare"]
	assert.Equal(t, 0.0, c.X)
	assert.Equal(t, 0.0, c.Width)
	assert.Equal(t, 0.0, c.Height)
	assert.Equal(t, 0.0, c.Rotation)
	assert.Equal(t, "#ffffff", c.Styles.BackgroundColor)
	assert.Equal(t, models.DefaultBorder(), c.Styles.Border)
	assert.Equal(t, 1, c.Styles.ZIndex)
	assert.Empty(t, c.Children)

	t.Run("non-finite pixels", func(t *testing.T) {
		res, err := Parse(`<div id="n" style="left: NaN; top: Infinitypx; width: -inf; height: nanpx"></div>`)
		require.NoError(t, err)

		c := res.Containers["n"]
		assert.Equal(t, 0.0, c.X)
		assert.Equal(t, 0.0, c.Y)
		assert.Equal(t, 0.0, c.Width)
		assert.Equal(t, 0.0, c.Height)
		assert.True(t, c.Equal(c))
	})
}

func TestParseHierarchy(t *testing.T) {
	markup := `<html><body id="page">
<div id="outer">
  <span><p id="inner"><b id="deep"></b></p></span>
  <div id="second"></div>
</div>
<div id="other"></div>
<div id="outer"><i id="late"></i></div>
</body></html>`

	res, err := Parse(markup)
	require.NoError(t, err)

	assert.Equal(t, []string{"outer", "inner", "deep", "second", "other", "late"}, res.Order)
	assert.Equal(t, []string{"outer", "other"}, res.Roots())
	assert.Equal(t, []string{"inner", "second", "late"}, res.Containers["outer"].Children)
	assert.Equal(t, "inner", res.Containers["deep"].ParentID)
	assert.Equal(t, "outer", res.Containers["late"].ParentID)
	_, ok := res.Containers["page"]
	assert.False(t, ok)
}

func TestParseFailures(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		code   Code
		msg    string
	}{
		{"empty", "", CodeNoAddressableElements, "No elements with IDs found in the HTML"},
		{"no ids", "<div><p>hello</p></div>", CodeNoAddressableElements, "No elements with IDs found in the HTML"},
		{"id only on body", `<body id="x"><div></div></body>`, CodeNoAddressableElements, "No elements with IDs found in the HTML"},
		{"stray closing tag", `<div id="a"></span></div>`, CodeInvalidMarkup, "Invalid HTML format"},
		{"closing before opening", `</div><div id="a"></div>`, CodeInvalidMarkup, "Invalid HTML format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(tt.markup)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, IsCode(err, tt.code), err.Error())

			var ie *Error
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.msg, ie.Message)
		})
	}
}

func TestParseToleratesLooseMarkup(t *testing.T) {
	tests := []string{
		`<div id="a"><br><img src="x.png"></div>`,
		`<div id="a"><p>unclosed</div>`,
		`<custom-box id="a"></custom-box>`,
		`<div id="a"></div></body></html>`,
	}
	for _, markup := range tests {
		res, err := Parse(markup)
		require.NoError(t, err, markup)
		assert.Contains(t, res.Containers, "a")
	}
}

func sample() []models.Container {
	a := models.DefaultContainer()
	a.ID, a.X, a.Y, a.Width, a.Height = "A", 10, 10, 300, 200
	a.Children = []string{"B"}

	b := models.DefaultContainer()
	b.ID, b.ParentID, b.X, b.Y, b.Width, b.Height = "B", "A", 20, 20, 100, 50
	b.Styles.BackgroundColor = "#e0e0e0"
	return []models.Container{a, b}
}

func TestGenerateParseRoundTrip(t *testing.T) {
	want := sample()

	doc, err := codegen.GenerateAll(want)
	require.NoError(t, err)

	res, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, want, res.List())
}

func TestRoundTripKeepsIDsVerbatim(t *testing.T) {
	want := sample()
	want[0].ID = " A "
	want[0].Children = []string{"B"}
	want[1].ParentID = " A "

	doc, err := codegen.GenerateAll(want)
	require.NoError(t, err)

	res, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{" A "}, res.Roots())
	assert.Equal(t, want, res.List())
}

func TestRoundTripRestoresStackedRoots(t *testing.T) {
	want := sample()
	c := models.DefaultContainer()
	c.ID, c.X, c.Y, c.Width, c.Height, c.Rotation = "C", 40, 400, 80, 60, 15
	c.Styles.ZIndex = 2
	c.Styles.Border = models.Border{Style: "none"}
	want = append(want, c)

	doc, err := codegen.GenerateAll(want)
	require.NoError(t, err)
	assert.Contains(t, doc, "top: 200px")

	res, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, want, res.List())
}

func TestImporterCommits(t *testing.T) {
	store := canvas.New()
	_, err := store.Add("stale", models.Patch{})
	require.NoError(t, err)

	doc, err := codegen.GenerateAll(sample())
	require.NoError(t, err)

	im := NewImporter(nil)
	res, err := im.Import(store, doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, res.Roots())
	assert.Equal(t, models.StatusSuccess, im.State().Status)

	_, ok := store.Get("stale")
	assert.False(t, ok)
	b, ok := store.Get("B")
	require.True(t, ok)
	assert.Equal(t, "A", b.ParentID)
	assert.Equal(t, 20.0, b.X)
}

func TestImporterFailureLeavesStore(t *testing.T) {
	store := canvas.New()
	_, err := store.Add("keep", models.Patch{})
	require.NoError(t, err)

	im := NewImporter(nil)
	_, err = im.Import(store, "<p>nothing here</p>")
	require.Error(t, err)

	state := im.State()
	assert.Equal(t, models.StatusError, state.Status)
	assert.Equal(t, "No elements with IDs found in the HTML", state.Message)

	_, ok := store.Get("keep")
	assert.True(t, ok)
}

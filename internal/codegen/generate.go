// Package codegen renders the container tree as a standalone HTML document.
package codegen

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/layout-editor/backend/internal/models"
	"golang.org/x/net/html"
)

// ErrCycle is returned when a container is reached twice while descending.
var ErrCycle = errors.New("container tree has a cycle")

const documentHead = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Generated Layout</title>
  <style>
    body {
      margin: 0;
      padding: 20px;
      font-family: sans-serif;
    }

    * {
      box-sizing: border-box;
    }
  </style>
</head>
<body>
`

const documentTail = `</body>
</html>`

const indentUnit = "  "

// Generate renders roots and their descendants. Nested containers are
// absolutely positioned at their stored offsets. Roots are relatively
// positioned, so each root's top is shifted up by the heights of the roots
// rendered before it. Siblings render in ascending z-index, stable on their
// stored order. The output depends only on the input.
func Generate(containers map[string]models.Container, roots []models.Container) (string, error) {
	var b strings.Builder
	b.WriteString(documentHead)

	sorted := slices.Clone(roots)
	slices.SortStableFunc(sorted, byZIndex)

	var stacked float64
	for _, root := range sorted {
		visiting := make(map[string]struct{})
		if err := writeContainer(&b, root, containers, 1, stacked, visiting); err != nil {
			return "", err
		}
		stacked += root.Height
	}

	b.WriteString(documentTail)
	return b.String(), nil
}

// GenerateAll renders a full container list, such as Store.All, taking the
// roots in list order.
func GenerateAll(all []models.Container) (string, error) {
	containers := make(map[string]models.Container, len(all))
	var roots []models.Container
	for _, c := range all {
		containers[c.ID] = c
		if c.IsRoot() {
			roots = append(roots, c)
		}
	}
	return Generate(containers, roots)
}

func byZIndex(a, b models.Container) int {
	return cmp.Compare(a.Styles.ZIndex, b.Styles.ZIndex)
}

func writeContainer(b *strings.Builder, c models.Container, containers map[string]models.Container, depth int, stacked float64, visiting map[string]struct{}) error {
	if _, loop := visiting[c.ID]; loop {
		return fmt.Errorf("%w at %s", ErrCycle, c.ID)
	}
	visiting[c.ID] = struct{}{}
	defer delete(visiting, c.ID)

	indent := strings.Repeat(indentUnit, depth)
	fmt.Fprintf(b, "%s<div id=\"%s\" style=\"%s\">\n", indent, html.EscapeString(c.ID), html.EscapeString(inlineStyle(c, stacked)))

	children := make([]models.Container, 0, len(c.Children))
	for _, id := range c.Children {
		if child, ok := containers[id]; ok {
			children = append(children, child)
		}
	}
	slices.SortStableFunc(children, byZIndex)
	for _, child := range children {
		if err := writeContainer(b, child, containers, depth+1, 0, visiting); err != nil {
			return err
		}
	}

	fmt.Fprintf(b, "%s</div>\n", indent)
	return nil
}

func inlineStyle(c models.Container, stacked float64) string {
	props := []string{
		"width: " + px(c.Width),
		"height: " + px(c.Height),
		"background-color: " + c.Styles.BackgroundColor,
		"border: " + c.Styles.Border.String(),
		"z-index: " + strconv.Itoa(c.Styles.ZIndex),
		"transform: rotate(" + num(c.Rotation) + "deg)",
	}
	if c.IsRoot() {
		props = append(props,
			"position: relative",
			"left: "+px(c.X),
			"top: "+px(c.Y-stacked),
		)
	} else {
		props = append(props,
			"position: absolute",
			"left: "+px(c.X),
			"top: "+px(c.Y),
		)
	}
	return strings.Join(props, "; ")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func px(v float64) string {
	return num(v) + "px"
}

// Package importer rebuilds a container tree from HTML markup, typically a
// document previously produced by the code generator.
package importer

import (
	"errors"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/layout-editor/backend/internal/geometry"
	"github.com/layout-editor/backend/internal/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Code classifies import failures.
type Code string

const (
	CodeInvalidMarkup         Code = "INVALID_MARKUP"
	CodeNoAddressableElements Code = "NO_ADDRESSABLE_ELEMENTS"
)

// Error is a failed import with a message fit for the user.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// IsCode reports whether err is an import Error with the given code.
func IsCode(err error, code Code) bool {
	var ie *Error
	return errors.As(err, &ie) && ie.Code == code
}

func invalidMarkup(err error) *Error {
	return &Error{Code: CodeInvalidMarkup, Message: "Invalid HTML format", Err: err}
}

var errNoAddressable = &Error{Code: CodeNoAddressableElements, Message: "No elements with IDs found in the HTML"}

// Result is a parsed container tree. Order lists ids in document order, so
// every parent precedes its children.
type Result struct {
	Containers map[string]models.Container
	Order      []string
}

// List returns the containers in document order.
func (r *Result) List() []models.Container {
	out := make([]models.Container, 0, len(r.Order))
	for _, id := range r.Order {
		out = append(out, r.Containers[id].Clone())
	}
	return out
}

// Roots returns the ids of containers without a parent, in document order.
func (r *Result) Roots() []string {
	var out []string
	for _, id := range r.Order {
		if r.Containers[id].IsRoot() {
			out = append(out, id)
		}
	}
	return out
}

// Parse reads markup. Every element inside <body> carrying an id becomes a
// container; its parent is the nearest enclosing element with an id.
// Nested positions are taken as-is since the generator writes them relative
// to the parent. Relatively positioned roots get back the vertical offset
// the generator subtracted when stacking them.
func Parse(markup string) (*Result, error) {
	if err := validate(markup); err != nil {
		return nil, err
	}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, invalidMarkup(err)
	}

	res := &Result{Containers: make(map[string]models.Container)}
	var stacked float64

	var walk func(n *html.Node, parentID string)
	walk = func(n *html.Node, parentID string) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode {
				continue
			}
			nextParent := parentID
			if id := attr(child, "id"); strings.TrimSpace(id) != "" && !isDocumentElement(child) {
				nextParent = id
				if _, dup := res.Containers[id]; !dup {
					c, relative := fromElement(child, id, parentID)
					if c.IsRoot() && relative {
						c.Y += stacked
					}
					if c.IsRoot() {
						stacked += c.Height
					}
					res.add(c)
				}
			}
			walk(child, nextParent)
		}
	}
	if body := findBody(doc); body != nil {
		walk(body, "")
	}

	if len(res.Order) == 0 {
		return nil, errNoAddressable
	}
	return res, nil
}

func (r *Result) add(c models.Container) {
	r.Containers[c.ID] = c
	r.Order = append(r.Order, c.ID)
	if c.ParentID == "" {
		return
	}
	parent := r.Containers[c.ParentID]
	parent.Children = append(parent.Children, c.ID)
	r.Containers[c.ParentID] = parent
}

func fromElement(n *html.Node, id, parentID string) (models.Container, bool) {
	style := parseStyle(attr(n, "style"))

	c := models.Container{
		ID:       id,
		X:        pixels(style["left"]),
		Y:        pixels(style["top"]),
		Width:    pixels(style["width"]),
		Height:   pixels(style["height"]),
		Rotation: geometry.ExtractRotationDegrees(style["transform"]),
		Styles: models.Styles{
			BackgroundColor: "#ffffff",
			Border:          models.DefaultBorder(),
			ZIndex:          1,
		},
		ParentID: parentID,
		Children: []string{},
	}
	if v := style["background-color"]; v != "" {
		c.Styles.BackgroundColor = v
	}
	if v := style["border"]; v != "" {
		c.Styles.Border = models.ParseBorderOr(v, models.DefaultBorder())
	}
	if v, err := strconv.Atoi(style["z-index"]); err == nil {
		c.Styles.ZIndex = v
	}
	return c, strings.EqualFold(style["position"], "relative")
}

// parseStyle splits an inline style into lower-cased property names and
// trimmed values. Later declarations win.
func parseStyle(s string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		if prop == "" || value == "" {
			continue
		}
		out[prop] = value
	}
	return out
}

// pixels parses "12px" or "12"; anything else, including NaN and Inf, is 0.
func pixels(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(strings.ToLower(s)), "px"))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func isDocumentElement(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Html, atom.Head, atom.Body:
		return true
	}
	return false
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

var voidElements = map[atom.Atom]struct{}{
	atom.Area: {}, atom.Base: {}, atom.Br: {}, atom.Col: {}, atom.Embed: {},
	atom.Hr: {}, atom.Img: {}, atom.Input: {}, atom.Link: {}, atom.Meta: {},
	atom.Param: {}, atom.Source: {}, atom.Track: {}, atom.Wbr: {},
}

// validate runs the tokenizer over markup and rejects a closing tag that
// matches no open element. Unclosed elements are tolerated.
func validate(markup string) error {
	z := html.NewTokenizer(strings.NewReader(markup))
	var open []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return invalidMarkup(err)
			}
			return nil
		case html.StartTagToken:
			tok := z.Token()
			if _, void := voidElements[tok.DataAtom]; !void {
				open = append(open, tok.Data)
			}
		case html.EndTagToken:
			tok := z.Token()
			if _, void := voidElements[tok.DataAtom]; void {
				continue
			}
			switch tok.DataAtom {
			case atom.Html, atom.Head, atom.Body:
				continue
			}
			i := slices.Index(reversed(open), tok.Data)
			if i < 0 {
				return invalidMarkup(errors.New("unexpected closing tag </" + tok.Data + ">"))
			}
			open = open[:len(open)-1-i]
		}
	}
}

func reversed(s []string) []string {
	out := slices.Clone(s)
	slices.Reverse(out)
	return out
}

package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Border is the structured form of a CSS border shorthand.
// On the wire (JSON, msgpack, CSS) it is always the shorthand string.
type Border struct {
	Width float64 // px
	Style string  // none, solid, dashed, dotted, ...
	Color string
}

var borderStyles = map[string]struct{}{
	"none": {}, "hidden": {}, "solid": {}, "dashed": {}, "dotted": {},
	"double": {}, "groove": {}, "ridge": {}, "inset": {}, "outset": {},
}

// DefaultBorder is the border given to new and imported containers.
func DefaultBorder() Border {
	return Border{Width: 1, Style: "solid", Color: "#cccccc"}
}

// String renders the shorthand, e.g. "1px solid #cccccc".
func (b Border) String() string {
	if b.Style == "none" || b.Style == "" {
		return "none"
	}
	parts := []string{strconv.FormatFloat(b.Width, 'f', -1, 64) + "px", b.Style}
	if b.Color != "" {
		parts = append(parts, b.Color)
	}
	return strings.Join(parts, " ")
}

// ParseBorder parses a border shorthand. Tokens may appear in any order.
func ParseBorder(s string) (Border, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Border{}, fmt.Errorf("empty border")
	}
	if strings.EqualFold(s, "none") || s == "0" {
		return Border{Style: "none"}, nil
	}

	var b Border
	var haveWidth, haveStyle bool
	for _, tok := range splitBorderTokens(s) {
		lower := strings.ToLower(tok)
		if _, ok := borderStyles[lower]; ok && !haveStyle {
			b.Style = lower
			haveStyle = true
			continue
		}
		if w, ok := parseBorderWidth(lower); ok && !haveWidth {
			b.Width = w
			haveWidth = true
			continue
		}
		if b.Color != "" {
			return Border{}, fmt.Errorf("unexpected border token %q", tok)
		}
		b.Color = tok
	}
	if !haveStyle {
		return Border{}, fmt.Errorf("border %q has no style", s)
	}
	if !haveWidth {
		// CSS initial value for border-width is "medium".
		b.Width = 3
	}
	return b, nil
}

// ParseBorderOr returns the parsed border, or fallback when s is malformed.
func ParseBorderOr(s string, fallback Border) Border {
	b, err := ParseBorder(s)
	if err != nil {
		return fallback
	}
	return b
}

// splitBorderTokens splits on whitespace but keeps rgb(...)-style colors intact.
func splitBorderTokens(s string) []string {
	var out []string
	var cur strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case (r == ' ' || r == '\t' || r == '\n') && depth == 0:
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func parseBorderWidth(tok string) (float64, bool) {
	switch tok {
	case "thin":
		return 1, true
	case "medium":
		return 3, true
	case "thick":
		return 5, true
	}
	num := strings.TrimSuffix(tok, "px")
	if num == tok && tok != "0" {
		return 0, false
	}
	w, err := strconv.ParseFloat(num, 64)
	if err != nil || w < 0 {
		return 0, false
	}
	return w, true
}

// MarshalJSON encodes the border as its shorthand string.
func (b Border) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON accepts the shorthand string or an object with
// width/style/color fields.
func (b *Border) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseBorder(s)
		if err != nil {
			return err
		}
		*b = parsed
		return nil
	}

	var obj struct {
		Width float64 `json:"width"`
		Style string  `json:"style"`
		Color string  `json:"color"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("border must be a shorthand string or object: %w", err)
	}
	if obj.Style == "" {
		obj.Style = "solid"
	}
	*b = Border{Width: obj.Width, Style: strings.ToLower(obj.Style), Color: obj.Color}
	return nil
}

var (
	_ msgpack.CustomEncoder = Border{}
	_ msgpack.CustomDecoder = (*Border)(nil)
)

// EncodeMsgpack encodes the border as its shorthand string.
func (b Border) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.EncodeString(b.String())
}

// DecodeMsgpack decodes a shorthand string.
func (b *Border) DecodeMsgpack(dec *msgpack.Decoder) error {
	s, err := dec.DecodeString()
	if err != nil {
		return err
	}
	parsed, err := ParseBorder(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

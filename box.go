package uieval

import (
	"fmt"
	"strings"
)

// Box is an axis-aligned rectangle in pixel space with the origin at the
// top-left corner. Tag names the UI element category.
type Box struct {
	Tag string  `json:"tag"`
	X1  float64 `json:"x1"` // left
	Y1  float64 `json:"y1"` // top
	X2  float64 `json:"x2"` // right
	Y2  float64 `json:"y2"` // bottom
}

// Area returns the box area, or 0 for degenerate or inverted boxes.
func (b Box) Area() float64 {
	w := b.X2 - b.X1
	h := b.Y2 - b.Y1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

func (b Box) String() string {
	return fmt.Sprintf("%s(%g, %g, %g, %g)", b.Tag, b.X1, b.Y1, b.X2, b.Y2)
}

// Category is one of the recognized UI element kinds.
type Category int

// Recognized categories, in reporting order.
const (
	Button Category = iota
	Input
	Radio
	Dropdown

	numCategories

	// overall labels metrics summed over every category.
	overall Category = -1
)

var categoryNames = [numCategories]string{
	Button:   "button",
	Input:    "input",
	Radio:    "radio",
	Dropdown: "dropdown",
}

// Categories returns every recognized category in reporting order.
func Categories() []Category {
	return []Category{Button, Input, Radio, Dropdown}
}

// ParseCategory maps a box tag to its category. Comparison is case-insensitive.
func ParseCategory(tag string) (Category, bool) {
	for c, name := range categoryNames {
		if strings.EqualFold(tag, name) {
			return Category(c), true
		}
	}
	return 0, false
}

// String returns the lower-case category name.
func (c Category) String() string {
	if c == overall {
		return "overall"
	}
	if c < 0 || c >= numCategories {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Matches reports whether tag names this category.
func (c Category) Matches(tag string) bool {
	p, ok := ParseCategory(tag)
	return ok && p == c
}

// filter returns the boxes tagged with c, preserving order.
func filter(boxes []Box, c Category) []Box {
	var out []Box
	for _, b := range boxes {
		if c.Matches(b.Tag) {
			out = append(out, b)
		}
	}
	return out
}

package flowgraph

import "github.com/matzehuels/flowviz/pkg/render/palette"

// Category selects the color scheme of a drawing element.
type Category int

// Color categories.
const (
	CategoryComponent Category = iota
	CategoryGraph
	CategoryGate
	CategoryInitial
	CategoryPort
	CategoryExport
)

// Scheme is the set of colors of one category. Unused fields are empty.
type Scheme struct {
	Fill  palette.Color
	Label palette.Color
	Edge  palette.Color
}

// Scheme returns the colors of the category.
func (c Category) Scheme() Scheme {
	switch c {
	case CategoryComponent:
		return Scheme{Fill: "#204a87", Label: "#ffffff"}
	case CategoryGraph:
		return Scheme{Fill: "#5c3566", Label: "#ffffff"}
	case CategoryGate:
		return Scheme{Fill: "#a40000", Label: "#ffffff"}
	case CategoryInitial:
		return Scheme{Fill: "#eeeeec", Label: "#555753", Edge: "#2e3436"}
	case CategoryPort:
		return Scheme{Label: "#555753", Edge: "#555753"}
	case CategoryExport:
		return Scheme{Fill: "#e9b96e", Label: "#000000"}
	}
	return CategoryComponent.Scheme()
}

// nodeCategory picks the node category: gate beats graph beats component.
func nodeCategory(kind Kind, subgraph bool) Category {
	switch {
	case kind.IsGate():
		return CategoryGate
	case subgraph:
		return CategoryGraph
	}
	return CategoryComponent
}

package flowgraph

import "path"

// Shape is a Graphviz node shape.
type Shape string

// Shapes used by the renderer.
const (
	ShapeBox          Shape = "box"
	ShapeHexagon      Shape = "hexagon"
	ShapeNone         Shape = "none"
	ShapePlaintext    Shape = "plaintext"
	ShapeCircle       Shape = "circle"
	ShapeDoubleCircle Shape = "doublecircle"
)

// Kind classifies components that are drawn specially.
type Kind int

// Component kinds.
const (
	KindComponent Kind = iota
	KindKick
	KindSendString
	KindCollectUntilIdle
	KindDrop
)

var kindNames = map[string]Kind{
	"Kick":             KindKick,
	"SendString":       KindSendString,
	"CollectUntilIdle": KindCollectUntilIdle,
	"Drop":             KindDrop,
}

// KindOf classifies a component by name. Namespaced names are classified
// by their last segment, so "core/Drop" is [KindDrop].
func KindOf(component string) Kind {
	if k, ok := kindNames[component]; ok {
		return k
	}
	return kindNames[path.Base(component)]
}

// Shape returns the node shape used for the kind.
func (k Kind) Shape() Shape {
	switch k {
	case KindKick, KindSendString, KindCollectUntilIdle:
		return ShapeHexagon
	case KindDrop:
		return ShapeNone
	case KindComponent:
		return ShapeBox
	}
	return ShapeBox
}

// IsGate reports whether the kind is drawn as a gate.
func (k Kind) IsGate() bool { return k.Shape() == ShapeHexagon }

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// DrawingKeyOpts are the inputs besides the graph that shape a drawing.
type DrawingKeyOpts struct {
	Name         string   `json:"name"`
	Format       string   `json:"format"`
	ManifestHash string   `json:"manifest"`
	NoLayers     bool     `json:"no_layers"`
	Palette      []string `json:"palette,omitempty"`
}

// ArtifactKeyOpts are the inputs besides the DOT source that shape an artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// Keyer derives cache keys for each stage.
type Keyer interface {
	// DrawingKey keys the DOT source rendered from a graph.
	DrawingKey(graphHash string, opts DrawingKeyOpts) string

	// ArtifactKey keys an output artifact rasterized from DOT source.
	ArtifactKey(drawingHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DrawingKey implements Keyer.
func (DefaultKeyer) DrawingKey(graphHash string, opts DrawingKeyOpts) string {
	return hashKey("drawing", graphHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(drawingHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", drawingHash, opts)
}

package cache

// Keyer generates cache keys.
type Keyer interface {
	// RenderKey returns the key of a graph rendered from dot in format.
	RenderKey(dot, format string) string
}

// DefaultKeyer hashes the inputs of each key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RenderKey returns "render:<sha256>" over the format and DOT source.
func (DefaultKeyer) RenderKey(dot, format string) string {
	return hashKey("render", format, dot)
}

package cache

import "strings"

// Keyer generates cache keys.
type Keyer interface {
	// HTTPKey names a raw HTTP response in a namespace such as "lichess:".
	HTTPKey(namespace, key string) string

	// ExplorerKey names the move statistics of the position reached by
	// playing uci from the starting position in the given explorer database.
	ExplorerKey(database string, uci []string, opts ExplorerKeyOpts) string

	// ArtifactKey names a rendered diagram of the graph with the given
	// content hash.
	ArtifactKey(graphHash string, opts ArtifactKeyOpts) string
}

// ExplorerKeyOpts holds the request parameters that change explorer results.
type ExplorerKeyOpts struct {
	Speeds  []string `json:"speeds,omitempty"`
	Ratings []int    `json:"ratings,omitempty"`
}

// ArtifactKeyOpts holds the render parameters that change a diagram.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Start    string `json:"start,omitempty"` // Position key of the top node
	MaxDepth int    `json:"max_depth,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:" + namespace + ":" + key.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ExplorerKey returns "explorer:<database>:" followed by a hash of the move
// path and options. The start position hashes to the same key as an empty path.
func (DefaultKeyer) ExplorerKey(database string, uci []string, opts ExplorerKeyOpts) string {
	return hashKey("explorer:"+database, strings.Join(uci, ","), opts)
}

// ArtifactKey returns "artifact:<format>:" followed by a hash of the graph
// hash and options.
func (DefaultKeyer) ArtifactKey(graphHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, graphHash, opts)
}

var _ Keyer = DefaultKeyer{}

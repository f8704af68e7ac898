package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// ArtifactKeyOpts are the render inputs, besides the trace itself, that
// change the produced bytes.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	Title     string  `json:"title"`
	PenWidth  float64 `json:"pen_width"`
	PenColour string  `json:"pen_colour"`
	Scale     float64 `json:"scale,omitempty"` // raster formats only
}

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey returns the key for a rendered artifact of the given trace.
	ArtifactKey(trace []byte, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ArtifactKey implements Keyer. The trace is hashed separately so large
// traces are not marshalled into the options hash.
func (DefaultKeyer) ArtifactKey(trace []byte, opts ArtifactKeyOpts) string {
	return hashKey("artifact", Hash(trace), opts)
}

// ScopedKeyer wraps a Keyer with a prefix, so several deployments can share
// one Redis database.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(trace []byte, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(trace, opts)
}

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

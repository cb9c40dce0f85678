// Package platform describes the host environment the core runs in.
//
// Mobile hosts hand file resolution and cache access to an ambient application
// context; here that context is an explicit value passed to constructors.
package platform

import (
	"context"
	"os"
)

// MediaIndex is the host's read-only catalogue of images, keyed by the
// references its picker hands out.
type MediaIndex interface {
	// LookupPath returns the local file path backing uri. found is false when
	// the index has no row for uri; a row without a local projection yields
	// found=true with an empty path.
	LookupPath(ctx context.Context, uri string) (path string, found bool, err error)
}

// Context is the explicit replacement for an ambient application context.
type Context interface {
	// CacheDir is a writable directory for generated files.
	CacheDir() string
	// MediaIndex may be nil when the host has no media catalogue.
	MediaIndex() MediaIndex
}

// Static is a Context with fixed values.
type Static struct {
	Cache string
	Index MediaIndex
}

// NewStatic returns a Context rooted at cacheDir. index may be nil.
func NewStatic(cacheDir string, index MediaIndex) *Static {
	return &Static{Cache: cacheDir, Index: index}
}

func (s *Static) CacheDir() string {
	if s.Cache == "" {
		return os.TempDir()
	}
	return s.Cache
}

func (s *Static) MediaIndex() MediaIndex {
	return s.Index
}

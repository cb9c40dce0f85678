package resolver

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Scheme values understood by the resolver.
const (
	SchemeFile    = "file"
	SchemeContent = "content"
)

// parsedRef is a reference split into scheme and scheme-specific part.
type parsedRef struct {
	Scheme string
	// Path is the local path for file references and the full URI otherwise.
	Path string
}

// parseRef classifies raw as a plain path, a file:// URI or another URI.
func parseRef(raw string) (parsedRef, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return parsedRef{}, fmt.Errorf("reference is empty")
	}

	if filepath.IsAbs(trimmed) {
		return parsedRef{Scheme: SchemeFile, Path: filepath.Clean(trimmed)}, nil
	}

	if !strings.Contains(trimmed, "://") {
		return parsedRef{}, fmt.Errorf("reference %q is neither an absolute path nor a URI", trimmed)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return parsedRef{}, fmt.Errorf("could not parse reference '%s': %w", trimmed, err)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme == SchemeFile {
		if u.Host != "" && u.Host != "localhost" {
			return parsedRef{}, fmt.Errorf("file reference %q names a remote host", trimmed)
		}
		if u.Path == "" {
			return parsedRef{}, fmt.Errorf("file reference %q has no path", trimmed)
		}
		return parsedRef{Scheme: SchemeFile, Path: filepath.Clean(filepath.FromSlash(u.Path))}, nil
	}

	return parsedRef{Scheme: scheme, Path: trimmed}, nil
}

package models

import "strings"

// ImageRef is an opaque image handle issued by a picker, e.g. a content URI.
// The zero value means "nothing selected".
type ImageRef string

// IsEmpty reports whether the reference is absent.
func (r ImageRef) IsEmpty() bool {
	return strings.TrimSpace(string(r)) == ""
}

func (r ImageRef) String() string {
	return string(r)
}

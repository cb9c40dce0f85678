package bridge

import "fmt"

// Code is a status returned by the native routine.
type Code int32

// Known odiff status codes. Other values are passed through unchanged.
const (
	CodeSuccess           Code = 0
	CodeImageNotLoaded    Code = 1
	CodeUnsupportedFormat Code = 2
	CodeFailedToDiff      Code = 3
	CodeOutOfMemory       Code = 4
	CodeInvalidHexColor   Code = 5
)

var codeNames = map[Code]string{
	CodeSuccess:           "SUCCESS",
	CodeImageNotLoaded:    "IMAGE_NOT_LOADED",
	CodeUnsupportedFormat: "UNSUPPORTED_FORMAT",
	CodeFailedToDiff:      "FAILED_TO_DIFF",
	CodeOutOfMemory:       "OUT_OF_MEMORY",
	CodeInvalidHexColor:   "INVALID_HEX_COLOR",
}

// String returns the symbolic name, or UNKNOWN(n) for codes outside the catalogue.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int32(c))
}

// Known reports whether c is in the catalogue.
func (c Code) Known() bool {
	_, ok := codeNames[c]
	return ok
}

package models

import "fmt"

// ResultType tells whether the native routine compared layouts or pixels.
type ResultType int32

const (
	ResultTypeLayout ResultType = 0
	ResultTypePixel  ResultType = 1
)

func (rt ResultType) String() string {
	switch rt {
	case ResultTypeLayout:
		return "layout"
	case ResultTypePixel:
		return "pixel"
	default:
		return fmt.Sprintf("unknown(%d)", int32(rt))
	}
}

// DiffResult is the detailed outcome some native adapters can report.
//
// DiffLines is a Go copy of the native buffer; the adapter releases the native
// memory before returning. An empty DiffOutputPath means no image was written.
type DiffResult struct {
	ResultType     ResultType `json:"result_type"`
	DiffCount      int32      `json:"diff_count"`
	DiffPercentage float64    `json:"diff_percentage"`
	DiffLineCount  uint64     `json:"diff_line_count"`
	DiffLines      []uint32   `json:"diff_lines,omitempty"`
	DiffOutputPath string     `json:"diff_output_path,omitempty"`
}

// HasOutput reports whether the native side named an output image.
func (r DiffResult) HasOutput() bool {
	return r.DiffOutputPath != ""
}

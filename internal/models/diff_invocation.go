package models

import "time"

// DiffInvocation records one call into the native diff routine.
type DiffInvocation struct {
	ID           int64         `json:"id,omitempty"`
	BeforePath   string        `json:"before_path"`
	AfterPath    string        `json:"after_path"`
	OutputPath   string        `json:"output_path"`
	ResultCode   int32         `json:"result_code"`
	OutputExists bool          `json:"output_exists"`
	Duration     time.Duration `json:"duration"`
	CreatedAt    time.Time     `json:"created_at"`

	// Result is nil when the bridge reports only a status code.
	Result *DiffResult `json:"result,omitempty"`
}

// Succeeded reports whether the native routine returned 0.
func (d DiffInvocation) Succeeded() bool {
	return d.ResultCode == 0
}

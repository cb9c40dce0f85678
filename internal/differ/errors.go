package differ

import "fmt"

// DiffError reports a non-zero status from the native routine. The code is
// reported verbatim.
type DiffError struct {
	Code       int32
	BeforePath string
	AfterPath  string
}

func (e *DiffError) Error() string {
	return fmt.Sprintf("diff failed with code %d", e.Code)
}

// MissingOutputError reports a zero status with no file at the output path.
// The odiff CLI does this when the images match.
type MissingOutputError struct {
	OutputPath string
}

func (e *MissingOutputError) Error() string {
	return fmt.Sprintf("diff reported success but wrote no output at %s", e.OutputPath)
}

package controller

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aleister1102/odiffkit/internal/common"
)

// ErrMissingSelection matches every *GuardError.
var ErrMissingSelection = errors.New("missing selection")

// ErrDiffInFlight is returned when a request arrives while another is outstanding.
var ErrDiffInFlight = fmt.Errorf("diff request already in flight: %w", common.ErrBusy)

// GuardError reports which selections were absent.
type GuardError struct {
	MissingBefore bool
	MissingAfter  bool
}

func (e *GuardError) Error() string {
	var missing []string
	if e.MissingBefore {
		missing = append(missing, "before")
	}
	if e.MissingAfter {
		missing = append(missing, "after")
	}
	return fmt.Sprintf("missing selection: %s image not selected", strings.Join(missing, " and "))
}

func (e *GuardError) Is(target error) bool {
	return target == ErrMissingSelection
}

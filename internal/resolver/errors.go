package resolver

import (
	"fmt"

	"github.com/aleister1102/odiffkit/internal/common"
	"github.com/aleister1102/odiffkit/internal/models"
)

// ResolutionError reports that a reference has no usable local file.
type ResolutionError struct {
	Ref    models.ImageRef
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot resolve %q: %s: %v", string(e.Ref), e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot resolve %q: %s", string(e.Ref), e.Reason)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Is makes every ResolutionError match common.ErrNotFound.
func (e *ResolutionError) Is(target error) bool {
	return target == common.ErrNotFound
}

func notFound(ref models.ImageRef, reason string, err error) error {
	return &ResolutionError{Ref: ref, Reason: reason, Err: err}
}

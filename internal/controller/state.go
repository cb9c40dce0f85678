package controller

import (
	"fmt"

	"github.com/aleister1102/odiffkit/internal/models"
)

// View is the navigation state.
type View int

const (
	// ViewSelecting is the initial view where the user picks both images.
	ViewSelecting View = iota
	// ViewPresenting shows a difference image. It is stable; nothing leads back.
	ViewPresenting
)

func (v View) String() string {
	switch v {
	case ViewSelecting:
		return "selecting"
	case ViewPresenting:
		return "presenting"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

// State is a snapshot of the controller. Before and After are kept in both views.
type State struct {
	View   View
	Before models.ImageRef
	After  models.ImageRef
	// DiffPath is the image shown in ViewPresenting. Empty means no image (the inputs matched).
	DiffPath string
}

// HasBothSelections reports whether a diff may be requested.
func (s State) HasBothSelections() bool {
	return !s.Before.IsEmpty() && !s.After.IsEmpty()
}

// OutcomeKind classifies the result of a diff request.
type OutcomeKind int

const (
	OutcomePresented OutcomeKind = iota
	OutcomeMissingSelection
	OutcomeResolutionFailed
	OutcomeDiffFailed
	// OutcomeInvocationError covers failures that produced no native status code.
	OutcomeInvocationError
	// OutcomeRejected means another request was still in flight.
	OutcomeRejected
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomePresented:
		return "presented"
	case OutcomeMissingSelection:
		return "missing_selection"
	case OutcomeResolutionFailed:
		return "resolution_failed"
	case OutcomeDiffFailed:
		return "diff_failed"
	case OutcomeInvocationError:
		return "invocation_error"
	case OutcomeRejected:
		return "rejected"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is delivered once per diff request.
type Outcome struct {
	Kind OutcomeKind
	// State is the controller state after the request.
	State State
	// Code is the native status for OutcomeDiffFailed.
	Code int32
	// Result carries the diff metrics of OutcomePresented when the differ reports them.
	Result *models.DiffResult
	Err    error
}

// Package notifier is the transient notification surface: short-lived
// messages about diff requests shown to the user.
package notifier

import (
	"context"
	"fmt"

	"github.com/aleister1102/odiffkit/internal/common"
)

// Kind classifies a message.
type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindInfo:
		return "info"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// User-visible texts.
const (
	TextMissingSelection = "Please select both images"
	TextResolutionFailed = "Unable to get file paths"
	TextDiffReady        = "Difference image ready"
	TextNoDifference     = "Images are identical"
)

// Message is one ephemeral notification.
type Message struct {
	Kind Kind
	Text string
	// AttachmentPath optionally names the difference image the message refers to.
	AttachmentPath string
}

// Notifier shows messages to the user.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, msg Message) error

func (f Func) Notify(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// MissingSelection is sent when a diff is requested before both images are chosen.
func MissingSelection() Message {
	return Message{Kind: KindError, Text: TextMissingSelection}
}

// ResolutionFailed is sent when either reference has no local file.
func ResolutionFailed() Message {
	return Message{Kind: KindError, Text: TextResolutionFailed}
}

// DiffFailed carries the native status code unchanged.
func DiffFailed(code int32) Message {
	return Message{Kind: KindError, Text: fmt.Sprintf("Diff failed with code %d", code)}
}

// DiffError is sent for failures that produced no native status code.
func DiffError(err error) Message {
	return Message{Kind: KindError, Text: fmt.Sprintf("Diff failed: %v", err)}
}

// DiffReady is sent after a successful diff. path may be empty when the images matched.
func DiffReady(path string) Message {
	if path == "" {
		return Message{Kind: KindSuccess, Text: TextNoDifference}
	}
	return Message{Kind: KindSuccess, Text: TextDiffReady, AttachmentPath: path}
}

// Multi fans a message out to several notifiers. All are attempted; errors are combined.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return common.CombineErrors(errs)
}

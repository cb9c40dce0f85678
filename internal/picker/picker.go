// Package picker is the image picker collaborator. A pick yields zero or one
// reference per call.
package picker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aleister1102/odiffkit/internal/models"
)

// Picker asks the user for one image. ok is false when the user cancelled.
type Picker interface {
	Pick(ctx context.Context) (ref models.ImageRef, ok bool, err error)
}

// Func adapts a function to Picker.
type Func func(ctx context.Context) (models.ImageRef, bool, error)

func (f Func) Pick(ctx context.Context) (models.ImageRef, bool, error) {
	return f(ctx)
}

// Static returns queued references in order, then reports cancellation.
type Static struct {
	mu   sync.Mutex
	refs []models.ImageRef
}

func NewStatic(refs ...models.ImageRef) *Static {
	return &Static{refs: append([]models.ImageRef(nil), refs...)}
}

func (s *Static) Pick(ctx context.Context) (models.ImageRef, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.refs) == 0 {
		return "", false, nil
	}
	ref := s.refs[0]
	s.refs = s.refs[1:]
	if ref.IsEmpty() {
		return "", false, nil
	}
	return ref, true, nil
}

// Prompt reads one line per pick from an input stream. An empty line or end of
// input is a cancelled pick.
type Prompt struct {
	label string
	in    *bufio.Reader
	out   io.Writer
	mu    sync.Mutex
}

func NewPrompt(label string, in io.Reader, out io.Writer) *Prompt {
	return &Prompt{label: label, in: bufio.NewReader(in), out: out}
}

func (p *Prompt) Pick(ctx context.Context) (models.ImageRef, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.out != nil {
		if _, err := fmt.Fprintf(p.out, "%s: ", p.label); err != nil {
			return "", false, err
		}
	}

	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", false, err
	}
	ref := models.ImageRef(strings.TrimSpace(line))
	if ref.IsEmpty() {
		return "", false, nil
	}
	return ref, true, nil
}

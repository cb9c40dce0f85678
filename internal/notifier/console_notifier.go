package notifier

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// ConsoleNotifier prints messages to a terminal, coloured by kind.
type ConsoleNotifier struct {
	out     io.Writer
	success *color.Color
	failure *color.Color
	info    *color.Color
}

// NewConsoleNotifier writes to out (stderr when nil). enableColor=false prints plain text.
func NewConsoleNotifier(out io.Writer, enableColor bool) *ConsoleNotifier {
	if out == nil {
		out = os.Stderr
	}
	n := &ConsoleNotifier{
		out:     out,
		success: color.New(color.FgGreen, color.Bold),
		failure: color.New(color.FgRed, color.Bold),
		info:    color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{n.success, n.failure, n.info} {
		if enableColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return n
}

func (n *ConsoleNotifier) Notify(_ context.Context, msg Message) error {
	c := n.info
	switch msg.Kind {
	case KindSuccess:
		c = n.success
	case KindError:
		c = n.failure
	}

	line := msg.Text
	if msg.AttachmentPath != "" {
		line = fmt.Sprintf("%s: %s", msg.Text, msg.AttachmentPath)
	}
	_, err := c.Fprintln(n.out, line)
	return err
}

// Package clipboard writes generated passwords to the host clipboard.
package clipboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

var ErrUnavailable = errors.New("clipboard unavailable")

// Writer puts text on a clipboard.
type Writer interface {
	WriteText(ctx context.Context, text string) error
}

// System writes to the clipboard of the machine the process runs on.
type System struct{}

// WriteText copies text to the system clipboard.
func (System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("writing system clipboard: %w", err)
	}
	return nil
}

// Unavailable is used where no clipboard exists, such as headless servers.
type Unavailable struct{}

// WriteText always fails with ErrUnavailable.
func (Unavailable) WriteText(context.Context, string) error {
	return ErrUnavailable
}

// New returns the clipboard named by kind: "system" or "none".
func New(kind string) (Writer, error) {
	switch kind {
	case "system":
		return System{}, nil
	case "", "none":
		return Unavailable{}, nil
	default:
		return nil, fmt.Errorf("unknown clipboard %q", kind)
	}
}

package cli

import (
	"io"

	"github.com/fatih/color"

	"github.com/ericfisherdev/panelctl/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Notifier = (*TerminalNotifier)(nil)

// TerminalNotifier prints user-facing notices, highlighted when colored.
type TerminalNotifier struct {
	w     io.Writer
	style *color.Color
}

// NewTerminalNotifier writes notices to w.
func NewTerminalNotifier(w io.Writer, colored bool) *TerminalNotifier {
	style := color.New(color.FgYellow, color.Bold)
	if colored {
		style.EnableColor()
	} else {
		style.DisableColor()
	}
	return &TerminalNotifier{w: w, style: style}
}

// Notify implements driven.Notifier.
func (n *TerminalNotifier) Notify(message string) {
	_, _ = n.style.Fprintln(n.w, message)
}

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/cli/browser"

	"github.com/ericfisherdev/panelctl/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Navigator = (*BrowserNavigator)(nil)

// BrowserNavigator points the user at the landing page: it always prints the
// location and, when enabled, opens it in the default browser.
type BrowserNavigator struct {
	w       io.Writer
	open    bool
	openURL func(string) error
}

// NewBrowserNavigator writes to w and opens the browser when open is true.
func NewBrowserNavigator(w io.Writer, open bool) *BrowserNavigator {
	return &BrowserNavigator{w: w, open: open, openURL: browser.OpenURL}
}

// Navigate implements driven.Navigator.
func (n *BrowserNavigator) Navigate(_ context.Context, location string) error {
	if _, err := fmt.Fprintf(n.w, "Signed out. Sign in again at %s\n", location); err != nil {
		return fmt.Errorf("write landing location: %w", err)
	}
	if !n.open {
		return nil
	}
	if err := n.openURL(location); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}

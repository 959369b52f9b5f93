package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserNavigator_PrintOnly(t *testing.T) {
	var buf bytes.Buffer
	nav := NewBrowserNavigator(&buf, false)
	nav.openURL = func(string) error {
		t.Fatal("browser must not open when disabled")
		return nil
	}

	require.NoError(t, nav.Navigate(context.Background(), "http://panel.test/index.html"))
	assert.Equal(t, "Signed out. Sign in again at http://panel.test/index.html\n", buf.String())
}

func TestBrowserNavigator_Opens(t *testing.T) {
	var buf bytes.Buffer
	var opened []string
	nav := NewBrowserNavigator(&buf, true)
	nav.openURL = func(u string) error {
		opened = append(opened, u)
		return nil
	}

	require.NoError(t, nav.Navigate(context.Background(), "http://panel.test/index.html"))
	assert.Equal(t, []string{"http://panel.test/index.html"}, opened)
}

func TestBrowserNavigator_OpenError(t *testing.T) {
	var buf bytes.Buffer
	nav := NewBrowserNavigator(&buf, true)
	nav.openURL = func(string) error { return errors.New("no display") }

	err := nav.Navigate(context.Background(), "http://panel.test/index.html")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "index.html")
}

func TestTerminalNotifier(t *testing.T) {
	var buf bytes.Buffer
	NewTerminalNotifier(&buf, false).Notify("hello")
	assert.Equal(t, "hello\n", buf.String())

	buf.Reset()
	NewTerminalNotifier(&buf, true).Notify("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "\x1b[")
}

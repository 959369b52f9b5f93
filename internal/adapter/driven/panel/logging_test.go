package panel

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("dial tcp: refused")
}

func TestLoggingTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	t.Cleanup(server.Close)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tr := &loggingTransport{next: server.Client().Transport, logger: logger}

	req, err := http.NewRequest(http.MethodGet, server.URL+"/v1/users", nil)
	require.NoError(t, err)
	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	out := buf.String()
	assert.Contains(t, out, "path=/v1/users")
	assert.Contains(t, out, "status=418")
}

func TestLoggingTransport_Error(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	tr := &loggingTransport{next: failingTransport{}, logger: logger}

	req, err := http.NewRequest(http.MethodGet, "http://panel.invalid/v1/profile", nil)
	require.NoError(t, err)

	_, err = tr.RoundTrip(req)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "panel round trip failed")
	assert.Contains(t, buf.String(), "refused")
}

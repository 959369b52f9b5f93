package panel

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureTransport records the last request and answers with status.
type captureTransport struct {
	status int
	last   *http.Request
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.last = req
	rec := httptest.NewRecorder()
	rec.WriteHeader(c.status)
	return rec.Result(), nil
}

func TestStaleTransport(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		auth          string
		maxStale      time.Duration
		wantTagged    bool
		wantCacheCtrl string
	}{
		{name: "signed-in GET", method: http.MethodGet, auth: "Bearer tok", maxStale: 90 * time.Second, wantTagged: true, wantCacheCtrl: "max-stale=90"},
		{name: "max-stale off", method: http.MethodGet, auth: "Bearer tok", wantTagged: true},
		{name: "sub-second max-stale", method: http.MethodGet, auth: "Bearer tok", maxStale: 500 * time.Millisecond, wantTagged: true},
		{name: "signed out", method: http.MethodGet, auth: "Bearer ", maxStale: time.Minute},
		{name: "POST", method: http.MethodPost, auth: "Bearer tok", maxStale: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &captureTransport{status: http.StatusOK}
			tr := &staleTransport{next: next, maxStale: tt.maxStale}

			req, err := http.NewRequest(tt.method, "http://panel.test/v1/users", nil)
			require.NoError(t, err)
			req.Header.Set("Authorization", tt.auth)

			resp, err := tr.RoundTrip(req)
			require.NoError(t, err)
			_ = resp.Body.Close()

			assert.Equal(t, tt.wantTagged, next.last.Header.Get(credentialHeader) != "")
			assert.Equal(t, tt.wantCacheCtrl, next.last.Header.Get("Cache-Control"))
			assert.Empty(t, req.Header.Get(credentialHeader))
		})
	}
}

func TestCredentialDigest(t *testing.T) {
	a := credentialDigest("tok")

	assert.Equal(t, a, credentialDigest("tok"))
	assert.NotEqual(t, a, credentialDigest("other"))
	assert.NotContains(t, a, "tok")
	assert.Len(t, a, 32)
}

func TestStorePolicy(t *testing.T) {
	tests := []struct {
		status        int
		wantCacheCtrl string
		wantVary      string
	}{
		{status: http.StatusOK, wantVary: credentialHeader},
		{status: http.StatusNotModified},
		{status: http.StatusUnauthorized, wantCacheCtrl: "no-store"},
		{status: http.StatusNotFound, wantCacheCtrl: "no-store"},
		{status: http.StatusBadGateway, wantCacheCtrl: "no-store"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			next := &captureTransport{status: tt.status}
			tr := &storePolicy{next: next}

			req, err := http.NewRequest(http.MethodGet, "http://panel.test/v1/users", nil)
			require.NoError(t, err)
			req.Header.Set(credentialHeader, credentialDigest("tok"))

			resp, err := tr.RoundTrip(req)
			require.NoError(t, err)
			_ = resp.Body.Close()

			assert.Empty(t, next.last.Header.Get(credentialHeader))
			assert.Equal(t, tt.wantCacheCtrl, resp.Header.Get("Cache-Control"))
			assert.Equal(t, tt.wantVary, resp.Header.Get("Vary"))
		})
	}
}

func TestNewCache(t *testing.T) {
	for _, dir := range []string{"", t.TempDir()} {
		c := newCache(dir)

		c.Set("k", []byte("v"))
		got, ok := c.Get("k")
		require.True(t, ok)
		assert.Equal(t, []byte("v"), got)

		c.Delete("k")
		_, ok = c.Get("k")
		assert.False(t, ok)
	}
}

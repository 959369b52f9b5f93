package panel

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"github.com/peterbourgon/diskv"
)

// credentialHeader carries a digest of the bearer credential from
// staleTransport down to the cache, which varies stored responses on it.
// storePolicy removes it before the request leaves the process.
const credentialHeader = "X-Panelctl-Credential"

// cacheSizeMax bounds the in-memory layer of the disk cache.
const cacheSizeMax = 16 << 20

// newCache returns a disk-backed response cache rooted at dir, or an
// in-memory one when dir is empty. Cached files are private to the user.
func newCache(dir string) httpcache.Cache {
	if dir == "" {
		return httpcache.NewMemoryCache()
	}
	return diskcache.NewWithDiskv(diskv.New(diskv.Options{
		BasePath:     dir,
		CacheSizeMax: cacheSizeMax,
		PathPerm:     0o700,
		FilePerm:     0o600,
	}))
}

// credentialDigest returns a stable, non-reversible tag for token.
func credentialDigest(token string) string {
	sum := sha256.Sum256([]byte("panelctl-cache:" + token))
	return hex.EncodeToString(sum[:16])
}

// staleTransport tags signed-in GET requests with the credential digest and,
// when maxStale is positive, asks the cache to answer them from a stored
// response up to maxStale old without contacting the panel. Signed-out
// requests are passed through untouched and always reach the panel.
type staleTransport struct {
	next     http.RoundTripper
	maxStale time.Duration
}

func (t *staleTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := strings.TrimSpace(strings.TrimPrefix(req.Header.Get("Authorization"), "Bearer"))
	if req.Method != http.MethodGet || token == "" {
		return t.next.RoundTrip(req)
	}

	tagged := req.Clone(req.Context())
	tagged.Header.Set(credentialHeader, credentialDigest(token))
	if secs := int64(t.maxStale / time.Second); secs > 0 && tagged.Header.Get("Cache-Control") == "" {
		tagged.Header.Set("Cache-Control", "max-stale="+strconv.FormatInt(secs, 10))
	}
	return t.next.RoundTrip(tagged)
}

// storePolicy sits between the cache and the network. Only 200 responses may
// be stored, and each is bound to the credential digest of the request that
// fetched it. 304s pass through so revalidation keeps the stored entry.
type storePolicy struct {
	next http.RoundTripper
}

func (t *storePolicy) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(credentialHeader) != "" {
		req = req.Clone(req.Context())
		req.Header.Del(credentialHeader)
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case http.StatusOK:
		resp.Header.Add("Vary", credentialHeader)
	case http.StatusNotModified:
		// The cache merges this into the stored entry.
	default:
		resp.Header.Set("Cache-Control", "no-store")
	}
	return resp, nil
}

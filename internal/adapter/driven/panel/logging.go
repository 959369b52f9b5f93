package panel

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
)

// loggingTransport logs each panel round trip with method, path, status and
// duration. Transport errors are logged at warn level.
type loggingTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.logger.Warn("panel round trip failed",
			"method", req.Method,
			"path", req.URL.Path,
			"duration", time.Since(start).Round(time.Microsecond),
			"error", err,
		)
		return nil, err
	}

	t.logger.Debug("panel round trip",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"cached", resp.Header.Get(httpcache.XFromCache) != "",
		"duration", time.Since(start).Round(time.Microsecond),
	)
	return resp, nil
}

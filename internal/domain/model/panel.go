package model

// Profile is a proxy user's public profile together with the Shadowsocks
// connection URLs the panel generates for it. A URL is empty when the
// matching port is disabled on the panel.
type Profile struct {
	User      User   `json:"user"`
	SsReverse string `json:"ss_reverse"`
	SsRelay   string `json:"ss_relay"`
	SsDirect  string `json:"ss_direct"`
}

// User is a proxy user as listed by the panel. Timestamps are Unix
// milliseconds; zero means "never".
type User struct {
	ID           int     `json:"id"`
	Identity     string  `json:"identity"`
	Name         string  `json:"name"`
	Quota        float64 `json:"quota"`
	Usage        float64 `json:"usage"`
	UsageBytes   int64   `json:"usage_bytes"`
	UsageResetAt int64   `json:"usage_reset_at"`
	Enabled      bool    `json:"enabled"`
	CreatedAt    int64   `json:"created_at"`
}

// Stats is the panel-wide traffic counter set returned by
// GET /v1/settings/stats. Traffic counters are bytes; UpdatedAt is the Unix
// millisecond time the counters were last zeroed.
type Stats struct {
	UpdatedAt  int64 `json:"updated_at"`
	Inbound    int64 `json:"inbound"`
	Outbound   int64 `json:"outbound"`
	Freedom    int64 `json:"freedom"`
	UsersCount int   `json:"users_count"`
}

package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/pomobot/core/telegram/netutil"
)

// HTTPOptions tunes the Telegram API client. Zero fields take defaults.
type HTTPOptions struct {
	// LongPoll is the getUpdates timeout; response deadlines are stretched
	// past it so a quiet poll is not mistaken for a stalled server.
	LongPoll     time.Duration
	DialTimeout  time.Duration
	RetryCount   int
	RetryBackoff time.Duration
}

func (o HTTPOptions) withDefaults() HTTPOptions {
	if o.LongPoll <= 0 {
		o.LongPoll = 10 * time.Second
	}
	if o.DialTimeout <= 0 {
		o.DialTimeout = 5 * time.Second
	}
	if o.RetryCount <= 0 {
		o.RetryCount = 3
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	return o
}

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls.
func BuildHTTPClient(opts HTTPOptions) *http.Client {
	opts = opts.withDefaults()
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: opts.DialTimeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   opts.DialTimeout,
		ResponseHeaderTimeout: opts.LongPoll + 5*time.Second,
		ExpectContinueTimeout: time.Second,
	}
	return &http.Client{
		Timeout: opts.LongPoll + 15*time.Second,
		Transport: &retryTransport{
			base:    transport,
			retries: opts.RetryCount,
			backoff: opts.RetryBackoff,
		},
	}
}

// retryTransport replays requests that failed before a response arrived.
// Requests whose body cannot be rewound are sent once.
type retryTransport struct {
	base    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	replayable := req.Body == nil || req.Body == http.NoBody || req.GetBody != nil

	resp, err := base.RoundTrip(req)
	for attempt := 1; err != nil && replayable && attempt <= t.retries && netutil.ShouldRetry(err); attempt++ {
		if !sleepCtx(req, t.backoff*time.Duration(attempt)) {
			return nil, req.Context().Err()
		}
		next := req.Clone(req.Context())
		if req.GetBody != nil {
			body, berr := req.GetBody()
			if berr != nil {
				return nil, berr
			}
			next.Body = body
		}
		resp, err = base.RoundTrip(next)
	}
	return resp, err
}

func sleepCtx(req *http.Request, d time.Duration) bool {
	if d <= 0 {
		return req.Context().Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-req.Context().Done():
		return false
	case <-timer.C:
		return true
	}
}

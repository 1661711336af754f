package netutils

import (
	"crypto/tls"
	"net/http"
	"time"
)

// NewProbeClient returns an http.Client for health checks: it never follows
// redirects, skips certificate verification and does not reuse connections.
func NewProbeClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig:   &tls.Config{InsecureSkipVerify: true},
			DisableKeepAlives: true,
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

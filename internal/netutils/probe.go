package netutils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultProbeTimeout = 5 * time.Second

// HTTPProber checks whether something answers HTTP at an address.
type HTTPProber struct {
	Client *http.Client
}

func NewHTTPProber() *HTTPProber {
	return &HTTPProber{Client: NewProbeClient(DefaultProbeTimeout)}
}

// Probe issues GET http://<addr>/. Any response, whatever its status, means
// the service is up. A failure to connect or to read a response means it is
// not up yet and is reported as (false, nil); only a done ctx or an unusable
// address is an error.
func (p *HTTPProber) Probe(ctx context.Context, addr string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://%s/", addr), nil)
	if err != nil {
		return false, fmt.Errorf("building probe request: %w", err)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, nil
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
	return true, nil
}

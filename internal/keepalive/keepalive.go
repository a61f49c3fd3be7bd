// Package keepalive pings the service's own public URL so free-tier
// hosts do not put the process to sleep between updates.
package keepalive

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const DefaultInterval = 5 * time.Minute

// Pinger periodically issues a GET against URL.
type Pinger struct {
	URL      string
	Interval time.Duration
	client   *retryablehttp.Client
}

func New(url string) *Pinger {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.Logger = nil
	return &Pinger{
		URL:      url,
		Interval: DefaultInterval,
		client:   client,
	}
}

// Run pings until the context is cancelled. Failures are logged and the
// next tick tries again.
func (p *Pinger) Run(ctx context.Context) {
	if p.URL == "" {
		return
	}
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ping(ctx)
		}
	}
}

func (p *Pinger) ping(ctx context.Context) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		log.Printf("ERROR: Keepalive request build failed: %v", err)
		return
	}
	resp, err := p.client.Do(req)
	if err != nil {
		log.Printf("ERROR: Keepalive ping failed: %v", err)
		return
	}
	resp.Body.Close()
}

package pike13

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"
	"golang.org/x/net/http2"
)

// NewTransport returns the base outbound transport: a clone of the default
// transport with HTTP/2 ping health checks on idle connections.
func NewTransport() (*http.Transport, error) {
	t := http.DefaultTransport.(*http.Transport).Clone()

	h2, err := http2.ConfigureTransports(t)
	if err != nil {
		return nil, fmt.Errorf("configuring http2 transport: %w", err)
	}
	h2.ReadIdleTimeout = 30 * time.Second
	h2.PingTimeout = 15 * time.Second

	return t, nil
}

// NewCachedTransport wraps base with an in-memory ETag/Last-Modified cache.
// Responses served from cache carry the X-From-Cache header. Cache entries are
// keyed by URL only, so every stored response is marked no-cache: a cached body
// is only reused after the remote answers 304 to a request carrying the
// caller's own bearer token.
func NewCachedTransport(base http.RoundTripper) http.RoundTripper {
	t := httpcache.NewMemoryCacheTransport()
	t.Transport = revalidateTransport{next: base}
	return t
}

// revalidateTransport strips freshness lifetimes from remote responses.
type revalidateTransport struct {
	next http.RoundTripper
}

func (t revalidateTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	resp.Header.Set("Cache-Control", "no-cache")
	resp.Header.Del("Expires")
	return resp, nil
}

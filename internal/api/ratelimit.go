package api

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// clientLimiter keeps a token bucket per client address for the public
// analyze endpoint. Inference is the expensive path; everything else is
// cheap CRUD and left unthrottled.
type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	rate    rate.Limit
	burst   int
}

func newClientLimiter(r float64, burst int) *clientLimiter {
	if r <= 0 {
		r = 1
	}
	if burst <= 0 {
		burst = 5
	}
	return &clientLimiter{
		clients: make(map[string]*rate.Limiter),
		rate:    rate.Limit(r),
		burst:   burst,
	}
}

// Allow reports whether the client may proceed.
func (l *clientLimiter) Allow(clientKey string) bool {
	l.mu.Lock()
	limiter, ok := l.clients[clientKey]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.clients[clientKey] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}

// clientKey identifies a client by remote IP, preferring X-Forwarded-For
// when running behind a proxy.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

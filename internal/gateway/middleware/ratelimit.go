package middleware

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"supportdesk/internal/llm"
	"supportdesk/internal/metrics"
)

// ClientLimiter throttles each remote address with its own token bucket.
// Buckets live in a bounded LRU; evicted buckets are stopped.
// X-Forwarded-For is only consulted when the peer is a trusted proxy.
type ClientLimiter struct {
	rps     float64
	burst   int
	trusted []netip.Prefix
	clients *lru.Cache[string, *llm.TokenBucket]
}

// NewClientLimiter builds a limiter. trustedProxies holds IPs or CIDRs of
// reverse proxies whose X-Forwarded-For header is believed.
func NewClientLimiter(rps float64, burst, size int, trustedProxies []string) (*ClientLimiter, error) {
	if size <= 0 {
		size = 1024
	}
	trusted, err := parsePrefixes(trustedProxies)
	if err != nil {
		return nil, err
	}
	cache, err := lru.NewWithEvict[string, *llm.TokenBucket](size, func(_ string, b *llm.TokenBucket) {
		b.Stop()
	})
	if err != nil {
		return nil, err
	}
	return &ClientLimiter{rps: rps, burst: burst, trusted: trusted, clients: cache}, nil
}

// Allow reports whether client may make a request now.
func (l *ClientLimiter) Allow(client string) bool {
	if l == nil || l.rps <= 0 {
		return true
	}
	b, ok := l.clients.Get(client)
	if !ok {
		fresh := llm.NewTokenBucket(l.rps, l.burst)
		if prev, found, _ := l.clients.PeekOrAdd(client, fresh); found {
			fresh.Stop()
			b = prev
		} else {
			b = fresh
		}
	}
	return b.Allow()
}

// Close stops every bucket.
func (l *ClientLimiter) Close() {
	if l == nil {
		return
	}
	l.clients.Purge()
}

// Middleware rejects over-limit clients with 429.
func (l *ClientLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(l.clientKey(r)) {
			metrics.ClientThrottledTotal.Inc()
			w.Header().Set("Retry-After", "1")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientKey is the peer address, or for a trusted peer the right-most
// X-Forwarded-For hop that is not itself a trusted proxy.
func (l *ClientLimiter) clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if !l.isTrusted(host) {
		return host
	}
	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !l.isTrusted(hop) {
			return hop
		}
	}
	return host
}

func (l *ClientLimiter) isTrusted(addr string) bool {
	if len(l.trusted) == 0 {
		return false
	}
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return false
	}
	ip = ip.Unmap()
	for _, p := range l.trusted {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}

func parsePrefixes(values []string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.Contains(v, "/") {
			p, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", v, err)
			}
			out = append(out, p.Masked())
			continue
		}
		ip, err := netip.ParseAddr(v)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", v, err)
		}
		ip = ip.Unmap()
		out = append(out, netip.PrefixFrom(ip, ip.BitLen()))
	}
	return out, nil
}

package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

type window struct {
	hits    int
	resetAt time.Time
}

// RateLimit caps how many requests a single client IP may make per window.
// Generation requests are expensive upstream, so the cap is enforced before
// any upload is read.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	var mu sync.Mutex
	windows := make(map[string]*window)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			now := time.Now()

			mu.Lock()
			win, ok := windows[ip]
			if !ok || now.After(win.resetAt) {
				win = &window{resetAt: now.Add(per)}
				windows[ip] = win
			}
			if win.hits >= limit {
				mu.Unlock()
				w.Header().Set("Retry-After", win.resetAt.UTC().Format(http.TimeFormat))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			win.hits++
			mu.Unlock()

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			candidate := strings.TrimSpace(part)
			if candidate != "" && net.ParseIP(candidate) != nil {
				return candidate
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return r.RemoteAddr
}

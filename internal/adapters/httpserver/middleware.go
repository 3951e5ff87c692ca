package httpserver

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Middleware func(http.Handler) http.Handler

// Chain wraps h with the given middlewares; the first argument ends up
// outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("took", time.Since(start)).
			Msg("http")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("panic recovered")
				writeError(w, http.StatusInternalServerError, "Възникна вътрешна грешка")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CounterStore counts hits per key inside the current window. Implementations
// may be process-local; the limiter is advisory, not a correctness guarantee.
type CounterStore interface {
	Increment(key string) int
}

// MemoryCounters is the in-process CounterStore. Entries expire after ttl via
// a periodic sweep, so an idle server does not accumulate one counter per IP
// it has ever seen.
type MemoryCounters struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*counterEntry
}

type counterEntry struct {
	count int
	seen  time.Time
}

func NewMemoryCounters(ttl time.Duration) *MemoryCounters {
	return &MemoryCounters{ttl: ttl, entries: map[string]*counterEntry{}}
}

func (m *MemoryCounters) Increment(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	now := time.Now()
	if !ok || now.Sub(e.seen) > m.ttl {
		e = &counterEntry{}
		m.entries[key] = e
	}
	e.count++
	e.seen = now
	return e.count
}

// Sweep drops expired counters. Called by StartSweeper; exported separately so
// tests can drive it directly.
func (m *MemoryCounters) Sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for k, e := range m.entries {
		if now.Sub(e.seen) > m.ttl {
			delete(m.entries, k)
		}
	}
}

// StartSweeper runs Sweep on the given interval until stop is closed. A missed
// sweep only delays eviction, it never corrupts counts.
func (m *MemoryCounters) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				m.Sweep()
			case <-stop:
				return
			}
		}
	}()
}

// RateLimit rejects clients exceeding maxPerWindow requests per counter
// window, keyed by client IP.
func RateLimit(counters CounterStore, maxPerWindow int) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if counters.Increment(clientIP(r)) > maxPerWindow {
				writeError(w, http.StatusTooManyRequests, "Твърде много заявки, опитайте по-късно")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PublicRateLimit applies stricter per-path limits on abuse-prone endpoints,
// on top of the global limiter.
func PublicRateLimit(counters CounterStore, limits map[string]int) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if max, ok := limits[r.URL.Path]; ok {
				if counters.Increment(r.URL.Path+"|"+clientIP(r)) > max {
					writeError(w, http.StatusTooManyRequests, "Твърде много заявки, опитайте по-късно")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

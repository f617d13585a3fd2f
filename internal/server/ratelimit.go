package server

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/time/rate"
)

const visitorTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitorLimiter keeps one token bucket per client address. Idle entries are
// pruned on access.
type visitorLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
}

func newVisitorLimiter(r rate.Limit, burst int) *visitorLimiter {
	if burst < 1 {
		burst = 1
	}
	return &visitorLimiter{
		visitors: make(map[string]*visitor),
		limit:    r,
		burst:    burst,
	}
}

func (v *visitorLimiter) get(ip string, now time.Time) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()

	if now.Sub(v.lastSweep) > visitorTTL {
		for k, vis := range v.visitors {
			if now.Sub(vis.lastSeen) > visitorTTL {
				delete(v.visitors, k)
			}
		}
		v.lastSweep = now
	}

	vis, ok := v.visitors[ip]
	if !ok {
		vis = &visitor{limiter: rate.NewLimiter(v.limit, v.burst)}
		v.visitors[ip] = vis
	}
	vis.lastSeen = now
	return vis.limiter
}

func (v *visitorLimiter) size() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.visitors)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// limit enforces the per-client rate on a route.
func (s *Server) limit(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if !s.visitors.get(clientIP(r), s.now()).Allow() {
			writeError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next(w, r, ps)
	}
}

package middleware

import (
	"net/http"
	"qota/pkg/logger"
	"sync"
	"time"
)

type MemberExtractor func(r *http.Request) string

// MemberRateLimiter is a sliding-window limiter keyed by the authenticated
// member id. Requests without an identity pass through; the auth middleware
// rejects those on its own.
type MemberRateLimiter struct {
	mu              sync.RWMutex
	requests        map[string][]time.Time
	limit           int
	window          time.Duration
	memberExtractor MemberExtractor
	log             *logger.Logger
	stopCh          chan struct{}
}

func NewMemberRateLimiter(limit int, window time.Duration, extractor MemberExtractor, log *logger.Logger) *MemberRateLimiter {
	limiter := &MemberRateLimiter{
		requests:        make(map[string][]time.Time),
		limit:           limit,
		window:          window,
		memberExtractor: extractor,
		log:             log,
		stopCh:          make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *MemberRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for member, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, member)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *MemberRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *MemberRateLimiter) Allow(memberID string) bool {
	if memberID == "" {
		return true
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := make([]time.Time, 0, len(rl.requests[memberID]))
	for _, ts := range rl.requests[memberID] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[memberID] = valid
		return false
	}

	rl.requests[memberID] = append(valid, now)
	return true
}

func MemberRateLimit(limiter *MemberRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			memberID := extractMemberID(r, limiter.memberExtractor)

			if memberID == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(memberID) {
				rejectRateLimited(w, limiter.log, r, memberID)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractMemberID(r *http.Request, extractor MemberExtractor) string {
	if extractor == nil {
		return DefaultMemberExtractor(r)
	}
	return extractor(r)
}

func rejectRateLimited(w http.ResponseWriter, log *logger.Logger, r *http.Request, memberID string) {
	log.Warn("Rate limit exceeded",
		"request_id", requestIDFromContext(r.Context()),
		"member_id", memberID,
		"path", r.URL.Path,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"Rate limit exceeded"}`))
}

func DefaultMemberExtractor(r *http.Request) string {
	if member, ok := MemberFromContext(r.Context()); ok {
		return member.ID
	}
	return r.Header.Get(HeaderMemberID)
}

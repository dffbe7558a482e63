package api

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
)

// RateLimit rejects requests from an IP once it has used up its allowance.
// It expects middleware.RealIP to run first.
func RateLimit(ipLimiter *limiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			lctx, err := ipLimiter.Get(r.Context(), ip)
			if err != nil {
				logrus.WithError(err).WithField("ip", ip).Error("Failed to get rate limit context")
				writeJSONError(w, http.StatusInternalServerError, "Internal server error during rate limit check")
				return
			}

			if lctx.Reached {
				logrus.WithFields(logrus.Fields{"ip": ip, "limit": lctx.Limit}).Warn("Rate limit exceeded")
				writeJSONError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

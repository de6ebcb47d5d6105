package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := RateLimit(ctx, 1, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:1000"))
	assert.Equal(t, http.StatusNoContent, do("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1002"))

	// Another client has its own bucket.
	assert.Equal(t, http.StatusNoContent, do("10.0.0.2:1000"))
}

func TestIPRateLimiter_Sweep(t *testing.T) {
	rl := newIPRateLimiter(1, 1)
	rl.getLimiter("10.0.0.1")
	rl.visitors["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)
	rl.getLimiter("10.0.0.2")

	rl.sweep(visitorTTL)

	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

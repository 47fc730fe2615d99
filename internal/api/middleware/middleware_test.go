package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RepairSlotService/internal/config"
	"github.com/m04kA/SMC-RepairSlotService/pkg/logger"
	"github.com/m04kA/SMC-RepairSlotService/pkg/metrics"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestAuth_RequiresUserID(t *testing.T) {
	h := Auth(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderUserID, "customer-1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIdentity_PutsUserIntoContext(t *testing.T) {
	var (
		gotID         string
		gotOK         bool
		gotPrivileged bool
	)
	h := Identity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = GetUserID(r.Context())
		gotPrivileged = IsPrivileged(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderUserID, " shop-7 ")
	req.Header.Set(HeaderUserRole, "Admin")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, gotOK)
	assert.Equal(t, "shop-7", gotID)
	assert.True(t, gotPrivileged)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, gotOK)
	assert.False(t, gotPrivileged)
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry("test", reg)

	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m, "test"))
	r.HandleFunc("/slots/{slotId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slots/2024-06-01_10:00", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues("test", http.MethodGet, "/slots/{slotId}", "404")))
}

func TestBuildRateKey(t *testing.T) {
	tests := []struct {
		name     string
		strategy string
		want     string
	}{
		{name: "ip", strategy: "ip", want: "rl:ip:10.0.0.1"},
		{name: "user", strategy: "user", want: "rl:user:customer-1"},
		{name: "ip and user", strategy: "ip_user", want: "rl:ip:10.0.0.1:user:customer-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/repair-jobs", nil)
			req.RemoteAddr = "10.0.0.1:51234"
			req = req.WithContext(WithIdentity(req.Context(), "customer-1", false))

			cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: tt.strategy}
			assert.Equal(t, tt.want, buildRateKey(cfg, nil, req))
		})
	}
}

func TestClientIP(t *testing.T) {
	trusted, err := config.RateLimitConfig{TrustedProxies: []string{"172.16.0.0/12", "192.168.0.5"}}.TrustedNets()
	require.NoError(t, err)

	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		realIP     string
		trusted    []*net.IPNet
		want       string
	}{
		{name: "no proxies configured", remoteAddr: "203.0.113.7:4000", forwarded: "10.0.0.1", realIP: "10.0.0.2", want: "203.0.113.7"},
		{name: "untrusted peer", remoteAddr: "203.0.113.7:4000", forwarded: "10.0.0.1", trusted: trusted, want: "203.0.113.7"},
		{name: "trusted peer", remoteAddr: "172.16.0.3:4000", forwarded: "198.51.100.9", trusted: trusted, want: "198.51.100.9"},
		{name: "rightmost untrusted hop", remoteAddr: "172.16.0.3:4000", forwarded: "1.2.3.4, 198.51.100.9, 192.168.0.5", trusted: trusted, want: "198.51.100.9"},
		{name: "all hops trusted", remoteAddr: "172.16.0.3:4000", forwarded: "172.20.0.1, 192.168.0.5", trusted: trusted, want: "172.20.0.1"},
		{name: "real ip from trusted peer", remoteAddr: "192.168.0.5:4000", realIP: "198.51.100.10", trusted: trusted, want: "198.51.100.10"},
		{name: "trusted peer without headers", remoteAddr: "192.168.0.5:4000", trusted: trusted, want: "192.168.0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/repair-jobs", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, clientIP(req, tt.trusted))
		})
	}
}

// Подмена X-Forwarded-For напрямую от клиента не дает нового бакета
func TestRateLimit_ForwardedForRotationSharesBucket(t *testing.T) {
	rdb := &keyRecorder{}
	h := RateLimit(rateLimitConfig(), rdb, logger.Nop{})(http.HandlerFunc(okHandler))

	for _, fwd := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3, 10.0.0.4"} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		req.Header.Set("X-Forwarded-For", fwd)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	require.Len(t, rdb.keys, 3)
	for _, key := range rdb.keys {
		assert.Equal(t, "rl:ip:203.0.113.7", key)
	}
}

// keyRecorder запоминает ключи бакетов и всегда разрешает запрос
type keyRecorder struct {
	redis.Scripter
	keys []string
}

func (k *keyRecorder) EvalSha(ctx context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	k.keys = append(k.keys, keys...)
	return redis.NewCmdResult([]interface{}{int64(1), int64(2), int64(0)}, nil)
}

func (k *keyRecorder) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	return k.EvalSha(ctx, script, keys, args...)
}

// fakeScripter отдает заранее заданный результат скрипта
type fakeScripter struct {
	redis.Scripter
	result interface{}
	err    error
	calls  int
}

func (f *fakeScripter) EvalSha(ctx context.Context, _ string, _ []string, _ ...interface{}) *redis.Cmd {
	f.calls++
	return redis.NewCmdResult(f.result, f.err)
}

func (f *fakeScripter) Eval(ctx context.Context, _ string, _ []string, _ ...interface{}) *redis.Cmd {
	f.calls++
	return redis.NewCmdResult(f.result, f.err)
}

func rateLimitConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:           true,
		Capacity:          3,
		RefillTokens:      1,
		RefillIntervalSec: 6,
		TTLSec:            60,
		KeyStrategy:       "ip",
		Prefix:            "rl",
	}
}

func TestRateLimit_Allows(t *testing.T) {
	rdb := &fakeScripter{result: []interface{}{int64(1), int64(2), int64(0)}}
	h := RateLimit(rateLimitConfig(), rdb, logger.Nop{})(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimit_Blocks(t *testing.T) {
	rdb := &fakeScripter{result: []interface{}{int64(0), int64(0), int64(2500)}}
	h := RateLimit(rateLimitConfig(), rdb, logger.Nop{})(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3", rec.Header().Get("Retry-After"))
}

func TestRateLimit_FailsOpenOnRedisError(t *testing.T) {
	rdb := &fakeScripter{err: errors.New("dial tcp: connection refused")}
	h := RateLimit(rateLimitConfig(), rdb, logger.Nop{})(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Positive(t, rdb.calls)
}

func TestRateLimit_DisabledPassesThrough(t *testing.T) {
	rdb := &fakeScripter{}
	cfg := rateLimitConfig()
	cfg.Enabled = false
	h := RateLimit(cfg, rdb, logger.Nop{})(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rdb.calls)
}

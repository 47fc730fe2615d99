package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-RepairSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-RepairSlotService/internal/config"
)

const msgTooManyRequests = "слишком много запросов, повторите позже"

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// tokenBucketScript атомарно пополняет и списывает токен.
// Возвращает {allowed, tokens, retry_after_ms}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// RateLimit token bucket в redis на создание заявок.
// Ошибка redis не блокирует запрос: лимитер пропускает его и пишет warning.
func RateLimit(cfg config.RateLimitConfig, rdb redis.Scripter, logger Logger) func(http.Handler) http.Handler {
	if !cfg.Enabled || rdb == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	// конфигурация уже провалидирована, ошибка здесь означает пустой список
	trusted, err := cfg.TrustedNets()
	if err != nil {
		logger.Warn("RateLimit: ignoring trusted proxies: %v", err)
		trusted = nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := buildRateKey(cfg, trusted, r)

			args := []interface{}{
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval().Milliseconds(),
				int64(cfg.TTL() / time.Second),
			}

			vals, err := tokenBucketScript.Run(r.Context(), rdb, []string{key}, args...).Result()
			if err != nil {
				logger.Warn("RateLimit: redis error for key=%s: %v", key, err)
				next.ServeHTTP(w, r)
				return
			}

			arr, ok := vals.([]interface{})
			if !ok || len(arr) != 3 {
				logger.Warn("RateLimit: unexpected script result for key=%s: %#v", key, vals)
				next.ServeHTTP(w, r)
				return
			}

			allowed := asInt64(arr[0]) == 1
			remaining := asInt64(arr[1])
			retryMs := asInt64(arr[2])

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if !allowed {
				secs := int(math.Ceil(float64(retryMs) / 1000.0))
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				logger.Info("RateLimit: blocked key=%s retry=%dms", key, retryMs)
				handlers.RespondError(w, http.StatusTooManyRequests, msgTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	n, _ := strconv.ParseInt(fmt.Sprint(v), 10, 64)
	return n
}

func buildRateKey(cfg config.RateLimitConfig, trusted []*net.IPNet, r *http.Request) string {
	parts := []string{cfg.Prefix}

	ip := clientIP(r, trusted)
	uid, ok := GetUserID(r.Context())
	if !ok {
		uid = "anon"
	}

	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", uid)
	default:
		parts = append(parts, "ip", ip, "user", uid)
	}
	return strings.Join(parts, ":")
}

// clientIP адрес соединения. X-Forwarded-For и X-Real-IP читаются, только если соединение пришло от доверенного прокси:
// тогда берется самый правый адрес цепочки, не принадлежащий доверенным прокси.
func clientIP(r *http.Request, trusted []*net.IPNet) string {
	remote := remoteHost(r)
	if !isTrustedProxy(remote, trusted) {
		return remote
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		hops := strings.Split(fwd, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop != "" && !isTrustedProxy(hop, trusted) {
				return hop
			}
		}
		// вся цепочка из доверенных прокси
		if first := strings.TrimSpace(hops[0]); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return remote
}

func remoteHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func isTrustedProxy(addr string, trusted []*net.IPNet) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

package limiter

import "github.com/redis/go-redis/v9"

// Sliding window check run atomically in Redis. Entries older than the window
// are dropped, the remainder counted, and the new request recorded only while
// the count is below the limit. Returns 0 when allowed and 1 when blocked.
var slidingWindowScript = redis.NewScript(`
    local key = KEYS[1]
    local now = tonumber(ARGV[1])
    local window = tonumber(ARGV[2])
    local limit = tonumber(ARGV[3])

    redis.call("ZREMRANGEBYSCORE", key, 0, now - window)

    if redis.call("ZCARD", key) >= limit then
        return 1
    end

    redis.call("ZADD", key, now, ARGV[4])
    redis.call("PEXPIRE", key, window)
    return 0
`)

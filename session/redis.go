package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// A version-2 payload ends with three big-endian int64s (CreatedAt,
// ExpiresAt, LastActivity), so the script can restamp the last two without
// parsing the variable-length front of the record. Version 1 has no
// LastActivity; only its trailing ExpiresAt is restamped. The version byte is
// checked first so a layout the script does not know is never rewritten
// blindly. The CAS is against key existence: a session removed or expired
// between GET and SET can never be revived.
const refreshScript = `
local function be64(n)
  local b = {}
  for i = 8, 1, -1 do
    b[i] = string.char(n % 256)
    n = math.floor(n / 256)
  end
  return table.concat(b)
end

local data = redis.call("GET", KEYS[1])
if not data then
  return false
end

local ttl_ms = tonumber(ARGV[1])
local now = tonumber(ARGV[2])
local expires = now + math.floor(ttl_ms / 1000)

local version = string.byte(data, 1)
local updated
if version == 2 then
  updated = string.sub(data, 1, #data - 16) .. be64(expires) .. be64(now)
elseif version == 1 then
  updated = string.sub(data, 1, #data - 8) .. be64(expires)
else
  return redis.error_reply("unknown session version")
end

redis.call("SET", KEYS[1], updated, "PX", ttl_ms)
return updated
`

var refreshLua = redis.NewScript(refreshScript)

// RedisRegistry is the Redis-backed [Registry] implementation for
// deployments that share sessions across processes. Expiry is enforced by
// Redis key TTLs; an index set tracks live tokens for Active and Len.
type RedisRegistry struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisRegistry creates a [RedisRegistry] on the given client. prefix
// namespaces all keys; the empty string selects "gv".
func NewRedisRegistry(client redis.UniversalClient, prefix string) *RedisRegistry {
	if prefix == "" {
		prefix = "gv"
	}
	return &RedisRegistry{redis: client, prefix: prefix}
}

func (r *RedisRegistry) key(token string) string {
	return r.prefix + ":s:" + token
}

func (r *RedisRegistry) indexKey() string {
	return r.prefix + ":index"
}

// Put describes the put operation and its observable behavior.
func (r *RedisRegistry) Put(ctx context.Context, s *Session, ttl time.Duration) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}

	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(s.Token), data, ttl)
		pipe.SAdd(ctx, r.indexKey(), s.Token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get describes the get operation and its observable behavior.
func (r *RedisRegistry) Get(ctx context.Context, token string) (*Session, error) {
	data, err := r.redis.Get(ctx, r.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.redis.SRem(ctx, r.indexKey(), token)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	s, err := Decode(data)
	if err != nil {
		return nil, err
	}
	s.Token = token
	return s, nil
}

// Refresh describes the refresh operation and its observable behavior.
func (r *RedisRegistry) Refresh(ctx context.Context, token string, ttl time.Duration) (*Session, error) {
	result, err := refreshLua.Run(
		ctx,
		r.redis,
		[]string{r.key(token)},
		ttl.Milliseconds(),
		time.Now().Unix(),
	).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.redis.SRem(ctx, r.indexKey(), token)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var blob []byte
	switch v := result.(type) {
	case string:
		blob = []byte(v)
	case []byte:
		blob = v
	default:
		return nil, fmt.Errorf("%w: invalid refresh script response", ErrRedisUnavailable)
	}

	s, err := Decode(blob)
	if err != nil {
		return nil, err
	}
	s.Token = token
	return s, nil
}

// Remove describes the remove operation and its observable behavior.
func (r *RedisRegistry) Remove(ctx context.Context, token string) error {
	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key(token))
		pipe.SRem(ctx, r.indexKey(), token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Active describes the active operation and its observable behavior.
func (r *RedisRegistry) Active(ctx context.Context) ([]*Session, error) {
	tokens, err := r.redis.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*Session{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(tokens) == 0 {
		return []*Session{}, nil
	}

	pipe := r.redis.Pipeline()
	cmds := make([]*redis.StringCmd, len(tokens))
	for i, token := range tokens {
		cmds[i] = pipe.Get(ctx, r.key(token))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var stale []interface{}
	sessions := make([]*Session, 0, len(tokens))
	for i, cmd := range cmds {
		data, cmdErr := cmd.Bytes()
		if cmdErr != nil {
			if errors.Is(cmdErr, redis.Nil) {
				stale = append(stale, tokens[i])
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, cmdErr)
		}

		s, decErr := Decode(data)
		if decErr != nil {
			return nil, decErr
		}
		s.Token = tokens[i]
		sessions = append(sessions, s)
	}

	if len(stale) > 0 {
		r.redis.SRem(ctx, r.indexKey(), stale...)
	}
	return sessions, nil
}

// Len describes the len operation and its observable behavior.
func (r *RedisRegistry) Len(ctx context.Context) (int, error) {
	count, err := r.redis.SCard(ctx, r.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return int(count), nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (r *RedisRegistry) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

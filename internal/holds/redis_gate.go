package holds

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"boxoffice/internal/inventory"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Gate is the cross-instance fast path for seat claims. Marks expire on their
// own via Redis TTL, so a crashed instance cannot wedge a seat; Postgres row
// locks remain the source of truth and the gate only cuts down on doomed
// transactions.
type Gate interface {
	// TryMark marks every seat for holdID, or marks none and returns the
	// seats already marked by someone else.
	TryMark(ctx context.Context, concertID uuid.UUID, refs []inventory.SeatRef, holdID uuid.UUID, ttl time.Duration) ([]inventory.SeatRef, error)

	// Clear removes marks owned by holdID. Marks owned by another hold are
	// left alone.
	Clear(ctx context.Context, concertID uuid.UUID, refs []inventory.SeatRef, holdID uuid.UUID) error
}

// RedisGate implements Gate on a Redis client using Lua scripts
type RedisGate struct {
	redis *redis.Client
}

func NewRedisGate(redisClient *redis.Client) *RedisGate {
	return &RedisGate{redis: redisClient}
}

// Lua script for atomic seat marking - all seats or none
const luaGateMark = `
-- KEYS[1..N] = seat mark keys
-- ARGV[1] = hold_id
-- ARGV[2] = ttl_seconds

local hold_id = ARGV[1]
local ttl = tonumber(ARGV[2])

-- First pass: any key marked by a different hold blocks the whole claim
local taken = {}
for i = 1, #KEYS do
    local owner = redis.call("GET", KEYS[i])
    if owner and owner ~= hold_id then
        taken[#taken + 1] = KEYS[i]
    end
end

if #taken > 0 then
    return taken
end

-- Second pass: mark everything for this hold
for i = 1, #KEYS do
    redis.call("SET", KEYS[i], hold_id, "EX", ttl)
end

return {}
`

// Lua script for releasing marks owned by a hold
const luaGateClear = `
-- KEYS[1..N] = seat mark keys
-- ARGV[1] = hold_id

local hold_id = ARGV[1]
local cleared = 0

for i = 1, #KEYS do
    if redis.call("GET", KEYS[i]) == hold_id then
        redis.call("DEL", KEYS[i])
        cleared = cleared + 1
    end
end

return cleared
`

func (g *RedisGate) TryMark(ctx context.Context, concertID uuid.UUID, refs []inventory.SeatRef, holdID uuid.UUID, ttl time.Duration) ([]inventory.SeatRef, error) {
	if g.redis == nil {
		return nil, fmt.Errorf("redis client not available")
	}

	keys := markKeys(concertID, refs)
	args := []interface{}{holdID.String(), strconv.Itoa(int(ttl.Seconds()))}

	result, err := g.redis.EvalSha(ctx, luaGateMark, keys, args...).Result()
	if err != nil {
		// If script is not loaded, try to load and execute
		result, err = g.redis.Eval(ctx, luaGateMark, keys, args...).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to execute gate mark: %w", err)
		}
	}

	takenKeys, ok := result.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected result format from Lua script")
	}
	if len(takenKeys) == 0 {
		return nil, nil
	}

	// Map contended keys back onto the requested refs by position in the key
	// list. Key order matches ref order.
	keyIndex := make(map[string]int, len(keys))
	for i, key := range keys {
		keyIndex[key] = i
	}
	var taken []inventory.SeatRef
	for _, raw := range takenKeys {
		key, ok := raw.(string)
		if !ok {
			continue
		}
		if i, found := keyIndex[key]; found {
			taken = append(taken, refs[i])
		}
	}
	return taken, nil
}

func (g *RedisGate) Clear(ctx context.Context, concertID uuid.UUID, refs []inventory.SeatRef, holdID uuid.UUID) error {
	if g.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	keys := markKeys(concertID, refs)
	_, err := g.redis.EvalSha(ctx, luaGateClear, keys, holdID.String()).Result()
	if err != nil {
		_, err = g.redis.Eval(ctx, luaGateClear, keys, holdID.String()).Result()
		if err != nil {
			return fmt.Errorf("failed to execute gate clear: %w", err)
		}
	}
	return nil
}

// PreloadScripts loads Lua scripts into Redis for better performance
func (g *RedisGate) PreloadScripts(ctx context.Context) error {
	if g.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	if _, err := g.redis.ScriptLoad(ctx, luaGateMark).Result(); err != nil {
		return fmt.Errorf("failed to load gate mark script: %w", err)
	}
	if _, err := g.redis.ScriptLoad(ctx, luaGateClear).Result(); err != nil {
		return fmt.Errorf("failed to load gate clear script: %w", err)
	}
	return nil
}

func markKeys(concertID uuid.UUID, refs []inventory.SeatRef) []string {
	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		keys = append(keys, fmt.Sprintf("seat_hold:%s:%s", concertID, ref))
	}
	return keys
}

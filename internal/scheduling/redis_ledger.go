package scheduling

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	slotKeyPrefix = "ledger:slot:"
	dayKeyPrefix  = "ledger:day:"

	// Keys live well past the scan horizon, then expire.
	slotTTLSeconds = 45 * 24 * 60 * 60
)

// reserveScript increments the slot count only while it is under capacity,
// so the check and the increment are one atomic Redis call. Returns 1 on
// success, 0 on conflict.
var reserveScript = redis.NewScript(`
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
if count >= tonumber(ARGV[1]) then
  return 0
end
redis.call('INCR', KEYS[1])
redis.call('EXPIRE', KEYS[1], ARGV[2])
redis.call('INCR', KEYS[2])
redis.call('EXPIRE', KEYS[2], ARGV[2])
return 1
`)

// releaseScript decrements slot and day counts without going below zero.
var releaseScript = redis.NewScript(`
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
if count <= 0 then
  return 0
end
redis.call('DECR', KEYS[1])
local day = tonumber(redis.call('GET', KEYS[2]) or '0')
if day > 0 then
  redis.call('DECR', KEYS[2])
end
return 1
`)

// redisLedger shares slot occupancy across processes.
type redisLedger struct {
	client *redis.Client
}

// NewRedisLedger creates a ledger backed by the shared redis instance.
func NewRedisLedger(client *redis.Client) Ledger {
	return &redisLedger{client: client}
}

func (l *redisLedger) Available(ctx context.Context, slot Slot, capacity int) (bool, error) {
	val, err := l.client.Get(ctx, slotKeyPrefix+slot.Key()).Result()
	if err == redis.Nil {
		return capacity > 0, nil
	}
	if err != nil {
		return false, err
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return false, err
	}
	return count < capacity, nil
}

func (l *redisLedger) Reserve(ctx context.Context, slot Slot, capacity int) (bool, error) {
	keys := []string{slotKeyPrefix + slot.Key(), dayKeyPrefix + dayKey(slot)}
	res, err := reserveScript.Run(ctx, l.client, keys, capacity, slotTTLSeconds).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (l *redisLedger) Release(ctx context.Context, slot Slot) error {
	keys := []string{slotKeyPrefix + slot.Key(), dayKeyPrefix + dayKey(slot)}
	return releaseScript.Run(ctx, l.client, keys).Err()
}

func (l *redisLedger) DayUsage(ctx context.Context, serviceID, date string) (int, error) {
	val, err := l.client.Get(ctx, dayKeyPrefix+serviceID+":"+date).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(val)
}

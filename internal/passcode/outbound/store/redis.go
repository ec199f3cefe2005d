package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/passcode/internal/passcode/entity"
	"github.com/shandysiswandi/passcode/internal/pkg/goerror"
	"github.com/shandysiswandi/passcode/internal/pkg/instrument"
)

const (
	redisKeyPrefix   = "passcode:"
	redisExpiryIndex = redisKeyPrefix + "expiry"

	defaultRedisLockTTL = 10 * time.Second
	defaultRedisGrace   = time.Hour
)

var errRedisLockBusy = errors.New("redis lock busy")

var redisReleaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisOptions struct {
	// LockTTL bounds how long a crashed holder keeps an identifier locked.
	LockTTL time.Duration
	// LockWait bounds how long Lock retries before giving up with ErrLockTimeout.
	LockWait time.Duration
	// Grace is how long a record lingers after expiry if no sweep runs.
	Grace time.Duration
}

// Redis stores records as JSON values with an expiry index in a sorted set.
type Redis struct {
	client   redis.UniversalClient
	ins      instrument.Instrumentation
	lockTTL  time.Duration
	lockWait time.Duration
	grace    time.Duration
}

func NewRedis(client redis.UniversalClient, ins instrument.Instrumentation, opts RedisOptions) *Redis {
	r := &Redis{
		client:   client,
		ins:      ins,
		lockTTL:  opts.LockTTL,
		lockWait: opts.LockWait,
		grace:    opts.Grace,
	}
	if r.lockTTL <= 0 {
		r.lockTTL = defaultRedisLockTTL
	}
	if r.lockWait <= 0 {
		r.lockWait = defaultLockWait
	}
	if r.grace <= 0 {
		r.grace = defaultRedisGrace
	}
	return r
}

func recordKey(identifier string) string { return redisKeyPrefix + "record:" + identifier }

func lockKey(identifier string) string { return redisKeyPrefix + "lock:" + identifier }

func (r *Redis) Lock(ctx context.Context, identifier string) (_ func(), err error) {
	ctx, span := startSpan(ctx, r.ins, "Redis.Lock")
	defer func() { endSpan(span, err) }()

	key := lockKey(identifier)
	token := uuid.NewString()

	b := retry.NewExponential(5 * time.Millisecond)
	b = retry.WithJitterPercent(20, b)
	b = retry.WithCappedDuration(100*time.Millisecond, b)
	b = retry.WithMaxDuration(r.lockWait, b)

	err = retry.Do(ctx, b, func(ctx context.Context) error {
		ok, err := r.client.SetNX(ctx, key, token, r.lockTTL).Result()
		if err != nil {
			return err
		}
		if !ok {
			return retry.RetryableError(errRedisLockBusy)
		}
		return nil
	})
	if errors.Is(err, errRedisLockBusy) {
		return nil, fmt.Errorf("%w: %s", goerror.ErrLockTimeout, identifier)
	}
	if err != nil {
		return nil, fmt.Errorf("redis lock %s: %w", identifier, err)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = redisReleaseLock.Run(context.WithoutCancel(ctx), r.client, []string{key}, token).Err()
		})
	}, nil
}

func (r *Redis) Put(ctx context.Context, rec entity.Record) (err error) {
	ctx, span := startSpan(ctx, r.ins, "Redis.Put")
	defer func() { endSpan(span, err) }()

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	key := recordKey(rec.Identifier)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, 0)
		pipe.PExpireAt(ctx, key, rec.ExpiresAt.Add(r.grace))
		pipe.ZAdd(ctx, redisExpiryIndex, redis.Z{
			Score:  float64(rec.ExpiresAt.UnixMilli()),
			Member: rec.Identifier,
		})
		return nil
	})
	return err
}

func (r *Redis) Get(ctx context.Context, identifier string) (_ *entity.Record, err error) {
	ctx, span := startSpan(ctx, r.ins, "Redis.Get")
	defer func() { endSpan(span, err) }()

	data, err := r.client.Get(ctx, recordKey(identifier)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec entity.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode passcode record %s: %w", identifier, err)
	}

	return &rec, nil
}

func (r *Redis) Delete(ctx context.Context, identifier string) (err error) {
	ctx, span := startSpan(ctx, r.ins, "Redis.Delete")
	defer func() { endSpan(span, err) }()

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, recordKey(identifier))
		pipe.ZRem(ctx, redisExpiryIndex, identifier)
		return nil
	})
	return err
}

func (r *Redis) Sweep(ctx context.Context, now time.Time) (n int, err error) {
	ctx, span := startSpan(ctx, r.ins, "Redis.Sweep")
	defer func() { endSpan(span, err) }()

	ids, err := r.client.ZRangeByScore(ctx, redisExpiryIndex, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		evicted, err := r.sweepOne(ctx, id, now)
		if err != nil {
			return n, err
		}
		if evicted {
			n++
		}
	}

	return n, nil
}

func (r *Redis) sweepOne(ctx context.Context, identifier string, now time.Time) (bool, error) {
	unlock, err := r.Lock(ctx, identifier)
	if err != nil {
		return false, err
	}
	defer unlock()

	rec, err := r.Get(ctx, identifier)
	if errors.Is(err, goerror.ErrNotFound) {
		return false, r.client.ZRem(ctx, redisExpiryIndex, identifier).Err()
	}
	if err != nil {
		return false, err
	}

	if !rec.ExpiresAt.Before(now) {
		return false, nil
	}

	return true, r.Delete(ctx, identifier)
}

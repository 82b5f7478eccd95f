package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"spanish_learning_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrLeaseLost is returned by Extend once the lock key expired or was taken over.
var ErrLeaseLost = errors.New("lesson lock lease lost")

// LessonLock serializes population of a single lesson across requests and processes.
type LessonLock interface {
	// Acquire returns the held lease, or ok=false when another holder owns the lock.
	Acquire(ctx context.Context, lessonID uint) (lease LessonLease, ok bool, err error)
}

// LessonLease is a held lesson lock. Holders call Extend between units of work
// so the lock outlives calls that take longer than one TTL.
type LessonLease interface {
	Extend(ctx context.Context) error
	Release()
}

type noopLessonLock struct{}

func (noopLessonLock) Acquire(context.Context, uint) (LessonLease, bool, error) {
	return noopLease{}, true, nil
}

type noopLease struct{}

func (noopLease) Extend(context.Context) error { return nil }
func (noopLease) Release()                     {}

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript resets the expiry only when the key still holds our token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

type RedisLessonLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLessonLock(client *redis.Client, ttl time.Duration) *RedisLessonLock {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisLessonLock{client: client, ttl: ttl}
}

func lessonLockKey(lessonID uint) string {
	return fmt.Sprintf("lesson:populate:%d", lessonID)
}

func (l *RedisLessonLock) Acquire(ctx context.Context, lessonID uint) (LessonLease, bool, error) {
	key := lessonLockKey(lessonID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return &redisLease{client: l.client, key: key, token: token, ttl: l.ttl}, true, nil
}

type redisLease struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

func (l *redisLease) Extend(ctx context.Context) error {
	n, err := extendScript.Run(ctx, l.client, []string{l.key}, l.token, l.ttl.Milliseconds()).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLeaseLost
	}
	return nil
}

func (l *redisLease) Release() {
	// The caller's context may already be done; release regardless.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err(); err != nil {
		logger.Log.Warn("Failed to release lesson lock", zap.String("key", l.key), zap.Error(err))
	}
}

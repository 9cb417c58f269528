package redis_lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrLockTimeout 在等待时间内未能获取锁
var ErrLockTimeout = errors.New("获取锁超时")

// 重试间隔
const retryInterval = 50 * time.Millisecond

// 持有者令牌写入key，过期时间以毫秒计
var acquireScript = redis.NewScript(
	`if redis.call('EXISTS', KEYS[1]) == 1 then
		return 0
	end
	redis.call('SET', KEYS[1], ARGV[1], 'PX', tonumber(ARGV[2]))
	return 1`,
)

// 只有令牌匹配时才删除，避免释放他人的锁
var releaseScript = redis.NewScript(
	`if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0`,
)

// RedisLock 基于Redis的互斥锁，多个服务实例共享
type RedisLock struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	maxWait   time.Duration
	logger    logrus.FieldLogger
}

// NewRedisLock 创建基于Redis的互斥锁
func NewRedisLock(client *redis.Client, keyPrefix string, ttl, maxWait time.Duration, logger logrus.FieldLogger) *RedisLock {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RedisLock{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		maxWait:   maxWait,
		logger:    logger,
	}
}

// TryAcquire 尝试获取一次锁，成功时返回持有者令牌
func (l *RedisLock) TryAcquire(ctx context.Context, key string) (string, bool, error) {
	token := uuid.NewString()
	result, err := acquireScript.Run(ctx, l.client, []string{l.keyPrefix + key}, token, l.ttl.Milliseconds()).Int()
	if err != nil {
		return "", false, fmt.Errorf("执行Lua脚本失败: %w", err)
	}
	return token, result == 1, nil
}

// Lock 获取锁，最多等待maxWait，返回释放函数
func (l *RedisLock) Lock(ctx context.Context, key string) (func(), error) {
	deadline := time.Now().Add(l.maxWait)
	for {
		token, ok, err := l.TryAcquire(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			l.logger.WithField("key", key).Debug("获取锁成功")
			return func() { l.Release(context.Background(), key, token) }, nil
		}
		if time.Now().After(deadline) {
			l.logger.WithField("key", key).Warn("等待锁超时")
			return nil, ErrLockTimeout
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}

// Release 释放锁，令牌不匹配(锁已过期被他人获取)时不做任何操作
func (l *RedisLock) Release(ctx context.Context, key, token string) {
	n, err := releaseScript.Run(ctx, l.client, []string{l.keyPrefix + key}, token).Int()
	if err != nil {
		l.logger.WithError(err).WithField("key", key).Error("释放锁失败")
		return
	}
	if n == 0 {
		l.logger.WithField("key", key).Warn("锁已过期，未释放")
	}
}

// IsLocked 检查key当前是否被持有
func (l *RedisLock) IsLocked(ctx context.Context, key string) (bool, error) {
	n, err := l.client.Exists(ctx, l.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("查询锁状态失败: %w", err)
	}
	return n > 0, nil
}

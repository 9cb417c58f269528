package service

import (
	"context"
	"fmt"
	"sync"
)

// OwnerLocker 串行化同一用户的写操作
type OwnerLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// LocalLocker 进程内的用户锁，单实例部署时使用
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLocalLocker 创建进程内用户锁
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]chan struct{})}
}

// Lock 获取key对应的锁，ctx取消时放弃等待
func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-slot }) }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func ownerKey(ownerID uint) string {
	return fmt.Sprintf("owner:%d", ownerID)
}

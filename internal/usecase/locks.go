package usecase

import "sync"

// chatLocks serializes handling per chat id so a merchant's read-modify-write
// against their own session never interleaves. Different chats never block
// each other.
type chatLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newChatLocks() *chatLocks {
	return &chatLocks{locks: map[int64]*sync.Mutex{}}
}

func (c *chatLocks) lock(chatID int64) func() {
	c.mu.Lock()
	l, ok := c.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[chatID] = l
	}
	c.mu.Unlock()
	l.Lock()
	return l.Unlock
}

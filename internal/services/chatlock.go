package services

import (
  "sync"
  "github.com/google/uuid"
)

// chatLocks serializes the append-message critical section per chat.
// Without it, two concurrent sends to the same chat can interleave their
// user/assistant pairs and break conversation ordering.
type chatLocks struct {
  mu    sync.Mutex
  locks map[uuid.UUID]*chatLockEntry
}

type chatLockEntry struct {
  mu   sync.Mutex
  refs int
}

func newChatLocks() *chatLocks {
  return &chatLocks{locks: make(map[uuid.UUID]*chatLockEntry)}
}

func (cl *chatLocks) Lock(chatID uuid.UUID) {
  cl.mu.Lock()
  entry, ok := cl.locks[chatID]
  if !ok {
    entry = &chatLockEntry{}
    cl.locks[chatID] = entry
  }
  entry.refs++
  cl.mu.Unlock()
  entry.mu.Lock()
}

func (cl *chatLocks) entryCount() int {
  cl.mu.Lock()
  defer cl.mu.Unlock()
  return len(cl.locks)
}

func (cl *chatLocks) Unlock(chatID uuid.UUID) {
  cl.mu.Lock()
  entry, ok := cl.locks[chatID]
  if ok {
    entry.refs--
    if entry.refs == 0 {
      delete(cl.locks, chatID)
    }
  }
  cl.mu.Unlock()
  if ok {
    entry.mu.Unlock()
  }
}

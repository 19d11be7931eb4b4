package guard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type hold struct {
	token   string
	expires time.Time
}

// Local is an in-process guard. Holds expire after ttl so a crashed holder
// cannot block a key forever; ttl 0 means holds never expire.
type Local struct {
	mu    sync.Mutex
	ttl   time.Duration
	held  map[string]hold
	nowFn func() time.Time
}

func NewLocal(ttl time.Duration) *Local {
	return &Local{
		ttl:   ttl,
		held:  make(map[string]hold),
		nowFn: time.Now,
	}
}

func (l *Local) Acquire(_ context.Context, key string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	if h, ok := l.held[key]; ok && l.live(h, now) {
		return "", false, nil
	}

	h := hold{token: uuid.NewString()}
	if l.ttl > 0 {
		h.expires = now.Add(l.ttl)
	}
	l.held[key] = h
	return h.token, true, nil
}

func (l *Local) Release(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if h, ok := l.held[key]; ok && h.token == token {
		delete(l.held, key)
	}
	return nil
}

// Held reports whether key is currently held.
func (l *Local) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, ok := l.held[key]
	return ok && l.live(h, l.nowFn())
}

func (l *Local) live(h hold, now time.Time) bool {
	return h.expires.IsZero() || now.Before(h.expires)
}

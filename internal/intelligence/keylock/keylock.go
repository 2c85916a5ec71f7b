// Package keylock serializes read-modify-write cycles on a single
// (learner, topic) key. Different keys never block each other except for
// stripe collisions in the local locker.
package keylock

import (
	"context"
	"hash/fnv"
)

type Locker interface {
	// Lock blocks until the key is held or ctx is done. The returned func
	// releases the key and is safe to call more than once.
	Lock(ctx context.Context, key string) (unlock func(), err error)
	Mode() string
}

// Key joins the parts of a lock key.
func Key(parts ...string) string {
	n := 0
	for _, p := range parts {
		n += len(p) + 1
	}
	b := make([]byte, 0, n)
	for i, p := range parts {
		if i > 0 {
			b = append(b, '|')
		}
		b = append(b, p...)
	}
	return string(b)
}

const defaultStripes = 256

type localLocker struct {
	stripes []chan struct{}
}

// NewLocal returns an in-process striped locker.
func NewLocal(stripes int) Locker {
	if stripes <= 0 {
		stripes = defaultStripes
	}
	l := &localLocker{stripes: make([]chan struct{}, stripes)}
	for i := range l.stripes {
		l.stripes[i] = make(chan struct{}, 1)
	}
	return l
}

func (l *localLocker) Mode() string { return "local" }

func (l *localLocker) Lock(ctx context.Context, key string) (func(), error) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	ch := l.stripes[h.Sum32()%uint32(len(l.stripes))]

	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return func() {}, ctx.Err()
	}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		<-ch
	}, nil
}

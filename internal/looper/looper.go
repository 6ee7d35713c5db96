// Package looper provides a single-goroutine serial executor, the owning
// context that terminal reports are marshalled onto.
package looper

import (
	"sync"
)

// Looper runs posted functions one at a time, in post order, on one goroutine.
type Looper struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	quit    chan struct{}
	done    chan struct{}
	closed  bool
	onPanic func(any)
}

// New starts a Looper. onPanic, when non-nil, receives values recovered from posted functions.
func New(onPanic func(any)) *Looper {
	l := &Looper{
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		onPanic: onPanic,
	}
	go l.loop()
	return l
}

// Post enqueues fn. It never blocks and is safe to call from within a posted function.
// It reports false once the looper is closed.
func (l *Looper) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Close stops accepting work. Functions already queued still run.
func (l *Looper) Close() {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.quit)
	}
	l.mu.Unlock()
}

// Wait blocks until the loop has exited after Close.
func (l *Looper) Wait() {
	<-l.done
}

func (l *Looper) loop() {
	defer close(l.done)
	for {
		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			l.run(fn)
		}
		select {
		case <-l.wake:
		case <-l.quit:
			for {
				fn, ok := l.next()
				if !ok {
					return
				}
				l.run(fn)
			}
		}
	}
}

func (l *Looper) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Looper) run(fn func()) {
	defer func() {
		if r := recover(); r != nil && l.onPanic != nil {
			l.onPanic(r)
		}
	}()
	fn()
}

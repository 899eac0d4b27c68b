// Package sched provides cancellable delayed and periodic tasks for code
// that must run every callback on a single event loop.
//
// Two schedulers are provided. Queue keeps virtual time and only fires when
// advanced, which makes it suitable for tests and for frontends that already
// have a tick. Loop uses real timers and hands fired callbacks to a post
// function so they run on the owner's goroutine.
package sched

import (
	"sort"
	"sync"
	"time"
)

// Task is a handle to a scheduled callback.
type Task interface {
	// Stop cancels the task. It reports whether the call prevented a
	// pending run; stopping an already stopped or fired one-shot task
	// returns false.
	Stop() bool
}

// Scheduler schedules callbacks to run later on the owner's event loop.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
	Every(d time.Duration, f func()) Task
}

// Queue is a deterministic Scheduler driven by Advance. It is not safe for
// concurrent use.
type Queue struct {
	now   time.Duration
	seq   uint64
	tasks []*queued
}

type queued struct {
	q       *Queue
	at      time.Duration
	every   time.Duration
	seq     uint64
	f       func()
	stopped bool
}

func (t *queued) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	return t.q.remove(t)
}

// NewQueue returns an empty queue at virtual time zero.
func NewQueue() *Queue {
	return &Queue{}
}

// Now returns the elapsed virtual time.
func (q *Queue) Now() time.Duration { return q.now }

// Pending returns the number of scheduled tasks.
func (q *Queue) Pending() int { return len(q.tasks) }

// AfterFunc schedules f to run once, d after the current virtual time.
func (q *Queue) AfterFunc(d time.Duration, f func()) Task {
	return q.push(d, 0, f)
}

// Every schedules f to run every d. A non-positive interval is treated as
// one millisecond so Advance always terminates.
func (q *Queue) Every(d time.Duration, f func()) Task {
	if d <= 0 {
		d = time.Millisecond
	}
	return q.push(d, d, f)
}

func (q *Queue) push(d, every time.Duration, f func()) *queued {
	if d < 0 {
		d = 0
	}
	q.seq++
	t := &queued{q: q, at: q.now + d, every: every, seq: q.seq, f: f}
	q.tasks = append(q.tasks, t)
	return t
}

func (q *Queue) remove(t *queued) bool {
	for i, c := range q.tasks {
		if c == t {
			q.tasks = append(q.tasks[:i], q.tasks[i+1:]...)
			return true
		}
	}
	return false
}

// Advance moves virtual time forward by d, running every task that falls
// due in order of deadline, ties broken by scheduling order. Callbacks may
// schedule or stop other tasks.
func (q *Queue) Advance(d time.Duration) {
	end := q.now + d
	for {
		next := q.next(end)
		if next == nil {
			break
		}
		q.now = next.at
		if next.every > 0 {
			next.at += next.every
			q.seq++
			next.seq = q.seq
		} else {
			q.remove(next)
			next.stopped = true
		}
		next.f()
	}
	q.now = end
}

func (q *Queue) next(end time.Duration) *queued {
	if len(q.tasks) == 0 {
		return nil
	}
	sort.SliceStable(q.tasks, func(i, j int) bool {
		if q.tasks[i].at != q.tasks[j].at {
			return q.tasks[i].at < q.tasks[j].at
		}
		return q.tasks[i].seq < q.tasks[j].seq
	})
	if q.tasks[0].at > end {
		return nil
	}
	return q.tasks[0]
}

// Loop is a real-time Scheduler. Fired callbacks are passed to post, which
// is expected to enqueue them on the goroutine that owns the scheduled
// state. A task stopped before its posted callback runs is skipped.
type Loop struct {
	post func(func())
}

// NewLoop returns a Loop that delivers callbacks through post.
func NewLoop(post func(func())) *Loop {
	return &Loop{post: post}
}

type timerTask struct {
	mu      sync.Mutex
	timer   *time.Timer
	ticker  *time.Ticker
	done    chan struct{}
	stopped bool
}

func (t *timerTask) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	if t.ticker != nil {
		t.ticker.Stop()
		close(t.done)
		return true
	}
	t.timer.Stop()
	return true
}

func (t *timerTask) live() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped
}

// AfterFunc posts f after d.
func (l *Loop) AfterFunc(d time.Duration, f func()) Task {
	t := &timerTask{}
	t.mu.Lock()
	t.timer = time.AfterFunc(d, func() {
		l.post(func() {
			t.mu.Lock()
			if t.stopped {
				t.mu.Unlock()
				return
			}
			t.stopped = true
			t.mu.Unlock()
			f()
		})
	})
	t.mu.Unlock()
	return t
}

// Every posts f every d until stopped.
func (l *Loop) Every(d time.Duration, f func()) Task {
	if d <= 0 {
		d = time.Millisecond
	}
	t := &timerTask{ticker: time.NewTicker(d), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.done:
				return
			case <-t.ticker.C:
				l.post(func() {
					if t.live() {
						f()
					}
				})
			}
		}
	}()
	return t
}

// Package sched runs periodic background tasks from a single goroutine.
//
// It stands in for a HAL timer process: tasks are plain callbacks invoked
// repeatedly at roughly their period. Tasks never run concurrently with each
// other and a slow task delays the rest, so callbacks must be short and must
// not block on contended resources.
package sched

import (
	"container/heap"
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"rgbled-go/x/mathx"
	"rgbled-go/x/timex"
)

// Config tunes the scheduler. All fields are optional.
type Config struct {
	// Tick is the period used by RegisterPeriodic. Default 1 ms.
	Tick time.Duration
	// MinPeriod clamps requested periods from below. Default 100 µs.
	MinPeriod time.Duration
	Logger    *slog.Logger
}

type task struct {
	name   string
	fn     func()
	due    int64
	every  time.Duration
	jitter time.Duration
	runs   uint64
	index  int
}

type taskHeap []*task

func (h taskHeap) Len() int           { return len(h) }
func (h taskHeap) Less(i, j int) bool { return h[i].due < h[j].due }
func (h taskHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *taskHeap) Push(x any)        { it := x.(*task); it.index = len(*h); *h = append(*h, it) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	it.index = -1
	*h = old[:n-1]
	return it
}
func (h taskHeap) Top() *task {
	if len(h) == 0 {
		return nil
	}
	return h[0]
}

type Scheduler struct {
	cfg   Config
	log   *slog.Logger
	mu    sync.Mutex
	wake  chan struct{}
	tasks map[string]*task
	h     taskHeap
	rand  *rand.Rand
}

func New(cfg Config) *Scheduler {
	if cfg.Tick <= 0 {
		cfg.Tick = time.Millisecond
	}
	if cfg.MinPeriod <= 0 {
		cfg.MinPeriod = 100 * time.Microsecond
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{
		cfg:   cfg,
		log:   cfg.Logger,
		wake:  make(chan struct{}, 1),
		tasks: make(map[string]*task),
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RegisterPeriodic runs fn every Tick until Stop(name).
// Registering an existing name replaces its callback.
func (s *Scheduler) RegisterPeriodic(name string, fn func()) {
	s.Upsert(name, fn, s.cfg.Tick, 0)
}

// Upsert adds or updates a task.
// The first run occurs after every plus a random jitter in [0..jitter].
// Jitter is also applied on each subsequent re-arm.
func (s *Scheduler) Upsert(name string, fn func(), every, jitter time.Duration) {
	if fn == nil || name == "" {
		return
	}
	every = mathx.Max(every, s.cfg.MinPeriod)
	jitter = mathx.Max(jitter, 0)

	s.mu.Lock()
	nextDue := time.Now().Add(s.jittered(every, jitter)).UnixNano()
	if t := s.tasks[name]; t == nil {
		t2 := &task{
			name:   name,
			fn:     fn,
			due:    nextDue,
			every:  every,
			jitter: jitter,
			index:  -1,
		}
		s.tasks[name] = t2
		heap.Push(&s.h, t2)
	} else {
		t.fn = fn
		t.every = every
		t.jitter = jitter
		t.due = nextDue
		heap.Fix(&s.h, t.index)
	}
	s.mu.Unlock()
	s.wakeup()
	s.log.Debug("task scheduled", "task", name, "every", every)
}

func (s *Scheduler) Stop(name string) {
	s.mu.Lock()
	if t := s.tasks[name]; t != nil {
		heap.Remove(&s.h, t.index)
		delete(s.tasks, name)
	}
	s.mu.Unlock()
	s.wakeup()
}

// Runs reports how many times the named task has run.
func (s *Scheduler) Runs(name string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.tasks[name]; t != nil {
		return t.runs
	}
	return 0
}

// Run executes due tasks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		wait := s.nextWait()
		if wait < 0 {
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
				continue
			}
		}
		if wait == 0 {
			if ctx.Err() != nil {
				return
			}
			var fn func()

			s.mu.Lock()
			now := time.Now()
			top := s.h.Top()
			if top != nil && top.due <= now.UnixNano() {
				fn = top.fn
				top.due = now.Add(s.jittered(top.every, top.jitter)).UnixNano()
				top.runs++
				heap.Fix(&s.h, top.index)
			}
			s.mu.Unlock()

			if fn != nil {
				fn()
			}
			continue
		}

		timex.ResetTimer(timer, time.Duration(wait))
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		case <-timer.C:
		}
	}
}

func (s *Scheduler) nextWait() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	top := s.h.Top()
	if top == nil {
		return -1
	}
	now := time.Now().UnixNano()
	if top.due <= now {
		return 0
	}
	return top.due - now
}

func (s *Scheduler) wakeup() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) jittered(every, jitter time.Duration) time.Duration {
	if jitter <= 0 {
		return every
	}
	extra := time.Duration(s.rand.Int63n(int64(jitter) + 1)) // [0..jitter]
	return every + extra
}

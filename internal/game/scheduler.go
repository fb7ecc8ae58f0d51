package game

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Scheduler runs delayed tasks keyed by id. Scheduling an id that is
// already pending replaces the earlier task.
type Scheduler interface {
	Schedule(id string, after time.Duration, h Handler)
	Cancel(id string) bool
	Pending(id string) bool
}

// LoopScheduler fires tasks on real timers and hands them to the loop, so
// a task never runs concurrently with a handler.
type LoopScheduler struct {
	loop *Loop

	mu     sync.Mutex
	gen    uint64
	timers map[string]scheduled
}

type scheduled struct {
	timer *time.Timer
	gen   uint64
}

func NewLoopScheduler(loop *Loop) *LoopScheduler {
	return &LoopScheduler{
		loop:   loop,
		timers: map[string]scheduled{},
	}
}

func (s *LoopScheduler) Schedule(id string, after time.Duration, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.timers[id]; ok {
		prev.timer.Stop()
	}

	s.gen++
	gen := s.gen
	s.timers[id] = scheduled{
		gen: gen,
		timer: time.AfterFunc(after, func() {
			err := s.loop.Submit(func(ctx context.Context) {
				if !s.claim(id, gen) {
					return
				}
				h(ctx)
			})
			if err != nil {
				slog.Warn("dropping scheduled task", "id", id, "error", err)
			}
		}),
	}
}

// claim removes the entry for id if it still belongs to generation gen.
func (s *LoopScheduler) claim(id string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.timers[id]
	if !ok || cur.gen != gen {
		return false
	}
	delete(s.timers, id)
	return true
}

func (s *LoopScheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.timers[id]
	if !ok {
		return false
	}
	cur.timer.Stop()
	delete(s.timers, id)
	return true
}

func (s *LoopScheduler) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.timers[id]
	return ok
}

// ManualScheduler is a virtual clock. Tasks run only when Advance moves
// time past their due instant. It also serves as the world Clock.
type ManualScheduler struct {
	start   time.Time
	elapsed time.Duration
	seq     uint64
	tasks   map[string]*manualTask
}

type manualTask struct {
	due time.Duration
	seq uint64
	h   Handler
}

func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{
		start: start,
		tasks: map[string]*manualTask{},
	}
}

func (s *ManualScheduler) Now() time.Time {
	return s.start.Add(s.elapsed)
}

func (s *ManualScheduler) Schedule(id string, after time.Duration, h Handler) {
	s.seq++
	s.tasks[id] = &manualTask{due: s.elapsed + after, seq: s.seq, h: h}
}

func (s *ManualScheduler) Cancel(id string) bool {
	_, ok := s.tasks[id]
	delete(s.tasks, id)
	return ok
}

func (s *ManualScheduler) Pending(id string) bool {
	_, ok := s.tasks[id]
	return ok
}

// Advance moves the clock forward by d, running due tasks in due order.
func (s *ManualScheduler) Advance(ctx context.Context, d time.Duration) {
	target := s.elapsed + d
	for {
		id, t := s.next(target)
		if t == nil {
			break
		}
		delete(s.tasks, id)
		s.elapsed = t.due
		t.h(ctx)
	}
	s.elapsed = target
}

func (s *ManualScheduler) next(limit time.Duration) (string, *manualTask) {
	ids := make([]string, 0, len(s.tasks))
	for id, t := range s.tasks {
		if t.due <= limit {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return "", nil
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.tasks[ids[i]], s.tasks[ids[j]]
		if a.due != b.due {
			return a.due < b.due
		}
		return a.seq < b.seq
	})
	return ids[0], s.tasks[ids[0]]
}

// Package scheduler arms the per-game deadlines: the forced card play and
// the forced stack choice. Timers are keyed by game id and class, so arming
// a deadline always replaces the previous one of the same class.
package scheduler

import (
	"container/heap"
	"sync"
	"time"
)

// Class is a deadline class. Each game has at most one live timer per class.
type Class int

const (
	// ClassChooseCard fires when players ran out of time to play a card.
	ClassChooseCard Class = iota
	// ClassChooseStack fires when a forced stack choice went unanswered.
	ClassChooseStack
)

func (c Class) String() string {
	switch c {
	case ClassChooseCard:
		return "choose_card"
	case ClassChooseStack:
		return "choose_stack"
	default:
		return "unknown"
	}
}

type deadlineKey struct {
	gameID string
	class  Class
}

type task struct {
	id       int64
	key      deadlineKey
	execute  time.Time
	callback func()
	index    int
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].execute.Before(q[j].execute)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	n := len(*q)
	t := x.(*task)
	t.index = n
	*q = append(*q, t)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	t := old[n-1]
	t.index = -1
	*q = old[0 : n-1]
	return t
}

// Scheduler owns the deadline queue. Cancellation is best-effort: a timer
// already handed to its callback cannot be recalled, the game's phase and
// version guards reconcile that race.
type Scheduler struct {
	queue      taskQueue
	armed      map[deadlineKey]int64
	mutex      sync.Mutex
	nextID     int64
	trigger    chan *task
	resolution time.Duration
	closeChan  chan struct{}
	closeOnce  sync.Once
}

// New creates a scheduler and starts its pump goroutine.
func New() *Scheduler {
	return newWithResolution(100 * time.Millisecond)
}

func newWithResolution(resolution time.Duration) *Scheduler {
	s := &Scheduler{
		queue:      make(taskQueue, 0),
		armed:      make(map[deadlineKey]int64),
		nextID:     1,
		trigger:    make(chan *task, 64),
		resolution: resolution,
		closeChan:  make(chan struct{}),
	}
	heap.Init(&s.queue)
	go s.process()
	return s
}

// Arm schedules callback after delay for the given game and class. Any
// previously armed deadline of the same class for that game is canceled
// first.
func (s *Scheduler) Arm(gameID string, class Class, delay time.Duration, callback func()) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := deadlineKey{gameID: gameID, class: class}
	s.removeLocked(key)

	t := &task{
		id:       s.nextID,
		key:      key,
		execute:  time.Now().Add(delay),
		callback: callback,
	}
	s.nextID++

	heap.Push(&s.queue, t)
	s.armed[key] = t.id
}

// Cancel drops the armed deadline of the given class, if any.
func (s *Scheduler) Cancel(gameID string, class Class) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.removeLocked(deadlineKey{gameID: gameID, class: class})
}

// CancelAll drops every armed deadline for the game.
func (s *Scheduler) CancelAll(gameID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.removeLocked(deadlineKey{gameID: gameID, class: ClassChooseCard})
	s.removeLocked(deadlineKey{gameID: gameID, class: ClassChooseStack})
}

// Stop shuts down the pump goroutine. Armed timers are discarded.
func (s *Scheduler) Stop() {
	s.closeOnce.Do(func() {
		close(s.closeChan)
	})
}

func (s *Scheduler) removeLocked(key deadlineKey) {
	id, exists := s.armed[key]
	if !exists {
		return
	}
	delete(s.armed, key)
	for i, t := range s.queue {
		if t.id == id {
			heap.Remove(&s.queue, i)
			return
		}
	}
}

func (s *Scheduler) process() {
	ticker := time.NewTicker(s.resolution)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mutex.Lock()
			now := time.Now()
			for s.queue.Len() > 0 {
				t := s.queue[0]
				if t.execute.After(now) {
					break
				}
				heap.Pop(&s.queue)
				if s.armed[t.key] == t.id {
					delete(s.armed, t.key)
					s.trigger <- t
				}
			}
			s.mutex.Unlock()

		case t := <-s.trigger:
			go t.callback()

		case <-s.closeChan:
			return
		}
	}
}

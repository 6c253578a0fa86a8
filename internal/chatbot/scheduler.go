package chatbot

import "time"

// Scheduler runs fn once after d. The returned stop function cancels the
// task and reports whether it was still pending.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (stop func() bool)
}

// TimerScheduler schedules with time.AfterFunc.
type TimerScheduler struct{}

// Schedule implements Scheduler.
func (TimerScheduler) Schedule(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

// taskSet ties scheduled tasks to one generation of a conversation. Bumping
// the generation invalidates every task scheduled before it, including a
// task whose timer already fired and is waiting for the conversation lock.
type taskSet struct {
	generation uint64
	nextID     uint64
	stops      map[uint64]func() bool
}

func (t *taskSet) reserve() uint64 {
	t.nextID++
	return t.nextID
}

func (t *taskSet) track(id uint64, stop func() bool) {
	if t.stops == nil {
		t.stops = make(map[uint64]func() bool)
	}
	t.stops[id] = stop
}

func (t *taskSet) done(id uint64) {
	delete(t.stops, id)
}

func (t *taskSet) pending() int {
	return len(t.stops)
}

// cancelAll stops every pending task and starts a new generation.
func (t *taskSet) cancelAll() {
	for id, stop := range t.stops {
		stop()
		delete(t.stops, id)
	}
	t.generation++
}

package engine

import (
	"fmt"
	"sync"
)

// DispatchEngine is the default Engine: it drains events one at a time, in
// TTI order, up to (and including) a caller-given TTI boundary. It is the
// generalization of the teacher's SerialEngine.Run loop: instead of running
// until no events remain (appropriate for an offline simulation), it stops
// as soon as nothing due by "now" is left, because the control loop invokes
// it once per real TTI and must return within the TTI budget.
type DispatchEngine struct {
	HookableBase

	timeMu sync.RWMutex
	time   TTI

	queue          EventQueue
	secondaryQueue EventQueue

	runMu sync.Mutex

	drainEndHandlers []DrainEndHandler
}

// NewDispatchEngine creates a DispatchEngine with empty primary/secondary
// queues.
func NewDispatchEngine() *DispatchEngine {
	e := new(DispatchEngine)
	e.queue = NewEventQueue()
	e.secondaryQueue = NewEventQueue()
	return e
}

// Schedule registers evt to run at its Time(). Scheduling an event strictly
// before the engine's current TTI is a programming error (the teacher
// treats the continuous-time equivalent as fatal too), so it panics rather
// than silently reordering history.
func (e *DispatchEngine) Schedule(evt Event) {
	now := e.readNow()
	if evt.Time().Before(now) {
		panic(fmt.Sprintf("scheduling event at %s before current time %s", evt.Time(), now))
	}

	if evt.IsSecondary() {
		e.secondaryQueue.Push(evt)
		return
	}
	e.queue.Push(evt)
}

func (e *DispatchEngine) readNow() TTI {
	e.timeMu.RLock()
	defer e.timeMu.RUnlock()
	return e.time
}

func (e *DispatchEngine) writeNow(t TTI) {
	e.timeMu.Lock()
	e.time = t
	e.timeMu.Unlock()
}

// RunUpTo drains every event due by tti, in TTI order, then returns. It
// never blocks waiting for future events: an empty queue or a queue whose
// head is scheduled after tti both end the call immediately.
func (e *DispatchEngine) RunUpTo(tti TTI) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	for {
		evt, ok := e.nextDueEvent(tti)
		if !ok {
			break
		}

		e.writeNow(evt.Time())

		hookCtx := HookCtx{Domain: e, Pos: HookPosBeforeEvent, Item: evt}
		e.InvokeHook(hookCtx)

		// A single RNTI's handler error must never abort draining the
		// rest of the queue (spec.md §7): log via hook, keep going.
		err := evt.Handler().Handle(evt)

		hookCtx.Pos = HookPosAfterEvent
		hookCtx.Detail = err
		e.InvokeHook(hookCtx)
	}

	e.writeNow(tti)
	for _, h := range e.drainEndHandlers {
		h.Handle(tti)
	}
	return nil
}

func (e *DispatchEngine) nextDueEvent(tti TTI) (Event, bool) {
	primaryDue := e.queue.Len() > 0 && !e.queue.Peek().Time().After(tti)
	secondaryDue := e.secondaryQueue.Len() > 0 && !e.secondaryQueue.Peek().Time().After(tti)

	switch {
	case !primaryDue && !secondaryDue:
		return nil, false
	case !primaryDue:
		return e.secondaryQueue.Pop(), true
	case !secondaryDue:
		return e.queue.Pop(), true
	}

	p, s := e.queue.Peek(), e.secondaryQueue.Peek()
	if !p.Time().After(s.Time()) {
		return e.queue.Pop(), true
	}
	return e.secondaryQueue.Pop(), true
}

// CurrentTime returns the TTI of the event being handled while RunUpTo is
// draining, and the tti argument of the last RunUpTo call once that call
// has returned.
func (e *DispatchEngine) CurrentTime() TTI {
	return e.readNow()
}

// RegisterDrainEndHandler registers handler to run after each RunUpTo call.
func (e *DispatchEngine) RegisterDrainEndHandler(handler DrainEndHandler) {
	e.drainEndHandlers = append(e.drainEndHandlers, handler)
}

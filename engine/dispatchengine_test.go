package engine_test

import (
	"testing"

	"github.com/sarchlab/enbstack/engine"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	handled []engine.TTI
}

func (h *recordingHandler) Handle(e engine.Event) error {
	h.handled = append(h.handled, e.Time())
	return nil
}

type fakeEvent struct {
	engine.EventBase
}

func newFakeEvent(tti engine.TTI, h engine.Handler) fakeEvent {
	return fakeEvent{EventBase: *engine.NewEventBase(tti, h)}
}

func TestDispatchEngineDrainsInTTIOrder(t *testing.T) {
	t.Parallel()

	e := engine.NewDispatchEngine()
	h := &recordingHandler{}

	e.Schedule(newFakeEvent(5, h))
	e.Schedule(newFakeEvent(2, h))
	e.Schedule(newFakeEvent(3, h))

	require.NoError(t, e.RunUpTo(10))
	require.Equal(t, []engine.TTI{2, 3, 5}, h.handled)
}

func TestDispatchEngineLeavesFutureEventsQueued(t *testing.T) {
	t.Parallel()

	e := engine.NewDispatchEngine()
	h := &recordingHandler{}

	e.Schedule(newFakeEvent(1, h))
	e.Schedule(newFakeEvent(100, h))

	require.NoError(t, e.RunUpTo(1))
	require.Equal(t, []engine.TTI{1}, h.handled)

	require.NoError(t, e.RunUpTo(100))
	require.Equal(t, []engine.TTI{1, 100}, h.handled)
}

func TestDispatchEngineOneHandlerErrorDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	e := engine.NewDispatchEngine()
	good := &recordingHandler{}
	bad := errHandler{}

	e.Schedule(newFakeEvent(1, bad))
	e.Schedule(newFakeEvent(2, good))

	require.NoError(t, e.RunUpTo(2))
	require.Equal(t, []engine.TTI{2}, good.handled)
}

type errHandler struct{}

func (errHandler) Handle(engine.Event) error { return assertErr }

var assertErr = &dispatchError{"boom"}

type dispatchError struct{ msg string }

func (e *dispatchError) Error() string { return e.msg }

func TestDispatchEngineSchedulingInPastPanics(t *testing.T) {
	t.Parallel()

	e := engine.NewDispatchEngine()
	h := &recordingHandler{}
	require.NoError(t, e.RunUpTo(5))

	require.Panics(t, func() {
		e.Schedule(newFakeEvent(1, h))
	})
}

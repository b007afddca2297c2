package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingObserver struct {
	active  map[string]int
	peak    map[string]int
	started map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{
		active:  make(map[string]int),
		peak:    make(map[string]int),
		started: make(map[string]int),
	}
}

func (o *countingObserver) TaskStarted(kind string) {
	o.active[kind]++
	o.started[kind]++
	if o.active[kind] > o.peak[kind] {
		o.peak[kind] = o.active[kind]
	}
}

func (o *countingObserver) TaskFinished(kind string) {
	o.active[kind]--
}

func TestEvery_TicksUntilFnReturnsFalse(t *testing.T) {
	loop := NewManualLoop(epoch)

	count := 0
	task := Every(loop, time.Second, func() bool {
		count++
		return count < 3
	})

	loop.Advance(10 * time.Second)
	assert.Equal(t, 3, count)
	assert.Equal(t, 3, task.Ticks())
	assert.False(t, task.Active())
	assert.False(t, task.Canceled())

	select {
	case <-task.Done():
	default:
		t.Fatal("Done not closed after completion")
	}
}

func TestEveryNow_FirstTickImmediate(t *testing.T) {
	loop := NewManualLoop(epoch)

	var at []time.Duration
	task := EveryNow(loop, 500*time.Millisecond, func() bool {
		at = append(at, loop.Now().Sub(epoch))
		return true
	})

	loop.Advance(time.Second)
	task.Cancel()

	assert.Equal(t, []time.Duration{0, 500 * time.Millisecond, time.Second}, at)
}

func TestTask_CancelStopsFurtherSideEffects(t *testing.T) {
	loop := NewManualLoop(epoch)

	count := 0
	task := Every(loop, time.Second, func() bool {
		count++
		return true
	})

	loop.Advance(2 * time.Second)
	task.Cancel()
	task.Cancel()
	loop.Advance(10 * time.Second)

	assert.Equal(t, 2, count)
	assert.True(t, task.Canceled())
	assert.Equal(t, 0, loop.Pending())

	select {
	case <-task.Done():
	default:
		t.Fatal("Done not closed after cancel")
	}
}

func TestTask_CancelFromOwnCallback(t *testing.T) {
	loop := NewManualLoop(epoch)

	var task *Task
	count := 0
	task = Every(loop, time.Second, func() bool {
		count++
		task.Cancel()
		return true
	})

	loop.Advance(5 * time.Second)
	assert.Equal(t, 1, count)
	assert.Equal(t, 0, loop.Pending())
}

func TestAfter_RunsOnce(t *testing.T) {
	loop := NewManualLoop(epoch)

	count := 0
	task := After(loop, 2*time.Second, func() { count++ })

	loop.Advance(time.Second)
	assert.True(t, task.Active())
	loop.Advance(5 * time.Second)
	assert.Equal(t, 1, count)
	assert.False(t, task.Active())
}

func TestTask_OnDoneAfterFinishRunsImmediately(t *testing.T) {
	loop := NewManualLoop(epoch)

	task := After(loop, time.Second, func() {})
	loop.Advance(time.Second)

	called := false
	task.OnDone(func() { called = true })
	assert.True(t, called)
}

func TestSlot_ReplaceKeepsAtMostOneActive(t *testing.T) {
	loop := NewManualLoop(epoch)
	observer := newCountingObserver()
	slot := NewSlot("tick", observer)

	var first, second int
	slot.Replace(func() *Task {
		return Every(loop, time.Second, func() bool { first++; return true })
	})
	loop.Advance(2 * time.Second)

	slot.Replace(func() *Task {
		return Every(loop, time.Second, func() bool { second++; return true })
	})
	loop.Advance(3 * time.Second)

	assert.Equal(t, 2, first)
	assert.Equal(t, 3, second)
	assert.Equal(t, 1, observer.active["tick"])
	assert.Equal(t, 1, observer.peak["tick"])
	assert.Equal(t, 2, observer.started["tick"])
	require.True(t, slot.Active())

	slot.Cancel()
	assert.False(t, slot.Active())
	assert.Nil(t, slot.Task())
	assert.Equal(t, 0, observer.active["tick"])
}

func TestSlot_CompletedTaskClearsSlot(t *testing.T) {
	loop := NewManualLoop(epoch)
	observer := newCountingObserver()
	slot := NewSlot("once", observer)

	slot.Replace(func() *Task { return After(loop, time.Second, func() {}) })
	loop.Advance(time.Second)

	assert.False(t, slot.Active())
	assert.Nil(t, slot.Task())
	assert.Equal(t, 0, observer.active["once"])
	assert.Equal(t, "once", slot.Kind())
}

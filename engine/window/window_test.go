package window

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskQueueRunsPostedBeforeFrame(t *testing.T) {
	wakes := 0
	q := newTaskQueue(func() { wakes++ })

	var order []string
	q.requestFrame(func() { order = append(order, "frame") })
	q.post(func() { order = append(order, "a") })
	q.post(func() { order = append(order, "b") })
	assert.Equal(t, 3, wakes)
	assert.True(t, q.pending())

	q.drain()
	assert.Equal(t, []string{"a", "b", "frame"}, order)
	assert.False(t, q.pending())
}

func TestTaskQueueKeepsLatestFrame(t *testing.T) {
	q := newTaskQueue(nil)

	var ran []int
	q.requestFrame(func() { ran = append(ran, 1) })
	q.requestFrame(func() { ran = append(ran, 2) })
	q.drain()
	assert.Equal(t, []int{2}, ran)
}

func TestTaskQueueWorkQueuedDuringDrainWaits(t *testing.T) {
	q := newTaskQueue(nil)

	frames := 0
	var frame func()
	frame = func() {
		frames++
		q.requestFrame(frame)
	}
	q.requestFrame(frame)

	q.drain()
	assert.Equal(t, 1, frames)
	assert.True(t, q.pending())
	q.drain()
	assert.Equal(t, 2, frames)
}

func TestTaskQueueConcurrentPost(t *testing.T) {
	q := newTaskQueue(nil)

	var mu sync.Mutex
	count := 0
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.post(func() {
				mu.Lock()
				count++
				mu.Unlock()
			})
		}()
	}
	wg.Wait()
	q.drain()
	assert.Equal(t, 50, count)
}

func TestCursorMovedReportsDragDeltas(t *testing.T) {
	w := &engineWindow{}
	var deltas [][2]float32
	w.SetDragCallback(func(dx, dy float32) {
		deltas = append(deltas, [2]float32{dx, dy})
	})

	w.cursorMoved(10, 10)
	assert.Empty(t, deltas, "no drag without a pressed button")

	w.dragging = true
	w.cursorMoved(15, 8)
	w.cursorMoved(15, 8)
	w.dragging = false
	w.cursorMoved(30, 30)

	assert.Equal(t, [][2]float32{{5, -2}}, deltas)
}

func TestBuilderOptions(t *testing.T) {
	w := &engineWindow{width: 1280, height: 720}
	for _, opt := range []WindowBuilderOption{
		WithTitle("globe"),
		WithSize(0, 600),
		WithMinSize(320, 240),
	} {
		opt(w)
	}
	assert.Equal(t, "globe", w.title)
	assert.Equal(t, 1280, w.width, "non-positive sizes keep the default")
	assert.Equal(t, 720, w.height)
	assert.Equal(t, 320, w.minWidth)

	WithSize(800, 600)(w)
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 600, w.Height())
}

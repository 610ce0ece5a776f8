package window

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window provides platform windowing, input event handling, and the frame host the
// render scheduler runs on. The event loop sleeps until input arrives or work is handed
// to it through Post or RequestFrame, so an idle window costs no CPU.
type Window interface {
	// RequestFrame schedules fn to run once on the window thread, after any posted tasks.
	// Only the most recent pending request runs. Safe to call from any goroutine.
	//
	// Parameters:
	//   - fn: the frame callback
	RequestFrame(fn func())

	// Post runs fn on the window thread at the next loop iteration. Safe to call from
	// any goroutine.
	//
	// Parameters:
	//   - fn: the task to run
	Post(fn func())

	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving scroll delta (positive = up/zoom in, negative = down/zoom out)
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetDragCallback sets the callback for pointer movement while the left button is held.
	//
	// Parameters:
	//   - callback: function receiving the movement since the last event, in pixels
	SetDragCallback(callback func(dx, dy float32))

	// SetTitle changes the title bar text. Must be called on the window thread.
	//
	// Parameters:
	//   - title: the new title
	SetTitle(title string)

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// ProcessMessages runs the window message loop on the calling thread.
	// Blocks until the window is closed. Each iteration waits for events, then runs
	// posted tasks and the pending frame callback.
	ProcessMessages()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// width is the current framebuffer width in pixels.
	width int

	// height is the current framebuffer height in pixels.
	height int

	// minWidth and minHeight bound resizing when both are positive.
	minWidth, minHeight int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// queue holds posted tasks and the pending frame callback.
	queue *taskQueue

	// onResize is called when the framebuffer is resized.
	onResize func(width, height int)

	// onScroll is called for mouse wheel events.
	// Positive delta = scroll up (zoom in), negative = scroll down (zoom out).
	onScroll func(delta float32)

	// onKeyDown is called when a key is pressed.
	onKeyDown func(keyCode uint32)

	// onDrag is called for pointer movement while the left button is held.
	onDrag func(dx, dy float32)

	dragging   bool
	lastCursor [2]float64
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a Window with the specified options. It must be called
// from the goroutine that will run ProcessMessages.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the created window
//   - error: an error if the platform window cannot be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:  "oxy-morph",
		width:  1280,
		height: 720,
	}
	for _, opt := range options {
		opt(w)
	}
	w.queue = newTaskQueue(platformWake)
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) RequestFrame(fn func()) {
	w.queue.requestFrame(fn)
}

func (w *engineWindow) Post(fn func()) {
	w.queue.post(fn)
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetDragCallback(callback func(dx, dy float32)) {
	w.onDrag = callback
}

func (w *engineWindow) SetTitle(title string) {
	w.title = title
	platformSetTitle(w, title)
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if !w.queue.pending() {
			platformWaitEvents(w)
		} else {
			platformPollEvents(w)
		}
		w.queue.drain()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// cursorMoved turns absolute cursor positions into drag deltas while dragging.
func (w *engineWindow) cursorMoved(x, y float64) {
	dx, dy := x-w.lastCursor[0], y-w.lastCursor[1]
	w.lastCursor = [2]float64{x, y}
	if w.dragging && w.onDrag != nil && (dx != 0 || dy != 0) {
		w.onDrag(float32(dx), float32(dy))
	}
}

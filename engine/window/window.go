package window

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	defaultTitle  = "OpenEngine"
	defaultWidth  = 800
	defaultHeight = 600
	defaultDepth  = 32
)

// Window is the display surface (the frame). It is an engine Module: the platform window is
// created on Initialize, its events are polled on Process and it is destroyed on Deinitialize.
// Callbacks fire on the engine goroutine while events are polled.
type Window interface {
	engine.Module

	// Title returns the window title.
	//
	// Returns:
	//   - string: the title displayed in the title bar
	Title() string

	// Width returns the current client area width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current client area height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int

	// Depth returns the requested color depth in bits per pixel.
	//
	// Returns:
	//   - int: bits per pixel
	Depth() int

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyDownCallback(callback func(key common.Key))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the key code
	SetKeyUpCallback(callback func(key common.Key))

	// SetMouseButtonDownCallback sets the callback for pointer button presses.
	//
	// Parameters:
	//   - callback: function receiving the button and cursor position
	SetMouseButtonDownCallback(callback func(button common.MouseButton, x, y int32))

	// SetMouseButtonUpCallback sets the callback for pointer button releases.
	//
	// Parameters:
	//   - callback: function receiving the button and cursor position
	SetMouseButtonUpCallback(callback func(button common.MouseButton, x, y int32))

	// SetMouseMoveCallback sets the callback for cursor movement.
	//
	// Parameters:
	//   - callback: function receiving the cursor position
	SetMouseMoveCallback(callback func(x, y int32))

	// SetScrollCallback sets the callback for scroll wheel events.
	//
	// Parameters:
	//   - callback: function receiving the vertical scroll delta (positive = up)
	SetScrollCallback(callback func(delta float32))

	// SetResizeCallback sets the callback for framebuffer resizes.
	//
	// Parameters:
	//   - callback: function receiving the new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetCloseCallback sets the callback fired once when the user closes the window.
	//
	// Parameters:
	//   - callback: function to call
	SetCloseCallback(callback func())

	// SurfaceDescriptor returns a descriptor for creating a WebGPU surface on this window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform descriptor, or nil when no platform window exists
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// JoystickState polls the first joystick.
	//
	// Returns:
	//   - common.JoystickState: the current axes and buttons
	//   - bool: false when no joystick is connected
	JoystickState() (common.JoystickState, bool)

	// IsRunning reports whether the window exists and has not been closed.
	//
	// Returns:
	//   - bool: true while the window is open
	IsRunning() bool
}

// callbacks holds the event handlers shared by every Window implementation.
type callbacks struct {
	onKeyDown         func(key common.Key)
	onKeyUp           func(key common.Key)
	onMouseButtonDown func(button common.MouseButton, x, y int32)
	onMouseButtonUp   func(button common.MouseButton, x, y int32)
	onMouseMove       func(x, y int32)
	onScroll          func(delta float32)
	onResize          func(width, height int)
	onClose           func()
}

func (c *callbacks) SetKeyDownCallback(callback func(key common.Key)) {
	c.onKeyDown = callback
}

func (c *callbacks) SetKeyUpCallback(callback func(key common.Key)) {
	c.onKeyUp = callback
}

func (c *callbacks) SetMouseButtonDownCallback(callback func(button common.MouseButton, x, y int32)) {
	c.onMouseButtonDown = callback
}

func (c *callbacks) SetMouseButtonUpCallback(callback func(button common.MouseButton, x, y int32)) {
	c.onMouseButtonUp = callback
}

func (c *callbacks) SetMouseMoveCallback(callback func(x, y int32)) {
	c.onMouseMove = callback
}

func (c *callbacks) SetScrollCallback(callback func(delta float32)) {
	c.onScroll = callback
}

func (c *callbacks) SetResizeCallback(callback func(width, height int)) {
	c.onResize = callback
}

func (c *callbacks) SetCloseCallback(callback func()) {
	c.onClose = callback
}

func (c *callbacks) keyDown(key common.Key) {
	if c.onKeyDown != nil {
		c.onKeyDown(key)
	}
}

func (c *callbacks) keyUp(key common.Key) {
	if c.onKeyUp != nil {
		c.onKeyUp(key)
	}
}

func (c *callbacks) mouseButton(button common.MouseButton, pressed bool, x, y int32) {
	if pressed && c.onMouseButtonDown != nil {
		c.onMouseButtonDown(button, x, y)
	}
	if !pressed && c.onMouseButtonUp != nil {
		c.onMouseButtonUp(button, x, y)
	}
}

func (c *callbacks) mouseMove(x, y int32) {
	if c.onMouseMove != nil {
		c.onMouseMove(x, y)
	}
}

func (c *callbacks) scroll(delta float32) {
	if c.onScroll != nil {
		c.onScroll(delta)
	}
}

func (c *callbacks) resize(width, height int) {
	if c.onResize != nil {
		c.onResize(width, height)
	}
}

func (c *callbacks) close() {
	if c.onClose != nil {
		c.onClose()
	}
}

// engineWindow is the glfw-backed implementation of the Window interface.
type engineWindow struct {
	callbacks

	mu *sync.Mutex

	title     string
	width     int
	height    int
	depth     int
	minWidth  int
	minHeight int
	maxWidth  int
	maxHeight int

	// closeNotified guards onClose so it fires once per window.
	closeNotified bool

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	logger *slog.Logger
}

var _ Window = &engineWindow{}

// NewWindow creates a glfw Window with the specified options. The platform window is not
// created until the engine fires Initialize.
// Zero-valued sizes fall back to 800x600 at 32 bits per pixel.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the configured window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		mu:     &sync.Mutex{},
		logger: slog.Default(),
	}
	for _, opt := range options {
		opt(w)
	}
	w.title = common.Coalesce(w.title, defaultTitle)
	w.width = common.Coalesce(w.width, defaultWidth)
	w.height = common.Coalesce(w.height, defaultHeight)
	w.depth = common.Coalesce(w.depth, defaultDepth)
	return w
}

// HandleInitialize creates the platform window. Failure is fatal.
func (w *engineWindow) HandleInitialize(_ engine.InitializeEventArg) {
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	w.logger.Info("window created", "title", w.title, "width", w.width, "height", w.height, "depth", w.depth)
}

// HandleProcess polls pending platform events and reports a close request once.
func (w *engineWindow) HandleProcess(_ engine.ProcessEventArg) {
	if w.internalWindow == nil {
		return
	}
	if !platformProcessMessages(w) {
		w.notifyClose()
	}
}

// HandleDeinitialize destroys the platform window.
func (w *engineWindow) HandleDeinitialize(_ engine.DeinitializeEventArg) {
	if err := platformCloseWindow(w); err != nil {
		w.logger.Warn("window close failed", "error", err)
	}
}

func (w *engineWindow) notifyClose() {
	w.mu.Lock()
	if w.closeNotified {
		w.mu.Unlock()
		return
	}
	w.closeNotified = true
	w.mu.Unlock()
	w.close()
}

func (w *engineWindow) Title() string {
	return w.title
}

func (w *engineWindow) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *engineWindow) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

func (w *engineWindow) Depth() int {
	return w.depth
}

func (w *engineWindow) setSize(width, height int) {
	w.mu.Lock()
	w.width = width
	w.height = height
	w.mu.Unlock()
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) JoystickState() (common.JoystickState, bool) {
	return platformJoystickState(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

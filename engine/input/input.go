// Package input turns window callbacks into keyboard, mouse and joystick events.
//
// Window callbacks only queue; the queue is dispatched on the engine Process phase so
// listeners always run on the engine goroutine, in arrival order.
package input

import (
	"log/slog"
	"sync"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/event"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/window"
)

// Keyboard publishes key presses and releases.
type Keyboard interface {
	// KeyEvent returns the attach point for key presses and releases.
	//
	// Returns:
	//   - *event.Event[KeyboardEventArg]: the key event
	KeyEvent() *event.Event[KeyboardEventArg]

	// IsKeyDown reports whether a key is held, as of the last dispatched event.
	//
	// Parameters:
	//   - key: the key to query
	//
	// Returns:
	//   - bool: true while the key is held
	IsKeyDown(key common.Key) bool
}

// Mouse publishes pointer movement, buttons and scrolling.
type Mouse interface {
	// MouseMovedEvent returns the attach point for cursor movement.
	//
	// Returns:
	//   - *event.Event[MouseMovedEventArg]: the move event
	MouseMovedEvent() *event.Event[MouseMovedEventArg]

	// MouseButtonEvent returns the attach point for button presses, releases and wheel steps.
	//
	// Returns:
	//   - *event.Event[MouseButtonEventArg]: the button event
	MouseButtonEvent() *event.Event[MouseButtonEventArg]

	// State returns the pointer state as of the last dispatched event.
	//
	// Returns:
	//   - MouseState: position and held buttons
	State() MouseState
}

// Joystick publishes changes to the first connected joystick.
type Joystick interface {
	// JoystickEvent returns the attach point fired when the joystick state changes.
	//
	// Returns:
	//   - *event.Event[JoystickEventArg]: the joystick event
	JoystickEvent() *event.Event[JoystickEventArg]

	// JoystickState returns the last polled joystick state.
	//
	// Returns:
	//   - common.JoystickState: the snapshot
	//   - bool: false when no joystick is connected
	JoystickState() (common.JoystickState, bool)
}

// Input is the input device module. It is registered with the engine next to the window
// and the renderer.
type Input interface {
	engine.Module
	Keyboard
	Mouse
	Joystick
}

type inputImpl struct {
	mu      *sync.Mutex
	frame   window.Window
	pending []func()

	keyEvent         *event.Event[KeyboardEventArg]
	mouseMovedEvent  *event.Event[MouseMovedEventArg]
	mouseButtonEvent *event.Event[MouseButtonEventArg]
	joystickEvent    *event.Event[JoystickEventArg]

	keys      map[common.Key]bool
	mouse     MouseState
	joystick  common.JoystickState
	connected bool

	logger *slog.Logger
}

var _ Input = &inputImpl{}

// NewInput creates an input device fed by w. It installs the key, mouse button, mouse move and
// scroll callbacks on w, replacing any installed before.
//
// Parameters:
//   - w: the window delivering raw events
//   - options: functional options
//
// Returns:
//   - Input: the input device
func NewInput(w window.Window, options ...InputBuilderOption) Input {
	in := &inputImpl{
		mu:               &sync.Mutex{},
		frame:            w,
		keyEvent:         event.NewEvent[KeyboardEventArg](),
		mouseMovedEvent:  event.NewEvent[MouseMovedEventArg](),
		mouseButtonEvent: event.NewEvent[MouseButtonEventArg](),
		joystickEvent:    event.NewEvent[JoystickEventArg](),
		keys:             make(map[common.Key]bool),
		logger:           slog.Default(),
	}
	for _, opt := range options {
		opt(in)
	}

	w.SetKeyDownCallback(func(key common.Key) {
		in.enqueue(func() { in.dispatchKey(key, KeyPressed) })
	})
	w.SetKeyUpCallback(func(key common.Key) {
		in.enqueue(func() { in.dispatchKey(key, KeyReleased) })
	})
	w.SetMouseMoveCallback(func(x, y int32) {
		in.enqueue(func() { in.dispatchMove(x, y) })
	})
	w.SetMouseButtonDownCallback(func(b common.MouseButton, x, y int32) {
		in.enqueue(func() { in.dispatchButton(b, ButtonPressed, x, y) })
	})
	w.SetMouseButtonUpCallback(func(b common.MouseButton, x, y int32) {
		in.enqueue(func() { in.dispatchButton(b, ButtonReleased, x, y) })
	})
	w.SetScrollCallback(func(delta float32) {
		in.enqueue(func() { in.dispatchScroll(delta) })
	})
	return in
}

func (in *inputImpl) enqueue(fn func()) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.pending = append(in.pending, fn)
}

func (in *inputImpl) HandleInitialize(_ engine.InitializeEventArg) {
	in.mu.Lock()
	defer in.mu.Unlock()
	clear(in.keys)
	in.pending = nil
}

// HandleProcess dispatches queued window events in arrival order, then polls the joystick.
func (in *inputImpl) HandleProcess(_ engine.ProcessEventArg) {
	in.mu.Lock()
	queue := in.pending
	in.pending = nil
	in.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	in.pollJoystick()
}

func (in *inputImpl) HandleDeinitialize(_ engine.DeinitializeEventArg) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.pending = nil
}

func (in *inputImpl) KeyEvent() *event.Event[KeyboardEventArg] {
	return in.keyEvent
}

func (in *inputImpl) IsKeyDown(key common.Key) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.keys[key]
}

func (in *inputImpl) MouseMovedEvent() *event.Event[MouseMovedEventArg] {
	return in.mouseMovedEvent
}

func (in *inputImpl) MouseButtonEvent() *event.Event[MouseButtonEventArg] {
	return in.mouseButtonEvent
}

func (in *inputImpl) State() MouseState {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.mouse
}

func (in *inputImpl) JoystickEvent() *event.Event[JoystickEventArg] {
	return in.joystickEvent
}

func (in *inputImpl) JoystickState() (common.JoystickState, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.joystick, in.connected
}

func (in *inputImpl) dispatchKey(key common.Key, typ KeyEventType) {
	in.mu.Lock()
	if typ == KeyPressed {
		in.keys[key] = true
	} else {
		delete(in.keys, key)
	}
	in.mu.Unlock()
	in.keyEvent.Notify(KeyboardEventArg{Sym: key, Type: typ})
}

func (in *inputImpl) dispatchMove(x, y int32) {
	in.mu.Lock()
	dx, dy := x-in.mouse.X, y-in.mouse.Y
	in.mouse.X, in.mouse.Y = x, y
	buttons := in.mouse.Buttons
	in.mu.Unlock()
	in.mouseMovedEvent.Notify(MouseMovedEventArg{X: x, Y: y, DX: dx, DY: dy, Buttons: buttons})
}

func (in *inputImpl) dispatchButton(b common.MouseButton, typ MouseButtonEventType, x, y int32) {
	in.mu.Lock()
	in.mouse.X, in.mouse.Y = x, y
	if typ == ButtonPressed {
		in.mouse.Buttons |= buttonMask(b)
	} else {
		in.mouse.Buttons &^= buttonMask(b)
	}
	state := in.mouse
	in.mu.Unlock()
	in.mouseButtonEvent.Notify(MouseButtonEventArg{Button: b, Type: typ, State: state})
}

func (in *inputImpl) dispatchScroll(delta float32) {
	in.mu.Lock()
	state := in.mouse
	in.mu.Unlock()
	in.mouseButtonEvent.Notify(MouseButtonEventArg{Type: WheelScrolled, Delta: delta, State: state})
}

func (in *inputImpl) pollJoystick() {
	state, ok := in.frame.JoystickState()

	in.mu.Lock()
	wasConnected := in.connected
	changed := ok != wasConnected || (ok && !state.Equal(in.joystick))
	in.joystick = state
	in.connected = ok
	in.mu.Unlock()

	if ok != wasConnected {
		in.logger.Debug("joystick connection changed", "connected", ok, "name", state.Name)
	}
	if changed {
		in.joystickEvent.Notify(JoystickEventArg{State: state, Connected: ok})
	}
}

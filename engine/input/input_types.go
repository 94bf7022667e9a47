package input

import "github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"

// KeyEventType distinguishes presses from releases.
type KeyEventType int

const (
	KeyPressed KeyEventType = iota
	KeyReleased
)

// KeyboardEventArg is passed to key event listeners.
type KeyboardEventArg struct {
	// Sym is the key that changed.
	Sym common.Key
	// Type is KeyPressed or KeyReleased. Auto-repeat is reported as KeyPressed.
	Type KeyEventType
}

// MouseButtonEventType distinguishes presses, releases and wheel steps.
type MouseButtonEventType int

const (
	ButtonPressed MouseButtonEventType = iota
	ButtonReleased
	WheelScrolled
)

// ButtonMask is a bit set of held mouse buttons, one bit per common.MouseButton.
type ButtonMask uint8

func buttonMask(b common.MouseButton) ButtonMask {
	if b < 0 || b > 7 {
		return 0
	}
	return 1 << uint(b)
}

// Has reports whether b is held.
func (m ButtonMask) Has(b common.MouseButton) bool {
	return m&buttonMask(b) != 0
}

// MouseState is the pointer position and held buttons.
type MouseState struct {
	X, Y    int32
	Buttons ButtonMask
}

// MouseMovedEventArg is passed to mouse move listeners.
type MouseMovedEventArg struct {
	X, Y    int32
	DX, DY  int32
	Buttons ButtonMask
}

// MouseButtonEventArg is passed to mouse button listeners.
type MouseButtonEventArg struct {
	Button common.MouseButton
	Type   MouseButtonEventType
	// Delta is the scroll amount for WheelScrolled, zero otherwise.
	Delta float32
	// State is the pointer state after the change.
	State MouseState
}

// JoystickEventArg is passed to joystick listeners whenever the polled state changes.
type JoystickEventArg struct {
	State     common.JoystickState
	Connected bool
}

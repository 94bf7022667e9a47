package window

import (
	"testing"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWindow_Defaults(t *testing.T) {
	w := NewWindow()

	assert.Equal(t, "OpenEngine", w.Title())
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 600, w.Height())
	assert.Equal(t, 32, w.Depth())
	assert.False(t, w.IsRunning(), "platform window is only created on Initialize")
	assert.Nil(t, w.SurfaceDescriptor())
	_, ok := w.JoystickState()
	assert.False(t, ok)
}

func TestNewWindow_Options(t *testing.T) {
	w := NewWindow(WithTitle("demo"), WithWidth(1024), WithHeight(0), WithDepth(24))

	assert.Equal(t, "demo", w.Title())
	assert.Equal(t, 1024, w.Width())
	assert.Equal(t, 600, w.Height(), "zero falls back to the default")
	assert.Equal(t, 24, w.Depth())
}

func TestHeadlessWindow_Lifecycle(t *testing.T) {
	w := NewHeadlessWindow(WithTitle("headless"))
	assert.False(t, w.IsRunning())

	w.HandleInitialize(engine.InitializeEventArg{})
	assert.True(t, w.IsRunning())

	w.HandleProcess(engine.ProcessEventArg{})
	w.HandleProcess(engine.ProcessEventArg{Frame: 1})
	assert.Equal(t, 2, w.Polls())

	w.HandleDeinitialize(engine.DeinitializeEventArg{})
	assert.False(t, w.IsRunning())
	w.HandleProcess(engine.ProcessEventArg{Frame: 2})
	assert.Equal(t, 2, w.Polls())
}

func TestHeadlessWindow_Callbacks(t *testing.T) {
	w := NewHeadlessWindow()
	var got []string

	w.SetKeyDownCallback(func(key common.Key) { got = append(got, "down") })
	w.SetKeyUpCallback(func(key common.Key) { got = append(got, "up") })
	w.SetMouseMoveCallback(func(x, y int32) { got = append(got, "move") })
	w.SetMouseButtonDownCallback(func(b common.MouseButton, x, y int32) {
		assert.Equal(t, common.MouseButtonLeft, b)
		assert.Equal(t, int32(10), x)
		assert.Equal(t, int32(20), y)
		got = append(got, "press")
	})
	w.SetMouseButtonUpCallback(func(b common.MouseButton, x, y int32) { got = append(got, "release") })
	w.SetScrollCallback(func(delta float32) { got = append(got, "scroll") })
	w.SetResizeCallback(func(width, height int) { got = append(got, "resize") })

	w.SimulateKeyDown(common.KeyA)
	w.SimulateKeyUp(common.KeyA)
	w.SimulateMouseMove(10, 20)
	w.SimulateMouseButton(common.MouseButtonLeft, true)
	w.SimulateMouseButton(common.MouseButtonLeft, false)
	w.SimulateScroll(1)
	w.SimulateResize(640, 480)

	assert.Equal(t, []string{"down", "up", "move", "press", "release", "scroll", "resize"}, got)
	assert.Equal(t, 640, w.Width())
	assert.Equal(t, 480, w.Height())
}

func TestHeadlessWindow_CallbacksOptional(t *testing.T) {
	w := NewHeadlessWindow()
	assert.NotPanics(t, func() {
		w.SimulateKeyDown(common.KeyEscape)
		w.SimulateMouseButton(common.MouseButtonRight, true)
		w.SimulateClose()
	})
}

func TestHeadlessWindow_CloseFiresOnce(t *testing.T) {
	w := NewHeadlessWindow()
	w.HandleInitialize(engine.InitializeEventArg{})
	closes := 0
	w.SetCloseCallback(func() { closes++ })

	w.SimulateClose()
	w.SimulateClose()

	assert.Equal(t, 1, closes)
	assert.False(t, w.IsRunning())
}

func TestHeadlessWindow_Joystick(t *testing.T) {
	w := NewHeadlessWindow()
	state := &common.JoystickState{Name: "pad", Axes: []float32{0.5}, Buttons: []bool{true}}

	w.SimulateJoystick(state)
	state.Axes[0] = -1

	got, ok := w.JoystickState()
	require.True(t, ok)
	assert.Equal(t, "pad", got.Name)
	assert.Equal(t, []float32{0.5}, got.Axes, "state is copied")

	w.SimulateJoystick(nil)
	_, ok = w.JoystickState()
	assert.False(t, ok)
}

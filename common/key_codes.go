package common

// Key is a virtual key code. Values match GLFW key codes, which use ASCII for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
type Key uint32

const (
	KeyW         Key = 87
	KeyA         Key = 65
	KeyS         Key = 83
	KeyD         Key = 68
	KeyQ         Key = 81
	KeyE         Key = 69
	KeyF         Key = 70
	KeyG         Key = 71
	KeySpace     Key = 32
	KeyEnter     Key = 257
	KeyTab       Key = 258
	KeyBackspace Key = 259
	KeyEscape    Key = 256
	KeyRight     Key = 262
	KeyLeft      Key = 263
	KeyDown      Key = 264
	KeyUp        Key = 265
	KeyF1        Key = 290

	Key0 Key = 48
	Key1 Key = 49
	Key2 Key = 50
	Key3 Key = 51
	Key4 Key = 52
	Key5 Key = 53
	Key6 Key = 54
	Key7 Key = 55
	Key8 Key = 56
	Key9 Key = 57
)

// Additional non-printable keys
const (
	KeyLeftShift  Key = 340
	KeyRightShift Key = 344
)

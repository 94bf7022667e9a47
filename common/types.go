// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// MouseButton identifies a pointer button. Values match GLFW mouse button codes.
type MouseButton int

const (
	MouseButtonLeft   MouseButton = 0
	MouseButtonRight  MouseButton = 1
	MouseButtonMiddle MouseButton = 2
)

// JoystickState is a snapshot of a single joystick.
type JoystickState struct {
	// Name is the human readable device name reported by the platform.
	Name string
	// Axes holds normalized axis positions in [-1, 1].
	Axes []float32
	// Buttons holds pressed state per button index.
	Buttons []bool
}

// Equal reports whether two snapshots carry identical axes and buttons.
func (j JoystickState) Equal(other JoystickState) bool {
	if j.Name != other.Name || len(j.Axes) != len(other.Axes) || len(j.Buttons) != len(other.Buttons) {
		return false
	}
	for i := range j.Axes {
		if j.Axes[i] != other.Axes[i] {
			return false
		}
	}
	for i := range j.Buttons {
		if j.Buttons[i] != other.Buttons[i] {
			return false
		}
	}
	return true
}

// BoundingSphere is a sphere enclosing some geometry.
type BoundingSphere struct {
	Center [3]float32
	Radius float32
}

// Transform returns the sphere moved by m, with the radius grown by m's largest scale.
//
// Parameters:
//   - m: the transform to apply
//
// Returns:
//   - BoundingSphere: the transformed sphere
func (b BoundingSphere) Transform(m Mat4) BoundingSphere {
	return BoundingSphere{
		Center: TransformPoint(m, b.Center),
		Radius: b.Radius * MaxScale(m),
	}
}

// BoundingSphereFromPoints computes a sphere centered on the points' bounding box.
// positions is a flat xyz slice.
func BoundingSphereFromPoints(positions []float32) BoundingSphere {
	if len(positions) < 3 {
		return BoundingSphere{}
	}
	lo := [3]float32{positions[0], positions[1], positions[2]}
	hi := lo
	for i := 3; i+2 < len(positions); i += 3 {
		for k := 0; k < 3; k++ {
			v := positions[i+k]
			if v < lo[k] {
				lo[k] = v
			}
			if v > hi[k] {
				hi[k] = v
			}
		}
	}
	center := Scale3(Add3(lo, hi), 0.5)
	var r float32
	for i := 0; i+2 < len(positions); i += 3 {
		d := Length3(Sub3([3]float32{positions[i], positions[i+1], positions[i+2]}, center))
		if d > r {
			r = d
		}
	}
	return BoundingSphere{Center: center, Radius: r}
}

// Union returns the smallest sphere enclosing both b and o.
//
// Parameters:
//   - o: the other sphere
//
// Returns:
//   - BoundingSphere: the enclosing sphere
func (b BoundingSphere) Union(o BoundingSphere) BoundingSphere {
	offset := Sub3(o.Center, b.Center)
	d := Length3(offset)
	if d+o.Radius <= b.Radius {
		return b
	}
	if d+b.Radius <= o.Radius {
		return o
	}
	r := (d + b.Radius + o.Radius) / 2
	return BoundingSphere{
		Center: Add3(b.Center, Scale3(offset, (r-b.Radius)/d)),
		Radius: r,
	}
}

package camera

import (
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/chewxy/math32"
)

// maxPitch keeps Rotate away from the up vector, where the look-at basis degenerates.
const maxPitch = 89 * math32.Pi / 180

type cameraImpl struct {
	ViewingVolume
}

// goalReader is implemented by volumes whose setters record a goal instead of applying it at once.
type goalReader interface {
	GoalPosition() [3]float32
	GoalTarget() [3]float32
}

// Camera decorates a ViewingVolume with view-transform operations: moving along the view axes,
// aiming and rotating. Projection state stays in the wrapped volume.
type Camera interface {
	ViewingVolume

	// Volume returns the wrapped volume.
	//
	// Returns:
	//   - ViewingVolume: the decorated volume
	Volume() ViewingVolume

	// Direction returns the normalized view direction.
	//
	// Returns:
	//   - [3]float32: target minus position, normalized
	Direction() [3]float32

	// Move translates position and target along the camera's forward, right and up axes.
	//
	// Parameters:
	//   - forward: distance along the view direction
	//   - right: distance along the right vector
	//   - up: distance along the up vector
	Move(forward, right, up float32)

	// LookAt aims the camera at a point without moving it.
	//
	// Parameters:
	//   - x, y, z: the point to look at
	LookAt(x, y, z float32)

	// Rotate turns the view direction around the up vector (yaw) and the right vector (pitch).
	// Pitch is clamped to stay within 89 degrees of the horizon.
	//
	// Parameters:
	//   - yaw: radians, positive turns left
	//   - pitch: radians, positive turns up
	Rotate(yaw, pitch float32)
}

var _ Camera = &cameraImpl{}

// NewCamera wraps volume. SetPosition on a Camera keeps the view direction by moving the target along.
//
// Parameters:
//   - volume: the volume to decorate
//
// Returns:
//   - Camera: the camera
func NewCamera(volume ViewingVolume) Camera {
	return &cameraImpl{ViewingVolume: volume}
}

func (c *cameraImpl) Volume() ViewingVolume {
	return c.ViewingVolume
}

func (c *cameraImpl) Direction() [3]float32 {
	return common.Normalize(common.Sub3(c.ViewingVolume.Target(), c.ViewingVolume.Position()))
}

// position and target return the goal of an interpolating volume, so consecutive edits accumulate.
func (c *cameraImpl) position() [3]float32 {
	if g, ok := c.ViewingVolume.(goalReader); ok {
		return g.GoalPosition()
	}
	return c.ViewingVolume.Position()
}

func (c *cameraImpl) target() [3]float32 {
	if g, ok := c.ViewingVolume.(goalReader); ok {
		return g.GoalTarget()
	}
	return c.ViewingVolume.Target()
}

func (c *cameraImpl) SetPosition(x, y, z float32) {
	offset := common.Sub3(c.target(), c.position())
	c.ViewingVolume.SetPosition(x, y, z)
	c.ViewingVolume.SetTarget(x+offset[0], y+offset[1], z+offset[2])
}

func (c *cameraImpl) Move(forward, right, up float32) {
	f, r, u := c.basis()
	delta := common.Add3(common.Add3(common.Scale3(f, forward), common.Scale3(r, right)), common.Scale3(u, up))
	p := common.Add3(c.position(), delta)
	t := common.Add3(c.target(), delta)
	c.ViewingVolume.SetPosition(p[0], p[1], p[2])
	c.ViewingVolume.SetTarget(t[0], t[1], t[2])
}

func (c *cameraImpl) LookAt(x, y, z float32) {
	c.ViewingVolume.SetTarget(x, y, z)
}

func (c *cameraImpl) Rotate(yaw, pitch float32) {
	pos := c.position()
	offset := common.Sub3(c.target(), pos)
	dist := common.Length3(offset)
	if dist == 0 {
		dist = 1
	}
	up := common.Normalize(c.ViewingVolume.Up())

	dir := rotateAround(common.Normalize(offset), up, yaw)

	current := math32.Asin(clamp(common.Dot3(dir, up), -1, 1))
	next := clamp(current+pitch, -maxPitch, maxPitch)
	right := common.Normalize(common.Cross3(dir, up))
	dir = rotateAround(dir, right, next-current)

	t := common.Add3(pos, common.Scale3(common.Normalize(dir), dist))
	c.ViewingVolume.SetTarget(t[0], t[1], t[2])
}

// basis returns the forward, right and up unit vectors of the current view.
func (c *cameraImpl) basis() (forward, right, up [3]float32) {
	forward = common.Normalize(common.Sub3(c.target(), c.position()))
	right = common.Normalize(common.Cross3(forward, c.ViewingVolume.Up()))
	up = common.Cross3(right, forward)
	return forward, right, up
}

// rotateAround applies Rodrigues' rotation of v around the unit axis k.
func rotateAround(v, k [3]float32, angle float32) [3]float32 {
	s, c := math32.Sincos(angle)
	term1 := common.Scale3(v, c)
	term2 := common.Scale3(common.Cross3(k, v), s)
	term3 := common.Scale3(k, common.Dot3(k, v)*(1-c))
	return common.Add3(common.Add3(term1, term2), term3)
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}

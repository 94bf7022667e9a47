package camera

import (
	"sync"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/chewxy/math32"
)

type viewingVolume struct {
	mu *sync.Mutex

	position [3]float32
	target   [3]float32
	up       [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix                  common.Mat4
	projectionMatrix            common.Mat4
	viewProjectionMatrix        common.Mat4
	inverseViewProjectionMatrix common.Mat4
}

// ViewingVolume is the geometric description of a visible region: an eye position, a look-at
// target, an up vector and a perspective projection.
// Camera, InterpolatedViewingVolume and Frustum decorate it and are ViewingVolumes themselves.
type ViewingVolume interface {
	// Position returns the eye position.
	//
	// Returns:
	//   - [3]float32: the position
	Position() [3]float32

	// SetPosition sets the eye position.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// Target returns the look-at point.
	//
	// Returns:
	//   - [3]float32: the target
	Target() [3]float32

	// SetTarget sets the look-at point.
	//
	// Parameters:
	//   - x, y, z: target components
	SetTarget(x, y, z float32)

	// Up returns the up vector.
	//
	// Returns:
	//   - [3]float32: the up vector
	Up() [3]float32

	// SetUp sets the up vector.
	//
	// Parameters:
	//   - x, y, z: up vector components
	SetUp(x, y, z float32)

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// SetFov sets the vertical field of view in radians.
	SetFov(fov float32)

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// SetAspect sets the aspect ratio (width / height).
	SetAspect(aspect float32)

	// Near returns the near clipping plane distance.
	Near() float32

	// SetNear sets the near clipping plane distance.
	SetNear(near float32)

	// Far returns the far clipping plane distance.
	Far() float32

	// SetFar sets the far clipping plane distance.
	SetFar(far float32)

	// ViewMatrix returns the world-to-eye transform (column-major).
	ViewMatrix() common.Mat4

	// ProjectionMatrix returns the eye-to-clip transform (column-major, depth in [0, 1]).
	ProjectionMatrix() common.Mat4

	// ViewProjectionMatrix returns ProjectionMatrix * ViewMatrix.
	ViewProjectionMatrix() common.Mat4

	// InverseViewProjectionMatrix returns the inverse of ViewProjectionMatrix.
	InverseViewProjectionMatrix() common.Mat4

	// Update advances any time-dependent state. Called once per rendered frame.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	Update(deltaTime float32)
}

var _ ViewingVolume = &viewingVolume{}

// NewViewingVolume creates a volume at the origin looking down -Z with a 45 degree field of view,
// a 4:3 aspect ratio, near 0.1 and far 100.
//
// Parameters:
//   - options: functional options to configure the volume
//
// Returns:
//   - ViewingVolume: the new volume
func NewViewingVolume(options ...ViewingVolumeBuilderOption) ViewingVolume {
	v := &viewingVolume{
		mu:     &sync.Mutex{},
		target: [3]float32{0, 0, -1},
		up:     [3]float32{0, 1, 0},
		fov:    45 * math32.Pi / 180,
		aspect: 4.0 / 3.0,
		near:   0.1,
		far:    100,
	}
	for _, option := range options {
		option(v)
	}
	v.updateMatrices()
	return v
}

func (v *viewingVolume) Position() [3]float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.position
}

func (v *viewingVolume) SetPosition(x, y, z float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.position = [3]float32{x, y, z}
	v.updateMatrices()
}

func (v *viewingVolume) Target() [3]float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.target
}

func (v *viewingVolume) SetTarget(x, y, z float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.target = [3]float32{x, y, z}
	v.updateMatrices()
}

func (v *viewingVolume) Up() [3]float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.up
}

func (v *viewingVolume) SetUp(x, y, z float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.up = [3]float32{x, y, z}
	v.updateMatrices()
}

func (v *viewingVolume) Fov() float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fov
}

func (v *viewingVolume) SetFov(fov float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fov = fov
	v.updateMatrices()
}

func (v *viewingVolume) Aspect() float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.aspect
}

func (v *viewingVolume) SetAspect(aspect float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.aspect = aspect
	v.updateMatrices()
}

func (v *viewingVolume) Near() float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.near
}

func (v *viewingVolume) SetNear(near float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.near = near
	v.updateMatrices()
}

func (v *viewingVolume) Far() float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.far
}

func (v *viewingVolume) SetFar(far float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.far = far
	v.updateMatrices()
}

func (v *viewingVolume) ViewMatrix() common.Mat4 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewMatrix
}

func (v *viewingVolume) ProjectionMatrix() common.Mat4 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.projectionMatrix
}

func (v *viewingVolume) ViewProjectionMatrix() common.Mat4 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewProjectionMatrix
}

func (v *viewingVolume) InverseViewProjectionMatrix() common.Mat4 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.inverseViewProjectionMatrix
}

// Update is a no-op: a plain volume has no time-dependent state.
func (v *viewingVolume) Update(deltaTime float32) {}

// updateMatrices recalculates the view, projection, view-projection and inverse view-projection matrices.
// Caller must hold the mutex.
func (v *viewingVolume) updateMatrices() {
	common.LookAt(v.viewMatrix[:], v.position, v.target, v.up)
	common.Perspective(v.projectionMatrix[:], v.fov, v.aspect, v.near, v.far)
	common.Mul4(v.viewProjectionMatrix[:], v.projectionMatrix[:], v.viewMatrix[:])
	if !common.Invert4(v.inverseViewProjectionMatrix[:], v.viewProjectionMatrix[:]) {
		v.inverseViewProjectionMatrix = common.IdentityMat4()
	}
}

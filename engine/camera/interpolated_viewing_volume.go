package camera

import (
	"sync"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/chewxy/math32"
)

type interpolatedViewingVolume struct {
	ViewingVolume

	mu   *sync.Mutex
	rate float32

	goalPosition [3]float32
	goalTarget   [3]float32
	goalUp       [3]float32
}

// InterpolatedViewingVolume smooths position, target and up changes of a wrapped volume.
// Setters record a goal; Update moves the wrapped volume toward it. Reads return the wrapped
// volume's current state; projection setters apply immediately.
type InterpolatedViewingVolume interface {
	ViewingVolume

	// Volume returns the wrapped volume.
	Volume() ViewingVolume

	// GoalPosition returns the position the volume is moving toward.
	GoalPosition() [3]float32

	// GoalTarget returns the target the volume is moving toward.
	GoalTarget() [3]float32

	// Snap moves the wrapped volume onto its goal immediately.
	Snap()
}

var _ InterpolatedViewingVolume = &interpolatedViewingVolume{}

// NewInterpolatedViewingVolume wraps inner. The initial goal is inner's current state.
//
// Parameters:
//   - inner: the volume to drive
//   - options: functional options to configure interpolation
//
// Returns:
//   - InterpolatedViewingVolume: the decorator
func NewInterpolatedViewingVolume(inner ViewingVolume, options ...InterpolatedViewingVolumeBuilderOption) InterpolatedViewingVolume {
	v := &interpolatedViewingVolume{
		ViewingVolume: inner,
		mu:            &sync.Mutex{},
		rate:          10,
		goalPosition:  inner.Position(),
		goalTarget:    inner.Target(),
		goalUp:        inner.Up(),
	}
	for _, option := range options {
		option(v)
	}
	return v
}

func (v *interpolatedViewingVolume) Volume() ViewingVolume {
	return v.ViewingVolume
}

func (v *interpolatedViewingVolume) SetPosition(x, y, z float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.goalPosition = [3]float32{x, y, z}
}

func (v *interpolatedViewingVolume) SetTarget(x, y, z float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.goalTarget = [3]float32{x, y, z}
}

func (v *interpolatedViewingVolume) SetUp(x, y, z float32) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.goalUp = [3]float32{x, y, z}
}

func (v *interpolatedViewingVolume) GoalPosition() [3]float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.goalPosition
}

func (v *interpolatedViewingVolume) GoalTarget() [3]float32 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.goalTarget
}

func (v *interpolatedViewingVolume) Snap() {
	v.mu.Lock()
	p, t, u := v.goalPosition, v.goalTarget, v.goalUp
	v.mu.Unlock()
	v.apply(p, t, u)
}

func (v *interpolatedViewingVolume) Update(deltaTime float32) {
	v.mu.Lock()
	rate := v.rate
	goalP, goalT, goalU := v.goalPosition, v.goalTarget, v.goalUp
	v.mu.Unlock()

	if rate <= 0 {
		v.apply(goalP, goalT, goalU)
	} else if deltaTime > 0 {
		alpha := 1 - math32.Exp(-rate*deltaTime)
		v.apply(
			lerp3(v.ViewingVolume.Position(), goalP, alpha),
			lerp3(v.ViewingVolume.Target(), goalT, alpha),
			lerp3(v.ViewingVolume.Up(), goalU, alpha),
		)
	}
	v.ViewingVolume.Update(deltaTime)
}

func (v *interpolatedViewingVolume) apply(p, t, u [3]float32) {
	v.ViewingVolume.SetPosition(p[0], p[1], p[2])
	v.ViewingVolume.SetTarget(t[0], t[1], t[2])
	v.ViewingVolume.SetUp(u[0], u[1], u[2])
}

func lerp3(a, b [3]float32, t float32) [3]float32 {
	return common.Add3(a, common.Scale3(common.Sub3(b, a), t))
}

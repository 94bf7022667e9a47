package camera

// ViewingVolumeBuilderOption configures a ViewingVolume during construction.
type ViewingVolumeBuilderOption func(*viewingVolume)

// WithPosition sets the eye position.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - ViewingVolumeBuilderOption: a function that sets the position
func WithPosition(x, y, z float32) ViewingVolumeBuilderOption {
	return func(v *viewingVolume) {
		v.position = [3]float32{x, y, z}
	}
}

// WithTarget sets the look-at point.
//
// Parameters:
//   - x, y, z: target components
//
// Returns:
//   - ViewingVolumeBuilderOption: a function that sets the target
func WithTarget(x, y, z float32) ViewingVolumeBuilderOption {
	return func(v *viewingVolume) {
		v.target = [3]float32{x, y, z}
	}
}

// WithUp sets the up vector.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - ViewingVolumeBuilderOption: a function that sets the up vector
func WithUp(x, y, z float32) ViewingVolumeBuilderOption {
	return func(v *viewingVolume) {
		v.up = [3]float32{x, y, z}
	}
}

// WithFov sets the vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - ViewingVolumeBuilderOption: a function that sets the field of view
func WithFov(fov float32) ViewingVolumeBuilderOption {
	return func(v *viewingVolume) {
		v.fov = fov
	}
}

// WithAspect sets the aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - ViewingVolumeBuilderOption: a function that sets the aspect ratio
func WithAspect(aspect float32) ViewingVolumeBuilderOption {
	return func(v *viewingVolume) {
		v.aspect = aspect
	}
}

// WithNear sets the near clipping plane distance.
//
// Parameters:
//   - near: near plane distance
//
// Returns:
//   - ViewingVolumeBuilderOption: a function that sets the near plane
func WithNear(near float32) ViewingVolumeBuilderOption {
	return func(v *viewingVolume) {
		v.near = near
	}
}

// WithFar sets the far clipping plane distance.
//
// Parameters:
//   - far: far plane distance
//
// Returns:
//   - ViewingVolumeBuilderOption: a function that sets the far plane
func WithFar(far float32) ViewingVolumeBuilderOption {
	return func(v *viewingVolume) {
		v.far = far
	}
}

// InterpolatedViewingVolumeBuilderOption configures an InterpolatedViewingVolume during construction.
type InterpolatedViewingVolumeBuilderOption func(*interpolatedViewingVolume)

// WithInterpolationRate sets how quickly the volume converges on its goal, in 1/seconds.
// After t seconds the remaining distance is exp(-rate*t) of the original. A rate <= 0 snaps immediately.
//
// Parameters:
//   - rate: the convergence rate (default 10)
//
// Returns:
//   - InterpolatedViewingVolumeBuilderOption: a function that sets the rate
func WithInterpolationRate(rate float32) InterpolatedViewingVolumeBuilderOption {
	return func(v *interpolatedViewingVolume) {
		v.rate = rate
	}
}

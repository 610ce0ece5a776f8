package camera

// CameraController defines an orbit control system around a target point.
// Controllers own positional state in spherical coordinates (radius, azimuth, elevation)
// relative to the target. Input adds to pending deltas, which Update applies with damping
// so the camera glides to rest after the input stops.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - [3]float32: world-space camera position
	Position() [3]float32

	// Target returns the look-at point.
	//
	// Returns:
	//   - [3]float32: world-space target position
	Target() [3]float32

	// Rotate queues an orbit by the given angles. Positive azimuth turns the camera
	// to the right around the target, positive elevation tilts it upward.
	//
	// Parameters:
	//   - dAzimuth: horizontal angle in radians
	//   - dElevation: vertical angle in radians
	Rotate(dAzimuth, dElevation float32)

	// Drag queues an orbit from a pointer movement in pixels, scaled by MouseSensitivity.
	//
	// Parameters:
	//   - dx, dy: pointer movement in pixels
	Drag(dx, dy float32)

	// Zoom queues a change of the orbit radius. Positive delta zooms in (closer to target).
	//
	// Parameters:
	//   - delta: zoom amount scaled by ZoomSpeed
	Zoom(delta float32)

	// Update applies one step of the pending deltas and decays them by the damping factor.
	//
	// Returns:
	//   - bool: true if the position changed and further updates are needed to settle
	Update() bool

	// Radius returns the current orbit radius (distance from target).
	//
	// Returns:
	//   - float32: current distance from target
	Radius() float32

	// SetRadius sets the orbit radius directly, clamped to min/max bounds.
	//
	// Parameters:
	//   - radius: new distance from target
	SetRadius(radius float32)

	// MinRadius returns the minimum allowed orbit radius.
	//
	// Returns:
	//   - float32: minimum zoom distance
	MinRadius() float32

	// MaxRadius returns the maximum allowed orbit radius.
	//
	// Returns:
	//   - float32: maximum zoom distance
	MaxRadius() float32

	// Azimuth returns the current horizontal angle around the Y axis.
	//
	// Returns:
	//   - float32: azimuth in radians
	Azimuth() float32

	// Elevation returns the current vertical angle from the horizontal plane.
	//
	// Returns:
	//   - float32: elevation in radians
	Elevation() float32

	// SetElevation sets the vertical angle directly, clamped to min/max bounds.
	//
	// Parameters:
	//   - elevation: new vertical angle in radians
	SetElevation(elevation float32)
}

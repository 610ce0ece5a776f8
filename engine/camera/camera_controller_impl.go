package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-morph/common"
	"github.com/chewxy/math32"
)

// settleEpsilon is the pending delta below which the controller considers itself at rest.
const settleEpsilon = 1e-4

// cameraControllerImpl is the single implementation of CameraController.
// Rotate, Drag, and Zoom only accumulate pending deltas; Update moves the spherical
// coordinates by a damping fraction of them and recomputes position.
type cameraControllerImpl struct {
	mu *sync.Mutex

	// Camera position (computed from target + spherical coords)
	position [3]float32
	target   [3]float32

	// Spherical coordinates (offset from target)
	radius    float32
	azimuth   float32 // Horizontal angle around Y axis
	elevation float32 // Vertical angle from horizontal plane

	// Orbit constraints
	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	// Pending input not yet applied by Update
	pendingAzimuth   float32
	pendingElevation float32
	pendingZoom      float32

	// Fraction of the pending deltas applied per Update, in (0, 1]. 1 disables damping.
	damping float32

	mouseSensitivity float32
	zoomSpeed        float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates an orbit controller looking at the origin from 2.5 units,
// with zoom clamped to [1.2, 4] and damping enabled.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:     &sync.Mutex{},
		target: [3]float32{0, 0, 0},

		radius:    2.5,
		azimuth:   0.0,
		elevation: 0.3,

		minRadius:    1.2,
		maxRadius:    4.0,
		minElevation: -math32.Pi/2 + 0.05,
		maxElevation: math32.Pi/2 - 0.05,

		damping:          0.15,
		mouseSensitivity: 0.005,
		zoomSpeed:        0.1,
	}

	for _, option := range options {
		option(cc)
	}

	cc.damping = common.Clamp(cc.damping, 0.01, 1)
	cc.radius = common.Clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = common.Clamp(cc.elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
	return cc
}

// updatePosition recomputes the camera position from spherical coordinates.
// Must be called whenever radius, azimuth, elevation, or target changes.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	sinElev, cosElev := math32.Sincos(cc.elevation)
	sinAzim, cosAzim := math32.Sincos(cc.azimuth)

	cc.position[0] = cc.target[0] + cc.radius*cosElev*sinAzim
	cc.position[1] = cc.target[1] + cc.radius*sinElev
	cc.position[2] = cc.target[2] + cc.radius*cosElev*cosAzim
}

func (cc *cameraControllerImpl) Position() [3]float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Target() [3]float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) Rotate(dAzimuth, dElevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pendingAzimuth += dAzimuth
	cc.pendingElevation += dElevation
}

func (cc *cameraControllerImpl) Drag(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pendingAzimuth -= dx * cc.mouseSensitivity
	cc.pendingElevation += dy * cc.mouseSensitivity
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pendingZoom += delta * cc.zoomSpeed
}

func (cc *cameraControllerImpl) Update() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if math32.Abs(cc.pendingAzimuth) < settleEpsilon &&
		math32.Abs(cc.pendingElevation) < settleEpsilon &&
		math32.Abs(cc.pendingZoom) < settleEpsilon {
		cc.pendingAzimuth, cc.pendingElevation, cc.pendingZoom = 0, 0, 0
		return false
	}

	cc.azimuth = float32(common.EuclideanModulo(float64(cc.azimuth+cc.pendingAzimuth*cc.damping), 2*math.Pi))
	elevation := cc.elevation + cc.pendingElevation*cc.damping
	radius := cc.radius - cc.pendingZoom*cc.damping
	cc.elevation = common.Clamp(elevation, cc.minElevation, cc.maxElevation)
	cc.radius = common.Clamp(radius, cc.minRadius, cc.maxRadius)

	decay := 1 - cc.damping
	cc.pendingAzimuth *= decay
	cc.pendingElevation *= decay
	cc.pendingZoom *= decay
	// pending input past a bound is discarded
	if cc.elevation != elevation {
		cc.pendingElevation = 0
	}
	if cc.radius != radius {
		cc.pendingZoom = 0
	}

	cc.updatePosition()
	return true
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) SetRadius(radius float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = common.Clamp(radius, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) MinRadius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.minRadius
}

func (cc *cameraControllerImpl) MaxRadius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.maxRadius
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) SetElevation(elevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation = common.Clamp(elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
}

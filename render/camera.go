// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"time"

	"github.com/chewxy/math32"
	"github.com/gogpu/deferred"
)

// Clip planes of the world projection, in world units.
const (
	NearPlane = 4
	FarPlane  = 4096
)

// Vec3 is a 3-component vector.
type Vec3 = [3]float32

// Mat4 is a column-major 4x4 matrix.
type Mat4 = [16]float32

// ToRenderSpace converts a game-space vector (x forward, y left, z up) to
// render space (x right, y up, z backward).
func ToRenderSpace(v Vec3) Vec3 { return Vec3{-v[1], v[2], -v[0]} }

// Camera is a view of the world from a game-space origin.
type Camera struct {
	origin       Vec3
	view         Mat4
	projection   Mat4
	invProj      Mat4
	fovY, aspect float32
}

// NewCamera creates a camera at origin looking along angles (pitch, yaw,
// roll in degrees; positive pitch looks down). fovX is the horizontal field
// of view in degrees.
func NewCamera(origin, angles Vec3, aspect, fovX float32) *Camera {
	if aspect <= 0 {
		aspect = 1
	}
	c := &Camera{origin: origin, aspect: aspect}
	c.fovY = 2 * math32.Atan(math32.Tan(radians(fovX)/2)/aspect)

	pitch, yaw, roll := radians(angles[0]), radians(angles[1]), radians(angles[2])
	o := ToRenderSpace(origin)
	c.view = mul(rotateZ(-roll), mul(rotateX(pitch), mul(rotateY(-yaw), translate(Vec3{-o[0], -o[1], -o[2]}))))
	c.projection, c.invProj = perspective(c.fovY, aspect, NearPlane, FarPlane)
	return c
}

// Origin returns the game-space origin.
func (c *Camera) Origin() Vec3 { return c.origin }

// FovY returns the vertical field of view in radians.
func (c *Camera) FovY() float32 { return c.fovY }

// View returns the world-to-view matrix.
func (c *Camera) View() Mat4 { return c.view }

// Projection returns the view-to-clip matrix with depth in [0, 1].
func (c *Camera) Projection() Mat4 { return c.projection }

// InverseProjection returns the inverse of Projection.
func (c *Camera) InverseProjection() Mat4 { return c.invProj }

// Transform returns Projection * View.
func (c *Camera) Transform() Mat4 { return mul(c.projection, c.view) }

// TransformPoint applies m to the point p.
func TransformPoint(m Mat4, p Vec3) Vec3 {
	return Vec3{
		m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12],
		m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13],
		m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14],
	}
}

func radians(deg float32) float32 { return deg * math32.Pi / 180 }

func identity() Mat4 { return Mat4{0: 1, 5: 1, 10: 1, 15: 1} }

func mul(a, b Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

func translate(t Vec3) Mat4 {
	m := identity()
	m[12], m[13], m[14] = t[0], t[1], t[2]
	return m
}

func rotateX(a float32) Mat4 {
	s, c := math32.Sin(a), math32.Cos(a)
	m := identity()
	m[5], m[6] = c, s
	m[9], m[10] = -s, c
	return m
}

func rotateY(a float32) Mat4 {
	s, c := math32.Sin(a), math32.Cos(a)
	m := identity()
	m[0], m[2] = c, -s
	m[8], m[10] = s, c
	return m
}

func rotateZ(a float32) Mat4 {
	s, c := math32.Sin(a), math32.Cos(a)
	m := identity()
	m[0], m[1] = c, s
	m[4], m[5] = -s, c
	return m
}

// perspective returns a right-handed projection mapping depth to [0, 1]
// and its analytic inverse.
func perspective(fovY, aspect, near, far float32) (proj, inv Mat4) {
	f := 1 / math32.Tan(fovY/2)
	c := far / (near - far)
	d := near * far / (near - far)

	proj[0] = f / aspect
	proj[5] = f
	proj[10] = c
	proj[11] = -1
	proj[14] = d

	inv[0] = aspect / f
	inv[5] = 1 / f
	inv[11] = 1 / d
	inv[14] = -1
	inv[15] = c / d
	return proj, inv
}

// Light is a dynamic light in game space whose radius shrinks over time.
type Light struct {
	Origin Vec3
	Radius float32
	// Decay is the radius lost per second after Spawn.
	Decay float32
	Spawn time.Duration
}

// RadiusAt returns the radius at client time t, never negative.
func (l Light) RadiusAt(t time.Duration) float32 {
	r := l.Radius
	if t > l.Spawn {
		r -= l.Decay * float32((t - l.Spawn).Seconds())
	}
	return max(r, 0)
}

// BuildLights fills the deferred uniforms with the view-space lights seen
// by cam. At most limit lights are kept, capped at MaxLights; lights past
// the cap are dropped in input order.
func BuildLights(u *DeferredUniforms, cam *Camera, lights []Light, t time.Duration, limit int) {
	limit = min(max(limit, 0), MaxLights)
	if len(lights) > limit {
		deferred.Logger().Warn("render: dynamic lights dropped", "lights", len(lights), "max", limit)
		lights = lights[:limit]
	}

	u.InvProjection = cam.InverseProjection()
	u.Lights = [MaxLights]PointLight{}
	view := cam.View()
	for i, l := range lights {
		u.Lights[i] = PointLight{
			Origin: TransformPoint(view, ToRenderSpace(l.Origin)),
			Radius: l.RadiusAt(t),
		}
	}
	u.LightCount = uint32(len(lights)) //nolint:gosec // at most MaxLights
}

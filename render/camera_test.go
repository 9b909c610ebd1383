// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"encoding/binary"
	"math"
	"testing"
	"time"
)

func near(a, b float32) bool { return math.Abs(float64(a-b)) < 1e-4 }

func nearVec(a, b Vec3) bool { return near(a[0], b[0]) && near(a[1], b[1]) && near(a[2], b[2]) }

func TestToRenderSpace(t *testing.T) {
	if got := ToRenderSpace(Vec3{1, 2, 3}); got != (Vec3{-2, 3, -1}) {
		t.Errorf("ToRenderSpace = %v, want [-2 3 -1]", got)
	}
}

func TestCameraView(t *testing.T) {
	tests := []struct {
		name   string
		origin Vec3
		angles Vec3
		point  Vec3 // game space
		want   Vec3 // view space
	}{
		{"forward", Vec3{}, Vec3{}, Vec3{10, 0, 0}, Vec3{0, 0, -10}},
		{"up", Vec3{}, Vec3{}, Vec3{0, 0, 10}, Vec3{0, 10, 0}},
		{"left", Vec3{}, Vec3{}, Vec3{0, 10, 0}, Vec3{-10, 0, 0}},
		{"translated", Vec3{5, 0, 0}, Vec3{}, Vec3{10, 0, 0}, Vec3{0, 0, -5}},
		{"yaw 90", Vec3{}, Vec3{0, 90, 0}, Vec3{0, 10, 0}, Vec3{0, 0, -10}},
		{"pitch down", Vec3{}, Vec3{90, 0, 0}, Vec3{0, 0, -10}, Vec3{0, 0, -10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := NewCamera(tt.origin, tt.angles, 1, 90)
			got := TransformPoint(cam.View(), ToRenderSpace(tt.point))
			if !nearVec(got, tt.want) {
				t.Errorf("view point = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInverseProjection(t *testing.T) {
	cam := NewCamera(Vec3{}, Vec3{}, 16.0/9.0, 90)
	id := mul(cam.Projection(), cam.InverseProjection())
	want := identity()
	for i := range id {
		if !near(id[i], want[i]) {
			t.Fatalf("P * P^-1 = %v, want identity", id)
		}
	}

	// A point on the near plane maps to depth 0, on the far plane to 1.
	for _, tc := range []struct{ z, depth float32 }{{-NearPlane, 0}, {-FarPlane, 1}} {
		p := cam.Projection()
		clipZ := p[10]*tc.z + p[14]
		clipW := -tc.z
		if !near(clipZ/clipW, tc.depth) {
			t.Errorf("depth at z=%v = %v, want %v", tc.z, clipZ/clipW, tc.depth)
		}
	}
}

func TestCameraFov(t *testing.T) {
	cam := NewCamera(Vec3{}, Vec3{}, 1, 90)
	if !near(cam.FovY(), math.Pi/2) {
		t.Errorf("square FovY = %v, want pi/2", cam.FovY())
	}
	wide := NewCamera(Vec3{}, Vec3{}, 2, 90)
	if wide.FovY() >= cam.FovY() {
		t.Errorf("wide FovY %v not below square %v", wide.FovY(), cam.FovY())
	}
}

func TestLightRadiusAt(t *testing.T) {
	l := Light{Radius: 300, Decay: 100, Spawn: 2 * time.Second}
	tests := []struct {
		t    time.Duration
		want float32
	}{
		{0, 300},
		{2 * time.Second, 300},
		{3 * time.Second, 200},
		{5 * time.Second, 0},
		{10 * time.Second, 0},
	}
	for _, tt := range tests {
		if got := l.RadiusAt(tt.t); !near(got, tt.want) {
			t.Errorf("RadiusAt(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestBuildLights(t *testing.T) {
	cam := NewCamera(Vec3{}, Vec3{}, 1, 90)
	lights := make([]Light, MaxLights+10)
	for i := range lights {
		lights[i] = Light{Origin: Vec3{float32(i + 1), 0, 0}, Radius: 100}
	}

	var u DeferredUniforms
	BuildLights(&u, cam, lights, 0, MaxLights)
	if u.LightCount != MaxLights {
		t.Fatalf("LightCount = %d, want %d", u.LightCount, MaxLights)
	}
	if !nearVec(u.Lights[0].Origin, Vec3{0, 0, -1}) || u.Lights[0].Radius != 100 {
		t.Errorf("light 0 = %+v", u.Lights[0])
	}
	if u.InvProjection != cam.InverseProjection() {
		t.Error("inverse projection not stored")
	}

	BuildLights(&u, cam, lights[:3], 0, MaxLights)
	if u.LightCount != 3 {
		t.Errorf("LightCount = %d, want 3", u.LightCount)
	}
	if u.Lights[3] != (PointLight{}) {
		t.Errorf("stale light past the count: %+v", u.Lights[3])
	}

	for _, limit := range []int{-1, 0, 2, MaxLights * 2} {
		BuildLights(&u, cam, lights, 0, limit)
		want := uint32(min(max(limit, 0), MaxLights))
		if u.LightCount != want {
			t.Errorf("limit %d: LightCount = %d, want %d", limit, u.LightCount, want)
		}
	}
}

func TestDeferredUniformsBytes(t *testing.T) {
	var u DeferredUniforms
	u.InvProjection[0] = 2
	u.LightCount = 2
	u.Lights[1] = PointLight{Origin: Vec3{1, 2, 3}, Radius: 50}

	b := u.Bytes()
	if len(b) != 64+16+16*MaxLights {
		t.Fatalf("len = %d", len(b))
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(b[0:])); got != 2 {
		t.Errorf("inv_projection[0] = %v", got)
	}
	if got := binary.LittleEndian.Uint32(b[64:]); got != 2 {
		t.Errorf("light_count = %d", got)
	}
	for i, want := range []float32{1, 2, 3, 50} {
		off := 80 + 16 + i*4
		if got := math.Float32frombits(binary.LittleEndian.Uint32(b[off:])); got != want {
			t.Errorf("light 1 component %d = %v, want %v", i, got, want)
		}
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"time"

	"github.com/gogpu/deferred/gfx"
	"github.com/gogpu/deferred/render/ui"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ConnectionKind says where the world state of a snapshot comes from.
type ConnectionKind uint8

// Connection kinds.
const (
	Disconnected ConnectionKind = iota
	Server
	Demo
)

// String returns the kind name.
func (k ConnectionKind) String() string {
	switch k {
	case Disconnected:
		return "disconnected"
	case Server:
		return "server"
	case Demo:
		return "demo"
	default:
		return "unknown"
	}
}

// Snapshot is the client state read once per frame. The renderer never
// mutates it.
type Snapshot struct {
	Kind ConnectionKind
	// Time is the client time.
	Time time.Duration

	ViewOrigin, ViewAngles         Vec3
	DemoViewOrigin, DemoViewAngles Vec3

	Lights []Light
	// ColorShift is the RGB screen tint and its strength in A.
	ColorShift [4]float32

	Stats        ui.Stats
	Items        ui.Item
	PickupTimes  [32]time.Duration
	FaceAnimTime time.Duration

	Intermission   ui.IntermissionKind
	StartTime      time.Duration
	CompletionTime time.Duration
}

// Connected reports whether s carries a world.
func (s *Snapshot) Connected() bool { return s != nil && s.Kind != Disconnected }

// Camera returns the camera of s: the demo camera during demo playback,
// the player view otherwise.
func (s *Snapshot) Camera(aspect, fovX float32) *Camera {
	if s.Kind == Demo {
		return NewCamera(s.DemoViewOrigin, s.DemoViewAngles, aspect, fovX)
	}
	return NewCamera(s.ViewOrigin, s.ViewAngles, aspect, fovX)
}

// Hud returns the HUD state of s.
func (s *Snapshot) Hud() ui.HudState {
	if s.Intermission != ui.IntermissionNone {
		return &ui.HudIntermission{
			Kind:       s.Intermission,
			Completion: s.CompletionTime - s.StartTime,
			Stats:      s.Stats,
		}
	}
	return &ui.HudActive{
		Stats:        s.Stats,
		Items:        s.Items,
		PickupTimes:  s.PickupTimes,
		FaceAnimTime: s.FaceAnimTime,
	}
}

// InputFocus is the input focus re-exported for frame callers.
type InputFocus = ui.InputFocus

// Input focus values.
const (
	FocusGame    = ui.FocusGame
	FocusConsole = ui.FocusConsole
	FocusMenu    = ui.FocusMenu
)

// FrameInput is everything a frame reads besides the graphics state. Nil
// pointers mark absent state.
type FrameInput struct {
	Snapshot *Snapshot
	// WorldReady reports that the world geometry is loaded and the
	// geometry pass filled the G-buffer.
	WorldReady bool
	Console    *ui.Console
	Menu       *ui.Menu
	Focus      InputFocus
	Resolution gfx.Extent2D
	// Fov is the horizontal field of view in degrees.
	Fov float32
}

// Surface is the presentation target of one frame.
type Surface struct {
	// View is nil when the surface has no image this tick.
	View   hal.TextureView
	Format gputypes.TextureFormat
	Extent gfx.Extent2D
}

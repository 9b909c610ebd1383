// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/deferred/gfx"
	"github.com/gogpu/deferred/render/ui"
	"github.com/gogpu/gputypes"
)

// newTestFrame builds a frame node with its renderers over a fresh state.
func newTestFrame(t *testing.T, sampleCount uint32, opts ...Option) (*Frame, *countingDevice) {
	t.Helper()
	s, dev := newTestState(t, sampleCount, opts...)
	lighting, err := NewDeferredRenderer(s, GBufferOf(s))
	if err != nil {
		t.Fatalf("NewDeferredRenderer: %v", err)
	}
	post, err := NewPostProcessRenderer(s, s.DeferredTarget().ResolveView())
	if err != nil {
		t.Fatalf("NewPostProcessRenderer: %v", err)
	}
	uiRenderer, err := ui.NewRenderer(s.Device())
	if err != nil {
		t.Fatalf("ui.NewRenderer: %v", err)
	}
	t.Cleanup(func() {
		uiRenderer.Destroy()
		post.Destroy()
		lighting.Destroy()
	})
	return NewFrame(s, lighting, post, uiRenderer, opts...), dev
}

func connectedSnapshot(lights int) *Snapshot {
	snap := &Snapshot{
		Kind:       Server,
		Time:       12 * time.Second,
		ViewOrigin: Vec3{0, 0, 32},
		ColorShift: [4]float32{1, 0, 0, 0.25},
		Stats:      ui.Stats{Health: 100, Ammo: 25},
		Items:      ui.ItemShells,
	}
	for i := 0; i < lights; i++ {
		snap.Lights = append(snap.Lights, Light{Origin: Vec3{float32(i), 0, 0}, Radius: 200})
	}
	return snap
}

func TestPlanWithoutSnapshot(t *testing.T) {
	f, _ := newTestFrame(t, 1)

	for _, snap := range []*Snapshot{nil, {Kind: Disconnected}} {
		plan := f.Plan(FrameInput{Snapshot: snap, WorldReady: true})
		if plan.Passes.Has(PassDeferred) {
			t.Error("deferred pass planned without a connection")
		}
		if !plan.Passes.Has(PassFinal | PassBlit) {
			t.Errorf("Passes = %b, want final and blit", plan.Passes)
		}
		if plan.PostProcess {
			t.Error("post-process planned without a world")
		}
		if _, ok := plan.UI.(*ui.Title); !ok {
			t.Errorf("UI = %T, want *ui.Title", plan.UI)
		}
	}
}

func TestPlanConnected(t *testing.T) {
	f, _ := newTestFrame(t, 1)

	plan := f.Plan(FrameInput{Snapshot: connectedSnapshot(3), WorldReady: true})
	if !plan.Passes.Has(PassDeferred | PassFinal | PassBlit) {
		t.Errorf("Passes = %b, want all", plan.Passes)
	}
	if plan.Camera == nil || !plan.PostProcess {
		t.Fatal("world passes not prepared")
	}
	if plan.Lighting.LightCount != 3 {
		t.Errorf("LightCount = %d, want 3", plan.Lighting.LightCount)
	}
	if plan.ColorShift != [4]float32{1, 0, 0, 0.25} {
		t.Errorf("ColorShift = %v", plan.ColorShift)
	}
	if plan.Elapsed != 12*time.Second {
		t.Errorf("Elapsed = %v, want client time", plan.Elapsed)
	}
	game, ok := plan.UI.(*ui.InGame)
	if !ok {
		t.Fatalf("UI = %T, want *ui.InGame", plan.UI)
	}
	if hud, ok := game.Hud.(*ui.HudActive); !ok || hud.Stats.Health != 100 || hud.Items != ui.ItemShells {
		t.Errorf("Hud = %#v", game.Hud)
	}

	// Connected but the world is not loaded yet: HUD only.
	plan = f.Plan(FrameInput{Snapshot: connectedSnapshot(3)})
	if plan.Passes.Has(PassDeferred) || plan.PostProcess {
		t.Error("world passes planned before the world is ready")
	}
	if _, ok := plan.UI.(*ui.InGame); !ok {
		t.Errorf("UI = %T, want *ui.InGame", plan.UI)
	}
}

func TestPlanLightCap(t *testing.T) {
	f, _ := newTestFrame(t, 1)
	plan := f.Plan(FrameInput{Snapshot: connectedSnapshot(MaxLights + 8), WorldReady: true})
	if plan.Lighting.LightCount != MaxLights {
		t.Errorf("LightCount = %d, want %d", plan.Lighting.LightCount, MaxLights)
	}

	f, _ = newTestFrame(t, 1, WithMaxLights(4))
	plan = f.Plan(FrameInput{Snapshot: connectedSnapshot(10), WorldReady: true})
	if plan.Lighting.LightCount != 4 {
		t.Errorf("LightCount with WithMaxLights(4) = %d", plan.Lighting.LightCount)
	}
}

func TestPlanIntermission(t *testing.T) {
	f, _ := newTestFrame(t, 1)
	snap := connectedSnapshot(0)
	snap.Intermission = ui.IntermissionLevel
	snap.StartTime = 10 * time.Second
	snap.CompletionTime = 95 * time.Second

	plan := f.Plan(FrameInput{Snapshot: snap})
	hud, ok := plan.UI.(*ui.InGame).Hud.(*ui.HudIntermission)
	if !ok {
		t.Fatalf("Hud = %T, want *ui.HudIntermission", plan.UI.(*ui.InGame).Hud)
	}
	if hud.Completion != 85*time.Second || hud.Kind != ui.IntermissionLevel {
		t.Errorf("intermission = %+v", hud)
	}
}

func TestPlanOverlay(t *testing.T) {
	f, _ := newTestFrame(t, 1)
	console := &ui.Console{Input: "map e1m1"}
	menu := &ui.Menu{Items: []string{"quit"}}

	tests := []struct {
		name    string
		snap    *Snapshot
		focus   InputFocus
		console *ui.Console
		menu    *ui.Menu
		want    string
	}{
		{"in game console focus", connectedSnapshot(0), FocusConsole, console, menu, "console"},
		{"in game menu focus", connectedSnapshot(0), FocusMenu, console, menu, "menu"},
		{"in game game focus", connectedSnapshot(0), FocusGame, console, menu, "none"},
		{"in game missing console", connectedSnapshot(0), FocusConsole, nil, menu, "none"},
		{"title console focus", nil, FocusConsole, console, menu, "console"},
		{"title game focus", nil, FocusGame, console, menu, "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := f.Plan(FrameInput{Snapshot: tt.snap, Focus: tt.focus, Console: tt.console, Menu: tt.menu})
			var overlay ui.Overlay
			switch s := plan.UI.(type) {
			case *ui.Title:
				overlay = s.Overlay
			case *ui.InGame:
				overlay = s.Overlay
			}
			got := "none"
			switch overlay.(type) {
			case *ui.ConsoleOverlay:
				got = "console"
			case *ui.MenuOverlay:
				got = "menu"
			}
			if got != tt.want {
				t.Errorf("overlay = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestElapsedFallsBackToWallClock(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f, _ := newTestFrame(t, 1, WithClock(func() time.Time { return now }))

	now = now.Add(3 * time.Second)
	if got := f.Elapsed(nil); got != 3*time.Second {
		t.Errorf("Elapsed(nil) = %v, want 3s", got)
	}
	if got := f.Elapsed(connectedSnapshot(0)); got != 12*time.Second {
		t.Errorf("Elapsed(snapshot) = %v, want 12s", got)
	}
}

func TestRunSurfaceUnavailable(t *testing.T) {
	f, dev := newTestFrame(t, 1)

	err := f.Run(FrameInput{Snapshot: connectedSnapshot(2), WorldReady: true}, Surface{})
	if !errors.Is(err, ErrSurfaceUnavailable) {
		t.Fatalf("err = %v, want ErrSurfaceUnavailable", err)
	}
	if dev.encoders != 0 {
		t.Errorf("created %d command encoders for an aborted frame", dev.encoders)
	}
}

func testSurface(t *testing.T, f *Frame) Surface {
	t.Helper()
	target, err := gfx.NewFinalPassTarget(f.State().Device(), testExtent)
	if err != nil {
		t.Fatalf("surface: %v", err)
	}
	t.Cleanup(target.Destroy)
	return Surface{View: target.ColorView(), Format: f.State().Format(), Extent: testExtent}
}

func TestRunFrames(t *testing.T) {
	for _, samples := range []uint32{1, 4} {
		f, dev := newTestFrame(t, samples)
		surface := testSurface(t, f)
		console := &ui.Console{Output: []string{"hello"}, Input: "echo"}

		inputs := []FrameInput{
			{},
			{Focus: FocusConsole, Console: console},
			{Snapshot: connectedSnapshot(5), WorldReady: true},
			{Snapshot: connectedSnapshot(5), WorldReady: true, Focus: FocusConsole, Console: console},
		}
		for i, in := range inputs {
			if err := f.Run(in, surface); err != nil {
				t.Fatalf("S=%d frame %d: %v", samples, i, err)
			}
		}
		if dev.encoders != len(inputs) {
			t.Errorf("S=%d: %d encoders for %d frames", samples, dev.encoders, len(inputs))
		}
		if len(f.Arena().Glyphs) == 0 {
			t.Errorf("S=%d: console frame produced no glyphs", samples)
		}
	}
}

func TestRunTitleWithoutOverlay(t *testing.T) {
	f, _ := newTestFrame(t, 1)
	if err := f.Run(FrameInput{Focus: FocusGame}, testSurface(t, f)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n := len(f.Arena().Quads) + len(f.Arena().Glyphs); n != 0 {
		t.Errorf("title screen without overlay produced %d commands", n)
	}
}

func TestValidateRebuildsOnFormatChange(t *testing.T) {
	f, dev := newTestFrame(t, 2)
	format := f.State().Format()

	rebuilt, err := f.Validate(format)
	if err != nil || rebuilt {
		t.Fatalf("Validate(same) = %v, %v", rebuilt, err)
	}

	pipelines := len(dev.pipelines)
	rebuilt, err = f.Validate(gputypes.TextureFormatRGBA8Unorm)
	if err != nil || !rebuilt {
		t.Fatalf("Validate(new) = %v, %v", rebuilt, err)
	}
	if f.State().Format() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format() = %v", f.State().Format())
	}
	if len(dev.pipelines) == pipelines {
		t.Error("no pipeline rebuilt")
	}
	for _, samples := range dev.pipelines[pipelines:] {
		if samples != 1 && samples != 2 {
			t.Errorf("pipeline rebuilt with %d samples", samples)
		}
	}

	surface := testSurface(t, f)
	surface.Format = gputypes.TextureFormatBGRA8Unorm
	if err := f.Run(FrameInput{}, surface); err != nil {
		t.Fatalf("Run after format change: %v", err)
	}
	if f.State().Format() != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("Run did not adopt the surface format")
	}
}

func TestRebuildRenderersAfterUpdate(t *testing.T) {
	f, _ := newTestFrame(t, 1)
	s := f.State()
	if err := s.Update(gfx.Extent2D{Width: 64, Height: 48}, 4); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := RebuildRenderers(s, f.lighting, f.post); err != nil {
		t.Fatalf("RebuildRenderers: %v", err)
	}
	if err := f.Run(FrameInput{Snapshot: connectedSnapshot(1), WorldReady: true}, testSurface(t, f)); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunRebindsRenderersAfterUpdate(t *testing.T) {
	f, dev := newTestFrame(t, 1)
	s := f.State()
	surface := testSurface(t, f)
	in := FrameInput{Snapshot: connectedSnapshot(2), WorldReady: true}

	if err := s.Update(gfx.Extent2D{Width: 64, Height: 48}, 4); err != nil {
		t.Fatalf("Update: %v", err)
	}
	lighting, post := dev.bindCount("deferred_bind"), dev.bindCount("postprocess_bind")
	if err := f.Run(in, surface); err != nil {
		t.Fatalf("Run after Update: %v", err)
	}
	if dev.bindCount("deferred_bind") != lighting+1 || dev.bindCount("postprocess_bind") != post+1 {
		t.Error("renderers were not rebound to the new targets")
	}

	if err := f.Run(in, surface); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if dev.bindCount("deferred_bind") != lighting+1 {
		t.Error("renderers rebound without a state change")
	}

	surface.Format = gputypes.TextureFormatRGBA8Unorm
	if err := f.Run(in, surface); err != nil {
		t.Fatalf("Run after format change: %v", err)
	}
	if dev.bindCount("deferred_bind") != lighting+2 {
		t.Error("renderers were not rebound after the pipelines were recreated")
	}
}

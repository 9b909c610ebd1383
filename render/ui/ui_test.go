// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ui

import (
	"testing"
	"time"

	"github.com/gogpu/deferred/gfx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/google/uuid"
)

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

type testResources struct {
	quad     *gfx.QuadPipeline
	glyph    *gfx.GlyphPipeline
	atlas    *gfx.Atlas
	atlasTex *gfx.Texture
	conchars *gfx.Texture
	samplers *gfx.Samplers
	gen      uuid.UUID
}

func (r *testResources) QuadPipeline() *gfx.QuadPipeline   { return r.quad }
func (r *testResources) GlyphPipeline() *gfx.GlyphPipeline { return r.glyph }
func (r *testResources) Atlas() *gfx.Atlas                 { return r.atlas }
func (r *testResources) AtlasTexture() *gfx.Texture        { return r.atlasTex }
func (r *testResources) ConcharsTexture() *gfx.Texture     { return r.conchars }
func (r *testResources) Samplers() *gfx.Samplers           { return r.samplers }
func (r *testResources) Generation() uuid.UUID             { return r.gen }

func newTestResources(t *testing.T, device hal.Device, queue hal.Queue) *testResources {
	t.Helper()
	res := &testResources{atlas: gfx.NewAtlas(256), gen: uuid.New()}
	for _, name := range []string{"conback", "sbar", "ibar", "num_1", "face1"} {
		if _, err := res.atlas.Insert(name, 8, 8, make([]byte, 8*8*4)); err != nil {
			t.Fatal(err)
		}
	}
	var err error
	if res.quad, err = gfx.NewQuadPipeline(device); err != nil {
		t.Fatal(err)
	}
	if res.glyph, err = gfx.NewGlyphPipeline(device); err != nil {
		t.Fatal(err)
	}
	if res.atlasTex, err = res.atlas.Upload(device, queue, "atlas"); err != nil {
		t.Fatal(err)
	}
	if res.conchars, err = gfx.CreateTexture(device, queue, "conchars", 128, 128, gfx.DiffuseData(make([]byte, 128*128*4))); err != nil {
		t.Fatal(err)
	}
	if res.samplers, err = gfx.NewSamplers(device); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		res.samplers.Destroy()
		res.conchars.Destroy(device)
		res.atlasTex.Destroy(device)
		res.glyph.Destroy()
		res.quad.Destroy()
	})
	return res
}

type draw struct {
	vertices, instances uint32
}

// recordingPass captures the draws recorded into it.
type recordingPass struct {
	pipelines int
	draws     []draw
}

func (p *recordingPass) SetPipeline(hal.RenderPipeline)               { p.pipelines++ }
func (p *recordingPass) SetBindGroup(uint32, hal.BindGroup, []uint32) {}
func (p *recordingPass) Draw(vertexCount, instanceCount, _, _ uint32) {
	p.draws = append(p.draws, draw{vertexCount, instanceCount})
}

func TestScreenSpaceTransform(t *testing.T) {
	tx, ty := ScreenSpaceVertexTranslate(1920, 1080, 0, 0)
	if tx != float32(0*2-1920)/float32(1920) || ty != float32(0*2-1080)/float32(1080) {
		t.Errorf("translate = (%v, %v), want (-1, -1)", tx, ty)
	}
	if tx != -1 || ty != -1 {
		t.Errorf("translate = (%v, %v), want (-1, -1)", tx, ty)
	}

	sx, sy := ScreenSpaceVertexScale(1920, 1080, 100, 50)
	if sx != float32(200)/float32(1920) || sy != float32(100)/float32(1080) {
		t.Errorf("scale = (%v, %v), want (200/1920, 100/1080)", sx, sy)
	}

	m := ScreenSpaceVertexTransform(1920, 1080, 100, 50, 0, 0)
	if m[0] != sx || m[5] != sy || m[10] != 1 || m[15] != 1 {
		t.Errorf("diagonal = %v %v %v %v", m[0], m[5], m[10], m[15])
	}
	if m[12] != tx || m[13] != ty {
		t.Errorf("translation column = (%v, %v)", m[12], m[13])
	}

	// the unit quad corner (1, 1) lands at the quad's far corner
	x := m[0]*1 + m[12]
	y := m[5]*1 + m[13]
	if x != sx+tx || y != sy+ty {
		t.Errorf("corner = (%v, %v)", x, y)
	}

	cx, cy := ScreenSpaceVertexTranslate(1920, 1080, 960, 540)
	if cx != 0 || cy != 0 {
		t.Errorf("center translate = (%v, %v), want (0, 0)", cx, cy)
	}
}

func TestLayoutScreenRect(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
		x, y   int32
		w, h   uint32
	}{
		{
			name:   "bottom left scaled",
			layout: Layout{Position: At(AnchorBottomLeft), Anchor: AnchorBottomLeft, Size: SizeScale(2)},
			x:      0, y: 0, w: 64, h: 32,
		},
		{
			name:   "top right absolute",
			layout: Layout{Position: At(AnchorTopRight), Anchor: AnchorTopRight, Size: SizeAbsolute(100, 50)},
			x:      540, y: 430, w: 100, h: 50,
		},
		{
			name:   "centered",
			layout: Layout{Position: At(AnchorCenter), Anchor: AnchorCenter, Size: SizeScale(1)},
			x:      304, y: 232, w: 32, h: 16,
		},
		{
			name:   "display fraction from top",
			layout: Layout{Position: At(AnchorTopLeft), Anchor: AnchorTopLeft, Size: SizeDisplay(1, 0.5)},
			x:      0, y: 240, w: 640, h: 240,
		},
		{
			name:   "offset",
			layout: Layout{Position: Offset(AnchorBottomLeft, 10, 20), Anchor: AnchorBottomLeft, Size: SizeScale(1)},
			x:      10, y: 20, w: 32, h: 16,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, w, h := tt.layout.ScreenRect(640, 480, 32, 16)
			if x != tt.x || y != tt.y || w != tt.w || h != tt.h {
				t.Errorf("ScreenRect = (%d,%d %dx%d), want (%d,%d %dx%d)", x, y, w, h, tt.x, tt.y, tt.w, tt.h)
			}
		})
	}
	if v := CoordAbsolute(7).Value(100); v != 7 {
		t.Errorf("CoordAbsolute(7).Value = %d", v)
	}
}

func TestSelectOverlay(t *testing.T) {
	console := &Console{}
	menu := &Menu{}
	tests := []struct {
		name    string
		focus   InputFocus
		console *Console
		menu    *Menu
		want    string
	}{
		{"console focus with both", FocusConsole, console, menu, "console"},
		{"menu focus with both", FocusMenu, console, menu, "menu"},
		{"game focus with both", FocusGame, console, menu, "none"},
		{"game focus with console", FocusGame, console, nil, "none"},
		{"console focus without console", FocusConsole, nil, menu, "none"},
		{"menu focus without menu", FocusMenu, console, nil, "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := "none"
			switch SelectOverlay(tt.focus, tt.console, tt.menu).(type) {
			case *ConsoleOverlay:
				got = "console"
			case *MenuOverlay:
				got = "menu"
			}
			if got != tt.want {
				t.Errorf("SelectOverlay = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestConsoleProportion(t *testing.T) {
	r := &Renderer{consoleProportion: DefaultConsoleProportion}
	if got := r.ConsoleProportion(&Title{}); got != 1 {
		t.Errorf("title proportion = %v, want 1", got)
	}
	if got := r.ConsoleProportion(&InGame{}); got != DefaultConsoleProportion {
		t.Errorf("in-game proportion = %v, want %v", got, DefaultConsoleProportion)
	}
	r.SetConsoleProportion(0.5)
	r.SetConsoleProportion(0) // ignored
	if got := r.ConsoleProportion(&InGame{}); got != 0.5 {
		t.Errorf("in-game proportion = %v, want 0.5", got)
	}

	extent := gfx.Extent2D{Width: 640, Height: 480}
	for _, tc := range []struct {
		state State
		want  uint32
	}{
		{&Title{Overlay: &ConsoleOverlay{Console: &Console{}}}, 480},
		{&InGame{Overlay: &ConsoleOverlay{Console: &Console{}}}, 240},
	} {
		var arena Arena
		r.Generate(tc.state, 0, extent, &arena)
		if len(arena.Quads) != 1 || arena.Quads[0].Pic != "conback" {
			t.Fatalf("quads = %+v", arena.Quads)
		}
		_, _, _, h := arena.Quads[0].Layout.ScreenRect(extent.Width, extent.Height, 64, 40)
		if h != tc.want {
			t.Errorf("%T: conback height = %d, want %d", tc.state, h, tc.want)
		}
	}
}

func TestConsoleGenerate(t *testing.T) {
	c := &ConsoleRenderer{Scale: 1}
	con := &Console{Output: []string{"first", "second"}, Input: "map e1m1", Cursor: 3}
	extent := gfx.Extent2D{Width: 320, Height: 200}

	var arena Arena
	c.Generate(con, 0, extent, 1, &arena)
	// input line, cursor, two output lines
	if len(arena.Glyphs) != 4 {
		t.Fatalf("glyph commands = %d, want 4", len(arena.Glyphs))
	}
	if arena.Glyphs[0].Text != "]map e1m1" {
		t.Errorf("input line = %q", arena.Glyphs[0].Text)
	}
	if arena.Glyphs[1].Glyph != consoleCursorGlyph {
		t.Errorf("cursor glyph = %d", arena.Glyphs[1].Glyph)
	}
	if arena.Glyphs[2].Text != "second" || arena.Glyphs[3].Text != "first" {
		t.Errorf("output order = %q, %q", arena.Glyphs[2].Text, arena.Glyphs[3].Text)
	}

	arena.Reset()
	c.Generate(con, 250*time.Millisecond, extent, 1, &arena)
	if len(arena.Glyphs) != 3 {
		t.Errorf("cursor should blink off: glyph commands = %d, want 3", len(arena.Glyphs))
	}
}

func TestMenuGenerate(t *testing.T) {
	m := &MenuRenderer{}
	menu := &Menu{Title: "ttl_main", Plaque: "qplaque", Items: []string{"single player", "quit"}, Selected: 1}

	var arena Arena
	m.Generate(menu, 0, &arena)
	if len(arena.Quads) != 2 {
		t.Errorf("quads = %d, want 2", len(arena.Quads))
	}
	if len(arena.Glyphs) != 3 {
		t.Fatalf("glyphs = %d, want 3", len(arena.Glyphs))
	}
	if arena.Glyphs[2].Glyph != menuCursorGlyph {
		t.Errorf("cursor glyph = %d, want %d", arena.Glyphs[2].Glyph, menuCursorGlyph)
	}

	arena.Reset()
	m.Generate(menu, 250*time.Millisecond, &arena)
	if arena.Glyphs[2].Glyph != menuCursorGlyph+1 {
		t.Errorf("spun cursor glyph = %d, want %d", arena.Glyphs[2].Glyph, menuCursorGlyph+1)
	}
}

func TestHudHelpers(t *testing.T) {
	pics := NumberPics(-5)
	if len(pics) != 2 || pics[0] != "num_minus" || pics[1] != "num_5" {
		t.Errorf("NumberPics(-5) = %v", pics)
	}
	if pics := NumberPics(1234); len(pics) != 3 || pics[0] != "num_9" {
		t.Errorf("NumberPics(1234) = %v", pics)
	}
	faces := []struct {
		health int32
		pain   bool
		want   string
	}{
		{100, false, "face1"},
		{200, false, "face1"},
		{50, false, "face3"},
		{10, true, "face_p5"},
		{-10, false, "face5"},
	}
	for _, f := range faces {
		if got := FacePic(f.health, f.pain); got != f.want {
			t.Errorf("FacePic(%d, %v) = %s, want %s", f.health, f.pain, got, f.want)
		}
	}
	if got := CompletionText(125 * time.Second); got != "2:05" {
		t.Errorf("CompletionText = %q", got)
	}
}

func TestHudGenerate(t *testing.T) {
	h := &HudRenderer{}

	var arena Arena
	h.Generate(&HudIntermission{Kind: IntermissionLevel, Completion: 90 * time.Second}, 0, &arena)
	if len(arena.Quads) != 2 || len(arena.Glyphs) != 3 {
		t.Errorf("intermission = %d quads, %d glyphs; want 2, 3", len(arena.Quads), len(arena.Glyphs))
	}
	if arena.Glyphs[0].Text != "1:30" {
		t.Errorf("completion text = %q", arena.Glyphs[0].Text)
	}

	arena.Reset()
	h.Generate(&HudIntermission{Kind: IntermissionFinale}, 0, &arena)
	if len(arena.Quads)+len(arena.Glyphs) != 0 {
		t.Error("finale should draw no HUD")
	}

	arena.Reset()
	active := &HudActive{Stats: Stats{Health: 100, Ammo: 25}, Items: ItemKey1}
	active.PickupTimes[17] = 10 * time.Second
	h.Generate(active, 10*time.Second+50*time.Millisecond, &arena)
	if !hasPic(arena.Quads, "sb_key1") {
		t.Error("key icon should show at the start of its flash")
	}
	arena.Reset()
	h.Generate(active, 10*time.Second+150*time.Millisecond, &arena)
	if hasPic(arena.Quads, "sb_key1") {
		t.Error("key icon should be hidden during the flash off phase")
	}
	arena.Reset()
	h.Generate(active, 12*time.Second, &arena)
	if !hasPic(arena.Quads, "sb_key1") || !hasPic(arena.Quads, "face1") {
		t.Error("key icon and face should show after the flash")
	}
}

func hasPic(quads []QuadCommand, name string) bool {
	for _, q := range quads {
		if q.Pic == name {
			return true
		}
	}
	return false
}

func TestGlyphInstances(t *testing.T) {
	extent := gfx.Extent2D{Width: 80, Height: 80}
	got := GlyphInstances(extent, []GlyphCommand{
		Text("abc", At(AnchorBottomLeft), AnchorBottomLeft, 1),
		Glyph(11, At(AnchorTopRight), AnchorTopRight, 2),
	}, nil)
	if len(got) != 4 {
		t.Fatalf("instances = %d, want 4", len(got))
	}
	wantX := []float32{float32(-80) / 80, float32(16-80) / 80, float32(32-80) / 80}
	for i, x := range wantX {
		if got[i].Position[0] != x || got[i].Position[1] != -1 {
			t.Errorf("glyph %d at (%v, %v), want (%v, -1)", i, got[i].Position[0], got[i].Position[1], x)
		}
		if got[i].Index != uint32("abc"[i]) {
			t.Errorf("glyph %d index = %d", i, got[i].Index)
		}
	}
	last := got[3]
	if last.Index != 11 || last.Size[0] != float32(32)/80 {
		t.Errorf("scaled glyph = %+v", last)
	}
	if last.Position[0] != float32(64*2-80)/80 {
		t.Errorf("top-right glyph x = %v", last.Position[0])
	}
}

func TestNegativeScaleIsEmpty(t *testing.T) {
	extent := gfx.Extent2D{Width: 80, Height: 80}
	got := GlyphInstances(extent, []GlyphCommand{
		Text("ab", At(AnchorCenter), AnchorCenter, -2),
		Glyph(7, At(AnchorBottomLeft), AnchorBottomLeft, -1),
	}, nil)
	if len(got) != 3 {
		t.Fatalf("instances = %d, want 3", len(got))
	}
	for i, g := range got {
		if g.Size != [2]float32{0, 0} {
			t.Errorf("glyph %d size = %v, want empty", i, g.Size)
		}
	}
	if got[0].Position != got[1].Position {
		t.Errorf("zero-width text advanced: %v, %v", got[0].Position, got[1].Position)
	}

	w, h := SizeScale(-1).Resolve(32, 8, 320, 200)
	if w != 0 || h != 0 {
		t.Errorf("SizeScale(-1) = %dx%d, want 0x0", w, h)
	}
	w, h = SizeDisplay(-0.5, 0.5).Resolve(32, 8, 320, 200)
	if w != 0 || h != 100 {
		t.Errorf("SizeDisplay(-0.5, 0.5) = %dx%d, want 0x100", w, h)
	}
}

func TestQuadInstancesSkipMissing(t *testing.T) {
	atlas := gfx.NewAtlas(64)
	if _, err := atlas.Insert("sbar", 32, 8, make([]byte, 32*8*4)); err != nil {
		t.Fatal(err)
	}
	got, missing := QuadInstances(atlas, gfx.Extent2D{Width: 320, Height: 200}, []QuadCommand{
		{Pic: "sbar", Layout: Layout{Position: At(AnchorBottomLeft), Anchor: AnchorBottomLeft, Size: SizeScale(1)}},
		{Pic: "nope", Layout: Layout{Position: At(AnchorBottomLeft), Anchor: AnchorBottomLeft, Size: SizeScale(1)}},
	}, nil)
	if len(got) != 1 || len(missing) != 1 || missing[0] != "nope" {
		t.Fatalf("instances = %d, missing = %v", len(got), missing)
	}
	if got[0].UV != [4]float32{0, 0, 0.5, 0.125} {
		t.Errorf("UV = %v", got[0].UV)
	}
	if got[0].Transform[0] != float32(64)/320 {
		t.Errorf("scale x = %v", got[0].Transform[0])
	}
}

func TestRenderDrawsQuadsBeforeGlyphs(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	res := newTestResources(t, device, queue)

	r, err := NewRenderer(device)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	defer r.Destroy()

	// the glyph is generated before the quad and covers the same region
	var arena Arena
	arena.Glyph(Text("ab", At(AnchorBottomLeft), AnchorBottomLeft, 1))
	arena.Quad(QuadCommand{Pic: "sbar", Layout: Layout{Position: At(AnchorBottomLeft), Anchor: AnchorBottomLeft, Size: SizeScale(1)}})

	pass := &recordingPass{}
	if err := r.Render(res, queue, &Title{}, 0, gfx.Extent2D{Width: 320, Height: 200}, pass, &arena); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := []draw{{6, 1}, {6, 2}}
	if len(pass.draws) != len(want) {
		t.Fatalf("draws = %v, want %v", pass.draws, want)
	}
	for i := range want {
		if pass.draws[i] != want[i] {
			t.Errorf("draw %d = %v, want %v", i, pass.draws[i], want[i])
		}
	}
	if pass.pipelines != 2 {
		t.Errorf("pipelines bound = %d, want 2", pass.pipelines)
	}
}

func TestRenderEmptyTitleDrawsNothing(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	res := newTestResources(t, device, queue)

	r, err := NewRenderer(device)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	defer r.Destroy()

	pass := &recordingPass{}
	var arena Arena
	if err := r.Render(res, queue, &Title{}, 0, gfx.Extent2D{Width: 320, Height: 200}, pass, &arena); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(pass.draws) != 0 || pass.pipelines != 0 {
		t.Errorf("recorded %d draws, %d pipelines; want none", len(pass.draws), pass.pipelines)
	}
}

func TestRenderInGameWithConsole(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	res := newTestResources(t, device, queue)

	r, err := NewRenderer(device)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	defer r.Destroy()

	state := &InGame{
		Hud:     &HudActive{Stats: Stats{Health: 100}},
		Overlay: SelectOverlay(FocusConsole, &Console{Output: []string{"hello"}}, &Menu{}),
	}
	var arena Arena
	pass := &recordingPass{}
	for frame := 0; frame < 3; frame++ {
		arena.Reset()
		pass.draws = pass.draws[:0]
		if err := r.Render(res, queue, state, time.Second, gfx.Extent2D{Width: 640, Height: 480}, pass, &arena); err != nil {
			t.Fatalf("Render: %v", err)
		}
		if len(pass.draws) != 2 {
			t.Fatalf("frame %d: draws = %v, want quads and glyphs", frame, pass.draws)
		}
	}
}

func TestArenaResetKeepsCapacity(t *testing.T) {
	var a Arena
	for i := 0; i < 10; i++ {
		a.Quad(QuadCommand{Pic: "x"})
		a.Glyph(Glyph(1, At(AnchorCenter), AnchorCenter, 1))
	}
	qc, gc := cap(a.Quads), cap(a.Glyphs)
	a.Reset()
	if len(a.Quads) != 0 || len(a.Glyphs) != 0 {
		t.Error("Reset should empty both lists")
	}
	if cap(a.Quads) != qc || cap(a.Glyphs) != gc {
		t.Error("Reset should keep capacity")
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"
	"time"

	"github.com/gogpu/deferred"
	"github.com/gogpu/deferred/gfx"
	"github.com/gogpu/deferred/render/ui"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/google/uuid"
)

// DefaultFov is the horizontal field of view used when a frame input
// carries none.
const DefaultFov = 90

// Pass is a set of frame passes.
type Pass uint8

// Frame passes, in execution order. The geometry pass that fills the
// G-buffer runs upstream of the frame.
const (
	PassDeferred Pass = 1 << iota
	PassFinal
	PassBlit
)

// Has reports whether p contains q.
func (p Pass) Has(q Pass) bool { return p&q == q }

// FramePlan is what a frame will encode for a given input.
type FramePlan struct {
	Passes Pass
	// Camera and Lighting are set when PassDeferred is planned.
	Camera   *Camera
	Lighting DeferredUniforms
	// PostProcess is set when the lit world is composited in the final pass.
	PostProcess bool
	ColorShift  [4]float32
	UI          ui.State
	Elapsed     time.Duration
}

// Frame encodes one presented frame: lighting, post-process and UI
// composite, then the blit to the surface. It holds the command arena that
// is reused from frame to frame.
//
// A Frame is driven from a single goroutine.
type Frame struct {
	state    *GraphicsState
	lighting *DeferredRenderer
	post     *PostProcessRenderer
	ui       *ui.Renderer
	// bound is the state generation the renderers were last bound to.
	bound uuid.UUID

	opts  options
	start time.Time
	arena ui.Arena
}

// NewFrame creates a frame node drawing with state and the given renderers.
// Elapsed time without a snapshot is measured from this call.
func NewFrame(state *GraphicsState, lighting *DeferredRenderer, post *PostProcessRenderer,
	uiRenderer *ui.Renderer, opts ...Option) *Frame {
	o := applyOptions(opts)
	uiRenderer.SetConsoleProportion(o.consoleProportion)
	return &Frame{
		state:    state,
		lighting: lighting,
		post:     post,
		ui:       uiRenderer,
		bound:    state.Generation(),
		opts:     o,
		start:    o.clock(),
	}
}

// SetState swaps in a reconstructed graphics state and the renderers bound
// to it.
func (f *Frame) SetState(state *GraphicsState, lighting *DeferredRenderer, post *PostProcessRenderer) {
	f.state, f.lighting, f.post = state, lighting, post
	f.bound = state.Generation()
}

// rebind rebuilds the renderers when the state's targets or pipelines were
// replaced since they were bound.
func (f *Frame) rebind() error {
	gen := f.state.Generation()
	if gen == f.bound {
		return nil
	}
	if f.lighting != nil {
		if err := f.lighting.Rebuild(f.state, GBufferOf(f.state)); err != nil {
			return err
		}
	}
	if f.post != nil {
		if err := f.post.Rebuild(f.state, f.state.DeferredTarget().ResolveView()); err != nil {
			return err
		}
	}
	f.bound = gen
	deferred.Logger().Debug("render: renderers rebound", "generation", gen)
	return nil
}

// State returns the graphics state the frame draws with.
func (f *Frame) State() *GraphicsState { return f.state }

// Arena returns the command arena of the last frame.
func (f *Frame) Arena() *ui.Arena { return &f.arena }

// Validate rebuilds the pipelines for surfaceFormat when it differs from
// the state's presentation format. It reports whether a rebuild happened.
func (f *Frame) Validate(surfaceFormat gputypes.TextureFormat) (bool, error) {
	if surfaceFormat == f.state.Format() {
		return false, nil
	}
	f.state.SetFormat(surfaceFormat)
	if err := f.state.RecreatePipelines(f.state.SampleCount()); err != nil {
		return true, err
	}
	return true, nil
}

// Elapsed returns the client time of snap, or the wall-clock time since
// the frame was created when there is none.
func (f *Frame) Elapsed(snap *Snapshot) time.Duration {
	if snap.Connected() {
		return snap.Time
	}
	return f.opts.clock().Sub(f.start)
}

// Plan decides what a frame encodes for in. It reads no GPU state.
func (f *Frame) Plan(in FrameInput) FramePlan {
	plan := FramePlan{Passes: PassFinal | PassBlit, Elapsed: f.Elapsed(in.Snapshot)}
	overlay := ui.SelectOverlay(in.Focus, in.Console, in.Menu)

	snap := in.Snapshot
	if !snap.Connected() {
		plan.UI = &ui.Title{Overlay: overlay}
		return plan
	}
	plan.UI = &ui.InGame{Hud: snap.Hud(), Overlay: overlay}

	if in.WorldReady {
		res := in.Resolution
		if res.Width == 0 || res.Height == 0 {
			res = f.state.Extent()
		}
		fov := in.Fov
		if fov <= 0 {
			fov = DefaultFov
		}
		plan.Passes |= PassDeferred
		plan.Camera = snap.Camera(res.Clamped().Aspect(), fov)
		BuildLights(&plan.Lighting, plan.Camera, snap.Lights, snap.Time, f.opts.maxLights)
		plan.PostProcess = true
		plan.ColorShift = snap.ColorShift
	}
	return plan
}

// Run encodes and submits one frame into surface. Renderers bound to an
// older state generation are rebuilt first. It returns
// ErrSurfaceUnavailable without submitting anything when the surface has
// no view.
func (f *Frame) Run(in FrameInput, surface Surface) error {
	if surface.View == nil {
		deferred.Logger().Warn("render: frame skipped", "err", ErrSurfaceUnavailable)
		return ErrSurfaceUnavailable
	}
	if _, err := f.Validate(surface.Format); err != nil {
		return err
	}
	if err := f.rebind(); err != nil {
		return err
	}

	plan := f.Plan(in)
	f.arena.Reset()

	s := f.state
	device, queue := s.Device(), s.Queue()
	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "frame_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	if plan.Passes.Has(PassDeferred) && f.lighting != nil {
		rp := encoder.BeginRenderPass(s.DeferredTarget().RenderPassDescriptor())
		f.lighting.RecordDraw(s, queue, rp, &plan.Lighting)
		rp.End()
	}

	rp := encoder.BeginRenderPass(s.FinalTarget().RenderPassDescriptor())
	if plan.PostProcess && f.post != nil {
		f.post.RecordDraw(s, queue, rp, plan.ColorShift)
	}
	if err := f.ui.Render(s, queue, plan.UI, plan.Elapsed, s.Extent(), rp, &f.arena); err != nil {
		rp.End()
		encoder.DiscardEncoding()
		return fmt.Errorf("render UI: %w", err)
	}
	rp.End()

	rp = encoder.BeginRenderPass(gfx.SurfacePassDescriptor(surface.View))
	s.BlitPipeline().Blit(rp)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	return submitAndWait(device, queue, cmdBuf)
}

// submitAndWait submits cmdBuf and blocks until the GPU finished it.
func submitAndWait(device hal.Device, queue hal.Queue, cmdBuf hal.CommandBuffer) error {
	fence, err := device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer device.DestroyFence(fence)

	if err := queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := device.Wait(fence, 1, 5*time.Second)
	if err != nil || !ok {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", ok, err)
	}
	return nil
}

// Command deferredview renders frames with the deferred pipeline into an
// offscreen surface. It runs without game data by using generated assets.
//
// Usage:
//
//	deferredview -frames 120 -screenshot shot.bmp
//	deferredview -config renderer.toml -assets ./id1
//	deferredview -noop -frames 10
//	deferredview -check-shaders
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chewxy/math32"
	"github.com/gogpu/deferred"
	"github.com/gogpu/deferred/asset"
	"github.com/gogpu/deferred/config"
	"github.com/gogpu/deferred/gfx"
	"github.com/gogpu/deferred/render"
	"github.com/gogpu/deferred/render/ui"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	// Register the Vulkan backend for hal.GetBackend.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// surfaceFormat is the format of the offscreen presentation texture.
const surfaceFormat = gputypes.TextureFormatBGRA8Unorm

// frameStep is the client time between two rendered frames.
const frameStep = 16 * time.Millisecond

func main() {
	var (
		configPath   = flag.String("config", "", "TOML renderer configuration")
		assetDir     = flag.String("assets", "", "asset directory holding gfx/palette.lmp and gfx.wad (overrides config)")
		frames       = flag.Int("frames", 60, "number of frames to render")
		screenshot   = flag.String("screenshot", "", "write the last frame to this BMP file")
		checkShaders = flag.Bool("check-shaders", false, "compile every shader with naga and exit")
		useNoop      = flag.Bool("noop", false, "use the noop backend instead of Vulkan")
	)
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "deferredview",
	})
	deferred.SetLogger(slog.New(logger))

	if err := run(logger, *configPath, *assetDir, *frames, *screenshot, *checkShaders, *useNoop); err != nil {
		logger.Fatal("deferredview failed", "err", err)
	}
}

func run(logger *log.Logger, configPath, assetDir string, frames int, screenshot string, checkShaders, useNoop bool) error {
	if checkShaders {
		if err := gfx.ValidateShaders(); err != nil {
			return err
		}
		logger.Info("all shaders compiled", "count", len(gfx.Shaders()))
		return nil
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if assetDir != "" {
		cfg.AssetDir = assetDir
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	dev, err := openDevice(useNoop)
	if err != nil {
		return err
	}
	defer dev.close()

	v, err := newViewer(dev.device, dev.queue, cfg)
	if err != nil {
		return err
	}
	defer v.destroy()

	if cfg.WatchAssets && cfg.AssetDir != "" {
		w, err := render.WatchAssets(cfg.AssetDir, render.DefaultDebounce)
		if err != nil {
			return err
		}
		defer w.Close()
		v.reloads = w.Events()
	}

	for i := 0; i < frames; i++ {
		v.pollReload()
		in := v.input(i)
		if in.WorldReady {
			if err := v.frame.State().ClearGeometry(); err != nil {
				return fmt.Errorf("frame %d: geometry: %w", i, err)
			}
		}
		if err := v.frame.Run(in, v.surface()); err != nil {
			if errors.Is(err, render.ErrSurfaceUnavailable) {
				continue
			}
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	logger.Info("frames rendered", "count", frames, "backend", dev.name)

	if screenshot != "" {
		img, err := render.Screenshot(v.frame.State())
		if err != nil {
			return err
		}
		f, err := os.Create(screenshot)
		if err != nil {
			return err
		}
		if err := render.WriteBMP(f, img); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logger.Info("screenshot written", "path", screenshot)
	}
	return nil
}

// openedDevice is a HAL device and the instance that owns it.
type openedDevice struct {
	name     string
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
}

func (d *openedDevice) close() {
	d.device.Destroy()
	d.instance.Destroy()
}

func openDevice(useNoop bool) (*openedDevice, error) {
	var (
		instance hal.Instance
		name     string
		err      error
	)
	if useNoop {
		name = "noop"
		instance, err = noop.API{}.CreateInstance(nil)
	} else {
		name = "vulkan"
		backend, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, errors.New("vulkan backend not available")
		}
		instance, err = backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	}
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("no GPU adapters found")
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}
	deferred.Logger().Info("device opened", "backend", name, "adapter", selected.Info.Name)
	return &openedDevice{name: name, instance: instance, device: openDev.Device, queue: openDev.Queue}, nil
}

// viewer owns the graphics state, the renderers and the offscreen surface.
type viewer struct {
	device hal.Device
	queue  hal.Queue
	cfg    config.Config
	assets asset.Source

	lighting *render.DeferredRenderer
	post     *render.PostProcessRenderer
	ui       *ui.Renderer
	frame    *render.Frame

	surfaceTex  hal.Texture
	surfaceView hal.TextureView

	console *ui.Console
	reloads <-chan struct{}
}

func newViewer(device hal.Device, queue hal.Queue, cfg config.Config) (*viewer, error) {
	v := &viewer{device: device, queue: queue, cfg: cfg}
	if cfg.AssetDir != "" {
		v.assets = asset.Dir(cfg.AssetDir)
	} else {
		v.assets = asset.Synthetic()
	}

	state, err := v.newState()
	if err != nil {
		return nil, err
	}
	if v.lighting, v.post, err = newRenderers(state); err != nil {
		state.Destroy()
		return nil, err
	}
	if v.ui, err = ui.NewRenderer(device); err != nil {
		v.destroy()
		state.Destroy()
		return nil, err
	}
	v.frame = render.NewFrame(state, v.lighting, v.post, v.ui,
		render.WithConsoleProportion(cfg.ConsoleProportion))

	if err := v.createSurface(); err != nil {
		v.destroy()
		return nil, err
	}
	v.console = &ui.Console{
		Output: []string{"deferredview", fmt.Sprintf("%dx%d, %d samples", cfg.Width, cfg.Height, cfg.SampleCount())},
	}
	return v, nil
}

func (v *viewer) newState() (*render.GraphicsState, error) {
	return render.New(v.device, v.queue, v.cfg.Extent(), v.cfg.SampleCount(), v.assets,
		render.WithPresentationFormat(surfaceFormat))
}

func newRenderers(state *render.GraphicsState) (*render.DeferredRenderer, *render.PostProcessRenderer, error) {
	lighting, err := render.NewDeferredRenderer(state, render.GBufferOf(state))
	if err != nil {
		return nil, nil, err
	}
	post, err := render.NewPostProcessRenderer(state, state.DeferredTarget().ResolveView())
	if err != nil {
		lighting.Destroy()
		return nil, nil, err
	}
	return lighting, post, nil
}

func (v *viewer) createSurface() error {
	extent := v.cfg.Extent().Clamped()
	tex, err := v.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "offscreen_surface",
		Size:          extent.Extent3D(),
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        surfaceFormat,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create surface: %w", err)
	}
	view, err := v.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "offscreen_surface_view"})
	if err != nil {
		v.device.DestroyTexture(tex)
		return fmt.Errorf("create surface view: %w", err)
	}
	v.surfaceTex, v.surfaceView = tex, view
	return nil
}

func (v *viewer) surface() render.Surface {
	return render.Surface{View: v.surfaceView, Format: surfaceFormat, Extent: v.cfg.Extent()}
}

// pollReload rebuilds the graphics state when the asset watcher asked for
// it. The old state stays in use if the rebuild fails.
func (v *viewer) pollReload() {
	select {
	case <-v.reloads:
	default:
		return
	}
	state, err := v.newState()
	if err != nil {
		deferred.Logger().Warn("asset reload failed, keeping previous state", "err", err)
		return
	}
	lighting, post, err := newRenderers(state)
	if err != nil {
		state.Destroy()
		deferred.Logger().Warn("asset reload failed, keeping previous state", "err", err)
		return
	}

	old := v.frame.State()
	v.lighting.Destroy()
	v.post.Destroy()
	old.Destroy()
	v.lighting, v.post = lighting, post
	v.frame.SetState(state, lighting, post)
	deferred.Logger().Info("assets reloaded", "generation", state.Generation())
}

// input returns a scripted frame: the title console first, then a level
// with orbiting lights and the HUD.
func (v *viewer) input(i int) render.FrameInput {
	in := render.FrameInput{
		Console:    v.console,
		Resolution: v.cfg.Extent(),
		Fov:        v.cfg.Fov,
	}
	if i < 10 {
		in.Focus = render.FocusConsole
		return in
	}

	t := time.Duration(i) * frameStep
	snap := &render.Snapshot{
		Kind:       render.Server,
		Time:       t,
		ViewOrigin: render.Vec3{0, 0, 48},
		ViewAngles: render.Vec3{0, float32(i%360) * 0.5, 0},
		ColorShift: [4]float32{0.8, 0.2, 0.1, 0.1},
		Stats:      ui.Stats{Health: int32(100 - i%100), Armor: 50, Ammo: 25}, //nolint:gosec // bounded
		Items:      ui.ItemShells | ui.ItemArmor1 | ui.ItemKey1,
	}
	for l := 0; l < 6; l++ {
		angle := float32(l*60+i) * math32.Pi / 180
		snap.Lights = append(snap.Lights, render.Light{
			Origin: render.Vec3{128 * math32.Cos(angle), 128 * math32.Sin(angle), 64},
			Radius: 200,
			Spawn:  t,
		})
	}
	in.Snapshot = snap
	// The viewer draws no world geometry; the loop clears the G-buffer
	// before each lit frame.
	in.WorldReady = true
	in.Focus = render.FocusGame
	if i%50 > 40 {
		in.Focus = render.FocusConsole
	}
	return in
}

func (v *viewer) destroy() {
	if v.surfaceView != nil {
		v.device.DestroyTextureView(v.surfaceView)
		v.surfaceView = nil
	}
	if v.surfaceTex != nil {
		v.device.DestroyTexture(v.surfaceTex)
		v.surfaceTex = nil
	}
	if v.frame != nil {
		v.frame.State().Destroy()
		v.frame = nil
	}
	v.ui.Destroy()
	v.post.Destroy()
	v.lighting.Destroy()
	v.ui, v.post, v.lighting = nil, nil, nil
}

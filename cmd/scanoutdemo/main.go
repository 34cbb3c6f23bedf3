//go:build linux

// Command scanoutdemo drives both layer variants over memfd-backed GPUs:
// a display controller layer alternating between composited frames and
// direct scanout of a client buffer, and an offscreen layer dumping its
// frames as PNG.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/scanout"
	"github.com/gogpu/scanout/alloc"
	"github.com/gogpu/scanout/buffer"
	"github.com/gogpu/scanout/damage"
	"github.com/gogpu/scanout/layer"
	"github.com/gogpu/scanout/render"
)

func main() {
	var (
		width    = flag.Int("width", 640, "output width")
		height   = flag.Int("height", 360, "output height")
		frames   = flag.Int("frames", 6, "frames to run")
		gpus     = flag.Int("gpus", 1, "number of GPUs (1 or 2)")
		dumpDir  = flag.String("dump", "", "directory for offscreen PNG frames")
		noDirect = flag.Bool("no-direct", false, "disable direct scanout")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	scanout.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	opts := []scanout.Option{scanout.WithDumpDir(*dumpDir)}
	if *noDirect {
		opts = append(opts, scanout.WithDirectScanoutDisabled(true))
	}
	cfg := scanout.ConfigFromEnv(opts...)
	size := image.Pt(*width, *height)

	if err := runDisplay(cfg, size, *frames, *gpus); err != nil {
		log.Fatalf("display layer: %v", err)
	}
	if err := runOffscreen(cfg, size, *frames); err != nil {
		log.Fatalf("offscreen layer: %v", err)
	}
}

func runDisplay(cfg scanout.Config, size image.Point, frames, gpus int) error {
	budget := alloc.NewBudget(alloc.DefaultBudgetMB << 20)
	card0 := render.NewDevice(alloc.NewDevice("card0", alloc.WithSharedBudget(budget)))
	platform := render.NewPlatform(card0)
	var layerOpts []layer.Option
	if gpus > 1 {
		card1 := render.NewDevice(alloc.NewDevice("card1", alloc.WithSharedBudget(budget)))
		platform.AddDevice(card1)
		layerOpts = append(layerOpts, layer.WithRenderDevice(card1))
	}
	layerOpts = append(layerOpts, layer.WithPlatform(platform))

	pipeline := &demoPipeline{
		device: card0,
		size:   size,
		formats: buffer.FormatTable{
			buffer.FormatXRGB8888: {buffer.ModifierLinear, buffer.ModifierInvalid},
			buffer.FormatARGB8888: {buffer.ModifierLinear},
		},
	}
	r := render.NewSoftwareRenderer()
	l := layer.NewDisplayControllerLayer(pipeline, r, feedback{}, cfg, layerOpts...)
	defer l.ReleaseBuffers()

	client, err := newClientBuffer(card0.Allocator(), size)
	if err != nil {
		return err
	}
	defer client.Unref()
	item := &demoItem{surface: &demoSurface{buf: client}, damage: damage.Infinite()}

	for i := range frames {
		if i%2 == 1 && l.Scanout(item) {
			fmt.Printf("frame %d: direct scanout of %v\n", i, l.CurrentBuffer())
			continue
		}
		info, err := l.BeginFrame()
		if err != nil {
			return err
		}
		r.Clear(info.Target, color.RGBA{R: 0x20, G: 0x20, B: 0x30, A: 0xff})
		box := image.Rect(0, 0, 64, 64).Add(image.Pt(i*32, i*16))
		r.FillRect(info.Target, box, color.RGBA{R: 0xf0, G: 0x80, A: 0xff})
		if err := l.EndFrame(info.Repaint, damage.Rect(box)); err != nil {
			return err
		}
		fmt.Printf("frame %d: composited %v age %d damage %v\n", i, l.CurrentBuffer(), info.Age, l.CurrentDamage().Bounds())
	}
	fmt.Printf("budget: %v\n", budget.Stats())
	return nil
}

func runOffscreen(cfg scanout.Config, size image.Point, frames int) error {
	dev := render.NewDevice(alloc.NewDevice("virtual"))
	r := render.NewSoftwareRenderer()
	l := layer.NewOffscreenLayer(dev, r, size, cfg)
	defer l.ReleaseBuffers()

	for i := range frames {
		info, err := l.BeginFrame()
		if err != nil {
			return err
		}
		shade := uint8(i * 255 / max(frames-1, 1))
		r.Clear(info.Target, color.RGBA{R: shade, G: 0x40, B: 0xff - shade, A: 0xff})
		if err := l.EndFrame(info.Repaint, info.Repaint); err != nil {
			return err
		}
	}
	fmt.Printf("offscreen: %d frames\n", l.Frames())
	return nil
}

// demoPipeline accepts only linear buffers for scanout.
type demoPipeline struct {
	device  *render.Device
	size    image.Point
	formats buffer.FormatTable
}

func (p *demoPipeline) Device() *render.Device                        { return p.device }
func (p *demoPipeline) BufferSize() image.Point                       { return p.size }
func (p *demoPipeline) RenderOrientation() render.PlaneTransformation { return render.Rotate0 }
func (p *demoPipeline) BufferOrientation() render.PlaneTransformation { return render.Rotate0 }
func (p *demoPipeline) Formats() buffer.FormatTable                   { return p.formats }

func (p *demoPipeline) TestScanout(b *buffer.Buffer) error {
	if b.Modifier() != buffer.ModifierLinear {
		return fmt.Errorf("%w: %v is not linear", buffer.ErrTestCommit, b)
	}
	return nil
}

// clientBuffer plays a client that shares a linear dmabuf.
type clientBuffer struct {
	b    *buffer.Buffer
	desc buffer.Descriptor
}

func newClientBuffer(dev buffer.Allocator, size image.Point) (*clientBuffer, error) {
	b, err := buffer.NewFromAllocation(dev, size, buffer.FormatXRGB8888,
		[]buffer.Modifier{buffer.ModifierLinear}, buffer.UsageScanout|buffer.UsageWrite)
	if err != nil {
		return nil, err
	}
	if _, ok := b.ExportDescriptors(); !ok {
		b.Unref()
		return nil, fmt.Errorf("export of client buffer failed")
	}
	desc, _ := b.Descriptor()
	return &clientBuffer{b: b, desc: desc}, nil
}

func (c *clientBuffer) Ref()                          { c.b.Ref() }
func (c *clientBuffer) Unref()                        { c.b.Unref() }
func (c *clientBuffer) Size() image.Point             { return c.b.Size() }
func (c *clientBuffer) Descriptor() buffer.Descriptor { return c.desc }

type demoSurface struct{ buf buffer.ClientBuffer }

func (s *demoSurface) BufferTransform() render.Transform { return render.TransformNormal }
func (s *demoSurface) Buffer() buffer.ClientBuffer       { return s.buf }

type demoItem struct {
	surface layer.ClientSurface
	damage  damage.Region
}

func (i *demoItem) Surface() layer.ClientSurface { return i.surface }
func (i *demoItem) Damage() damage.Region        { return i.damage }
func (i *demoItem) ResetDamage()                 { i.damage = nil }

type feedback struct{}

func (feedback) ScanoutSuccessful(layer.ClientSurface) {
	scanout.Logger().Info("feedback: scanout successful")
}

func (feedback) ScanoutFailed(_ layer.ClientSurface, formats buffer.FormatTable) {
	scanout.Logger().Info("feedback: scanout failed", "formats", formats.Formats())
}

func (feedback) RenderingSurface() {}

package main

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	_ "github.com/gogpu/wgpu/hal/vulkan"
	"github.com/kovidgoyal/gllcms"
	"github.com/kovidgoyal/gllcms/frames"
	"github.com/kovidgoyal/gllcms/gpu"
	"github.com/kovidgoyal/gllcms/prism/convert"
)

type runner interface {
	Process(in *image.NRGBA) (*image.NRGBA, error)
	Stats() gllcms.Stats
	Close()
}

type cpu_runner struct {
	filter *gllcms.Filter[*image.NRGBA]
}

func new_cpu_runner(store *gllcms.Store) *cpu_runner {
	return &cpu_runner{filter: gllcms.NewFilter[*image.NRGBA](store, &convert.CPUBackend{})}
}

func (c *cpu_runner) Process(in *image.NRGBA) (*image.NRGBA, error) {
	out := image.NewNRGBA(in.Rect)
	if err := c.filter.Process(nil, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *cpu_runner) Stats() gllcms.Stats { return c.filter.Stats() }
func (c *cpu_runner) Close()              { c.filter.Close() }

type gpu_runner struct {
	device    *gpu.Device
	resources *gpu.Resources
	filter    *gllcms.Filter[gpu.Frame]
}

func new_gpu_runner(store *gllcms.Store) (*gpu_runner, error) {
	dev, err := gpu.OpenBackend(gputypes.BackendVulkan)
	if err != nil {
		return nil, err
	}
	res := &gpu.Resources{}
	if err = res.EnsureInitialized(dev); err != nil {
		dev.Close()
		return nil, err
	}
	gllcms.Logger().Info("using GPU", "adapter", dev.Name())
	return &gpu_runner{device: dev, resources: res, filter: gllcms.NewFilter[gpu.Frame](store, res)}, nil
}

// packed returns the pixels of img without row padding
func packed(img *image.NRGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if img.Stride == w*4 {
		return img.Pix[:w*h*4]
	}
	ans := make([]byte, 0, w*h*4)
	for y := range h {
		ans = append(ans, img.Pix[y*img.Stride:y*img.Stride+w*4]...)
	}
	return ans
}

func (g *gpu_runner) Process(img *image.NRGBA) (*image.NRGBA, error) {
	w, h := uint32(img.Rect.Dx()), uint32(img.Rect.Dy())
	in, err := g.resources.CreateFrame("gllcms_input", w, h)
	if err != nil {
		return nil, err
	}
	defer g.resources.DestroyFrame(in)
	out, err := g.resources.CreateFrame("gllcms_output", w, h)
	if err != nil {
		return nil, err
	}
	defer g.resources.DestroyFrame(out)
	if err = g.resources.WriteFrame(in, packed(img)); err != nil {
		return nil, err
	}
	if err = g.filter.Process(g.device, in, out); err != nil {
		return nil, err
	}
	pix, err := g.resources.ReadFrame(out)
	if err != nil {
		return nil, err
	}
	return &image.NRGBA{Pix: pix, Stride: int(w) * 4, Rect: image.Rect(0, 0, int(w), int(h))}, nil
}

func (g *gpu_runner) Stats() gllcms.Stats { return g.filter.Stats() }

func (g *gpu_runner) Close() {
	g.filter.Close()
	g.device.Close()
}

func process_file(r runner, input string, output *string, s gllcms.Settings) error {
	img, err := frames.Open(input)
	if err != nil {
		return err
	}
	if img.ColorSpace == frames.ColorSpaceUncalibrated && s.ICCProfilePath == "" {
		gllcms.Logger().Warn("input is not tagged as sRGB, use --icc to supply its profile", "file", input)
	}
	if img.IsAnimated() {
		img.Coalesce()
	}
	apply := func(src image.Image) (image.Image, error) {
		in, err := convert.ToNRGBA(src)
		if err != nil {
			return nil, err
		}
		return r.Process(in)
	}
	for _, f := range img.Frames {
		if f.Image, err = apply(f.Image); err != nil {
			return fmt.Errorf("%s: frame %d: %w", input, f.Number, err)
		}
	}
	if img.DefaultImage != nil {
		if img.DefaultImage, err = apply(img.DefaultImage); err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}
	}
	if *output == "" {
		*output = output_path(input, img)
	}
	return frames.Save(img, *output)
}

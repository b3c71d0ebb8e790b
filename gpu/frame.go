package gpu

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Frame is an RGBA8Unorm texture together with the view used to read or
// render it.
type Frame struct {
	Texture       hal.Texture
	View          hal.TextureView
	Width, Height uint32
}

// WebGPU requires BytesPerRow of buffer copies aligned to 256 bytes.
const copyPitchAlignment = 256

func aligned_row(width uint32) uint32 {
	return (width*4 + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// CreateFrame allocates a texture usable both as input and as output of
// Render and Copy.
func (r *Resources) CreateFrame(label string, width, height uint32) (f Frame, err error) {
	if r.device == nil {
		return f, ErrNotInitialized
	}
	tex, err := r.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        FrameFormat,
		Usage: gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return f, fmt.Errorf("create frame texture %s: %w", label, err)
	}
	view, err := r.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        FrameFormat,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		r.device.DestroyTexture(tex)
		return f, fmt.Errorf("create frame view %s: %w", label, err)
	}
	return Frame{Texture: tex, View: view, Width: width, Height: height}, nil
}

func (r *Resources) DestroyFrame(f Frame) {
	if r.device == nil {
		return
	}
	if f.View != nil {
		r.device.DestroyTextureView(f.View)
	}
	if f.Texture != nil {
		r.device.DestroyTexture(f.Texture)
	}
}

// WriteFrame uploads tightly packed RGBA pixels into f.
func (r *Resources) WriteFrame(f Frame, pix []byte) error {
	if r.device == nil {
		return ErrNotInitialized
	}
	if need := int(f.Width) * int(f.Height) * 4; len(pix) < need {
		return fmt.Errorf("%w: need %d bytes of pixel data have %d", ErrFrameSize, need, len(pix))
	}
	if err := r.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: f.Texture, MipLevel: 0},
		pix,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: f.Width * 4, RowsPerImage: f.Height},
		&hal.Extent3D{Width: f.Width, Height: f.Height, DepthOrArrayLayers: 1},
	); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame copies the contents of f back to the CPU as tightly packed
// RGBA pixels.
func (r *Resources) ReadFrame(f Frame) ([]byte, error) {
	if r.device == nil {
		return nil, ErrNotInitialized
	}
	w, h := f.Width, f.Height
	pitch := aligned_row(w)
	size := uint64(pitch) * uint64(h)
	encoder, err := r.begin("readback")
	if err != nil {
		return nil, err
	}
	staging, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "readback_staging",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer r.device.DestroyBuffer(staging)

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: f.Texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(f.Texture, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: pitch, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: f.Texture, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: f.Texture,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	if err := r.finish(encoder); err != nil {
		return nil, err
	}
	m, err := r.device.MapBuffer(staging, 0, size)
	if err != nil {
		return nil, fmt.Errorf("map readback buffer: %w", err)
	}
	defer r.device.UnmapBuffer(staging)
	readback := unsafe.Slice((*byte)(m.Ptr), size)
	row := int(w) * 4
	tight := make([]byte, row*int(h))
	if int(pitch) == row {
		copy(tight, readback)
		return tight, nil
	}
	for y := range int(h) {
		copy(tight[y*row:(y+1)*row], readback[y*int(pitch):])
	}
	return tight, nil
}

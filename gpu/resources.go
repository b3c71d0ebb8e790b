// Package gpu owns the GPU side of LUT color correction: the shader, the
// storage buffer holding the LUT and the per frame render pass that applies
// it.
package gpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/kovidgoyal/gllcms/prism/lut"
)

// Binding slots shared with shaders/lut.wgsl.
const (
	LUTBinding   = 0
	InputBinding = 1
)

// FrameFormat is the only texture format frames may use.
const FrameFormat = gputypes.TextureFormatRGBA8Unorm

const (
	submitTimeout = 5 * time.Second
	pollInterval  = 100 * time.Microsecond
)

// Resources is the set of GPU objects used to apply a LUT to frames. The
// zero value is ready for use. It is not safe for concurrent use; a single
// render goroutine owns it for the lifetime of a session.
type Resources struct {
	device hal.Device
	queue  hal.Queue

	shader      hal.ShaderModule
	bindLayout  hal.BindGroupLayout
	pipeLayout  hal.PipelineLayout
	lutPipeline hal.RenderPipeline
	lutBuffer   hal.Buffer

	// valid only between Bind and Unbind
	bindGroup hal.BindGroup

	staging []byte
}

// halProvider is implemented by rendering contexts that expose their HAL
// device and queue.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// Initialized reports whether EnsureInitialized has succeeded since the
// last Release.
func (r *Resources) Initialized() bool { return r.device != nil }

// EnsureInitialized creates the shader, pipelines and LUT buffer on the
// device exposed by provider. Calls after the first success are no-ops. On
// failure nothing is retained.
func (r *Resources) EnsureInitialized(provider any) error {
	if r.device != nil {
		return nil
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return ErrNoHALAccess
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("%w: HalDevice is %T", ErrNoHALAccess, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("%w: HalQueue is %T", ErrNoHALAccess, hp.HalQueue())
	}
	r.device, r.queue = device, queue
	if err := r.create(); err != nil {
		r.Release()
		return err
	}
	slogger().Info("gpu: LUT resources initialized", "buffer_bytes", lut.ByteSize)
	return nil
}

func (r *Resources) create() (err error) {
	code, err := compileShader(lutShaderWGSL)
	if err != nil {
		return err
	}
	if r.shader, err = r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "lut_shader",
		Source: hal.ShaderSource{SPIRV: code},
	}); err != nil {
		return fmt.Errorf("%w: create shader module: %w", ErrShader, err)
	}

	if r.bindLayout, err = r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "lut_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    LUTBinding,
				Visibility: gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
			},
			{
				Binding:    InputBinding,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
		},
	}); err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}

	if r.pipeLayout, err = r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "lut_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{r.bindLayout},
	}); err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}

	if r.lutPipeline, err = r.createPipeline("lut_pipeline", lutEntryPoint); err != nil {
		return err
	}

	if r.lutBuffer, err = r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "lut_buffer",
		Size:  lut.ByteSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	}); err != nil {
		return fmt.Errorf("create LUT buffer: %w", err)
	}
	return nil
}

func (r *Resources) createPipeline(label, fragment_entry_point string) (hal.RenderPipeline, error) {
	p, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  label,
		Layout: r.pipeLayout,
		Vertex: hal.VertexState{
			Module:     r.shader,
			EntryPoint: vertexEntryPoint,
		},
		Fragment: &hal.FragmentState{
			Module:     r.shader,
			EntryPoint: fragment_entry_point,
			Targets: []gputypes.ColorTargetState{
				{Format: FrameFormat, WriteMask: gputypes.ColorWriteMaskAll},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", ErrShader, label, err)
	}
	return p, nil
}

// Upload replaces the contents of the LUT buffer with l.
func (r *Resources) Upload(l *lut.LUT) error {
	if r.device == nil {
		return ErrNotInitialized
	}
	if r.staging == nil {
		r.staging = make([]byte, lut.ByteSize)
	}
	if err := l.Encode(r.staging); err != nil {
		return err
	}
	start := time.Now()
	if err := r.queue.WriteBuffer(r.lutBuffer, 0, r.staging); err != nil {
		return fmt.Errorf("upload LUT: %w", err)
	}
	slogger().Debug("gpu: uploaded LUT", "bytes", len(r.staging), "took", time.Since(start))
	return nil
}

// Bind attaches the LUT buffer at LUTBinding and the input frame at
// InputBinding for the draws recorded into pass.
func (r *Resources) Bind(pass hal.RenderPassEncoder, in Frame) error {
	if r.device == nil {
		return ErrNotInitialized
	}
	r.Unbind()
	bg, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "lut_bind_group",
		Layout: r.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: LUTBinding, Resource: gputypes.BufferBinding{
				Buffer: r.lutBuffer.NativeHandle(), Offset: 0, Size: lut.ByteSize,
			}},
			{Binding: InputBinding, Resource: gputypes.TextureViewBinding{
				TextureView: in.View.NativeHandle(),
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	r.bindGroup = bg
	pass.SetBindGroup(0, bg, nil)
	return nil
}

// Unbind releases the binding made by Bind. Must only be called once the
// submission using it has completed.
func (r *Resources) Unbind() {
	if r.bindGroup != nil {
		r.device.DestroyBindGroup(r.bindGroup)
		r.bindGroup = nil
	}
}

// Render draws in into out through the LUT.
func (r *Resources) Render(in, out Frame) error {
	if err := r.check(in, out); err != nil {
		return err
	}
	encoder, err := r.begin("lut")
	if err != nil {
		return err
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "lut_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       out.View,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	rp.SetPipeline(r.lutPipeline)
	if err := r.Bind(rp, in); err != nil {
		rp.End()
		encoder.DiscardEncoding()
		return err
	}
	defer r.Unbind()
	rp.Draw(3, 1, 0, 0)
	rp.End()
	return r.finish(encoder)
}

// Copy transfers in to out unchanged with a texture to texture copy. Used
// when no correction is needed.
func (r *Resources) Copy(in, out Frame) error {
	if err := r.check(in, out); err != nil {
		return err
	}
	encoder, err := r.begin("copy")
	if err != nil {
		return err
	}
	encoder.TransitionTextures([]hal.TextureBarrier{
		{Texture: in.Texture, Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageTextureBinding, NewUsage: gputypes.TextureUsageCopySrc,
		}},
		{Texture: out.Texture, Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment, NewUsage: gputypes.TextureUsageCopyDst,
		}},
	})
	encoder.CopyTextureToTexture(in.Texture, out.Texture, []hal.TextureCopy{{
		SrcBase: hal.ImageCopyTexture{Texture: in.Texture, Aspect: gputypes.TextureAspectAll},
		DstBase: hal.ImageCopyTexture{Texture: out.Texture, Aspect: gputypes.TextureAspectAll},
		Size:    hal.Extent3D{Width: in.Width, Height: in.Height, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{
		{Texture: in.Texture, Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc, NewUsage: gputypes.TextureUsageTextureBinding,
		}},
		{Texture: out.Texture, Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopyDst, NewUsage: gputypes.TextureUsageRenderAttachment,
		}},
	})
	return r.finish(encoder)
}

func (r *Resources) check(in, out Frame) error {
	if r.device == nil {
		return ErrNotInitialized
	}
	if in.Width != out.Width || in.Height != out.Height {
		return fmt.Errorf("%w: %dx%d != %dx%d", ErrFrameSize, in.Width, in.Height, out.Width, out.Height)
	}
	return nil
}

func (r *Resources) begin(label string) (hal.CommandEncoder, error) {
	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label + "_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label + "_frame"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	return encoder, nil
}

// finish ends encoding, submits and waits for the GPU to complete the work.
func (r *Resources) finish(encoder hal.CommandEncoder) error {
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)
	idx, err := r.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	deadline := time.Now().Add(submitTimeout)
	for r.queue.PollCompleted() < idx {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: submission %d still pending after %s", ErrTimeout, idx, submitTimeout)
		}
		time.Sleep(pollInterval)
	}
	return nil
}

// Release destroys all GPU objects. The device itself belongs to the
// provider and is left alone. A later EnsureInitialized starts afresh.
func (r *Resources) Release() {
	if r.device == nil {
		return
	}
	r.Unbind()
	if r.lutBuffer != nil {
		r.device.DestroyBuffer(r.lutBuffer)
	}
	if r.lutPipeline != nil {
		r.device.DestroyRenderPipeline(r.lutPipeline)
	}
	if r.pipeLayout != nil {
		r.device.DestroyPipelineLayout(r.pipeLayout)
	}
	if r.bindLayout != nil {
		r.device.DestroyBindGroupLayout(r.bindLayout)
	}
	if r.shader != nil {
		r.device.DestroyShaderModule(r.shader)
	}
	*r = Resources{}
	slogger().Debug("gpu: LUT resources released")
}

package wgpu_backend

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-xmas/common"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// gpuBuffer pairs a wgpu buffer with the label and size it was created with.
type gpuBuffer struct {
	label  string
	size   uint64
	buffer *wgpu.Buffer
}

func (b *gpuBuffer) Label() string { return b.label }
func (b *gpuBuffer) Size() uint64  { return b.size }
func (b *gpuBuffer) Release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}

// wgpuRendererBackendImpl drives a WebGPU device presenting to a window surface.
type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue
	log    *slog.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTextureView      *wgpu.TextureView
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode
	sampleCount renderer.MSAASampleCount

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ renderer.RendererBackend = &wgpuRendererBackendImpl{}

// BackendOption configures the WebGPU backend before the device is requested.
type BackendOption func(*backendConfig)

type backendConfig struct {
	forceFallbackAdapter bool
	sampleCount          renderer.MSAASampleCount
}

// WithMSAA sets the multisample anti-aliasing sample count. The default is MSAA4x.
//
// Parameters:
//   - count: the MSAASampleCount to use (MSAAOff or MSAA4x)
//
// Returns:
//   - BackendOption: a function that applies the MSAA option
func WithMSAA(count renderer.MSAASampleCount) BackendOption {
	return func(c *backendConfig) {
		c.sampleCount = count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - BackendOption: a function that applies the force software renderer option
func WithForceSoftwareRenderer(force bool) BackendOption {
	return func(c *backendConfig) {
		c.forceFallbackAdapter = force
	}
}

// NewWGPURendererBackend creates a WebGPU instance, surface, adapter and device for a window.
// The calling goroutine is locked to its OS thread; every later backend call must happen on it.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor of the target window
//   - options: variadic list of BackendOption functions
//
// Returns:
//   - renderer.RendererBackend: the backend
//   - error: wrapping renderer.ErrResourceCreation if no adapter or device is available
func NewWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...BackendOption) (renderer.RendererBackend, error) {
	cfg := backendConfig{sampleCount: renderer.MSAA4x}
	for _, opt := range options {
		opt(&cfg)
	}

	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		log:         common.ComponentLogger("wgpu"),
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: cfg.sampleCount,
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: request adapter: %v", renderer.ErrResourceCreation, err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: request device: %v", renderer.ErrResourceCreation, err)
	}
	w.device = d
	w.queue = d.GetQueue()
	w.log.Info("device ready", "msaa", uint32(cfg.sampleCount), "fallback", cfg.forceFallbackAdapter)

	return w, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}

	if msaaEnabled {
		// The render pass draws into the MSAA texture and resolves into the swapchain view.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}
	}

	// Depth texture sample count must match the color attachment.
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    b.msaaTextureView, // nil when MSAA is off; set in BeginFrame
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: storeOp,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
	b.log.Debug("surface configured", "width", width, "height", height)
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode renderer.PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case renderer.PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case renderer.PresentModeVSync:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func toWGPUUsage(usage renderer.BufferUsage) wgpu.BufferUsage {
	u := wgpu.BufferUsageCopyDst
	if usage&renderer.BufferUsageUniform != 0 {
		u |= wgpu.BufferUsageUniform
	}
	if usage&renderer.BufferUsageVertex != 0 {
		u |= wgpu.BufferUsageVertex
	}
	if usage&renderer.BufferUsageIndex != 0 {
		u |= wgpu.BufferUsageIndex
	}
	return u
}

func (b *wgpuRendererBackendImpl) CreateBuffer(label string, usage renderer.BufferUsage, size uint64) (bind_group_provider.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// WebGPU buffers are zero-initialized on creation.
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: toWGPUUsage(usage),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", renderer.ErrResourceCreation, label, err)
	}
	return &gpuBuffer{label: label, size: size, buffer: buf}, nil
}

func (b *wgpuRendererBackendImpl) CreateBufferInit(label string, usage renderer.BufferUsage, data []byte) (bind_group_provider.Buffer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: toWGPUUsage(usage),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", renderer.ErrResourceCreation, label, err)
	}
	b.queue.WriteBuffer(buf, 0, data)
	return &gpuBuffer{label: label, size: uint64(len(data)), buffer: buf}, nil
}

func (b *wgpuRendererBackendImpl) WriteBuffer(buf bind_group_provider.Buffer, offset uint64, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	gb, ok := buf.(*gpuBuffer)
	if !ok || gb.buffer == nil {
		return fmt.Errorf("%w: %q is not a live device buffer", renderer.ErrBufferBounds, buf.Label())
	}
	if offset+uint64(len(data)) > gb.size {
		return fmt.Errorf("%w: %q write [%d,%d) exceeds size %d", renderer.ErrBufferBounds, gb.label, offset, offset+uint64(len(data)), gb.size)
	}
	b.queue.WriteBuffer(gb.buffer, offset, data)
	return nil
}

// uniformLayoutEntries describes a group 0 layout of uniform buffers visible to both stages.
func uniformLayoutEntries(bindings []pipeline.UniformBinding) []wgpu.BindGroupLayoutEntry {
	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(bindings))
	for _, ub := range bindings {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    ub.Binding,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
		}
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		entry.Buffer.MinBindingSize = ub.MinSize
		entries = append(entries, entry)
	}
	return entries
}

func (b *wgpuRendererBackendImpl) CreateBindGroup(label string, entries []renderer.BindGroupEntry) (bind_group_provider.BindGroup, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bindings := make([]pipeline.UniformBinding, 0, len(entries))
	groupEntries := make([]wgpu.BindGroupEntry, 0, len(entries))
	for _, e := range entries {
		gb, ok := e.Buffer.(*gpuBuffer)
		if !ok {
			return nil, fmt.Errorf("%w: binding %d is not a device buffer", renderer.ErrResourceCreation, e.Binding)
		}
		bindings = append(bindings, pipeline.UniformBinding{Binding: e.Binding, MinSize: gb.size})
		groupEntries = append(groupEntries, wgpu.BindGroupEntry{
			Binding: e.Binding,
			Buffer:  gb.buffer,
			Offset:  0,
			Size:    wgpu.WholeSize,
		})
	}

	layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   label + " Layout",
		Entries: uniformLayoutEntries(bindings),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s layout: %v", renderer.ErrResourceCreation, label, err)
	}
	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label,
		Layout:  layout,
		Entries: groupEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", renderer.ErrResourceCreation, label, err)
	}
	return bindGroup, nil
}

func toWGPUVertexLayouts(layouts []pipeline.VertexBufferLayout) []wgpu.VertexBufferLayout {
	out := make([]wgpu.VertexBufferLayout, 0, len(layouts))
	for _, l := range layouts {
		attrs := make([]wgpu.VertexAttribute, 0, len(l.Attributes))
		for _, a := range l.Attributes {
			format := wgpu.VertexFormatFloat32
			switch a.Format {
			case pipeline.VertexFormatFloat32x3:
				format = wgpu.VertexFormatFloat32x3
			case pipeline.VertexFormatFloat32x4:
				format = wgpu.VertexFormatFloat32x4
			}
			attrs = append(attrs, wgpu.VertexAttribute{
				Format:         format,
				Offset:         a.Offset,
				ShaderLocation: a.Location,
			})
		}
		stepMode := wgpu.VertexStepModeVertex
		if l.StepMode == pipeline.StepModeInstance {
			stepMode = wgpu.VertexStepModeInstance
		}
		out = append(out, wgpu.VertexBufferLayout{
			ArrayStride: l.ArrayStride,
			StepMode:    stepMode,
			Attributes:  attrs,
		})
	}
	return out
}

func (b *wgpuRendererBackendImpl) CreateRenderPipeline(p pipeline.Pipeline) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return nil, errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}
	if b.surfaceFormat == nil {
		return nil, errors.New("surface must be configured before creating a render pipeline")
	}

	vs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: vertexShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: vertexShader.Source(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", renderer.ErrResourceCreation, vertexShader.Key(), err)
	}
	fs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: fragmentShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: fragmentShader.Source(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", renderer.ErrResourceCreation, fragmentShader.Key(), err)
	}

	groupLayout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   p.PipelineKey() + " Uniform Layout",
		Entries: uniformLayoutEntries(p.UniformBindings()),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s layout: %v", renderer.ErrResourceCreation, p.PipelineKey(), err)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: []*wgpu.BindGroupLayout{groupLayout},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", renderer.ErrResourceCreation, p.PipelineKey(), err)
	}

	cullMode := wgpu.CullModeNone
	switch p.CullMode() {
	case pipeline.CullModeFront:
		cullMode = wgpu.CullModeFront
	case pipeline.CullModeBack:
		cullMode = wgpu.CullModeBack
	}
	frontFace := wgpu.FrontFaceCCW
	if p.FrontFace() == pipeline.FrontFaceCW {
		frontFace = wgpu.FrontFaceCW
	}
	depthCompare := wgpu.CompareFunctionLess
	if !p.DepthTestEnabled() {
		depthCompare = wgpu.CompareFunctionAlways
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    toWGPUVertexLayouts(p.VertexLayouts()),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets: []wgpu.ColorTargetState{
				{
					Format:    *b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: frontFace,
			CullMode:  cullMode,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", renderer.ErrResourceCreation, p.PipelineKey(), err)
	}

	return created, nil
}

func (b *wgpuRendererBackendImpl) BeginFrame(clear [4]float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Acquiring a second surface image before presenting the first is a validation error.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}
	if b.renderPassDescriptor == nil {
		return fmt.Errorf("surface not configured")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	// With MSAA the swapchain view is the resolve target, otherwise it is drawn to directly.
	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	b.renderPassDescriptor.ColorAttachments[0].ClearValue = wgpu.Color{
		R: clear[0], G: clear[1], B: clear[2], A: clear[3],
	}
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) DrawIndexed(cmd renderer.DrawCommand) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return renderer.ErrNoFrame
	}
	renderPipeline, ok := cmd.Pipeline.Handle().(*wgpu.RenderPipeline)
	if !ok {
		return fmt.Errorf("%w: %s has no device pipeline", renderer.ErrUnknownPipeline, cmd.Pipeline.PipelineKey())
	}
	vertex, vok := cmd.Mesh.VertexBuffer().(*gpuBuffer)
	index, iok := cmd.Mesh.IndexBuffer().(*gpuBuffer)
	instance, nok := cmd.Mesh.InstanceBuffer().(*gpuBuffer)
	if !vok || !iok || !nok {
		return fmt.Errorf("mesh %q is missing device buffers", cmd.Mesh.Label())
	}

	b.framePass.SetPipeline(renderPipeline)
	for i, bg := range cmd.BindGroups {
		if group, ok := bg.BindGroup().(*wgpu.BindGroup); ok {
			b.framePass.SetBindGroup(uint32(i), group, nil)
		}
	}

	b.framePass.SetVertexBuffer(0, vertex.buffer, 0, wgpu.WholeSize)
	b.framePass.SetVertexBuffer(1, instance.buffer, 0, wgpu.WholeSize)
	b.framePass.SetIndexBuffer(index.buffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(cmd.Mesh.IndexCount()), cmd.InstanceCount, 0, 0, 0)
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return renderer.ErrNoFrame
	}
	b.framePass.End()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameEncoder = nil
		b.framePass = nil
		b.frameSurface = nil
		b.frameView = nil
		return err
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.framePass = nil
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

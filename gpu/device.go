package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Device is a standalone rendering context for use outside a host that
// already owns a GPU device. It satisfies the provider contract of
// EnsureInitialized.
type Device struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	name     string
}

func (d *Device) HalDevice() any { return d.device }
func (d *Device) HalQueue() any  { return d.queue }
func (d *Device) Name() string   { return d.name }

func (d *Device) Close() {
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.queue = nil
}

type instanceFactory interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// OpenBackend opens a device on the named backend, which must have been
// registered by importing its package, for example
// github.com/gogpu/wgpu/hal/vulkan.
func OpenBackend(b gputypes.Backend) (*Device, error) {
	backend, ok := hal.GetBackend(b)
	if !ok {
		return nil, fmt.Errorf("gpu: backend %v not available", b)
	}
	return OpenDevice(backend)
}

// OpenDevice opens the first hardware adapter exposed by api, falling back
// to whatever adapter is available.
func OpenDevice(api instanceFactory) (*Device, error) {
	instance, err := api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, errors.New("gpu: no GPU adapters found")
	}
	selected := &adapters[0]
	for i := range adapters {
		if t := adapters[i].Info.DeviceType; t == gputypes.DeviceTypeDiscreteGPU || t == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}
	slogger().Info("gpu: opened device", "adapter", selected.Info.Name)
	return &Device{instance: instance, device: openDev.Device, queue: openDev.Queue, name: selected.Info.Name}, nil
}

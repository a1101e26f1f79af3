package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Registers the platform HAL backends plus the software fallback.
	_ "github.com/gogpu/wgpu/hal/allbackends"

	"github.com/gogpu/photon"
	"github.com/gogpu/photon/backend"
)

// Priority is the registry priority of the wgpu backend.
const Priority = 100

func init() {
	backend.Register("wgpu", Priority,
		func(cfg backend.Config) (photon.Device, error) {
			return NewHeadless(cfg.Width, cfg.Height)
		},
		func() bool {
			_, err := hal.SelectBestBackend()
			return err == nil
		},
	)
}

// NewFromProvider creates a device sharing the GPU of provider, usually a
// gogpu application. The provider must expose its HAL objects through
// HalDevice and HalQueue. The target format defaults to the surface format.
func NewFromProvider(provider gpucontext.DeviceProvider, width, height int, opts ...Option) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	if provider == nil {
		return nil, &photon.ContextInitError{Backend: "wgpu", Err: errors.New("nil device provider")}
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, &photon.ContextInitError{Backend: "wgpu", Err: errors.New("provider does not expose HAL types")}
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, &photon.ContextInitError{Backend: "wgpu", Err: errors.New("provider HalDevice is not hal.Device")}
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, &photon.ContextInitError{Backend: "wgpu", Err: errors.New("provider HalQueue is not hal.Queue")}
	}

	if f := provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		opts = append([]Option{WithFormat(f)}, opts...)
	}
	return New(device, queue, width, height, opts...)
}

// NewHeadless opens the best available HAL backend and adapter and creates
// an offscreen device on it. Destroy also closes the adapter device and the
// instance.
func NewHeadless(width, height int, opts ...Option) (*Device, error) {
	b, err := hal.SelectBestBackend()
	if err != nil {
		return nil, &photon.ContextInitError{Backend: "wgpu", Err: err}
	}
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, &photon.ContextInitError{Backend: "wgpu", Err: fmt.Errorf("create %s instance: %w", b.Variant(), err)}
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, &photon.ContextInitError{Backend: "wgpu", Err: errors.New("no GPU adapters found")}
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	open, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, &photon.ContextInitError{Backend: "wgpu", Err: fmt.Errorf("open device: %w", err)}
	}

	d, err := New(open.Device, open.Queue, width, height, opts...)
	if err != nil {
		open.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.release = func() {
		open.Device.Destroy()
		instance.Destroy()
	}
	photon.Logger().Info("wgpu: headless device opened", "backend", b.Variant().String(), "adapter", selected.Info.Name)
	return d, nil
}

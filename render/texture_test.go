// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/scanout/buffer"
)

// createNoopDevice creates a noop device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		t.Fatal("no noop adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { openDev.Device.Destroy() })
	return openDev.Device, openDev.Queue
}

// halProvider exposes HAL types the way a host context does.
type halProvider struct {
	mockProvider
	device any
	queue  any
}

func (p halProvider) HalDevice() any { return p.device }
func (p halProvider) HalQueue() any  { return p.queue }

func TestHALTextureImporter(t *testing.T) {
	device, queue := createNoopDevice(t)
	ti := NewHALTextureImporter(device, queue)

	b := newTestBuffer(t, 32, 16, buffer.FormatXRGB8888, true)
	tex, err := ti.ImportTexture(b)
	if err != nil {
		t.Fatalf("ImportTexture() error = %v", err)
	}
	if tex.Width() != 32 || tex.Height() != 16 {
		t.Errorf("texture size = %dx%d", tex.Width(), tex.Height())
	}
	if tex.Format() != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("Format() = %v", tex.Format())
	}
	if tex.BufferID() != b.ID() || tex.HAL() == nil {
		t.Error("texture not linked to buffer")
	}
	tex.Destroy()
	tex.Destroy()
	if tex.HAL() != nil {
		t.Error("HAL() after Destroy should be nil")
	}
}

func TestHALTextureImporterErrors(t *testing.T) {
	device, queue := createNoopDevice(t)
	ti := NewHALTextureImporter(device, queue)

	if _, err := ti.ImportTexture(newTestBuffer(t, 4, 4, buffer.FormatNV12, true)); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("NV12 import error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := ti.ImportTexture(newTestBuffer(t, 4, 4, buffer.FormatXRGB8888, false)); !errors.Is(err, buffer.ErrMapping) {
		t.Errorf("unmappable import error = %v, want ErrMapping", err)
	}
}

func TestNewTextureImporterFromProvider(t *testing.T) {
	device, queue := createNoopDevice(t)

	tests := []struct {
		name     string
		provider any
		wantErr  bool
	}{
		{"hal provider", halProvider{device: device, queue: queue}, false},
		{"plain provider", mockProvider{}, true},
		{"wrong device type", halProvider{device: "gpu", queue: queue}, true},
		{"nil queue", halProvider{device: device}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ti, err := NewTextureImporterFromProvider(tt.provider)
			if tt.wantErr {
				if !errors.Is(err, ErrNoHAL) {
					t.Errorf("error = %v, want ErrNoHAL", err)
				}
				return
			}
			if err != nil || ti == nil {
				t.Fatalf("NewTextureImporterFromProvider() = (%v, %v)", ti, err)
			}
		})
	}

	d := NewDevice(memAllocator{name: "card0"}, WithDeviceHandle(halProvider{device: device, queue: queue}))
	if d.Textures() == nil {
		t.Error("device with HAL provider has no texture importer")
	}
}

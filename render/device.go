// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/scanout"
	"github.com/gogpu/scanout/buffer"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host compositor owns the GPU context and passes it in; this module
// never creates one. DeviceHandle is an alias for gpucontext.DeviceProvider
// so any gpucontext provider can be used directly.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used for headless devices that only allocate buffers.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}

// Device is one GPU: the allocator for its buffer objects, the host's
// rendering context on it, and the texture importer for sampling its
// buffers.
type Device struct {
	alloc    buffer.Allocator
	handle   DeviceHandle
	textures TextureImporter
}

// DeviceOption configures a Device.
type DeviceOption func(*Device)

// WithDeviceHandle attaches the host's GPU context. If the provider exposes
// HAL types, a HAL texture importer is created from it.
func WithDeviceHandle(h DeviceHandle) DeviceOption {
	return func(d *Device) {
		if h == nil {
			return
		}
		d.handle = h
		if d.textures != nil {
			return
		}
		ti, err := NewTextureImporterFromProvider(h)
		if err != nil {
			scanout.Logger().Debug("render: no texture import on device", "err", err)
			return
		}
		d.textures = ti
	}
}

// WithTextureImporter sets the texture importer explicitly.
func WithTextureImporter(ti TextureImporter) DeviceOption {
	return func(d *Device) {
		d.textures = ti
	}
}

// NewDevice creates a device around alloc.
func NewDevice(alloc buffer.Allocator, opts ...DeviceOption) *Device {
	d := &Device{
		alloc:  alloc,
		handle: NullDeviceHandle{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the allocator's device name.
func (d *Device) Name() string {
	if d.alloc == nil {
		return ""
	}
	return d.alloc.Name()
}

// Allocator returns the buffer allocator.
func (d *Device) Allocator() buffer.Allocator { return d.alloc }

// Handle returns the host GPU context, NullDeviceHandle if none was given.
func (d *Device) Handle() DeviceHandle { return d.handle }

// Textures returns the texture importer, or nil if the device cannot
// sample buffers.
func (d *Device) Textures() TextureImporter { return d.textures }

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"slices"
	"sync"

	"github.com/gogpu/scanout"
)

// Platform is the registry of GPUs known to the compositor. GPUs may come
// and go at runtime; scanout decisions read GPUCount on every evaluation.
//
// Platform is safe for concurrent use.
type Platform struct {
	mu      sync.RWMutex
	devices []*Device
}

// NewPlatform creates a platform with the given devices. The first one is
// the primary GPU.
func NewPlatform(devices ...*Device) *Platform {
	p := &Platform{}
	for _, d := range devices {
		p.AddDevice(d)
	}
	return p
}

// AddDevice registers a GPU. Adding a device twice has no effect.
func (p *Platform) AddDevice(d *Device) {
	if d == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if slices.Contains(p.devices, d) {
		return
	}
	p.devices = append(p.devices, d)
	scanout.Logger().Info("render: gpu added", "device", d.Name(), "count", len(p.devices))
}

// RemoveDevice unregisters a GPU and reports whether it was present.
func (p *Platform) RemoveDevice(d *Device) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := slices.Index(p.devices, d)
	if i < 0 {
		return false
	}
	p.devices = slices.Delete(p.devices, i, i+1)
	scanout.Logger().Info("render: gpu removed", "device", d.Name(), "count", len(p.devices))
	return true
}

// GPUCount returns the number of registered GPUs.
func (p *Platform) GPUCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.devices)
}

// Primary returns the first registered GPU, or nil.
func (p *Platform) Primary() *Device {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.devices) == 0 {
		return nil
	}
	return p.devices[0]
}

// Devices returns a snapshot of the registered GPUs.
func (p *Platform) Devices() []*Device {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.devices)
}

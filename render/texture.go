// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/scanout/buffer"
)

// TextureImporter turns buffer objects into sampleable textures.
type TextureImporter interface {
	// ImportTexture returns a texture with b's current content. The caller
	// owns the texture and must Destroy it.
	ImportTexture(b *buffer.Buffer) (*Texture, error)
}

// Texture is a sampleable GPU texture created from a buffer.
type Texture struct {
	tex      hal.Texture
	device   hal.Device
	width    uint32
	height   uint32
	format   gputypes.TextureFormat
	bufferID uint64
}

// Width returns the texture width in pixels.
func (t *Texture) Width() uint32 { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() uint32 { return t.height }

// Format returns the texture format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// BufferID returns the ID of the buffer the texture was imported from.
func (t *Texture) BufferID() uint64 { return t.bufferID }

// HAL returns the underlying HAL texture.
func (t *Texture) HAL() hal.Texture { return t.tex }

// Destroy releases the GPU texture. It is safe to call more than once.
func (t *Texture) Destroy() {
	if t.tex == nil {
		return
	}
	t.device.DestroyTexture(t.tex)
	t.tex = nil
}

// HALTextureImporter imports buffers by uploading their mapped content
// through a HAL queue.
type HALTextureImporter struct {
	device hal.Device
	queue  hal.Queue
}

// NewHALTextureImporter creates an importer on the given device and queue.
func NewHALTextureImporter(device hal.Device, queue hal.Queue) *HALTextureImporter {
	return &HALTextureImporter{device: device, queue: queue}
}

// NewTextureImporterFromProvider extracts the HAL device and queue from a
// host provider. The provider must implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func NewTextureImporterFromProvider(provider any) (*HALTextureImporter, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return NewHALTextureImporter(device, queue), nil
}

// ImportTexture creates a texture and uploads plane 0 of b into it.
func (i *HALTextureImporter) ImportTexture(b *buffer.Buffer) (*Texture, error) {
	format := b.Format().TextureFormat()
	if format == gputypes.TextureFormatUndefined {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, b.Format())
	}
	data, ok := b.Map(buffer.MapRead)
	if !ok {
		return nil, fmt.Errorf("%w: %v", buffer.ErrMapping, b)
	}

	size := b.Size()
	extent := hal.Extent3D{
		Width:              uint32(size.X), //nolint:gosec // G115: buffer sizes are positive
		Height:             uint32(size.Y), //nolint:gosec // G115: buffer sizes are positive
		DepthOrArrayLayers: 1,
	}
	tex, err := i.device.CreateTexture(&hal.TextureDescriptor{
		Label:         fmt.Sprintf("buffer_%d", b.ID()),
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("render: create texture for %v: %w", b, err)
	}

	i.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
		},
		data[b.Offsets()[0]:],
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  b.Strides()[0],
			RowsPerImage: extent.Height,
		},
		&extent,
	)

	return &Texture{
		tex:      tex,
		device:   i.device,
		width:    extent.Width,
		height:   extent.Height,
		format:   format,
		bufferID: b.ID(),
	}, nil
}

// Ensure HALTextureImporter implements TextureImporter.
var _ TextureImporter = (*HALTextureImporter)(nil)

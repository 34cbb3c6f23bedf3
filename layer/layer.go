// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layer

import (
	"fmt"
	"image"

	"github.com/gogpu/scanout/buffer"
	"github.com/gogpu/scanout/damage"
	"github.com/gogpu/scanout/render"
	"github.com/gogpu/scanout/surface"
)

// State is the buffer source of a layer for the current frame.
type State uint8

const (
	// StateCompositing shows the buffer rendered by the layer's surface.
	StateCompositing State = iota

	// StateDirectScanout shows a client's buffer without composition.
	StateDirectScanout
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCompositing:
		return "compositing"
	case StateDirectScanout:
		return "direct-scanout"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// OutputLayer is one plane of an output as seen by the compositor.
//
// Buffers returned by CurrentBuffer are borrowed: the display pipeline must
// Ref what it keeps beyond the next call into the layer.
type OutputLayer interface {
	// BeginFrame prepares a render target for compositing.
	BeginFrame() (surface.BeginFrameInfo, error)

	// EndFrame finishes the frame begun by BeginFrame. rendered is the
	// region actually drawn, damaged the region that changed.
	EndFrame(rendered, damaged damage.Region) error

	// Scanout tries to show item's client buffer directly. It reports
	// whether the buffer was adopted.
	Scanout(item SurfaceItem) bool

	// CurrentBuffer returns the buffer to display, nil before the first
	// frame.
	CurrentBuffer() *buffer.Buffer

	// CurrentDamage returns the region of CurrentBuffer that changed.
	CurrentDamage() damage.Region

	// HasDirectScanoutBuffer reports whether CurrentBuffer is a client
	// buffer.
	HasDirectScanoutBuffer() bool

	// ReleaseBuffers drops every buffer the layer holds.
	ReleaseBuffers()
}

// Pipeline is the display pipeline a layer feeds.
type Pipeline interface {
	// Device returns the GPU driving the display.
	Device() *render.Device

	// BufferSize is the required buffer size in pixels.
	BufferSize() image.Point

	// RenderOrientation is the transform composited content is rendered
	// with.
	RenderOrientation() render.PlaneTransformation

	// BufferOrientation is the transform the plane applies on scanout.
	BufferOrientation() render.PlaneTransformation

	// Formats returns the formats and modifiers the plane accepts.
	Formats() buffer.FormatTable

	// TestScanout validates, without presenting, that b can be shown.
	// Failures wrap buffer.ErrTestCommit.
	TestScanout(b *buffer.Buffer) error
}

// ClientSurface is a client's surface as exposed by the protocol layer.
type ClientSurface interface {
	// BufferTransform is the transform the client applied to its content.
	BufferTransform() render.Transform

	// Buffer returns the attached buffer, nil if there is none.
	Buffer() buffer.ClientBuffer
}

// SurfaceItem is the scene item showing a client surface.
type SurfaceItem interface {
	// Surface returns the client surface, nil if it is gone.
	Surface() ClientSurface

	// Damage returns the damage accumulated since the last reset.
	Damage() damage.Region

	// ResetDamage clears the accumulated damage.
	ResetDamage()
}

// Feedback carries scanout hints back to the client buffer protocol.
type Feedback interface {
	// ScanoutSuccessful reports that s is scanned out directly.
	ScanoutSuccessful(s ClientSurface)

	// ScanoutFailed reports that s could not be scanned out and lists the
	// formats the plane would accept.
	ScanoutFailed(s ClientSurface, formats buffer.FormatTable)

	// RenderingSurface reports that the layer composites this frame.
	RenderingSurface()
}

type nopFeedback struct{}

func (nopFeedback) ScanoutSuccessful(ClientSurface)                 {}
func (nopFeedback) ScanoutFailed(ClientSurface, buffer.FormatTable) {}
func (nopFeedback) RenderingSurface()                               {}

// Ensure both variants implement OutputLayer.
var (
	_ OutputLayer = (*DisplayControllerLayer)(nil)
	_ OutputLayer = (*OffscreenLayer)(nil)
)

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package buffer

import (
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
)

// Format is a fourcc pixel format code as used by the kernel display API.
type Format uint32

// Supported pixel formats. The byte order in the name is most significant
// first within a little-endian word, so XRGB8888 is stored B, G, R, X.
const (
	FormatXRGB8888 Format = 'X' | 'R'<<8 | '2'<<16 | '4'<<24
	FormatARGB8888 Format = 'A' | 'R'<<8 | '2'<<16 | '4'<<24
	FormatXBGR8888 Format = 'X' | 'B'<<8 | '2'<<16 | '4'<<24
	FormatABGR8888 Format = 'A' | 'B'<<8 | '2'<<16 | '4'<<24
	FormatRGB565   Format = 'R' | 'G'<<8 | '1'<<16 | '6'<<24
	FormatNV12     Format = 'N' | 'V'<<8 | '1'<<16 | '2'<<24
)

// String returns the four character code, e.g. "XR24".
func (f Format) String() string {
	b := []byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("Format(0x%08x)", uint32(f))
		}
	}
	return string(b)
}

// PlaneCount returns the number of memory planes the format needs, or 0 if
// the format is unknown to this package.
func (f Format) PlaneCount() int {
	switch f {
	case FormatXRGB8888, FormatARGB8888, FormatXBGR8888, FormatABGR8888, FormatRGB565:
		return 1
	case FormatNV12:
		return 2
	default:
		return 0
	}
}

// PlaneLayout returns the bytes per row (before alignment) and row count of
// the given plane for a width x height image. Unknown formats or planes
// return zeros.
func (f Format) PlaneLayout(plane, width, height int) (rowBytes, rows int) {
	switch f {
	case FormatXRGB8888, FormatARGB8888, FormatXBGR8888, FormatABGR8888:
		if plane == 0 {
			return width * 4, height
		}
	case FormatRGB565:
		if plane == 0 {
			return width * 2, height
		}
	case FormatNV12:
		switch plane {
		case 0:
			return width, height
		case 1:
			// Interleaved CbCr at half resolution in both directions.
			return (width + 1) / 2 * 2, (height + 1) / 2
		}
	}
	return 0, 0
}

// HasAlpha reports whether the format carries an alpha channel.
func (f Format) HasAlpha() bool {
	return f == FormatARGB8888 || f == FormatABGR8888
}

// TextureFormat returns the sampleable texture format with the same memory
// layout, or gputypes.TextureFormatUndefined if there is none.
func (f Format) TextureFormat() gputypes.TextureFormat {
	switch f {
	case FormatXRGB8888, FormatARGB8888:
		return gputypes.TextureFormatBGRA8Unorm
	case FormatXBGR8888, FormatABGR8888:
		return gputypes.TextureFormatRGBA8Unorm
	default:
		return gputypes.TextureFormatUndefined
	}
}

// Modifier describes the physical memory layout of a buffer beyond its
// format, e.g. a vendor tiling scheme.
type Modifier uint64

const (
	// ModifierLinear is plain row-major layout.
	ModifierLinear Modifier = 0

	// ModifierInvalid means no explicit modifier: the layout is implied by
	// the driver, usually linear but possibly vendor tiled.
	ModifierInvalid Modifier = 0x00ffffffffffffff
)

// IsExplicit reports whether m names a concrete layout.
func (m Modifier) IsExplicit() bool {
	return m != ModifierInvalid
}

// String returns a short human readable name.
func (m Modifier) String() string {
	switch m {
	case ModifierLinear:
		return "LINEAR"
	case ModifierInvalid:
		return "INVALID"
	default:
		return fmt.Sprintf("0x%016x", uint64(m))
	}
}

// FormatTable maps each supported format to the modifiers supported with it.
// It is what a display pipeline advertises for a plane.
type FormatTable map[Format][]Modifier

// Has reports whether format f is present, regardless of modifiers.
func (t FormatTable) Has(f Format) bool {
	_, ok := t[f]
	return ok
}

// Supports reports whether the format/modifier pair is present.
func (t FormatTable) Supports(f Format, m Modifier) bool {
	mods, ok := t[f]
	if !ok {
		return false
	}
	return slices.Contains(mods, m)
}

// Fits reports whether a buffer with format f and modifier m can be used
// with this table. An implicit modifier fits whenever the format is present,
// since the layout was chosen by the same driver.
func (t FormatTable) Fits(f Format, m Modifier) bool {
	if !m.IsExplicit() {
		return t.Has(f)
	}
	return t.Supports(f, m)
}

// Formats returns the formats in ascending order.
func (t FormatTable) Formats() []Format {
	out := make([]Format, 0, len(t))
	for f := range t {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// ExplicitModifiers returns the modifiers for f excluding ModifierInvalid.
func (t FormatTable) ExplicitModifiers(f Format) []Modifier {
	var out []Modifier
	for _, m := range t[f] {
		if m.IsExplicit() {
			out = append(out, m)
		}
	}
	return out
}

// Clone returns a deep copy.
func (t FormatTable) Clone() FormatTable {
	out := make(FormatTable, len(t))
	for f, mods := range t {
		out[f] = slices.Clone(mods)
	}
	return out
}

// Usage is a set of allocation usage flags.
type Usage uint32

const (
	// UsageScanout requests memory the display controller can read.
	UsageScanout Usage = 1 << iota

	// UsageRendering requests memory usable as a render target.
	UsageRendering

	// UsageLinear forces linear layout, the last resort for allocation.
	UsageLinear

	// UsageWrite requests CPU write access.
	UsageWrite
)

// MapFlags select the CPU access requested by Map.
type MapFlags uint32

const (
	// MapRead maps for reading.
	MapRead MapFlags = 1 << iota

	// MapWrite maps for writing.
	MapWrite
)

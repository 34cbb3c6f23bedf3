// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package buffer

import (
	"errors"
	"image"
	"slices"
	"testing"
)

func TestNewPlaneArrays(t *testing.T) {
	tests := []struct {
		name   string
		planes int
	}{
		{"one plane", 1},
		{"two planes", 2},
		{"four planes", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newFakeAllocation(image.Pt(8, 8), FormatXRGB8888, ModifierLinear, tt.planes)
			b, err := New(&fakeAllocator{name: "gpu0"}, a)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if b.PlaneCount() != tt.planes {
				t.Errorf("PlaneCount() = %d, want %d", b.PlaneCount(), tt.planes)
			}
			handles, strides, offsets := b.Handles(), b.Strides(), b.Offsets()
			for i := range MaxPlanes {
				if i < tt.planes {
					if handles[i] != a.planes[i].Handle || strides[i] != a.planes[i].Stride {
						t.Errorf("plane %d = (%d, %d), want (%d, %d)",
							i, handles[i], strides[i], a.planes[i].Handle, a.planes[i].Stride)
					}
					continue
				}
				if handles[i] != 0 || strides[i] != 0 || offsets[i] != 0 {
					t.Errorf("plane %d beyond count is (%d, %d, %d), want zeros",
						i, handles[i], strides[i], offsets[i])
				}
			}
		})
	}
}

func TestNewRejectsBadPlaneCount(t *testing.T) {
	for _, n := range []int{0, 5} {
		a := newFakeAllocation(image.Pt(4, 4), FormatXRGB8888, ModifierLinear, n)
		if _, err := New(nil, a); !errors.Is(err, ErrInvalidDescriptor) {
			t.Errorf("New() with %d planes error = %v, want ErrInvalidDescriptor", n, err)
		}
	}
	if _, err := New(nil, nil); !errors.Is(err, ErrAllocation) {
		t.Errorf("New(nil) error = %v, want ErrAllocation", err)
	}
}

func TestBufferIDsUnique(t *testing.T) {
	seen := make(map[uint64]bool)
	for range 16 {
		b, err := New(nil, newFakeAllocation(image.Pt(1, 1), FormatXRGB8888, ModifierLinear, 1))
		if err != nil {
			t.Fatal(err)
		}
		if seen[b.ID()] {
			t.Fatalf("duplicate ID %d", b.ID())
		}
		seen[b.ID()] = true
	}
}

func TestMapIdempotent(t *testing.T) {
	a := newFakeAllocation(image.Pt(4, 4), FormatXRGB8888, ModifierLinear, 1)
	b, _ := New(nil, a)

	first, ok := b.Map(MapRead)
	if !ok {
		t.Fatal("first Map() failed")
	}
	second, ok := b.Map(MapRead | MapWrite)
	if !ok {
		t.Fatal("second Map() failed")
	}
	if &first[0] != &second[0] {
		t.Error("second Map() returned a different mapping")
	}
	if a.mapCalls != 1 {
		t.Errorf("allocation mapped %d times, want 1", a.mapCalls)
	}

	b.Unref()
	if a.unmapCalls != 1 {
		t.Errorf("unmapped %d times on destroy, want 1", a.unmapCalls)
	}
}

func TestMapFailure(t *testing.T) {
	a := newFakeAllocation(image.Pt(4, 4), FormatXRGB8888, ModifierLinear, 1)
	a.failMap = true
	b, _ := New(nil, a)

	if data, ok := b.Map(MapRead); ok || data != nil {
		t.Errorf("Map() = (%v, %v), want (nil, false)", data, ok)
	}
	b.Unref()
	if a.unmapCalls != 0 {
		t.Errorf("unmap called %d times for a never mapped buffer", a.unmapCalls)
	}
}

func TestExportDescriptorsCached(t *testing.T) {
	closed := trackCloses(t)
	a := newFakeAllocation(image.Pt(4, 4), FormatNV12, ModifierLinear, 2)
	b, _ := New(nil, a)

	fds, ok := b.ExportDescriptors()
	if !ok || len(fds) != 2 {
		t.Fatalf("ExportDescriptors() = (%v, %v)", fds, ok)
	}
	again, ok := b.ExportDescriptors()
	if !ok || !slices.Equal(fds, again) {
		t.Errorf("second export = %v, want cached %v", again, fds)
	}
	if len(a.exportedFDs) != 2 {
		t.Errorf("allocation exported %d fds, want 2", len(a.exportedFDs))
	}

	b.Unref()
	if !slices.Equal(*closed, fds) {
		t.Errorf("closed fds = %v, want %v", *closed, fds)
	}
}

// A four-plane buffer whose third plane cannot be exported closes the two
// descriptors it already obtained and reports failure.
func TestExportDescriptorsAllOrNothing(t *testing.T) {
	closed := trackCloses(t)
	a := newFakeAllocation(image.Pt(4, 4), FormatXRGB8888, Modifier(0x0100000000000001), 4)
	a.failExportAt = 2
	b, _ := New(nil, a)

	fds, ok := b.ExportDescriptors()
	if ok || fds != nil {
		t.Fatalf("ExportDescriptors() = (%v, %v), want (nil, false)", fds, ok)
	}
	if !slices.Equal(*closed, a.exportedFDs) || len(*closed) != 2 {
		t.Errorf("closed = %v, want the two obtained %v", *closed, a.exportedFDs)
	}
	if _, ok := b.Descriptors(); ok {
		t.Error("Descriptors() reports exported after a failed export")
	}

	*closed = nil
	b.Unref()
	if len(*closed) != 0 {
		t.Errorf("destroy closed %v, want nothing", *closed)
	}
}

func TestDescriptorRoundTrip(t *testing.T) {
	trackCloses(t)
	a := newFakeAllocation(image.Pt(16, 8), FormatNV12, ModifierLinear, 2)
	b, _ := New(nil, a)
	defer b.Unref()

	if _, ok := b.Descriptor(); ok {
		t.Fatal("Descriptor() before export should fail")
	}
	fds, _ := b.ExportDescriptors()
	d, ok := b.Descriptor()
	if !ok {
		t.Fatal("Descriptor() after export failed")
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("exported descriptor invalid: %v", err)
	}
	if d.Size != b.Size() || d.Format != b.Format() || d.Modifier != b.Modifier() {
		t.Errorf("descriptor = %+v, does not match buffer %v", d, b)
	}
	for i, p := range d.Planes {
		if p.FD != fds[i] || p.Stride != b.Strides()[i] || p.Offset != b.Offsets()[i] {
			t.Errorf("plane %d = %+v", i, p)
		}
	}
}

func TestReleaseStrategies(t *testing.T) {
	trackCloses(t)

	t.Run("destroy", func(t *testing.T) {
		a := newFakeAllocation(image.Pt(2, 2), FormatXRGB8888, ModifierLinear, 1)
		b, _ := New(nil, a)
		b.Ref()
		b.Unref()
		if a.destroyed != 0 {
			t.Fatal("destroyed while still referenced")
		}
		b.Unref()
		if a.destroyed != 1 {
			t.Errorf("destroyed %d times, want 1", a.destroyed)
		}
	})

	t.Run("surface", func(t *testing.T) {
		a := newFakeAllocation(image.Pt(2, 2), FormatXRGB8888, ModifierLinear, 1)
		r := &fakeRecycler{}
		b, err := NewPooled(nil, a, r)
		if err != nil {
			t.Fatal(err)
		}
		if b.Release() != ReleaseToSurface {
			t.Errorf("Release() = %v", b.Release())
		}
		b.Unref()
		if len(r.recycled) != 1 || r.recycled[0] != b {
			t.Errorf("recycled = %v, want [%v]", r.recycled, b)
		}
		if a.destroyed != 0 {
			t.Error("pooled allocation destroyed instead of recycled")
		}
	})

	t.Run("external", func(t *testing.T) {
		dev := &fakeAllocator{name: "gpu0"}
		c := &fakeClient{desc: Descriptor{
			Size:     image.Pt(2, 2),
			Format:   FormatXRGB8888,
			Modifier: ModifierInvalid,
			Planes:   []DescriptorPlane{{FD: 7, Stride: 8}},
		}}
		b, err := ImportClient(dev, c)
		if err != nil {
			t.Fatal(err)
		}
		if c.refs != 1 {
			t.Fatalf("client refs = %d after import, want 1", c.refs)
		}
		alloc := b.Allocation().(*fakeAllocation)
		b.Unref()
		if c.refs != 0 {
			t.Errorf("client refs = %d after release, want 0", c.refs)
		}
		if alloc.destroyed != 1 {
			t.Errorf("import destroyed %d times, want 1", alloc.destroyed)
		}
	})
}

func TestNewPooledNeedsRecycler(t *testing.T) {
	a := newFakeAllocation(image.Pt(2, 2), FormatXRGB8888, ModifierLinear, 1)
	if _, err := NewPooled(nil, a, nil); !errors.Is(err, ErrAllocation) {
		t.Errorf("NewPooled(nil recycler) error = %v", err)
	}
}

func TestUnrefPanicsWhenOverReleased(t *testing.T) {
	b, _ := New(nil, newFakeAllocation(image.Pt(1, 1), FormatXRGB8888, ModifierLinear, 1))
	b.Unref()
	defer func() {
		if recover() == nil {
			t.Error("second Unref() did not panic")
		}
	}()
	b.Unref()
}

func TestReleaseString(t *testing.T) {
	tests := []struct {
		r    Release
		want string
	}{
		{ReleaseDestroy, "destroy"},
		{ReleaseToSurface, "surface"},
		{ReleaseExternal, "external"},
		{Release(9), "Release(9)"},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.r, got, tt.want)
		}
	}
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package damage tracks damaged regions and their history across frames.
//
// A renderer that reuses buffers from a ring only has to repaint what changed
// since the buffer it was given was last drawn. History keeps the damage of
// recent frames so that the repaint region for a buffer of age N is the union
// of the last N frames' damage. Age 0 means the buffer content is unknown and
// everything must be repainted.
package damage

// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package buffer provides dual-mode numeric buffers for frame-rate matrix
// pipelines.
//
// # Overview
//
// A Buffer exclusively owns a contiguous run of elements. Its storage comes
// from one of two strategies:
//   - Heap: ordinary Go heap memory.
//   - Mapped: page-locked host memory shared with a coprocessor. DevicePtr
//     returns an alias of the same physical pages, so kernels read and write
//     the buffer without a transfer step.
//
// The default strategy is Heap, or Mapped when built with -tags mapped. Any
// constructor can override it:
//
//	b := buffer.NewFloat(4096, buffer.WithMode(buffer.Mapped))
//	defer b.Release()
//	launchKernel(b.DevicePtr(), b.Len())
//
// # Ownership
//
// Take and MoveFrom transfer ownership and leave the source empty; CopyFrom
// duplicates contents between buffers of equal length. Release is idempotent.
//
// # Errors
//
// Allocation failure panics with an *AllocError: a per-frame pipeline has no
// useful way to recover from it.
package buffer

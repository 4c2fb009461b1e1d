// Package buffer provides exclusively owned, typed element buffers whose backing
// storage comes from a pluggable allocation strategy.
//
// Two strategies exist:
//   - Heap: ordinary Go heap memory, host-visible only.
//   - Mapped: page-locked host memory that a coprocessor can address directly.
//     The buffer exposes a device pointer aliasing the same physical pages, so no
//     host/device transfer is needed.
//
// The default strategy is chosen at build time (build with -tags mapped to make
// Mapped the default) and can be overridden per buffer with WithMode or
// WithAllocator.
//
// Buffers are single-owner and not internally synchronized. Ownership moves with
// Take and MoveFrom; contents are duplicated with CopyFrom. Allocation failure is
// unrecoverable and panics with an *AllocError.
//
// Host/device visibility is the caller's concern: when a coprocessor writes
// through DevicePtr, the caller must wait on the appropriate completion fence
// before reading through Host.
package buffer

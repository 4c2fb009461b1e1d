// Package mat provides the dense matrix view used to interpret flat float
// storage as a shaped, strided, multi-channel matrix.
package mat

import "fmt"

// Depth is the numeric kind of a single matrix scalar.
type Depth int

// Supported depths.
const (
	Float32 Depth = iota
	Float64
	Int32
	Uint8
)

// Size returns the byte size of one scalar of this depth.
func (d Depth) Size() int {
	switch d {
	case Float32, Int32:
		return 4
	case Float64:
		return 8
	case Uint8:
		return 1
	default:
		panic("unknown depth")
	}
}

// String returns a human-readable name for the depth.
func (d Depth) String() string {
	switch d {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Int32:
		return "int32"
	case Uint8:
		return "uint8"
	default:
		return "unknown"
	}
}

const (
	depthBits   = 3
	depthMask   = 1<<depthBits - 1
	MaxChannels = 512
)

// Format packs a depth and a channel count into one value.
type Format int

// Common formats.
const (
	F32C1 = Format(Float32)
	F32C2 = Format(Float32) | 1<<depthBits
	F32C3 = Format(Float32) | 2<<depthBits
	F32C4 = Format(Float32) | 3<<depthBits
	F64C1 = Format(Float64)
	S32C1 = Format(Int32)
	U8C1  = Format(Uint8)
)

// MakeFormat builds a format from a known depth and a channel count in [1, MaxChannels].
func MakeFormat(d Depth, channels int) Format {
	if d < Float32 || d > Uint8 {
		panic(fmt.Sprintf("mat: unknown depth %d", int(d)))
	}
	if channels < 1 || channels > MaxChannels {
		panic(fmt.Sprintf("mat: channel count %d out of range [1, %d]", channels, MaxChannels))
	}
	return Format(int(d) | (channels-1)<<depthBits)
}

// Depth returns the numeric kind of the format.
func (f Format) Depth() Depth {
	return Depth(f & depthMask)
}

// Channels returns the number of scalars per matrix element.
func (f Format) Channels() int {
	return int(f>>depthBits) + 1
}

// ElemSize returns the byte size of one matrix element (all channels).
func (f Format) ElemSize() int {
	return f.Depth().Size() * f.Channels()
}

// String returns names like "float32C2".
func (f Format) String() string {
	return fmt.Sprintf("%sC%d", f.Depth(), f.Channels())
}

//go:build mapped

package buffer

// DefaultMode is the allocation mode used when no option overrides it.
const DefaultMode = Mapped

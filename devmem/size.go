package devmem

import "fmt"

// MemorySize is the extent of a range-taking operation on a DeviceMemory. It is either an
// exact byte count created with SizeBytes, or WholeSize, which stands for "from the provided
// offset through the end of the allocation". Every range-taking operation resolves a
// MemorySize exactly once on entry.
type MemorySize struct {
	size  int
	whole bool
}

// SizeBytes creates a MemorySize covering exactly size bytes
func SizeBytes(size int) MemorySize {
	return MemorySize{size: size}
}

// WholeSize is the MemorySize covering everything from an operation's offset through the end
// of the allocation
var WholeSize = MemorySize{whole: true}

// IsWhole returns true if this MemorySize is WholeSize rather than an exact byte count
func (s MemorySize) IsWhole() bool {
	return s.whole
}

// Resolve returns the exact byte count this MemorySize covers for an operation beginning at
// offset within an allocation of allocationSize bytes. An explicit size is returned untouched.
func (s MemorySize) Resolve(offset, allocationSize int) int {
	if s.whole {
		return allocationSize - offset
	}
	return s.size
}

func (s MemorySize) String() string {
	if s.whole {
		return "WholeSize"
	}
	return fmt.Sprintf("%d bytes", s.size)
}

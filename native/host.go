package native

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/portability/memutils"
)

// HostMemory is a host-side allocation with a guaranteed byte alignment, used to back
// device-memory allocations before they are promoted to a device buffer. The aligned
// region is carved out of a slightly larger Go allocation so the backing bytes stay
// reachable for as long as the HostMemory does.
type HostMemory struct {
	block []byte
	ptr   unsafe.Pointer
	size  int
}

// AllocateHostMemory allocates size bytes of zeroed host memory whose base address is a
// multiple of alignment. Alignment must be a power of two. On failure, no memory is retained.
func AllocateHostMemory(size int, alignment uint) (*HostMemory, error) {
	memutils.DebugCheckPow2(alignment, "host memory alignment")

	if size <= 0 {
		return nil, errors.Newf("attempted to allocate host memory of invalid size %d", size)
	}
	if alignment < 1 {
		alignment = 1
	}

	padded := size + int(alignment) - 1
	if padded < size {
		return nil, errors.Newf("host memory size %d overflows when padded to alignment %d", size, alignment)
	}

	block := make([]byte, padded)
	base := uintptr(unsafe.Pointer(&block[0]))
	offset := 0
	if rem := base % uintptr(alignment); rem != 0 {
		offset = int(uintptr(alignment) - rem)
	}

	return &HostMemory{
		block: block,
		ptr:   unsafe.Pointer(&block[offset]),
		size:  size,
	}, nil
}

// Pointer returns the aligned base address of the allocation, or nil after Free
func (h *HostMemory) Pointer() unsafe.Pointer {
	return h.ptr
}

// Size returns the usable size of the allocation in bytes
func (h *HostMemory) Size() int {
	return h.size
}

// Bytes returns the allocation as a byte slice of Size bytes
func (h *HostMemory) Bytes() []byte {
	if h.ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(h.ptr), h.size)
}

// Free drops the allocation. Pointers previously returned from Pointer must not be used
// after Free returns. Free is safe to call more than once.
func (h *HostMemory) Free() {
	h.block = nil
	h.ptr = nil
	h.size = 0
}

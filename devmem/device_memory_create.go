package devmem

import (
	"sync/atomic"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/khr_external_memory_capabilities"
	"github.com/vkngwrapper/portability/native"
	"golang.org/x/exp/slog"
)

// AllocateOptions contains optional settings for a single AllocateMemory call
type AllocateOptions struct {
	// Name is an optional debug name attached to the allocation
	Name string
	// UserData is an optional opaque value carried by the allocation
	UserData any

	// ImportedHostPointer optionally provides caller-owned host bytes to adopt as the
	// allocation's initial backing. The pointed-to region must remain valid until the
	// allocation is promoted to a device buffer or freed, and must be at least the
	// allocation size rounded up to the device's buffer alignment. The allocation never
	// frees imported bytes.
	ImportedHostPointer unsafe.Pointer
	// ExternalMemoryHandleTypes records the external handle types an imported allocation
	// was created from, for introspection by the resource layer
	ExternalMemoryHandleTypes khr_external_memory_capabilities.ExternalMemoryHandleTypeFlags
}

// AllocateMemory creates a single logical device-memory allocation of the provided size, with
// cache, coherency, and accessibility policy derived from the provided memory-type index.
//
// Host-coherent memory types are eagerly promoted to a device buffer. If that promotion fails
// because the aligned size exceeds the platform's maximum buffer length, AllocateMemory still
// succeeds and the error is carried by the allocation, to be surfaced on its first Map or
// BindBuffer call.
func (a *Allocator) AllocateMemory(size int, memoryTypeIndex int, options AllocateOptions) (memory *DeviceMemory, res common.VkResult, err error) {
	a.logger.Debug("Allocator::AllocateMemory")

	if size < 1 {
		return nil, core1_0.VKErrorUnknown, errors.Newf("attempted to allocate device memory of invalid size %d", size)
	}
	if memoryTypeIndex < 0 || memoryTypeIndex >= len(a.memoryTypes) {
		return nil, core1_0.VKErrorUnknown, errors.Newf("attempted to allocate device memory with memory type index %d, but the device only has %d memory types", memoryTypeIndex, len(a.memoryTypes))
	}

	newCount := atomic.AddUint32(&a.allocationCount, 1)
	defer func() {
		// If we failed out, roll back the allocation-count increment
		if err != nil {
			// Decrement
			atomic.AddUint32(&a.allocationCount, ^uint32(0))
		}
	}()

	if int(newCount) > a.maxAllocationCount {
		return nil, core1_0.VKErrorTooManyObjects, core1_0.VKErrorTooManyObjects.ToError()
	}

	heapIndex := a.MemoryTypeIndexToHeapIndex(memoryTypeIndex)
	a.addBlockAllocation(heapIndex, size)
	defer func() {
		// If we failed out, roll back the block bookkeeping
		if err != nil {
			a.removeBlockAllocation(heapIndex, size)
		}
	}()

	propertyFlags := a.memoryTypes[memoryTypeIndex].PropertyFlags
	hostAccessible := propertyFlags&core1_0.MemoryPropertyHostVisible != 0
	hostCoherent := propertyFlags&core1_0.MemoryPropertyHostCoherent != 0

	memory = &DeviceMemory{
		parentAllocator: a,
		logger:          a.logger,

		size:            size,
		memoryTypeIndex: memoryTypeIndex,
		name:            options.Name,
		userData:        options.UserData,

		externalMemoryHandleTypes: options.ExternalMemoryHandleTypes,

		storageMode:    a.storageModeForFlags(propertyFlags),
		cpuCacheMode:   cpuCacheModeForFlags(propertyFlags),
		hostCoherent:   hostCoherent,
		hostAccessible: hostAccessible,
	}
	memory.mutex.UseMutex = a.useMutex

	if options.ImportedHostPointer != nil {
		if !hostAccessible {
			return nil, core1_0.VKErrorUnknown, errors.New("attempted to import a host pointer into a memory type that is not host-visible")
		}
		memory.hostPtr = options.ImportedHostPointer
		memory.importedHost = true
	}

	if hostCoherent {
		// Coherent memory has no explicit flush point, so it must live in a device buffer
		// from the start. A failure here is carried, not returned.
		promoteErr := memory.ensureDeviceBuffer()
		if promoteErr != nil {
			a.logger.Warn("allocated coherent device memory that cannot be buffer-backed", slog.Any("error", promoteErr))
			memory.configErr = promoteErr
		}
	}

	return memory, core1_0.VKSuccess, nil
}

// storageModeForFlags derives the native storage mode an allocation's buffers use from its
// memory-type properties
func (a *Allocator) storageModeForFlags(propertyFlags core1_0.MemoryPropertyFlags) native.StorageMode {
	if propertyFlags&core1_0.MemoryPropertyHostVisible == 0 {
		return native.StorageModePrivate
	}
	if propertyFlags&core1_0.MemoryPropertyHostCoherent != 0 || !a.device.SupportsExplicitCacheManagement() {
		return native.StorageModeShared
	}
	return native.StorageModeManaged
}

// cpuCacheModeForFlags derives the host cache behavior an allocation's buffers use from its
// memory-type properties
func cpuCacheModeForFlags(propertyFlags core1_0.MemoryPropertyFlags) native.CPUCacheMode {
	if propertyFlags&core1_0.MemoryPropertyHostVisible != 0 && propertyFlags&core1_0.MemoryPropertyHostCached == 0 {
		return native.CPUCacheModeWriteCombined
	}
	return native.CPUCacheModeDefaultCache
}

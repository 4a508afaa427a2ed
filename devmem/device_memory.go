package devmem

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/khr_external_memory_capabilities"
	"github.com/vkngwrapper/portability/devmem/internal/utils"
	"github.com/vkngwrapper/portability/memutils"
	"github.com/vkngwrapper/portability/native"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

// DeviceMemory is one logical device-memory allocation. The consumer sees an allocation-first
// memory model: it allocates a generic block, then binds buffer and image resources into
// regions of it. Underneath, storage is chosen lazily from host memory or a single dedicated
// native buffer and only ever moves forward from host memory to a buffer.
//
// Map and Unmap must be externally serialized to a single thread at a time. Bind, Unbind,
// Flush, and Invalidate may run concurrently with each other.
type DeviceMemory struct {
	parentAllocator *Allocator
	logger          *slog.Logger

	size            int
	memoryTypeIndex int
	name            string
	userData        any

	externalMemoryHandleTypes khr_external_memory_capabilities.ExternalMemoryHandleTypeFlags

	storageMode    native.StorageMode
	cpuCacheMode   native.CPUCacheMode
	hostCoherent   bool
	hostAccessible bool
	// configErr carries a construction-time failure to buffer-back coherent memory. It is
	// surfaced on the first Map or BindBuffer rather than failing allocation.
	configErr error

	// Storage backing- at most one of hostMemory and deviceBuffer is ever populated, and once
	// deviceBuffer is set it never goes away until Free
	deviceBuffer native.Buffer
	hostMemory   *native.HostMemory
	hostPtr      unsafe.Pointer
	importedHost bool

	// Mapping session
	mapOffset int
	mapSize   int
	mapped    bool

	// mutex guards the buffer and image reference sets. It is never held across platform
	// cache-management calls.
	mutex   utils.OptionalMutex
	buffers []BufferResource
	images  []ImageResource

	freed bool
}

func (m *DeviceMemory) Size() int            { return m.size }
func (m *DeviceMemory) MemoryTypeIndex() int { return m.memoryTypeIndex }
func (m *DeviceMemory) IsHostAccessible() bool {
	return m.hostAccessible
}
func (m *DeviceMemory) IsHostCoherent() bool {
	return m.hostCoherent
}
func (m *DeviceMemory) StorageMode() native.StorageMode   { return m.storageMode }
func (m *DeviceMemory) CPUCacheMode() native.CPUCacheMode { return m.cpuCacheMode }
func (m *DeviceMemory) MemoryType() core1_0.MemoryType {
	return m.parentAllocator.MemoryTypeProperties(m.memoryTypeIndex)
}
func (m *DeviceMemory) ExternalMemoryHandleTypes() khr_external_memory_capabilities.ExternalMemoryHandleTypeFlags {
	return m.externalMemoryHandleTypes
}

// DeviceBuffer returns the native buffer backing this allocation, or nil if the allocation has
// not been promoted to a device buffer
func (m *DeviceMemory) DeviceBuffer() native.Buffer {
	return m.deviceBuffer
}

// HostPointer returns the base address of the allocation's host-visible storage, or nil if no
// host-visible storage has been materialized. Image resources use it to reach the shared
// linear storage they copy texel data through.
func (m *DeviceMemory) HostPointer() unsafe.Pointer {
	return m.hostPtr
}

func (m *DeviceMemory) SetName(name string) {
	m.name = name
}

func (m *DeviceMemory) Name() string {
	return m.name
}

func (m *DeviceMemory) SetUserData(userData any) {
	m.userData = userData
}

func (m *DeviceMemory) UserData() any {
	return m.userData
}

// Validate checks the allocation's internal invariants. It is applied automatically at
// operation entry points when the debug_mem_utils build tag is present.
func (m *DeviceMemory) Validate() error {
	if m.freed {
		return errors.New("device memory has already been freed")
	}
	if m.size < 1 {
		return errors.Newf("device memory has invalid size %d", m.size)
	}
	if m.hostMemory != nil && m.deviceBuffer != nil {
		return errors.New("device memory holds both a host allocation and a device buffer")
	}
	if m.importedHost && m.hostMemory != nil {
		return errors.New("device memory holds an owned host allocation but is marked as imported")
	}
	if m.mapped {
		if m.mapOffset < 0 || m.mapSize < 0 || m.mapOffset+m.mapSize > m.size {
			return errors.Newf("device memory has an active mapping of offset %d size %d, outside the allocation size %d", m.mapOffset, m.mapSize, m.size)
		}
		if m.hostPtr == nil {
			return errors.New("device memory has an active mapping but no host-visible storage")
		}
	}
	return nil
}

// ensureDeviceBuffer promotes the allocation's backing to a dedicated native buffer. It is
// idempotent. If host bytes already exist, they are copied into the new buffer before the host
// allocation is released, so no pointer handed out earlier loses its data.
func (m *DeviceMemory) ensureDeviceBuffer() error {
	if m.deviceBuffer != nil {
		return nil
	}

	device := m.parentAllocator.device
	alignedSize := memutils.AlignUp(m.size, device.BufferAlignment())
	maxLength := device.MaxBufferLength()
	if alignedSize > maxLength {
		return errors.Newf("device memory of size %d requires a buffer of %d bytes, but the platform's maximum buffer length is %d", m.size, alignedSize, maxLength)
	}

	var buffer native.Buffer
	var err error
	if m.hostPtr != nil {
		buffer, err = device.NewBufferWithBytes(m.hostPtr, alignedSize, m.storageMode, m.cpuCacheMode)
	} else {
		buffer, err = device.NewBuffer(alignedSize, m.storageMode, m.cpuCacheMode)
	}
	if err != nil {
		return err
	}

	m.deviceBuffer = buffer
	m.releaseHostMemory()
	if m.hostAccessible {
		m.hostPtr = buffer.Contents()
	} else {
		m.hostPtr = nil
	}

	return nil
}

// ensureHostMemory materializes host-visible storage for the allocation. It is idempotent; if
// the allocation already has a device buffer, that buffer's contents pointer is reused rather
// than creating a separate host allocation.
func (m *DeviceMemory) ensureHostMemory() error {
	if m.hostPtr != nil {
		return nil
	}

	if m.deviceBuffer != nil {
		m.hostPtr = m.deviceBuffer.Contents()
		return nil
	}

	device := m.parentAllocator.device
	alignment := device.BufferAlignment()
	alignedSize := memutils.AlignUp(m.size, alignment)

	hostMemory, err := native.AllocateHostMemory(alignedSize, alignment)
	if err != nil {
		return err
	}

	m.hostMemory = hostMemory
	m.hostPtr = hostMemory.Pointer()
	return nil
}

// releaseHostMemory drops the allocation's host backing, if it owns one. Device buffers are
// never released here- promotion is irreversible.
func (m *DeviceMemory) releaseHostMemory() {
	if m.hostMemory != nil {
		m.hostMemory.Free()
		m.hostMemory = nil
	}
	m.importedHost = false
	m.hostPtr = nil
}

// Map opens the allocation's single host-visible window and returns a pointer to its first
// byte. Device-authored data is pulled into the host view across the mapped range before the
// pointer is returned, so coherent memory reflects device writes at the moment of mapping.
func (m *DeviceMemory) Map(offset int, size MemorySize, flags core1_0.MemoryMapFlags) (unsafe.Pointer, common.VkResult, error) {
	m.logger.Debug("DeviceMemory::Map")
	memutils.DebugValidate(m)

	if m.configErr != nil {
		return nil, core1_0.VKErrorOutOfDeviceMemory, errors.Wrap(m.configErr, "this allocation carries a configuration error from construction")
	}
	if !m.hostAccessible {
		return nil, core1_0.VKErrorMemoryMapFailed, errors.New("attempted to map device memory that is not host-accessible")
	}
	if m.mapped {
		return nil, core1_0.VKErrorMemoryMapFailed, errors.Newf("attempted to map device memory that already has an active mapping at offset %d size %d", m.mapOffset, m.mapSize)
	}
	if offset < 0 || offset > m.size {
		return nil, core1_0.VKErrorMemoryMapFailed, errors.Newf("attempted to map at offset %d, outside the allocation size %d", offset, m.size)
	}

	resolvedSize := size.Resolve(offset, m.size)
	if resolvedSize < 0 || offset+resolvedSize > m.size {
		return nil, core1_0.VKErrorMemoryMapFailed, errors.Newf("attempted to map offset %d size %d, which ends past the allocation size %d", offset, resolvedSize, m.size)
	}

	err := m.ensureHostMemory()
	if err != nil {
		return nil, core1_0.VKErrorOutOfHostMemory, err
	}

	m.mapOffset = offset
	m.mapSize = resolvedSize
	m.mapped = true

	// The consumer never explicitly invalidates coherent memory, so the pull is forced to make
	// device writes visible at the map boundary
	m.pullFromDevice(offset, resolvedSize, true)

	return unsafe.Add(m.hostPtr, offset), core1_0.VKSuccess, nil
}

// Unmap flushes the mapped range to device-visible state and closes the active mapping
// session. Unmapping memory that is not mapped is reported as VKErrorMemoryMapFailed but has
// no other effect.
func (m *DeviceMemory) Unmap() (common.VkResult, error) {
	m.logger.Debug("DeviceMemory::Unmap")
	memutils.DebugValidate(m)

	if !m.mapped {
		return core1_0.VKErrorMemoryMapFailed, errors.New("attempted to unmap device memory that has no active mapping")
	}

	// The consumer never explicitly flushes coherent memory, so the flush is forced to make
	// host writes visible at the unmap boundary
	m.flushToDevice(m.mapOffset, m.mapSize, true)

	m.mapOffset = 0
	m.mapSize = 0
	m.mapped = false

	return core1_0.VKSuccess, nil
}

// Flush makes host writes in the provided range visible to the device. It always succeeds;
// ranges that resolve to nothing, storage with no host view, and coherent memory are no-ops.
func (m *DeviceMemory) Flush(offset int, size MemorySize) (common.VkResult, error) {
	m.logger.Debug("DeviceMemory::Flush")
	memutils.DebugValidate(m)

	offset, resolvedSize := m.clampRange(offset, size)
	m.flushToDevice(offset, resolvedSize, false)
	return core1_0.VKSuccess, nil
}

// Invalidate makes device writes in the provided range visible to the host. It always
// succeeds; ranges that resolve to nothing, storage with no host view, and coherent memory
// are no-ops.
func (m *DeviceMemory) Invalidate(offset int, size MemorySize) (common.VkResult, error) {
	m.logger.Debug("DeviceMemory::Invalidate")
	memutils.DebugValidate(m)

	offset, resolvedSize := m.clampRange(offset, size)
	m.pullFromDevice(offset, resolvedSize, false)
	return core1_0.VKSuccess, nil
}

// clampRange resolves a caller-provided range against the allocation size. Offsets outside the
// allocation produce an empty range, and sizes that run past the end are truncated to it, so
// flush and pull traffic never sees a range the storage cannot hold.
func (m *DeviceMemory) clampRange(offset int, size MemorySize) (int, int) {
	if offset < 0 || offset > m.size {
		return 0, 0
	}

	resolvedSize := size.Resolve(offset, m.size)
	if resolvedSize > m.size-offset {
		resolvedSize = m.size - offset
	}

	return offset, resolvedSize
}

func (m *DeviceMemory) flushToDevice(offset, size int, evenIfCoherent bool) {
	if size <= 0 || m.hostPtr == nil {
		return
	}
	if m.hostCoherent && !evenIfCoherent {
		return
	}

	// Managed storage requires the platform be told about host writes. This happens outside
	// the registry lock so image bookkeeping does not serialize behind the memory controller.
	if m.parentAllocator.device.SupportsExplicitCacheManagement() &&
		m.storageMode == native.StorageModeManaged &&
		m.deviceBuffer != nil {
		m.deviceBuffer.DidModifyRange(offset, size)
	}

	// Buffers alias the shared storage directly, but images keep texel data in device-optimal
	// storage and must copy the range in
	m.mutex.Lock()
	for _, image := range m.images {
		image.CopyRangeFromSharedStorage(offset, size)
	}
	m.mutex.Unlock()
}

func (m *DeviceMemory) pullFromDevice(offset, size int, evenIfCoherent bool) {
	if size <= 0 || m.hostPtr == nil {
		return
	}
	if m.hostCoherent && !evenIfCoherent {
		return
	}

	m.mutex.Lock()
	for _, image := range m.images {
		image.CopyRangeToSharedStorage(offset, size)
	}
	m.mutex.Unlock()
}

// BindBuffer registers a buffer resource with this allocation. Buffers alias the shared
// storage directly, so binding one forces the allocation's device buffer to materialize; on
// promotion failure the resource is not registered.
func (m *DeviceMemory) BindBuffer(buffer BufferResource) (common.VkResult, error) {
	m.logger.Debug("DeviceMemory::BindBuffer")
	memutils.DebugValidate(m)

	if buffer == nil {
		return core1_0.VKErrorUnknown, errors.New("attempted to bind a nil buffer resource")
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.configErr != nil {
		return core1_0.VKErrorOutOfDeviceMemory, errors.Wrap(m.configErr, "this allocation carries a configuration error from construction")
	}

	err := m.ensureDeviceBuffer()
	if err != nil {
		return core1_0.VKErrorOutOfDeviceMemory, err
	}

	m.buffers = append(m.buffers, buffer)
	return core1_0.VKSuccess, nil
}

// BindImage registers an image resource with this allocation for flush and pull notification.
// Images may be backed independently of the allocation, so no promotion is forced and binding
// always succeeds.
func (m *DeviceMemory) BindImage(image ImageResource) (common.VkResult, error) {
	m.logger.Debug("DeviceMemory::BindImage")
	memutils.DebugValidate(m)

	if image == nil {
		return core1_0.VKErrorUnknown, errors.New("attempted to bind a nil image resource")
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.images = append(m.images, image)
	return core1_0.VKSuccess, nil
}

// UnbindBuffer removes all registrations of the provided buffer resource. Resources that were
// never bound, or were already removed, are tolerated.
func (m *DeviceMemory) UnbindBuffer(buffer BufferResource) (common.VkResult, error) {
	m.logger.Debug("DeviceMemory::UnbindBuffer")

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.buffers = removeAllOccurrences(m.buffers, buffer)
	return core1_0.VKSuccess, nil
}

// UnbindImage removes all registrations of the provided image resource. Resources that were
// never bound, or were already removed, are tolerated.
func (m *DeviceMemory) UnbindImage(image ImageResource) (common.VkResult, error) {
	m.logger.Debug("DeviceMemory::UnbindImage")

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.images = removeAllOccurrences(m.images, image)
	return core1_0.VKSuccess, nil
}

// removeAllOccurrences filters every registration of resource out of refs, tolerating
// duplicates. The freed tail slots are cleared so no stale reference outlives removal.
func removeAllOccurrences[T comparable](refs []T, resource T) []T {
	kept := refs[:0]
	for _, ref := range refs {
		if ref != resource {
			kept = append(kept, ref)
		}
	}

	var empty T
	for i := len(kept); i < len(refs); i++ {
		refs[i] = empty
	}

	return kept
}

// Free tells every bound resource to unbind, then releases the allocation's backing storage
// and returns its bookkeeping to the allocator. Freeing an already-freed allocation is a
// no-op.
func (m *DeviceMemory) Free() {
	m.logger.Debug("DeviceMemory::Free")

	if m.freed {
		return
	}
	m.freed = true

	// Each callback re-enters this registry to remove itself, so iterate snapshots rather
	// than the live sets
	m.mutex.Lock()
	buffers := slices.Clone(m.buffers)
	images := slices.Clone(m.images)
	m.mutex.Unlock()

	for _, buffer := range buffers {
		buffer.BindToAllocation(nil, 0)
	}
	for _, image := range images {
		image.BindToAllocation(nil, 0)
	}

	// Every back-reference is cleared, so storage can go away
	m.mapOffset = 0
	m.mapSize = 0
	m.mapped = false

	if m.deviceBuffer != nil {
		m.deviceBuffer.Release()
		m.deviceBuffer = nil
	}
	m.releaseHostMemory()

	m.parentAllocator.freeMemory(m)
}

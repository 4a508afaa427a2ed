package native

import (
	"unsafe"
)

// StorageMode indicates where a native buffer's storage lives and how it is kept in sync
// between the host and the device
type StorageMode uint32

const (
	// StorageModeShared indicates storage that is visible to both the host and the device and
	// kept coherent by the platform
	StorageModeShared StorageMode = iota
	// StorageModeManaged indicates storage that is visible to both the host and the device, but
	// requires explicit notification when host writes must be made visible to the device
	StorageModeManaged
	// StorageModePrivate indicates storage that is only visible to the device
	StorageModePrivate
)

var storageModeMapping = make(map[StorageMode]string)

func (m StorageMode) String() string {
	return storageModeMapping[m]
}

func init() {
	storageModeMapping[StorageModeShared] = "StorageModeShared"
	storageModeMapping[StorageModeManaged] = "StorageModeManaged"
	storageModeMapping[StorageModePrivate] = "StorageModePrivate"
}

// CPUCacheMode indicates the cache behavior of host access to a native buffer's storage
type CPUCacheMode uint32

const (
	// CPUCacheModeDefaultCache indicates ordinary write-back cached host access
	CPUCacheModeDefaultCache CPUCacheMode = iota
	// CPUCacheModeWriteCombined indicates write-combined host access, appropriate for memory
	// the host writes but never reads
	CPUCacheModeWriteCombined
)

var cpuCacheModeMapping = make(map[CPUCacheMode]string)

func (m CPUCacheMode) String() string {
	return cpuCacheModeMapping[m]
}

func init() {
	cpuCacheModeMapping[CPUCacheModeDefaultCache] = "CPUCacheModeDefaultCache"
	cpuCacheModeMapping[CPUCacheModeWriteCombined] = "CPUCacheModeWriteCombined"
}

// Buffer is a single dedicated storage object created by a Device. On buffer-centric platforms
// this is the only way device-visible storage is exposed, so the portability layer backs each
// device-memory allocation with at most one Buffer.
type Buffer interface {
	// Contents returns a pointer to the buffer's host-visible storage, or nil if the buffer was
	// created with StorageModePrivate
	Contents() unsafe.Pointer
	// Length returns the size of the buffer's storage in bytes
	Length() int
	// DidModifyRange informs the platform that the host has modified the provided byte range
	// of a StorageModeManaged buffer and the device-side cache must be updated
	DidModifyRange(offset, size int)
	// Release returns the buffer's storage to the platform. The buffer may not be used after
	// Release is called.
	Release()
}

// Device is the buffer-centric native backend that device-memory allocations are implemented
// against. Implementations wrap a single platform device and its buffer factory.
type Device interface {
	// BufferAlignment returns the byte alignment the platform requires for buffer lengths.
	// It must be a power of two.
	BufferAlignment() uint
	// MaxBufferLength returns the largest buffer, in bytes, that the platform can create
	MaxBufferLength() int
	// SupportsExplicitCacheManagement returns true when the platform exposes managed storage
	// that requires DidModifyRange notifications. Platforms with fully coherent shared memory
	// return false and never see managed buffers.
	SupportsExplicitCacheManagement() bool

	// NewBuffer creates a buffer of the provided length with undefined contents
	NewBuffer(length int, storageMode StorageMode, cacheMode CPUCacheMode) (Buffer, error)
	// NewBufferWithBytes creates a buffer of the provided length whose storage is initialized
	// with a copy of the length bytes at data
	NewBufferWithBytes(data unsafe.Pointer, length int, storageMode StorageMode, cacheMode CPUCacheMode) (Buffer, error)
}

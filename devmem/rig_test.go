package devmem

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/portability/native"
	"github.com/vkngwrapper/portability/native/mocks"
	"go.uber.org/mock/gomock"
)

const (
	// Memory type indices used by the test capability table
	testTypePrivate  = 0
	testTypeManaged  = 1
	testTypeCoherent = 2
)

type testDeviceSetup struct {
	BufferAlignment           uint
	MaxBufferLength           int
	NoExplicitCacheManagement bool
}

func testMemoryTypes() []core1_0.MemoryType {
	return []core1_0.MemoryType{
		{
			PropertyFlags: core1_0.MemoryPropertyDeviceLocal,
			HeapIndex:     0,
		},
		{
			PropertyFlags: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCached,
			HeapIndex:     0,
		},
		{
			PropertyFlags: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent,
			HeapIndex:     0,
		},
	}
}

func testMemoryHeaps() []core1_0.MemoryHeap {
	return []core1_0.MemoryHeap{
		{
			Size:  1 << 30,
			Flags: core1_0.MemoryHeapDeviceLocal,
		},
	}
}

// readyAllocator builds a mock native device with the provided limits and an allocator using
// the standard test capability table
func readyAllocator(t *testing.T, ctrl *gomock.Controller, setup testDeviceSetup, options CreateOptions) (*mocks.MockDevice, *Allocator) {
	if setup.BufferAlignment == 0 {
		setup.BufferAlignment = 16
	}
	if setup.MaxBufferLength == 0 {
		setup.MaxBufferLength = 1 << 20
	}

	device := mocks.NewMockDevice(ctrl)
	device.EXPECT().BufferAlignment().Return(setup.BufferAlignment).AnyTimes()
	device.EXPECT().MaxBufferLength().Return(setup.MaxBufferLength).AnyTimes()
	device.EXPECT().SupportsExplicitCacheManagement().Return(!setup.NoExplicitCacheManagement).AnyTimes()

	if options.MemoryTypes == nil {
		options.MemoryTypes = testMemoryTypes()
	}
	if options.MemoryHeaps == nil {
		options.MemoryHeaps = testMemoryHeaps()
	}

	allocator, err := New(nil, device, options)
	require.NoError(t, err)

	return device, allocator
}

// easyMockBuffer builds a mock native buffer whose contents live in the provided byte slice.
// Release and DidModifyRange are permitted but not required; tests that care about either set
// their own expectations on a raw mock instead.
func easyMockBuffer(ctrl *gomock.Controller, backing []byte) *mocks.MockBuffer {
	buffer := mocks.NewMockBuffer(ctrl)
	buffer.EXPECT().Contents().Return(unsafe.Pointer(&backing[0])).AnyTimes()
	buffer.EXPECT().Length().Return(len(backing)).AnyTimes()
	buffer.EXPECT().DidModifyRange(gomock.Any(), gomock.Any()).AnyTimes()
	buffer.EXPECT().Release().AnyTimes()
	return buffer
}

// expectNewBuffer arranges for the device factory to serve a single NewBuffer call of the
// provided length with a functional mock buffer
func expectNewBuffer(ctrl *gomock.Controller, device *mocks.MockDevice, length int, storageMode native.StorageMode, cacheMode native.CPUCacheMode) []byte {
	backing := make([]byte, length)
	device.EXPECT().NewBuffer(length, storageMode, cacheMode).
		Return(easyMockBuffer(ctrl, backing), nil)
	return backing
}

// expectNewBufferWithBytes arranges for the device factory to serve a single NewBufferWithBytes
// call of the provided length, copying the source bytes the way a real platform would
func expectNewBufferWithBytes(ctrl *gomock.Controller, device *mocks.MockDevice, length int, storageMode native.StorageMode, cacheMode native.CPUCacheMode) []byte {
	backing := make([]byte, length)
	device.EXPECT().NewBufferWithBytes(gomock.Any(), length, storageMode, cacheMode).
		DoAndReturn(func(data unsafe.Pointer, dataLength int, mode native.StorageMode, cache native.CPUCacheMode) (native.Buffer, error) {
			copy(backing, unsafe.Slice((*byte)(data), dataLength))
			return easyMockBuffer(ctrl, backing), nil
		})
	return backing
}

type boundRange struct {
	Offset int
	Size   int
}

// testBufferResource is a buffer-like consumer that clears its back-reference and removes
// itself from the registry when told to detach
type testBufferResource struct {
	memory              *DeviceMemory
	unbindCalls         int
	storageLiveAtUnbind bool
}

func (b *testBufferResource) BindToAllocation(memory *DeviceMemory, offset int) {
	if memory == nil {
		b.unbindCalls++
		if b.memory != nil {
			b.storageLiveAtUnbind = b.memory.DeviceBuffer() != nil || b.memory.HostPointer() != nil
			_, _ = b.memory.UnbindBuffer(b)
			b.memory = nil
		}
		return
	}

	b.memory = memory
}

// testImageResource is an image-like consumer that records the ranges it is told to copy
// between its own storage and the shared linear storage
type testImageResource struct {
	memory      *DeviceMemory
	unbindCalls int

	pulls   []boundRange
	flushes []boundRange

	// onFlush runs on each CopyRangeFromSharedStorage call, with access to the live shared
	// storage pointer
	onFlush func(offset, size int)
}

func (i *testImageResource) BindToAllocation(memory *DeviceMemory, offset int) {
	if memory == nil {
		i.unbindCalls++
		if i.memory != nil {
			_, _ = i.memory.UnbindImage(i)
			i.memory = nil
		}
		return
	}

	i.memory = memory
}

func (i *testImageResource) CopyRangeToSharedStorage(offset, size int) {
	i.pulls = append(i.pulls, boundRange{Offset: offset, Size: size})
}

func (i *testImageResource) CopyRangeFromSharedStorage(offset, size int) {
	i.flushes = append(i.flushes, boundRange{Offset: offset, Size: size})
	if i.onFlush != nil {
		i.onFlush(offset, size)
	}
}

package devmem

import (
	"fmt"
	"sync/atomic"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/portability/memutils"
	"github.com/vkngwrapper/portability/native"
	"golang.org/x/exp/slog"
)

// Allocator creates DeviceMemory allocations against a buffer-centric native device and tracks
// per-heap bookkeeping for them. Its methods are safe for concurrent use unless it was created
// with AllocatorCreateExternallySynchronized.
type Allocator struct {
	useMutex bool
	logger   *slog.Logger
	device   native.Device

	memoryTypes        []core1_0.MemoryType
	memoryHeaps        []core1_0.MemoryHeap
	maxAllocationCount int

	// Number of live allocations handed out from this allocator
	allocationCount uint32
	// Number of live allocations drawing from each heap
	blockCount [common.MaxMemoryHeaps]int32
	// Size of live allocations drawing from each heap
	blockBytes [common.MaxMemoryHeaps]int64
}

// Device returns the native device this allocator creates buffers from
func (a *Allocator) Device() native.Device {
	return a.device
}

func (a *Allocator) MemoryTypeCount() int {
	return len(a.memoryTypes)
}

func (a *Allocator) MemoryHeapCount() int {
	return len(a.memoryHeaps)
}

func (a *Allocator) MemoryTypeProperties(memoryTypeIndex int) core1_0.MemoryType {
	return a.memoryTypes[memoryTypeIndex]
}

func (a *Allocator) MemoryHeapProperties(heapIndex int) core1_0.MemoryHeap {
	return a.memoryHeaps[heapIndex]
}

func (a *Allocator) MemoryTypeIndexToHeapIndex(memoryTypeIndex int) int {
	return a.memoryTypes[memoryTypeIndex].HeapIndex
}

// IsMemoryTypeHostNonCoherent returns true for memory types that are host-visible but require
// explicit flush and invalidate to synchronize with the device
func (a *Allocator) IsMemoryTypeHostNonCoherent(memoryTypeIndex int) bool {
	flags := a.memoryTypes[memoryTypeIndex].PropertyFlags

	return flags&(core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent) == core1_0.MemoryPropertyHostVisible
}

// AllocationCount returns the number of live allocations handed out from this allocator
func (a *Allocator) AllocationCount() uint32 {
	return atomic.LoadUint32(&a.allocationCount)
}

// HeapStatistics returns bookkeeping totals for the live allocations drawing from the
// provided heap
func (a *Allocator) HeapStatistics(heapIndex int) memutils.Statistics {
	count := int(atomic.LoadInt32(&a.blockCount[heapIndex]))
	bytes := int(atomic.LoadInt64(&a.blockBytes[heapIndex]))

	return memutils.Statistics{
		BlockCount:      count,
		AllocationCount: count,
		BlockBytes:      bytes,
		AllocationBytes: bytes,
	}
}

// BuildStatsString writes a json block containing the allocator's live bookkeeping to the
// provided writer
func (a *Allocator) BuildStatsString(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	obj.Name("TotalAllocations").Int(int(a.AllocationCount()))

	heaps := obj.Name("Heaps").Array()
	defer heaps.End()

	for heapIndex := 0; heapIndex < len(a.memoryHeaps); heapIndex++ {
		stats := a.HeapStatistics(heapIndex)

		heap := heaps.Object()
		heap.Name("Size").Int(a.memoryHeaps[heapIndex].Size)
		heap.Name("BlockCount").Int(stats.BlockCount)
		heap.Name("BlockBytes").Int(stats.BlockBytes)
		heap.End()
	}
}

func (a *Allocator) addBlockAllocation(heapIndex int, allocationSize int) {
	atomic.AddInt64(&a.blockBytes[heapIndex], int64(allocationSize))
	atomic.AddInt32(&a.blockCount[heapIndex], 1)
}

func (a *Allocator) removeBlockAllocation(heapIndex int, allocationSize int) {
	newVal := atomic.AddInt64(&a.blockBytes[heapIndex], int64(-allocationSize))
	if newVal < 0 {
		panic(fmt.Sprintf("block bytes bookkeeping for heapIndex %d went negative", heapIndex))
	}

	newCountVal := atomic.AddInt32(&a.blockCount[heapIndex], -1)
	if newCountVal < 0 {
		panic(fmt.Sprintf("block count bookkeeping for heapIndex %d went negative", heapIndex))
	}
}

// freeMemory returns an allocation's bookkeeping after its storage has been released
func (a *Allocator) freeMemory(memory *DeviceMemory) {
	heapIndex := a.MemoryTypeIndexToHeapIndex(memory.MemoryTypeIndex())
	a.removeBlockAllocation(heapIndex, memory.Size())
	// Decrement
	atomic.AddUint32(&a.allocationCount, ^uint32(0))
}

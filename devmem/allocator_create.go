package devmem

import (
	"math"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/portability/memutils"
	"github.com/vkngwrapper/portability/native"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific allocator behaviors to activate or deactivate
type CreateFlags int32

var allocatorCreateFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	allocatorCreateFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return allocatorCreateFlagsMapping.FlagsToString(f)
}

const (
	// AllocatorCreateExternallySynchronized ensures that this allocator and all DeviceMemory
	// objects created from it will not be synchronized internally. The consumer must guarantee
	// they are used from only one thread at a time or are synchronized by some other mechanism,
	// but performance may improve because internal mutexes are not used.
	AllocatorCreateExternallySynchronized CreateFlags = 1 << iota
)

func init() {
	AllocatorCreateExternallySynchronized.Register("AllocatorCreateExternallySynchronized")
}

// CreateOptions contains the device capability table and optional settings used when creating
// an Allocator
type CreateOptions struct {
	// Flags indicates specific allocator behaviors to activate or deactivate
	Flags CreateFlags

	// MemoryTypes is the capability table mapping memory-type index to the cache, coherency,
	// and accessibility properties that allocations of that type derive their policy from
	MemoryTypes []core1_0.MemoryType
	// MemoryHeaps describes the heaps the entries of MemoryTypes draw from
	MemoryHeaps []core1_0.MemoryHeap

	// MaxAllocationCount is the maximum number of simultaneous live allocations permitted.
	// When 0, no ceiling is applied.
	MaxAllocationCount int
}

// New creates a new Allocator from a native buffer-centric device and its capability table.
// If logger is nil, slog.Default() is used.
func New(logger *slog.Logger, device native.Device, options CreateOptions) (*Allocator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if device == nil {
		return nil, errors.New("attempted to create an Allocator with a nil native device")
	}
	if len(options.MemoryTypes) < 1 {
		return nil, errors.New("CreateOptions.MemoryTypes must contain at least one memory type")
	}
	if len(options.MemoryHeaps) < 1 {
		return nil, errors.New("CreateOptions.MemoryHeaps must contain at least one memory heap")
	}
	if len(options.MemoryHeaps) > common.MaxMemoryHeaps {
		return nil, errors.Newf("CreateOptions.MemoryHeaps contains %d heaps, but the maximum heap count is %d", len(options.MemoryHeaps), common.MaxMemoryHeaps)
	}

	for typeIndex, memoryType := range options.MemoryTypes {
		if memoryType.HeapIndex < 0 || memoryType.HeapIndex >= len(options.MemoryHeaps) {
			return nil, errors.Newf("memory type %d names heap index %d, but only %d heaps were provided", typeIndex, memoryType.HeapIndex, len(options.MemoryHeaps))
		}
	}

	alignment := device.BufferAlignment()
	if alignment < 1 {
		return nil, errors.New("the native device reports a zero buffer alignment")
	}
	err := memutils.CheckPow2(alignment, "device bufferAlignment")
	if err != nil {
		return nil, err
	}

	maxAllocationCount := options.MaxAllocationCount
	if maxAllocationCount == 0 {
		maxAllocationCount = math.MaxInt
	}

	useMutex := options.Flags&AllocatorCreateExternallySynchronized == 0
	return &Allocator{
		useMutex: useMutex,
		logger:   logger,
		device:   device,

		memoryTypes:        options.MemoryTypes,
		memoryHeaps:        options.MemoryHeaps,
		maxAllocationCount: maxAllocationCount,
	}, nil
}

package memutils

// Statistics describes device memory that has been doled out for a single memory heap
type Statistics struct {
	// BlockCount is the number of live device-memory allocations
	BlockCount int
	// AllocationCount is the number of consumer-visible allocations that have been handed out.
	// Because this library does not suballocate, it always matches BlockCount
	AllocationCount int
	// BlockBytes is the total size of live device-memory allocations
	BlockBytes int
	// AllocationBytes is the total size of consumer-visible allocations that have been handed out
	AllocationBytes int
}

func (s *Statistics) Clear() {
	s.BlockCount = 0
	s.AllocationCount = 0
	s.BlockBytes = 0
	s.AllocationBytes = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.BlockCount += other.BlockCount
	s.AllocationCount += other.AllocationCount
	s.BlockBytes += other.BlockBytes
	s.AllocationBytes += other.AllocationBytes
}

package devmem

// Resource is a buffer-like or image-like consumer that can be bound into a region of a
// DeviceMemory. Resources hold only a non-owning back-reference to their memory.
type Resource interface {
	// BindToAllocation attaches the resource to the provided memory at the provided offset.
	// During teardown the registry calls it with a nil memory: the implementation must clear
	// its back-reference and remove itself from the registry (UnbindBuffer or UnbindImage)
	// before returning, because backing storage is released as soon as every callback has run.
	BindToAllocation(memory *DeviceMemory, offset int)
}

// BufferResource is a consumer that aliases its bound region of the shared storage directly.
// Binding one forces the allocation to materialize its device buffer.
type BufferResource interface {
	Resource
}

// ImageResource is a consumer that keeps its texel data in private device-optimal storage and
// copies it to and from its bound region of the shared linear storage on flush and pull, since
// the two layouts may differ.
type ImageResource interface {
	Resource

	// CopyRangeToSharedStorage copies the resource's texel data overlapping the provided byte
	// range out of its device-optimal storage into the shared linear storage
	CopyRangeToSharedStorage(offset, size int)
	// CopyRangeFromSharedStorage copies the provided byte range of the shared linear storage
	// into the resource's device-optimal storage
	CopyRangeFromSharedStorage(offset, size int)
}

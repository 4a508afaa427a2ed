package devmem

import (
	"fmt"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// BuildStatsString writes a json block describing the allocation's policy, backing, and
// bindings to the provided writer
func (m *DeviceMemory) BuildStatsString(writer *jwriter.Writer) {
	obj := writer.Object()
	defer obj.End()

	m.printParameters(&obj)
}

func (m *DeviceMemory) printParameters(json *jwriter.ObjectState) {
	json.Name("Size").Int(m.size)
	json.Name("MemoryType").Int(m.memoryTypeIndex)
	json.Name("StorageMode").String(m.storageMode.String())
	json.Name("CPUCacheMode").String(m.cpuCacheMode.String())
	json.Name("HostCoherent").Bool(m.hostCoherent)
	json.Name("HostAccessible").Bool(m.hostAccessible)

	backing := "Unallocated"
	if m.deviceBuffer != nil {
		backing = "DeviceBuffer"
	} else if m.hostPtr != nil {
		backing = "HostMemory"
	}
	json.Name("Backing").String(backing)

	m.mutex.Lock()
	bufferCount := len(m.buffers)
	imageCount := len(m.images)
	m.mutex.Unlock()
	json.Name("BoundBuffers").Int(bufferCount)
	json.Name("BoundImages").Int(imageCount)

	if m.mapped {
		json.Name("MappedOffset").Int(m.mapOffset)
		json.Name("MappedSize").Int(m.mapSize)
	}

	if m.configErr != nil {
		json.Name("ConfigurationError").String(m.configErr.Error())
	}

	if m.userData != nil {
		json.Name("CustomData").String(fmt.Sprintf("%+v", m.userData))
	}

	if m.name != "" {
		json.Name("Name").String(m.name)
	}
}

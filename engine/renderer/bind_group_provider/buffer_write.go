package bind_group_provider

// BufferTarget selects which buffer of a provider a BufferWrite addresses.
type BufferTarget int

const (
	// TargetBinding addresses the uniform buffer at BufferWrite.Binding.
	TargetBinding BufferTarget = iota
	// TargetInstance addresses the per-instance attribute buffer.
	TargetInstance
)

// BufferWrite describes a single GPU buffer write operation targeting a specific buffer
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Target   BufferTarget
	Binding  int
	Offset   uint64
	Data     []byte
}

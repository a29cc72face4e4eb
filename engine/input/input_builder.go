package input

type queueConfig struct {
	size int
}

// QueueBuilderOption is a functional option applied to a queue during construction via NewQueue.
type QueueBuilderOption func(*queueConfig)

// WithQueueSize sets how many rotate events may be pending before Push starts dropping them.
//
// Parameters:
//   - size: the capacity, at least 1
//
// Returns:
//   - QueueBuilderOption: a function that applies the size option
func WithQueueSize(size int) QueueBuilderOption {
	return func(c *queueConfig) {
		c.size = size
	}
}

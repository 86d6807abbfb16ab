package translucency

// SorterBuilderOption is a functional option for configuring a Sorter.
type SorterBuilderOption func(*sorter)

// WithWorkers sets the number of pool workers. Defaults to runtime.NumCPU()-1.
// With one worker every operation runs on the caller's goroutine.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - SorterBuilderOption: option function to apply
func WithWorkers(n int) SorterBuilderOption {
	return func(s *sorter) {
		s.workers = max(n, 1)
	}
}

// WithParallelThreshold sets the item count from which work is fanned out across the pool.
// Smaller inputs are handled sequentially.
//
// Parameters:
//   - n: the threshold (minimum 2)
//
// Returns:
//   - SorterBuilderOption: option function to apply
func WithParallelThreshold(n int) SorterBuilderOption {
	return func(s *sorter) {
		s.threshold = max(n, 2)
	}
}

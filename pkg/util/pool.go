package util

import "runtime"

// PoolSize returns the worker/parser pool size for CPU-bound work.
//
// Formula: min(max(runtime.NumCPU() * 2, 4), 32). 2x the core count keeps
// goroutines runnable while others are blocked inside CGO parse calls;
// the cap bounds memory since each parser holds grammar state.
func PoolSize() int {
	size := runtime.NumCPU() * 2
	if size < 4 {
		size = 4
	}
	if size > 32 {
		size = 32
	}
	return size
}

// PoolSizeWithOverride returns override when positive, otherwise PoolSize.
// The override exists for tests and tuning.
func PoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return PoolSize()
}

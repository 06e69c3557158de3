package model

import "sync"

// TensorArena recycles the float32 scratch buffers built for model calls.
// Acquire returns a zeroed slice and a release func; callers defer the
// release so the buffer goes back to the pool on every exit path,
// including errors. This bounds peak memory on constrained devices where
// several analyses may run back to back.
type TensorArena struct {
	pool sync.Pool
}

// NewTensorArena returns an empty arena.
func NewTensorArena() *TensorArena {
	return &TensorArena{}
}

// Acquire returns a zeroed buffer of length n and its release func.
// The buffer must not be used after release.
func (a *TensorArena) Acquire(n int) ([]float32, func()) {
	var buf []float32
	if v := a.pool.Get(); v != nil {
		buf = v.([]float32)
	}
	if cap(buf) < n {
		buf = make([]float32, n)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = 0
	}
	release := func() {
		a.pool.Put(buf[:cap(buf)]) //nolint:staticcheck // slice is reused, not copied
	}
	return buf, release
}

package window

import (
	"sync"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
)

// RingBuffer is a circular buffer for period records with fixed capacity
type RingBuffer struct {
	data     []model.PeriodRecord
	capacity int
	size     int
	head     int // points to the next write position
	mu       sync.RWMutex
}

// NewRingBuffer creates a new ring buffer with the specified capacity
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{
		data:     make([]model.PeriodRecord, capacity),
		capacity: capacity,
	}
}

// Push adds a record to the buffer
// If the buffer is full, the oldest record is overwritten
func (rb *RingBuffer) Push(r model.PeriodRecord) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.data[rb.head] = r
	rb.head = (rb.head + 1) % rb.capacity
	if rb.size < rb.capacity {
		rb.size++
	}
}

// Size returns the current number of elements in the buffer
func (rb *RingBuffer) Size() int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.size
}

// IsFull returns true if the buffer is at capacity
func (rb *RingBuffer) IsFull() bool {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	return rb.size == rb.capacity
}

// Capacity returns the maximum capacity of the buffer
func (rb *RingBuffer) Capacity() int {
	return rb.capacity
}

// ToSlice returns all records in chronological order (oldest first)
func (rb *RingBuffer) ToSlice() []model.PeriodRecord {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	result := make([]model.PeriodRecord, rb.size)
	if rb.size == 0 {
		return result
	}

	start := 0
	if rb.size == rb.capacity {
		start = rb.head
	}

	for i := 0; i < rb.size; i++ {
		result[i] = rb.data[(start+i)%rb.capacity]
	}

	return result
}

// Last returns the most recent record
func (rb *RingBuffer) Last() *model.PeriodRecord {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	if rb.size == 0 {
		return nil
	}

	r := rb.data[(rb.head-1+rb.capacity)%rb.capacity]
	return &r
}

// Clear empties the buffer
func (rb *RingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	rb.size = 0
	rb.head = 0
}

package ringbuffer_test

import (
	"testing"

	"agentstack/pipeline/internal/sdk/ringbuffer"

	"github.com/stretchr/testify/assert"
)

func TestRingBuffer_AddAndDrain(t *testing.T) {
	// Arrange
	b := ringbuffer.New[int](3)

	// Act
	ok1 := b.Add(1)
	ok2 := b.Add(2)

	// Assert
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, 2, b.Size())
	assert.Equal(t, []int{1, 2}, b.Drain())
	assert.Equal(t, 0, b.Size())
}

func TestRingBuffer_DropsOldestWhenFull(t *testing.T) {
	// Arrange
	b := ringbuffer.New[int](2)
	b.Add(1)
	b.Add(2)

	// Act
	ok := b.Add(3)

	// Assert
	assert.False(t, ok)
	assert.Equal(t, []int{2, 3}, b.Peek())
	assert.EqualValues(t, 1, b.Dropped())
}

func TestRingBuffer_NonPositiveCapacityFallsBackToDefault(t *testing.T) {
	// Arrange & Act
	b := ringbuffer.New[int](0)

	// Assert
	assert.Equal(t, ringbuffer.DefaultCapacity, b.Capacity())
}

func TestRingBuffer_IsFullAndIsEmpty(t *testing.T) {
	// Arrange
	b := ringbuffer.New[int](1)

	// Assert (empty)
	assert.True(t, b.IsEmpty())
	assert.False(t, b.IsFull())

	// Act
	b.Add(1)

	// Assert (full)
	assert.True(t, b.IsFull())
	assert.False(t, b.IsEmpty())
}

func TestRingBuffer_DrainEmptyReturnsNil(t *testing.T) {
	// Arrange
	b := ringbuffer.New[int](4)

	// Act
	out := b.Drain()

	// Assert
	assert.Nil(t, out)
}

func TestRingBuffer_ClearKeepsDroppedCount(t *testing.T) {
	// Arrange
	b := ringbuffer.New[int](1)
	b.Add(1)
	b.Add(2) // drops 1

	// Act
	b.Clear()

	// Assert
	assert.True(t, b.IsEmpty())
	assert.EqualValues(t, 1, b.Dropped())
}

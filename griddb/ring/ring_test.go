package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testElem struct {
	rev uint64
	val string
}

func (e testElem) Revision() uint64 { return e.rev }

func Test_PushFrontAndBack(t *testing.T) {
	b := New[testElem](3)
	assert.True(t, b.Empty())

	assert.True(t, b.PushFront(testElem{rev: 1, val: "a"}))
	assert.True(t, b.PushFront(testElem{rev: 2, val: "b"}))

	front, ok := b.Front()
	require.True(t, ok)
	assert.Equal(t, "b", front.val)

	back, ok := b.Back()
	require.True(t, ok)
	assert.Equal(t, "a", back.val)

	assert.Equal(t, 2, b.ElementCount())
}

func Test_PushFrontFullReturnsFalse(t *testing.T) {
	b := New[testElem](2)
	assert.True(t, b.PushFront(testElem{rev: 1}))
	assert.True(t, b.PushFront(testElem{rev: 2}))
	assert.False(t, b.PushFront(testElem{rev: 3}))
	assert.True(t, b.Full())
}

func Test_PopBackRevisionMismatch(t *testing.T) {
	b := New[testElem](2)
	b.PushFront(testElem{rev: 1, val: "a"})

	_, ok := b.PopBack(999)
	assert.False(t, ok)
	assert.Equal(t, 1, b.ElementCount())

	got, ok := b.PopBack(1)
	require.True(t, ok)
	assert.Equal(t, "a", got.val)
	assert.True(t, b.Empty())
}

func Test_GrowPreservesOrder(t *testing.T) {
	b := New[testElem](2)
	b.PushFront(testElem{rev: 1, val: "a"})
	b.PushFront(testElem{rev: 2, val: "b"})

	require.NoError(t, b.Grow(4))
	assert.Equal(t, 4, b.Capacity())
	assert.Equal(t, 2, b.ElementCount())

	back, ok := b.Back()
	require.True(t, ok)
	assert.Equal(t, "a", back.val)

	assert.True(t, b.PushFront(testElem{rev: 3, val: "c"}))
	front, ok := b.Front()
	require.True(t, ok)
	assert.Equal(t, "c", front.val)
}

func Test_GrowRejectsSmallerCapacity(t *testing.T) {
	b := New[testElem](4)
	assert.Error(t, b.Grow(2))
}

package input

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	op     string
	a, b   float32
	aspect float32
}

type fakeCamera struct {
	calls []call
	err   error
}

func (f *fakeCamera) Rotate(dAz, dEl float32) error {
	f.calls = append(f.calls, call{op: "rotate", a: dAz, b: dEl})
	return f.err
}

func (f *fakeCamera) OnResize(aspect float32) error {
	f.calls = append(f.calls, call{op: "resize", aspect: aspect})
	return f.err
}

type fakeSurface struct {
	sizes [][2]int
}

func (f *fakeSurface) Resize(w, h int) {
	f.sizes = append(f.sizes, [2]int{w, h})
}

func TestDrainAppliesRotationsInOrder(t *testing.T) {
	q := NewQueue()
	require.True(t, q.Push(Rotate(0.1, 0.2)))
	require.True(t, q.Push(Rotate(0.3, 0.4)))

	cam := &fakeCamera{}
	n, err := q.Drain(cam, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []call{{op: "rotate", a: 0.1, b: 0.2}, {op: "rotate", a: 0.3, b: 0.4}}, cam.calls)

	n, err = q.Drain(cam, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestResizeCoalescesToLatest(t *testing.T) {
	q := NewQueue()
	q.Push(Resize(640, 480))
	q.Push(Resize(800, 400))
	q.Push(Rotate(1, 1))

	cam := &fakeCamera{}
	surface := &fakeSurface{}
	n, err := q.Drain(cam, surface)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, [][2]int{{800, 400}}, surface.sizes)
	require.Len(t, cam.calls, 2)
	assert.Equal(t, "rotate", cam.calls[0].op)
	assert.Equal(t, call{op: "resize", aspect: 2}, cam.calls[1])
}

func TestZeroSizedResizeIsIgnored(t *testing.T) {
	q := NewQueue()
	q.Push(Resize(0, 480))

	cam := &fakeCamera{}
	n, err := q.Drain(cam, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, cam.calls)
}

func TestPushDropsWhenFull(t *testing.T) {
	q := NewQueue(WithQueueSize(2))
	assert.True(t, q.Push(Rotate(1, 0)))
	assert.True(t, q.Push(Rotate(2, 0)))
	assert.False(t, q.Push(Rotate(3, 0)))
	assert.True(t, q.Push(Resize(10, 10)), "resize never drops")
	assert.Equal(t, 1, q.Dropped())
}

func TestDrainKeepsGoingAfterError(t *testing.T) {
	q := NewQueue()
	q.Push(Rotate(1, 0))
	q.Push(Rotate(2, 0))

	boom := errors.New("boom")
	cam := &fakeCamera{err: boom}
	n, err := q.Drain(cam, nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, n)
	assert.Len(t, cam.calls, 2)
}

func TestConcurrentProducers(t *testing.T) {
	q := NewQueue(WithQueueSize(1000))
	var wg sync.WaitGroup
	for p := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				q.Push(Rotate(float32(p), 0))
			}
		}()
	}
	wg.Wait()

	cam := &fakeCamera{}
	n, err := q.Drain(cam, nil)
	require.NoError(t, err)
	assert.Equal(t, 400, n)
}

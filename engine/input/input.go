package input

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-xmas/common"
)

// DefaultQueueSize is the rotate event capacity of a queue built without WithQueueSize.
const DefaultQueueSize = 256

// EventKind identifies an input event.
type EventKind int

const (
	// EventRotate carries orbit angle deltas.
	EventRotate EventKind = iota
	// EventResize carries a new surface size.
	EventResize
)

// Event is one input event. Rotate events use DAzimuth and DElevation; resize events use
// Width and Height.
type Event struct {
	Kind EventKind

	DAzimuth   float32
	DElevation float32

	Width  int
	Height int
}

// Rotate builds a rotate event.
func Rotate(dAzimuth, dElevation float32) Event {
	return Event{Kind: EventRotate, DAzimuth: dAzimuth, DElevation: dElevation}
}

// Resize builds a resize event.
func Resize(width, height int) Event {
	return Event{Kind: EventResize, Width: width, Height: height}
}

// CameraTarget is the part of the camera the queue drives.
type CameraTarget interface {
	Rotate(dAzimuth, dElevation float32) error
	OnResize(aspect float32) error
}

// SurfaceTarget is resized before the camera sees a new aspect ratio. A renderer satisfies it.
type SurfaceTarget interface {
	Resize(width, height int)
}

// queue is the implementation of the Queue interface.
type queue struct {
	rotations chan Event

	mu            sync.Mutex
	pendingResize *Event
	dropped       int
}

// Queue carries camera mutations from event sources to the frame goroutine. Any goroutine may
// Push; only the frame goroutine calls Drain, so the camera is only ever mutated from one place.
type Queue interface {
	// Push enqueues an event without blocking. A resize replaces any resize not yet drained.
	//
	// Parameters:
	//   - ev: the event
	//
	// Returns:
	//   - bool: false if a rotate event was dropped because the queue is full
	Push(ev Event) bool

	// Drain applies every pending rotate event in arrival order, then the latest resize if
	// any. The surface is resized before the camera's aspect ratio changes.
	//
	// Parameters:
	//   - cam: the camera receiving the events
	//   - surface: the surface to resize, or nil
	//
	// Returns:
	//   - int: the number of events applied
	//   - error: the first camera error; remaining events are still applied
	Drain(cam CameraTarget, surface SurfaceTarget) (int, error)

	// Dropped returns how many rotate events were discarded because the queue was full.
	Dropped() int
}

var _ Queue = &queue{}

// NewQueue creates an input queue.
//
// Parameters:
//   - options: functional options to configure the queue
//
// Returns:
//   - Queue: the queue
func NewQueue(options ...QueueBuilderOption) Queue {
	cfg := queueConfig{size: DefaultQueueSize}
	for _, option := range options {
		option(&cfg)
	}
	if cfg.size < 1 {
		cfg.size = 1
	}
	return &queue{rotations: make(chan Event, cfg.size)}
}

func (q *queue) Push(ev Event) bool {
	if ev.Kind == EventResize {
		q.mu.Lock()
		q.pendingResize = &ev
		q.mu.Unlock()
		return true
	}

	select {
	case q.rotations <- ev:
		return true
	default:
		q.mu.Lock()
		q.dropped++
		q.mu.Unlock()
		common.ComponentLogger("input").Warn("input queue full, event dropped", "kind", ev.Kind)
		return false
	}
}

func (q *queue) Drain(cam CameraTarget, surface SurfaceTarget) (int, error) {
	var firstErr error
	applied := 0
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for {
		select {
		case ev := <-q.rotations:
			keep(cam.Rotate(ev.DAzimuth, ev.DElevation))
			applied++
			continue
		default:
		}
		break
	}

	q.mu.Lock()
	resize := q.pendingResize
	q.pendingResize = nil
	q.mu.Unlock()

	if resize != nil && resize.Width > 0 && resize.Height > 0 {
		if surface != nil {
			surface.Resize(resize.Width, resize.Height)
		}
		keep(cam.OnResize(float32(resize.Width) / float32(resize.Height)))
		applied++
	}
	return applied, firstErr
}

func (q *queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

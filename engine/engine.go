package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-xmas/common"
	"github.com/Carmen-Shannon/oxy-xmas/engine/camera"
	"github.com/Carmen-Shannon/oxy-xmas/engine/input"
	"github.com/Carmen-Shannon/oxy-xmas/engine/profiler"
	"github.com/Carmen-Shannon/oxy-xmas/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xmas/engine/scene"
	"github.com/Carmen-Shannon/oxy-xmas/engine/window"
)

// engine implements the Engine interface.
// Every frame runs on the goroutine that called Run; other goroutines talk to it through the
// input queue and Quit.
type engine struct {
	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window
	queue  input.Queue

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickCallback func(deltaTime float32)

	scenes map[int]scene.Scene

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	maxFrames        int           // headless only; 0 = until Quit

	frames    int
	lastFrame time.Time
}

// Engine is the main entry point for the engine.
// It drives the frame loop: drain input, advance, draw, profile.
type Engine interface {
	// Window returns the underlying window, or nil when running headless.
	Window() window.Window

	// Input returns the queue that window and remote input are pushed to.
	Input() input.Queue

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickCallback registers a function called once per frame after the scenes advance and
	// before they draw.
	//
	// Parameters:
	//   - callback: function receiving the time since the previous frame in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the frame loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key.
	// Scenes are advanced and drawn in ascending key order.
	//
	// Parameters:
	//   - key: the z-index determining order (lower first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key, or nil.
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	Scenes() map[int]scene.Scene

	// Step runs one frame: applies queued input to every active scene's camera and surface,
	// advances each active scene, calls the tick callback, draws each active scene and ticks
	// the profiler. A failing scene does not stop the others.
	//
	// Returns:
	//   - error: every input, advance and draw error of the frame joined together
	Step() error

	// Frames returns the number of frames stepped so far.
	Frames() int

	// Run steps frames until the window closes, Quit is called, or in headless mode the
	// configured frame count is reached. Frame errors are logged and the loop continues.
	Run()

	// Quit signals the frame loop to stop.
	// Safe to call from any goroutine and multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// When a window is configured its drags and resizes are routed into the input queue.
//
// Parameters:
//   - options: functional options for engine configuration (window, scenes, profiling, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel:      make(chan struct{}),
		scenes:           make(map[int]scene.Scene),
		profilingEnabled: false,
	}

	for _, opt := range options {
		opt(e)
	}
	if e.queue == nil {
		e.queue = input.NewQueue()
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}

	if e.window != nil {
		w := e.window
		w.SetResizeCallback(func(width, height int) {
			e.queue.Push(input.Resize(width, height))
		})
		w.SetDragCallback(func(dx, dy float64) {
			dAz, dEl := camera.DragToRotation(dx, dy, w.Width(), w.Height(), camera.DragPointer)
			e.queue.Push(input.Rotate(dAz, dEl))
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Input() input.Queue {
	return e.queue
}

func (e *engine) Run() {
	log := common.ComponentLogger("engine")
	log.Info("frame loop started", "scenes", len(e.scenes), "headless", e.window == nil)
	defer func() {
		log.Info("frame loop stopped", "frames", e.frames, "dropped_input", e.queue.Dropped())
	}()

	step := func() {
		if err := e.Step(); err != nil {
			log.Error("frame failed", "frame", e.frames, "error", err)
		}
	}

	if e.window != nil {
		e.window.SetUpdateCallback(func() {
			select {
			case <-e.quitChannel:
				e.window.RequestClose()
			default:
				step()
			}
		})
		e.window.ProcessMessages()
		return
	}

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			step()
			if e.maxFrames > 0 && e.frames >= e.maxFrames {
				return
			}
		}
	}
}

// Quit signals the frame loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) Step() error {
	frameStart := time.Now()
	var dt float32
	if !e.lastFrame.IsZero() {
		dt = float32(frameStart.Sub(e.lastFrame).Seconds())
	}
	e.lastFrame = frameStart

	active := e.activeScenes()
	var errs []error

	if len(active) > 0 {
		targets := newSceneTargets(active)
		if _, err := e.queue.Drain(targets, targets); err != nil {
			errs = append(errs, err)
		}
	}

	// A scene whose update failed is not drawn this frame; its instance data may be half written.
	ready := make([]scene.Scene, 0, len(active))
	for _, s := range active {
		if err := s.AdvanceFrame(); err != nil {
			errs = append(errs, fmt.Errorf("scene %q: %w", s.Name(), err))
			continue
		}
		ready = append(ready, s)
	}

	if e.tickCallback != nil {
		e.tickCallback(dt)
	}

	for _, s := range ready {
		if err := s.Draw(); err != nil {
			errs = append(errs, err)
		}
	}

	e.frames++
	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}

	// Frame rate limiting
	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - time.Since(frameStart); remaining > 0 {
			time.Sleep(remaining)
		}
	}
	return errors.Join(errs...)
}

func (e *engine) Frames() int {
	return e.frames
}

// activeScenes returns the active scenes in ascending z-index order.
func (e *engine) activeScenes() []scene.Scene {
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	active := make([]scene.Scene, 0, len(keys))
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
		}
	}
	return active
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	e.renderFrameLimit = frameDuration(fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}

func frameDuration(fps float64) time.Duration {
	if fps <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / fps)
}

// sceneTargets fans drained input out to every active scene. Scenes sharing a renderer resize
// it once.
type sceneTargets struct {
	cameras   []camera.Camera
	renderers []renderer.Renderer
}

var (
	_ input.CameraTarget  = &sceneTargets{}
	_ input.SurfaceTarget = &sceneTargets{}
)

func newSceneTargets(scenes []scene.Scene) *sceneTargets {
	t := &sceneTargets{}
	seen := map[renderer.Renderer]bool{}
	for _, s := range scenes {
		t.cameras = append(t.cameras, s.Camera())
		if r := s.Renderer(); r != nil && !seen[r] {
			seen[r] = true
			t.renderers = append(t.renderers, r)
		}
	}
	return t
}

func (t *sceneTargets) Rotate(dAzimuth, dElevation float32) error {
	var errs []error
	for _, c := range t.cameras {
		errs = append(errs, c.Rotate(dAzimuth, dElevation))
	}
	return errors.Join(errs...)
}

func (t *sceneTargets) OnResize(aspect float32) error {
	var errs []error
	for _, c := range t.cameras {
		errs = append(errs, c.OnResize(aspect))
	}
	return errors.Join(errs...)
}

func (t *sceneTargets) Resize(width, height int) {
	for _, r := range t.renderers {
		r.Resize(width, height)
	}
}

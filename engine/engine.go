package engine

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/event"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/profiler"
)

// engine implements the Engine interface.
// All phases are fired on the goroutine that calls Start.
type engine struct {
	running atomic.Bool

	quitChannel  chan struct{}
	quitOnce     sync.Once // Ensures quitChannel is only closed once
	stopRequests atomic.Int64

	initializeEvent   *event.Event[InitializeEventArg]
	processEvent      *event.Event[ProcessEventArg]
	deinitializeEvent *event.Event[DeinitializeEventArg]

	registry []Registration

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate atomic.Int64 // nanoseconds per tick

	logger *slog.Logger
}

// Engine drives the Initialize / Process / Deinitialize lifecycle.
// Modules and listeners attach to the three phase events; Start runs the loop.
type Engine interface {
	// InitializeEvent returns the attach point fired once when Start is called.
	//
	// Returns:
	//   - *event.Event[InitializeEventArg]: the Initialize event
	InitializeEvent() *event.Event[InitializeEventArg]

	// ProcessEvent returns the attach point fired once per tick.
	//
	// Returns:
	//   - *event.Event[ProcessEventArg]: the Process event
	ProcessEvent() *event.Event[ProcessEventArg]

	// DeinitializeEvent returns the attach point fired once after the loop ends.
	//
	// Returns:
	//   - *event.Event[DeinitializeEventArg]: the Deinitialize event
	DeinitializeEvent() *event.Event[DeinitializeEventArg]

	// RegisterModule attaches a module to all three phases, in the order
	// Initialize, Process, Deinitialize. Registering the same module twice is rejected.
	//
	// Parameters:
	//   - m: the module to register
	//
	// Returns:
	//   - error: ErrModuleRegistered (wrapped) if m is already registered
	RegisterModule(m Module) error

	// Registrations returns the registry table in registration order.
	//
	// Returns:
	//   - []Registration: a copy of the registry
	Registrations() []Registration

	// Start fires Initialize, then Process at the tick rate until Stop is called,
	// then Deinitialize. Blocks until the loop finishes.
	Start()

	// Stop requests the loop to end after the current tick.
	// Safe to call multiple times and from any goroutine.
	Stop()

	// StopRequests returns how many times Stop has been called.
	//
	// Returns:
	//   - int: the number of stop requests
	StopRequests() int

	// IsRunning reports whether Start is currently executing.
	//
	// Returns:
	//   - bool: true while the loop runs
	IsRunning() bool

	// SetTickRate sets the Process rate in ticks per second (defaults to 60 if <= 0).
	// Takes effect from the next tick.
	//
	// Parameters:
	//   - fps: target ticks per second
	SetTickRate(fps float64)

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, logger)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel:       make(chan struct{}),
		initializeEvent:   event.NewEvent[InitializeEventArg](),
		processEvent:      event.NewEvent[ProcessEventArg](),
		deinitializeEvent: event.NewEvent[DeinitializeEventArg](),
		logger:            slog.Default(),
	}
	e.engineTickRate.Store(int64(time.Second / 60))

	for _, opt := range options {
		opt(e)
	}
	e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))

	return e
}

func (e *engine) InitializeEvent() *event.Event[InitializeEventArg] {
	return e.initializeEvent
}

func (e *engine) ProcessEvent() *event.Event[ProcessEventArg] {
	return e.processEvent
}

func (e *engine) DeinitializeEvent() *event.Event[DeinitializeEventArg] {
	return e.deinitializeEvent
}

func (e *engine) Start() {
	e.running.Store(true)
	defer e.running.Store(false)

	e.logger.Info("engine starting", "modules", len(e.registry))
	e.initializeEvent.Notify(InitializeEventArg{})

	lastTick := time.Now()
	var frame uint64
	for !e.quitRequested() {
		now := time.Now()
		dt := float32(now.Sub(lastTick).Seconds())
		lastTick = now

		e.processEvent.Notify(ProcessEventArg{Start: now, DeltaTime: dt, Frame: frame})
		frame++

		if e.profilingEnabled.Load() {
			e.profiler.Tick()
		}

		if remaining := time.Duration(e.engineTickRate.Load()) - time.Since(now); remaining > 0 {
			select {
			case <-e.quitChannel:
			case <-time.After(remaining):
			}
		}
	}

	e.deinitializeEvent.Notify(DeinitializeEventArg{})
	e.logger.Info("engine stopped", "frames", frame)
}

// Stop signals the loop to exit. Uses sync.Once so the quit channel is only closed once.
func (e *engine) Stop() {
	e.stopRequests.Add(1)
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) StopRequests() int {
	return int(e.stopRequests.Load())
}

func (e *engine) quitRequested() bool {
	select {
	case <-e.quitChannel:
		return true
	default:
		return false
	}
}

func (e *engine) IsRunning() bool {
	return e.running.Load()
}

func (e *engine) SetTickRate(fps float64) {
	e.engineTickRate.Store(int64(tickDuration(fps)))
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func tickDuration(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}

package engine

import (
	"errors"
	"fmt"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/event"
)

// ErrModuleRegistered is returned when a module is registered with the engine a second time.
var ErrModuleRegistered = errors.New("module already registered")

// Module is anything that needs time in all three engine phases: the display surface,
// the renderer and the input device. There is one method per phase argument type.
type Module interface {
	HandleInitialize(arg InitializeEventArg)
	HandleProcess(arg ProcessEventArg)
	HandleDeinitialize(arg DeinitializeEventArg)
}

// Registration records which phases a registered module listens to.
type Registration struct {
	Module Module
	Phases []Phase
}

// InitializeListener adapts a Module to an Initialize listener.
//
// Parameters:
//   - m: the module
//
// Returns:
//   - event.Listener[InitializeEventArg]: a listener forwarding to m.HandleInitialize
func InitializeListener(m Module) event.Listener[InitializeEventArg] {
	return event.ListenerFunc[InitializeEventArg](m.HandleInitialize)
}

// ProcessListener adapts a Module to a Process listener.
//
// Parameters:
//   - m: the module
//
// Returns:
//   - event.Listener[ProcessEventArg]: a listener forwarding to m.HandleProcess
func ProcessListener(m Module) event.Listener[ProcessEventArg] {
	return event.ListenerFunc[ProcessEventArg](m.HandleProcess)
}

// DeinitializeListener adapts a Module to a Deinitialize listener.
//
// Parameters:
//   - m: the module
//
// Returns:
//   - event.Listener[DeinitializeEventArg]: a listener forwarding to m.HandleDeinitialize
func DeinitializeListener(m Module) event.Listener[DeinitializeEventArg] {
	return event.ListenerFunc[DeinitializeEventArg](m.HandleDeinitialize)
}

// RegisterModule attaches m to the Initialize, Process and Deinitialize events, in that order.
// Modules registered earlier are notified earlier in every phase.
func (e *engine) RegisterModule(m Module) error {
	for _, r := range e.registry {
		if r.Module == m {
			return fmt.Errorf("register %T: %w", m, ErrModuleRegistered)
		}
	}

	e.initializeEvent.Attach(InitializeListener(m))
	e.processEvent.Attach(ProcessListener(m))
	e.deinitializeEvent.Attach(DeinitializeListener(m))

	e.registry = append(e.registry, Registration{
		Module: m,
		Phases: []Phase{PhaseInitialize, PhaseProcess, PhaseDeinitialize},
	})
	e.logger.Debug("module registered", "module", fmt.Sprintf("%T", m))
	return nil
}

func (e *engine) Registrations() []Registration {
	out := make([]Registration, len(e.registry))
	copy(out, e.registry)
	return out
}

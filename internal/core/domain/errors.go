// Package domain provides the simulation entities: tasks, compute resources, the device battery and run results.
package domain

import "errors"

var (
	// ErrEnergyExhausted is returned when the battery cannot pay for a local task
	ErrEnergyExhausted = errors.New("energy exhausted")
	// ErrUnresolvedResource is returned when a routing target matches no resource
	ErrUnresolvedResource = errors.New("unresolved resource name")
	// ErrNoFeasibleResource is returned when every candidate refuses a task
	ErrNoFeasibleResource = errors.New("no feasible resource")
	// ErrInvalidResource is returned for resources that cannot execute work
	ErrInvalidResource = errors.New("invalid resource")
	// ErrRunNotFound is returned by run stores for unknown ids
	ErrRunNotFound = errors.New("run not found")
)

package domain

import "fmt"

// Task is a unit of work routed to one compute resource.
// Size, Priority, DataSize and ArrivalTime are fixed at creation; the remaining
// fields are written by the scheduler and the owning resource.
type Task struct {
	ID          int     `json:"id"`
	Size        float64 `json:"size"`      // compute units
	Priority    int     `json:"priority"`  // lower is more urgent
	DataSize    float64 `json:"data_size"` // MB to upload when offloaded
	ArrivalTime float64 `json:"arrival_time"`

	StartTime        *float64 `json:"start_time,omitempty"`
	CompletionTime   *float64 `json:"completion_time,omitempty"`
	AssignedResource string   `json:"assigned_resource,omitempty"`
}

// NewTask creates a task arriving at time 0
func NewTask(id int, size float64, priority int, dataSize float64) *Task {
	return &Task{
		ID:       id,
		Size:     size,
		Priority: priority,
		DataSize: dataSize,
	}
}

// Started reports whether a resource has begun executing the task
func (t *Task) Started() bool {
	return t.StartTime != nil
}

// Completed reports whether a resource has finished the task
func (t *Task) Completed() bool {
	return t.CompletionTime != nil
}

// WaitTime is the time spent queued before execution, 0 while unstarted
func (t *Task) WaitTime() float64 {
	if t.StartTime == nil {
		return 0
	}
	return *t.StartTime - t.ArrivalTime
}

// ArrivingAt sets the arrival time and returns the task
func (t *Task) ArrivingAt(arrival float64) *Task {
	t.ArrivalTime = arrival
	return t
}

func (t *Task) String() string {
	return fmt.Sprintf("Task %d (size: %g, priority: %d, data: %gMB)", t.ID, t.Size, t.Priority, t.DataSize)
}

package domain

import (
	"container/heap"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Class is the network tier of a resource; it decides the upload path of offloaded data
type Class string

const (
	ClassLocal   Class = "local"
	ClassEdge    Class = "edge"
	ClassCloud   Class = "cloud"
	ClassUnknown Class = "unknown"
)

// ClassFromName infers the tier from a resource name such as "EdgeServer1"
func ClassFromName(name string) Class {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "local"):
		return ClassLocal
	case strings.Contains(n, "edge"):
		return ClassEdge
	case strings.Contains(n, "cloud"):
		return ClassCloud
	}
	return ClassUnknown
}

// ParseClass maps a configured class, falling back to the name when empty
func ParseClass(class, name string) Class {
	switch Class(strings.ToLower(class)) {
	case ClassLocal:
		return ClassLocal
	case ClassEdge:
		return ClassEdge
	case ClassCloud:
		return ClassCloud
	}
	return ClassFromName(name)
}

// Feasibility decides whether a resource may take a task
type Feasibility interface {
	CanAccept(task *Task) bool
}

// QueueStats summarises one resource after its queue was drained
type QueueStats struct {
	Resource       string  `json:"resource"`
	AvgWaitTime    float64 `json:"avg_wait_time"`
	MaxQueueLength int     `json:"max_queue_length"`
	TasksProcessed int     `json:"tasks_processed"`
}

// Resource is a queue-bearing compute node executing one task at a time.
// Its queue and completed list are owned exclusively by the resource.
type Resource struct {
	Name        string
	Class       Class
	ComputeRate float64 // task size units per time unit
	AccessDelay float64 // added to every finish estimate

	// CurrentTime is the resource clock; Drain starts from it and leaves it at the last completion
	CurrentTime float64

	queue       taskHeap
	completed   []*Task
	maxQueueLen int
	feasibility Feasibility
}

// NewResource validates the rate and delay of a resource
func NewResource(name string, class Class, computeRate, accessDelay float64) (*Resource, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidResource)
	}
	if computeRate <= 0 || math.IsNaN(computeRate) || math.IsInf(computeRate, 0) {
		return nil, fmt.Errorf("%w: %s compute rate %v", ErrInvalidResource, name, computeRate)
	}
	if accessDelay < 0 || math.IsNaN(accessDelay) {
		return nil, fmt.Errorf("%w: %s access delay %v", ErrInvalidResource, name, accessDelay)
	}
	if class == "" {
		class = ClassFromName(name)
	}
	return &Resource{
		Name:        name,
		Class:       class,
		ComputeRate: computeRate,
		AccessDelay: accessDelay,
	}, nil
}

// WithFeasibility injects the acceptance policy consulted by CanAccept and EstimateFinishTime
func (r *Resource) WithFeasibility(f Feasibility) *Resource {
	r.feasibility = f
	return r
}

// ExecutionTime is the time this resource needs for task alone
func (r *Resource) ExecutionTime(task *Task) float64 {
	return task.Size / r.ComputeRate
}

// Enqueue adds task to the priority queue and stamps the assignment
func (r *Resource) Enqueue(task *Task) {
	heap.Push(&r.queue, task)
	task.AssignedResource = r.Name
	if len(r.queue) > r.maxQueueLen {
		r.maxQueueLen = len(r.queue)
	}
}

// CanAccept reports whether the injected policy allows the task; true without a policy
func (r *Resource) CanAccept(task *Task) bool {
	if r.feasibility == nil {
		return true
	}
	return r.feasibility.CanAccept(task)
}

// EstimateFinishTime predicts when task would finish if appended now.
// It returns +Inf for tasks the resource cannot accept.
func (r *Resource) EstimateFinishTime(task *Task, now float64) float64 {
	if !r.CanAccept(task) {
		return math.Inf(1)
	}
	queued := 0.0
	for _, t := range r.queue {
		queued += r.ExecutionTime(t)
	}
	return now + r.AccessDelay + queued + r.ExecutionTime(task)
}

// AdvanceClock moves the resource clock forward to now; it never moves it back
func (r *Resource) AdvanceClock(now float64) {
	if now > r.CurrentTime {
		r.CurrentTime = now
	}
}

// Drain executes every queued task in priority order, sequentially and without preemption.
// A task never starts before its arrival time.
func (r *Resource) Drain() []*Task {
	if len(r.queue) == 0 {
		return nil
	}

	executed := make([]*Task, 0, len(r.queue))
	clock := r.CurrentTime
	for r.queue.Len() > 0 {
		task := heap.Pop(&r.queue).(*Task)

		start := max(clock, task.ArrivalTime)
		end := start + r.ExecutionTime(task)
		task.StartTime = &start
		task.CompletionTime = &end
		clock = end

		executed = append(executed, task)
	}
	r.CurrentTime = clock
	r.completed = append(r.completed, executed...)
	return executed
}

// QueueLength is the number of pending tasks
func (r *Resource) QueueLength() int {
	return len(r.queue)
}

// QueueLoad is the total size of pending tasks
func (r *Resource) QueueLoad() float64 {
	load := 0.0
	for _, t := range r.queue {
		load += t.Size
	}
	return load
}

// MaxQueueLength is the largest queue length observed since creation
func (r *Resource) MaxQueueLength() int {
	return r.maxQueueLen
}

// Completed returns the executed tasks in execution order
func (r *Resource) Completed() []*Task {
	return r.completed
}

// Stats computes the wait-time summary over completed tasks
func (r *Resource) Stats() QueueStats {
	qs := QueueStats{
		Resource:       r.Name,
		MaxQueueLength: r.maxQueueLen,
		TasksProcessed: len(r.completed),
	}
	if len(r.completed) == 0 {
		return qs
	}
	waits := make([]float64, 0, len(r.completed))
	for _, t := range r.completed {
		if t.Started() {
			waits = append(waits, t.WaitTime())
		}
	}
	if len(waits) > 0 {
		qs.AvgWaitTime = stat.Mean(waits, nil)
	}
	return qs
}

func (r *Resource) String() string {
	return fmt.Sprintf("Resource(name=%s, class=%s, rate=%g, delay=%g, queue=%d)",
		r.Name, r.Class, r.ComputeRate, r.AccessDelay, r.QueueLength())
}

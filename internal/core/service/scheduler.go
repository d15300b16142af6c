package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
)

// SchedulerOption tunes a Scheduler
type SchedulerOption func(*Scheduler)

// WithStrictRouting makes an unroutable task fail the pass instead of being dropped
func WithStrictRouting(strict bool) SchedulerOption {
	return func(s *Scheduler) { s.strict = strict }
}

// Scheduler binds tasks to resource queues with one strategy, drains the queues
// and aggregates the outcome. A Scheduler serves a single scenario run.
type Scheduler struct {
	device      *domain.Device
	resources   []*domain.Resource
	strategy    Strategy
	resolver    *resolver
	assignments []domain.Assignment
	events      []domain.Event
	strict      bool
	log         *zap.Logger
}

func NewScheduler(
	device *domain.Device,
	resources []*domain.Resource,
	strategy Strategy,
	log *zap.Logger,
	opts ...SchedulerOption,
) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scheduler{
		device:    device,
		resources: resources,
		strategy:  strategy,
		resolver:  newResolver(device, resources),
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleTasks routes tasks in the given order; the order is the arrival order the
// myopic policy reasons about. Every resource clock is raised to now first so the
// queues drain from the time the estimates were made. Tasks routed to the device
// reserve their energy here.
func (s *Scheduler) ScheduleTasks(tasks []*domain.Task, now float64) ([]domain.Assignment, error) {
	for _, res := range s.all() {
		res.AdvanceClock(now)
	}
	scheduled := make([]domain.Assignment, 0, len(tasks))

	for _, task := range tasks {
		target, err := s.strategy.Decide(task, s.device, s.resources, now)
		if err != nil {
			if ferr := s.unroutable(task, target, err.Error()); ferr != nil {
				s.assignments = append(s.assignments, scheduled...)
				return scheduled, ferr
			}
			continue
		}

		res, ok := s.resolver.resolve(target)
		if !ok {
			if ferr := s.unroutable(task, target, "no resource matches target"); ferr != nil {
				s.assignments = append(s.assignments, scheduled...)
				return scheduled, ferr
			}
			continue
		}

		res.Enqueue(task)
		scheduled = append(scheduled, domain.Assignment{Task: task, Resource: res})
		s.log.Debug("Task routed",
			zap.Int("task_id", task.ID),
			zap.String("target", target),
			zap.String("resource", res.Name),
			zap.Int("queue_length", res.QueueLength()))

		if s.device != nil && res == s.device.Resource {
			if err := s.device.ConsumeEnergy(task); err != nil {
				s.events = append(s.events, domain.Event{
					Kind:    domain.EventEnergyShortfall,
					TaskID:  task.ID,
					Target:  res.Name,
					Message: err.Error(),
				})
				s.log.Warn("Task scheduled locally without enough energy",
					zap.Int("task_id", task.ID),
					zap.Float64("battery_remaining", s.device.Battery.Remaining),
					zap.Error(err))
			}
		}
	}

	s.assignments = append(s.assignments, scheduled...)
	return scheduled, nil
}

// unroutable records a dropped task; with strict routing it returns the error ending the pass
func (s *Scheduler) unroutable(task *domain.Task, target, reason string) error {
	s.events = append(s.events, domain.Event{
		Kind:    domain.EventUnresolvedResource,
		TaskID:  task.ID,
		Target:  target,
		Message: reason,
	})
	s.log.Warn("Could not route task",
		zap.Int("task_id", task.ID),
		zap.String("target", target),
		zap.String("reason", reason),
		zap.Strings("available", s.resourceNames()))

	if s.strict {
		return fmt.Errorf("%w: task %d target %q: %s", domain.ErrUnresolvedResource, task.ID, target, reason)
	}
	return nil
}

// Resolve maps a routing target to a resource
func (s *Scheduler) Resolve(target string) (*domain.Resource, bool) {
	return s.resolver.resolve(target)
}

// ProcessAllQueues drains the device first, then the resources in order.
// Calling it again on drained queues changes nothing.
func (s *Scheduler) ProcessAllQueues() {
	for _, res := range s.all() {
		executed := res.Drain()
		if len(executed) > 0 {
			s.log.Debug("Queue drained",
				zap.String("resource", res.Name),
				zap.Int("executed", len(executed)),
				zap.Float64("clock", res.CurrentTime))
		}
	}
}

// Makespan is the latest completion time over every resource, 0 when nothing completed
func (s *Scheduler) Makespan() float64 {
	makespan := 0.0
	for _, res := range s.all() {
		for _, t := range res.Completed() {
			if t.CompletionTime != nil && *t.CompletionTime > makespan {
				makespan = *t.CompletionTime
			}
		}
	}
	return makespan
}

// OffloadingStats counts completed tasks on the device against everything else
func (s *Scheduler) OffloadingStats() domain.OffloadStats {
	var stats domain.OffloadStats
	if s.device != nil {
		stats.Local = len(s.device.Completed())
	}
	for _, res := range s.resources {
		stats.Remote += len(res.Completed())
	}
	if total := stats.Local + stats.Remote; total > 0 {
		stats.PercentageOffloaded = float64(stats.Remote) / float64(total) * 100
	}
	return stats
}

// QueueStats returns per-resource statistics, device first
func (s *Scheduler) QueueStats() []domain.QueueStats {
	all := s.all()
	stats := make([]domain.QueueStats, 0, len(all))
	for _, res := range all {
		stats = append(stats, res.Stats())
	}
	return stats
}

// EnergyStats reports the device battery
func (s *Scheduler) EnergyStats() domain.EnergyStats {
	if s.device == nil {
		return domain.EnergyStats{}
	}
	b := s.device.Battery
	return domain.EnergyStats{
		Consumed:       b.Consumed,
		Remaining:      b.Remaining,
		Capacity:       b.Capacity,
		BatteryPercent: b.Percent(),
	}
}

// TaskDistribution counts assigned tasks per resource name
func (s *Scheduler) TaskDistribution() map[string]int {
	dist := make(map[string]int)
	for _, a := range s.assignments {
		dist[a.Resource.Name]++
	}
	return dist
}

// Assignments returns every (task, resource) pair in scheduling order
func (s *Scheduler) Assignments() []domain.Assignment {
	return s.assignments
}

// Events returns the drops and energy shortfalls observed so far
func (s *Scheduler) Events() []domain.Event {
	return s.events
}

// CountEvents counts events of one kind
func (s *Scheduler) CountEvents(kind domain.EventKind) int {
	n := 0
	for _, e := range s.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (s *Scheduler) all() []*domain.Resource {
	all := make([]*domain.Resource, 0, len(s.resources)+1)
	if s.device != nil {
		all = append(all, s.device.Resource)
	}
	return append(all, s.resources...)
}

func (s *Scheduler) resourceNames() []string {
	all := s.all()
	names := make([]string, 0, len(all))
	for _, r := range all {
		names = append(names, r.Name)
	}
	return names
}

package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
)

// StrategyKind names an offloading policy
type StrategyKind string

const (
	StrategyStatic      StrategyKind = "static"
	StrategyIntelligent StrategyKind = "intelligent"
)

// Category targets returned when a policy routes to a tier rather than a resource
const (
	TargetLocal = "local"
	TargetEdge  = "edge"
	TargetCloud = "cloud"
)

// ParseStrategyKind validates a configured policy name
func ParseStrategyKind(s string) (StrategyKind, error) {
	switch StrategyKind(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyStatic:
		return StrategyStatic, nil
	case StrategyIntelligent:
		return StrategyIntelligent, nil
	}
	return "", fmt.Errorf("unknown offload strategy %q", s)
}

// Strategy picks the resource that should receive a task.
// Implementations hold parameters only and never mutate the resources.
type Strategy interface {
	Kind() StrategyKind
	Decide(task *domain.Task, device *domain.Device, resources []*domain.Resource, now float64) (string, error)
}

// StrategyParams carries the knobs of every policy
type StrategyParams struct {
	SizeThreshold float64
	DataThreshold float64
	WirelessSpeed float64
	WiredSpeed    float64
}

// NewStrategy builds the policy for kind
func NewStrategy(kind StrategyKind, p StrategyParams) (Strategy, error) {
	switch kind {
	case StrategyStatic:
		return &StaticStrategy{SizeThreshold: p.SizeThreshold, DataThreshold: p.DataThreshold}, nil
	case StrategyIntelligent:
		return NewIntelligentStrategy(p.WirelessSpeed, p.WiredSpeed)
	}
	return nil, fmt.Errorf("unknown offload strategy %q", kind)
}

// StaticStrategy offloads large or data-heavy tasks to the edge and keeps the rest local.
// It never compares finish times.
type StaticStrategy struct {
	SizeThreshold float64
	DataThreshold float64
}

func (s *StaticStrategy) Kind() StrategyKind { return StrategyStatic }

func (s *StaticStrategy) Decide(task *domain.Task, device *domain.Device, resources []*domain.Resource, _ float64) (string, error) {
	if task.Size > s.SizeThreshold || task.DataSize > s.DataThreshold {
		return edgeTarget(resources), nil
	}
	if device != nil && device.CanAccept(task) {
		return strings.ToLower(device.Name), nil
	}
	return edgeTarget(resources), nil
}

// edgeTarget names the first edge resource, or the edge category when there is none
func edgeTarget(resources []*domain.Resource) string {
	for _, r := range resources {
		if r.Class == domain.ClassEdge {
			return strings.ToLower(r.Name)
		}
	}
	return TargetEdge
}

// IntelligentStrategy picks the earliest estimated finish including upload time.
// It is myopic: the effect of the choice on later tasks is ignored.
type IntelligentStrategy struct {
	WirelessSpeed float64 // device to edge, MB per time unit
	WiredSpeed    float64 // edge to cloud backhaul
}

// NewIntelligentStrategy validates the link speeds
func NewIntelligentStrategy(wireless, wired float64) (*IntelligentStrategy, error) {
	if wireless <= 0 || wired <= 0 {
		return nil, fmt.Errorf("link speeds must be positive, got wireless=%v wired=%v", wireless, wired)
	}
	return &IntelligentStrategy{WirelessSpeed: wireless, WiredSpeed: wired}, nil
}

func (s *IntelligentStrategy) Kind() StrategyKind { return StrategyIntelligent }

// UploadTime is the transfer time of the task payload to a resource of the given class
func (s *IntelligentStrategy) UploadTime(task *domain.Task, class domain.Class) float64 {
	switch class {
	case domain.ClassEdge:
		return task.DataSize / s.WirelessSpeed
	case domain.ClassCloud:
		return task.DataSize/s.WirelessSpeed + task.DataSize/s.WiredSpeed
	}
	return 0
}

func (s *IntelligentStrategy) Decide(task *domain.Task, device *domain.Device, resources []*domain.Resource, now float64) (string, error) {
	best := ""
	bestTime := math.Inf(1)

	if device != nil {
		// local execution uploads nothing
		if t := device.EstimateFinishTime(task, now); t < bestTime {
			best, bestTime = device.Name, t
		}
	}
	for _, r := range resources {
		t := r.EstimateFinishTime(task, now) + s.UploadTime(task, r.Class)
		if t < bestTime {
			best, bestTime = r.Name, t
		}
	}

	if best == "" {
		return "", fmt.Errorf("%w for task %d", domain.ErrNoFeasibleResource, task.ID)
	}
	return strings.ToLower(best), nil
}

package service

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
)

// WorkloadKind selects the size profile of generated tasks
type WorkloadKind string

const (
	WorkloadMixed     WorkloadKind = "mixed"
	WorkloadManySmall WorkloadKind = "many_small"
	WorkloadManyLarge WorkloadKind = "many_large"
)

// ParseWorkloadKind validates a configured workload name
func ParseWorkloadKind(s string) (WorkloadKind, error) {
	switch k := WorkloadKind(strings.ToLower(s)); k {
	case WorkloadMixed, WorkloadManySmall, WorkloadManyLarge:
		return k, nil
	}
	return "", fmt.Errorf("unknown workload %q", s)
}

// span is a half-open integer range [lo, hi)
type span struct{ lo, hi int }

func (s span) draw(rng *rand.Rand) float64 {
	return float64(s.lo + rng.Intn(s.hi-s.lo))
}

var (
	smallSize  = span{10, 50}
	smallData  = span{1, 20}
	largeSize  = span{100, 300}
	largeData  = span{50, 200}
	mediumSize = span{80, 150}
	mediumData = span{30, 100}
	priorities = span{1, 4}
)

// GenerateWorkload creates n tasks with ids 0..n-1 arriving at arrival.
// The same rng state always yields the same tasks.
func GenerateWorkload(kind WorkloadKind, n int, arrival float64, rng *rand.Rand) []*domain.Task {
	tasks := make([]*domain.Task, 0, n)
	for i := 0; i < n; i++ {
		var size, data span
		switch kind {
		case WorkloadManySmall:
			size, data = smallSize, smallData
		case WorkloadManyLarge:
			size, data = largeSize, largeData
		default:
			if i%2 == 0 {
				size, data = smallSize, smallData
			} else {
				size, data = mediumSize, mediumData
			}
		}
		s := size.draw(rng)
		d := data.draw(rng)
		p := int(priorities.draw(rng))
		tasks = append(tasks, domain.NewTask(i, s, p, d).ArrivingAt(arrival))
	}
	return tasks
}

package service

import (
	"testing"

	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
)

var testEnergy = domain.EnergyModel{BaseCost: 1, PerUnitCost: 0.5}

func newTestDevice(t *testing.T, battery float64) *domain.Device {
	t.Helper()
	b := domain.NewBattery(1000, testEnergy)
	b.SetRemaining(battery)
	d, err := domain.NewDevice("LocalDevice", 1, b)
	if err != nil {
		t.Fatalf("device: %v", err)
	}
	return d
}

func newTestResource(t *testing.T, name string, class domain.Class, rate, delay float64) *domain.Resource {
	t.Helper()
	r, err := domain.NewResource(name, class, rate, delay)
	if err != nil {
		t.Fatalf("resource %s: %v", name, err)
	}
	return r
}

// referenceServers mirrors the default topology: two edge servers and one cloud
func referenceServers(t *testing.T) []*domain.Resource {
	return []*domain.Resource{
		newTestResource(t, "EdgeServer1", domain.ClassEdge, 3, 1),
		newTestResource(t, "EdgeServer2", domain.ClassEdge, 4, 1),
		newTestResource(t, "CloudServer", domain.ClassCloud, 10, 5),
	}
}

// fixedStrategy always answers target
type fixedStrategy struct{ target string }

func (fixedStrategy) Kind() StrategyKind { return "fixed" }

func (f fixedStrategy) Decide(*domain.Task, *domain.Device, []*domain.Resource, float64) (string, error) {
	return f.target, nil
}

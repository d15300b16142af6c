package service

import (
	"strings"

	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
)

// resolver maps routing targets onto resources.
// Exact names win; substring and category matching are tolerated because
// policies may answer with a tier ("edge") instead of a resource name.
type resolver struct {
	device    *domain.Device
	resources []*domain.Resource
	byName    map[string]*domain.Resource
}

func newResolver(device *domain.Device, resources []*domain.Resource) *resolver {
	byName := make(map[string]*domain.Resource, len(resources)+1)
	for i := len(resources) - 1; i >= 0; i-- {
		byName[strings.ToLower(resources[i].Name)] = resources[i]
	}
	if device != nil {
		byName[strings.ToLower(device.Name)] = device.Resource
	}
	return &resolver{device: device, resources: resources, byName: byName}
}

func (r *resolver) resolve(target string) (*domain.Resource, bool) {
	name := strings.ToLower(strings.TrimSpace(target))
	if name == "" {
		return nil, false
	}

	if res, ok := r.byName[name]; ok {
		return res, true
	}

	if r.device != nil && strings.Contains(name, TargetLocal) {
		return r.device.Resource, true
	}

	for _, res := range r.resources {
		candidate := strings.ToLower(res.Name)
		if strings.Contains(candidate, name) || strings.Contains(name, candidate) {
			return res, true
		}
	}

	for _, class := range []domain.Class{domain.ClassEdge, domain.ClassCloud} {
		if !strings.Contains(name, string(class)) {
			continue
		}
		for _, res := range r.resources {
			if res.Class == class {
				return res, true
			}
		}
	}
	return nil, false
}

package domain

import "fmt"

// EnergyModel prices local execution: a fixed overhead plus a per-unit charge
type EnergyModel struct {
	BaseCost    float64 `json:"base_cost"`
	PerUnitCost float64 `json:"per_unit_cost"`
}

// Cost is the charge for executing task locally
func (m EnergyModel) Cost(task *Task) float64 {
	return m.BaseCost + task.Size*m.PerUnitCost
}

// Battery is the energy budget of the device and its feasibility policy.
// Remaining never drops below zero.
type Battery struct {
	Capacity  float64
	Remaining float64
	Consumed  float64
	Model     EnergyModel
}

// NewBattery returns a fully charged battery
func NewBattery(capacity float64, model EnergyModel) *Battery {
	if capacity < 0 {
		capacity = 0
	}
	return &Battery{
		Capacity:  capacity,
		Remaining: capacity,
		Model:     model,
	}
}

// CanAccept reports whether the remaining charge covers the task
func (b *Battery) CanAccept(task *Task) bool {
	return b.Remaining >= b.Model.Cost(task)
}

// Consume reserves the energy of task. It leaves the battery untouched and
// returns ErrEnergyExhausted when the charge does not cover the cost.
func (b *Battery) Consume(task *Task) error {
	cost := b.Model.Cost(task)
	if cost > b.Remaining {
		return fmt.Errorf("%w: task %d needs %.2f, %.2f left", ErrEnergyExhausted, task.ID, cost, b.Remaining)
	}
	b.Remaining -= cost
	b.Consumed += cost
	return nil
}

// SetRemaining overrides the charge, clamped to [0, Capacity]
func (b *Battery) SetRemaining(v float64) {
	switch {
	case v < 0:
		v = 0
	case v > b.Capacity:
		v = b.Capacity
	}
	b.Remaining = v
}

// Percent is the remaining charge relative to capacity
func (b *Battery) Percent() float64 {
	if b.Capacity == 0 {
		return 0
	}
	return b.Remaining / b.Capacity * 100
}

// Device is the local resource; its battery gates what it accepts
type Device struct {
	*Resource
	Battery *Battery
}

// NewDevice builds a local resource with zero access delay guarded by battery
func NewDevice(name string, computeRate float64, battery *Battery) (*Device, error) {
	res, err := NewResource(name, ClassLocal, computeRate, 0)
	if err != nil {
		return nil, err
	}
	if battery == nil {
		return nil, fmt.Errorf("%w: device %s without battery", ErrInvalidResource, name)
	}
	res.WithFeasibility(battery)
	return &Device{Resource: res, Battery: battery}, nil
}

// ConsumeEnergy reserves the battery charge for a task routed to the device.
// It is called at assignment time; Drain never touches the battery.
func (d *Device) ConsumeEnergy(task *Task) error {
	return d.Battery.Consume(task)
}

func (d *Device) String() string {
	return fmt.Sprintf("Device(name=%s, battery=%.2f/%.2f, queue=%d)",
		d.Name, d.Battery.Remaining, d.Battery.Capacity, d.QueueLength())
}

package domain

import "time"

// Assignment binds a task to the resource whose queue received it
type Assignment struct {
	Task     *Task
	Resource *Resource
}

// EventKind classifies problems observed during a scheduling pass
type EventKind string

const (
	EventUnresolvedResource EventKind = "unresolved_resource"
	EventEnergyShortfall    EventKind = "energy_shortfall"
)

// Event records a dropped task or an under-resourced local assignment
type Event struct {
	Kind    EventKind `json:"kind"`
	TaskID  int       `json:"task_id"`
	Target  string    `json:"target"`
	Message string    `json:"message"`
}

// OffloadStats counts where completed tasks ran
type OffloadStats struct {
	Local               int     `json:"local"`
	Remote              int     `json:"remote"`
	PercentageOffloaded float64 `json:"percentage_offloaded"`
}

// EnergyStats reports the device battery after a pass
type EnergyStats struct {
	Consumed       float64 `json:"consumed"`
	Remaining      float64 `json:"remaining"`
	Capacity       float64 `json:"capacity"`
	BatteryPercent float64 `json:"battery_percent"`
}

// RunResult is the outcome of one scenario under one strategy
type RunResult struct {
	ID                  string         `json:"id"`
	ScenarioID          int            `json:"scenario_id"`
	ScenarioName        string         `json:"scenario_name"`
	Strategy            string         `json:"strategy"`
	Seed                int64          `json:"seed"`
	Makespan            float64        `json:"makespan"`
	TotalEnergyConsumed float64        `json:"total_energy_consumed"`
	BatteryRemaining    float64        `json:"battery_remaining"`
	Offload             OffloadStats   `json:"offload_stats"`
	QueueStats          []QueueStats   `json:"queue_stats"`
	TasksProcessed      int            `json:"tasks_processed"`
	TasksDropped        int            `json:"tasks_dropped"`
	EnergyShortfalls    int            `json:"energy_shortfalls"`
	WirelessSpeed       string         `json:"wireless_speed"`
	WirelessRate        float64        `json:"wireless_rate"`
	BatteryLevel        string         `json:"battery_level"`
	WorkloadType        string         `json:"workload_type"`
	TaskDistribution    map[string]int `json:"task_distribution"`
	Events              []Event        `json:"events,omitempty"`
	CreatedAt           time.Time      `json:"created_at"`
}

package process

import "time"

// Flow entry statuses
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

// UnitSnapshot is the sari state the status view is built from
type UnitSnapshot struct {
	SerialNumber    string    `json:"serialNumber"`
	ItemCode        string    `json:"itemCode"`
	CurrentProcess  string    `json:"currentProcess"`
	CurrentLocation string    `json:"currentLocation"`
	EntryDate       time.Time `json:"entryDate"`
}

// LatestMovement is the most recent movement of a sari, by creation time
type LatestMovement struct {
	MovementDate time.Time
	FromProcess  string
	ToProcess    string
	ToLocation   string
	CreatedAt    time.Time
}

// FlowStep is one stage of a sari's process flow
type FlowStep struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	IsCurrent bool   `json:"isCurrent"`
	IsActive  bool   `json:"isActive"`
}

// LiveStatus is the per-sari live process view
type LiveStatus struct {
	SerialNumber     string     `json:"serialNumber"`
	ItemCode         string     `json:"itemCode"`
	CurrentProcess   string     `json:"currentProcess"`
	CurrentLocation  string     `json:"currentLocation"`
	EntryDate        time.Time  `json:"entryDate"`
	LastMovementDate *time.Time `json:"lastMovementDate"`
	LastUpdated      *time.Time `json:"lastUpdated"`
	ProcessFlow      []FlowStep `json:"processFlow"`
	Progress         float64    `json:"progress"`
}

// BuildFlow lays out all stages relative to currentProcess
func BuildFlow(currentProcess string) []FlowStep {
	current := IndexOf(currentProcess)
	flow := make([]FlowStep, len(stages))
	for i, name := range stages {
		status := StatusPending
		if i <= current {
			status = StatusCompleted
		}
		isCurrent := i == current
		flow[i] = FlowStep{
			Name:      name,
			Status:    status,
			IsCurrent: isCurrent,
			IsActive:  isCurrent,
		}
	}
	return flow
}

// BuildStatus maps a sari and its latest movement (nil when it has none) to
// its live status. It never fails: an unrecognised current process yields an
// all-pending flow at 0% progress.
func BuildStatus(unit UnitSnapshot, latest *LatestMovement) LiveStatus {
	status := LiveStatus{
		SerialNumber:    unit.SerialNumber,
		ItemCode:        unit.ItemCode,
		CurrentProcess:  unit.CurrentProcess,
		CurrentLocation: unit.CurrentLocation,
		EntryDate:       unit.EntryDate,
		ProcessFlow:     BuildFlow(unit.CurrentProcess),
		Progress:        Progress(unit.CurrentProcess),
	}
	if latest != nil {
		movementDate := latest.MovementDate
		createdAt := latest.CreatedAt
		status.LastMovementDate = &movementDate
		status.LastUpdated = &createdAt
	}
	return status
}

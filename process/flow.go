package process

import "time"

// HistoryEntry is one movement in a sari's history
type HistoryEntry struct {
	ID             uint      `json:"id"`
	MovementDate   time.Time `json:"movementDate"`
	FromProcess    string    `json:"fromProcess"`
	ToProcess      string    `json:"toProcess"`
	FromLocation   string    `json:"fromLocation"`
	ToLocation     string    `json:"toLocation"`
	Quality        *string   `json:"quality,omitempty"`
	DocumentNumber *string   `json:"documentNumber,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SerialStep is a flow step annotated with the movement that reached it
type SerialStep struct {
	Name      string        `json:"name"`
	Status    string        `json:"status"`
	IsCurrent bool          `json:"isCurrent"`
	Movement  *HistoryEntry `json:"movement"`
}

// SerialFlow is the detailed process view for one serial number
type SerialFlow struct {
	SerialNumber  string         `json:"serialNumber"`
	CurrentStatus UnitSnapshot   `json:"currentStatus"`
	Movements     []HistoryEntry `json:"movements"`
	ProcessFlow   []SerialStep   `json:"processFlow"`
	Progress      float64        `json:"progress"`
}

// BuildSerialFlow combines a sari with its movement history, which must be
// ordered oldest first. Each stage is annotated with the first movement whose
// destination is that stage.
func BuildSerialFlow(unit UnitSnapshot, history []HistoryEntry) SerialFlow {
	if history == nil {
		history = []HistoryEntry{}
	}

	flow := BuildFlow(unit.CurrentProcess)
	steps := make([]SerialStep, len(flow))
	for i, step := range flow {
		steps[i] = SerialStep{
			Name:      step.Name,
			Status:    step.Status,
			IsCurrent: step.IsCurrent,
		}
		for j := range history {
			if history[j].ToProcess == step.Name {
				steps[i].Movement = &history[j]
				break
			}
		}
	}

	return SerialFlow{
		SerialNumber:  unit.SerialNumber,
		CurrentStatus: unit,
		Movements:     history,
		ProcessFlow:   steps,
		Progress:      Progress(unit.CurrentProcess),
	}
}

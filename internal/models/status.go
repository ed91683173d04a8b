package models

// Status is the state of a long-running editor action such as code
// generation or import.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// OperationState is what callers surface to the user for an action.
type OperationState struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewOperationState creates a state in idle status.
func NewOperationState() OperationState {
	return OperationState{Status: StatusIdle}
}

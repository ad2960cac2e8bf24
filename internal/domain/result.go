package domain

// ErrorKind classifies executor failures without changing the user-facing
// message. Empty on success.
type ErrorKind string

const (
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindTransient  ErrorKind = "transient"
	ErrorKindUnknown    ErrorKind = "unknown"
)

// ExecutionResult is the dual human-message plus structured-payload contract
// returned by the executor for every action.
type ExecutionResult struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`

	WorkoutID string `json:"workout_id,omitempty"`
	LogID     string `json:"log_id,omitempty"`

	IsNewPR     bool    `json:"is_new_pr,omitempty"`
	Improvement float64 `json:"improvement,omitempty"`

	HabitValue     float64 `json:"habit_value,omitempty"`
	HabitTarget    float64 `json:"habit_target,omitempty"`
	HabitCompleted bool    `json:"habit_completed,omitempty"`

	Redirect string       `json:"redirect,omitempty"`
	Timer    *TimerAction `json:"timer,omitempty"`
}

func failure(kind ErrorKind, message string) ExecutionResult {
	return ExecutionResult{Success: false, Message: message, ErrorKind: kind}
}

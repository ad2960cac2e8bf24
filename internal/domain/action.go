// Package domain defines the fitness action contract and its execution rules.
package domain

import (
	"fmt"
	"strings"
)

// ActionKind identifies the closed set of operations the assistant can perform.
type ActionKind string

const (
	ActionWorkout        ActionKind = "workout"
	ActionFood           ActionKind = "food"
	ActionHabit          ActionKind = "habit"
	ActionPersonalRecord ActionKind = "personal_record"
	ActionTimer          ActionKind = "timer"
	ActionRecipe         ActionKind = "recipe"
	ActionNavigate       ActionKind = "navigate"
	ActionInfo           ActionKind = "info"
	ActionUnknown        ActionKind = "unknown"
)

// HabitType enumerates the built-in trackable habits.
type HabitType string

const (
	HabitWater      HabitType = "water"
	HabitMeditation HabitType = "meditation"
	HabitSleep      HabitType = "sleep"
	HabitSteps      HabitType = "steps"
)

// HabitDefaults describes the lazily-created definition for a built-in habit.
type HabitDefaults struct {
	Name       string
	Unit       string
	Target     float64
	Amount     float64
	Accumulate bool
}

// habitCatalog maps habit types to their default definition parameters.
// Water is the only cumulative habit; the rest log one value per day.
var habitCatalog = map[HabitType]HabitDefaults{
	HabitWater:      {Name: "Water Intake", Unit: "glasses", Target: 8, Amount: 1, Accumulate: true},
	HabitMeditation: {Name: "Meditation", Unit: "min", Target: 20, Amount: 20},
	HabitSleep:      {Name: "Sleep", Unit: "h", Target: 8, Amount: 8},
	HabitSteps:      {Name: "Steps", Unit: "steps", Target: 10000, Amount: 10000},
}

// DefaultsForHabit returns the catalog entry for a habit type.
func DefaultsForHabit(t HabitType) (HabitDefaults, bool) {
	d, ok := habitCatalog[t]
	return d, ok
}

// HabitAction carries the payload for habit logging actions.
type HabitAction struct {
	Type   HabitType `json:"habit_type"`
	Amount float64   `json:"amount,omitempty"`
}

// RecordAction carries the payload for personal-record submissions.
type RecordAction struct {
	ExerciseName string  `json:"exercise_name"`
	MaxWeight    float64 `json:"max_weight"`
	MaxReps      int     `json:"max_reps"`
	Unit         string  `json:"unit,omitempty"`
}

// WorkoutAction carries the payload for workout log actions.
type WorkoutAction struct {
	WorkoutType  string  `json:"workout_type"`
	Duration     float64 `json:"duration"`
	DurationUnit string  `json:"duration_unit,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

// FoodAction carries the payload for food log actions.
type FoodAction struct {
	FoodName string  `json:"food_name"`
	MealType string  `json:"meal_type,omitempty"`
	Calories int     `json:"calories,omitempty"`
	Protein  float64 `json:"protein,omitempty"`
}

// TimerAction carries the payload for client-side timer requests.
type TimerAction struct {
	Seconds int    `json:"seconds"`
	Label   string `json:"label,omitempty"`
}

// NavigateAction carries the redirect target for recipe/navigate actions.
type NavigateAction struct {
	Target string `json:"target"`
}

// InfoTopic enumerates the informational sub-actions.
type InfoTopic string

const (
	InfoMotivation InfoTopic = "motivation"
	InfoProgress   InfoTopic = "progress"
	InfoSuggestion InfoTopic = "suggestion"
)

// InfoAction carries the payload for informational actions.
type InfoAction struct {
	Topic    InfoTopic `json:"topic"`
	Category string    `json:"category,omitempty"`
	Message  string    `json:"message,omitempty"`
}

// Action is a typed, confidence-scored intent produced by classifying free
// text. Exactly one payload field matching Kind is set; kinds without
// parameters carry none.
type Action struct {
	Kind         ActionKind `json:"kind"`
	Confidence   float64    `json:"confidence"`
	Confirmation string     `json:"confirmation_message"`

	Habit    *HabitAction    `json:"habit,omitempty"`
	Record   *RecordAction   `json:"personal_record,omitempty"`
	Workout  *WorkoutAction  `json:"workout,omitempty"`
	Food     *FoodAction     `json:"food,omitempty"`
	Timer    *TimerAction    `json:"timer,omitempty"`
	Navigate *NavigateAction `json:"navigate,omitempty"`
	Info     *InfoAction     `json:"info,omitempty"`
}

// ValidationError reports a missing or malformed action field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid action: %s %s", e.Field, e.Reason)
}

// Validate checks that the action carries the payload its kind requires.
func (a Action) Validate() error {
	switch a.Kind {
	case ActionHabit:
		if a.Habit == nil {
			return &ValidationError{Field: "habit", Reason: "payload is required"}
		}
		if _, ok := habitCatalog[a.Habit.Type]; !ok {
			return &ValidationError{Field: "habit.habit_type", Reason: fmt.Sprintf("unrecognized habit type %q", a.Habit.Type)}
		}
		if a.Habit.Amount < 0 {
			return &ValidationError{Field: "habit.amount", Reason: "must be >= 0"}
		}
	case ActionPersonalRecord:
		if a.Record == nil {
			return &ValidationError{Field: "personal_record", Reason: "payload is required"}
		}
		if strings.TrimSpace(a.Record.ExerciseName) == "" {
			return &ValidationError{Field: "personal_record.exercise_name", Reason: "is required"}
		}
		if a.Record.MaxWeight <= 0 {
			return &ValidationError{Field: "personal_record.max_weight", Reason: "must be > 0"}
		}
	case ActionWorkout:
		if a.Workout == nil {
			return &ValidationError{Field: "workout", Reason: "payload is required"}
		}
		if strings.TrimSpace(a.Workout.WorkoutType) == "" {
			return &ValidationError{Field: "workout.workout_type", Reason: "is required"}
		}
		if a.Workout.Duration <= 0 {
			return &ValidationError{Field: "workout.duration", Reason: "must be > 0"}
		}
	case ActionFood:
		if a.Food == nil {
			return &ValidationError{Field: "food", Reason: "payload is required"}
		}
		if strings.TrimSpace(a.Food.FoodName) == "" {
			return &ValidationError{Field: "food.food_name", Reason: "is required"}
		}
	case ActionTimer:
		if a.Timer == nil {
			return &ValidationError{Field: "timer", Reason: "payload is required"}
		}
		if a.Timer.Seconds <= 0 {
			return &ValidationError{Field: "timer.seconds", Reason: "must be > 0"}
		}
	case ActionRecipe, ActionNavigate:
		if a.Navigate == nil || strings.TrimSpace(a.Navigate.Target) == "" {
			return &ValidationError{Field: "navigate.target", Reason: "is required"}
		}
	case ActionInfo:
		if a.Info == nil {
			return &ValidationError{Field: "info", Reason: "payload is required"}
		}
		switch a.Info.Topic {
		case InfoMotivation, InfoProgress, InfoSuggestion:
		default:
			return &ValidationError{Field: "info.topic", Reason: fmt.Sprintf("unrecognized topic %q", a.Info.Topic)}
		}
	case ActionUnknown:
	default:
		return &ValidationError{Field: "kind", Reason: fmt.Sprintf("unrecognized kind %q", a.Kind)}
	}
	return nil
}

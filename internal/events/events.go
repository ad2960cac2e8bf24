// Package events defines the payloads published through the outbox.
package events

import "time"

// WorkoutLogged is emitted when a workout log entry is accepted.
type WorkoutLogged struct {
	WorkoutID   string    `json:"workout_id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	DurationMin int       `json:"duration_min"`
	LoggedAt    time.Time `json:"logged_at"`
}

// FoodLogged is emitted when a food log entry is accepted.
type FoodLogged struct {
	LogID    string    `json:"log_id"`
	UserID   string    `json:"user_id"`
	FoodName string    `json:"food_name"`
	MealType string    `json:"meal_type"`
	Calories int       `json:"calories"`
	LoggedAt time.Time `json:"logged_at"`
}

// HabitLogged is emitted for every habit log upsert, carrying the running
// day value so downstream projections can track streaks.
type HabitLogged struct {
	HabitID   string    `json:"habit_id"`
	UserID    string    `json:"user_id"`
	HabitName string    `json:"habit_name"`
	Day       string    `json:"day"`
	Value     float64   `json:"value"`
	Completed bool      `json:"completed"`
	LoggedAt  time.Time `json:"logged_at"`
}

// RecordImproved is emitted when a personal record is created or beaten.
type RecordImproved struct {
	RecordID           string    `json:"record_id"`
	UserID             string    `json:"user_id"`
	ExerciseName       string    `json:"exercise_name"`
	PreviousValue      float64   `json:"previous_value"`
	NewValue           float64   `json:"new_value"`
	ImprovementPercent float64   `json:"improvement_percent"`
	AchievedAt         time.Time `json:"achieved_at"`
}

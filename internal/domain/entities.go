package domain

import "time"

// DayFormat is the canonical key for per-day habit entries.
const DayFormat = "2006-01-02"

// Day returns the habit-log day key for a point in time.
func Day(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// HabitDefinition is a user-owned trackable daily metric. At most one exists
// per (UserID, Name).
type HabitDefinition struct {
	ID        string
	UserID    string
	Name      string
	Unit      string
	Target    float64
	CreatedAt time.Time
}

// HabitLogEntry is one day's value for a habit. At most one exists per
// (HabitID, Day).
type HabitLogEntry struct {
	ID        string
	HabitID   string
	UserID    string
	Day       string
	Value     float64
	Completed bool
	UpdatedAt time.Time
}

// PersonalRecord is the best recorded performance for a user and exercise.
type PersonalRecord struct {
	ID           string
	UserID       string
	ExerciseName string
	MaxWeight    float64
	MaxReps      int
	Unit         string
	AchievedAt   time.Time
}

// PersonalRecordHistory captures one accepted improvement of a record.
type PersonalRecordHistory struct {
	ID                 string
	RecordID           string
	UserID             string
	ExerciseName       string
	PreviousValue      float64
	NewValue           float64
	ImprovementPercent float64
	AchievedAt         time.Time
}

// WorkoutLog is a completed workout session entry.
type WorkoutLog struct {
	ID          string
	UserID      string
	Title       string
	DurationMin int
	Notes       string
	CreatedAt   time.Time
}

// FoodLogEntry is a logged meal or snack.
type FoodLogEntry struct {
	ID        string
	UserID    string
	FoodName  string
	MealType  string
	Calories  int
	Protein   float64
	CreatedAt time.Time
}

// HabitProgress pairs a habit definition with its entry for a given day.
type HabitProgress struct {
	Name      string
	Unit      string
	Target    float64
	Value     float64
	Completed bool
}

// Cursor models the keyset pagination token for workout listings.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

package domain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// genericFailureMessage is what users see for any failure the executor
// recovers from. Finer detail travels in ErrorKind only.
const genericFailureMessage = "I couldn't process that, please try again."

// FitnessRepository captures the persistence operations the executor needs.
type FitnessRepository interface {
	// EnsureHabit returns the user's definition matching defaults.Name,
	// creating it with the default unit and target when absent.
	EnsureHabit(ctx context.Context, userID string, defaults HabitDefaults) (*HabitDefinition, error)
	// UpsertHabitLog writes the day's entry for the habit. When accumulate is
	// true the amount is added to any existing value and completion is
	// recomputed against the target; otherwise the amount replaces the
	// existing value and the entry is marked completed.
	UpsertHabitLog(ctx context.Context, habit HabitDefinition, day string, amount float64, accumulate bool) (*HabitLogEntry, error)
	GetRecord(ctx context.Context, userID, exerciseName string) (*PersonalRecord, error)
	// SaveRecord upserts the record and appends the history row in a single
	// transaction.
	SaveRecord(ctx context.Context, record PersonalRecord, history PersonalRecordHistory) error
	InsertWorkout(ctx context.Context, workout WorkoutLog) error
	InsertFoodLog(ctx context.Context, entry FoodLogEntry) error

	ListWorkouts(ctx context.Context, userID string, cursor *Cursor, limit int) ([]WorkoutLog, *Cursor, error)
	ListRecords(ctx context.Context, userID string) ([]PersonalRecord, error)
	CountWorkouts(ctx context.Context, userID string) (int, error)
	HabitProgressForDay(ctx context.Context, userID, day string) ([]HabitProgress, error)
	RecentRecordHistory(ctx context.Context, userID string, limit int) ([]PersonalRecordHistory, error)
}

// ExecutorOption configures optional Executor behaviour.
type ExecutorOption func(*Executor)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *Executor) { e.now = now }
}

// WithLogger overrides the logger used for recovered store errors.
func WithLogger(logger *log.Logger) ExecutorOption {
	return func(e *Executor) { e.logger = logger }
}

// WithTipPicker overrides the random tip selection, mainly for tests.
func WithTipPicker(pick func(n int) int) ExecutorOption {
	return func(e *Executor) { e.pickTip = pick }
}

// Executor applies confirmed actions to user state. Every branch recovers
// store errors locally; Execute always returns a well-formed result.
type Executor struct {
	repo    FitnessRepository
	now     func() time.Time
	pickTip func(n int) int
	logger  *log.Logger
}

// NewExecutor constructs an Executor.
func NewExecutor(repo FitnessRepository, opts ...ExecutorOption) *Executor {
	e := &Executor{
		repo:    repo,
		now:     time.Now,
		pickTip: rand.Intn,
		logger:  log.New(log.Writer(), "[executor] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute dispatches the action to its kind-specific branch.
func (e *Executor) Execute(ctx context.Context, userID string, action Action) ExecutionResult {
	if err := action.Validate(); err != nil {
		e.logger.Printf("validation failed (kind=%s, user=%s): %v", action.Kind, userID, err)
		return failure(ErrorKindValidation, genericFailureMessage)
	}

	switch action.Kind {
	case ActionHabit:
		return e.executeHabit(ctx, userID, *action.Habit)
	case ActionPersonalRecord:
		return e.executeRecord(ctx, userID, *action.Record)
	case ActionWorkout:
		return e.executeWorkout(ctx, userID, *action.Workout)
	case ActionFood:
		return e.executeFood(ctx, userID, *action.Food)
	case ActionTimer:
		return e.executeTimer(*action.Timer)
	case ActionRecipe, ActionNavigate:
		return ExecutionResult{Success: true, Message: "Taking you there.", Redirect: action.Navigate.Target}
	case ActionInfo:
		return e.executeInfo(ctx, userID, *action.Info)
	default:
		return failure(ErrorKindUnknown, genericFailureMessage)
	}
}

func (e *Executor) executeHabit(ctx context.Context, userID string, payload HabitAction) ExecutionResult {
	defaults, _ := DefaultsForHabit(payload.Type)

	amount := payload.Amount
	if amount == 0 {
		amount = defaults.Amount
	}

	habit, err := e.repo.EnsureHabit(ctx, userID, defaults)
	if err != nil {
		return e.storeFailure("habit ensure", userID, err)
	}

	entry, err := e.repo.UpsertHabitLog(ctx, *habit, Day(e.now()), amount, defaults.Accumulate)
	if err != nil {
		return e.storeFailure("habit log", userID, err)
	}

	result := ExecutionResult{
		Success:        true,
		LogID:          entry.ID,
		HabitValue:     entry.Value,
		HabitTarget:    habit.Target,
		HabitCompleted: entry.Completed,
	}

	if defaults.Accumulate {
		result.Message = fmt.Sprintf("%s logged: %g/%g %s today.", habit.Name, entry.Value, habit.Target, habit.Unit)
		if entry.Completed {
			result.Message += " Goal reached!"
		}
	} else {
		result.Message = fmt.Sprintf("%s logged: %g %s for today.", habit.Name, entry.Value, habit.Unit)
	}
	return result
}

func (e *Executor) executeRecord(ctx context.Context, userID string, payload RecordAction) ExecutionResult {
	exercise := strings.TrimSpace(payload.ExerciseName)

	existing, err := e.repo.GetRecord(ctx, userID, exercise)
	if err != nil {
		return e.storeFailure("record lookup", userID, err)
	}

	if existing != nil && payload.MaxWeight <= existing.MaxWeight {
		return ExecutionResult{
			Success: true,
			IsNewPR: false,
			Message: fmt.Sprintf("Not a new PR. Your %s record stands at %g %s x %d.",
				existing.ExerciseName, existing.MaxWeight, existing.Unit, existing.MaxReps),
		}
	}

	now := e.now().UTC()
	record := PersonalRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		ExerciseName: exercise,
		MaxWeight:    payload.MaxWeight,
		MaxReps:      payload.MaxReps,
		Unit:         payload.Unit,
		AchievedAt:   now,
	}

	improvement := 100.0
	previous := 0.0
	if existing != nil {
		record.ID = existing.ID
		previous = existing.MaxWeight
		improvement = (payload.MaxWeight - existing.MaxWeight) / existing.MaxWeight * 100
		if record.Unit == "" {
			record.Unit = existing.Unit
		}
	}

	history := PersonalRecordHistory{
		ID:                 uuid.NewString(),
		RecordID:           record.ID,
		UserID:             userID,
		ExerciseName:       exercise,
		PreviousValue:      previous,
		NewValue:           payload.MaxWeight,
		ImprovementPercent: improvement,
		AchievedAt:         now,
	}

	if err := e.repo.SaveRecord(ctx, record, history); err != nil {
		return e.storeFailure("record save", userID, err)
	}

	message := fmt.Sprintf("First PR recorded for %s: %g %s x %d.", exercise, record.MaxWeight, record.Unit, record.MaxReps)
	if existing != nil {
		message = fmt.Sprintf("NEW PR! %s: %g %s (up %.1f%%).", exercise, record.MaxWeight, record.Unit, improvement)
	}

	return ExecutionResult{Success: true, Message: message, IsNewPR: true, Improvement: improvement}
}

func (e *Executor) executeWorkout(ctx context.Context, userID string, payload WorkoutAction) ExecutionResult {
	minutes := int(payload.Duration)
	switch strings.ToLower(payload.DurationUnit) {
	case "hours", "hour", "h":
		minutes = int(payload.Duration * 60)
	}

	workout := WorkoutLog{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       workoutTitle(payload.WorkoutType),
		DurationMin: minutes,
		Notes:       payload.Notes,
		CreatedAt:   e.now().UTC(),
	}

	if err := e.repo.InsertWorkout(ctx, workout); err != nil {
		return e.storeFailure("workout insert", userID, err)
	}

	return ExecutionResult{
		Success:   true,
		Message:   fmt.Sprintf("Workout logged: %s, %d min.", workout.Title, workout.DurationMin),
		WorkoutID: workout.ID,
	}
}

func (e *Executor) executeFood(ctx context.Context, userID string, payload FoodAction) ExecutionResult {
	mealType := payload.MealType
	if mealType == "" {
		mealType = "snack"
	}

	entry := FoodLogEntry{
		ID:        uuid.NewString(),
		UserID:    userID,
		FoodName:  payload.FoodName,
		MealType:  mealType,
		Calories:  payload.Calories,
		Protein:   payload.Protein,
		CreatedAt: e.now().UTC(),
	}

	if err := e.repo.InsertFoodLog(ctx, entry); err != nil {
		return e.storeFailure("food insert", userID, err)
	}

	return ExecutionResult{
		Success: true,
		Message: fmt.Sprintf("Logged %s as %s.", entry.FoodName, entry.MealType),
		LogID:   entry.ID,
	}
}

func (e *Executor) executeTimer(payload TimerAction) ExecutionResult {
	label := payload.Label
	if label == "" {
		label = "Timer"
	}
	return ExecutionResult{
		Success: true,
		Message: fmt.Sprintf("%s set for %s.", label, (time.Duration(payload.Seconds) * time.Second).String()),
		Timer:   &TimerAction{Seconds: payload.Seconds, Label: label},
	}
}

func (e *Executor) executeInfo(ctx context.Context, userID string, payload InfoAction) ExecutionResult {
	switch payload.Topic {
	case InfoMotivation:
		message := payload.Message
		if message == "" {
			message = "Every rep counts. Keep showing up!"
		}
		return ExecutionResult{Success: true, Message: message}
	case InfoSuggestion:
		return ExecutionResult{Success: true, Message: e.suggestTip(payload.Category)}
	case InfoProgress:
		return e.progressSummary(ctx, userID)
	default:
		return failure(ErrorKindUnknown, genericFailureMessage)
	}
}

// progressSummary fans out the three independent reads; none depends on
// another's result so ordering is free.
func (e *Executor) progressSummary(ctx context.Context, userID string) ExecutionResult {
	var (
		wg           sync.WaitGroup
		workoutCount int
		habits       []HabitProgress
		history      []PersonalRecordHistory
		errOnce      sync.Once
		firstErr     error
	)

	capture := func(err error) {
		if err != nil {
			errOnce.Do(func() { firstErr = err })
		}
	}

	day := Day(e.now())

	wg.Add(3)
	go func() {
		defer wg.Done()
		count, err := e.repo.CountWorkouts(ctx, userID)
		capture(err)
		workoutCount = count
	}()
	go func() {
		defer wg.Done()
		progress, err := e.repo.HabitProgressForDay(ctx, userID, day)
		capture(err)
		habits = progress
	}()
	go func() {
		defer wg.Done()
		entries, err := e.repo.RecentRecordHistory(ctx, userID, 3)
		capture(err)
		history = entries
	}()
	wg.Wait()

	if firstErr != nil {
		return e.storeFailure("progress summary", userID, firstErr)
	}

	completed := 0
	for _, h := range habits {
		if h.Completed {
			completed++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You've logged %d workouts and completed %d habits today.", workoutCount, completed)
	if len(history) > 0 {
		b.WriteString(" Recent PRs:")
		for i, h := range history {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, " %s %g (+%.1f%%)", h.ExerciseName, h.NewValue, h.ImprovementPercent)
		}
		b.WriteString(".")
	}

	return ExecutionResult{Success: true, Message: b.String()}
}

func (e *Executor) storeFailure(op, userID string, err error) ExecutionResult {
	e.logger.Printf("%s failed (user=%s): %v", op, userID, err)
	kind := ErrorKindTransient
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		kind = ErrorKindValidation
	}
	return failure(kind, genericFailureMessage)
}

func workoutTitle(workoutType string) string {
	workoutType = strings.TrimSpace(workoutType)
	if workoutType == "" {
		return "Workout"
	}
	words := strings.Fields(strings.ToLower(workoutType))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ") + " Workout"
}

package domain

import (
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"
)

type fakeRepo struct {
	habit       *HabitDefinition
	habitEntry  *HabitLogEntry
	record      *PersonalRecord
	workouts    int
	progress    []HabitProgress
	history     []PersonalRecordHistory
	failWith    error
	failOn      string

	ensuredDefaults HabitDefaults
	upsertAmount    float64
	upsertAccum     bool
	savedRecord     *PersonalRecord
	savedHistory    *PersonalRecordHistory
	insertedWorkout *WorkoutLog
	insertedFood    *FoodLogEntry
}

func (f *fakeRepo) fail(op string) error {
	if f.failWith != nil && (f.failOn == "" || f.failOn == op) {
		return f.failWith
	}
	return nil
}

func (f *fakeRepo) EnsureHabit(ctx context.Context, userID string, defaults HabitDefaults) (*HabitDefinition, error) {
	if err := f.fail("ensure"); err != nil {
		return nil, err
	}
	f.ensuredDefaults = defaults
	if f.habit != nil {
		return f.habit, nil
	}
	return &HabitDefinition{ID: "habit-1", UserID: userID, Name: defaults.Name, Unit: defaults.Unit, Target: defaults.Target}, nil
}

func (f *fakeRepo) UpsertHabitLog(ctx context.Context, habit HabitDefinition, day string, amount float64, accumulate bool) (*HabitLogEntry, error) {
	if err := f.fail("upsert"); err != nil {
		return nil, err
	}
	f.upsertAmount = amount
	f.upsertAccum = accumulate
	if f.habitEntry != nil {
		return f.habitEntry, nil
	}
	return &HabitLogEntry{ID: "log-1", HabitID: habit.ID, Day: day, Value: amount, Completed: amount >= habit.Target}, nil
}

func (f *fakeRepo) GetRecord(ctx context.Context, userID, exerciseName string) (*PersonalRecord, error) {
	if err := f.fail("get_record"); err != nil {
		return nil, err
	}
	return f.record, nil
}

func (f *fakeRepo) SaveRecord(ctx context.Context, record PersonalRecord, history PersonalRecordHistory) error {
	if err := f.fail("save_record"); err != nil {
		return err
	}
	f.savedRecord = &record
	f.savedHistory = &history
	return nil
}

func (f *fakeRepo) InsertWorkout(ctx context.Context, workout WorkoutLog) error {
	if err := f.fail("insert_workout"); err != nil {
		return err
	}
	f.insertedWorkout = &workout
	return nil
}

func (f *fakeRepo) InsertFoodLog(ctx context.Context, entry FoodLogEntry) error {
	if err := f.fail("insert_food"); err != nil {
		return err
	}
	f.insertedFood = &entry
	return nil
}

func (f *fakeRepo) ListWorkouts(ctx context.Context, userID string, cursor *Cursor, limit int) ([]WorkoutLog, *Cursor, error) {
	return nil, nil, nil
}

func (f *fakeRepo) ListRecords(ctx context.Context, userID string) ([]PersonalRecord, error) {
	return nil, nil
}

func (f *fakeRepo) CountWorkouts(ctx context.Context, userID string) (int, error) {
	if err := f.fail("count"); err != nil {
		return 0, err
	}
	return f.workouts, nil
}

func (f *fakeRepo) HabitProgressForDay(ctx context.Context, userID, day string) ([]HabitProgress, error) {
	if err := f.fail("progress"); err != nil {
		return nil, err
	}
	return f.progress, nil
}

func (f *fakeRepo) RecentRecordHistory(ctx context.Context, userID string, limit int) ([]PersonalRecordHistory, error) {
	if err := f.fail("history"); err != nil {
		return nil, err
	}
	return f.history, nil
}

func newTestExecutor(repo *fakeRepo) *Executor {
	return NewExecutor(repo,
		WithClock(func() time.Time { return time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC) }),
		WithLogger(log.New(discard{}, "", 0)),
		WithTipPicker(func(n int) int { return 0 }),
	)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestExecuteWaterAccumulates(t *testing.T) {
	repo := &fakeRepo{
		habit:      &HabitDefinition{ID: "habit-1", UserID: "user-1", Name: "Water Intake", Unit: "glasses", Target: 8},
		habitEntry: &HabitLogEntry{ID: "log-1", Value: 3, Completed: false},
	}
	e := newTestExecutor(repo)

	result := e.Execute(context.Background(), "user-1", Action{
		Kind:  ActionHabit,
		Habit: &HabitAction{Type: HabitWater, Amount: 3},
	})

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Message != "Water Intake logged: 3/8 glasses today." {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if !repo.upsertAccum {
		t.Fatalf("water should accumulate")
	}
	if result.HabitValue != 3 || result.HabitTarget != 8 || result.HabitCompleted {
		t.Fatalf("unexpected habit fields %+v", result)
	}
}

func TestExecuteWaterGoalReached(t *testing.T) {
	repo := &fakeRepo{
		habit:      &HabitDefinition{ID: "habit-1", UserID: "user-1", Name: "Water Intake", Unit: "glasses", Target: 8},
		habitEntry: &HabitLogEntry{ID: "log-1", Value: 8, Completed: true},
	}
	e := newTestExecutor(repo)

	result := e.Execute(context.Background(), "user-1", Action{
		Kind:  ActionHabit,
		Habit: &HabitAction{Type: HabitWater, Amount: 2},
	})

	if !strings.HasSuffix(result.Message, "Goal reached!") {
		t.Fatalf("expected goal message, got %q", result.Message)
	}
	if !result.HabitCompleted {
		t.Fatalf("expected completed entry")
	}
}

func TestExecuteHabitUsesDefaultAmount(t *testing.T) {
	repo := &fakeRepo{}
	e := newTestExecutor(repo)

	result := e.Execute(context.Background(), "user-1", Action{
		Kind:  ActionHabit,
		Habit: &HabitAction{Type: HabitWater},
	})

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if repo.upsertAmount != 1 {
		t.Fatalf("expected default water amount 1, got %g", repo.upsertAmount)
	}
}

func TestExecuteMeditationOverwrites(t *testing.T) {
	repo := &fakeRepo{
		habit:      &HabitDefinition{ID: "habit-2", UserID: "user-1", Name: "Meditation", Unit: "min", Target: 20},
		habitEntry: &HabitLogEntry{ID: "log-2", Value: 20, Completed: true},
	}
	e := newTestExecutor(repo)

	result := e.Execute(context.Background(), "user-1", Action{
		Kind:  ActionHabit,
		Habit: &HabitAction{Type: HabitMeditation, Amount: 20},
	})

	if repo.upsertAccum {
		t.Fatalf("meditation should not accumulate")
	}
	if result.Message != "Meditation logged: 20 min for today." {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestExecuteFirstPersonalRecord(t *testing.T) {
	repo := &fakeRepo{}
	e := newTestExecutor(repo)

	result := e.Execute(context.Background(), "user-1", Action{
		Kind:   ActionPersonalRecord,
		Record: &RecordAction{ExerciseName: "Bench Press", MaxWeight: 225, MaxReps: 5, Unit: "lbs"},
	})

	if !result.Success || !result.IsNewPR {
		t.Fatalf("expected first PR, got %+v", result)
	}
	if result.Improvement != 100 {
		t.Fatalf("first PR improvement should be 100, got %g", result.Improvement)
	}
	if repo.savedHistory == nil || repo.savedHistory.PreviousValue != 0 {
		t.Fatalf("expected history with zero previous value, got %+v", repo.savedHistory)
	}
	if !strings.HasPrefix(result.Message, "First PR recorded for Bench Press") {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestExecuteImprovedPersonalRecord(t *testing.T) {
	repo := &fakeRepo{
		record: &PersonalRecord{ID: "rec-1", UserID: "user-1", ExerciseName: "Bench Press", MaxWeight: 200, MaxReps: 5, Unit: "lbs"},
	}
	e := newTestExecutor(repo)

	result := e.Execute(context.Background(), "user-1", Action{
		Kind:   ActionPersonalRecord,
		Record: &RecordAction{ExerciseName: "Bench Press", MaxWeight: 225, MaxReps: 3, Unit: "lbs"},
	})

	if !result.IsNewPR {
		t.Fatalf("expected new PR, got %+v", result)
	}
	if result.Improvement != 12.5 {
		t.Fatalf("expected 12.5%% improvement, got %g", result.Improvement)
	}
	if repo.savedRecord == nil || repo.savedRecord.ID != "rec-1" {
		t.Fatalf("improvement should reuse the existing record id, got %+v", repo.savedRecord)
	}
	if !strings.Contains(result.Message, "NEW PR!") {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestExecuteRecordNotAnImprovement(t *testing.T) {
	repo := &fakeRepo{
		record: &PersonalRecord{ID: "rec-1", UserID: "user-1", ExerciseName: "Bench Press", MaxWeight: 225, MaxReps: 5, Unit: "lbs"},
	}
	e := newTestExecutor(repo)

	result := e.Execute(context.Background(), "user-1", Action{
		Kind:   ActionPersonalRecord,
		Record: &RecordAction{ExerciseName: "Bench Press", MaxWeight: 200, MaxReps: 8},
	})

	if !result.Success {
		t.Fatalf("a non-PR submission is still a successful interaction: %+v", result)
	}
	if result.IsNewPR {
		t.Fatalf("200 should not beat 225")
	}
	if repo.savedRecord != nil {
		t.Fatalf("record must remain unchanged, saved %+v", repo.savedRecord)
	}
	if !strings.Contains(result.Message, "record stands at 225 lbs x 5") {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestExecuteWorkoutConvertsHours(t *testing.T) {
	repo := &fakeRepo{}
	e := newTestExecutor(repo)

	result := e.Execute(context.Background(), "user-1", Action{
		Kind:    ActionWorkout,
		Workout: &WorkoutAction{WorkoutType: "running", Duration: 1.5, DurationUnit: "hours"},
	})

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if repo.insertedWorkout == nil || repo.insertedWorkout.DurationMin != 90 {
		t.Fatalf("expected 90 min, got %+v", repo.insertedWorkout)
	}
	if repo.insertedWorkout.Title != "Running Workout" {
		t.Fatalf("unexpected title %q", repo.insertedWorkout.Title)
	}
	if result.WorkoutID == "" {
		t.Fatalf("expected workout id in result")
	}
}

func TestExecuteFoodDefaultsToSnack(t *testing.T) {
	repo := &fakeRepo{}
	e := newTestExecutor(repo)

	result := e.Execute(context.Background(), "user-1", Action{
		Kind: ActionFood,
		Food: &FoodAction{FoodName: "protein bar"},
	})

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if repo.insertedFood == nil || repo.insertedFood.MealType != "snack" {
		t.Fatalf("expected snack meal type, got %+v", repo.insertedFood)
	}
}

func TestExecuteTimer(t *testing.T) {
	e := newTestExecutor(&fakeRepo{})

	result := e.Execute(context.Background(), "user-1", Action{
		Kind:  ActionTimer,
		Timer: &TimerAction{Seconds: 90},
	})

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Timer == nil || result.Timer.Seconds != 90 || result.Timer.Label != "Timer" {
		t.Fatalf("unexpected timer payload %+v", result.Timer)
	}
}

func TestExecuteNavigateReturnsRedirect(t *testing.T) {
	e := newTestExecutor(&fakeRepo{})

	result := e.Execute(context.Background(), "user-1", Action{
		Kind:     ActionNavigate,
		Navigate: &NavigateAction{Target: "/progress"},
	})

	if !result.Success || result.Redirect != "/progress" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestExecuteSuggestionUsesTipPicker(t *testing.T) {
	e := newTestExecutor(&fakeRepo{})

	result := e.Execute(context.Background(), "user-1", Action{
		Kind: ActionInfo,
		Info: &InfoAction{Topic: InfoSuggestion, Category: "workout"},
	})

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Message != tipCategories["workout"][0] {
		t.Fatalf("unexpected tip %q", result.Message)
	}
}

func TestExecuteSuggestionUnknownCategoryFallsBack(t *testing.T) {
	e := newTestExecutor(&fakeRepo{})

	result := e.Execute(context.Background(), "user-1", Action{
		Kind: ActionInfo,
		Info: &InfoAction{Topic: InfoSuggestion, Category: "swimming"},
	})

	if result.Message != tipCategories["general"][0] {
		t.Fatalf("unexpected tip %q", result.Message)
	}
}

func TestExecuteProgressSummary(t *testing.T) {
	repo := &fakeRepo{
		workouts: 12,
		progress: []HabitProgress{
			{Name: "Water Intake", Completed: true},
			{Name: "Meditation", Completed: false},
		},
		history: []PersonalRecordHistory{
			{ExerciseName: "Bench Press", NewValue: 225, ImprovementPercent: 12.5},
		},
	}
	e := newTestExecutor(repo)

	result := e.Execute(context.Background(), "user-1", Action{
		Kind: ActionInfo,
		Info: &InfoAction{Topic: InfoProgress},
	})

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if !strings.Contains(result.Message, "12 workouts") || !strings.Contains(result.Message, "completed 1 habits") {
		t.Fatalf("unexpected summary %q", result.Message)
	}
	if !strings.Contains(result.Message, "Bench Press 225 (+12.5%)") {
		t.Fatalf("expected recent PR in summary, got %q", result.Message)
	}
}

func TestExecuteStoreFailureIsTransient(t *testing.T) {
	repo := &fakeRepo{failWith: errors.New("connection refused"), failOn: "insert_workout"}
	e := newTestExecutor(repo)

	result := e.Execute(context.Background(), "user-1", Action{
		Kind:    ActionWorkout,
		Workout: &WorkoutAction{WorkoutType: "running", Duration: 30},
	})

	if result.Success {
		t.Fatalf("expected failure, got %+v", result)
	}
	if result.ErrorKind != ErrorKindTransient {
		t.Fatalf("expected transient kind, got %q", result.ErrorKind)
	}
	if result.Message != genericFailureMessage {
		t.Fatalf("store detail must not leak to users, got %q", result.Message)
	}
}

func TestExecuteInvalidActionFailsValidation(t *testing.T) {
	e := newTestExecutor(&fakeRepo{})

	result := e.Execute(context.Background(), "user-1", Action{
		Kind:  ActionHabit,
		Habit: &HabitAction{Type: HabitType("coffee")},
	})

	if result.Success {
		t.Fatalf("expected failure, got %+v", result)
	}
	if result.ErrorKind != ErrorKindValidation {
		t.Fatalf("expected validation kind, got %q", result.ErrorKind)
	}
}

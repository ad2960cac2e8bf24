package assistant

import (
	"context"
	"testing"
	"time"

	"example.com/snapfit/internal/domain"
)

type recordingRepo struct {
	upserts int
}

func (r *recordingRepo) EnsureHabit(ctx context.Context, userID string, defaults domain.HabitDefaults) (*domain.HabitDefinition, error) {
	return &domain.HabitDefinition{ID: "habit-1", UserID: userID, Name: defaults.Name, Unit: defaults.Unit, Target: defaults.Target}, nil
}

func (r *recordingRepo) UpsertHabitLog(ctx context.Context, habit domain.HabitDefinition, day string, amount float64, accumulate bool) (*domain.HabitLogEntry, error) {
	r.upserts++
	return &domain.HabitLogEntry{ID: "log-1", HabitID: habit.ID, Day: day, Value: amount}, nil
}

func (r *recordingRepo) GetRecord(ctx context.Context, userID, exerciseName string) (*domain.PersonalRecord, error) {
	return nil, nil
}

func (r *recordingRepo) SaveRecord(ctx context.Context, record domain.PersonalRecord, history domain.PersonalRecordHistory) error {
	return nil
}

func (r *recordingRepo) InsertWorkout(ctx context.Context, workout domain.WorkoutLog) error {
	return nil
}

func (r *recordingRepo) InsertFoodLog(ctx context.Context, entry domain.FoodLogEntry) error {
	return nil
}

func (r *recordingRepo) ListWorkouts(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.WorkoutLog, *domain.Cursor, error) {
	return nil, nil, nil
}

func (r *recordingRepo) ListRecords(ctx context.Context, userID string) ([]domain.PersonalRecord, error) {
	return nil, nil
}

func (r *recordingRepo) CountWorkouts(ctx context.Context, userID string) (int, error) {
	return 0, nil
}

func (r *recordingRepo) HabitProgressForDay(ctx context.Context, userID, day string) ([]domain.HabitProgress, error) {
	return nil, nil
}

func (r *recordingRepo) RecentRecordHistory(ctx context.Context, userID string, limit int) ([]domain.PersonalRecordHistory, error) {
	return nil, nil
}

func waterAction(message string) domain.Action {
	return domain.Action{
		Kind:         domain.ActionHabit,
		Confidence:   0.9,
		Confirmation: message,
		Habit:        &domain.HabitAction{Type: domain.HabitWater, Amount: 2},
	}
}

func newTestOrchestrator(classifier Classifier, repo *recordingRepo, opts ...OrchestratorOption) *Orchestrator {
	oracle := NewOracle(classifier, WithOracleLogger(quietLogger()))
	executor := domain.NewExecutor(repo)
	return NewOrchestrator(oracle, executor, opts...)
}

func TestSubmitStoresPendingAction(t *testing.T) {
	repo := &recordingRepo{}
	o := newTestOrchestrator(stubClassifier{action: waterAction("Log 2 glasses of water?")}, repo)

	result := o.Submit(context.Background(), "user-1", "drank 2 glasses")

	if !result.Pending {
		t.Fatalf("expected pending action")
	}
	if result.Message != "Log 2 glasses of water?" {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if repo.upserts != 0 {
		t.Fatalf("nothing must execute before confirm, got %d upserts", repo.upserts)
	}
}

func TestSubmitUnknownLeavesNothingPending(t *testing.T) {
	repo := &recordingRepo{}
	o := newTestOrchestrator(stubClassifier{action: domain.Action{Kind: domain.ActionUnknown}}, repo)

	result := o.Submit(context.Background(), "user-1", "asdfgh")

	if result.Pending {
		t.Fatalf("unknown input must not create a pending action")
	}

	confirm := o.Confirm(context.Background(), "user-1")
	if confirm.Success {
		t.Fatalf("confirm with nothing pending must fail, got %+v", confirm)
	}
}

func TestConfirmExecutesExactlyOnce(t *testing.T) {
	repo := &recordingRepo{}
	o := newTestOrchestrator(stubClassifier{action: waterAction("Log water?")}, repo)

	o.Submit(context.Background(), "user-1", "water")

	first := o.Confirm(context.Background(), "user-1")
	if !first.Success {
		t.Fatalf("expected execution, got %+v", first)
	}
	if repo.upserts != 1 {
		t.Fatalf("expected one upsert, got %d", repo.upserts)
	}

	second := o.Confirm(context.Background(), "user-1")
	if second.Success {
		t.Fatalf("second confirm must be a no-op, got %+v", second)
	}
	if second.ErrorKind != domain.ErrorKindValidation {
		t.Fatalf("unexpected error kind %q", second.ErrorKind)
	}
	if repo.upserts != 1 {
		t.Fatalf("action executed twice: %d upserts", repo.upserts)
	}
}

func TestNewSubmissionReplacesPendingAction(t *testing.T) {
	repo := &recordingRepo{}
	first := waterAction("Log 2 glasses?")
	second := waterAction("Log 5 glasses?")
	second.Habit.Amount = 5

	classifier := &sequenceClassifier{actions: []domain.Action{first, second}}
	o := newTestOrchestrator(classifier, repo)

	o.Submit(context.Background(), "user-1", "2 glasses")
	o.Submit(context.Background(), "user-1", "actually 5 glasses")

	result := o.Confirm(context.Background(), "user-1")
	if !result.Success {
		t.Fatalf("expected execution, got %+v", result)
	}
	if result.HabitValue != 5 {
		t.Fatalf("expected the replacement action to run, got value %g", result.HabitValue)
	}
	if repo.upserts != 1 {
		t.Fatalf("expected one upsert, got %d", repo.upserts)
	}
}

func TestCancelDiscardsPendingAction(t *testing.T) {
	repo := &recordingRepo{}
	o := newTestOrchestrator(stubClassifier{action: waterAction("Log water?")}, repo)

	o.Submit(context.Background(), "user-1", "water")

	if !o.Cancel("user-1") {
		t.Fatalf("expected cancel to report a pending action")
	}
	if o.Cancel("user-1") {
		t.Fatalf("second cancel must find nothing")
	}

	result := o.Confirm(context.Background(), "user-1")
	if result.Success {
		t.Fatalf("cancelled action must not execute, got %+v", result)
	}
	if repo.upserts != 0 {
		t.Fatalf("cancelled action executed: %d upserts", repo.upserts)
	}
}

func TestPendingActionExpires(t *testing.T) {
	repo := &recordingRepo{}
	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	o := newTestOrchestrator(stubClassifier{action: waterAction("Log water?")}, repo,
		WithPendingTTL(time.Minute),
		WithOrchestratorClock(clock),
	)

	o.Submit(context.Background(), "user-1", "water")
	now = now.Add(2 * time.Minute)

	result := o.Confirm(context.Background(), "user-1")
	if result.Success {
		t.Fatalf("expired action must not execute, got %+v", result)
	}
	if repo.upserts != 0 {
		t.Fatalf("expired action executed: %d upserts", repo.upserts)
	}
}

func TestPendingActionsAreIsolatedPerUser(t *testing.T) {
	repo := &recordingRepo{}
	o := newTestOrchestrator(stubClassifier{action: waterAction("Log water?")}, repo)

	o.Submit(context.Background(), "user-1", "water")

	other := o.Confirm(context.Background(), "user-2")
	if other.Success {
		t.Fatalf("user-2 must not confirm user-1's action, got %+v", other)
	}

	mine := o.Confirm(context.Background(), "user-1")
	if !mine.Success {
		t.Fatalf("user-1's action should still be pending, got %+v", mine)
	}
}

type sequenceClassifier struct {
	actions []domain.Action
	index   int
}

func (s *sequenceClassifier) Classify(ctx context.Context, text string) (domain.Action, error) {
	action := s.actions[s.index]
	if s.index < len(s.actions)-1 {
		s.index++
	}
	return action, nil
}

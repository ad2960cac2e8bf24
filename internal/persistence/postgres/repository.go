// Package postgres provides pgx-backed persistence for fitness state and the
// transactional outbox.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/snapfit/internal/domain"
	"example.com/snapfit/internal/events"
	"example.com/snapfit/internal/observability"
)

// Repository implements domain.FitnessRepository on PostgreSQL. Writes that
// matter to downstream consumers record outbox events in the same
// transaction.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureHabit returns the user's habit definition, creating it with the
// catalog defaults when absent. The unique constraint on (user_id, name)
// makes the create path race-safe.
func (r *Repository) EnsureHabit(ctx context.Context, userID string, defaults domain.HabitDefaults) (*domain.HabitDefinition, error) {
	const insert = `INSERT INTO habits (habit_id, user_id, name, unit, target, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        ON CONFLICT (user_id, name) DO NOTHING`

	if _, err := r.pool.Exec(ctx, insert,
		uuid.NewString(), userID, defaults.Name, defaults.Unit, defaults.Target, time.Now().UTC(),
	); err != nil {
		return nil, err
	}

	const query = `SELECT habit_id, user_id, name, unit, target, created_at
        FROM habits WHERE user_id=$1 AND name=$2`

	var habit domain.HabitDefinition
	row := r.pool.QueryRow(ctx, query, userID, defaults.Name)
	if err := row.Scan(&habit.ID, &habit.UserID, &habit.Name, &habit.Unit, &habit.Target, &habit.CreatedAt); err != nil {
		return nil, err
	}
	return &habit, nil
}

// UpsertHabitLog writes the day's entry keyed on (habit_id, day). The
// increment-vs-overwrite decision lives in the conflict clause so concurrent
// submissions cannot lose updates.
func (r *Repository) UpsertHabitLog(ctx context.Context, habit domain.HabitDefinition, day string, amount float64, accumulate bool) (*domain.HabitLogEntry, error) {
	now := time.Now().UTC()

	var stmt string
	args := []interface{}{uuid.NewString(), habit.ID, habit.UserID, day, amount}
	if accumulate {
		stmt = `INSERT INTO habit_logs (log_id, habit_id, user_id, day, value, completed, updated_at)
            VALUES ($1,$2,$3,$4,$5,$5 >= $6,$7)
            ON CONFLICT (habit_id, day) DO UPDATE
            SET value = habit_logs.value + EXCLUDED.value,
                completed = (habit_logs.value + EXCLUDED.value) >= $6,
                updated_at = EXCLUDED.updated_at
            RETURNING log_id, value, completed`
		args = append(args, habit.Target, now)
	} else {
		stmt = `INSERT INTO habit_logs (log_id, habit_id, user_id, day, value, completed, updated_at)
            VALUES ($1,$2,$3,$4,$5,TRUE,$6)
            ON CONFLICT (habit_id, day) DO UPDATE
            SET value = EXCLUDED.value,
                completed = TRUE,
                updated_at = EXCLUDED.updated_at
            RETURNING log_id, value, completed`
		args = append(args, now)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	entry := domain.HabitLogEntry{
		HabitID:   habit.ID,
		UserID:    habit.UserID,
		Day:       day,
		UpdatedAt: now,
	}

	row := tx.QueryRow(ctx, stmt, args...)
	if err = row.Scan(&entry.ID, &entry.Value, &entry.Completed); err != nil {
		return nil, err
	}

	if err = r.insertOutbox(ctx, tx, "habit.logged", habit.UserID, habit.ID, events.HabitLogged{
		HabitID:   habit.ID,
		UserID:    habit.UserID,
		HabitName: habit.Name,
		Day:       day,
		Value:     entry.Value,
		Completed: entry.Completed,
		LoggedAt:  now,
	}); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, err
	}
	observability.RecordWritePersisted(now)
	return &entry, nil
}

// GetRecord returns the user's record for an exercise, or nil when none
// exists.
func (r *Repository) GetRecord(ctx context.Context, userID, exerciseName string) (*domain.PersonalRecord, error) {
	const query = `SELECT record_id, user_id, exercise_name, max_weight, max_reps, unit, achieved_at
        FROM personal_records WHERE user_id=$1 AND exercise_name=$2`

	var record domain.PersonalRecord
	row := r.pool.QueryRow(ctx, query, userID, exerciseName)
	if err := row.Scan(&record.ID, &record.UserID, &record.ExerciseName, &record.MaxWeight, &record.MaxReps, &record.Unit, &record.AchievedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// SaveRecord upserts the record, appends the history row, and records the
// improvement event in one transaction.
func (r *Repository) SaveRecord(ctx context.Context, record domain.PersonalRecord, history domain.PersonalRecordHistory) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const upsert = `INSERT INTO personal_records (record_id, user_id, exercise_name, max_weight, max_reps, unit, achieved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (user_id, exercise_name) DO UPDATE
        SET max_weight = EXCLUDED.max_weight,
            max_reps = EXCLUDED.max_reps,
            unit = EXCLUDED.unit,
            achieved_at = EXCLUDED.achieved_at`

	if _, err = tx.Exec(ctx, upsert,
		record.ID, record.UserID, record.ExerciseName, record.MaxWeight, record.MaxReps, record.Unit, record.AchievedAt,
	); err != nil {
		return err
	}

	const insertHistory = `INSERT INTO personal_record_history (history_id, record_id, user_id, exercise_name, previous_value, new_value, improvement_percent, achieved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	if _, err = tx.Exec(ctx, insertHistory,
		history.ID, history.RecordID, history.UserID, history.ExerciseName,
		history.PreviousValue, history.NewValue, history.ImprovementPercent, history.AchievedAt,
	); err != nil {
		return err
	}

	if err = r.insertOutbox(ctx, tx, "record.improved", record.UserID, record.ID, events.RecordImproved{
		RecordID:           record.ID,
		UserID:             record.UserID,
		ExerciseName:       record.ExerciseName,
		PreviousValue:      history.PreviousValue,
		NewValue:           history.NewValue,
		ImprovementPercent: history.ImprovementPercent,
		AchievedAt:         record.AchievedAt,
	}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordWritePersisted(record.AchievedAt)
	return nil
}

// InsertWorkout persists one workout log entry plus its outbox event.
func (r *Repository) InsertWorkout(ctx context.Context, workout domain.WorkoutLog) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const insert = `INSERT INTO workouts (workout_id, user_id, title, duration_min, notes, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`

	if _, err = tx.Exec(ctx, insert,
		workout.ID, workout.UserID, workout.Title, workout.DurationMin, workout.Notes, workout.CreatedAt,
	); err != nil {
		return err
	}

	if err = r.insertOutbox(ctx, tx, "workout.logged", workout.UserID, workout.ID, events.WorkoutLogged{
		WorkoutID:   workout.ID,
		UserID:      workout.UserID,
		Title:       workout.Title,
		DurationMin: workout.DurationMin,
		LoggedAt:    workout.CreatedAt,
	}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordWritePersisted(workout.CreatedAt)
	return nil
}

// InsertFoodLog persists one food log entry plus its outbox event.
func (r *Repository) InsertFoodLog(ctx context.Context, entry domain.FoodLogEntry) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const insert = `INSERT INTO food_logs (log_id, user_id, food_name, meal_type, calories, protein, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`

	if _, err = tx.Exec(ctx, insert,
		entry.ID, entry.UserID, entry.FoodName, entry.MealType, entry.Calories, entry.Protein, entry.CreatedAt,
	); err != nil {
		return err
	}

	if err = r.insertOutbox(ctx, tx, "food.logged", entry.UserID, entry.ID, events.FoodLogged{
		LogID:    entry.ID,
		UserID:   entry.UserID,
		FoodName: entry.FoodName,
		MealType: entry.MealType,
		Calories: entry.Calories,
		LoggedAt: entry.CreatedAt,
	}); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordWritePersisted(entry.CreatedAt)
	return nil
}

// ListWorkouts returns the user's workouts newest first with keyset
// pagination on (created_at, workout_id).
func (r *Repository) ListWorkouts(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.WorkoutLog, *domain.Cursor, error) {
	args := []interface{}{userID, limit}
	query := `SELECT workout_id, user_id, title, duration_min, notes, created_at
        FROM workouts WHERE user_id=$1`

	if cursor != nil {
		query += ` AND (created_at, workout_id) < ($3, $4)`
		args = append(args, cursor.CreatedAt, cursor.ID)
	}

	query += ` ORDER BY created_at DESC, workout_id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]domain.WorkoutLog, 0, limit)
	for rows.Next() {
		var w domain.WorkoutLog
		if err := rows.Scan(&w.ID, &w.UserID, &w.Title, &w.DurationMin, &w.Notes, &w.CreatedAt); err != nil {
			return nil, nil, err
		}
		results = append(results, w)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var next *domain.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		next = &domain.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return results, next, nil
}

// ListRecords returns all of the user's personal records.
func (r *Repository) ListRecords(ctx context.Context, userID string) ([]domain.PersonalRecord, error) {
	const query = `SELECT record_id, user_id, exercise_name, max_weight, max_reps, unit, achieved_at
        FROM personal_records WHERE user_id=$1 ORDER BY exercise_name`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.PersonalRecord
	for rows.Next() {
		var rec domain.PersonalRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ExerciseName, &rec.MaxWeight, &rec.MaxReps, &rec.Unit, &rec.AchievedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountWorkouts returns the user's total workout count.
func (r *Repository) CountWorkouts(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM workouts WHERE user_id=$1`, userID).Scan(&count)
	return count, err
}

// HabitProgressForDay returns each habit's entry for the given day.
func (r *Repository) HabitProgressForDay(ctx context.Context, userID, day string) ([]domain.HabitProgress, error) {
	const query = `SELECT h.name, h.unit, h.target, l.value, l.completed
        FROM habits h
        JOIN habit_logs l ON l.habit_id = h.habit_id AND l.day = $2
        WHERE h.user_id = $1
        ORDER BY h.name`

	rows, err := r.pool.Query(ctx, query, userID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var progress []domain.HabitProgress
	for rows.Next() {
		var p domain.HabitProgress
		if err := rows.Scan(&p.Name, &p.Unit, &p.Target, &p.Value, &p.Completed); err != nil {
			return nil, err
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}

// RecentRecordHistory returns the user's latest record improvements.
func (r *Repository) RecentRecordHistory(ctx context.Context, userID string, limit int) ([]domain.PersonalRecordHistory, error) {
	const query = `SELECT history_id, record_id, user_id, exercise_name, previous_value, new_value, improvement_percent, achieved_at
        FROM personal_record_history WHERE user_id=$1
        ORDER BY achieved_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.PersonalRecordHistory
	for rows.Next() {
		var h domain.PersonalRecordHistory
		if err := rows.Scan(&h.ID, &h.RecordID, &h.UserID, &h.ExerciseName, &h.PreviousValue, &h.NewValue, &h.ImprovementPercent, &h.AchievedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func (r *Repository) insertOutbox(ctx context.Context, tx pgx.Tx, eventType, userID, aggregateID string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	meta, ok := eventCatalog[eventType]
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err = tx.Exec(ctx, stmt,
		meta.AggregateType,
		aggregateID,
		eventType,
		meta.Topic,
		meta.SchemaSubject,
		userID,
		body,
	)
	return err
}

// EventMetadata describes how an outbox event is routed.
type EventMetadata struct {
	AggregateType string
	Topic         string
	SchemaSubject string
}

var eventCatalog = map[string]EventMetadata{
	"workout.logged": {
		AggregateType: "workout",
		Topic:         "fitness_logs",
		SchemaSubject: "fitness_logs-workout-value",
	},
	"food.logged": {
		AggregateType: "food_log",
		Topic:         "fitness_logs",
		SchemaSubject: "fitness_logs-food-value",
	},
	"habit.logged": {
		AggregateType: "habit",
		Topic:         "habit_events",
		SchemaSubject: "habit_events-value",
	},
	"record.improved": {
		AggregateType: "personal_record",
		Topic:         "record_events",
		SchemaSubject: "record_events-value",
	},
}

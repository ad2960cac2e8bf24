package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/snapfit/internal/domain"
	"example.com/snapfit/internal/events"
)

// StreakHandler projects habit.logged events into per-habit streak counters.
// Only completed entries extend a streak; a gap of more than one day resets
// the current streak to 1.
type StreakHandler struct {
	pool *pgxpool.Pool
}

// NewStreakHandler constructs a handler backed by the provided pool.
func NewStreakHandler(pool *pgxpool.Pool) *StreakHandler {
	return &StreakHandler{pool: pool}
}

// Handle updates habit_streaks for completed habit logs. Events other than
// habit.logged and incomplete entries are ignored.
func (h *StreakHandler) Handle(ctx context.Context, msg Message) error {
	if msg.EventType != "habit.logged" {
		return nil
	}

	var event events.HabitLogged
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("decode habit.logged payload: %w", err)
	}
	if !event.Completed {
		return nil
	}

	day, err := time.Parse(domain.DayFormat, event.Day)
	if err != nil {
		return fmt.Errorf("invalid day %q: %w", event.Day, err)
	}

	conn, err := h.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	// Re-logging the same day keeps the streak; the previous day extends it;
	// anything older restarts at 1. Decided in SQL so concurrent consumers
	// converge on the same row.
	const stmt = `INSERT INTO habit_streaks (habit_id, user_id, habit_name, current_streak, best_streak, last_day, updated_at)
        VALUES ($1,$2,$3,1,1,$4,NOW())
        ON CONFLICT (habit_id) DO UPDATE
        SET current_streak = CASE
                WHEN habit_streaks.last_day = $4 THEN habit_streaks.current_streak
                WHEN habit_streaks.last_day = $4::date - 1 THEN habit_streaks.current_streak + 1
                ELSE 1
            END,
            best_streak = GREATEST(habit_streaks.best_streak, CASE
                WHEN habit_streaks.last_day = $4 THEN habit_streaks.current_streak
                WHEN habit_streaks.last_day = $4::date - 1 THEN habit_streaks.current_streak + 1
                ELSE 1
            END),
            last_day = GREATEST(habit_streaks.last_day, $4::date),
            updated_at = NOW()`

	_, err = conn.Exec(ctx, stmt, event.HabitID, event.UserID, event.HabitName, day)
	return err
}

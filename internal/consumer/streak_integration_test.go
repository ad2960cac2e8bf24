//go:build integration
// +build integration

package consumer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestStreakHandlerExtendsAndResets(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	handler := NewStreakHandler(pool)
	habitID := uuid.NewString()
	userID := uuid.NewString()

	deliver := func(day string, completed bool) {
		payload, err := json.Marshal(map[string]interface{}{
			"habit_id":   habitID,
			"user_id":    userID,
			"habit_name": "Water Intake",
			"day":        day,
			"value":      8,
			"completed":  completed,
			"logged_at":  time.Now().UTC(),
		})
		require.NoError(t, err)
		require.NoError(t, handler.Handle(ctx, Message{
			EventType: "habit.logged",
			Topic:     "habit_events",
			Payload:   payload,
		}))
	}

	streak := func() (current, best int) {
		err := pool.QueryRow(ctx,
			`SELECT current_streak, best_streak FROM habit_streaks WHERE habit_id=$1`, habitID,
		).Scan(&current, &best)
		require.NoError(t, err)
		return current, best
	}

	deliver("2026-08-18", true)
	current, best := streak()
	require.Equal(t, 1, current)
	require.Equal(t, 1, best)

	// Consecutive day extends the streak.
	deliver("2026-08-19", true)
	current, best = streak()
	require.Equal(t, 2, current)
	require.Equal(t, 2, best)

	// Same-day re-log keeps it.
	deliver("2026-08-19", true)
	current, best = streak()
	require.Equal(t, 2, current)
	require.Equal(t, 2, best)

	// A gap resets current but preserves best.
	deliver("2026-08-25", true)
	current, best = streak()
	require.Equal(t, 1, current)
	require.Equal(t, 2, best)
}

func TestStreakHandlerIgnoresIncompleteEntries(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := setupPostgres(t, ctx)
	defer cleanup()

	handler := NewStreakHandler(pool)
	habitID := uuid.NewString()

	payload, err := json.Marshal(map[string]interface{}{
		"habit_id":   habitID,
		"user_id":    uuid.NewString(),
		"habit_name": "Water Intake",
		"day":        "2026-08-20",
		"value":      3,
		"completed":  false,
	})
	require.NoError(t, err)
	require.NoError(t, handler.Handle(ctx, Message{EventType: "habit.logged", Payload: payload}))

	var count int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM habit_streaks WHERE habit_id=$1`, habitID).Scan(&count))
	require.Equal(t, 0, count)
}

func setupPostgres(t *testing.T, ctx context.Context) (*pgxpool.Pool, func()) {
	t.Helper()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("snapfit"),
		postgrescontainer.WithUsername("snapfit"),
		postgrescontainer.WithPassword("snapfit"),
	)
	require.NoError(t, err)

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, waitForDatabase(ctx, connStr))
	runMigrations(t, ctx, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pg.Terminate(ctx)
	}
	return pool, cleanup
}

func runMigrations(t *testing.T, ctx context.Context, connStr string) {
	t.Helper()

	files := []string{
		"../../db/postgres/migrations/0001_init.up.sql",
	}

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer pool.Close()

	for _, rel := range files {
		path := resolvePath(t, rel)
		contents, readErr := os.ReadFile(path)
		require.NoError(t, readErr)

		_, execErr := pool.Exec(ctx, string(contents))
		require.NoError(t, execErr)
	}
}

func resolvePath(t *testing.T, rel string) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), rel)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}

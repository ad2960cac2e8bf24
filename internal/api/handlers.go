// Package api exposes HTTP handlers for the assistant service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/snapfit/internal/assistant"
	"example.com/snapfit/internal/auth"
	"example.com/snapfit/internal/domain"
	"example.com/snapfit/internal/persistence"
)

// FitnessReader is the read-side subset of the repository the API needs.
type FitnessReader interface {
	ListWorkouts(ctx context.Context, userID string, cursor *domain.Cursor, limit int) ([]domain.WorkoutLog, *domain.Cursor, error)
	ListRecords(ctx context.Context, userID string) ([]domain.PersonalRecord, error)
}

// Handler coordinates HTTP requests with the orchestrator and read queries.
type Handler struct {
	orchestrator *assistant.Orchestrator
	reader       FitnessReader
}

// NewHandler builds a Handler.
func NewHandler(orchestrator *assistant.Orchestrator, reader FitnessReader) *Handler {
	return &Handler{orchestrator: orchestrator, reader: reader}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/assistant/messages", h.submitMessage)
	mux.HandleFunc("/v1/assistant/confirm", h.confirmAction)
	mux.HandleFunc("/v1/assistant/cancel", h.cancelAction)
	mux.HandleFunc("/v1/workouts", h.listWorkouts)
	mux.HandleFunc("/v1/records", h.listRecords)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) submitMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeAssistantUse) {
		writeError(w, http.StatusForbidden, "forbidden", "scope assistant:use required")
		return
	}

	var req SubmitMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.Input) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "input is required")
		return
	}

	result := h.orchestrator.Submit(r.Context(), claims.Subject, req.Input)

	resp := SubmitMessageResponse{
		Message: result.Message,
		Pending: result.Pending,
		Action:  result.Action,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) confirmAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeAssistantUse) {
		writeError(w, http.StatusForbidden, "forbidden", "scope assistant:use required")
		return
	}

	result := h.orchestrator.Confirm(r.Context(), claims.Subject)
	writeJSON(w, http.StatusOK, toExecutionView(result))
}

func (h *Handler) cancelAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeAssistantUse) {
		writeError(w, http.StatusForbidden, "forbidden", "scope assistant:use required")
		return
	}

	cancelled := h.orchestrator.Cancel(claims.Subject)
	message := "Okay, cancelled."
	if !cancelled {
		message = "There was nothing to cancel."
	}
	writeJSON(w, http.StatusOK, CancelResponse{Cancelled: cancelled, Message: message})
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeFitnessRead) {
		writeError(w, http.StatusForbidden, "forbidden", "scope fitness:read required")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > 100 {
				parsed = 100
			}
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	workouts, next, err := h.reader.ListWorkouts(r.Context(), claims.Subject, cursor, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]WorkoutView, 0, len(workouts))
	for _, workout := range workouts {
		items = append(items, toWorkoutView(workout))
	}

	writeJSON(w, http.StatusOK, ListWorkoutsResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) listRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeFitnessRead) {
		writeError(w, http.StatusForbidden, "forbidden", "scope fitness:read required")
		return
	}

	records, err := h.reader.ListRecords(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]RecordView, 0, len(records))
	for _, record := range records {
		items = append(items, toRecordView(record))
	}
	writeJSON(w, http.StatusOK, ListRecordsResponse{Items: items})
}

// SubmitMessageRequest is the payload for POST /v1/assistant/messages.
type SubmitMessageRequest struct {
	Input string `json:"input"`
}

// SubmitMessageResponse returns the parse outcome: help text for unknown
// input, or the confirmation prompt plus the parsed pending action.
type SubmitMessageResponse struct {
	Message string         `json:"message"`
	Pending bool           `json:"pending"`
	Action  *domain.Action `json:"action,omitempty"`
}

// CancelResponse reports the cancel outcome.
type CancelResponse struct {
	Cancelled bool   `json:"cancelled"`
	Message   string `json:"message"`
}

// ExecutionView mirrors domain.ExecutionResult for the wire.
type ExecutionView struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	ErrorKind string              `json:"error_kind,omitempty"`
	WorkoutID string              `json:"workout_id,omitempty"`
	LogID     string              `json:"log_id,omitempty"`
	IsNewPR   bool                `json:"is_new_pr"`
	Improve   float64             `json:"improvement,omitempty"`
	HabitVal  float64             `json:"habit_value,omitempty"`
	HabitTgt  float64             `json:"habit_target,omitempty"`
	HabitDone bool                `json:"habit_completed,omitempty"`
	Redirect  string              `json:"redirect,omitempty"`
	Timer     *domain.TimerAction `json:"timer,omitempty"`
}

// WorkoutView exposes one workout log entry.
type WorkoutView struct {
	WorkoutID   string    `json:"workout_id"`
	Title       string    `json:"title"`
	DurationMin int       `json:"duration_min"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListWorkoutsResponse packages list results.
type ListWorkoutsResponse struct {
	Items      []WorkoutView `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// RecordView exposes one personal record.
type RecordView struct {
	RecordID     string    `json:"record_id"`
	ExerciseName string    `json:"exercise_name"`
	MaxWeight    float64   `json:"max_weight"`
	MaxReps      int       `json:"max_reps"`
	Unit         string    `json:"unit"`
	AchievedAt   time.Time `json:"achieved_at"`
}

// ListRecordsResponse packages record list results.
type ListRecordsResponse struct {
	Items []RecordView `json:"items"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toExecutionView(result domain.ExecutionResult) ExecutionView {
	return ExecutionView{
		Success:   result.Success,
		Message:   result.Message,
		ErrorKind: string(result.ErrorKind),
		WorkoutID: result.WorkoutID,
		LogID:     result.LogID,
		IsNewPR:   result.IsNewPR,
		Improve:   result.Improvement,
		HabitVal:  result.HabitValue,
		HabitTgt:  result.HabitTarget,
		HabitDone: result.HabitCompleted,
		Redirect:  result.Redirect,
		Timer:     result.Timer,
	}
}

func toWorkoutView(workout domain.WorkoutLog) WorkoutView {
	return WorkoutView{
		WorkoutID:   workout.ID,
		Title:       workout.Title,
		DurationMin: workout.DurationMin,
		Notes:       workout.Notes,
		CreatedAt:   workout.CreatedAt,
	}
}

func toRecordView(record domain.PersonalRecord) RecordView {
	return RecordView{
		RecordID:     record.ID,
		ExerciseName: record.ExerciseName,
		MaxWeight:    record.MaxWeight,
		MaxReps:      record.MaxReps,
		Unit:         record.Unit,
		AchievedAt:   record.AchievedAt,
	}
}

// Package api provides HTTP handlers for the API.
package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/taskhub/taskhub-api/internal/api/shared"
	"github.com/taskhub/taskhub-api/internal/platform/logger"
	"github.com/taskhub/taskhub-api/internal/redact"
	"github.com/taskhub/taskhub-api/internal/service"
	"github.com/taskhub/taskhub-api/internal/store"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// parseIDParam extracts and parses an int64 ID from the named URL parameter.
func parseIDParam(r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// requireUserID extracts the authenticated user ID from the request context.
// Responds with 401 and returns false when it is absent.
func requireUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (int64, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok || userID == 0 {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return 0, false
	}
	return userID, true
}

// CreateTask handles POST /tasks requests.
// The task and its initial assignee/tag membership are created atomically;
// a missing reference fails the whole request.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.Int64("user_id", userID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	input := service.CreateTaskInput{
		Title:            req.Title,
		Description:      req.Description,
		ProjectID:        req.ProjectID,
		Status:           req.Status,
		Priority:         req.Priority,
		DueAt:            req.DueAt,
		StartAt:          req.StartAt,
		EstimatedMinutes: req.EstimatedMinutes,
		ParentTaskID:     req.ParentTaskID,
		Position:         req.Position,
		AssigneeIDs:      req.AssigneeIDs,
		TagIDs:           req.TagIDs,
	}

	task, err := h.taskService.CreateTask(r.Context(), userID, input)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("user_id", userID))
	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// GetTask handles GET /tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := parseIDParam(r, "id")
	if !ok {
		log.Warn("invalid task ID in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	task, err := h.taskService.GetTask(r.Context(), taskID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// ListTasks handles GET /tasks requests with optional skip/limit query params.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	skip := parseQueryInt(r, "skip", 0)
	limit := parseQueryInt(r, "limit", 50)

	tasks, err := h.taskService.ListTasks(r.Context(), skip, limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasks)
}

// UpdateTask handles PATCH /tasks/{id} requests.
// When the request carries a version, the update is conditional: a stale
// version yields 409 and leaves the task untouched.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := parseIDParam(r, "id")
	if !ok {
		log.Warn("invalid task ID in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.Int64("user_id", userID),
			slog.Int64("task_id", taskID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	patch := store.TaskPatch{
		Title:            req.Title,
		Description:      req.Description,
		Status:           req.Status,
		Priority:         req.Priority,
		DueAt:            req.DueAt,
		StartAt:          req.StartAt,
		EstimatedMinutes: req.EstimatedMinutes,
		ParentTaskID:     req.ParentTaskID,
		Position:         req.Position,
		AssigneeIDs:      req.AssigneeIDs,
		TagIDs:           req.TagIDs,
	}

	task, err := h.taskService.UpdateTask(r.Context(), taskID, patch, req.Version)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("task updated",
		slog.Int64("task_id", taskID),
		slog.Int64("user_id", userID),
		slog.Int("version", task.Version))
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// AssignUsers handles PUT /tasks/{id}/assignees requests.
// The given user set replaces the current assignees entirely.
func (h *TaskHandler) AssignUsers(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := parseIDParam(r, "id")
	if !ok {
		log.Warn("invalid task ID in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req AssignUsersRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.Int64("user_id", userID),
			slog.Int64("task_id", taskID))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	userIDs := req.UserIDs
	if userIDs == nil {
		userIDs = []int64{}
	}

	task, err := h.taskService.AssignUsers(r.Context(), taskID, userIDs, userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("task assignees replaced",
		slog.Int64("task_id", taskID),
		slog.Int("assignee_count", len(userIDs)))
	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /tasks/{id} requests.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, ok := parseIDParam(r, "id")
	if !ok {
		log.Warn("invalid task ID in URL path")
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), taskID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseQueryInt parses an integer query parameter, falling back to def when
// the parameter is absent or malformed.
func parseQueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

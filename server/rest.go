package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newswatch/pkg/domain"
)

// createTaskRequest is the body of POST /tasks
type createTaskRequest struct {
	OwnerContact string            `json:"owner_contact"`
	Description  string            `json:"description"`
	SourceType   domain.SourceType `json:"source_type"`
	SourceTarget string            `json:"source_target"`
	Criterion    string            `json:"criterion"`
}

// taskResponse is a task with its dedup ledger size
type taskResponse struct {
	domain.Task
	SeenItems int64 `json:"seen_items"`
}

// statusHandler reports store and broker health with queue depths
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := map[string]any{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}
	code := http.StatusOK

	if err := s.db.Ping(ctx); err != nil {
		lgr.Printf("[WARN] status: database ping failed: %v", err)
		status["database"] = err.Error()
		status["status"] = "degraded"
		code = http.StatusServiceUnavailable
	} else {
		status["database"] = "ok"
	}

	queues := map[string]any{}
	for _, q := range domain.Queues {
		depth, err := s.broker.QueueDepth(ctx, q)
		if err != nil {
			lgr.Printf("[WARN] status: depth of %s: %v", q, err)
			queues[string(q)] = err.Error()
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		queues[string(q)] = depth
	}
	status["queues"] = queues

	renderJSON(w, r, code, status)
}

// listTasksHandler returns tasks, optionally filtered by ?status=active,paused
func (s *Server) listTasksHandler(w http.ResponseWriter, r *http.Request) {
	var statuses []domain.TaskStatus
	if q := r.URL.Query().Get("status"); q != "" {
		for _, v := range strings.Split(q, ",") {
			st := domain.TaskStatus(strings.TrimSpace(v))
			if !st.Valid() {
				renderError(w, r, fmt.Errorf("unknown status %q", v), http.StatusBadRequest)
				return
			}
			statuses = append(statuses, st)
		}
	}

	tasks, err := s.db.ListTasks(r.Context(), statuses...)
	if err != nil {
		lgr.Printf("[ERROR] failed to list tasks: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	renderJSON(w, r, http.StatusOK, tasks)
}

// createTaskHandler creates an active task
func (s *Server) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}
	if req.SourceType != "" && !s.sources.Supports(req.SourceType) {
		renderError(w, r, fmt.Errorf("unsupported source type %q", req.SourceType), http.StatusBadRequest)
		return
	}

	task := &domain.Task{
		OwnerContact: strings.TrimSpace(req.OwnerContact),
		Description:  strings.TrimSpace(req.Description),
		SourceType:   req.SourceType,
		SourceTarget: strings.TrimSpace(req.SourceTarget),
		Criterion:    strings.TrimSpace(req.Criterion),
	}
	if err := s.db.CreateTask(r.Context(), task); err != nil {
		s.renderStoreError(w, r, "create task", err)
		return
	}
	lgr.Printf("[INFO] created task %d, %s %q for %s", task.ID, task.SourceType, task.SourceTarget, task.OwnerContact)
	renderJSON(w, r, http.StatusCreated, task)
}

// getTaskHandler returns one task
func (s *Server) getTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	task, err := s.db.GetTask(r.Context(), id)
	if err != nil {
		s.renderStoreError(w, r, "get task", err)
		return
	}
	seen, err := s.db.SeenCount(r.Context(), id)
	if err != nil {
		lgr.Printf("[WARN] failed to count seen items of task %d: %v", id, err)
	}
	renderJSON(w, r, http.StatusOK, taskResponse{Task: *task, SeenItems: seen})
}

// updateStatusHandler pauses or resumes a task
func (s *Server) updateStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status domain.TaskStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}
	if req.Status != domain.StatusActive && req.Status != domain.StatusPaused {
		renderError(w, r, fmt.Errorf("status must be %q or %q", domain.StatusActive, domain.StatusPaused), http.StatusBadRequest)
		return
	}

	task, err := s.db.GetTask(r.Context(), id)
	if err != nil {
		s.renderStoreError(w, r, "get task", err)
		return
	}
	if task.Status == domain.StatusDeleted {
		renderError(w, r, fmt.Errorf("task %d is deleted", id), http.StatusConflict)
		return
	}
	if err := s.db.UpdateStatus(r.Context(), id, req.Status); err != nil {
		s.renderStoreError(w, r, "update status", err)
		return
	}
	lgr.Printf("[INFO] task %d status %s -> %s", id, task.Status, req.Status)
	renderJSON(w, r, http.StatusOK, map[string]any{"task_id": id, "status": req.Status})
}

// deleteTaskHandler marks a task deleted and purges its dedup records
func (s *Server) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteTask(r.Context(), id); err != nil {
		s.renderStoreError(w, r, "delete task", err)
		return
	}
	purged, err := s.db.PurgeSeen(r.Context(), id)
	if err != nil {
		// the task is already deleted, stale records are harmless
		lgr.Printf("[WARN] failed to purge dedup records of task %d: %v", id, err)
	}
	lgr.Printf("[INFO] deleted task %d, purged %d dedup records", id, purged)
	renderJSON(w, r, http.StatusOK, map[string]any{"task_id": id, "status": domain.StatusDeleted, "purged": purged})
}

// feedbackHandler captures the current criterion into a feedback event and queues it
func (s *Server) feedbackHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	var req struct {
		FeedbackText string `json:"feedback_text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}
	req.FeedbackText = strings.TrimSpace(req.FeedbackText)
	if req.FeedbackText == "" {
		renderError(w, r, errors.New("feedback_text is required"), http.StatusBadRequest)
		return
	}

	task, err := s.db.GetTask(r.Context(), id)
	if err != nil {
		s.renderStoreError(w, r, "get task", err)
		return
	}
	if task.Status == domain.StatusDeleted {
		renderError(w, r, fmt.Errorf("task %d is deleted", id), http.StatusConflict)
		return
	}

	ev := domain.FeedbackEvent{TaskID: id, FeedbackText: req.FeedbackText, CriterionAtTimeOf: task.Criterion}
	if err := s.broker.Publish(r.Context(), domain.QueueFeedback, ev.MessageID(), ev); err != nil {
		lgr.Printf("[ERROR] failed to publish feedback for task %d: %v", id, err)
		renderError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	lgr.Printf("[INFO] queued feedback for task %d", id)
	renderJSON(w, r, http.StatusAccepted, map[string]any{"task_id": id, "message_id": ev.MessageID()})
}

// taskID parses the {id} path value, renders 400 on failure
func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		renderError(w, r, errors.New("invalid task ID"), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// renderStoreError maps store errors to status codes
func (s *Server) renderStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		renderError(w, r, err, http.StatusNotFound)
	case errors.Is(err, domain.ErrValidation):
		renderError(w, r, err, http.StatusBadRequest)
	case errors.Is(err, domain.ErrStoreUnavailable):
		lgr.Printf("[ERROR] %s: %v", op, err)
		renderError(w, r, err, http.StatusServiceUnavailable)
	default:
		lgr.Printf("[ERROR] %s: %v", op, err)
		renderError(w, r, err, http.StatusInternalServerError)
	}
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			lgr.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, map[string]string{"error": errMsg})
}

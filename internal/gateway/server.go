package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"TrendsLibrary/internal/domain"
	"TrendsLibrary/internal/logging"
	"TrendsLibrary/internal/ports"
)

// Server is the HTTP front door. Handlers only enqueue or read job state.
type Server struct {
	queue   ports.TaskQueue
	results ports.ResultBackend
	logger  *slog.Logger
}

// NewServer wires the broker and result backend.
func NewServer(queue ports.TaskQueue, results ports.ResultBackend, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{queue: queue, results: results, logger: logger}
}

// Routes configures HTTP routes.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)

	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/generate", s.generateHandler).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}", s.taskStatusHandler).Methods(http.MethodGet)

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: "invalid JSON body: " + err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: err.Error()})
		return
	}

	id, err := s.queue.Enqueue(r.Context(), domain.TaskGenerateContent, req)
	if err != nil {
		s.logger.Error("enqueue generation", "error", err, "title", req.Title)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Detail: "task broker unavailable"})
		return
	}

	s.logger.Info("generation enqueued", "task_id", id, "country", req.Country, "category", req.Category)
	writeJSON(w, http.StatusOK, map[string]string{"task_id": id})
}

type taskStatus struct {
	State  domain.JobState `json:"state"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *string         `json:"error,omitempty"`
	Info   *string         `json:"info,omitempty"`
}

func (s *Server) taskStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	job, err := s.results.Get(r.Context(), id)
	if err != nil {
		s.logger.Error("load task state", "error", err, "task_id", id)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Detail: "result backend unavailable"})
		return
	}

	status := taskStatus{State: job.State}
	switch job.State {
	case domain.JobPending:
	case domain.JobFailure:
		status.Error = &job.Error
	case domain.JobSuccess:
		status.Result = job.Result
		if len(status.Result) == 0 {
			status.Result = json.RawMessage("null")
		}
	default:
		status.Info = &job.Info
	}

	writeJSON(w, http.StatusOK, status)
}

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

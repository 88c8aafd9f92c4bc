package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"curator/internal/workspace"
)

// Credentials accepted by the fake control service.
const (
	OperatorEmail    = "admin@example.com"
	OperatorPassword = "admin1234"
	IssuedToken      = "test-token"
)

// ControlService is an in-process stand-in for the remote control
// service. It mimics the real API surface closely enough for client and
// command tests: bearer auth, the same JSON shapes, and the same status
// transitions on approve.
type ControlService struct {
	mu sync.Mutex

	Config     workspace.Config
	Sources    []workspace.Source
	Candidates []workspace.Candidate
	Logs       []workspace.LogEvent
	LastRunAt  *time.Time

	// RunRequests records the auto_publish flag of every /api/run call
	// in order.
	RunRequests []bool
	// Approved records every approve call in order.
	Approved []int64

	// ForceStatus, when nonzero, makes every authenticated endpoint
	// fail with that HTTP status.
	ForceStatus int

	nextID    int64
	nextLogID int64
	nextJobID int64

	srv *httptest.Server
}

// NewControlService starts a fake control service and registers cleanup.
func NewControlService(t testing.TB) *ControlService {
	t.Helper()

	s := &ControlService{
		Config: workspace.Config{ApprovalRequired: true, IntervalDays: 2, MaxCandidates: 25, PickTopN: 5},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("GET /me", s.authed(s.handleMe))
	mux.HandleFunc("GET /api/config", s.authed(s.handleGetConfig))
	mux.HandleFunc("POST /api/config", s.authed(s.handleSaveConfig))
	mux.HandleFunc("GET /api/sources", s.authed(s.handleListSources))
	mux.HandleFunc("POST /api/sources", s.authed(s.handleAddSource))
	mux.HandleFunc("GET /api/stats", s.authed(s.handleStats))
	mux.HandleFunc("GET /api/logs", s.authed(s.handleListLogs))
	mux.HandleFunc("POST /api/logs/clear", s.authed(s.handleClearLogs))
	mux.HandleFunc("GET /api/posts", s.authed(s.handleListPosts))
	mux.HandleFunc("POST /api/posts/{id}/approve", s.authed(s.handleApprove))
	mux.HandleFunc("POST /api/run", s.authed(s.handleRun))

	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the fake service base URL.
func (s *ControlService) URL() string { return s.srv.URL }

// AddCandidate seeds a candidate and returns its assigned id.
func (s *ControlService) AddCandidate(c workspace.Candidate) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.Candidates = append(s.Candidates, c)
	return c.ID
}

// AddLog seeds a log event.
func (s *ControlService) AddLog(level, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLogLocked(level, message, nil)
}

func (s *ControlService) appendLogLocked(level, message string, jobID *int64) {
	s.nextLogID++
	s.Logs = append(s.Logs, workspace.LogEvent{
		ID:        s.nextLogID,
		Level:     level,
		Message:   message,
		JobID:     jobID,
		CreatedAt: time.Now().UTC(),
	})
}

func (s *ControlService) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		forced := s.ForceStatus
		s.mu.Unlock()
		if forced != 0 {
			http.Error(w, http.StatusText(forced), forced)
			return
		}
		header := r.Header.Get("Authorization")
		if header != "Bearer "+IssuedToken {
			http.Error(w, `{"detail":"Invalid token"}`, http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *ControlService) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !strings.EqualFold(body.Email, OperatorEmail) || body.Password != OperatorPassword {
		http.Error(w, `{"detail":"Invalid credentials"}`, http.StatusUnauthorized)
		return
	}
	writeJSON(w, map[string]string{"token": IssuedToken})
}

func (s *ControlService) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"id":             1,
		"email":          OperatorEmail,
		"workspace_id":   1,
		"workspace_name": "Default Workspace",
	})
}

func (s *ControlService) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cfg := s.Config
	s.mu.Unlock()
	writeJSON(w, cfg)
}

func (s *ControlService) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var cfg workspace.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.Config = cfg
	s.mu.Unlock()
	writeJSON(w, cfg)
}

func (s *ControlService) handleListSources(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sources := append([]workspace.Source(nil), s.Sources...)
	s.mu.Unlock()
	writeJSON(w, sources)
}

func (s *ControlService) handleAddSource(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Platform string `json:"platform"`
		Handle   string `json:"handle"`
		Enabled  bool   `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	platform, ok := workspace.ParsePlatform(body.Platform)
	if !ok {
		http.Error(w, `{"detail":"unknown platform"}`, http.StatusUnprocessableEntity)
		return
	}

	s.mu.Lock()
	s.nextID++
	source := workspace.Source{
		ID:        s.nextID,
		Platform:  platform,
		Handle:    body.Handle,
		Enabled:   body.Enabled,
		CreatedAt: time.Now().UTC(),
	}
	s.Sources = append(s.Sources, source)
	s.appendLogLocked("success", "Source added: "+body.Platform+"::"+body.Handle, nil)
	s.mu.Unlock()

	writeJSON(w, source)
}

func (s *ControlService) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := workspace.Stats{LastRunAt: s.LastRunAt}
	for _, c := range s.Candidates {
		stats.TotalCandidates++
		switch c.Status {
		case workspace.StatusPublished:
			stats.TotalPublished++
		case workspace.StatusAwaitingApproval:
			stats.PendingApproval++
		}
	}
	s.mu.Unlock()
	writeJSON(w, stats)
}

func (s *ControlService) handleListLogs(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	// Newest first, like the real service.
	logs := make([]workspace.LogEvent, 0, len(s.Logs))
	for i := len(s.Logs) - 1; i >= 0; i-- {
		logs = append(logs, s.Logs[i])
	}
	s.mu.Unlock()
	writeJSON(w, logs)
}

func (s *ControlService) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.Logs = nil
	s.mu.Unlock()
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *ControlService) handleListPosts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	candidates := make([]workspace.Candidate, 0, len(s.Candidates))
	for i := len(s.Candidates) - 1; i >= 0; i-- {
		candidates = append(candidates, s.Candidates[i])
	}
	s.mu.Unlock()
	writeJSON(w, candidates)
}

func (s *ControlService) handleApprove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.Approved = append(s.Approved, id)
	for i := range s.Candidates {
		if s.Candidates[i].ID != id {
			continue
		}
		// Approving a candidate that is not awaiting approval is a no-op,
		// mirroring the real service.
		if s.Candidates[i].Status == workspace.StatusAwaitingApproval {
			s.Candidates[i].Status = workspace.StatusApproved
		}
		writeJSON(w, map[string]bool{"ok": true})
		return
	}
	http.Error(w, `{"detail":"Candidate not found"}`, http.StatusNotFound)
}

func (s *ControlService) handleRun(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AutoPublish bool `json:"auto_publish"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	s.nextJobID++
	jobID := s.nextJobID
	s.RunRequests = append(s.RunRequests, body.AutoPublish)
	now := time.Now().UTC()
	s.LastRunAt = &now
	s.appendLogLocked("info", "Job enqueued: run_pipeline (job_id="+strconv.FormatInt(jobID, 10)+")", &jobID)
	s.mu.Unlock()

	writeJSON(w, map[string]int64{"enqueued_job_id": jobID})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

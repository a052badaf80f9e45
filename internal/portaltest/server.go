// Package portaltest runs an in-process job portal backend for tests. It
// speaks the same REST contract as the real API: a {code,message,data}
// envelope on most endpoints, bare or resource-keyed lists on others, and
// an HTTP-only JWT cookie as the session credential.
package portaltest

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hongminglow/jobportal/internal/models"
	"github.com/hongminglow/jobportal/internal/models/dto"
)

// APIPrefix is where the REST endpoints are mounted.
const APIPrefix = "/api"

// Options configures a Server.
type Options struct {
	// Origins allowed by CORS; empty allows none.
	Origins []string
	Logger  *slog.Logger
}

// Server is a running fake backend.
type Server struct {
	*httptest.Server

	logger    *slog.Logger
	tokens    *TokenManager
	data      *backend
	startedAt time.Time

	mu        sync.Mutex
	overrides map[string]override
	calls     []string
}

type override struct {
	status int
	body   string
}

// New starts a Server and closes it when the test ends.
func New(t testing.TB, opts Options) *Server {
	t.Helper()
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		logger:    logger,
		tokens:    NewTokenManager("portaltest-secret", "portaltest", time.Hour),
		data:      &backend{},
		startedAt: time.Now(),
		overrides: make(map[string]override),
	}

	api := http.NewServeMux()
	s.registerAuth(api)
	s.registerUsers(api)
	s.registerJobs(api)
	s.registerAdmin(api)

	root := http.NewServeMux()
	root.HandleFunc("GET /health", s.handleHealth)
	root.Handle(APIPrefix+"/", http.StripPrefix(APIPrefix, s.intercept(api)))

	s.Server = httptest.NewServer(CORS(opts.Origins, root))
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root a gateway should be pointed at.
func (s *Server) BaseURL() string {
	return s.URL + APIPrefix
}

// Fail makes every "METHOD path" request answer status with message until
// Clear is called. Path is relative to the API root, e.g. "/jobs".
func (s *Server) Fail(method, path string, status int, message string) {
	body, _ := json.Marshal(Envelope{Code: status, Message: message})
	s.Respond(method, path, status, string(body))
}

// Respond makes every "METHOD path" request answer with a raw body.
func (s *Server) Respond(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method+" "+path] = override{status: status, body: body}
}

// Clear removes an override.
func (s *Server) Clear(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, method+" "+path)
}

// Calls lists the API requests received, as "METHOD path".
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// AddUser seeds an approved account.
func (s *Server) AddUser(name, email, password string, role models.Role) models.Identity {
	u, err := s.data.createUser(user{Name: name, Email: email, Role: role, Approved: true}, password)
	if err != nil {
		panic("portaltest: add user: " + err.Error())
	}
	return identityOf(*u)
}

// AddPendingEmployer seeds an employer awaiting approval.
func (s *Server) AddPendingEmployer(name, email, company string) models.Identity {
	u, err := s.data.createUser(user{Name: name, Email: email, Role: models.Employer, Company: company}, "pending-pass")
	if err != nil {
		panic("portaltest: add employer: " + err.Error())
	}
	return identityOf(*u)
}

// AddJob seeds a posting owned by ownerID.
func (s *Server) AddJob(ownerID string, in dto.JobInput) models.Job {
	j := s.data.createJob(job{
		Title:       in.Title,
		Company:     in.Company,
		Location:    in.Location,
		JobType:     in.JobType,
		SalaryRange: in.SalaryRange,
		Description: in.Description,
		CreatedBy:   ownerID,
	})
	return models.Job{ID: j.ID, Title: j.Title, Company: j.Company, Location: j.Location, JobType: j.JobType}
}

// AddApplication seeds an application and returns its id.
func (s *Server) AddApplication(jobID, userID string) string {
	a, err := s.data.apply(jobID, userID)
	if err != nil {
		panic("portaltest: add application: " + err.Error())
	}
	return a.ID
}

// SetApplicationStatus changes an application's status.
func (s *Server) SetApplicationStatus(id, status string) {
	if err := s.data.setApplicationStatus(id, status); err != nil {
		panic("portaltest: set status: " + err.Error())
	}
}

// User returns the stored account.
func (s *Server) User(id string) (models.Identity, bool) {
	u, err := s.data.userByID(id)
	if err != nil {
		return models.Identity{}, false
	}
	return identityOf(*u), true
}

// intercept records calls and serves overrides before the real handlers.
func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.calls = append(s.calls, key)
		ov, ok := s.overrides[key]
		s.mu.Unlock()

		s.logger.Debug("request", slog.String("route", key), slog.String("request_id", r.Header.Get("X-Request-ID")))
		if ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(ov.status)
			_, _ = io.WriteString(w, ov.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, "ok", map[string]string{
		"status": "ok",
		"uptime": time.Since(s.startedAt).Truncate(time.Second).String(),
	})
}

func identityOf(u user) models.Identity {
	return models.Identity{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		Company:    u.Company,
		Skills:     models.StringList(u.Skills),
		Experience: u.Experience,
		Education:  u.Education,
		Resume:     u.Resume,
		Bio:        u.Bio,
		Blocked:    u.Blocked,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

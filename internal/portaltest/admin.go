package portaltest

import (
	"encoding/json"
	"net/http"

	"github.com/hongminglow/jobportal/internal/models"
	"github.com/hongminglow/jobportal/internal/models/dto"
)

func (s *Server) registerAdmin(mux *http.ServeMux) {
	mux.HandleFunc("GET /admin/jobs", s.handleAdminJobs)
	mux.HandleFunc("GET /admin/applications", s.handleAdminApplications)
	mux.HandleFunc("GET /admin/pending-employers", s.handlePendingEmployers)
	mux.HandleFunc("PATCH /admin/employers/{id}/approve", s.handleApproveEmployer)
	mux.HandleFunc("GET /admin/users", s.handleAdminUsers)
	mux.HandleFunc("PATCH /admin/users/{id}/block", s.handleBlockUser)
}

func (s *Server) handleAdminJobs(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, models.Admin); !ok {
		return
	}
	jobs := s.data.listJobs()
	docs := make([]jobDoc, 0, len(jobs))
	for _, j := range jobs {
		owner, _ := s.data.userByID(j.CreatedBy)
		docs = append(docs, toJobDoc(j, owner))
	}
	s.respondJSON(w, http.StatusOK, "ok", docs)
}

// handleAdminApplications answers with a bare array.
func (s *Server) handleAdminApplications(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, models.Admin); !ok {
		return
	}
	apps := s.data.listApplications(nil)
	docs := make([]applicationDoc, 0, len(apps))
	for _, a := range apps {
		doc := applicationDoc{ID: a.ID, Status: a.Status, AppliedAt: a.CreatedAt}
		if j, err := s.data.jobByID(a.JobID); err == nil {
			doc.Job = toJobDoc(j, nil)
		}
		if applicant, err := s.data.userByID(a.UserID); err == nil {
			doc.User = toUserDoc(*applicant)
		}
		docs = append(docs, doc)
	}
	s.write(w, http.StatusOK, docs)
}

func (s *Server) handlePendingEmployers(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, models.Admin); !ok {
		return
	}
	pending := s.data.listUsers(func(u *user) bool { return u.Role == models.Employer && !u.Approved })
	s.respondKeyed(w, "employers", userDocs(pending))
}

func (s *Server) handleApproveEmployer(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, models.Admin); !ok {
		return
	}
	id := r.PathValue("id")
	target, err := s.data.userByID(id)
	if err != nil || target.Role != models.Employer {
		s.respondError(w, http.StatusNotFound, "Employer not found")
		return
	}
	updated, err := s.data.updateUser(id, func(u *user) { u.Approved = true })
	if err != nil {
		s.respondError(w, http.StatusNotFound, "Employer not found")
		return
	}
	s.respondJSON(w, http.StatusOK, "Employer approved", toUserDoc(updated))
}

func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, models.Admin); !ok {
		return
	}
	s.respondKeyed(w, "users", userDocs(s.data.listUsers(nil)))
}

func (s *Server) handleBlockUser(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.authorize(w, r, models.Admin); !ok {
		return
	}
	var req dto.BlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	updated, err := s.data.updateUser(r.PathValue("id"), func(u *user) { u.Blocked = req.IsBlocked })
	if err != nil {
		s.respondError(w, http.StatusNotFound, "User not found")
		return
	}
	s.respondJSON(w, http.StatusOK, "User updated", toUserDoc(updated))
}

func userDocs(users []user) []userDoc {
	docs := make([]userDoc, 0, len(users))
	for _, u := range users {
		docs = append(docs, toUserDoc(u))
	}
	return docs
}

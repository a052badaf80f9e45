package portaltest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hongminglow/jobportal/internal/models"
	"github.com/hongminglow/jobportal/internal/models/dto"
)

func (s *Server) registerJobs(mux *http.ServeMux) {
	mux.HandleFunc("GET /jobs", s.handleListJobs)
	mux.HandleFunc("POST /jobs", s.handleCreateJob)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJob)
	mux.HandleFunc("POST /jobs/{id}/apply", s.handleApply)
	mux.HandleFunc("GET /jobs/{id}/applicants", s.handleApplicants)
}

func (s *Server) registerUsers(mux *http.ServeMux) {
	mux.HandleFunc("PUT /users/profile", s.handleUpdateProfile)
	mux.HandleFunc("GET /users/applied-jobs", s.handleAppliedJobs)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.data.listJobs()
	docs := make([]jobDoc, 0, len(jobs))
	for _, j := range jobs {
		docs = append(docs, toJobDoc(j, nil))
	}
	s.respondKeyed(w, "jobs", docs)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authorize(w, r, models.Employer)
	if !ok {
		return
	}
	var in dto.JobInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Company) == "" || strings.TrimSpace(in.Description) == "" {
		s.respondError(w, http.StatusBadRequest, "title, company and description are required")
		return
	}
	created := s.data.createJob(job{
		Title:       in.Title,
		Company:     in.Company,
		Location:    in.Location,
		JobType:     in.JobType,
		SalaryRange: in.SalaryRange,
		Description: in.Description,
		CreatedBy:   u.ID,
	})
	s.respondJSON(w, http.StatusCreated, "Job created successfully", toJobDoc(created, u))
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	j, err := s.data.jobByID(r.PathValue("id"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, "Job not found")
		return
	}
	owner, _ := s.data.userByID(j.CreatedBy)
	s.respondJSON(w, http.StatusOK, "ok", toJobDoc(j, owner))
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authorize(w, r, models.JobSeeker)
	if !ok {
		return
	}
	a, err := s.data.apply(r.PathValue("id"), u.ID)
	switch {
	case errors.Is(err, errNotFound):
		s.respondError(w, http.StatusNotFound, "Job not found")
		return
	case errors.Is(err, errAlreadyExists):
		s.respondError(w, http.StatusBadRequest, "You have already applied for this job")
		return
	case err != nil:
		s.respondError(w, http.StatusInternalServerError, "failed to apply")
		return
	}
	s.respondJSON(w, http.StatusCreated, "Application submitted", applicationDoc{
		ID:        a.ID,
		Job:       a.JobID,
		User:      a.UserID,
		Status:    a.Status,
		AppliedAt: a.CreatedAt,
	})
}

func (s *Server) handleApplicants(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authorize(w, r, models.Employer)
	if !ok {
		return
	}
	j, err := s.data.jobByID(r.PathValue("id"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, "Job not found")
		return
	}
	if j.CreatedBy != u.ID {
		s.respondError(w, http.StatusForbidden, "Not authorized to view applicants for this job")
		return
	}
	apps := s.data.listApplications(func(a *application) bool { return a.JobID == j.ID })
	docs := make([]applicationDoc, 0, len(apps))
	for _, a := range apps {
		doc := applicationDoc{ID: a.ID, Status: a.Status, AppliedAt: a.CreatedAt}
		if applicant, err := s.data.userByID(a.UserID); err == nil {
			doc.User = toUserDoc(*applicant)
		}
		docs = append(docs, doc)
	}
	s.respondKeyed(w, "applicants", docs)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	var in dto.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	updated, err := s.data.updateUser(u.ID, func(x *user) {
		if name := strings.TrimSpace(in.Name); name != "" {
			x.Name = name
		}
		if email := strings.TrimSpace(in.Email); email != "" {
			x.Email = strings.ToLower(email)
		}
		x.Skills = splitList(in.Skills)
		x.Experience = in.Experience
		x.Education = in.Education
		x.Resume = in.Resume
		x.Bio = in.Bio
	})
	if err != nil {
		s.respondError(w, http.StatusNotFound, "User not found")
		return
	}
	s.respondJSON(w, http.StatusOK, "Profile updated", toUserDoc(updated))
}

func (s *Server) handleAppliedJobs(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	apps := s.data.listApplications(func(a *application) bool { return a.UserID == u.ID })
	docs := make([]applicationDoc, 0, len(apps))
	for _, a := range apps {
		doc := applicationDoc{ID: a.ID, Status: a.Status, AppliedAt: a.CreatedAt}
		if j, err := s.data.jobByID(a.JobID); err == nil {
			doc.Job = toJobDoc(j, nil)
		}
		docs = append(docs, doc)
	}
	s.respondKeyed(w, "appliedJobs", docs)
}

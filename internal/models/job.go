package models

import (
	"bytes"
	"encoding/json"
)

// Job is a posting as listed by /jobs and /admin/jobs.
type Job struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	Location     string     `json:"location,omitempty"`
	JobType      string     `json:"jobType,omitempty"`
	SalaryRange  string     `json:"salaryRange,omitempty"`
	Salary       Text       `json:"salary,omitempty"`
	Description  string     `json:"description,omitempty"`
	Requirements StringList `json:"requirements,omitempty"`
	CreatedBy    *Identity  `json:"createdBy,omitempty"`
	CreatedAt    Timestamp  `json:"createdAt,omitempty"`
}

// UnmarshalJSON accepts "_id"/"id" and a createdBy that is either a
// populated user or a bare reference.
func (j *Job) UnmarshalJSON(data []byte) error {
	type alias Job
	aux := struct {
		MongoID   string          `json:"_id"`
		Type      string          `json:"type"`
		CreatedBy json.RawMessage `json:"createdBy"`
		*alias
	}{alias: (*alias)(j)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	j.ID = pickID(aux.MongoID, j.ID)
	if j.JobType == "" {
		j.JobType = aux.Type
	}
	owner, err := decodeIdentityRef(aux.CreatedBy)
	if err != nil {
		return err
	}
	j.CreatedBy = owner
	return nil
}

// LocationOr returns the location or the placeholder the listings use.
func (j Job) LocationOr() string {
	if j.Location == "" {
		return "Location not specified"
	}
	return j.Location
}

// ApplicationStatus values; anything unrecognised is shown as-is.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// Application joins a job and an applicant. The same shape backs the
// seeker's applied-jobs list, an employer's applicant list and the admin
// listing; each endpoint populates a different subset.
type Application struct {
	ID        string    `json:"id"`
	Job       *Job      `json:"job,omitempty"`
	Applicant *Identity `json:"user,omitempty"`
	Status    string    `json:"status"`
	AppliedAt Timestamp `json:"appliedAt"`
}

// UnmarshalJSON resolves the several shapes the backend emits: job and
// user may be populated objects or bare ids, the applicant may be under
// "user", "applicant" or the record itself, and status may be nested in
// an "application" object.
func (a *Application) UnmarshalJSON(data []byte) error {
	var aux struct {
		MongoID     string          `json:"_id"`
		ID          string          `json:"id"`
		Status      string          `json:"status"`
		AppliedAt   Timestamp       `json:"appliedAt"`
		CreatedAt   Timestamp       `json:"createdAt"`
		Job         json.RawMessage `json:"job"`
		User        json.RawMessage `json:"user"`
		Applicant   json.RawMessage `json:"applicant"`
		Application *struct {
			Status    string    `json:"status"`
			AppliedAt Timestamp `json:"appliedAt"`
		} `json:"application"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	a.ID = pickID(aux.MongoID, aux.ID)

	a.Status = aux.Status
	a.AppliedAt = aux.AppliedAt
	if aux.Application != nil {
		if aux.Application.Status != "" {
			a.Status = aux.Application.Status
		}
		if !aux.Application.AppliedAt.IsZero() {
			a.AppliedAt = aux.Application.AppliedAt
		}
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	if a.AppliedAt.IsZero() {
		a.AppliedAt = aux.CreatedAt
	}

	job, err := decodeJobRef(aux.Job)
	if err != nil {
		return err
	}
	if job == nil {
		// Applied-jobs entries are sometimes the job itself.
		var self Job
		if err := json.Unmarshal(data, &self); err != nil {
			return err
		}
		job = &self
	}
	a.Job = job

	for _, raw := range []json.RawMessage{aux.User, aux.Applicant} {
		applicant, err := decodeIdentityRef(raw)
		if err != nil {
			return err
		}
		if applicant != nil {
			a.Applicant = applicant
			return nil
		}
	}
	var self Identity
	if err := json.Unmarshal(data, &self); err != nil {
		return err
	}
	if self.Name != "" || self.Email != "" {
		a.Applicant = &self
	}
	return nil
}

func isRef(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func decodeIdentityRef(raw json.RawMessage) (*Identity, error) {
	switch {
	case isRef(raw):
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return nil, err
		}
		return &Identity{ID: id}, nil
	case isObject(raw):
		var ident Identity
		if err := json.Unmarshal(raw, &ident); err != nil {
			return nil, err
		}
		return &ident, nil
	}
	return nil, nil
}

func decodeJobRef(raw json.RawMessage) (*Job, error) {
	switch {
	case isRef(raw):
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return nil, err
		}
		return &Job{ID: id}, nil
	case isObject(raw):
		var job Job
		if err := json.Unmarshal(raw, &job); err != nil {
			return nil, err
		}
		return &job, nil
	}
	return nil, nil
}

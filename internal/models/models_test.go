package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/jobportal/internal/models"
)

func TestRoleValid(t *testing.T) {
	for _, r := range []models.Role{models.JobSeeker, models.Employer, models.Admin} {
		assert.True(t, r.Valid(), r)
	}
	assert.False(t, models.Role("Admin").Valid(), "roles are case-sensitive")
	assert.False(t, models.Role("").Valid())
	assert.NotContains(t, models.RegisterableRoles, models.Admin)
}

func TestIdentityAcceptsBothIDKeys(t *testing.T) {
	var a, b models.Identity
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"m1","role":"admin"}`), &a))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"p1","role":"employer","isBlocked":true}`), &b))

	assert.Equal(t, "m1", a.ID)
	assert.Equal(t, models.Admin, a.Role)
	assert.Equal(t, "p1", b.ID)
	assert.True(t, b.Blocked)
}

func TestIdentitySkillsShapes(t *testing.T) {
	var list, single, empty models.Identity
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","skills":["go","sql"]}`), &list))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"2","skills":"go, sql"}`), &single))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"3","skills":""}`), &empty))

	assert.Equal(t, models.StringList{"go", "sql"}, list.Skills)
	assert.Equal(t, "go, sql", list.Skills.String())
	assert.Equal(t, "go, sql", single.Skills.String())
	assert.Empty(t, empty.Skills)
}

func TestIdentityHelpers(t *testing.T) {
	assert.True(t, models.Identity{}.Empty())
	assert.False(t, models.Identity{Email: "a@x.com"}.Empty())
	assert.Equal(t, "User", models.Identity{}.DisplayName())
	assert.Equal(t, "U", models.Identity{}.Initial())
	assert.Equal(t, "É", models.Identity{Name: "élodie"}.Initial())
}

func TestJobDecoding(t *testing.T) {
	var populated, ref models.Job
	require.NoError(t, json.Unmarshal([]byte(`{
		"_id":"j1","title":"Go","company":"Acme","type":"Contract","salary":65000,
		"requirements":"Go experience","createdAt":"2024-03-01T10:00:00.000Z",
		"createdBy":{"_id":"u1","name":"Emma","role":"employer"}}`), &populated))
	require.NoError(t, json.Unmarshal([]byte(`{"id":"j2","jobType":"Full-time","salary":"50k-80k","createdBy":"u2"}`), &ref))

	assert.Equal(t, "j1", populated.ID)
	assert.Equal(t, "Contract", populated.JobType)
	assert.Equal(t, models.Text("65000"), populated.Salary)
	assert.Equal(t, models.StringList{"Go experience"}, populated.Requirements)
	assert.Equal(t, "2024-03-01", populated.CreatedAt.DateOr("-"))
	require.NotNil(t, populated.CreatedBy)
	assert.Equal(t, "Emma", populated.CreatedBy.Name)
	assert.Equal(t, "Location not specified", populated.LocationOr())

	assert.Equal(t, "Full-time", ref.JobType)
	assert.Equal(t, models.Text("50k-80k"), ref.Salary)
	require.NotNil(t, ref.CreatedBy)
	assert.Equal(t, models.Identity{ID: "u2"}, *ref.CreatedBy)
	assert.Equal(t, "-", ref.CreatedAt.DateOr("-"))
}

func TestTimestampToleratesBadValues(t *testing.T) {
	var v struct {
		A models.Timestamp `json:"a"`
		B models.Timestamp `json:"b"`
		C models.Timestamp `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"2024-01-02","b":"yesterday","c":42}`), &v))
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), v.A.Time)
	assert.True(t, v.B.IsZero())
	assert.True(t, v.C.IsZero())

	out, err := json.Marshal(v.B)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestApplicationShapes(t *testing.T) {
	cases := []struct {
		name      string
		body      string
		id        string
		status    string
		jobTitle  string
		applicant string
	}{
		{
			name:      "populated job and user",
			body:      `{"_id":"a1","status":"accepted","job":{"_id":"j1","title":"Go"},"user":{"_id":"u1","name":"Ada"}}`,
			id:        "a1",
			status:    models.StatusAccepted,
			jobTitle:  "Go",
			applicant: "Ada",
		},
		{
			name:      "applicant key and nested status",
			body:      `{"id":"a2","job":"j9","applicant":{"name":"Bob"},"application":{"status":"rejected"}}`,
			id:        "a2",
			status:    models.StatusRejected,
			applicant: "Bob",
		},
		{
			name:      "applicant is the record itself",
			body:      `{"_id":"a3","name":"Cy","email":"cy@x.com","job":{"title":"Rust"}}`,
			id:        "a3",
			status:    models.StatusPending,
			jobTitle:  "Rust",
			applicant: "Cy",
		},
		{
			name:     "applied-jobs entry is the job",
			body:     `{"_id":"j4","title":"Ops","company":"Acme"}`,
			id:       "j4",
			status:   models.StatusPending,
			jobTitle: "Ops",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var app models.Application
			require.NoError(t, json.Unmarshal([]byte(tc.body), &app))
			assert.Equal(t, tc.id, app.ID)
			assert.Equal(t, tc.status, app.Status)
			require.NotNil(t, app.Job)
			assert.Equal(t, tc.jobTitle, app.Job.Title)
			if tc.applicant == "" {
				assert.Nil(t, app.Applicant)
				return
			}
			require.NotNil(t, app.Applicant)
			assert.Equal(t, tc.applicant, app.Applicant.Name)
		})
	}
}

func TestApplicationFallsBackToCreatedAt(t *testing.T) {
	var app models.Application
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"a1","job":"j1","createdAt":"2024-05-06T00:00:00Z"}`), &app))
	assert.Equal(t, "2024-05-06", app.AppliedAt.DateOr(""))
	assert.Equal(t, "j1", app.Job.ID)
}

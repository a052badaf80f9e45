package portaltest

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/jobportal/internal/models"
)

var (
	errAlreadyExists = errors.New("record already exists")
	errNotFound      = errors.New("record not found")
)

type user struct {
	ID           string
	Name         string
	Email        string
	Role         models.Role
	Company      string
	Skills       []string
	Experience   string
	Education    string
	Resume       string
	Bio          string
	Blocked      bool
	Approved     bool
	PasswordHash string
	CreatedAt    time.Time
}

type job struct {
	ID          string
	Title       string
	Company     string
	Location    string
	JobType     string
	SalaryRange string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
}

type application struct {
	ID        string
	JobID     string
	UserID    string
	Status    string
	CreatedAt time.Time
}

// backend is the fake's data: users, jobs and applications in memory.
type backend struct {
	mu           sync.Mutex
	users        []*user
	jobs         []*job
	applications []*application
}

func (b *backend) createUser(u user, password string) (*user, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	email := strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range b.users {
		if existing.Email == email {
			return nil, errAlreadyExists
		}
	}
	u.ID = uuid.NewString()
	u.Email = email
	u.PasswordHash = hash
	u.Approved = u.Role != models.Employer || u.Approved
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	b.users = append(b.users, &u)
	return &u, nil
}

func (b *backend) userByEmail(email string) (*user, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range b.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, errNotFound
}

// userByID returns a copy of the stored user.
func (b *backend) userByID(id string) (*user, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, err := b.userByIDLocked(id)
	if err != nil {
		return nil, err
	}
	c := *u
	return &c, nil
}

func (b *backend) userByIDLocked(id string) (*user, error) {
	for _, u := range b.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errNotFound
}

// updateUser applies fn to the user under the lock and returns a copy.
func (b *backend) updateUser(id string, fn func(*user)) (user, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, err := b.userByIDLocked(id)
	if err != nil {
		return user{}, err
	}
	fn(u)
	return *u, nil
}

func (b *backend) listUsers(keep func(*user) bool) []user {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]user, 0, len(b.users))
	for _, u := range b.users {
		if keep == nil || keep(u) {
			out = append(out, *u)
		}
	}
	return out
}

func (b *backend) createJob(j job) job {
	b.mu.Lock()
	defer b.mu.Unlock()
	j.ID = uuid.NewString()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now().UTC()
	}
	b.jobs = append(b.jobs, &j)
	return j
}

func (b *backend) jobByID(id string) (job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, j := range b.jobs {
		if j.ID == id {
			return *j, nil
		}
	}
	return job{}, errNotFound
}

func (b *backend) listJobs() []job {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]job, 0, len(b.jobs))
	for i := len(b.jobs) - 1; i >= 0; i-- {
		out = append(out, *b.jobs[i])
	}
	return out
}

func (b *backend) apply(jobID, userID string) (application, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	found := false
	for _, j := range b.jobs {
		if j.ID == jobID {
			found = true
			break
		}
	}
	if !found {
		return application{}, errNotFound
	}
	for _, a := range b.applications {
		if a.JobID == jobID && a.UserID == userID {
			return application{}, errAlreadyExists
		}
	}
	a := &application{
		ID:        uuid.NewString(),
		JobID:     jobID,
		UserID:    userID,
		Status:    models.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	b.applications = append(b.applications, a)
	return *a, nil
}

func (b *backend) listApplications(keep func(*application) bool) []application {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]application, 0, len(b.applications))
	for _, a := range b.applications {
		if keep == nil || keep(a) {
			out = append(out, *a)
		}
	}
	return out
}

func (b *backend) setApplicationStatus(id, status string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.applications {
		if a.ID == id {
			a.Status = status
			return nil
		}
	}
	return errNotFound
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

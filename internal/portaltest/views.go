package portaltest

import "time"

// Documents mirror what a Mongo-backed API returns: "_id" keys, populated
// references in some listings and bare ids in others.

type userDoc struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Company    string    `json:"company,omitempty"`
	Skills     []string  `json:"skills,omitempty"`
	Experience string    `json:"experience,omitempty"`
	Education  string    `json:"education,omitempty"`
	Resume     string    `json:"resume,omitempty"`
	Bio        string    `json:"bio,omitempty"`
	IsBlocked  bool      `json:"isBlocked"`
	IsApproved bool      `json:"isApproved"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toUserDoc(u user) userDoc {
	return userDoc{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       string(u.Role),
		Company:    u.Company,
		Skills:     u.Skills,
		Experience: u.Experience,
		Education:  u.Education,
		Resume:     u.Resume,
		Bio:        u.Bio,
		IsBlocked:  u.Blocked,
		IsApproved: u.Approved,
		CreatedAt:  u.CreatedAt,
	}
}

type jobDoc struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	JobType     string    `json:"jobType"`
	SalaryRange string    `json:"salaryRange"`
	Description string    `json:"description"`
	CreatedBy   any       `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// toJobDoc populates createdBy when owner is known, else leaves the id.
func toJobDoc(j job, owner *user) jobDoc {
	doc := jobDoc{
		ID:          j.ID,
		Title:       j.Title,
		Company:     j.Company,
		Location:    j.Location,
		JobType:     j.JobType,
		SalaryRange: j.SalaryRange,
		Description: j.Description,
		CreatedBy:   j.CreatedBy,
		CreatedAt:   j.CreatedAt,
	}
	if owner != nil {
		doc.CreatedBy = toUserDoc(*owner)
	}
	return doc
}

type applicationDoc struct {
	ID        string    `json:"_id"`
	Job       any       `json:"job,omitempty"`
	User      any       `json:"user,omitempty"`
	Status    string    `json:"status"`
	AppliedAt time.Time `json:"appliedAt"`
}

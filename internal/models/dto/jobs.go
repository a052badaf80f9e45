package dto

// JobTypes are the options offered by the job posting form.
var JobTypes = []string{"Full-time", "Part-time", "Contract", "Internship", "Freelance"}

// JobInput is the body of POST /jobs.
type JobInput struct {
	Title       string `json:"title" validate:"required"`
	Company     string `json:"company" validate:"required"`
	Location    string `json:"location" validate:"required"`
	JobType     string `json:"jobType" validate:"required,oneof=Full-time Part-time Contract Internship Freelance"`
	SalaryRange string `json:"salaryRange" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// BlockRequest is the body of PATCH /admin/users/{id}/block.
type BlockRequest struct {
	IsBlocked bool `json:"isBlocked"`
}

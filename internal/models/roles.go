package models

// Role is the account type the backend assigns at registration.
type Role string

const (
	JobSeeker Role = "jobseeker"
	Employer  Role = "employer"
	Admin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case JobSeeker, Employer, Admin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// RegisterableRoles lists the roles a visitor may pick when signing up.
// Admin accounts are provisioned out of band.
var RegisterableRoles = []Role{JobSeeker, Employer}

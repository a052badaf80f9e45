package portal

import (
	"github.com/hongminglow/jobportal/internal/models"
	"github.com/hongminglow/jobportal/internal/session"
)

// NavItem is one navigation link.
type NavItem struct {
	Label string
	Path  string
}

// Nav returns the links for the current session. The bar is hidden on
// the login and register screens. While the session settles the mirrored
// identity picks the links so the bar does not flash empty.
func Nav(snap session.Snapshot, current string) []NavItem {
	if current == PathLogin || current == PathRegister {
		return nil
	}
	ident := snap.Identity
	if ident == nil && snap.Settling {
		ident = snap.Mirrored
	}
	if ident == nil {
		return []NavItem{{"Login", PathLogin}, {"Sign Up", PathRegister}}
	}
	switch ident.Role {
	case models.JobSeeker:
		return []NavItem{{"Browse Jobs", PathJobs}, {"Applied Jobs", PathAppliedJobs}, {"Profile", PathProfile}}
	case models.Employer:
		return []NavItem{{"My Jobs", PathMyJobs}, {"Post Job", PathCreateJob}, {"Profile", PathProfile}}
	case models.Admin:
		return []NavItem{{"Admin Dashboard", PathAdmin}}
	default:
		return []NavItem{{"Profile", PathProfile}}
	}
}

// Greeting is the name shown beside the links, empty when signed out.
func Greeting(snap session.Snapshot) string {
	ident := snap.Identity
	if ident == nil && snap.Settling {
		ident = snap.Mirrored
	}
	if ident == nil {
		return ""
	}
	return ident.DisplayName()
}

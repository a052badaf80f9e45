package portal

import (
	"github.com/hongminglow/jobportal/internal/models"
	"github.com/hongminglow/jobportal/internal/session"
)

// Highlight is one feature card on the landing page.
type Highlight struct {
	Title string
	Text  string
}

// HomePage is the landing page for the current session.
type HomePage struct {
	Pending    bool
	Actions    []NavItem
	Highlights []Highlight
}

// Home builds the landing page. Visitors are offered sign up and sign in;
// signed-in users get quick actions and feature cards for their role.
func Home(snap session.Snapshot) HomePage {
	if snap.Settling {
		return HomePage{Pending: true}
	}
	ident := snap.Identity
	if ident == nil {
		return HomePage{Actions: []NavItem{{"Get Started", PathRegister}, {"Sign In", PathLogin}}}
	}

	switch ident.Role {
	case models.JobSeeker:
		return HomePage{
			Actions: []NavItem{{"Browse Jobs", PathJobs}, {"View Applications", PathAppliedJobs}},
			Highlights: []Highlight{
				{"Find Jobs", "Discover opportunities that match your skills and interests."},
				{"Build Profile", "Showcase your skills and experience to employers."},
				{"Stay Connected", "Track your applications and get updates in real-time."},
			},
		}
	case models.Admin:
		return HomePage{
			Actions:    []NavItem{{"Admin Dashboard", PathAdmin}, {"Manage Profile", PathProfile}},
			Highlights: hiringHighlights,
		}
	default:
		return HomePage{
			Actions:    []NavItem{{"Post a Job", PathCreateJob}, {"Manage Profile", PathProfile}},
			Highlights: hiringHighlights,
		}
	}
}

var hiringHighlights = []Highlight{
	{"Post Jobs", "Reach qualified candidates and grow your team."},
	{"Build Profile", "Create a compelling company profile to attract talent."},
	{"Stay Connected", "Manage applications and communicate with candidates."},
}

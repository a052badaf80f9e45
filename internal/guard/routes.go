package guard

import (
	"strings"

	"github.com/hongminglow/jobportal/internal/models"
)

// Route binds a path pattern to its requirement. A "{name}" segment
// matches any single non-empty segment.
type Route struct {
	Pattern     string
	Requirement Requirement
}

// Routes lists every view of the portal. Paths not listed are Public.
var Routes = []Route{
	{"/", Public},
	{"/login", Public},
	{"/register", Public},
	{"/jobs", Public},
	{"/applied-jobs", AnyAuthenticated},
	{"/profile", AnyAuthenticated},
	{"/jobs/my-jobs", RoleEqualTo(models.Employer)},
	{"/jobs/create", RoleEqualTo(models.Employer)},
	{"/jobs/{id}/applicants", RoleEqualTo(models.Employer)},
	{"/admin", RoleEqualTo(models.Admin)},
	{"/admin/jobs", RoleEqualTo(models.Admin)},
	{"/admin/applications", RoleEqualTo(models.Admin)},
	{"/admin/pending-employers", RoleEqualTo(models.Admin)},
	{"/admin/users", RoleEqualTo(models.Admin)},
}

// ApplyAction guards applying to a job from the public listing.
var ApplyAction = AnyAuthenticated

// RequirementFor returns the requirement of the first matching route.
// Literal patterns are listed before patterns with parameters, so
// "/jobs/my-jobs" wins over any "/jobs/{id}" form.
func RequirementFor(path string) Requirement {
	path = normalize(path)
	for _, r := range Routes {
		if match(r.Pattern, path) {
			return r.Requirement
		}
	}
	return Public
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = "/" + strings.Trim(path, "/")
	return path
}

func match(pattern, path string) bool {
	if pattern == path {
		return true
	}
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return false
	}
	for i, p := range ps {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if p != xs[i] {
			return false
		}
	}
	return true
}

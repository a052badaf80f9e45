// Package guard decides whether a view may render for the current session.
package guard

import (
	"context"
	"fmt"
	"sync"

	"github.com/hongminglow/jobportal/internal/models"
	"github.com/hongminglow/jobportal/internal/session"
)

// Redirect targets.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Kind selects a Requirement variant.
type Kind int

const (
	KindPublic Kind = iota
	KindAnyAuthenticated
	KindRole
)

// Requirement is what a view demands of the session.
type Requirement struct {
	Kind Kind
	Role models.Role // only for KindRole
}

var (
	// Public views render for everyone.
	Public = Requirement{Kind: KindPublic}
	// AnyAuthenticated views need a signed-in identity of any role.
	AnyAuthenticated = Requirement{Kind: KindAnyAuthenticated}
)

// RoleEqualTo requires an identity whose role is exactly r. There is no
// hierarchy: admin does not satisfy an employer requirement.
func RoleEqualTo(r models.Role) Requirement {
	return Requirement{Kind: KindRole, Role: r}
}

func (r Requirement) String() string {
	switch r.Kind {
	case KindPublic:
		return "public"
	case KindAnyAuthenticated:
		return "authenticated"
	case KindRole:
		return "role:" + r.Role.String()
	default:
		return fmt.Sprintf("requirement(%d)", int(r.Kind))
	}
}

// Outcome selects a Decision variant.
type Outcome int

const (
	Pending Outcome = iota
	Allow
	Redirect
)

// Reason explains a redirect.
type Reason string

const (
	Unauthenticated Reason = "unauthenticated"
	Unauthorized    Reason = "unauthorized"
)

// Decision is the result of one evaluation. It is never stored.
type Decision struct {
	Outcome Outcome
	Path    string // redirect target
	Reason  Reason
}

// RedirectTo builds a redirect decision.
func RedirectTo(path string, reason Reason) Decision {
	return Decision{Outcome: Redirect, Path: path, Reason: reason}
}

var (
	pending = Decision{Outcome: Pending}
	allow   = Decision{Outcome: Allow}
)

// Allowed reports an Allow decision.
func (d Decision) Allowed() bool { return d.Outcome == Allow }

// Pending reports that the session has not settled yet.
func (d Decision) Pending() bool { return d.Outcome == Pending }

func (d Decision) String() string {
	switch d.Outcome {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	default:
		return fmt.Sprintf("redirect %s (%s)", d.Path, d.Reason)
	}
}

// Evaluate maps a requirement and a session snapshot to a decision. While
// the session is settling every requirement is Pending, so nothing
// redirects before the first restore completes. The blocked flag is not
// consulted.
func Evaluate(req Requirement, snap session.Snapshot) Decision {
	if snap.Settling {
		return pending
	}
	switch req.Kind {
	case KindPublic:
		return allow
	case KindAnyAuthenticated:
		if snap.Identity == nil {
			return RedirectTo(LoginPath, Unauthenticated)
		}
		return allow
	case KindRole:
		if snap.Identity == nil {
			return RedirectTo(LoginPath, Unauthenticated)
		}
		if snap.Identity.Role != req.Role {
			return RedirectTo(HomePath, Unauthorized)
		}
		return allow
	default:
		return RedirectTo(HomePath, Unauthorized)
	}
}

// Source is what Watch and Await observe.
type Source interface {
	Snapshot() session.Snapshot
	Subscribe(fn func(session.Snapshot)) func()
}

// Watch calls fn with the current decision and again whenever a session
// change alters it. The returned func stops watching.
func Watch(src Source, req Requirement, fn func(Decision)) func() {
	var (
		mu   sync.Mutex
		last *Decision
	)
	emit := func(snap session.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		d := Evaluate(req, snap)
		if last != nil && *last == d {
			return
		}
		last = &d
		fn(d)
	}
	stop := src.Subscribe(emit)
	emit(src.Snapshot())
	return stop
}

// Await blocks until the decision for req is no longer Pending.
func Await(ctx context.Context, src Source, req Requirement) (Decision, error) {
	ch := make(chan Decision, 1)
	stop := src.Subscribe(func(snap session.Snapshot) {
		if d := Evaluate(req, snap); !d.Pending() {
			select {
			case ch <- d:
			default:
			}
		}
	})
	defer stop()

	if d := Evaluate(req, src.Snapshot()); !d.Pending() {
		return d, nil
	}
	select {
	case d := <-ch:
		return d, nil
	case <-ctx.Done():
		return pending, ctx.Err()
	}
}

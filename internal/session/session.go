// Package session owns the answer to "who is logged in". A Store holds the
// current identity and the settling flag, mirrors the identity to local
// storage for display, and is the only thing allowed to change either.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/hongminglow/jobportal/internal/gateway"
	"github.com/hongminglow/jobportal/internal/models"
	"github.com/hongminglow/jobportal/internal/models/dto"
	"github.com/hongminglow/jobportal/internal/storage"
)

var (
	// ErrAuthFailed is the single failure callers see from Restore, Login
	// and Refresh. Expired and never-signed-in are not told apart.
	ErrAuthFailed = errors.New("authentication failed")
	// ErrRoleChanged rejects an identity whose role differs from the
	// signed-in one.
	ErrRoleChanged = errors.New("role cannot change within a session")
	// ErrSignedOut rejects a local update with no signed-in identity.
	ErrSignedOut = errors.New("not signed in")
	// ErrNoIdentity rejects an empty update.
	ErrNoIdentity = errors.New("identity is required")
	// ErrSuperseded drops a result whose request was overtaken by a later
	// login or logout.
	ErrSuperseded = errors.New("session changed while the request was in flight")
)

const (
	mePath     = "/auth/me"
	loginPath  = "/auth/login"
	logoutPath = "/auth/logout"
)

// Gateway is the part of the backend client the store needs.
type Gateway interface {
	Get(ctx context.Context, path string) (*gateway.Response, error)
	Post(ctx context.Context, path string, body any) (*gateway.Response, error)
}

// credentialForgetter is implemented by gateways that can drop the
// session cookie.
type credentialForgetter interface {
	ForgetCredentials() error
}

// Options configures a Store.
type Options struct {
	Logger *slog.Logger
	// RemoteLogout calls POST /auth/logout before clearing local state.
	RemoteLogout bool
}

// Snapshot is a read-only view of the session.
type Snapshot struct {
	Identity *models.Identity
	Settling bool
	// Mirrored is the locally stored copy, for display only.
	Mirrored *models.Identity
}

// Authenticated reports whether an identity is present.
func (s Snapshot) Authenticated() bool {
	return s.Identity != nil
}

// Role returns the identity's role, or "" when signed out.
func (s Snapshot) Role() models.Role {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}

// Store is safe for concurrent use. Identity changes are committed one at a
// time together with their mirror write, and a change based on a request
// that a later change overtook is dropped. Listeners are called after the
// state lock is released, in registration order.
type Store struct {
	gw           Gateway
	mirror       storage.Mirror
	logger       *slog.Logger
	remoteLogout bool

	commitMu sync.Mutex

	mu        sync.RWMutex
	gen       uint64
	identity  *models.Identity
	mirrored  *models.Identity
	settling  bool
	restoring bool
	settled   chan struct{}
	listeners []listener
	nextID    int
}

type listener struct {
	id int
	fn func(Snapshot)
}

// New returns a Store that is settling until Restore completes. A nil
// mirror keeps the copy in memory.
func New(gw Gateway, mirror storage.Mirror, opts Options) *Store {
	if mirror == nil {
		mirror = storage.NewMemory()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		gw:           gw,
		mirror:       mirror,
		logger:       logger,
		remoteLogout: opts.RemoteLogout,
		settling:     true,
		settled:      make(chan struct{}),
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Settled is closed once the first Restore completes.
func (s *Store) Settled() <-chan struct{} {
	return s.settled
}

// Subscribe registers fn for every state change and returns a func that
// removes it.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listeners = slices.DeleteFunc(s.listeners, func(l listener) bool { return l.id == id })
	}
}

// WarmStart loads the mirrored identity so a name can be shown before
// Restore settles. It never affects authorization.
func (s *Store) WarmStart(ctx context.Context) {
	ident, err := s.mirror.Load(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("mirror load failed", slog.String("error", err.Error()))
		}
		return
	}
	s.apply(func() {
		if s.identity == nil {
			s.mirrored = clone(&ident)
		}
	})
}

// Restore asks the backend who the session belongs to. It runs once per
// Store; later calls return the current snapshot. Failure of any kind
// means signed out and is not reported as an error.
func (s *Store) Restore(ctx context.Context) Snapshot {
	s.mu.Lock()
	if s.restoring || !s.settling {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap
	}
	s.restoring = true
	gen := s.gen
	s.mu.Unlock()

	var found *models.Identity
	ident, err := s.fetchIdentity(ctx)
	if err != nil {
		s.logger.Info("session restore: signed out", slog.String("error", err.Error()))
	} else {
		found = &ident
	}

	snap, err := s.commit(ctx, change{gen: gen, identity: found, settle: true})
	if err != nil {
		s.logger.Info("session restore result dropped", slog.String("error", err.Error()))
	}
	return snap
}

// Login posts credentials and adopts the returned identity. On failure the
// session is unchanged and the error wraps ErrAuthFailed and the gateway
// error.
func (s *Store) Login(ctx context.Context, creds dto.Credentials) (models.Identity, error) {
	resp, err := s.gw.Post(ctx, loginPath, creds)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	var ident models.Identity
	ok, err := resp.Object(&ident, gateway.DataUserPath, gateway.UserPath, gateway.DataPath, gateway.Root)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	if !ok || ident.Empty() {
		return models.Identity{}, fmt.Errorf("%w: login response carried no identity", ErrAuthFailed)
	}

	if _, err := s.commit(ctx, change{gen: anyGen, identity: &ident}); err != nil {
		return models.Identity{}, err
	}
	s.logger.Info("signed in", slog.String("user_id", ident.ID), slog.String("role", ident.Role.String()))
	return ident, nil
}

// Logout always leaves the session empty. Remote failures are logged.
func (s *Store) Logout(ctx context.Context) {
	if s.remoteLogout {
		if _, err := s.gw.Post(ctx, logoutPath, nil); err != nil {
			s.logger.Warn("remote logout failed", slog.String("error", err.Error()))
		}
	}
	if f, ok := s.gw.(credentialForgetter); ok {
		if err := f.ForgetCredentials(); err != nil {
			s.logger.Warn("forget credentials failed", slog.String("error", err.Error()))
		}
	}
	_, _ = s.commit(ctx, change{gen: anyGen})
}

// UpdateIdentity replaces the signed-in identity after the backend has
// confirmed an edit.
func (s *Store) UpdateIdentity(ctx context.Context, ident *models.Identity) error {
	if ident == nil || ident.Empty() {
		return ErrNoIdentity
	}
	roleCheck := sameRole(ident.Role, true)
	_, err := s.commit(ctx, change{gen: anyGen, identity: ident, check: func(current *models.Identity) error {
		if err := roleCheck(current); err != nil {
			return err
		}
		if ident.ID != "" && current.ID != "" && ident.ID != current.ID {
			return fmt.Errorf("%w: update for %s while %s is signed in", ErrSuperseded, ident.ID, current.ID)
		}
		return nil
	}})
	return err
}

// Refresh re-reads the identity. Unlike Restore, a failure leaves the
// current identity in place.
func (s *Store) Refresh(ctx context.Context) (models.Identity, error) {
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	ident, err := s.fetchIdentity(ctx)
	if err != nil {
		return models.Identity{}, err
	}
	if _, err := s.commit(ctx, change{gen: gen, identity: &ident, check: sameRole(ident.Role, false)}); err != nil {
		return models.Identity{}, err
	}
	return ident, nil
}

func (s *Store) fetchIdentity(ctx context.Context) (models.Identity, error) {
	resp, err := s.gw.Get(ctx, mePath)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	var ident models.Identity
	ok, err := resp.Object(&ident, gateway.DataPath, gateway.Root)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	if !ok || ident.Empty() {
		return models.Identity{}, fmt.Errorf("%w: empty identity", ErrAuthFailed)
	}
	return ident, nil
}

// anyGen marks a change that does not depend on an earlier read.
const anyGen = ^uint64(0)

// change is one identity transition. A nil identity signs out.
type change struct {
	// gen is the generation the change was based on, or anyGen.
	gen      uint64
	identity *models.Identity
	// check vets the change against the current identity under the lock.
	check func(current *models.Identity) error
	// settle ends the settling phase whether or not the change applies.
	settle bool
}

// sameRole rejects an identity whose role differs from the signed-in one.
func sameRole(role models.Role, requireSignedIn bool) func(*models.Identity) error {
	return func(current *models.Identity) error {
		if current == nil {
			if requireSignedIn {
				return ErrSignedOut
			}
			return nil
		}
		if current.Role != role {
			return fmt.Errorf("%w: %s to %s", ErrRoleChanged, current.Role, role)
		}
		return nil
	}
}

// commit applies c unless another change landed since c.gen or c.check
// refuses it. The mirror write happens before the next commit can start;
// listeners run after both locks are released.
func (s *Store) commit(ctx context.Context, c change) (Snapshot, error) {
	s.commitMu.Lock()
	var err error
	snap, fns := s.update(func() bool {
		switch {
		case c.gen != anyGen && c.gen != s.gen:
			err = ErrSuperseded
		case c.check != nil:
			err = c.check(s.identity)
		}
		if err == nil {
			s.identity = clone(c.identity)
			s.mirrored = clone(c.identity)
			s.gen++
		}
		if c.settle {
			s.settling = false
			close(s.settled)
		}
		return err == nil || c.settle
	})
	if err == nil {
		if c.identity == nil {
			s.clearMirror(ctx)
		} else {
			s.saveMirror(ctx, *c.identity)
		}
	}
	s.commitMu.Unlock()

	notify(fns, snap)
	return snap, err
}

// apply mutates state under the lock, then notifies listeners.
func (s *Store) apply(mutate func()) Snapshot {
	snap, fns := s.update(func() bool {
		mutate()
		return true
	})
	notify(fns, snap)
	return snap
}

// update runs mutate under the lock and returns the listeners to call,
// none when mutate reports no change.
func (s *Store) update(mutate func() bool) (Snapshot, []func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := mutate()
	snap := s.snapshotLocked()
	if !changed {
		return snap, nil
	}
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, l := range s.listeners {
		fns = append(fns, l.fn)
	}
	return snap, fns
}

func notify(fns []func(Snapshot), snap Snapshot) {
	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Identity: clone(s.identity),
		Settling: s.settling,
		Mirrored: clone(s.mirrored),
	}
}

func (s *Store) saveMirror(ctx context.Context, ident models.Identity) {
	if err := s.mirror.Save(ctx, ident); err != nil {
		s.logger.Warn("mirror save failed", slog.String("error", err.Error()))
	}
}

func (s *Store) clearMirror(ctx context.Context) {
	if err := s.mirror.Clear(ctx); err != nil {
		s.logger.Warn("mirror clear failed", slog.String("error", err.Error()))
	}
}

func clone(ident *models.Identity) *models.Identity {
	if ident == nil {
		return nil
	}
	c := *ident
	c.Skills = slices.Clone(ident.Skills)
	return &c
}

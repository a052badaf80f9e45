package portaltest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hongminglow/jobportal/internal/models"
	"github.com/hongminglow/jobportal/internal/models/dto"
)

func (s *Server) registerAuth(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("GET /auth/me", s.handleMe)
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || len(req.Password) < 6 {
		s.respondError(w, http.StatusBadRequest, "name, email and a password of at least 6 characters are required")
		return
	}
	if req.Role != models.JobSeeker && req.Role != models.Employer {
		s.respondError(w, http.StatusBadRequest, "invalid role")
		return
	}

	created, err := s.data.createUser(user{
		Name:  strings.TrimSpace(req.Name),
		Email: req.Email,
		Role:  req.Role,
	}, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, errAlreadyExists):
			s.respondError(w, http.StatusBadRequest, "User already exists")
		default:
			s.logger.Error("create user failed", slog.String("error", err.Error()))
			s.respondError(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}
	s.respondJSON(w, http.StatusCreated, "User registered successfully", toUserDoc(*created))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	u, err := s.data.userByEmail(req.Email)
	if err != nil || !checkPassword(u.PasswordHash, req.Password) {
		s.respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if u.Blocked {
		s.respondError(w, http.StatusForbidden, "Your account has been blocked")
		return
	}
	token, err := s.tokens.Generate(u)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.tokens.ttl.Seconds()),
	})
	s.respondJSON(w, http.StatusOK, "Login successful", map[string]any{"user": toUserDoc(*u)})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, "ok", toUserDoc(*u))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", HttpOnly: true, MaxAge: -1})
	s.respondJSON(w, http.StatusOK, "Logged out", nil)
}

// authenticate resolves the session cookie or writes a 401.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (*user, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		s.respondError(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	id, err := s.tokens.Parse(cookie.Value)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "Invalid or expired session")
		return nil, false
	}
	u, err := s.data.userByID(id)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	return u, true
}

// authorize additionally requires one of roles.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request, roles ...models.Role) (*user, bool) {
	u, ok := s.authenticate(w, r)
	if !ok {
		return nil, false
	}
	for _, role := range roles {
		if u.Role == role {
			return u, true
		}
	}
	s.respondError(w, http.StatusForbidden, "Access denied")
	return nil, false
}

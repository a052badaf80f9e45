package dto

import (
	"strings"

	"github.com/hongminglow/jobportal/internal/models"
)

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string      `json:"name" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     models.Role `json:"role" validate:"required,oneof=jobseeker employer"`
}

// ProfileUpdate is the body of PUT /users/profile.
type ProfileUpdate struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
	Education  string `json:"education"`
	Resume     string `json:"resume" validate:"omitempty,url"`
	Bio        string `json:"bio"`
}

// ProfileFrom pre-fills the profile form from the signed-in identity.
func ProfileFrom(ident models.Identity) ProfileUpdate {
	return ProfileUpdate{
		Name:       ident.Name,
		Email:      ident.Email,
		Skills:     ident.Skills.String(),
		Experience: ident.Experience,
		Education:  ident.Education,
		Resume:     ident.Resume,
		Bio:        ident.Bio,
	}
}

// ApplyTo returns ident with the submitted form fields written over it.
// Skills are split on commas.
func (u ProfileUpdate) ApplyTo(ident models.Identity) models.Identity {
	ident.Name = u.Name
	ident.Email = u.Email
	ident.Skills = nil
	for _, s := range strings.Split(u.Skills, ",") {
		if s = strings.TrimSpace(s); s != "" {
			ident.Skills = append(ident.Skills, s)
		}
	}
	ident.Experience = u.Experience
	ident.Education = u.Education
	ident.Resume = u.Resume
	ident.Bio = u.Bio
	return ident
}

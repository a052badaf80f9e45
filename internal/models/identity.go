package models

import (
	"encoding/json"
	"unicode"
	"unicode/utf8"
)

// Identity is the authenticated principal as reported by the backend.
// Profile fields are only meaningful for job seekers; Company for employers.
type Identity struct {
	ID         string     `json:"id"`
	Name       string     `json:"name,omitempty"`
	Email      string     `json:"email,omitempty"`
	Role       Role       `json:"role"`
	Company    string     `json:"company,omitempty"`
	Skills     StringList `json:"skills,omitempty"`
	Experience string     `json:"experience,omitempty"`
	Education  string     `json:"education,omitempty"`
	Resume     string     `json:"resume,omitempty"`
	Bio        string     `json:"bio,omitempty"`
	Blocked    bool       `json:"isBlocked,omitempty"`
	CreatedAt  Timestamp  `json:"createdAt,omitempty"`
}

// UnmarshalJSON accepts both "_id" and "id".
func (i *Identity) UnmarshalJSON(data []byte) error {
	type alias Identity
	aux := struct {
		MongoID string `json:"_id"`
		*alias
	}{alias: (*alias)(i)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	i.ID = pickID(aux.MongoID, i.ID)
	return nil
}

// Empty reports whether the record carries nothing that identifies a user.
func (i Identity) Empty() bool {
	return i.ID == "" && i.Email == "" && i.Role == ""
}

// DisplayName falls back to a generic label like the navigation bar does.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return "User"
}

// Initial is the avatar letter shown next to the name.
func (i Identity) Initial() string {
	r, _ := utf8.DecodeRuneInString(i.Name)
	if r == utf8.RuneError {
		return "U"
	}
	return string(unicode.ToUpper(r))
}

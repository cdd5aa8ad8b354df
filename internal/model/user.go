package model

import "time"

// User represents a user account
type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Hash            *string    `json:"-"` // Never expose password hash
	Name            *string    `json:"name,omitempty"`
	Region          string     `json:"region"`
	GuardianPhone   *string    `json:"guardian_phone,omitempty"`
	GuardianConsent bool       `json:"guardian_consent"`
	EmailVerified   bool       `json:"email_verified"`
	CreatedOn       time.Time  `json:"created_on"`
	UpdatedOn       time.Time  `json:"updated_on"`
	LoginOn         *time.Time `json:"login_on,omitempty"`
}

// HasGuardian returns true if a guardian can be alerted for this user
func (u *User) HasGuardian() bool {
	return u.GuardianPhone != nil && *u.GuardianPhone != "" && u.GuardianConsent
}

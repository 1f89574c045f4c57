package domain

import "time"

// OnboardingApplication is a prospective host's intake form. Kept separate
// from users: applicants do not have an account yet.
type OnboardingApplication struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Preferences []string  `json:"preferences,omitempty"`
	Website     string    `json:"website,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

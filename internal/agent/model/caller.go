package model

import "strings"

// Caller is a registered user returned by the backend users-by-phone lookup.
type Caller struct {
	ID        FlexString `json:"id"`
	Phone     string     `json:"phone"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	DOB       string     `json:"dob,omitempty"`
	Email     string     `json:"email,omitempty"`
}

// DisplayName returns the name used in greetings.
func (c *Caller) DisplayName() string {
	if c == nil {
		return ""
	}
	if name := strings.TrimSpace(c.FirstName); name != "" {
		return name
	}
	return strings.TrimSpace(c.LastName)
}

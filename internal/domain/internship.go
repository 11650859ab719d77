package domain

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Internship is one listing in the catalog. Skills keep the casing the creator used.
type Internship struct {
	ID           string    `json:"_id"`
	Program      string    `json:"program"`
	Organization string    `json:"organization"`
	ApplyLink    string    `json:"applyLink"`
	Location     string    `json:"location"`
	Stipend      string    `json:"stipend"`
	Skills       []string  `json:"skills"`
	Status       Status    `json:"status"`
	CreatedBy    string    `json:"createdBy,omitempty"`
	AppliedBy    []string  `json:"appliedBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasApplicant reports whether userID is already in AppliedBy.
func (in Internship) HasApplicant(userID string) bool {
	for _, id := range in.AppliedBy {
		if id == userID {
			return true
		}
	}
	return false
}

package applications

import "time"

// Status is a job application's place in the tracking pipeline.
type Status string

const (
	StatusSaved        Status = "saved"
	StatusApplied      Status = "applied"
	StatusInterviewing Status = "interviewing"
	StatusOffer        Status = "offer"
	StatusAccepted     Status = "accepted"
	StatusRejected     Status = "rejected"
	StatusWithdrawn    Status = "withdrawn"
)

// transitions lists the statuses reachable from each status. Terminal
// statuses (accepted, rejected, withdrawn) allow no further moves.
var transitions = map[Status][]Status{
	StatusSaved:        {StatusApplied, StatusWithdrawn},
	StatusApplied:      {StatusInterviewing, StatusRejected, StatusWithdrawn},
	StatusInterviewing: {StatusOffer, StatusRejected, StatusWithdrawn},
	StatusOffer:        {StatusAccepted, StatusRejected, StatusWithdrawn},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusSaved, StatusApplied, StatusInterviewing, StatusOffer,
		StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Application represents one tracked job application.
type Application struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	CompanyName    string     `json:"companyName"`
	JobTitle       string     `json:"jobTitle"`
	JobDescription string     `json:"jobDescription,omitempty"`
	JobURL         string     `json:"jobUrl,omitempty"`
	Location       string     `json:"location,omitempty"`
	Status         Status     `json:"status"`
	Notes          string     `json:"notes,omitempty"`
	AppliedAt      *time.Time `json:"appliedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

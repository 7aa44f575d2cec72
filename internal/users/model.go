package users

import "time"

// Plan tiers. Free accounts are subject to the daily analysis limit.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	GivenName  string    `json:"givenName"`
	FamilyName string    `json:"familyName"`
	PictureURL string    `json:"pictureUrl"`
	Plan       string    `json:"plan"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

package resumes

import "time"

// Resume represents an uploaded resume owned by a user.
type Resume struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	FileName         string     `json:"fileName"`
	MimeType         string     `json:"mimeType"`
	SizeBytes        int64      `json:"sizeBytes"`
	StorageKey       string     `json:"-"`
	ExtractedTextKey string     `json:"-"`
	ExtractedAt      *time.Time `json:"extractedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

package analyses

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind discriminates the analysis variants. It determines the payload shape
// and whether a numeric score is produced.
type Kind string

const (
	KindComprehensiveScore Kind = "comprehensive_score"
	KindJobMatch           Kind = "job_match"
	KindOptimization       Kind = "optimization"
)

// ParseKind validates a raw kind string.
func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case KindComprehensiveScore, KindJobMatch, KindOptimization:
		return Kind(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
}

// Record is one completed AI analysis. Records are immutable once created:
// the repo exposes no update or delete, and created_at is what the daily
// rate limiter counts against.
type Record struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	ResumeID      string    `json:"resumeId"`
	ApplicationID string    `json:"applicationId,omitempty"`
	Kind          Kind      `json:"kind"`
	Score         *float64  `json:"score,omitempty"`
	Payload       Payload   `json:"analysis"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Payload is the kind-specific analysis body.
type Payload interface {
	PayloadKind() Kind
}

// SectionScore grades one resume section.
type SectionScore struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback,omitempty"`
}

// ScorePayload is the comprehensive-score result.
type ScorePayload struct {
	OverallScore float64        `json:"overallScore"`
	Sections     []SectionScore `json:"sections"`
	Keywords     []string       `json:"keywords"`
	Suggestions  []string       `json:"suggestions"`
}

func (ScorePayload) PayloadKind() Kind { return KindComprehensiveScore }

// MatchSource records where a job match's description came from.
const (
	MatchSourceApplication = "application"
	MatchSourceAdHoc       = "ad_hoc"
)

// MatchMetadata carries the job context a match was computed against.
type MatchMetadata struct {
	JobTitle    string `json:"jobTitle,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	Source      string `json:"source"`
}

// MatchPayload is the job-match result.
type MatchPayload struct {
	MatchScore      float64       `json:"matchScore"`
	MatchedKeywords []string      `json:"matchedKeywords"`
	MissingKeywords []string      `json:"missingKeywords"`
	Suggestions     []string      `json:"suggestions"`
	Metadata        MatchMetadata `json:"metadata"`
}

func (MatchPayload) PayloadKind() Kind { return KindJobMatch }

// OptimizationSuggestion is one concrete rewrite proposal.
type OptimizationSuggestion struct {
	Section  string `json:"section"`
	Original string `json:"original,omitempty"`
	Improved string `json:"improved"`
	Reason   string `json:"reason,omitempty"`
}

// OptimizationPayload is the optimization result. It carries no score.
type OptimizationPayload struct {
	Summary        string                   `json:"summary"`
	Suggestions    []OptimizationSuggestion `json:"suggestions"`
	TargetIndustry string                   `json:"targetIndustry,omitempty"`
	TargetRole     string                   `json:"targetRole,omitempty"`
}

func (OptimizationPayload) PayloadKind() Kind { return KindOptimization }

// DecodePayload unmarshals a stored payload for the given kind.
func DecodePayload(kind Kind, raw []byte) (Payload, error) {
	switch kind {
	case KindComprehensiveScore:
		var p ScorePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindJobMatch:
		var p MatchPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	case KindOptimization:
		var p OptimizationPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

package llm

import (
	"fmt"
	"strings"
)

const promptPreamble = `You are an expert resume reviewer for a job-application tracking product.
Respond with valid JSON only. Do not wrap the output in markdown code blocks.
If a piece of information cannot be determined, use null or an empty array. Do not guess.`

// ScorePrompt builds the comprehensive-score prompt for a resume.
func ScorePrompt(resumeText string) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString(`

### TASK
Score the resume below on overall quality for a competitive job market.

### OUTPUT SCHEMA
{
  "overallScore": 0-100,
  "sections": [{"name": "string", "score": 0-100, "feedback": "string"}],
  "keywords": ["notable skills and keywords found"],
  "suggestions": ["concrete improvements, most impactful first"]
}

### RESUME
`)
	b.WriteString(resumeText)
	return b.String()
}

// MatchPrompt builds the job-match prompt for a resume and job description.
func MatchPrompt(resumeText, jobDescription, jobTitle, companyName string) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString(`

### TASK
Assess how well the resume matches the job description.
`)
	if jobTitle != "" {
		fmt.Fprintf(&b, "Role: %s\n", jobTitle)
	}
	if companyName != "" {
		fmt.Fprintf(&b, "Company: %s\n", companyName)
	}
	b.WriteString(`
### OUTPUT SCHEMA
{
  "matchScore": 0-100,
  "matchedKeywords": ["requirements the resume satisfies"],
  "missingKeywords": ["requirements the resume does not show"],
  "suggestions": ["tailoring advice, most impactful first"]
}

### JOB DESCRIPTION
`)
	b.WriteString(jobDescription)
	b.WriteString(`

### RESUME
`)
	b.WriteString(resumeText)
	return b.String()
}

// OptimizePrompt builds the optimization prompt for a resume with optional
// target industry/role hints.
func OptimizePrompt(resumeText, targetIndustry, targetRole string) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString(`

### TASK
Suggest rewrites and structural improvements for the resume below.
`)
	if targetIndustry != "" {
		fmt.Fprintf(&b, "Target industry: %s\n", targetIndustry)
	}
	if targetRole != "" {
		fmt.Fprintf(&b, "Target role: %s\n", targetRole)
	}
	b.WriteString(`
### OUTPUT SCHEMA
{
  "summary": "one-paragraph assessment",
  "suggestions": [{"section": "string", "original": "string", "improved": "string", "reason": "string"}]
}

### RESUME
`)
	b.WriteString(resumeText)
	return b.String()
}

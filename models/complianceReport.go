package models

import "time"

// Issue severities as reported by the backend.
const (
	SeverityHigh   = "HIGH"
	SeverityMedium = "MEDIUM"
	SeverityLow    = "LOW"
)

// ComplianceIssue is a single finding in a compliance report.
type ComplianceIssue struct {
	Severity       string `json:"severity"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
	LawReference   string `json:"law_reference"`
}

// LawReference points at one law cited by the report.
type LawReference struct {
	Law string `json:"law"`
}

// ComplianceReport is the scoring result for one document. The backend keeps
// the full review history; the client only ever holds the latest report in
// memory and replaces it wholesale on re-review.
type ComplianceReport struct {
	DocumentID      string            `json:"document_id"`
	ComplianceScore int               `json:"compliance_score"`
	Issues          []ComplianceIssue `json:"issues"`
	Recommendations []string          `json:"recommendations"`
	LawReferences   []LawReference    `json:"law_references"`
	ReviewedAt      time.Time         `json:"reviewed_at"`
}

package services

import (
	"sort"

	model "github.com/Itish41/LexReview/models"
)

// Compliance status labels derived from the report score.
const (
	StatusCompliant       = "COMPLIANT"
	StatusMostlyCompliant = "MOSTLY COMPLIANT"
	StatusNeedsReview     = "NEEDS REVIEW"
	StatusNonCompliant    = "NON-COMPLIANT"
)

// ClassifyScore maps a compliance score onto its status label. Boundary
// values 90, 70, and 50 land on the upper branch.
func ClassifyScore(score int) string {
	switch {
	case score >= 90:
		return StatusCompliant
	case score >= 70:
		return StatusMostlyCompliant
	case score >= 50:
		return StatusNeedsReview
	default:
		return StatusNonCompliant
	}
}

var severityRank = map[string]int{
	model.SeverityHigh:   0,
	model.SeverityMedium: 1,
	model.SeverityLow:    2,
}

// ReportView is the presentation form of a compliance report: classified
// status, issues ordered by severity, and per-severity counts.
type ReportView struct {
	DocumentID      string                  `json:"document_id"`
	ComplianceScore int                     `json:"compliance_score"`
	Status          string                  `json:"status"`
	Issues          []model.ComplianceIssue `json:"issues"`
	SeverityCounts  map[string]int          `json:"severity_counts"`
	Recommendations []string                `json:"recommendations"`
	LawReferences   []model.LawReference    `json:"law_references"`
}

// BuildReportView prepares a compliance report for display. The report
// itself stays untouched; issues are copied before sorting.
func BuildReportView(report *model.ComplianceReport) *ReportView {
	if report == nil {
		return nil
	}

	issues := make([]model.ComplianceIssue, len(report.Issues))
	copy(issues, report.Issues)
	sort.SliceStable(issues, func(i, j int) bool {
		ri, ok := severityRank[issues[i].Severity]
		if !ok {
			ri = len(severityRank)
		}
		rj, ok := severityRank[issues[j].Severity]
		if !ok {
			rj = len(severityRank)
		}
		return ri < rj
	})

	counts := make(map[string]int)
	for _, issue := range issues {
		counts[issue.Severity]++
	}

	return &ReportView{
		DocumentID:      report.DocumentID,
		ComplianceScore: report.ComplianceScore,
		Status:          ClassifyScore(report.ComplianceScore),
		Issues:          issues,
		SeverityCounts:  counts,
		Recommendations: report.Recommendations,
		LawReferences:   report.LawReferences,
	}
}

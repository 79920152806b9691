package models

import "time"

// HistoryItem is one row of the compliance review history list.
type HistoryItem struct {
	ReviewID        string    `json:"review_id"`
	DocumentID      string    `json:"document_id"`
	Filename        string    `json:"filename"`
	ComplianceScore int       `json:"compliance_score"`
	Status          string    `json:"status"`
	ReviewedAt      time.Time `json:"reviewed_at"`
}

// CleanupHistoryItem is one row of the cleanup history list.
type CleanupHistoryItem struct {
	DocumentID  string    `json:"document_id"`
	Filename    string    `json:"filename"`
	IssueCount  int       `json:"issue_count"`
	ChangeCount int       `json:"change_count"`
	CreatedAt   time.Time `json:"created_at"`
}

package services

import (
	"context"
	"fmt"
	"io"

	model "github.com/Itish41/LexReview/models"
)

// BackendAPI is the surface of the analysis backend the workflow consumes.
// client.BackendClient implements it; tests substitute a mock.
type BackendAPI interface {
	UploadDocument(ctx context.Context, filename string, file io.Reader) (*model.Document, error)
	ListDocuments(ctx context.Context) ([]model.Document, error)
	ReviewHistory(ctx context.Context) ([]model.HistoryItem, error)
	CleanupHistory(ctx context.Context) ([]model.CleanupHistoryItem, error)
	GetCleanup(ctx context.Context, documentID string) (*model.CleanupResult, error)
	RerunCleanup(ctx context.Context, documentID string) (*model.CleanupResult, error)
	SaveCleanupContent(ctx context.Context, documentID, contentHTML string, lang model.Language) error
	CreateModule(ctx context.Context, documentID string) (*model.TrainingModule, error)
	GetModule(ctx context.Context, documentID string) (*model.TrainingModule, error)
	LawCategories(ctx context.Context) (map[string]string, error)
	SubmitReview(ctx context.Context, documentID string, focusAreas []string) (*model.ComplianceReport, error)
	GetReport(ctx context.Context, documentID string) (*model.ComplianceReport, error)
}

// StageError is the single user-visible failure of one pipeline stage. The
// Action is the surfaced message; transport and parse causes are deliberately
// indistinguishable to the caller.
type StageError struct {
	Action string
	Err    error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return e.Action
	}
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Message returns the text to surface to the user.
func (e *StageError) Message() string { return e.Action }

// ProgressFunc receives coarse stage-completion updates: a stage name, a
// percentage, and a human-readable status line. Percent is a UX signal, not
// a measured quantity.
type ProgressFunc func(stage model.Stage, percent int, status string)

// progressTracker clamps reported percentages so emitted progress is
// monotonically non-decreasing and ends at 100 on success.
type progressTracker struct {
	stage model.Stage
	last  int
	sink  ProgressFunc
}

func newProgressTracker(stage model.Stage, sink ProgressFunc) *progressTracker {
	return &progressTracker{stage: stage, sink: sink}
}

func (p *progressTracker) report(percent int, status string) {
	if percent < p.last {
		percent = p.last
	}
	if percent > 100 {
		percent = 100
	}
	p.last = percent
	if p.sink != nil {
		p.sink(p.stage, percent, status)
	}
}

func (p *progressTracker) done(status string) {
	p.report(100, status)
}

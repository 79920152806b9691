package services

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	"github.com/Itish41/LexReview/client"
	model "github.com/Itish41/LexReview/models"
)

var errNoActiveDocument = errors.New("no active document in session")

// WorkflowService owns the review session and drives it through the
// pipeline stages: Upload -> Processing -> {Cleanup | Module} -> Processing
// -> Report -> Editor. Processing is always transient; every failed stage
// request surfaces a single message and returns the session to its last
// stable stage.
//
// Stage responses are applied through an is-this-still-the-active-document
// guard, so a stale response completing after the user navigated away can
// never overwrite newer session state.
type WorkflowService struct {
	mu       sync.Mutex
	api      BackendAPI
	progress ProgressFunc
	session  *model.Session

	// epoch is bumped on every session reset. Requests that start before a
	// document ID exists (the upload itself) key their responses to the epoch
	// they started in, so of two rapid uploads only the newest claims the
	// session.
	epoch uint64
}

// NewWorkflowService initializes the workflow with a backend and an optional
// progress sink.
func NewWorkflowService(api BackendAPI, progress ProgressFunc) *WorkflowService {
	return &WorkflowService{
		api:      api,
		progress: progress,
		session:  model.NewSession(),
	}
}

// Session returns a snapshot of the current session. The cleanup result is
// deep-copied because the editor writes edits back into it; the module and
// report are never mutated after assignment, so their pointers are safe to
// share.
func (s *WorkflowService) Session() model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := *s.session
	snap.ActiveCleanup = s.session.ActiveCleanup.Clone()
	return snap
}

// applyIfCurrent mutates the session only when the response still belongs to
// the active document. Stale responses are discarded silently.
func (s *WorkflowService) applyIfCurrent(documentID string, fn func(*model.Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.DocumentID != documentID {
		log.Printf("Discarding stale response for document %s (active: %s)", documentID, s.session.DocumentID)
		return false
	}
	fn(s.session)
	return true
}

// applyIfEpoch mutates the session only when no reset happened since the
// request started. This guards the stages that run before a document ID
// exists, where applyIfCurrent cannot tell two sessions apart.
func (s *WorkflowService) applyIfEpoch(gen uint64, fn func(*model.Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != gen {
		log.Printf("Discarding stale response from a superseded session")
		return false
	}
	fn(s.session)
	return true
}

// fail records the fallback stage and surfaced message for a failed stage
// request and wraps the cause in a StageError.
func (s *WorkflowService) fail(documentID string, fallback model.Stage, action string, err error) error {
	log.Printf("%s for document %q: %v", action, documentID, err)
	s.applyIfCurrent(documentID, func(sess *model.Session) {
		sess.Stage = fallback
		sess.LastError = action
	})
	return &StageError{Action: action, Err: err}
}

// failEpoch is fail for requests keyed to a reset generation instead of a
// document ID.
func (s *WorkflowService) failEpoch(gen uint64, fallback model.Stage, action string, err error) error {
	log.Printf("%s: %v", action, err)
	s.applyIfEpoch(gen, func(sess *model.Session) {
		sess.Stage = fallback
		sess.LastError = action
	})
	return &StageError{Action: action, Err: err}
}

// StartUpload resets the session, uploads the file, and then requests the
// cleanup analysis for the new document. When no cleanup analysis is
// available the workflow falls through to training module creation without
// user intervention.
func (s *WorkflowService) StartUpload(ctx context.Context, filename string, file io.Reader) error {
	s.mu.Lock()
	s.epoch++
	gen := s.epoch
	s.session = model.NewSession()
	s.session.Stage = model.StageProcessing
	s.mu.Unlock()

	p := newProgressTracker(model.StageUpload, s.progress)
	p.report(10, "Uploading document...")

	doc, err := s.api.UploadDocument(ctx, filename, file)
	if err != nil {
		return s.failEpoch(gen, model.StageUpload, "Document upload failed", err)
	}

	applied := s.applyIfEpoch(gen, func(sess *model.Session) {
		sess.DocumentID = doc.ID
		sess.Filename = doc.Filename
	})
	if !applied {
		// A newer upload reset the session while this one was in flight.
		return nil
	}
	p.report(50, "Document uploaded, fetching cleanup analysis...")

	res, err := s.api.GetCleanup(ctx, doc.ID)
	switch {
	case err == nil:
		applied := s.applyIfCurrent(doc.ID, func(sess *model.Session) {
			sess.ActiveCleanup = res
			sess.Stage = model.StageCleanup
			sess.LastError = ""
		})
		if applied {
			p.done("Cleanup analysis ready")
		}
		return nil
	case errors.Is(err, client.ErrNotFound):
		// Absence is expected: fall through to module creation.
		log.Printf("No cleanup analysis for document %s, creating training module", doc.ID)
		return s.createModule(ctx, doc.ID, model.StageUpload, p)
	default:
		return s.fail(doc.ID, model.StageUpload, "Cleanup analysis failed", err)
	}
}

// CreateModule requests training module creation for the active document,
// either directly or as the "skip cleanup" branch.
func (s *WorkflowService) CreateModule(ctx context.Context) error {
	s.mu.Lock()
	documentID := s.session.DocumentID
	origin := s.session.Stage
	s.session.Stage = model.StageProcessing
	s.mu.Unlock()

	if documentID == "" {
		s.applyIfCurrent("", func(sess *model.Session) { sess.Stage = origin })
		return &StageError{Action: "Training module creation failed", Err: errNoActiveDocument}
	}

	p := newProgressTracker(model.StageModule, s.progress)
	return s.createModule(ctx, documentID, origin, p)
}

func (s *WorkflowService) createModule(ctx context.Context, documentID string, origin model.Stage, p *progressTracker) error {
	p.report(70, "Creating training module...")

	mod, err := s.api.CreateModule(ctx, documentID)
	if err != nil {
		return s.fail(documentID, origin, "Training module creation failed", err)
	}

	applied := s.applyIfCurrent(documentID, func(sess *model.Session) {
		sess.ActiveModule = mod
		sess.Stage = model.StageModule
		sess.LastError = ""
	})
	if applied {
		p.done("Training module ready")
	}
	return nil
}

// RunReview submits a compliance review for the active document, optionally
// narrowed to focus areas. Failure falls back to the module view.
func (s *WorkflowService) RunReview(ctx context.Context, focusAreas []string) error {
	s.mu.Lock()
	documentID := s.session.DocumentID
	s.session.Stage = model.StageProcessing
	s.mu.Unlock()

	if documentID == "" {
		s.applyIfCurrent("", func(sess *model.Session) { sess.Stage = model.StageUpload })
		return &StageError{Action: "Compliance review failed", Err: errNoActiveDocument}
	}

	p := newProgressTracker(model.StageReport, s.progress)
	p.report(20, "Running compliance review...")

	report, err := s.api.SubmitReview(ctx, documentID, focusAreas)
	if err != nil {
		return s.fail(documentID, model.StageModule, "Compliance review failed", err)
	}

	applied := s.applyIfCurrent(documentID, func(sess *model.Session) {
		sess.ActiveReport = report
		sess.Stage = model.StageReport
		sess.LastError = ""
	})
	if applied {
		p.done("Compliance report ready")
	}
	return nil
}

// RerunCleanup re-requests the cleanup analysis for the active document. On
// failure the stale cleanup result stays in place.
func (s *WorkflowService) RerunCleanup(ctx context.Context) error {
	s.mu.Lock()
	documentID := s.session.DocumentID
	s.session.Stage = model.StageProcessing
	s.mu.Unlock()

	if documentID == "" {
		s.applyIfCurrent("", func(sess *model.Session) { sess.Stage = model.StageUpload })
		return &StageError{Action: "Cleanup analysis failed", Err: errNoActiveDocument}
	}

	p := newProgressTracker(model.StageCleanup, s.progress)
	p.report(20, "Re-running cleanup analysis...")

	res, err := s.api.RerunCleanup(ctx, documentID)
	if err != nil {
		return s.fail(documentID, model.StageCleanup, "Cleanup analysis failed", err)
	}

	applied := s.applyIfCurrent(documentID, func(sess *model.Session) {
		sess.ActiveCleanup = res
		sess.Stage = model.StageCleanup
		sess.LastError = ""
	})
	if applied {
		p.done("Cleanup analysis refreshed")
	}
	return nil
}

// OpenReport jumps into an existing document's compliance report from the
// history list.
func (s *WorkflowService) OpenReport(ctx context.Context, documentID string) error {
	s.enterDocument(documentID)

	report, err := s.api.GetReport(ctx, documentID)
	if err != nil {
		return s.fail(documentID, model.StageHistory, "Failed to load compliance report", err)
	}
	s.applyIfCurrent(documentID, func(sess *model.Session) {
		sess.ActiveReport = report
		sess.Stage = model.StageReport
		sess.LastError = ""
	})
	return nil
}

// OpenModule jumps into an existing document's training module from the
// documents list.
func (s *WorkflowService) OpenModule(ctx context.Context, documentID string) error {
	s.enterDocument(documentID)

	mod, err := s.api.GetModule(ctx, documentID)
	if err != nil {
		return s.fail(documentID, model.StageDocuments, "Failed to load training module", err)
	}
	s.applyIfCurrent(documentID, func(sess *model.Session) {
		sess.ActiveModule = mod
		sess.Stage = model.StageModule
		sess.LastError = ""
	})
	return nil
}

// OpenCleanup jumps into an existing document's cleanup result from the
// cleanup history list.
func (s *WorkflowService) OpenCleanup(ctx context.Context, documentID string) error {
	s.enterDocument(documentID)

	res, err := s.api.GetCleanup(ctx, documentID)
	if err != nil {
		return s.fail(documentID, model.StageHistory, "Failed to load cleanup result", err)
	}
	s.applyIfCurrent(documentID, func(sess *model.Session) {
		sess.ActiveCleanup = res
		sess.Stage = model.StageCleanup
		sess.LastError = ""
	})
	return nil
}

// enterDocument resets the session onto a previously processed document.
func (s *WorkflowService) enterDocument(documentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.session = model.NewSession()
	s.session.DocumentID = documentID
	s.session.Stage = model.StageProcessing
}

// OpenEditor moves the session into the editor stage; it requires an active
// cleanup result to edit. The editor gets its own copy and writes edits back
// through SetEditedContent, so the session's cleanup result is only ever
// touched under this service's mutex.
func (s *WorkflowService) OpenEditor() (*model.CleanupResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.ActiveCleanup == nil {
		return nil, &StageError{Action: "No cleanup result to edit", Err: errNoActiveDocument}
	}
	s.session.Stage = model.StageEditor
	s.session.LastError = ""
	return s.session.ActiveCleanup.Clone(), nil
}

// SetEditedContent records locally edited content on the session's cleanup
// result, so edits survive editor teardown and a later reopen.
func (s *WorkflowService) SetEditedContent(lang model.Language, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.ActiveCleanup != nil {
		s.session.ActiveCleanup.SetEdited(lang, content)
	}
}

// SetActiveLanguage records the editor language on the session.
func (s *WorkflowService) SetActiveLanguage(lang model.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.ActiveLanguage = lang
}

// Navigate moves between the resting screens without touching session
// artifacts. Only upload, history, and documents are navigation targets.
func (s *WorkflowService) Navigate(stage model.Stage) error {
	switch stage {
	case model.StageUpload, model.StageHistory, model.StageDocuments:
	default:
		return errors.New("not a navigation target: " + string(stage))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Stage = stage
	s.session.LastError = ""
	return nil
}

// ListDocuments passes the backend's document list through.
func (s *WorkflowService) ListDocuments(ctx context.Context) ([]model.Document, error) {
	docs, err := s.api.ListDocuments(ctx)
	if err != nil {
		return nil, &StageError{Action: "Failed to load documents", Err: err}
	}
	return docs, nil
}

// ReviewHistory passes the backend's review history through.
func (s *WorkflowService) ReviewHistory(ctx context.Context) ([]model.HistoryItem, error) {
	items, err := s.api.ReviewHistory(ctx)
	if err != nil {
		return nil, &StageError{Action: "Failed to load review history", Err: err}
	}
	return items, nil
}

// CleanupHistory passes the backend's cleanup history through.
func (s *WorkflowService) CleanupHistory(ctx context.Context) ([]model.CleanupHistoryItem, error) {
	items, err := s.api.CleanupHistory(ctx)
	if err != nil {
		return nil, &StageError{Action: "Failed to load cleanup history", Err: err}
	}
	return items, nil
}

// LawCategories passes the backend's law category mapping through.
func (s *WorkflowService) LawCategories(ctx context.Context) (map[string]string, error) {
	categories, err := s.api.LawCategories(ctx)
	if err != nil {
		return nil, &StageError{Action: "Failed to load law categories", Err: err}
	}
	return categories, nil
}

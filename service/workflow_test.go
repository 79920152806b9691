package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Itish41/LexReview/client"
	model "github.com/Itish41/LexReview/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// FixedTime is used to patch time.Now in tests.
var FixedTime = time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)

// MockBackend implements BackendAPI with testify/mock.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) UploadDocument(ctx context.Context, filename string, file io.Reader) (*model.Document, error) {
	args := m.Called(ctx, filename, file)
	var doc *model.Document
	if v := args.Get(0); v != nil {
		doc = v.(*model.Document)
	}
	return doc, args.Error(1)
}

func (m *MockBackend) ListDocuments(ctx context.Context) ([]model.Document, error) {
	args := m.Called(ctx)
	var docs []model.Document
	if v := args.Get(0); v != nil {
		docs = v.([]model.Document)
	}
	return docs, args.Error(1)
}

func (m *MockBackend) ReviewHistory(ctx context.Context) ([]model.HistoryItem, error) {
	args := m.Called(ctx)
	var items []model.HistoryItem
	if v := args.Get(0); v != nil {
		items = v.([]model.HistoryItem)
	}
	return items, args.Error(1)
}

func (m *MockBackend) CleanupHistory(ctx context.Context) ([]model.CleanupHistoryItem, error) {
	args := m.Called(ctx)
	var items []model.CleanupHistoryItem
	if v := args.Get(0); v != nil {
		items = v.([]model.CleanupHistoryItem)
	}
	return items, args.Error(1)
}

func (m *MockBackend) GetCleanup(ctx context.Context, documentID string) (*model.CleanupResult, error) {
	args := m.Called(ctx, documentID)
	var res *model.CleanupResult
	if v := args.Get(0); v != nil {
		res = v.(*model.CleanupResult)
	}
	return res, args.Error(1)
}

func (m *MockBackend) RerunCleanup(ctx context.Context, documentID string) (*model.CleanupResult, error) {
	args := m.Called(ctx, documentID)
	var res *model.CleanupResult
	if v := args.Get(0); v != nil {
		res = v.(*model.CleanupResult)
	}
	return res, args.Error(1)
}

func (m *MockBackend) SaveCleanupContent(ctx context.Context, documentID, contentHTML string, lang model.Language) error {
	args := m.Called(ctx, documentID, contentHTML, lang)
	return args.Error(0)
}

func (m *MockBackend) CreateModule(ctx context.Context, documentID string) (*model.TrainingModule, error) {
	args := m.Called(ctx, documentID)
	var mod *model.TrainingModule
	if v := args.Get(0); v != nil {
		mod = v.(*model.TrainingModule)
	}
	return mod, args.Error(1)
}

func (m *MockBackend) GetModule(ctx context.Context, documentID string) (*model.TrainingModule, error) {
	args := m.Called(ctx, documentID)
	var mod *model.TrainingModule
	if v := args.Get(0); v != nil {
		mod = v.(*model.TrainingModule)
	}
	return mod, args.Error(1)
}

func (m *MockBackend) LawCategories(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	var categories map[string]string
	if v := args.Get(0); v != nil {
		categories = v.(map[string]string)
	}
	return categories, args.Error(1)
}

func (m *MockBackend) SubmitReview(ctx context.Context, documentID string, focusAreas []string) (*model.ComplianceReport, error) {
	args := m.Called(ctx, documentID, focusAreas)
	var report *model.ComplianceReport
	if v := args.Get(0); v != nil {
		report = v.(*model.ComplianceReport)
	}
	return report, args.Error(1)
}

func (m *MockBackend) GetReport(ctx context.Context, documentID string) (*model.ComplianceReport, error) {
	args := m.Called(ctx, documentID)
	var report *model.ComplianceReport
	if v := args.Get(0); v != nil {
		report = v.(*model.ComplianceReport)
	}
	return report, args.Error(1)
}

func uploadedDoc() *model.Document {
	return &model.Document{ID: "doc-1", Filename: "nda.docx", FileType: "docx"}
}

func TestStartUpload_CleanupAvailable(t *testing.T) {
	backend := new(MockBackend)
	backend.On("UploadDocument", mock.Anything, "nda.docx", mock.Anything).
		Return(uploadedDoc(), nil)
	backend.On("GetCleanup", mock.Anything, "doc-1").
		Return(&model.CleanupResult{DocumentID: "doc-1", CleanedEnglish: "clean"}, nil)

	var percents []int
	sink := func(stage model.Stage, percent int, status string) {
		percents = append(percents, percent)
	}

	s := NewWorkflowService(backend, sink)
	err := s.StartUpload(context.Background(), "nda.docx", strings.NewReader("body"))
	assert.NoError(t, err)

	sess := s.Session()
	assert.Equal(t, "doc-1", sess.DocumentID)
	assert.Equal(t, model.StageCleanup, sess.Stage)
	assert.NotNil(t, sess.ActiveCleanup)
	assert.Empty(t, sess.LastError)

	// Progress is monotonically non-decreasing and ends at 100.
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1])
	}
	assert.Equal(t, 100, percents[len(percents)-1])

	backend.AssertExpectations(t)
}

func TestStartUpload_NoCleanupFallsThroughToModule(t *testing.T) {
	backend := new(MockBackend)
	backend.On("UploadDocument", mock.Anything, "nda.docx", mock.Anything).
		Return(uploadedDoc(), nil)
	backend.On("GetCleanup", mock.Anything, "doc-1").
		Return(nil, client.ErrNotFound)
	backend.On("CreateModule", mock.Anything, "doc-1").
		Return(&model.TrainingModule{DocumentID: "doc-1"}, nil)

	s := NewWorkflowService(backend, nil)
	err := s.StartUpload(context.Background(), "nda.docx", strings.NewReader("body"))
	assert.NoError(t, err)

	sess := s.Session()
	assert.Equal(t, model.StageModule, sess.Stage)
	assert.NotNil(t, sess.ActiveModule)
	assert.Nil(t, sess.ActiveCleanup)

	backend.AssertExpectations(t)
}

func TestStartUpload_UploadFailureReturnsToUpload(t *testing.T) {
	backend := new(MockBackend)
	backend.On("UploadDocument", mock.Anything, "nda.docx", mock.Anything).
		Return(nil, errors.New("connection refused"))

	s := NewWorkflowService(backend, nil)
	err := s.StartUpload(context.Background(), "nda.docx", strings.NewReader("body"))
	assert.Error(t, err)

	var stageErr *StageError
	assert.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "Document upload failed", stageErr.Message())

	sess := s.Session()
	assert.Equal(t, model.StageUpload, sess.Stage)
	assert.Equal(t, "Document upload failed", sess.LastError)
	backend.AssertNotCalled(t, "GetCleanup")
}

func TestStartUpload_CleanupHardErrorSurfaces(t *testing.T) {
	backend := new(MockBackend)
	backend.On("UploadDocument", mock.Anything, "nda.docx", mock.Anything).
		Return(uploadedDoc(), nil)
	backend.On("GetCleanup", mock.Anything, "doc-1").
		Return(nil, errors.New("backend returned status 500"))

	s := NewWorkflowService(backend, nil)
	err := s.StartUpload(context.Background(), "nda.docx", strings.NewReader("body"))
	assert.Error(t, err)

	var stageErr *StageError
	assert.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "Cleanup analysis failed", stageErr.Message())
	assert.Equal(t, model.StageUpload, s.Session().Stage)
	backend.AssertNotCalled(t, "CreateModule")
}

func TestRunReview_Success(t *testing.T) {
	backend := new(MockBackend)
	backend.On("SubmitReview", mock.Anything, "doc-1", []string{"employment_law"}).
		Return(&model.ComplianceReport{DocumentID: "doc-1", ComplianceScore: 75}, nil)

	s := NewWorkflowService(backend, nil)
	s.enterDocument("doc-1")

	err := s.RunReview(context.Background(), []string{"employment_law"})
	assert.NoError(t, err)

	sess := s.Session()
	assert.Equal(t, model.StageReport, sess.Stage)
	assert.Equal(t, 75, sess.ActiveReport.ComplianceScore)
	backend.AssertExpectations(t)
}

func TestRunReview_FailureFallsBackToModule(t *testing.T) {
	backend := new(MockBackend)
	backend.On("SubmitReview", mock.Anything, "doc-1", mock.Anything).
		Return(nil, errors.New("timeout"))

	s := NewWorkflowService(backend, nil)
	s.enterDocument("doc-1")

	err := s.RunReview(context.Background(), nil)
	assert.Error(t, err)

	var stageErr *StageError
	assert.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "Compliance review failed", stageErr.Message())

	sess := s.Session()
	assert.Equal(t, model.StageModule, sess.Stage)
	assert.Nil(t, sess.ActiveReport)
}

func TestRunReview_NoActiveDocument(t *testing.T) {
	s := NewWorkflowService(new(MockBackend), nil)
	err := s.RunReview(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, model.StageUpload, s.Session().Stage)
}

func TestRerunCleanup_FailureKeepsStaleResult(t *testing.T) {
	stale := &model.CleanupResult{DocumentID: "doc-1", CleanedEnglish: "stale"}

	backend := new(MockBackend)
	backend.On("RerunCleanup", mock.Anything, "doc-1").
		Return(nil, errors.New("backend unavailable"))

	s := NewWorkflowService(backend, nil)
	s.enterDocument("doc-1")
	s.applyIfCurrent("doc-1", func(sess *model.Session) {
		sess.ActiveCleanup = stale
		sess.Stage = model.StageCleanup
	})

	err := s.RerunCleanup(context.Background())
	assert.Error(t, err)

	sess := s.Session()
	assert.Equal(t, model.StageCleanup, sess.Stage)
	// Snapshots copy the cleanup result, so compare by value.
	assert.Equal(t, stale, sess.ActiveCleanup)
	assert.Equal(t, "Cleanup analysis failed", sess.LastError)
}

func TestRerunCleanup_RefreshesResult(t *testing.T) {
	backend := new(MockBackend)
	backend.On("RerunCleanup", mock.Anything, "doc-1").
		Return(&model.CleanupResult{DocumentID: "doc-1", CleanedEnglish: "fresh"}, nil)

	s := NewWorkflowService(backend, nil)
	s.enterDocument("doc-1")

	err := s.RerunCleanup(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "fresh", s.Session().ActiveCleanup.CleanedEnglish)
}

func TestStartUpload_RapidSecondUploadWins(t *testing.T) {
	backend := new(MockBackend)
	s := NewWorkflowService(backend, nil)

	firstEntered := make(chan struct{})
	release := make(chan struct{})

	// The first upload stalls at the backend; a second upload completes in
	// the meantime.
	backend.On("UploadDocument", mock.Anything, "first.docx", mock.Anything).
		Run(func(args mock.Arguments) {
			close(firstEntered)
			<-release
		}).
		Return(&model.Document{ID: "doc-a", Filename: "first.docx"}, nil).
		Once()
	backend.On("UploadDocument", mock.Anything, "second.docx", mock.Anything).
		Return(&model.Document{ID: "doc-b", Filename: "second.docx"}, nil).
		Once()
	backend.On("GetCleanup", mock.Anything, "doc-b").
		Return(&model.CleanupResult{DocumentID: "doc-b", CleanedEnglish: "clean"}, nil).
		Once()

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- s.StartUpload(context.Background(), "first.docx", strings.NewReader("a"))
	}()
	<-firstEntered

	err := s.StartUpload(context.Background(), "second.docx", strings.NewReader("b"))
	assert.NoError(t, err)

	close(release)
	assert.NoError(t, <-firstDone)

	// The superseded upload never claims the session: no doc-a identity, no
	// doc-a cleanup fetch.
	sess := s.Session()
	assert.Equal(t, "doc-b", sess.DocumentID)
	assert.Equal(t, "second.docx", sess.Filename)
	assert.Equal(t, model.StageCleanup, sess.Stage)
	assert.Equal(t, "doc-b", sess.ActiveCleanup.DocumentID)
	backend.AssertNotCalled(t, "GetCleanup", mock.Anything, "doc-a")
	backend.AssertExpectations(t)
}

func TestStaleResponseDoesNotMutateSession(t *testing.T) {
	backend := new(MockBackend)
	s := NewWorkflowService(backend, nil)

	// While the report for doc-a is in flight the user navigates to doc-b.
	backend.On("GetReport", mock.Anything, "doc-a").
		Run(func(args mock.Arguments) {
			s.enterDocument("doc-b")
		}).
		Return(&model.ComplianceReport{DocumentID: "doc-a", ComplianceScore: 40}, nil)

	err := s.OpenReport(context.Background(), "doc-a")
	assert.NoError(t, err)

	sess := s.Session()
	assert.Equal(t, "doc-b", sess.DocumentID)
	assert.Nil(t, sess.ActiveReport, "stale doc-a report must be discarded silently")
}

func TestOpenModule_FailureReturnsToDocumentsList(t *testing.T) {
	backend := new(MockBackend)
	backend.On("GetModule", mock.Anything, "doc-7").
		Return(nil, errors.New("not reachable"))

	s := NewWorkflowService(backend, nil)
	err := s.OpenModule(context.Background(), "doc-7")
	assert.Error(t, err)
	assert.Equal(t, model.StageDocuments, s.Session().Stage)
}

func TestOpenCleanup_Success(t *testing.T) {
	backend := new(MockBackend)
	backend.On("GetCleanup", mock.Anything, "doc-3").
		Return(&model.CleanupResult{DocumentID: "doc-3"}, nil)

	s := NewWorkflowService(backend, nil)
	err := s.OpenCleanup(context.Background(), "doc-3")
	assert.NoError(t, err)

	sess := s.Session()
	assert.Equal(t, model.StageCleanup, sess.Stage)
	assert.Equal(t, "doc-3", sess.DocumentID)
}

func TestOpenEditor_RequiresCleanup(t *testing.T) {
	s := NewWorkflowService(new(MockBackend), nil)
	_, err := s.OpenEditor()
	assert.Error(t, err)

	s.enterDocument("doc-1")
	s.applyIfCurrent("doc-1", func(sess *model.Session) {
		sess.ActiveCleanup = &model.CleanupResult{DocumentID: "doc-1"}
	})
	res, err := s.OpenEditor()
	assert.NoError(t, err)
	assert.Equal(t, "doc-1", res.DocumentID)
	assert.Equal(t, model.StageEditor, s.Session().Stage)
}

func TestNavigate(t *testing.T) {
	s := NewWorkflowService(new(MockBackend), nil)
	assert.NoError(t, s.Navigate(model.StageHistory))
	assert.Equal(t, model.StageHistory, s.Session().Stage)

	assert.Error(t, s.Navigate(model.StageProcessing))
	assert.Error(t, s.Navigate(model.StageReport))
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	model "github.com/Itish41/LexReview/models"

	"github.com/google/uuid"
)

// ErrNotFound marks the absence of a requested resource (e.g. no cleanup
// result exists yet for a document). Absence is an expected outcome the
// workflow falls through on, not a stage failure, so it must stay
// distinguishable from transport and parse errors.
var ErrNotFound = errors.New("resource not found")

// BackendClient talks JSON over HTTP to the analysis backend. All paths are
// relative to the configured API root.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewBackendClient initializes the client with a bounded request timeout so
// a hung backend resolves as a stage failure instead of leaving the session
// processing forever.
func NewBackendClient(baseURL string, timeout time.Duration) *BackendClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &BackendClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// UploadDocument sends a file as multipart form data and returns the created
// document identity.
func (c *BackendClient) UploadDocument(ctx context.Context, filename string, file io.Reader) (*model.Document, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(fw, file); err != nil {
		return nil, fmt.Errorf("failed to write file bytes: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/documents/upload", &b)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var doc model.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode upload response: %w", err)
	}
	log.Printf("Document uploaded successfully with ID: %s", doc.ID)
	return &doc, nil
}

// ListDocuments returns all previously uploaded documents.
func (c *BackendClient) ListDocuments(ctx context.Context) ([]model.Document, error) {
	var docs []model.Document
	if err := c.getJSON(ctx, "/documents", &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// ReviewHistory returns all past compliance reviews with document names.
func (c *BackendClient) ReviewHistory(ctx context.Context) ([]model.HistoryItem, error) {
	var items []model.HistoryItem
	if err := c.getJSON(ctx, "/history", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CleanupHistory returns all past cleanup analyses with document names.
func (c *BackendClient) CleanupHistory(ctx context.Context) ([]model.CleanupHistoryItem, error) {
	var items []model.CleanupHistoryItem
	if err := c.getJSON(ctx, "/cleanup/history", &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetCleanup fetches the latest cleanup result for a document. Returns
// ErrNotFound when no cleanup analysis exists for it yet.
func (c *BackendClient) GetCleanup(ctx context.Context, documentID string) (*model.CleanupResult, error) {
	var res model.CleanupResult
	if err := c.getJSON(ctx, "/cleanup/"+documentID, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// RerunCleanup re-requests the cleanup analysis for a document.
func (c *BackendClient) RerunCleanup(ctx context.Context, documentID string) (*model.CleanupResult, error) {
	var res model.CleanupResult
	if err := c.doJSON(ctx, http.MethodPost, "/cleanup/"+documentID+"/rerun", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SaveCleanupContent persists locally edited content for one language.
func (c *BackendClient) SaveCleanupContent(ctx context.Context, documentID, contentHTML string, lang model.Language) error {
	body := map[string]string{
		"contentHtml": contentHTML,
		"language":    string(lang),
	}
	return c.doJSON(ctx, http.MethodPut, "/cleanup/"+documentID+"/save", body, nil)
}

// CreateModule asks the backend to generate a training module for a document.
func (c *BackendClient) CreateModule(ctx context.Context, documentID string) (*model.TrainingModule, error) {
	var mod model.TrainingModule
	if err := c.doJSON(ctx, http.MethodPost, "/modules/create/"+documentID, nil, &mod); err != nil {
		return nil, err
	}
	return &mod, nil
}

// GetModule fetches the training module for a document.
func (c *BackendClient) GetModule(ctx context.Context, documentID string) (*model.TrainingModule, error) {
	var mod model.TrainingModule
	if err := c.getJSON(ctx, "/modules/"+documentID, &mod); err != nil {
		return nil, err
	}
	return &mod, nil
}

// LawCategories returns the mapping of law category key to display name.
func (c *BackendClient) LawCategories(ctx context.Context) (map[string]string, error) {
	categories := map[string]string{}
	if err := c.getJSON(ctx, "/laws/categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// SubmitReview starts a compliance review, optionally narrowed to focus areas.
func (c *BackendClient) SubmitReview(ctx context.Context, documentID string, focusAreas []string) (*model.ComplianceReport, error) {
	var body interface{}
	if len(focusAreas) > 0 {
		body = map[string][]string{"focus_areas": focusAreas}
	}
	var report model.ComplianceReport
	if err := c.doJSON(ctx, http.MethodPost, "/review/"+documentID, body, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// GetReport fetches the latest compliance report for a document.
func (c *BackendClient) GetReport(ctx context.Context, documentID string) (*model.ComplianceReport, error) {
	var report model.ComplianceReport
	if err := c.getJSON(ctx, "/review/"+documentID+"/report", &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *BackendClient) getJSON(ctx context.Context, path string, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// doJSON sends one JSON request and decodes the response into out when out
// is non-nil.
func (c *BackendClient) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", path, err)
	}
	return nil
}

// checkStatus maps HTTP statuses onto the error taxonomy: 404 is absence,
// any other non-2xx is a transport failure.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

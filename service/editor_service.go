package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Itish41/LexReview/annotate"
	model "github.com/Itish41/LexReview/models"
)

// EditorSurface is the external rich-text editing widget. It renders exactly
// one buffer's content at a time; the synchronizer never holds more than one
// live surface.
type EditorSurface interface {
	SetContent(html string) error
	Content() (string, error)
	PlainText() (string, error)
	Destroy() error
}

// SurfaceFactory acquires a fresh editing surface.
type SurfaceFactory interface {
	Acquire() (EditorSurface, error)
}

// FileSaver is the file-download boundary: it hands a produced artifact to a
// client-local save-as action. No response is awaited.
type FileSaver interface {
	Save(filename, contentType string, data []byte) error
}

// EditFunc receives every captured edit so the session's own cleanup copy
// stays current. The editor works on a private copy and never shares memory
// with session snapshots.
type EditFunc func(lang model.Language, content string)

// BufferStatus tracks the save state of one language buffer.
type BufferStatus string

const (
	BufferClean BufferStatus = "clean"
	BufferDirty BufferStatus = "dirty"
	BufferSaved BufferStatus = "saved"
	BufferError BufferStatus = "error"
)

var errNoCleanupLoaded = errors.New("no cleanup result loaded")

// EditorService keeps the two language variants of a cleanup result in sync
// with the single editing surface. Switching languages always captures the
// live surface into the outgoing buffer first, so in-progress edits are never
// discarded by a switch, and re-initialization always reads from the buffer
// about to be displayed, never from the surface being replaced.
type EditorService struct {
	mu      sync.Mutex
	api     BackendAPI
	factory SurfaceFactory
	saver   FileSaver
	edits   EditFunc

	cleanup *model.CleanupResult
	active  model.Language
	buffers map[model.Language]string
	status  map[model.Language]BufferStatus
	surface EditorSurface
}

// NewEditorService initializes the synchronizer with its backend, the two
// external collaborators, and an optional edit write-back.
func NewEditorService(api BackendAPI, factory SurfaceFactory, saver FileSaver, edits EditFunc) *EditorService {
	return &EditorService{
		api:     api,
		factory: factory,
		saver:   saver,
		edits:   edits,
		active:  model.LanguageIndonesian,
		buffers: make(map[model.Language]string),
		status:  make(map[model.Language]BufferStatus),
	}
}

// Load fills both language buffers from a cleanup result, preferring a
// previously edited value over the original cleaned value. Any live surface
// from a prior document is torn down first.
func (s *EditorService) Load(res *model.CleanupResult) error {
	if res == nil {
		return errNoCleanupLoaded
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.destroySurfaceLocked()
	s.cleanup = res
	s.active = model.LanguageIndonesian
	s.buffers = map[model.Language]string{
		model.LanguageIndonesian: res.ContentFor(model.LanguageIndonesian),
		model.LanguageEnglish:    res.ContentFor(model.LanguageEnglish),
	}
	s.status = map[model.Language]BufferStatus{
		model.LanguageIndonesian: BufferClean,
		model.LanguageEnglish:    BufferClean,
	}
	return nil
}

// Activate switches the editing surface to a language. The previously active
// buffer is captured from the live surface before anything else happens.
// Activating the already-active language re-initializes from the captured
// buffer, not from stale surface state.
func (s *EditorService) Activate(lang model.Language) error {
	if !lang.Valid() {
		return fmt.Errorf("unknown language %q", lang)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cleanup == nil {
		return errNoCleanupLoaded
	}
	if err := s.captureLocked(); err != nil {
		return err
	}
	s.active = lang

	if s.surface == nil {
		surface, err := s.factory.Acquire()
		if err != nil {
			return fmt.Errorf("failed to acquire editing surface: %w", err)
		}
		s.surface = surface
	}
	content := annotate.PromotePlainText(s.buffers[lang])
	if err := s.surface.SetContent(content); err != nil {
		return fmt.Errorf("failed to initialize editing surface: %w", err)
	}
	return nil
}

// ActiveLanguage returns the currently displayed language.
func (s *EditorService) ActiveLanguage() model.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Status returns the save state of one language buffer.
func (s *EditorService) Status(lang model.Language) BufferStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.status[lang]; ok {
		return st
	}
	return BufferClean
}

// CaptureActive reads the live surface's serialized content into the active
// buffer without switching language.
func (s *EditorService) CaptureActive() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleanup == nil {
		return errNoCleanupLoaded
	}
	return s.captureLocked()
}

func (s *EditorService) captureLocked() error {
	if s.surface == nil {
		return nil
	}
	content, err := s.surface.Content()
	if err != nil {
		return fmt.Errorf("failed to read editing surface: %w", err)
	}
	// The surface was initialized with the promoted form of the buffer; only
	// a deviation from that is a real edit. Promotion itself is display
	// convenience and must not count as user work.
	if content == s.buffers[s.active] || content == annotate.PromotePlainText(s.buffers[s.active]) {
		return nil
	}
	s.buffers[s.active] = content
	s.status[s.active] = BufferDirty
	// Local edits immediately become the source of truth for this language.
	s.cleanup.SetEdited(s.active, content)
	if s.edits != nil {
		s.edits(s.active, content)
	}
	return nil
}

// Save captures the active buffer and persists it to the backend. On failure
// the buffer keeps the local edits and the status flips to error; user work
// is never rolled back.
func (s *EditorService) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cleanup == nil {
		return errNoCleanupLoaded
	}
	if err := s.captureLocked(); err != nil {
		return err
	}

	content := s.buffers[s.active]
	if err := s.api.SaveCleanupContent(ctx, s.cleanup.DocumentID, content, s.active); err != nil {
		s.status[s.active] = BufferError
		log.Printf("Saving edited content failed for document %s (%s): %v", s.cleanup.DocumentID, s.active, err)
		return &StageError{Action: "Saving edited content failed", Err: err}
	}

	// A successful save confirms the local edits, it does not discard them.
	s.cleanup.SetEdited(s.active, content)
	if s.edits != nil {
		s.edits(s.active, content)
	}
	s.status[s.active] = BufferSaved
	log.Printf("Edited content saved for document %s (%s)", s.cleanup.DocumentID, s.active)
	return nil
}

// Export captures the active buffer, wraps it in a standalone print-oriented
// document, and hands it to the download boundary. This is a local file
// production aid; the backend is not involved.
func (s *EditorService) Export() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cleanup == nil {
		return errNoCleanupLoaded
	}
	if err := s.captureLocked(); err != nil {
		return err
	}

	now := time.Now()
	doc := BuildExportDocument(s.buffers[s.active], s.active, now)
	filename := fmt.Sprintf("cleaned-document-%s-%s.html", s.active, now.Format("2006-01-02"))

	if err := s.saver.Save(filename, "text/html", []byte(doc)); err != nil {
		return &StageError{Action: "Export failed", Err: err}
	}
	log.Printf("Exported %s", filename)
	return nil
}

// Teardown releases the editing surface. Safe to call when no surface is
// live.
func (s *EditorService) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroySurfaceLocked()
}

func (s *EditorService) destroySurfaceLocked() {
	if s.surface == nil {
		return
	}
	if err := s.surface.Destroy(); err != nil {
		log.Printf("Error destroying editing surface: %v", err)
	}
	s.surface = nil
}

var languageTitles = map[model.Language]string{
	model.LanguageIndonesian: "Bahasa Indonesia",
	model.LanguageEnglish:    "English",
}

// BuildExportDocument wraps edited content in a minimal standalone HTML
// document with fixed print styling: serif body, justified paragraphs,
// bordered tables, tagged with the language and export date.
func BuildExportDocument(contentHTML string, lang model.Language, now time.Time) string {
	title := languageTitles[lang]
	if title == "" {
		title = string(lang)
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="%s">
<head>
<meta charset="utf-8">
<title>Cleaned Document (%s)</title>
<style>
body { font-family: Georgia, "Times New Roman", serif; margin: 2.5cm; }
p { text-align: justify; line-height: 1.5; }
table, th, td { border: 1px solid #333; border-collapse: collapse; padding: 6px; }
h1, h2, h3 { text-align: center; }
.export-meta { text-align: right; font-size: 0.8em; color: #555; }
</style>
</head>
<body>
<div class="export-meta">%s &middot; %s</div>
%s
</body>
</html>
`, lang, title, title, now.Format("2 January 2006"), contentHTML)
}

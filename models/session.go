package models

// Stage is one phase of the document-review pipeline.
type Stage string

const (
	StageUpload     Stage = "upload"
	StageProcessing Stage = "processing"
	StageCleanup    Stage = "cleanup"
	StageModule     Stage = "module"
	StageReport     Stage = "report"
	StageEditor     Stage = "editor"
	StageHistory    Stage = "history"
	StageDocuments  Stage = "documents"
)

// Session holds the single mutable review session: one in-flight document,
// one active module, one active report, one active cleanup result. It is
// reset wholesale whenever the user starts a brand-new upload and is never
// persisted; a restart deliberately loses unsaved in-progress state.
type Session struct {
	DocumentID     string            `json:"document_id"`
	Filename       string            `json:"filename"`
	Stage          Stage             `json:"stage"`
	ActiveModule   *TrainingModule   `json:"active_module,omitempty"`
	ActiveReport   *ComplianceReport `json:"active_report,omitempty"`
	ActiveCleanup  *CleanupResult    `json:"active_cleanup,omitempty"`
	ActiveLanguage Language          `json:"active_language"`
	LastError      string            `json:"last_error,omitempty"`
}

// NewSession returns an empty session resting at the upload stage.
func NewSession() *Session {
	return &Session{
		Stage:          StageUpload,
		ActiveLanguage: LanguageIndonesian,
	}
}

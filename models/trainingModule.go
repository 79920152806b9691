package models

// Clause is one extracted clause of a training module with its legal mapping.
type Clause struct {
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	Text         string   `json:"text"`
	RelevantLaws []string `json:"relevant_laws"`
}

// ModuleContent is the structured extraction produced by the backend.
type ModuleContent struct {
	DocumentType string   `json:"document_type"`
	Summary      string   `json:"summary"`
	KeyParties   []string `json:"key_parties"`
	Clauses      []Clause `json:"clauses"`
}

// TrainingModule is the backend's structured extraction of a document.
// Read-only on the client; replaced wholesale on each fetch.
type TrainingModule struct {
	DocumentID    string        `json:"document_id"`
	ModuleContent ModuleContent `json:"module_content"`
}

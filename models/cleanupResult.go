package models

// Language selects one of the two parallel content variants of a cleanup result.
type Language string

const (
	LanguageIndonesian Language = "indonesian"
	LanguageEnglish    Language = "english"
)

// Valid reports whether the language is one of the two supported variants.
func (l Language) Valid() bool {
	return l == LanguageIndonesian || l == LanguageEnglish
}

// CleanupIssue is a single located issue found by the cleanup analysis.
type CleanupIssue struct {
	Type         string `json:"type"`
	Location     string `json:"location"`
	OriginalText string `json:"original_text"`
	Rule         string `json:"rule"`
}

// OpenItem is a placeholder the analysis could not safely infer a value for.
type OpenItem struct {
	Placeholder string `json:"placeholder"`
	Context     string `json:"context"`
}

// CleanupResult is the bilingual cleanup analysis for a document.
//
// EditedIndonesian and EditedEnglish are the only client-authored fields in
// the whole data model: once populated they take precedence over the cleaned
// variants as the source of truth for editing and export. A successful save
// confirms local edits, it never discards them.
type CleanupResult struct {
	DocumentID        string         `json:"document_id"`
	OriginalContent   string         `json:"original_content"`
	CleanedIndonesian string         `json:"cleaned_indonesian"`
	CleanedEnglish    string         `json:"cleaned_english"`
	EditedIndonesian  string         `json:"edited_indonesian,omitempty"`
	EditedEnglish     string         `json:"edited_english,omitempty"`
	Issues            []CleanupIssue `json:"issues"`
	ChangeSummary     []string       `json:"change_summary"`
	OpenItems         []OpenItem     `json:"open_items"`
}

// Clone returns a deep copy. Session snapshots and the editor each work on
// their own copy, so concurrent readers never observe an in-progress edit.
func (r *CleanupResult) Clone() *CleanupResult {
	if r == nil {
		return nil
	}
	c := *r
	c.Issues = append([]CleanupIssue(nil), r.Issues...)
	c.ChangeSummary = append([]string(nil), r.ChangeSummary...)
	c.OpenItems = append([]OpenItem(nil), r.OpenItems...)
	return &c
}

// ContentFor returns the editing source of truth for a language: the edited
// variant when one exists, otherwise the cleaned variant.
func (r *CleanupResult) ContentFor(lang Language) string {
	switch lang {
	case LanguageEnglish:
		if r.EditedEnglish != "" {
			return r.EditedEnglish
		}
		return r.CleanedEnglish
	default:
		if r.EditedIndonesian != "" {
			return r.EditedIndonesian
		}
		return r.CleanedIndonesian
	}
}

// SetEdited stores locally edited content for a language.
func (r *CleanupResult) SetEdited(lang Language, content string) {
	if lang == LanguageEnglish {
		r.EditedEnglish = content
		return
	}
	r.EditedIndonesian = content
}

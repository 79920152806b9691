// Package annotate renders cleanup analysis issues as highlighted markup over
// the raw document text. It is pure string processing with no dependencies on
// the rest of the pipeline.
package annotate

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/Itish41/LexReview/models"
)

// ExcerptLimit is the fixed display length for issue excerpts.
const ExcerptLimit = 100

type issueType struct {
	class string
	label string
}

// Known issue types share one table for CSS classes and display labels.
// Anything the backend sends outside this table falls back to "general".
var issueTypes = map[string]issueType{
	"terminology": {"issue-terminology", "Terminology"},
	"deletion":    {"issue-deletion", "Tracked Deletion"},
	"formatting":  {"issue-formatting", "Formatting"},
	"party_label": {"issue-party-label", "Party Label"},
	"arbitration": {"issue-arbitration", "Arbitration Clause"},
	"signature":   {"issue-signature", "Signature Block"},
}

var generalType = issueType{"issue-general", "General"}

// TypeClass maps an issue type to its highlight CSS class.
func TypeClass(t string) string {
	if it, ok := issueTypes[strings.ToLower(strings.TrimSpace(t))]; ok {
		return it.class
	}
	return generalType.class
}

// TypeLabel maps an issue type to its human-readable label.
func TypeLabel(t string) string {
	if it, ok := issueTypes[strings.ToLower(strings.TrimSpace(t))]; ok {
		return it.label
	}
	return generalType.label
}

// TruncateExcerpt shortens an issue excerpt to ExcerptLimit runes, appending
// an ellipsis marker when anything was cut. Empty input stays empty.
func TruncateExcerpt(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= ExcerptLimit {
		return s
	}
	return string(runes[:ExcerptLimit]) + "..."
}

// span is one resolved highlight region over the original plain text.
type span struct {
	start int
	end   int
	class string
	rule  string
}

// AnnotateContent produces highlighted HTML for the original text and its
// issue list.
//
// Match offsets are computed against the untouched original text for every
// issue before any markup or escaping happens, so issue fragments containing
// "<" or ">" still match, and injected spans can never corrupt later matches.
// Overlaps resolve first-by-list-order: a later issue whose region intersects
// an already accepted one is skipped. Only the first occurrence of a repeated
// fragment is highlighted.
func AnnotateContent(original string, issues []models.CleanupIssue) string {
	if original == "" {
		return ""
	}

	spans := resolveSpans(original, issues)

	var b strings.Builder
	pos := 0
	for _, sp := range spans {
		b.WriteString(formatText(original[pos:sp.start]))
		b.WriteString(fmt.Sprintf(`<span class="issue-highlight %s" title="%s">`,
			sp.class, html.EscapeString(sp.rule)))
		b.WriteString(formatText(original[sp.start:sp.end]))
		b.WriteString(`</span>`)
		pos = sp.end
	}
	b.WriteString(formatText(original[pos:]))
	return b.String()
}

// resolveSpans locates every issue's first occurrence in the original text
// and drops later issues that overlap an accepted region.
func resolveSpans(original string, issues []models.CleanupIssue) []span {
	var accepted []span
	for _, issue := range issues {
		if issue.OriginalText == "" {
			continue
		}
		idx := strings.Index(original, issue.OriginalText)
		if idx < 0 {
			continue
		}
		candidate := span{
			start: idx,
			end:   idx + len(issue.OriginalText),
			class: TypeClass(issue.Type),
			rule:  issue.Rule,
		}
		if overlaps(accepted, candidate) {
			continue
		}
		accepted = append(accepted, candidate)
	}
	// Render order is positional, acceptance order is list order.
	for i := 1; i < len(accepted); i++ {
		for j := i; j > 0 && accepted[j].start < accepted[j-1].start; j-- {
			accepted[j], accepted[j-1] = accepted[j-1], accepted[j]
		}
	}
	return accepted
}

func overlaps(accepted []span, c span) bool {
	for _, sp := range accepted {
		if c.start < sp.end && sp.start < c.end {
			return true
		}
	}
	return false
}

// formatText escapes a plain-text segment and converts whitespace structure
// to its visual form: newlines become line breaks, tabs fixed-width spacing.
func formatText(s string) string {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	escaped = strings.ReplaceAll(escaped, "\t", "&nbsp;&nbsp;&nbsp;&nbsp;")
	return escaped
}

// IssueView is the per-issue display metadata shown alongside the overlay.
type IssueView struct {
	Label    string `json:"label"`
	Class    string `json:"class"`
	Excerpt  string `json:"excerpt"`
	Location string `json:"location"`
	Rule     string `json:"rule"`
}

// IssueViews builds display metadata for every issue in list order, including
// issues whose text never matched the original content.
func IssueViews(issues []models.CleanupIssue) []IssueView {
	views := make([]IssueView, 0, len(issues))
	for _, issue := range issues {
		views = append(views, IssueView{
			Label:    TypeLabel(issue.Type),
			Class:    TypeClass(issue.Type),
			Excerpt:  TruncateExcerpt(issue.OriginalText),
			Location: issue.Location,
			Rule:     issue.Rule,
		})
	}
	return views
}

var headingMarker = regexp.MustCompile(`^(?i)(PASAL|ARTICLE|BAB|CHAPTER)\s+\d+`)

// PromotePlainText upgrades plain text to minimal structured content for the
// editing surface: blank-line-separated chunks become paragraphs, all-caps
// lines and chapter/article markers become headings, inner line breaks are
// preserved. Content that already starts with a markup delimiter is returned
// untouched so structured content is never double-wrapped.
func PromotePlainText(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "<") {
		return content
	}

	normalized := strings.ReplaceAll(trimmed, "\r\n", "\n")
	chunks := regexp.MustCompile(`\n\s*\n`).Split(normalized, -1)

	var b strings.Builder
	for _, chunk := range chunks {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		if isHeadingLine(chunk) {
			b.WriteString("<h3>" + html.EscapeString(chunk) + "</h3>")
			continue
		}
		lines := strings.Split(chunk, "\n")
		for i, line := range lines {
			lines[i] = html.EscapeString(strings.TrimSpace(line))
		}
		b.WriteString("<p>" + strings.Join(lines, "<br>") + "</p>")
	}
	return b.String()
}

// isHeadingLine treats single all-caps lines and numbered chapter/article
// markers ("PASAL 1", "ARTICLE 2", "BAB 3", "CHAPTER 4") as headings.
func isHeadingLine(chunk string) bool {
	if strings.Contains(chunk, "\n") {
		return false
	}
	if headingMarker.MatchString(chunk) {
		return true
	}
	hasLetter := false
	for _, r := range chunk {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter && len(chunk) > 3
}

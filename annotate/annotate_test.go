package annotate

import (
	"html"
	"regexp"
	"strings"
	"testing"

	"github.com/Itish41/LexReview/models"
	"github.com/stretchr/testify/assert"
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// stripMarkup reverses the rendering so tests can compare against the
// original plain text: drop tags, restore line breaks and tabs, unescape.
func stripMarkup(annotated string) string {
	s := strings.ReplaceAll(annotated, "<br>", "\n")
	s = strings.ReplaceAll(s, "&nbsp;&nbsp;&nbsp;&nbsp;", "\t")
	s = tagPattern.ReplaceAllString(s, "")
	return html.UnescapeString(s)
}

func TestAnnotateContent_HighlightsIssue(t *testing.T) {
	original := "The Secret Information shall remain with the First Party."
	issues := []models.CleanupIssue{
		{Type: "terminology", OriginalText: "Secret Information", Rule: "Use Confidential Information consistently"},
		{Type: "party_label", OriginalText: "First Party", Rule: "Prefer Disclosing Party / Receiving Party"},
	}

	out := AnnotateContent(original, issues)

	assert.Equal(t, 2, strings.Count(out, `<span class="issue-highlight`))
	assert.Contains(t, out, `issue-terminology`)
	assert.Contains(t, out, `issue-party-label`)
	assert.Contains(t, out, `title="Use Confidential Information consistently"`)
	assert.Equal(t, original, stripMarkup(out))
}

func TestAnnotateContent_EscapesBaseTextBeforeMarkup(t *testing.T) {
	original := "Deliver within <30> days & notify the Receiving Party."
	issues := []models.CleanupIssue{
		{Type: "deletion", OriginalText: "<30> days", Rule: "Apply tracked deletion"},
	}

	out := AnnotateContent(original, issues)

	// Raw angle brackets from the document must never survive as markup.
	assert.NotContains(t, out, "<30>")
	assert.Contains(t, out, "&lt;30&gt; days")
	assert.Equal(t, 1, strings.Count(out, `<span class="issue-highlight`))
	assert.Equal(t, original, stripMarkup(out))
}

func TestAnnotateContent_FirstOccurrenceOnly(t *testing.T) {
	original := "Para Pihak agree. Para Pihak shall comply. Para Pihak sign below."
	issues := []models.CleanupIssue{
		{Type: "party_label", OriginalText: "Para Pihak", Rule: "Remove party-fragment noise"},
	}

	out := AnnotateContent(original, issues)

	assert.Equal(t, 1, strings.Count(out, `<span class="issue-highlight`))
	// The highlight sits on the first occurrence.
	assert.True(t, strings.Index(out, "<span") < strings.Index(out, "agree"))
	assert.Equal(t, original, stripMarkup(out))
}

func TestAnnotateContent_OverlappingIssuesFirstInListWins(t *testing.T) {
	original := "disputes shall be finally resolved by arbitration in Jakarta"
	issues := []models.CleanupIssue{
		{Type: "arbitration", OriginalText: "finally resolved by arbitration", Rule: "Remove arbitration block"},
		{Type: "deletion", OriginalText: "resolved by arbitration in Jakarta", Rule: "Apply deletion"},
	}

	out := AnnotateContent(original, issues)

	assert.Equal(t, 1, strings.Count(out, `<span class="issue-highlight`))
	assert.Contains(t, out, "issue-arbitration")
	assert.NotContains(t, out, "issue-deletion")
	assert.Equal(t, original, stripMarkup(out))
}

func TestAnnotateContent_IssueTextNotInContent(t *testing.T) {
	original := "Nothing matches here."
	issues := []models.CleanupIssue{
		{Type: "signature", OriginalText: "Kusnad Rahardja", Rule: "Remove deleted signatory"},
		{Type: "deletion", OriginalText: "", Rule: "empty fragment"},
	}

	out := AnnotateContent(original, issues)

	assert.NotContains(t, out, "<span")
	assert.Equal(t, original, stripMarkup(out))
}

func TestAnnotateContent_ConvertsWhitespace(t *testing.T) {
	out := AnnotateContent("line one\nline two\tend", nil)
	assert.Equal(t, "line one<br>line two&nbsp;&nbsp;&nbsp;&nbsp;end", out)
}

func TestAnnotateContent_EmptyInput(t *testing.T) {
	assert.Equal(t, "", AnnotateContent("", []models.CleanupIssue{{Type: "deletion", OriginalText: "x"}}))
}

func TestTypeTable(t *testing.T) {
	tests := []struct {
		issueType string
		class     string
		label     string
	}{
		{"terminology", "issue-terminology", "Terminology"},
		{"deletion", "issue-deletion", "Tracked Deletion"},
		{"formatting", "issue-formatting", "Formatting"},
		{"party_label", "issue-party-label", "Party Label"},
		{"arbitration", "issue-arbitration", "Arbitration Clause"},
		{"signature", "issue-signature", "Signature Block"},
		{"something_else", "issue-general", "General"},
		{"", "issue-general", "General"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.class, TypeClass(tt.issueType), tt.issueType)
		assert.Equal(t, tt.label, TypeLabel(tt.issueType), tt.issueType)
	}
}

func TestTruncateExcerpt(t *testing.T) {
	assert.Equal(t, "", TruncateExcerpt(""))
	assert.Equal(t, "short", TruncateExcerpt("short"))

	long := strings.Repeat("a", 150)
	got := TruncateExcerpt(long)
	assert.Equal(t, strings.Repeat("a", 100)+"...", got)

	exact := strings.Repeat("b", 100)
	assert.Equal(t, exact, TruncateExcerpt(exact))
}

func TestIssueViews(t *testing.T) {
	views := IssueViews([]models.CleanupIssue{
		{Type: "terminology", OriginalText: strings.Repeat("x", 120), Location: "clause 2", Rule: "normalize"},
	})
	assert.Len(t, views, 1)
	assert.Equal(t, "Terminology", views[0].Label)
	assert.Equal(t, "issue-terminology", views[0].Class)
	assert.Equal(t, "clause 2", views[0].Location)
	assert.Len(t, views[0].Excerpt, 103)
}

func TestPromotePlainText(t *testing.T) {
	t.Run("paragraphs and headings", func(t *testing.T) {
		in := "PASAL 1\n\nThe parties agree to keep\nall information confidential.\n\nKERAHASIAAN\n\nSecond paragraph."
		out := PromotePlainText(in)
		assert.Contains(t, out, "<h3>PASAL 1</h3>")
		assert.Contains(t, out, "<h3>KERAHASIAAN</h3>")
		assert.Contains(t, out, "<p>The parties agree to keep<br>all information confidential.</p>")
		assert.Contains(t, out, "<p>Second paragraph.</p>")
	})

	t.Run("chapter markers case-insensitive", func(t *testing.T) {
		assert.Equal(t, "<h3>Article 12</h3>", PromotePlainText("Article 12"))
		assert.Equal(t, "<h3>BAB 3</h3>", PromotePlainText("BAB 3"))
		assert.Equal(t, "<h3>Chapter 4</h3>", PromotePlainText("Chapter 4"))
	})

	t.Run("structured content untouched", func(t *testing.T) {
		in := "<p>already structured</p>"
		assert.Equal(t, in, PromotePlainText(in))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", PromotePlainText(""))
		assert.Equal(t, "", PromotePlainText("   \n  "))
	})

	t.Run("escapes markup-significant characters", func(t *testing.T) {
		out := PromotePlainText("a < b")
		assert.Equal(t, "<p>a &lt; b</p>", out)
	})
}

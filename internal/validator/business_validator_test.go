package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RSPP-2025/paper-portal/internal/models"
)

func TestBusinessValidator_ValidatePassword(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"meets policy", "Abcdef1!", true},
		{"longer mixed password", "Str0ng-Passw0rd", true},
		{"too short", "Ab1!", false},
		{"no uppercase", "abcdef1!", false},
		{"no lowercase", "ABCDEF1!", false},
		{"no digit", "Abcdefg!", false},
		{"no symbol", "Abcdefg1", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidatePassword(tt.password)
			if tt.valid {
				assert.Empty(t, errs)
			} else {
				require.NotEmpty(t, errs)
				assert.Equal(t, "password", errs[0].Field)
				assert.Equal(t, "password_strength", errs[0].Rule)
			}
		})
	}
}

func TestBusinessValidator_ValidateDraftDetails(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("valid details", func(t *testing.T) {
		errs := bv.ValidateDraftDetails("Graph Sparsification", "A study of spectral sparsifiers for dynamic graphs.", "graphs, spectral")
		assert.Empty(t, errs)
	})

	t.Run("short abstract", func(t *testing.T) {
		errs := bv.ValidateDraftDetails("Graph Sparsification", "short", "graphs")
		require.Len(t, errs, 1)
		assert.Equal(t, "abstract", errs[0].Field)
	})

	t.Run("whitespace title does not count", func(t *testing.T) {
		errs := bv.ValidateDraftDetails("  a  ", "A study of spectral sparsifiers.", "graphs")
		require.Len(t, errs, 1)
		assert.Equal(t, "title", errs[0].Field)
	})

	t.Run("keywords of only commas rejected", func(t *testing.T) {
		errs := bv.ValidateDraftDetails("Graph Sparsification", "A study of spectral sparsifiers.", " , , ")
		require.Len(t, errs, 1)
		assert.Equal(t, "keywords", errs[0].Field)
	})
}

func TestBusinessValidator_ValidateDraftPeople(t *testing.T) {
	bv := NewBusinessValidator()

	students := []StudentEntry{{Email: "author@university.edu", Contribution: "Experiments"}}

	t.Run("valid people", func(t *testing.T) {
		errs := bv.ValidateDraftPeople([]string{"advisor@university.edu"}, "reviewer@university.edu", students)
		assert.Empty(t, errs)
	})

	t.Run("missing advisors and reviewer", func(t *testing.T) {
		errs := bv.ValidateDraftPeople(nil, "", students)
		require.Len(t, errs, 2)
		assert.Equal(t, "advisor_emails", errs[0].Field)
		assert.Equal(t, "reviewer_email", errs[1].Field)
	})

	t.Run("malformed advisor email", func(t *testing.T) {
		errs := bv.ValidateDraftPeople([]string{"not-an-email"}, "reviewer@university.edu", students)
		require.Len(t, errs, 1)
		assert.Equal(t, "advisor_emails[0]", errs[0].Field)
	})

	t.Run("no student authors", func(t *testing.T) {
		errs := bv.ValidateDraftPeople([]string{"advisor@university.edu"}, "reviewer@university.edu", nil)
		require.Len(t, errs, 1)
		assert.Equal(t, "students", errs[0].Field)
	})
}

func TestBusinessValidator_ValidateDraftFile(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("pdf within limit", func(t *testing.T) {
		errs := bv.ValidateDraftFile("paper.pdf", 1024, "application/pdf")
		assert.Empty(t, errs)
	})

	t.Run("docx accepted", func(t *testing.T) {
		errs := bv.ValidateDraftFile("paper.docx", 1024, "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
		assert.Empty(t, errs)
	})

	t.Run("missing name", func(t *testing.T) {
		errs := bv.ValidateDraftFile("  ", 1024, "application/pdf")
		require.Len(t, errs, 1)
		assert.Equal(t, "file_name", errs[0].Field)
	})

	t.Run("oversize", func(t *testing.T) {
		errs := bv.ValidateDraftFile("paper.pdf", MaxUploadBytes+1, "application/pdf")
		require.Len(t, errs, 1)
		assert.Equal(t, "file_size", errs[0].Field)
	})

	t.Run("disallowed type", func(t *testing.T) {
		errs := bv.ValidateDraftFile("archive.zip", 1024, "application/zip")
		require.Len(t, errs, 1)
		assert.Equal(t, "file_content_type", errs[0].Field)
	})

	t.Run("missing content type rejected", func(t *testing.T) {
		errs := bv.ValidateDraftFile("paper.pdf", 1024, "")
		require.Len(t, errs, 1)
		assert.Equal(t, "file_content_type", errs[0].Field)
	})
}

func TestBusinessValidator_ValidateStatusTransition(t *testing.T) {
	bv := NewBusinessValidator()
	remark := "needs a stronger evaluation section"

	tests := []struct {
		name    string
		current models.PaperStatus
		next    models.PaperStatus
		remark  *string
		valid   bool
	}{
		{"submitted to under review", models.PaperSubmitted, models.PaperUnderReview, nil, true},
		{"under review to accepted", models.PaperUnderReview, models.PaperAccepted, nil, true},
		{"under review to rejected with remark", models.PaperUnderReview, models.PaperRejected, &remark, true},
		{"rejected back to under review", models.PaperRejected, models.PaperUnderReview, nil, true},
		{"submitted straight to accepted", models.PaperSubmitted, models.PaperAccepted, nil, false},
		{"accepted is terminal", models.PaperAccepted, models.PaperUnderReview, nil, false},
		{"rejection without remark", models.PaperUnderReview, models.PaperRejected, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateStatusTransition(tt.current, tt.next, tt.remark)
			if tt.valid {
				assert.Empty(t, errs)
			} else {
				assert.NotEmpty(t, errs)
			}
		})
	}
}

func TestBusinessValidator_ValidateStatusTransition_BlankRemark(t *testing.T) {
	bv := NewBusinessValidator()
	blank := "   "

	errs := bv.ValidateStatusTransition(models.PaperUnderReview, models.PaperRejected, &blank)
	require.Len(t, errs, 1)
	assert.Equal(t, "rejection_remark", errs[0].Field)
}

func TestParseKeywords(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"simple list", "graphs, spectral, sparsification", []string{"graphs", "spectral", "sparsification"}},
		{"order and duplicates kept", "b, a, b", []string{"b", "a", "b"}},
		{"empty segments dropped", " graphs ,, ,spectral", []string{"graphs", "spectral"}},
		{"empty input", "", nil},
		{"only separators", ", ,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseKeywords(tt.raw)
			if tt.want == nil {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

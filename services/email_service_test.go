package services

import (
	"strings"
	"testing"

	"backend/models"
)

func TestConvertHTMLToText(t *testing.T) {
	cases := []struct {
		name     string
		html     string
		contains []string
	}{
		{
			name:     "paragraphs become lines",
			html:     "<p>Hello</p><p>World</p>",
			contains: []string{"Hello", "World"},
		},
		{
			name:     "list items get markers",
			html:     "<ul><li>resurfacer</li><li>color coat</li></ul>",
			contains: []string{"- resurfacer", "- color coat"},
		},
		{
			name:     "not html passes through",
			html:     "plain text body",
			contains: []string{"plain text body"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := convertHTMLToText(tc.html)
			for _, want := range tc.contains {
				if !strings.Contains(got, want) {
					t.Errorf("convertHTMLToText(%q) = %q, missing %q", tc.html, got, want)
				}
			}
		})
	}
}

func TestProcessTemplate(t *testing.T) {
	es := NewEmailService(nil)
	data := models.EmailData{
		ClientName:   "Riverside HOA",
		ProjectName:  "Riverside tennis courts",
		ProposalLink: "https://app.playhardscapes.com/proposals/view/abc",
		GrandTotal:   "$24,500.00",
	}

	got, err := es.processTemplate(
		"Hi {{client_name}}, your proposal for {{project_name}} ({{grand_total}}) is at {{proposal_link}}.", data)
	if err != nil {
		t.Fatalf("processTemplate returned error: %v", err)
	}

	want := "Hi Riverside HOA, your proposal for Riverside tennis courts ($24,500.00) is at https://app.playhardscapes.com/proposals/view/abc."
	if got != want {
		t.Errorf("processTemplate = %q, want %q", got, want)
	}
}

func TestValidateTemplate(t *testing.T) {
	es := NewEmailService(nil)
	cases := []struct {
		name    string
		tpl     string
		wantErr bool
	}{
		{"valid variables", "Hello {{client_name}}, see {{proposal_link}}", false},
		{"unknown variable", "Hello {{first_name}}", true},
		{"unmatched braces", "Hello {{client_name}", true},
		{"no variables", "Hello there", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := es.ValidateTemplate(tc.tpl)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateTemplate(%q) error = %v, wantErr %v", tc.tpl, err, tc.wantErr)
			}
		})
	}
}

func TestPublicLink(t *testing.T) {
	got := PublicLink("proposals", "abc-123")
	if !strings.HasSuffix(got, "/proposals/view/abc-123") {
		t.Errorf("PublicLink = %q, want suffix /proposals/view/abc-123", got)
	}
}

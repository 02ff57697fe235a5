package usecase

import (
	"strings"
	"testing"

	"job-copilot/internal/domain"
)

func TestGenerateDocs(t *testing.T) {
	profile := &domain.StructuredProfile{Degree: domain.DegreeBachelor, Skills: []string{"python", "sql"}}
	job := &domain.Job{Title: "Junior Data Scientist", Company: "Insight Analytics"}

	docs, err := GenerateDocs(profile, job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantCV := "\nTailored CV for Junior Data Scientist at Insight Analytics\n\nDegree: Bachelor's\nKey Skills: python, sql\n\nExperience:\n- Describe your most relevant experience here for Junior Data Scientist.\n"
	if docs.CV != wantCV {
		t.Fatalf("unexpected cv:\n%q\nwant\n%q", docs.CV, wantCV)
	}
	if !strings.Contains(docs.CoverLetter, "I am excited to apply for the Junior Data Scientist position at Insight Analytics.") {
		t.Fatalf("cover letter misses the position line: %s", docs.CoverLetter)
	}
	if !strings.Contains(docs.CoverLetter, "background in Bachelor's and hands-on experience using python, sql,") {
		t.Fatalf("cover letter misses degree/skills: %s", docs.CoverLetter)
	}
}

func TestGenerateDocsDefaults(t *testing.T) {
	docs, err := GenerateDocs(&domain.StructuredProfile{}, &domain.Job{Title: "Dev", Company: "Acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(docs.CV, "Degree: Unknown\nKey Skills: \n") {
		t.Fatalf("expected Unknown degree and empty skills, got %q", docs.CV)
	}
	// text/template must not escape apostrophes or ampersands
	docs, err = GenerateDocs(&domain.StructuredProfile{Degree: domain.DegreeMaster}, &domain.Job{Title: "R&D", Company: "Bob's"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(docs.CV, "Tailored CV for R&D at Bob's") || !strings.Contains(docs.CV, "Master's") {
		t.Fatalf("unexpected escaping: %q", docs.CV)
	}
}

func TestGenerateDocsRejectsIncompleteJob(t *testing.T) {
	profile := &domain.StructuredProfile{}
	cases := map[string]*domain.Job{
		"nil job":       nil,
		"no title":      {Company: "Acme"},
		"blank company": {Title: "Dev", Company: "  "},
	}
	for name, job := range cases {
		if _, err := GenerateDocs(profile, job); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
	if _, err := GenerateDocs(nil, &domain.Job{Title: "Dev", Company: "Acme"}); err == nil {
		t.Fatalf("expected an error for a nil profile")
	}
}

package usecase

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"job-copilot/internal/domain"
)

var cvTemplate = template.Must(template.New("cv").Parse(`
Tailored CV for {{.Title}} at {{.Company}}

Degree: {{.Degree}}
Key Skills: {{.Skills}}

Experience:
- Describe your most relevant experience here for {{.Title}}.
`))

var coverLetterTemplate = template.Must(template.New("cover_letter").Parse(`
Dear Hiring Manager,

I am excited to apply for the {{.Title}} position at {{.Company}}. With my background in {{.Degree}} and hands-on experience using {{.Skills}}, I believe I am a strong fit for this role.

In previous projects, I have demonstrated my ability to learn quickly, collaborate with teams, and deliver impactful results. I am particularly interested in this opportunity because it aligns with my interests and long-term career goals.

Thank you for considering my application.

Sincerely,
[Your Name]
`))

type docFields struct {
	Title   string
	Company string
	Degree  string
	Skills  string
}

// GenerateDocs renders the CV and cover letter stubs for job. A job without
// a title or company is rejected rather than rendered with blanks.
func GenerateDocs(profile *domain.StructuredProfile, job *domain.Job) (domain.GeneratedDocs, error) {
	if profile == nil {
		return domain.GeneratedDocs{}, fmt.Errorf("generate docs: missing profile")
	}
	if job == nil || strings.TrimSpace(job.Title) == "" || strings.TrimSpace(job.Company) == "" {
		return domain.GeneratedDocs{}, fmt.Errorf("generate docs: job needs a title and company")
	}

	degree := profile.Degree
	if degree == "" {
		degree = domain.DegreeUnknown
	}
	f := docFields{
		Title:   job.Title,
		Company: job.Company,
		Degree:  degree,
		Skills:  strings.Join(profile.Skills, ", "),
	}

	var cv, letter bytes.Buffer
	if err := cvTemplate.Execute(&cv, f); err != nil {
		return domain.GeneratedDocs{}, fmt.Errorf("render cv: %w", err)
	}
	if err := coverLetterTemplate.Execute(&letter, f); err != nil {
		return domain.GeneratedDocs{}, fmt.Errorf("render cover letter: %w", err)
	}
	return domain.GeneratedDocs{CV: cv.String(), CoverLetter: letter.String()}, nil
}

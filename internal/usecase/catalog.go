package usecase

import (
	"fmt"
	"os"

	"job-copilot/internal/domain"

	"gopkg.in/yaml.v3"
)

// Catalog is the fixed set of listings the matcher scores against.
type Catalog struct {
	jobs []domain.Job
}

// DefaultCatalog returns the built-in mock listings.
func DefaultCatalog() *Catalog {
	return NewCatalog([]domain.Job{
		{
			ID:             "job-1",
			Title:          "Junior Data Scientist",
			Company:        "Insight Analytics",
			Location:       "Remote",
			Provider:       "MockLinkedIn",
			URL:            "https://example.com/jobs/1",
			RequiredSkills: []string{"python", "machine learning"},
		},
		{
			ID:             "job-2",
			Title:          "Full Stack Developer (React/Node)",
			Company:        "TechWave",
			Location:       "Hybrid - Miami, FL",
			Provider:       "MockIndeed",
			URL:            "https://example.com/jobs/2",
			RequiredSkills: []string{"javascript", "react", "node"},
		},
		{
			ID:             "job-3",
			Title:          "Backend Engineer (Golang)",
			Company:        "CloudCore",
			Location:       "Remote",
			Provider:       "MockAdzuna",
			URL:            "https://example.com/jobs/3",
			RequiredSkills: []string{"golang", "sql"},
		},
	})
}

func NewCatalog(jobs []domain.Job) *Catalog {
	out := make([]domain.Job, len(jobs))
	for i, j := range jobs {
		j.RequiredSkills = append([]string(nil), j.RequiredSkills...)
		j.MatchScore = 0
		out[i] = j
	}
	return &Catalog{jobs: out}
}

// LoadCatalog reads listings from a YAML file of the form
//
//	jobs:
//	  - id: job-1
//	    title: Junior Data Scientist
//	    required_skills: [python, machine learning]
//
// Listings exported from other boards may use job_title or skills instead;
// they are normalized like any other job payload.
func LoadCatalog(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var doc struct {
		Jobs []map[string]interface{} `yaml:"jobs"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(doc.Jobs) == 0 {
		return nil, fmt.Errorf("catalog %s: no jobs", path)
	}

	jobs := make([]domain.Job, 0, len(doc.Jobs))
	seen := map[string]bool{}
	for i, raw := range doc.Jobs {
		job, err := NewJobFromMap(raw)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: job %d: %w", path, i, err)
		}
		if seen[job.ID] {
			return nil, fmt.Errorf("catalog %s: duplicate job id %q", path, job.ID)
		}
		seen[job.ID] = true
		jobs = append(jobs, job)
	}
	return NewCatalog(jobs), nil
}

// Jobs returns a copy of the listings in catalog order.
func (c *Catalog) Jobs() []domain.Job {
	return NewCatalog(c.jobs).jobs
}

// Find returns the listing with the given id.
func (c *Catalog) Find(id string) (domain.Job, bool) {
	for _, j := range c.jobs {
		if j.ID == id {
			j.RequiredSkills = append([]string(nil), j.RequiredSkills...)
			return j, true
		}
	}
	return domain.Job{}, false
}

func (c *Catalog) Len() int { return len(c.jobs) }

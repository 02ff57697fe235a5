package usecase

import (
	"reflect"
	"testing"

	"job-copilot/internal/domain"
)

func TestExtractProfile(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		cv         string
		transcript string
		skills     []string
		degree     string
	}{
		{
			name:   "empty",
			skills: []string{},
			degree: domain.DegreeUnknown,
		},
		{
			name:   "javascript implies java",
			cv:     "Built UIs in JavaScript and React",
			skills: []string{"java", "javascript", "react"},
			degree: domain.DegreeUnknown,
		},
		{
			name:       "master wins over bachelor",
			cv:         "Bachelor of Science",
			transcript: "Master of Data Science",
			skills:     []string{"data science"},
			degree:     domain.DegreeMaster,
		},
		{
			name:       "transcript only",
			transcript: "BACHELOR in CS. Courses: Python, SQL",
			skills:     []string{"python", "sql"},
			degree:     domain.DegreeBachelor,
		},
		{
			name:   "vocabulary order and no duplicates",
			cv:     "golang golang sql python node.js machine learning",
			skills: []string{"python", "node", "machine learning", "sql", "golang"},
			degree: domain.DegreeUnknown,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := ExtractProfile(tc.cv, tc.transcript)
			if !reflect.DeepEqual(p.Skills, tc.skills) {
				t.Fatalf("expected skills %v, got %v", tc.skills, p.Skills)
			}
			if p.Degree != tc.degree {
				t.Fatalf("expected degree %q, got %q", tc.degree, p.Degree)
			}
			if p.Name != "Unknown" {
				t.Fatalf("expected name Unknown, got %q", p.Name)
			}
		})
	}
}

func TestExtractProfileSkillsWithinVocabulary(t *testing.T) {
	vocab := map[string]bool{}
	for _, kw := range SkillVocabulary {
		vocab[kw] = true
	}
	p := ExtractProfile("Rust, Haskell, PYTHON, Kubernetes, javascript, golang, SQL", "ML and data science")
	for _, s := range p.Skills {
		if !vocab[s] {
			t.Fatalf("skill %q is outside the vocabulary", s)
		}
	}
}

func TestExtractProfileDeterministic(t *testing.T) {
	a := ExtractProfile("Python and SQL, Master", "React")
	b := ExtractProfile("Python and SQL, Master", "React")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical profiles, got %+v and %+v", a, b)
	}
}

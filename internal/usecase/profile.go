package usecase

import (
	"strings"

	"job-copilot/internal/domain"
)

// SkillVocabulary is the fixed keyword list used for skill detection, in
// reporting order.
var SkillVocabulary = []string{
	"python",
	"java",
	"javascript",
	"react",
	"node",
	"machine learning",
	"data science",
	"sql",
	"golang",
}

// ExtractProfile derives a structured profile from the raw CV and transcript
// text. Keywords match as plain substrings, so "javascript" also yields "java".
func ExtractProfile(cvText, transcriptText string) domain.StructuredProfile {
	text := strings.ToLower(cvText + "\n" + transcriptText)

	skills := []string{}
	seen := map[string]bool{}
	for _, kw := range SkillVocabulary {
		if seen[kw] {
			continue
		}
		if strings.Contains(text, kw) {
			skills = append(skills, kw)
			seen[kw] = true
		}
	}

	degree := domain.DegreeUnknown
	switch {
	case strings.Contains(text, "master"):
		degree = domain.DegreeMaster
	case strings.Contains(text, "bachelor"):
		degree = domain.DegreeBachelor
	}

	return domain.StructuredProfile{
		Name:    "Unknown",
		Degree:  degree,
		Skills:  skills,
		RawText: text,
	}
}

package usecase

import (
	"sort"
	"strings"

	"job-copilot/internal/domain"
)

// MessageBoost is added once to a job's score when the chat message mentions
// its title, company or one of its required skills.
const MessageBoost = 0.5

type Matcher struct {
	catalog *Catalog
}

func NewMatcher(c *Catalog) *Matcher {
	if c == nil {
		c = DefaultCatalog()
	}
	return &Matcher{catalog: c}
}

// Match scores every catalog job against the profile. Jobs without any
// overlapping skill are dropped; the rest are returned by descending score,
// keeping catalog order for ties.
func (m *Matcher) Match(profile *domain.StructuredProfile, message string) []domain.Job {
	msg := strings.ToLower(strings.TrimSpace(message))

	out := []domain.Job{}
	for _, job := range m.catalog.Jobs() {
		overlap := 0
		for _, s := range job.RequiredSkills {
			if profile.HasSkill(s) {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}
		score := float64(overlap)
		if msg != "" && mentions(msg, job) {
			score += MessageBoost
		}
		job.MatchScore = score
		out = append(out, job)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchScore > out[j].MatchScore
	})
	return out
}

func mentions(msg string, job domain.Job) bool {
	if t := strings.ToLower(job.Title); t != "" && strings.Contains(msg, t) {
		return true
	}
	if c := strings.ToLower(job.Company); c != "" && strings.Contains(msg, c) {
		return true
	}
	for _, s := range job.RequiredSkills {
		if s != "" && strings.Contains(msg, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

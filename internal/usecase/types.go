package usecase

import (
	"fmt"
	"strings"

	"job-copilot/internal/domain"

	"github.com/mitchellh/mapstructure"
)

// Field aliases seen in job and profile payloads. Every alias is rewritten to
// its canonical key before decoding, so the rest of the code only sees one shape.
var jobAliases = map[string]string{
	"job_id":         "id",
	"jobId":          "id",
	"job_title":      "title",
	"jobTitle":       "title",
	"company_name":   "company",
	"requiredSkills": "required_skills",
	"skills":         "required_skills",
	"skill_keywords": "required_skills",
	"job_url":        "url",
	"source":         "provider",
	"job_location":   "location",
	"location_name":  "location",
}

var profileAliases = map[string]string{
	"rawText":   "raw_text",
	"full_name": "name",
	"education": "degree",
}

func canonicalKeys(m map[string]interface{}, aliases map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	// canonical keys first so they win over aliases
	for k, v := range m {
		if _, isAlias := aliases[k]; !isAlias {
			out[k] = v
		}
	}
	for k, v := range m {
		if canon, isAlias := aliases[k]; isAlias {
			if _, exists := out[canon]; !exists {
				out[canon] = v
			}
		}
	}
	return out
}

func decodeWeak(in map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// NewJobFromMap normalizes a loosely shaped job object (title vs job_title,
// skills vs requiredSkills, ...) into a domain.Job. Id, title and company are
// required.
func NewJobFromMap(m map[string]interface{}) (domain.Job, error) {
	var job domain.Job
	if m == nil {
		return job, fmt.Errorf("%w: empty job", ErrInput)
	}
	canon := canonicalKeys(m, jobAliases)
	// a comma separated skills string is common in exported listings
	if s, ok := canon["required_skills"].(string); ok {
		canon["required_skills"] = splitList(s)
	}
	if err := decodeWeak(canon, &job); err != nil {
		return job, fmt.Errorf("%w: job: %v", ErrInput, err)
	}
	job.ID = strings.TrimSpace(job.ID)
	job.Title = strings.TrimSpace(job.Title)
	job.Company = strings.TrimSpace(job.Company)
	// same requirement as GenerateDocs, so a loaded listing can always be previewed
	if job.ID == "" || job.Title == "" || job.Company == "" {
		return job, fmt.Errorf("%w: job needs id, title and company", ErrInput)
	}
	for i, s := range job.RequiredSkills {
		job.RequiredSkills[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return job, nil
}

// NewProfileHintFromMap converts a caller supplied profile into a structured
// profile. Skills outside the vocabulary are dropped and the degree is mapped
// onto the known levels.
func NewProfileHintFromMap(m map[string]interface{}) (*domain.StructuredProfile, error) {
	if len(m) == 0 {
		return nil, nil
	}
	canon := canonicalKeys(m, profileAliases)
	if s, ok := canon["skills"].(string); ok {
		canon["skills"] = splitList(s)
	}
	var p domain.StructuredProfile
	if err := decodeWeak(canon, &p); err != nil {
		return nil, fmt.Errorf("%w: profile hint: %v", ErrInput, err)
	}

	known := map[string]bool{}
	for _, s := range p.Skills {
		known[strings.ToLower(strings.TrimSpace(s))] = true
	}
	skills := []string{}
	for _, kw := range SkillVocabulary {
		if known[kw] {
			skills = append(skills, kw)
		}
	}
	p.Skills = skills
	p.Degree = normalizeDegree(p.Degree)
	if strings.TrimSpace(p.Name) == "" {
		p.Name = "Unknown"
	}
	return &p, nil
}

func normalizeDegree(d string) string {
	lower := strings.ToLower(d)
	switch {
	case strings.Contains(lower, "master"):
		return domain.DegreeMaster
	case strings.Contains(lower, "bachelor"):
		return domain.DegreeBachelor
	default:
		return domain.DegreeUnknown
	}
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NormalizeLanguage returns a lower-cased language code, "en" when empty.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return "en"
	}
	return lang
}

// NormalizeUserID falls back to the demo user used by the single-tenant UI.
func NormalizeUserID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultUserID
	}
	return id
}

const DefaultUserID = "demo-user"

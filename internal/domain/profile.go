package domain

import "time"

// Degree levels recognised by the profile extractor.
const (
	DegreeMaster   = "Master's"
	DegreeBachelor = "Bachelor's"
	DegreeUnknown  = "Unknown"
)

// UserProfile holds the raw uploaded documents of one user and the
// structured profile derived from them, if any.
type UserProfile struct {
	UserID            string             `json:"userId"`
	CVText            string             `json:"cvText"`
	TranscriptText    string             `json:"transcriptText"`
	StructuredProfile *StructuredProfile `json:"structuredProfile"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

type StructuredProfile struct {
	Name    string   `json:"name" mapstructure:"name"`
	Degree  string   `json:"degree" mapstructure:"degree"`
	Skills  []string `json:"skills" mapstructure:"skills"`
	RawText string   `json:"rawText" mapstructure:"raw_text"`
}

// HasSkill reports whether skill is in the profile's skill set.
func (p *StructuredProfile) HasSkill(skill string) bool {
	if p == nil {
		return false
	}
	for _, s := range p.Skills {
		if s == skill {
			return true
		}
	}
	return false
}
